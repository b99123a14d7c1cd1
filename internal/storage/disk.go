package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DiskStore writes uploads under root/<kind>/ and returns relative URLs
// of the form /uploads/<kind>/<name>, served statically by the API.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	for _, kind := range []string{KindImage, KindSticker} {
		if err := os.MkdirAll(filepath.Join(root, kind), 0o755); err != nil {
			return nil, err
		}
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) Save(_ context.Context, kind, filename, _ string, data []byte) (string, error) {
	path := filepath.Join(s.root, kind, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return fmt.Sprintf("/uploads/%s/%s", kind, filename), nil
}
