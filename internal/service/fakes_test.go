package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Chou1102/QuickChatWeb/internal/models"
	"github.com/Chou1102/QuickChatWeb/internal/repository"
)

type fakeUserRepo struct {
	users map[string]*models.User
	seq   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	if u.ID == "" {
		r.seq++
		u.ID = fmt.Sprintf("u%d", r.seq)
	}
	u.CreatedAt = time.Now().UTC()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) FindManyByID(_ context.Context, ids []string) ([]*models.User, error) {
	var out []*models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Search(_ context.Context, query string, _ int64) ([]*models.User, error) {
	var out []*models.User
	for _, u := range r.users {
		if strings.Contains(u.Username, query) || strings.Contains(u.Email, query) {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeChatRepo struct {
	chats map[string]*models.Chat
	seq   int
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: make(map[string]*models.Chat)}
}

func (r *fakeChatRepo) Create(_ context.Context, c *models.Chat) error {
	if c.ID == "" {
		r.seq++
		c.ID = fmt.Sprintf("c%d", r.seq)
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	cp.UserIDs = append([]string(nil), c.UserIDs...)
	r.chats[c.ID] = &cp
	return nil
}

func (r *fakeChatRepo) FindByID(_ context.Context, id string) (*models.Chat, error) {
	if c, ok := r.chats[id]; ok {
		cp := *c
		cp.UserIDs = append([]string(nil), c.UserIDs...)
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeChatRepo) FindForUser(_ context.Context, userID string, _ int64) ([]*models.Chat, error) {
	var out []*models.Chat
	for _, c := range r.chats {
		for _, uid := range c.UserIDs {
			if uid == userID {
				cp := *c
				out = append(out, &cp)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *fakeChatRepo) FindOneToOne(_ context.Context, userA, userB string) (*models.Chat, error) {
	for _, c := range r.chats {
		if c.IsGroupChat {
			continue
		}
		hasA, hasB := false, false
		for _, uid := range c.UserIDs {
			hasA = hasA || uid == userA
			hasB = hasB || uid == userB
		}
		if hasA && hasB {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeChatRepo) AddUser(_ context.Context, chatID, userID string) error {
	c, ok := r.chats[chatID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, uid := range c.UserIDs {
		if uid == userID {
			return nil
		}
	}
	c.UserIDs = append(c.UserIDs, userID)
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeChatRepo) RemoveUser(_ context.Context, chatID, userID string) error {
	c, ok := r.chats[chatID]
	if !ok {
		return repository.ErrNotFound
	}
	kept := c.UserIDs[:0]
	for _, uid := range c.UserIDs {
		if uid != userID {
			kept = append(kept, uid)
		}
	}
	c.UserIDs = kept
	return nil
}

func (r *fakeChatRepo) Rename(_ context.Context, chatID, name string) error {
	c, ok := r.chats[chatID]
	if !ok {
		return repository.ErrNotFound
	}
	c.ChatName = name
	return nil
}

func (r *fakeChatRepo) SetLatestMessage(_ context.Context, chatID, messageID string) error {
	c, ok := r.chats[chatID]
	if !ok {
		return repository.ErrNotFound
	}
	c.LatestMessageID = messageID
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeChatRepo) Delete(_ context.Context, chatID string) error {
	if _, ok := r.chats[chatID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.chats, chatID)
	return nil
}

type fakeMessageRepo struct {
	messages []*models.Message
	seq      int
}

func newFakeMessageRepo() *fakeMessageRepo { return &fakeMessageRepo{} }

func (r *fakeMessageRepo) Insert(_ context.Context, m *models.Message) error {
	if m.ID == "" {
		r.seq++
		m.ID = fmt.Sprintf("m%d", r.seq)
	}
	m.CreatedAt = time.Now().UTC()
	cp := *m
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *fakeMessageRepo) FindByID(_ context.Context, id string) (*models.Message, error) {
	for _, m := range r.messages {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeMessageRepo) FindByChat(_ context.Context, chatID string, _ int64) ([]*models.Message, error) {
	var out []*models.Message
	for _, m := range r.messages {
		if m.ChatID == chatID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) DeleteByChat(_ context.Context, chatID string) error {
	kept := r.messages[:0]
	for _, m := range r.messages {
		if m.ChatID != chatID {
			kept = append(kept, m)
		}
	}
	r.messages = kept
	return nil
}

// storedObject captures one Save call to the fake media store.
type storedObject struct {
	kind        string
	filename    string
	contentType string
	data        []byte
}

// fakeMediaStore records saves and returns disk-style URLs.
type fakeMediaStore struct {
	saved []storedObject
	fail  error
}

func (s *fakeMediaStore) Save(_ context.Context, kind, filename, contentType string, data []byte) (string, error) {
	if s.fail != nil {
		return "", s.fail
	}
	s.saved = append(s.saved, storedObject{
		kind:        kind,
		filename:    filename,
		contentType: contentType,
		data:        append([]byte(nil), data...),
	})
	return "/uploads/" + kind + "/" + filename, nil
}
