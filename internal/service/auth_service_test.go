package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chou1102/QuickChatWeb/internal/auth"
)

func newAuthFixture() (*AuthService, *auth.Manager) {
	tokens := auth.NewManager("test-secret", time.Hour)
	return NewAuthService(newFakeUserRepo(), tokens), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	svc, tokens := newAuthFixture()
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret", "")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	subject, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject)

	logged, _, err := svc.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()
	_, _, err := svc.Register(ctx, "alice", "alice@example.com", "pw", "")
	require.NoError(t, err)

	var ve *ValidationError
	_, _, err = svc.Register(ctx, "alice2", "alice@example.com", "pw", "")
	require.ErrorAs(t, err, &ve)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()
	_, _, err := svc.Register(ctx, "alice", "alice@example.com", "right", "")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "right")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSearchUsersExcludesCaller(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()
	alice, _, err := svc.Register(ctx, "alice", "alice@example.com", "pw", "")
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, "alicia", "alicia@example.com", "pw", "")
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, "bob", "bob@example.com", "pw", "")
	require.NoError(t, err)

	found, err := svc.SearchUsers(ctx, alice.ID, "ali")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "alicia", found[0].Username)

	var ve *ValidationError
	_, err = svc.SearchUsers(ctx, alice.ID, "")
	assert.ErrorAs(t, err, &ve)
}
