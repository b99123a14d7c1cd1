package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Chou1102/QuickChatWeb/internal/models"
	"github.com/Chou1102/QuickChatWeb/internal/repository"
)

// hydrator expands stored documents into wire views. A hydrated message
// has sender and chat expanded to objects and chat.users expanded to user
// objects, which the relay fan-out depends on.
type hydrator struct {
	users    repository.UserRepository
	chats    repository.ChatRepository
	messages repository.MessageRepository
}

func (h *hydrator) userViews(ctx context.Context, ids []string) ([]models.UserView, error) {
	users, err := h.users.FindManyByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate users: %w", err)
	}
	byID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	// preserve the chat's participant order
	out := make([]models.UserView, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, models.ViewOf(u))
		}
	}
	return out, nil
}

func (h *hydrator) chatView(ctx context.Context, c *models.Chat, withLatest bool) (*models.ChatView, error) {
	users, err := h.userViews(ctx, c.UserIDs)
	if err != nil {
		return nil, err
	}
	view := &models.ChatView{
		ID:          c.ID,
		ChatName:    c.ChatName,
		IsGroupChat: c.IsGroupChat,
		Users:       users,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.GroupAdminID != "" {
		if admin, err := h.users.FindByID(ctx, c.GroupAdminID); err == nil {
			av := models.ViewOf(admin)
			view.GroupAdmin = &av
		}
	}
	if withLatest && c.LatestMessageID != "" {
		latest, err := h.messages.FindByID(ctx, c.LatestMessageID)
		if err == nil {
			lv, err := h.messageView(ctx, latest)
			if err != nil {
				return nil, err
			}
			view.LatestMessage = lv
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	return view, nil
}

func (h *hydrator) messageView(ctx context.Context, m *models.Message) (*models.MessageView, error) {
	sender, err := h.users.FindByID(ctx, m.SenderID)
	if err != nil {
		return nil, fmt.Errorf("hydrate sender: %w", err)
	}
	chat, err := h.chats.FindByID(ctx, m.ChatID)
	if err != nil {
		return nil, fmt.Errorf("hydrate chat: %w", err)
	}
	// the embedded chat skips latestMessage to avoid recursive expansion
	cv, err := h.chatView(ctx, chat, false)
	if err != nil {
		return nil, err
	}
	return &models.MessageView{
		ID:        m.ID,
		Sender:    models.ViewOf(sender),
		Chat:      *cv,
		Type:      m.Type,
		Message:   m.Message,
		MediaURL:  m.MediaURL,
		CreatedAt: m.CreatedAt,
	}, nil
}
