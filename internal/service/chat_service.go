package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Chou1102/QuickChatWeb/internal/models"
	"github.com/Chou1102/QuickChatWeb/internal/repository"
)

type ChatService struct {
	hydrator
	log *zap.SugaredLogger
}

func NewChatService(
	chats repository.ChatRepository,
	users repository.UserRepository,
	messages repository.MessageRepository,
	log *zap.SugaredLogger,
) *ChatService {
	return &ChatService{
		hydrator: hydrator{users: users, chats: chats, messages: messages},
		log:      log,
	}
}

// AccessChat finds the one-to-one chat between the caller and the target
// user, creating it if absent. A non-group chat has exactly 2
// participants.
func (s *ChatService) AccessChat(ctx context.Context, callerID, otherID string) (*models.ChatView, error) {
	if otherID == "" {
		return nil, validationf("user id is required")
	}
	if otherID == callerID {
		return nil, validationf("cannot open a chat with yourself")
	}
	if _, err := s.users.FindByID(ctx, otherID); err != nil {
		return nil, err
	}

	chat, err := s.chats.FindOneToOne(ctx, callerID, otherID)
	if errors.Is(err, repository.ErrNotFound) {
		chat = &models.Chat{
			IsGroupChat: false,
			UserIDs:     []string{callerID, otherID},
		}
		if err := s.chats.Create(ctx, chat); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return s.chatView(ctx, chat, true)
}

// ListChats returns the caller's chats, most recently active first, with
// latestMessage hydrated for list previews.
func (s *ChatService) ListChats(ctx context.Context, callerID string) ([]*models.ChatView, error) {
	chats, err := s.chats.FindForUser(ctx, callerID, 100)
	if err != nil {
		return nil, err
	}
	out := make([]*models.ChatView, 0, len(chats))
	for _, c := range chats {
		v, err := s.chatView(ctx, c, true)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// CreateGroup creates a group chat. The caller is added to the member
// list and becomes group admin; a group needs a name and at least 3
// participants total.
func (s *ChatService) CreateGroup(ctx context.Context, callerID, name string, memberIDs []string) (*models.ChatView, error) {
	if name == "" {
		return nil, validationf("group name is required")
	}
	members := dedup(append(memberIDs, callerID))
	if len(members) < 3 {
		return nil, validationf("a group chat needs at least 3 participants")
	}
	chat := &models.Chat{
		ChatName:     name,
		IsGroupChat:  true,
		UserIDs:      members,
		GroupAdminID: callerID,
	}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, err
	}
	return s.chatView(ctx, chat, false)
}

func (s *ChatService) RenameGroup(ctx context.Context, callerID, chatID, name string) (*models.ChatView, error) {
	if name == "" {
		return nil, validationf("group name is required")
	}
	if _, err := s.requireGroup(ctx, chatID); err != nil {
		return nil, err
	}
	if err := s.chats.Rename(ctx, chatID, name); err != nil {
		return nil, err
	}
	return s.reload(ctx, chatID)
}

func (s *ChatService) AddToGroup(ctx context.Context, callerID, chatID, userID string) (*models.ChatView, error) {
	chat, err := s.requireGroup(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.GroupAdminID != callerID {
		return nil, validationf("only the group admin can add members")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.chats.AddUser(ctx, chatID, userID); err != nil {
		return nil, err
	}
	return s.reload(ctx, chatID)
}

// RemoveFromGroup removes a member. Users may remove themselves (leave);
// removing anyone else requires admin. The result must keep the chat at
// 2+ participants.
func (s *ChatService) RemoveFromGroup(ctx context.Context, callerID, chatID, userID string) (*models.ChatView, error) {
	chat, err := s.requireGroup(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if userID != callerID && chat.GroupAdminID != callerID {
		return nil, validationf("only the group admin can remove members")
	}
	if len(chat.UserIDs) <= 2 {
		return nil, validationf("a chat needs at least 2 participants")
	}
	if err := s.chats.RemoveUser(ctx, chatID, userID); err != nil {
		return nil, err
	}
	return s.reload(ctx, chatID)
}

// DeleteChat removes the chat and cascades its messages. Relay rooms need
// no server-side cleanup: membership dies with each connection.
func (s *ChatService) DeleteChat(ctx context.Context, callerID, chatID string) error {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return err
	}
	if chat.IsGroupChat && chat.GroupAdminID != callerID {
		return validationf("only the group admin can delete a group chat")
	}
	if !chat.IsGroupChat && !contains(chat.UserIDs, callerID) {
		return validationf("not a participant of this chat")
	}
	if err := s.messages.DeleteByChat(ctx, chatID); err != nil {
		s.log.Warnw("message cascade failed", "chat", chatID, "err", err)
	}
	return s.chats.Delete(ctx, chatID)
}

func (s *ChatService) requireGroup(ctx context.Context, chatID string) (*models.Chat, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.IsGroupChat {
		return nil, validationf("not a group chat")
	}
	return chat, nil
}

func (s *ChatService) reload(ctx context.Context, chatID string) (*models.ChatView, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return s.chatView(ctx, chat, false)
}

func dedup(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
