package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Chou1102/QuickChatWeb/internal/events"
	"github.com/Chou1102/QuickChatWeb/internal/metrics"
	"github.com/Chou1102/QuickChatWeb/internal/models"
	"github.com/Chou1102/QuickChatWeb/internal/repository"
	"github.com/Chou1102/QuickChatWeb/internal/storage"
)

// MessageService is the ingestion path: it persists a message, refreshes
// the parent chat's latest-message pointer and returns the fully hydrated
// message. The caller broadcasts it over the relay; persistence never
// depends on the relay succeeding.
type MessageService struct {
	hydrator
	media    storage.Store
	producer *events.Producer
	log      *zap.SugaredLogger
}

func NewMessageService(
	messages repository.MessageRepository,
	chats repository.ChatRepository,
	users repository.UserRepository,
	media storage.Store,
	producer *events.Producer,
	log *zap.SugaredLogger,
) *MessageService {
	return &MessageService{
		hydrator: hydrator{users: users, chats: chats, messages: messages},
		media:    media,
		producer: producer,
		log:      log,
	}
}

// SendText persists a text message.
func (s *MessageService) SendText(ctx context.Context, senderID, chatID, text string) (*models.MessageView, error) {
	if chatID == "" {
		return nil, validationf("chat id is required")
	}
	if text == "" {
		return nil, validationf("message content is required")
	}
	return s.create(ctx, &models.Message{
		SenderID: senderID,
		ChatID:   chatID,
		Type:     models.TypeText,
		Message:  text,
	})
}

// SendMedia stores the uploaded file first and only then persists the
// message, so a rejected upload creates no state. The caption may be
// empty for media messages.
func (s *MessageService) SendMedia(ctx context.Context, senderID, chatID, msgType, caption, filename, contentType string, data []byte) (*models.MessageView, error) {
	if chatID == "" {
		return nil, validationf("chat id is required")
	}
	if msgType != models.TypeImage && msgType != models.TypeSticker {
		return nil, validationf("unknown message type %q", msgType)
	}
	if len(data) == 0 {
		return nil, validationf("file is required")
	}

	kind := storage.KindImage
	if msgType == models.TypeSticker {
		kind = storage.KindSticker
	}
	if err := storage.Validate(kind, contentType, len(data)); err != nil {
		return nil, &ValidationError{msg: err.Error()}
	}

	name := storage.ObjectName(kind, filename)
	url, err := s.media.Save(ctx, kind, name, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("store media: %w", err)
	}
	// Wide images get a JPEG preview stored alongside the original.
	// Best effort: the message references the original either way.
	if kind == storage.KindImage {
		switch thumb, terr := storage.Thumbnail(data); {
		case terr != nil:
			s.log.Debugw("thumbnail generation failed", "object", name, "err", terr)
		case thumb != nil:
			if _, terr := s.media.Save(ctx, kind, storage.ThumbName(name), "image/jpeg", thumb); terr != nil {
				s.log.Warnw("thumbnail store failed", "object", name, "err", terr)
			}
		}
	}

	return s.create(ctx, &models.Message{
		SenderID: senderID,
		ChatID:   chatID,
		Type:     msgType,
		Message:  caption,
		MediaURL: url,
	})
}

// ListMessages returns a chat's history, hydrated, chronological by
// creation time.
func (s *MessageService) ListMessages(ctx context.Context, chatID string) ([]*models.MessageView, error) {
	if chatID == "" {
		return nil, validationf("chat id is required")
	}
	msgs, err := s.messages.FindByChat(ctx, chatID, 0)
	if err != nil {
		return nil, err
	}
	out := make([]*models.MessageView, 0, len(msgs))
	for _, m := range msgs {
		v, err := s.messageView(ctx, m)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *MessageService) create(ctx context.Context, m *models.Message) (*models.MessageView, error) {
	chat, err := s.chats.FindByID(ctx, m.ChatID)
	if err != nil {
		return nil, err
	}
	if !contains(chat.UserIDs, m.SenderID) {
		return nil, validationf("sender is not a participant of this chat")
	}

	if err := s.messages.Insert(ctx, m); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	// No transaction spans the two writes: if this update is lost the
	// message still exists and the pointer is merely stale.
	if err := s.chats.SetLatestMessage(ctx, m.ChatID, m.ID); err != nil {
		s.log.Warnw("latest message update failed", "chat", m.ChatID, "err", err)
	}
	metrics.MessagesSent.WithLabelValues(m.Type).Inc()

	view, err := s.messageView(ctx, m)
	if err != nil {
		return nil, err
	}

	if s.producer != nil {
		pubCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.producer.PublishMessageCreated(pubCtx, view); err != nil {
			s.log.Warnw("message event publish failed", "message", view.ID, "err", err)
		}
	}
	return view, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
