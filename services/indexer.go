package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"chat-backend/domain/event"
	"chat-backend/repositories"
)

// IIndexer is the write side of the full-text projection.
type IIndexer interface {
	Index(messageID, chatID uuid.UUID, sender, content string) error
	Delete(messageID uuid.UUID) error
}

// MessageIndexer keeps the search projection in step with committed message
// events. It runs on the mediator's event goroutines, so a slow index never
// delays the command that produced the event.
type MessageIndexer struct {
	store *repositories.Store
	index IIndexer
	log   *slog.Logger
}

func NewMessageIndexer(store *repositories.Store, index IIndexer, log *slog.Logger) *MessageIndexer {
	return &MessageIndexer{store: store, index: index, log: log}
}

func (i *MessageIndexer) Handle(ctx context.Context, e event.DomainEvent) error {
	switch ev := e.(type) {
	case event.NewMessageAdded:
		return i.indexMessage(ev.MessageID)
	case event.MessageUpdated:
		return i.index.Index(ev.MessageID, ev.ChatID, ev.MessageSender, ev.Content)
	case event.MessageDeleted:
		return i.index.Delete(ev.MessageID)
	default:
		return nil
	}
}

func (i *MessageIndexer) indexMessage(messageID uuid.UUID) error {
	uow := i.store.Begin()
	defer uow.Rollback()

	message, err := uow.Messages.Get(messageID)
	if err != nil {
		return err
	}
	return i.index.Index(message.MessageID, message.ChatID, message.Sender, message.Content)
}
