//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"chat-backend/domain"
	"chat-backend/domain/event"
	"chat-backend/errors"
)

type IMessageRepository interface {
	Add(message *domain.Message) error
	Get(messageID uuid.UUID) (*domain.Message, error)
	GetMany(messageIDs ...uuid.UUID) ([]*domain.Message, error)
	Update(message *domain.Message) error
}

// MessageRepository persists messages and maintains the per-chat ordered
// message index on every add.
type MessageRepository struct {
	txn  *badger.Txn
	log  *slog.Logger
	seen map[uuid.UUID]*domain.Message
}

func newMessageRepository(txn *badger.Txn, log *slog.Logger) *MessageRepository {
	return &MessageRepository{txn: txn, log: log, seen: make(map[uuid.UUID]*domain.Message)}
}

func (r *MessageRepository) Add(message *domain.Message) error {
	if err := r.store(message); err != nil {
		return err
	}

	indexKey := chatMessageKey(message.ChatID, message.Created, message.MessageID)
	if err := r.txn.Set(indexKey, []byte(message.MessageID.String())); err != nil {
		return err
	}

	r.seen[message.MessageID] = message
	return nil
}

// Update rewrites the message record. The index entry is keyed by the
// immutable created timestamp, so it stays valid.
func (r *MessageRepository) Update(message *domain.Message) error {
	if err := r.store(message); err != nil {
		return err
	}
	r.seen[message.MessageID] = message
	return nil
}

func (r *MessageRepository) store(message *domain.Message) error {
	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return err
	}
	return r.txn.Set(messageKey(message.MessageID), bytes)
}

func (r *MessageRepository) Get(messageID uuid.UUID) (*domain.Message, error) {
	item, err := r.txn.Get(messageKey(messageID))
	if err == badger.ErrKeyNotFound {
		return nil, errors.MessageNotFound{MessageID: messageID}
	}
	if err != nil {
		return nil, err
	}

	var record messageRecord
	if err = item.Value(func(value []byte) error {
		return json.Unmarshal(value, &record)
	}); err != nil {
		return nil, err
	}

	message := toMessage(record)
	r.seen[message.MessageID] = message
	return message, nil
}

func (r *MessageRepository) GetMany(messageIDs ...uuid.UUID) ([]*domain.Message, error) {
	messages := make([]*domain.Message, 0, len(messageIDs))
	for _, messageID := range messageIDs {
		message, err := r.Get(messageID)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func (r *MessageRepository) drainSeen() []event.DomainEvent {
	var events []event.DomainEvent
	for _, message := range r.seen {
		events = append(events, message.DrainEvents()...)
	}
	return events
}
