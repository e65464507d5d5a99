//go:generate go run go.uber.org/mock/mockgen -source=attachment.go -destination=../mocks/mock_attachment_repository.go -package=mocks
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

type IAttachmentRepository interface {
	Add(attachment *domain.Attachment) error
	Get(attachmentID uuid.UUID) (*domain.Attachment, error)
	GetMany(attachmentIDs ...uuid.UUID) ([]*domain.Attachment, error)
	Update(attachment *domain.Attachment) error
	GetChatAttachments(chatID uuid.UUID, limit *int) ([]*domain.Attachment, error)
}

type AttachmentRepository struct {
	txn  *badger.Txn
	log  *slog.Logger
	seen map[uuid.UUID]*domain.Attachment
}

func newAttachmentRepository(txn *badger.Txn, log *slog.Logger) *AttachmentRepository {
	return &AttachmentRepository{txn: txn, log: log, seen: make(map[uuid.UUID]*domain.Attachment)}
}

func (r *AttachmentRepository) Add(attachment *domain.Attachment) error {
	if err := r.store(attachment); err != nil {
		return err
	}

	indexKey := chatAttachmentKey(attachment.ChatID, attachment.Created, attachment.AttachmentID)
	if err := r.txn.Set(indexKey, []byte(attachment.AttachmentID.String())); err != nil {
		return err
	}

	r.seen[attachment.AttachmentID] = attachment
	return nil
}

func (r *AttachmentRepository) Update(attachment *domain.Attachment) error {
	if err := r.store(attachment); err != nil {
		return err
	}
	r.seen[attachment.AttachmentID] = attachment
	return nil
}

func (r *AttachmentRepository) store(attachment *domain.Attachment) error {
	bytes, err := json.Marshal(fromAttachment(attachment))
	if err != nil {
		return err
	}
	return r.txn.Set(attachmentKey(attachment.AttachmentID), bytes)
}

func (r *AttachmentRepository) Get(attachmentID uuid.UUID) (*domain.Attachment, error) {
	item, err := r.txn.Get(attachmentKey(attachmentID))
	if err == badger.ErrKeyNotFound {
		return nil, errors.AttachmentNotFound{AttachmentID: attachmentID}
	}
	if err != nil {
		return nil, err
	}

	var record attachmentRecord
	if err = item.Value(func(value []byte) error {
		return json.Unmarshal(value, &record)
	}); err != nil {
		return nil, err
	}

	attachment := toAttachment(record)
	r.seen[attachment.AttachmentID] = attachment
	return attachment, nil
}

func (r *AttachmentRepository) GetMany(attachmentIDs ...uuid.UUID) ([]*domain.Attachment, error) {
	attachments := make([]*domain.Attachment, 0, len(attachmentIDs))
	for _, attachmentID := range attachmentIDs {
		attachment, err := r.Get(attachmentID)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, attachment)
	}
	return attachments, nil
}

// GetChatAttachments returns a chat's attachments, newest first.
func (r *AttachmentRepository) GetChatAttachments(chatID uuid.UUID, limit *int) ([]*domain.Attachment, error) {
	prefix := chatAttachmentPrefix(chatID)

	var attachmentIDs []uuid.UUID
	err := func() error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := r.txn.NewIterator(options)
		defer it.Close()

		seekKey := append(append([]byte{}, prefix...), []byte(maxPaddedTimestamp)...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit != nil && len(attachmentIDs) == *limit {
				break
			}
			err := it.Item().Value(func(value []byte) error {
				attachmentID, err := uuid.Parse(string(value))
				if err != nil {
					return err
				}
				attachmentIDs = append(attachmentIDs, attachmentID)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}()
	if err != nil {
		return nil, err
	}

	return r.GetMany(attachmentIDs...)
}

func (r *AttachmentRepository) drainSeen() []event.DomainEvent {
	var events []event.DomainEvent
	for _, attachment := range r.seen {
		events = append(events, attachment.DrainEvents()...)
	}
	return events
}
