package domain

import (
	"time"

	"github.com/google/uuid"

	"chat-backend/domain/event"
	"chat-backend/errors"
)

type AttachmentType string

const (
	AttachmentImage  AttachmentType = "image"
	AttachmentVideo  AttachmentType = "video"
	AttachmentAudio  AttachmentType = "audio"
	AttachmentVoice  AttachmentType = "voice"
	AttachmentCircle AttachmentType = "circle"
	AttachmentFile   AttachmentType = "file"
)

type AttachmentStatus string

const (
	AttachmentNew      AttachmentStatus = "new"
	AttachmentUploaded AttachmentStatus = "uploaded"
	AttachmentSent     AttachmentStatus = "sent"
)

// Attachment follows a one-way lifecycle: new, then uploaded, then sent.
// Upload and Send each fail when re-invoked on an already-progressed
// attachment.
type Attachment struct {
	AttachmentID uuid.UUID
	ChatID       uuid.UUID
	Uploader     string
	ContentType  AttachmentType
	Status       AttachmentStatus
	Filename     string
	URLs         []string
	Meta         map[string]any
	MessageID    *uuid.UUID
	Created      time.Time
	UploadedAt   *time.Time
	SentAt       *time.Time

	events event.Buffer
}

func NewAttachment(chatID uuid.UUID, uploader, filename string, contentType AttachmentType) *Attachment {
	return &Attachment{
		AttachmentID: uuid.New(),
		ChatID:       chatID,
		Uploader:     uploader,
		ContentType:  contentType,
		Status:       AttachmentNew,
		Filename:     filename,
		Created:      time.Now().UTC(),
	}
}

// Upload records the delivered URLs and metadata produced by object storage.
func (a *Attachment) Upload(urls []string, meta map[string]any) error {
	if a.Status != AttachmentNew || len(a.URLs) > 0 {
		return errors.AlreadyUploaded{AttachmentID: a.AttachmentID}
	}

	now := time.Now().UTC()
	a.URLs = urls
	a.Meta = meta
	a.UploadedAt = &now
	a.Status = AttachmentUploaded

	a.events.Raise(event.NewAttachmentUploaded{
		AttachmentID: a.AttachmentID,
		URLs:         urls,
	})
	return nil
}

// Send links the attachment to the message that carries it.
func (a *Attachment) Send(messageID uuid.UUID) error {
	if a.MessageID != nil {
		return errors.AlreadySent{AttachmentID: a.AttachmentID, MessageID: *a.MessageID}
	}

	now := time.Now().UTC()
	a.MessageID = &messageID
	a.SentAt = &now
	a.Status = AttachmentSent

	a.events.Raise(event.AttachmentSent{
		MessageID:    messageID,
		AttachmentID: a.AttachmentID,
	})
	return nil
}

// DrainEvents destructively returns the buffered domain events.
func (a *Attachment) DrainEvents() []event.DomainEvent {
	return a.events.Drain()
}
