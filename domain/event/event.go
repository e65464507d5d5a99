// Package event defines the domain events raised by chat aggregates.
// Events are immutable records of accepted state changes; they are buffered
// by the aggregate that raised them and drained after a successful commit.
package event

import (
	"time"

	"github.com/google/uuid"
)

type DomainEvent interface {
	EventName() string
}

type NewMessageAdded struct {
	ChatID    uuid.UUID
	MessageID uuid.UUID
	Sender    string
}

func (NewMessageAdded) EventName() string { return "NewMessageAdded" }

type NewParticipantAdded struct {
	ChatID    uuid.UUID
	AccountID string
	InvitedBy string
}

func (NewParticipantAdded) EventName() string { return "NewParticipantAdded" }

type MessageRead struct {
	ChatID    uuid.UUID
	MessageID uuid.UUID
	ReaderID  string
	ReadAt    time.Time
}

func (MessageRead) EventName() string { return "MessageRead" }

type MessageUpdated struct {
	ChatID        uuid.UUID
	MessageID     uuid.UUID
	MessageSender string
	Content       string
	AttachmentIDs []uuid.UUID
}

func (MessageUpdated) EventName() string { return "MessageUpdated" }

type MessageDeleted struct {
	ChatID        uuid.UUID
	MessageID     uuid.UUID
	MessageSender string
}

func (MessageDeleted) EventName() string { return "MessageDeleted" }

type MessageReacted struct {
	ChatID     uuid.UUID
	ReactionID uuid.UUID
	MessageID  uuid.UUID
	Reactor    string
	Emoji      string
}

func (MessageReacted) EventName() string { return "MessageReacted" }

type MessageUnreacted struct {
	ChatID     uuid.UUID
	ReactionID uuid.UUID
	MessageID  uuid.UUID
	Reactor    string
}

func (MessageUnreacted) EventName() string { return "MessageUnreacted" }

type NewAttachmentUploaded struct {
	AttachmentID uuid.UUID
	URLs         []string
}

func (NewAttachmentUploaded) EventName() string { return "NewAttachmentUploaded" }

type AttachmentSent struct {
	MessageID    uuid.UUID
	AttachmentID uuid.UUID
}

func (AttachmentSent) EventName() string { return "AttachmentSent" }

type ChatDeleted struct {
	ChatID    uuid.UUID
	DeletedBy string
}

func (ChatDeleted) EventName() string { return "ChatDeleted" }

// TappingInChat is ephemeral: it is emitted directly by the tapping handler
// and never goes through a repository or the unit of work.
type TappingInChat struct {
	ChatID    uuid.UUID
	AccountID string
}

func (TappingInChat) EventName() string { return "TappingInChat" }
