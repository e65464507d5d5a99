// Package services hosts the command side of the chat backend: a mediator
// routing validated commands to handlers, the handlers themselves running
// each use case inside one unit of work, and the event handlers that turn
// committed domain events into broker notifications and index updates.
package services

import (
	"time"

	"github.com/google/uuid"

	"chat-backend/domain"
)

// OpenChat creates a chat with the initiator plus any invited participants.
type OpenChat struct {
	Initiator    string `validate:"required"`
	Name         string `validate:"max=128"`
	Avatar       string `validate:"omitempty,url"`
	Participants []string
}

type ChatOpened struct {
	ChatID  uuid.UUID
	Created time.Time
}

type DeleteChat struct {
	ChatID    uuid.UUID `validate:"required"`
	AccountID string    `validate:"required"`
}

type GetChats struct {
	Participant string `validate:"required"`
	Tags        []string
}

type ChatsGot struct {
	Chats []*domain.Chat
}

type AddParticipant struct {
	ChatID    uuid.UUID `validate:"required"`
	AccountID string    `validate:"required"`
	InvitedBy string    `validate:"required"`
}

type SendMessage struct {
	ChatID      uuid.UUID `validate:"required"`
	Sender      string    `validate:"required"`
	Content     string
	ReplyTo     *uuid.UUID
	Attachments []uuid.UUID `validate:"max=5"`
}

type MessageSent struct {
	MessageID uuid.UUID
	Created   time.Time
}

type UpdateMessage struct {
	MessageID uuid.UUID `validate:"required"`
	AccountID string    `validate:"required"`
	Content   string    `validate:"required"`
}

type MessageContentUpdated struct {
	MessageID uuid.UUID
	Updated   time.Time
}

type DeleteMessage struct {
	MessageID uuid.UUID `validate:"required"`
	AccountID string    `validate:"required"`
}

type ReadMessage struct {
	MessageID uuid.UUID `validate:"required"`
	Reader    string    `validate:"required"`
}

// GetHistory pages a chat's live messages. A nil LatestMessageID starts from
// the newest message; Reverse walks towards older messages when true.
type GetHistory struct {
	ChatID          uuid.UUID `validate:"required"`
	Account         string    `validate:"required"`
	Limit           *int      `validate:"omitempty,gt=0"`
	LatestMessageID *uuid.UUID
	Reverse         bool
}

type HistoryGot struct {
	Chat *domain.Chat
}

type SearchMessages struct {
	ChatID  uuid.UUID `validate:"required"`
	Account string    `validate:"required"`
	Query   string    `validate:"required"`
	Limit   int       `validate:"omitempty,gt=0"`
}

type MessagesFound struct {
	Messages []*domain.Message
}

type ReactMessage struct {
	MessageID uuid.UUID `validate:"required"`
	Reactor   string    `validate:"required"`
	Emoji     string    `validate:"required,max=2"`
}

type MessageReacted struct {
	ReactionID uuid.UUID
}

type UnreactMessage struct {
	MessageID uuid.UUID `validate:"required"`
	Reactor   string    `validate:"required"`
	Emoji     string    `validate:"required,max=2"`
}

type GetReactions struct {
	MessageID uuid.UUID `validate:"required"`
}

type ReactionsGot struct {
	Reactions []domain.Reaction
}

type GetReactors struct {
	MessageID uuid.UUID `validate:"required"`
	Emoji     string    `validate:"required,max=2"`
}

type ReactorsGot struct {
	Reactors []string
}

type AddTag struct {
	ChatID    uuid.UUID `validate:"required"`
	AccountID string    `validate:"required"`
	Tag       string    `validate:"required,max=64"`
}

type RemoveTag struct {
	ChatID    uuid.UUID `validate:"required"`
	AccountID string    `validate:"required"`
	Tag       string    `validate:"required,max=64"`
}

type SetFirstWriter struct {
	ChatID    uuid.UUID `validate:"required"`
	AccountID string    `validate:"required"`
	Value     bool
}

// CreateAttachment registers an attachment slot before the client uploads
// the payload to object storage. When ContentType is empty it is sniffed
// from the Sample bytes.
type CreateAttachment struct {
	ChatID      uuid.UUID `validate:"required"`
	Uploader    string    `validate:"required"`
	Filename    string    `validate:"required"`
	ContentType string
	Sample      []byte
}

type AttachmentCreated struct {
	AttachmentID uuid.UUID
	ContentType  domain.AttachmentType
}

type UploadAttachment struct {
	AttachmentID uuid.UUID `validate:"required"`
	Uploader     string    `validate:"required"`
	URLs         []string  `validate:"required,min=1,dive,url"`
	Meta         map[string]any
}

type GetAttachments struct {
	ChatID  uuid.UUID `validate:"required"`
	Account string    `validate:"required"`
	Limit   *int      `validate:"omitempty,gt=0"`
}

type AttachmentsGot struct {
	Attachments []*domain.Attachment
}

// Tapping signals a participant typing in a chat. It is ephemeral: nothing
// is persisted and the signal is fanned out through the emitter only.
type Tapping struct {
	ChatID    uuid.UUID `validate:"required"`
	AccountID string    `validate:"required"`
}
