package errors

import (
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrWorkerPanic            = fmt.Errorf("worker panic")
	ErrEmptyWords             = fmt.Errorf("no words have been found")
	ErrSubscriptionNotStarted = fmt.Errorf("subscription not started")
	ErrSubscriptionOpen       = fmt.Errorf("subscription already open")
	ErrBrokerNotStarted       = fmt.Errorf("broker not started")
	ErrUnitOfWorkDone         = fmt.Errorf("unit of work already finished")
)

// ChatNotFound is returned when a chat id does not resolve to a stored chat.
type ChatNotFound struct {
	ChatID uuid.UUID
}

func (e ChatNotFound) Error() string {
	return fmt.Sprintf("chat %s not found", e.ChatID)
}

// MessageNotFound covers both absent and soft-deleted messages.
type MessageNotFound struct {
	MessageID uuid.UUID
}

func (e MessageNotFound) Error() string {
	return fmt.Sprintf("message %s not found", e.MessageID)
}

type AttachmentNotFound struct {
	AttachmentID uuid.UUID
}

func (e AttachmentNotFound) Error() string {
	return fmt.Sprintf("attachment %s not found", e.AttachmentID)
}

type ReactionNotFound struct {
	ReactionID uuid.UUID
	MessageID  uuid.UUID
}

func (e ReactionNotFound) Error() string {
	return fmt.Sprintf("reaction %s not found on message %s", e.ReactionID, e.MessageID)
}

type DuplicateMessage struct {
	MessageID uuid.UUID
	ChatID    uuid.UUID
}

func (e DuplicateMessage) Error() string {
	return fmt.Sprintf("message %s in chat %s already exists", e.MessageID, e.ChatID)
}

type AlreadyChatParticipant struct {
	AccountID string
	ChatID    uuid.UUID
}

func (e AlreadyChatParticipant) Error() string {
	return fmt.Sprintf("account %s already is chat %s participant", e.AccountID, e.ChatID)
}

// ParticipantNotInChat is an authorization failure, distinct from not-found.
type ParticipantNotInChat struct {
	AccountID string
	ChatID    uuid.UUID
}

func (e ParticipantNotInChat) Error() string {
	return fmt.Sprintf("account %s is not a participant in chat %s", e.AccountID, e.ChatID)
}

type TagNotFound struct {
	AccountID string
	ChatID    uuid.UUID
	Tag       string
}

func (e TagNotFound) Error() string {
	return fmt.Sprintf("tag %q not set for account %s in chat %s", e.Tag, e.AccountID, e.ChatID)
}

type TooManyReactions struct {
	Reactor    string
	ReactionID uuid.UUID
	MessageID  uuid.UUID
}

func (e TooManyReactions) Error() string {
	return fmt.Sprintf("too many reactions by %s on message %s", e.Reactor, e.MessageID)
}

type AlreadyUploaded struct {
	AttachmentID uuid.UUID
}

func (e AlreadyUploaded) Error() string {
	return fmt.Sprintf("attachment %s already uploaded", e.AttachmentID)
}

type AlreadySent struct {
	AttachmentID uuid.UUID
	MessageID    uuid.UUID
}

func (e AlreadySent) Error() string {
	return fmt.Sprintf("attachment %s already sent with message %s", e.AttachmentID, e.MessageID)
}

type AttachmentNotForChat struct {
	AttachmentID uuid.UUID
	ChatID       uuid.UUID
}

func (e AttachmentNotForChat) Error() string {
	return fmt.Sprintf("attachment %s not for chat %s", e.AttachmentID, e.ChatID)
}

type AttachmentNotForSender struct {
	AttachmentID uuid.UUID
	AccountID    string
}

func (e AttachmentNotForSender) Error() string {
	return fmt.Sprintf("attachment %s not for account %s", e.AttachmentID, e.AccountID)
}

// FirstMessageRestricted is raised when a restricted chat's opening message
// comes from a participant without the first-writer flag.
type FirstMessageRestricted struct {
	AccountID string
	ChatID    uuid.UUID
}

func (e FirstMessageRestricted) Error() string {
	return fmt.Sprintf("account %s may not open chat %s", e.AccountID, e.ChatID)
}

type NotChatInitiator struct {
	AccountID string
	ChatID    uuid.UUID
}

func (e NotChatInitiator) Error() string {
	return fmt.Sprintf("account %s is not the initiator of chat %s", e.AccountID, e.ChatID)
}

type NotMessageSender struct {
	AccountID string
	MessageID uuid.UUID
}

func (e NotMessageSender) Error() string {
	return fmt.Sprintf("account %s is not the sender of message %s", e.AccountID, e.MessageID)
}

type StartSubscriptionError struct {
	AccountID string
	Cause     error
}

func (e StartSubscriptionError) Error() string {
	return fmt.Sprintf("failed to start subscription for account %s: %v", e.AccountID, e.Cause)
}

func (e StartSubscriptionError) Unwrap() error {
	return e.Cause
}
