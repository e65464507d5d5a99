package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReadMark is the durable record of the most recent message an account has
// read in a chat. Marks are append-only; the current value for an
// (account, chat) pair is the most recent by timestamp.
type ReadMark struct {
	MarkID    uuid.UUID
	ChatID    uuid.UUID
	AccountID string
	MessageID uuid.UUID
	ReadAt    time.Time
}

func NewReadMark(chatID uuid.UUID, accountID string, messageID uuid.UUID, readAt time.Time) *ReadMark {
	return &ReadMark{
		MarkID:    uuid.New(),
		ChatID:    chatID,
		AccountID: accountID,
		MessageID: messageID,
		ReadAt:    readAt,
	}
}
