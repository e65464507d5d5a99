// Package domain contains the mutable chat aggregates and their invariants.
// Aggregates are transient working copies: a command handler loads them from
// the store, mutates them in place and persists them through the unit of
// work. No runtime, network, or storage logic should be added here.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"chat-backend/domain/event"
	"chat-backend/errors"
)

type Chat struct {
	ChatID    uuid.UUID
	Name      string
	Avatar    string
	Initiator string
	Created   time.Time

	// Participants has no duplicates; membership grows monotonically.
	Participants []*Participant

	LastMessage *uuid.UUID
	// LastActivityTimestamp is monotonic non-decreasing and advanced only by
	// accepted message additions.
	LastActivityTimestamp time.Time

	// History is reconstructed by repository queries, never persisted as a
	// chat field.
	History []*Message

	Deleted bool

	events event.Buffer
}

func NewChat(name, avatar, initiator string) *Chat {
	now := time.Now().UTC()
	return &Chat{
		ChatID:                uuid.New(),
		Name:                  name,
		Avatar:                avatar,
		Initiator:             initiator,
		Created:               now,
		LastActivityTimestamp: now,
	}
}

func (c *Chat) Participant(accountID string) (*Participant, bool) {
	return lo.Find(c.Participants, func(p *Participant) bool {
		return p.AccountID == accountID
	})
}

func (c *Chat) IsParticipant(accountID string) bool {
	_, ok := c.Participant(accountID)
	return ok
}

func (c *Chat) ParticipantIDs() []string {
	return lo.Map(c.Participants, func(p *Participant, _ int) string {
		return p.AccountID
	})
}

// AddParticipant is idempotent: adding a current participant is a no-op
// returning false and raises no second event.
func (c *Chat) AddParticipant(accountID, invitedBy string) bool {
	if c.IsParticipant(accountID) {
		return false
	}

	c.Participants = append(c.Participants, NewParticipant(accountID, invitedBy))
	c.events.Raise(event.NewParticipantAdded{
		ChatID:    c.ChatID,
		AccountID: accountID,
		InvitedBy: invitedBy,
	})
	return true
}

// AddMessage registers an accepted message: it joins the history, the
// last-message watermark advances unless the current one is strictly newer,
// and every attachment carried by the message is marked as sent.
func (c *Chat) AddMessage(message *Message) error {
	if lo.ContainsBy(c.History, func(m *Message) bool { return m.MessageID == message.MessageID }) {
		return errors.DuplicateMessage{MessageID: message.MessageID, ChatID: c.ChatID}
	}

	c.History = append(c.History, message)

	if !c.LastActivityTimestamp.After(message.Created) {
		c.LastMessage = &message.MessageID
		c.LastActivityTimestamp = message.Created
	}

	for _, attachment := range message.Attachments {
		if err := attachment.Send(message.MessageID); err != nil {
			return err
		}
	}

	c.events.Raise(event.NewMessageAdded{
		ChatID:    c.ChatID,
		MessageID: message.MessageID,
		Sender:    message.Sender,
	})
	return nil
}

// ReadMessage advances the reader's last-read pointer and returns the read
// mark for the caller to persist. Reading a deleted message, reading as a
// non-participant, or re-reading a message at or before the current mark is
// a no-op returning nil.
func (c *Chat) ReadMessage(reader string, message *Message) *ReadMark {
	if message.Deleted {
		return nil
	}

	participant, ok := c.Participant(reader)
	if !ok {
		return nil
	}

	if participant.LastReadMessageID != nil {
		if *participant.LastReadMessageID == message.MessageID || !participant.LastReadAt.Before(message.Created) {
			return nil
		}
	}

	readAt := time.Now().UTC()
	participant.LastReadMessageID = &message.MessageID
	participant.LastReadAt = message.Created

	c.events.Raise(event.MessageRead{
		ChatID:    c.ChatID,
		MessageID: message.MessageID,
		ReaderID:  reader,
		ReadAt:    readAt,
	})
	return NewReadMark(c.ChatID, reader, message.MessageID, readAt)
}

func (c *Chat) AddTag(accountID string, tag ChatTag) error {
	participant, ok := c.Participant(accountID)
	if !ok {
		return errors.ParticipantNotInChat{AccountID: accountID, ChatID: c.ChatID}
	}
	participant.AddTag(tag)
	return nil
}

func (c *Chat) RemoveTag(accountID string, tag ChatTag) error {
	participant, ok := c.Participant(accountID)
	if !ok {
		return errors.ParticipantNotInChat{AccountID: accountID, ChatID: c.ChatID}
	}
	if !participant.RemoveTag(tag) {
		return errors.TagNotFound{AccountID: accountID, ChatID: c.ChatID, Tag: string(tag)}
	}
	return nil
}

// SetFirstWriter gates who may send the opening message in restricted chats.
func (c *Chat) SetFirstWriter(accountID string, value bool) error {
	participant, ok := c.Participant(accountID)
	if !ok {
		return errors.ParticipantNotInChat{AccountID: accountID, ChatID: c.ChatID}
	}
	participant.FirstWriter = value
	return nil
}

// Delete soft-deletes the chat; a second call is a no-op returning false.
func (c *Chat) Delete(deletedBy string) bool {
	if c.Deleted {
		return false
	}
	c.Deleted = true
	c.events.Raise(event.ChatDeleted{ChatID: c.ChatID, DeletedBy: deletedBy})
	return true
}

// DrainEvents destructively returns the buffered domain events. Events
// raised by messages in the history are drained by the message repository,
// not here.
func (c *Chat) DrainEvents() []event.DomainEvent {
	return c.events.Drain()
}
