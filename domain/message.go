package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"chat-backend/domain/event"
	"chat-backend/errors"
)

const (
	// TotalEmojiNumber caps reactions on a single message across all reactors.
	TotalEmojiNumber = 12
	// EmojiPerReactor caps reactions held by one reactor on a single message.
	EmojiPerReactor = 3
	// MaxAttachments caps attachments carried by a single message.
	MaxAttachments = 5
)

// Reaction is immutable. Its identity is the reaction id, not the
// (reactor, emoji) pair, so one reactor may hold several distinct reactions.
type Reaction struct {
	ReactionID uuid.UUID
	MessageID  uuid.UUID
	Reactor    string
	Emoji      string
	Created    time.Time
}

func NewReaction(messageID uuid.UUID, reactor, emoji string) Reaction {
	return Reaction{
		ReactionID: uuid.New(),
		MessageID:  messageID,
		Reactor:    reactor,
		Emoji:      emoji,
		Created:    time.Now().UTC(),
	}
}

// Message is a mutable aggregate. Mutation methods validate an invariant,
// change state and raise exactly one domain event describing the change.
type Message struct {
	MessageID   uuid.UUID
	ChatID      uuid.UUID
	Sender      string
	ReplyTo     *uuid.UUID
	Content     string
	Attachments []*Attachment
	Reactions   []Reaction
	Deleted     bool
	Created     time.Time
	Updated     time.Time

	events event.Buffer
}

func NewMessage(chatID uuid.UUID, sender, content string, replyTo *uuid.UUID, attachments []*Attachment) *Message {
	now := time.Now().UTC()
	return &Message{
		MessageID:   uuid.New(),
		ChatID:      chatID,
		Sender:      sender,
		ReplyTo:     replyTo,
		Content:     content,
		Attachments: attachments,
		Created:     now,
		Updated:     now,
	}
}

func (m *Message) reactionsPerReactor(reactor string) int {
	return lo.CountBy(m.Reactions, func(r Reaction) bool {
		return r.Reactor == reactor
	})
}

func (m *Message) alreadyReactedBy(reactor, emoji string) bool {
	return lo.ContainsBy(m.Reactions, func(r Reaction) bool {
		return r.Reactor == reactor && r.Emoji == emoji
	})
}

// React appends a reaction. A repeated (reactor, emoji) pair is a no-op and
// returns false; breaking a reaction cap fails without mutating state.
func (m *Message) React(reaction Reaction) (bool, error) {
	if m.alreadyReactedBy(reaction.Reactor, reaction.Emoji) {
		return false, nil
	}

	if len(m.Reactions) == TotalEmojiNumber || m.reactionsPerReactor(reaction.Reactor) == EmojiPerReactor {
		return false, errors.TooManyReactions{
			Reactor:    reaction.Reactor,
			ReactionID: reaction.ReactionID,
			MessageID:  m.MessageID,
		}
	}

	m.Reactions = append(m.Reactions, reaction)
	m.events.Raise(event.MessageReacted{
		ChatID:     m.ChatID,
		ReactionID: reaction.ReactionID,
		MessageID:  m.MessageID,
		Reactor:    reaction.Reactor,
		Emoji:      reaction.Emoji,
	})
	return true, nil
}

// Unreact removes the reaction with the given id. Removing an absent
// reaction is a no-op returning false.
func (m *Message) Unreact(reactionID uuid.UUID) bool {
	reaction, found := lo.Find(m.Reactions, func(r Reaction) bool {
		return r.ReactionID == reactionID
	})
	if !found {
		return false
	}

	m.Reactions = lo.Reject(m.Reactions, func(r Reaction, _ int) bool {
		return r.ReactionID == reactionID
	})
	m.events.Raise(event.MessageUnreacted{
		ChatID:     m.ChatID,
		ReactionID: reaction.ReactionID,
		MessageID:  m.MessageID,
		Reactor:    reaction.Reactor,
	})
	return true
}

// Update replaces the content of a live message.
func (m *Message) Update(content string) error {
	if m.Deleted {
		return errors.MessageNotFound{MessageID: m.MessageID}
	}

	m.Content = content
	m.Updated = time.Now().UTC()
	m.events.Raise(event.MessageUpdated{
		ChatID:        m.ChatID,
		MessageID:     m.MessageID,
		MessageSender: m.Sender,
		Content:       m.Content,
		AttachmentIDs: m.AttachmentIDs(),
	})
	return nil
}

// Delete soft-deletes the message. The transition is one-way; a second call
// is a no-op returning false and raises no second event.
func (m *Message) Delete() bool {
	if m.Deleted {
		return false
	}

	m.Deleted = true
	m.Updated = time.Now().UTC()
	m.events.Raise(event.MessageDeleted{
		ChatID:        m.ChatID,
		MessageID:     m.MessageID,
		MessageSender: m.Sender,
	})
	return true
}

func (m *Message) AttachmentIDs() []uuid.UUID {
	return lo.Map(m.Attachments, func(a *Attachment, _ int) uuid.UUID {
		return a.AttachmentID
	})
}

// DrainEvents destructively returns the buffered domain events.
func (m *Message) DrainEvents() []event.DomainEvent {
	return m.events.Drain()
}
