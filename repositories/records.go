package repositories

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"chat-backend/domain"
)

// Records are the JSON documents stored in BadgerDB. They mirror the
// aggregates field for field so that a persist-then-load round trip yields
// an equal value.

type participantRecord struct {
	AccountID         string     `json:"account_id"`
	InvitedBy         string     `json:"invited_by"`
	FirstWriter       bool       `json:"first_writer"`
	Tags              []string   `json:"tags,omitempty"`
	LastReadMessageID *uuid.UUID `json:"last_read_message_id,omitempty"`
	LastReadAt        time.Time  `json:"last_read_at"`
}

type chatRecord struct {
	ChatID                uuid.UUID           `json:"chat_id"`
	Name                  string              `json:"name"`
	Avatar                string              `json:"avatar,omitempty"`
	Initiator             string              `json:"initiator"`
	Created               time.Time           `json:"created"`
	Participants          []participantRecord `json:"participants"`
	LastMessage           *uuid.UUID          `json:"last_message,omitempty"`
	LastActivityTimestamp time.Time           `json:"last_activity_timestamp"`
	Deleted               bool                `json:"deleted"`
}

type reactionRecord struct {
	ReactionID uuid.UUID `json:"reaction_id"`
	MessageID  uuid.UUID `json:"message_id"`
	Reactor    string    `json:"reactor"`
	Emoji      string    `json:"emoji"`
	Created    time.Time `json:"created"`
}

type attachmentRecord struct {
	AttachmentID uuid.UUID      `json:"attachment_id"`
	ChatID       uuid.UUID      `json:"chat_id"`
	Uploader     string         `json:"uploader"`
	ContentType  string         `json:"content_type"`
	Status       string         `json:"status"`
	Filename     string         `json:"filename,omitempty"`
	URLs         []string       `json:"urls,omitempty"`
	Meta         map[string]any `json:"meta,omitempty"`
	MessageID    *uuid.UUID     `json:"message_id,omitempty"`
	Created      time.Time      `json:"created"`
	UploadedAt   *time.Time     `json:"uploaded_at,omitempty"`
	SentAt       *time.Time     `json:"sent_at,omitempty"`
}

type messageRecord struct {
	MessageID uuid.UUID  `json:"message_id"`
	ChatID    uuid.UUID  `json:"chat_id"`
	Sender    string     `json:"sender"`
	ReplyTo   *uuid.UUID `json:"reply_to,omitempty"`
	Content   string     `json:"content"`
	// Attachments are denormalized snapshots: they are immutable once the
	// carrying message is accepted.
	Attachments []attachmentRecord `json:"attachments,omitempty"`
	Reactions   []reactionRecord   `json:"reactions,omitempty"`
	Deleted     bool               `json:"deleted"`
	Created     time.Time          `json:"created"`
	Updated     time.Time          `json:"updated"`
}

type readMarkRecord struct {
	MarkID    uuid.UUID `json:"mark_id"`
	ChatID    uuid.UUID `json:"chat_id"`
	AccountID string    `json:"account_id"`
	MessageID uuid.UUID `json:"message_id"`
	ReadAt    time.Time `json:"read_at"`
}

func fromChat(chat *domain.Chat) chatRecord {
	return chatRecord{
		ChatID:    chat.ChatID,
		Name:      chat.Name,
		Avatar:    chat.Avatar,
		Initiator: chat.Initiator,
		Created:   chat.Created,
		Participants: lo.Map(chat.Participants, func(p *domain.Participant, _ int) participantRecord {
			return participantRecord{
				AccountID:   p.AccountID,
				InvitedBy:   p.InvitedBy,
				FirstWriter: p.FirstWriter,
				Tags: lo.Map(lo.Keys(p.Tags), func(tag domain.ChatTag, _ int) string {
					return string(tag)
				}),
				LastReadMessageID: p.LastReadMessageID,
				LastReadAt:        p.LastReadAt,
			}
		}),
		LastMessage:           chat.LastMessage,
		LastActivityTimestamp: chat.LastActivityTimestamp,
		Deleted:               chat.Deleted,
	}
}

func toChat(record chatRecord) *domain.Chat {
	return &domain.Chat{
		ChatID:    record.ChatID,
		Name:      record.Name,
		Avatar:    record.Avatar,
		Initiator: record.Initiator,
		Created:   record.Created,
		Participants: lo.Map(record.Participants, func(p participantRecord, _ int) *domain.Participant {
			return &domain.Participant{
				AccountID:   p.AccountID,
				InvitedBy:   p.InvitedBy,
				FirstWriter: p.FirstWriter,
				Tags: lo.SliceToMap(p.Tags, func(tag string) (domain.ChatTag, struct{}) {
					return domain.ChatTag(tag), struct{}{}
				}),
				LastReadMessageID: p.LastReadMessageID,
				LastReadAt:        p.LastReadAt,
			}
		}),
		LastMessage:           record.LastMessage,
		LastActivityTimestamp: record.LastActivityTimestamp,
		Deleted:               record.Deleted,
	}
}

func fromReaction(reaction domain.Reaction) reactionRecord {
	return reactionRecord(reaction)
}

func toReaction(record reactionRecord) domain.Reaction {
	return domain.Reaction(record)
}

func fromAttachment(attachment *domain.Attachment) attachmentRecord {
	return attachmentRecord{
		AttachmentID: attachment.AttachmentID,
		ChatID:       attachment.ChatID,
		Uploader:     attachment.Uploader,
		ContentType:  string(attachment.ContentType),
		Status:       string(attachment.Status),
		Filename:     attachment.Filename,
		URLs:         attachment.URLs,
		Meta:         attachment.Meta,
		MessageID:    attachment.MessageID,
		Created:      attachment.Created,
		UploadedAt:   attachment.UploadedAt,
		SentAt:       attachment.SentAt,
	}
}

func toAttachment(record attachmentRecord) *domain.Attachment {
	return &domain.Attachment{
		AttachmentID: record.AttachmentID,
		ChatID:       record.ChatID,
		Uploader:     record.Uploader,
		ContentType:  domain.AttachmentType(record.ContentType),
		Status:       domain.AttachmentStatus(record.Status),
		Filename:     record.Filename,
		URLs:         record.URLs,
		Meta:         record.Meta,
		MessageID:    record.MessageID,
		Created:      record.Created,
		UploadedAt:   record.UploadedAt,
		SentAt:       record.SentAt,
	}
}

func fromMessage(message *domain.Message) messageRecord {
	return messageRecord{
		MessageID: message.MessageID,
		ChatID:    message.ChatID,
		Sender:    message.Sender,
		ReplyTo:   message.ReplyTo,
		Content:   message.Content,
		Attachments: lo.Map(message.Attachments, func(a *domain.Attachment, _ int) attachmentRecord {
			return fromAttachment(a)
		}),
		Reactions: lo.Map(message.Reactions, func(r domain.Reaction, _ int) reactionRecord {
			return fromReaction(r)
		}),
		Deleted: message.Deleted,
		Created: message.Created,
		Updated: message.Updated,
	}
}

func toMessage(record messageRecord) *domain.Message {
	return &domain.Message{
		MessageID: record.MessageID,
		ChatID:    record.ChatID,
		Sender:    record.Sender,
		ReplyTo:   record.ReplyTo,
		Content:   record.Content,
		Attachments: lo.Map(record.Attachments, func(a attachmentRecord, _ int) *domain.Attachment {
			return toAttachment(a)
		}),
		Reactions: lo.Map(record.Reactions, func(r reactionRecord, _ int) domain.Reaction {
			return toReaction(r)
		}),
		Deleted: record.Deleted,
		Created: record.Created,
		Updated: record.Updated,
	}
}

func fromReadMark(mark *domain.ReadMark) readMarkRecord {
	return readMarkRecord(*mark)
}

func toReadMark(record readMarkRecord) *domain.ReadMark {
	mark := domain.ReadMark(record)
	return &mark
}
