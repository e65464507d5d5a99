package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"chat-backend/domain/event"
	"chat-backend/infrastructure/broker"
	"chat-backend/repositories"
)

// Notification is the wire envelope pushed to subscribed connections. The
// event name discriminates the payload shape.
type Notification struct {
	EventName string          `json:"event_name"`
	Payload   json.RawMessage `json:"payload"`
}

func EncodeNotification(name string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Notification{EventName: name, Payload: raw})
}

func DecodeNotification(raw []byte) (Notification, error) {
	var n Notification
	err := json.Unmarshal(raw, &n)
	return n, err
}

type MessageAddedPayload struct {
	ChatID    uuid.UUID  `json:"chat_id"`
	MessageID uuid.UUID  `json:"message_id"`
	Sender    string     `json:"sender"`
	Content   string     `json:"content"`
	ReplyTo   *uuid.UUID `json:"reply_to,omitempty"`
	Created   time.Time  `json:"created"`
}

type MessageReadPayload struct {
	ChatID    uuid.UUID `json:"chat_id"`
	MessageID uuid.UUID `json:"message_id"`
	Reader    string    `json:"reader"`
	ReadAt    time.Time `json:"read_at"`
}

type MessageUpdatedPayload struct {
	ChatID    uuid.UUID `json:"chat_id"`
	MessageID uuid.UUID `json:"message_id"`
	Content   string    `json:"content"`
}

type MessageDeletedPayload struct {
	ChatID    uuid.UUID `json:"chat_id"`
	MessageID uuid.UUID `json:"message_id"`
}

type MessageReactedPayload struct {
	ChatID    uuid.UUID `json:"chat_id"`
	MessageID uuid.UUID `json:"message_id"`
	Reactor   string    `json:"reactor"`
	Emoji     string    `json:"emoji"`
}

type MessageUnreactedPayload struct {
	ChatID    uuid.UUID `json:"chat_id"`
	MessageID uuid.UUID `json:"message_id"`
	Reactor   string    `json:"reactor"`
}

type ParticipantAddedPayload struct {
	ChatID    uuid.UUID `json:"chat_id"`
	AccountID string    `json:"account_id"`
	InvitedBy string    `json:"invited_by"`
}

type ChatDeletedPayload struct {
	ChatID    uuid.UUID `json:"chat_id"`
	DeletedBy string    `json:"deleted_by"`
}

type AttachmentUploadedPayload struct {
	ChatID       uuid.UUID `json:"chat_id"`
	AttachmentID uuid.UUID `json:"attachment_id"`
	Uploader     string    `json:"uploader"`
	URLs         []string  `json:"urls"`
}

type TappingPayload struct {
	ChatID    uuid.UUID `json:"chat_id"`
	AccountID string    `json:"account_id"`
}

// Notifier turns committed domain events into broker messages. One channel
// per recipient account; a failed delivery to one recipient is logged and
// never blocks the others.
type Notifier struct {
	store     *repositories.Store
	publisher broker.MessageBroker
	log       *slog.Logger
}

func NewNotifier(store *repositories.Store, publisher broker.MessageBroker, log *slog.Logger) *Notifier {
	return &Notifier{store: store, publisher: publisher, log: log}
}

func (n *Notifier) Handle(ctx context.Context, e event.DomainEvent) error {
	switch ev := e.(type) {
	case event.NewMessageAdded:
		return n.notifyMessageAdded(ctx, ev)
	case event.MessageRead:
		return n.fanOutToChat(ctx, ev.ChatID, ev.ReaderID, e.EventName(), MessageReadPayload{
			ChatID:    ev.ChatID,
			MessageID: ev.MessageID,
			Reader:    ev.ReaderID,
			ReadAt:    ev.ReadAt,
		})
	case event.MessageUpdated:
		return n.fanOutToChat(ctx, ev.ChatID, ev.MessageSender, e.EventName(), MessageUpdatedPayload{
			ChatID:    ev.ChatID,
			MessageID: ev.MessageID,
			Content:   ev.Content,
		})
	case event.MessageDeleted:
		return n.fanOutToChat(ctx, ev.ChatID, ev.MessageSender, e.EventName(), MessageDeletedPayload{
			ChatID:    ev.ChatID,
			MessageID: ev.MessageID,
		})
	case event.MessageReacted:
		return n.fanOutToChat(ctx, ev.ChatID, ev.Reactor, e.EventName(), MessageReactedPayload{
			ChatID:    ev.ChatID,
			MessageID: ev.MessageID,
			Reactor:   ev.Reactor,
			Emoji:     ev.Emoji,
		})
	case event.MessageUnreacted:
		return n.fanOutToChat(ctx, ev.ChatID, ev.Reactor, e.EventName(), MessageUnreactedPayload{
			ChatID:    ev.ChatID,
			MessageID: ev.MessageID,
			Reactor:   ev.Reactor,
		})
	case event.NewParticipantAdded:
		// The newcomer is notified too, so only the inviter is excluded.
		return n.fanOutToChat(ctx, ev.ChatID, ev.InvitedBy, e.EventName(), ParticipantAddedPayload{
			ChatID:    ev.ChatID,
			AccountID: ev.AccountID,
			InvitedBy: ev.InvitedBy,
		})
	case event.ChatDeleted:
		return n.fanOutToChat(ctx, ev.ChatID, ev.DeletedBy, e.EventName(), ChatDeletedPayload{
			ChatID:    ev.ChatID,
			DeletedBy: ev.DeletedBy,
		})
	case event.NewAttachmentUploaded:
		return n.notifyAttachmentUploaded(ctx, ev)
	case event.TappingInChat:
		return n.fanOutToChat(ctx, ev.ChatID, ev.AccountID, e.EventName(), TappingPayload{
			ChatID:    ev.ChatID,
			AccountID: ev.AccountID,
		})
	default:
		n.log.Debug("event carries no notification", "event", e.EventName())
		return nil
	}
}

// notifyMessageAdded enriches the event with the stored message content so
// every participant, sender devices included, receives the full message.
func (n *Notifier) notifyMessageAdded(ctx context.Context, ev event.NewMessageAdded) error {
	uow := n.store.Begin()
	defer uow.Rollback()

	message, err := uow.Messages.Get(ev.MessageID)
	if err != nil {
		return err
	}
	chat, err := uow.Chats.Get(ev.ChatID)
	if err != nil {
		return err
	}

	payload := MessageAddedPayload{
		ChatID:    ev.ChatID,
		MessageID: ev.MessageID,
		Sender:    ev.Sender,
		Content:   message.Content,
		ReplyTo:   message.ReplyTo,
		Created:   message.Created,
	}
	return n.deliver(ctx, chat.ParticipantIDs(), ev.EventName(), payload)
}

func (n *Notifier) notifyAttachmentUploaded(ctx context.Context, ev event.NewAttachmentUploaded) error {
	uow := n.store.Begin()
	defer uow.Rollback()

	attachment, err := uow.Attachments.Get(ev.AttachmentID)
	if err != nil {
		return err
	}
	chat, err := uow.Chats.Get(attachment.ChatID)
	if err != nil {
		return err
	}

	recipients := lo.Without(chat.ParticipantIDs(), attachment.Uploader)
	return n.deliver(ctx, recipients, ev.EventName(), AttachmentUploadedPayload{
		ChatID:       attachment.ChatID,
		AttachmentID: ev.AttachmentID,
		Uploader:     attachment.Uploader,
		URLs:         ev.URLs,
	})
}

// fanOutToChat delivers the payload to every chat participant except the
// actor who triggered the event.
func (n *Notifier) fanOutToChat(ctx context.Context, chatID uuid.UUID, actor, name string, payload any) error {
	uow := n.store.Begin()
	defer uow.Rollback()

	chat, err := uow.Chats.Get(chatID)
	if err != nil {
		return err
	}
	recipients := lo.Without(chat.ParticipantIDs(), actor)
	return n.deliver(ctx, recipients, name, payload)
}

func (n *Notifier) deliver(ctx context.Context, recipients []string, name string, payload any) error {
	raw, err := EncodeNotification(name, payload)
	if err != nil {
		return err
	}
	for _, recipient := range recipients {
		if err := n.publisher.SendMessage(ctx, recipient, raw); err != nil {
			n.log.Error("notification delivery failed",
				"event", name,
				"recipient", recipient,
				"error", err)
		}
	}
	return nil
}
