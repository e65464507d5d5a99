package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"chat-backend/domain"
	"chat-backend/domain/event"
	"chat-backend/errors"
	"chat-backend/repositories"
)

// ICensor screens outbound message content against the forbidden-word list.
type ICensor interface {
	Censor(content string) (string, []string)
	Language(content string) string
}

// censorContent screens content on every write path, so an edit cannot
// reinstate words the original send already masked.
func censorContent(censor ICensor, log *slog.Logger, content string, chatID uuid.UUID, sender string) string {
	if censor == nil || content == "" {
		return content
	}
	censored, matched := censor.Censor(content)
	if len(matched) == 0 {
		return content
	}
	log.Debug("message content censored",
		"chat", chatID,
		"sender", sender,
		"matches", len(matched),
		"language", censor.Language(content))
	return censored
}

type SendMessageHandler struct {
	store  *repositories.Store
	censor ICensor
	log    *slog.Logger
}

func NewSendMessageHandler(store *repositories.Store, censor ICensor, log *slog.Logger) *SendMessageHandler {
	return &SendMessageHandler{store: store, censor: censor, log: log}
}

func (h *SendMessageHandler) Handle(ctx context.Context, request any) (any, []event.DomainEvent, error) {
	cmd := request.(SendMessage)

	uow := h.store.Begin()
	defer uow.Rollback()

	chat, err := uow.Chats.Get(cmd.ChatID)
	if err != nil {
		return nil, nil, err
	}
	if chat.Deleted {
		return nil, nil, errors.ChatNotFound{ChatID: cmd.ChatID}
	}
	sender, ok := chat.Participant(cmd.Sender)
	if !ok {
		return nil, nil, errors.ParticipantNotInChat{AccountID: cmd.Sender, ChatID: cmd.ChatID}
	}
	if err := h.checkFirstWriter(chat, sender); err != nil {
		return nil, nil, err
	}

	attachments, err := h.loadAttachments(uow, cmd)
	if err != nil {
		return nil, nil, err
	}

	content := censorContent(h.censor, h.log, cmd.Content, cmd.ChatID, cmd.Sender)

	message := domain.NewMessage(cmd.ChatID, cmd.Sender, content, cmd.ReplyTo, attachments)
	if err := chat.AddMessage(message); err != nil {
		return nil, nil, err
	}

	if err := uow.Messages.Add(message); err != nil {
		return nil, nil, err
	}
	for _, attachment := range attachments {
		if err := uow.Attachments.Update(attachment); err != nil {
			return nil, nil, err
		}
	}
	if err := uow.Chats.Update(chat); err != nil {
		return nil, nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, nil, err
	}

	h.log.Info("message sent", "chat", cmd.ChatID, "message", message.MessageID, "sender", cmd.Sender)
	return MessageSent{MessageID: message.MessageID, Created: message.Created}, uow.Events(), nil
}

// checkFirstWriter gates the opening message of a restricted chat: when any
// participant carries the first-writer flag, only flagged participants may
// write before the first message lands.
func (h *SendMessageHandler) checkFirstWriter(chat *domain.Chat, sender *domain.Participant) error {
	if chat.LastMessage != nil || sender.FirstWriter {
		return nil
	}
	restricted := lo.ContainsBy(chat.Participants, func(p *domain.Participant) bool {
		return p.FirstWriter
	})
	if restricted {
		return errors.FirstMessageRestricted{AccountID: sender.AccountID, ChatID: chat.ChatID}
	}
	return nil
}

func (h *SendMessageHandler) loadAttachments(uow *repositories.UnitOfWork, cmd SendMessage) ([]*domain.Attachment, error) {
	if len(cmd.Attachments) == 0 {
		return nil, nil
	}

	attachments, err := uow.Attachments.GetMany(cmd.Attachments...)
	if err != nil {
		return nil, err
	}
	for _, attachment := range attachments {
		if attachment.ChatID != cmd.ChatID {
			return nil, errors.AttachmentNotForChat{AttachmentID: attachment.AttachmentID, ChatID: cmd.ChatID}
		}
		if attachment.Uploader != cmd.Sender {
			return nil, errors.AttachmentNotForSender{AttachmentID: attachment.AttachmentID, AccountID: cmd.Sender}
		}
	}
	return attachments, nil
}

type UpdateMessageHandler struct {
	store  *repositories.Store
	censor ICensor
	log    *slog.Logger
}

func NewUpdateMessageHandler(store *repositories.Store, censor ICensor, log *slog.Logger) *UpdateMessageHandler {
	return &UpdateMessageHandler{store: store, censor: censor, log: log}
}

func (h *UpdateMessageHandler) Handle(ctx context.Context, request any) (any, []event.DomainEvent, error) {
	cmd := request.(UpdateMessage)

	uow := h.store.Begin()
	defer uow.Rollback()

	message, err := uow.Messages.Get(cmd.MessageID)
	if err != nil {
		return nil, nil, err
	}
	if message.Sender != cmd.AccountID {
		return nil, nil, errors.NotMessageSender{AccountID: cmd.AccountID, MessageID: cmd.MessageID}
	}
	content := censorContent(h.censor, h.log, cmd.Content, message.ChatID, message.Sender)
	if err := message.Update(content); err != nil {
		return nil, nil, err
	}

	if err := uow.Messages.Update(message); err != nil {
		return nil, nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, nil, err
	}
	return MessageContentUpdated{MessageID: message.MessageID, Updated: message.Updated}, uow.Events(), nil
}

type DeleteMessageHandler struct {
	store *repositories.Store
	log   *slog.Logger
}

func NewDeleteMessageHandler(store *repositories.Store, log *slog.Logger) *DeleteMessageHandler {
	return &DeleteMessageHandler{store: store, log: log}
}

func (h *DeleteMessageHandler) Handle(ctx context.Context, request any) (any, []event.DomainEvent, error) {
	cmd := request.(DeleteMessage)

	uow := h.store.Begin()
	defer uow.Rollback()

	message, err := uow.Messages.Get(cmd.MessageID)
	if err != nil {
		return nil, nil, err
	}
	if message.Sender != cmd.AccountID {
		return nil, nil, errors.NotMessageSender{AccountID: cmd.AccountID, MessageID: cmd.MessageID}
	}

	if !message.Delete() {
		h.log.Debug("message already deleted", "message", cmd.MessageID)
		return nil, nil, nil
	}

	if err := uow.Messages.Update(message); err != nil {
		return nil, nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, nil, err
	}
	return nil, uow.Events(), nil
}

type ReadMessageHandler struct {
	store *repositories.Store
	log   *slog.Logger
}

func NewReadMessageHandler(store *repositories.Store, log *slog.Logger) *ReadMessageHandler {
	return &ReadMessageHandler{store: store, log: log}
}

func (h *ReadMessageHandler) Handle(ctx context.Context, request any) (any, []event.DomainEvent, error) {
	cmd := request.(ReadMessage)

	uow := h.store.Begin()
	defer uow.Rollback()

	message, err := uow.Messages.Get(cmd.MessageID)
	if err != nil {
		return nil, nil, err
	}
	if message.Deleted {
		return nil, nil, errors.MessageNotFound{MessageID: cmd.MessageID}
	}
	chat, err := uow.Chats.Get(message.ChatID)
	if err != nil {
		return nil, nil, err
	}
	if chat.Deleted {
		return nil, nil, errors.ChatNotFound{ChatID: message.ChatID}
	}
	if !chat.IsParticipant(cmd.Reader) {
		return nil, nil, errors.ParticipantNotInChat{AccountID: cmd.Reader, ChatID: message.ChatID}
	}

	mark := chat.ReadMessage(cmd.Reader, message)
	if mark == nil {
		h.log.Debug("read mark unchanged", "message", cmd.MessageID, "reader", cmd.Reader)
		return nil, nil, nil
	}

	if err := uow.ReadMarks.Add(mark); err != nil {
		return nil, nil, err
	}
	if err := uow.Chats.Update(chat); err != nil {
		return nil, nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, nil, err
	}
	return nil, uow.Events(), nil
}

// IMessageSearcher resolves a full-text query to message ids, newest first.
type IMessageSearcher interface {
	Search(ctx context.Context, chatID uuid.UUID, query string, limit int) ([]uuid.UUID, error)
}

type SearchMessagesHandler struct {
	store    *repositories.Store
	searcher IMessageSearcher
	log      *slog.Logger
}

func NewSearchMessagesHandler(store *repositories.Store, searcher IMessageSearcher, log *slog.Logger) *SearchMessagesHandler {
	return &SearchMessagesHandler{store: store, searcher: searcher, log: log}
}

func (h *SearchMessagesHandler) Handle(ctx context.Context, request any) (any, []event.DomainEvent, error) {
	cmd := request.(SearchMessages)

	uow := h.store.Begin()
	defer uow.Rollback()

	chat, err := uow.Chats.Get(cmd.ChatID)
	if err != nil {
		return nil, nil, err
	}
	if chat.Deleted {
		return nil, nil, errors.ChatNotFound{ChatID: cmd.ChatID}
	}
	if !chat.IsParticipant(cmd.Account) {
		return nil, nil, errors.ParticipantNotInChat{AccountID: cmd.Account, ChatID: cmd.ChatID}
	}

	limit := cmd.Limit
	if limit == 0 {
		limit = 50
	}
	ids, err := h.searcher.Search(ctx, cmd.ChatID, cmd.Query, limit)
	if err != nil {
		return nil, nil, err
	}

	// The index lags deletions, so misses and deleted hits are dropped
	// instead of failing the whole search.
	messages := make([]*domain.Message, 0, len(ids))
	for _, id := range ids {
		message, err := uow.Messages.Get(id)
		if err != nil {
			continue
		}
		if message.Deleted || message.ChatID != cmd.ChatID {
			continue
		}
		messages = append(messages, message)
	}
	return MessagesFound{Messages: messages}, nil, nil
}
