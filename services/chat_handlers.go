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

type OpenChatHandler struct {
	store *repositories.Store
	log   *slog.Logger
}

func NewOpenChatHandler(store *repositories.Store, log *slog.Logger) *OpenChatHandler {
	return &OpenChatHandler{store: store, log: log}
}

func (h *OpenChatHandler) Handle(ctx context.Context, request any) (any, []event.DomainEvent, error) {
	cmd := request.(OpenChat)

	chat := domain.NewChat(cmd.Name, cmd.Avatar, cmd.Initiator)
	chat.AddParticipant(cmd.Initiator, cmd.Initiator)
	for _, accountID := range cmd.Participants {
		chat.AddParticipant(accountID, cmd.Initiator)
	}

	uow := h.store.Begin()
	defer uow.Rollback()

	if err := uow.Chats.Add(chat); err != nil {
		return nil, nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, nil, err
	}

	h.log.Info("chat opened", "chat", chat.ChatID, "initiator", cmd.Initiator)
	return ChatOpened{ChatID: chat.ChatID, Created: chat.Created}, uow.Events(), nil
}

type DeleteChatHandler struct {
	store *repositories.Store
	log   *slog.Logger
}

func NewDeleteChatHandler(store *repositories.Store, log *slog.Logger) *DeleteChatHandler {
	return &DeleteChatHandler{store: store, log: log}
}

func (h *DeleteChatHandler) Handle(ctx context.Context, request any) (any, []event.DomainEvent, error) {
	cmd := request.(DeleteChat)

	uow := h.store.Begin()
	defer uow.Rollback()

	chat, err := uow.Chats.Get(cmd.ChatID)
	if err != nil {
		return nil, nil, err
	}
	if chat.Initiator != cmd.AccountID {
		return nil, nil, errors.NotChatInitiator{AccountID: cmd.AccountID, ChatID: cmd.ChatID}
	}

	if !chat.Delete(cmd.AccountID) {
		h.log.Debug("chat already deleted", "chat", cmd.ChatID)
		return nil, nil, nil
	}

	if err := uow.Chats.Update(chat); err != nil {
		return nil, nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, nil, err
	}
	return nil, uow.Events(), nil
}

type GetChatsHandler struct {
	store *repositories.Store
	log   *slog.Logger
}

func NewGetChatsHandler(store *repositories.Store, log *slog.Logger) *GetChatsHandler {
	return &GetChatsHandler{store: store, log: log}
}

func (h *GetChatsHandler) Handle(ctx context.Context, request any) (any, []event.DomainEvent, error) {
	cmd := request.(GetChats)

	uow := h.store.Begin()
	defer uow.Rollback()

	tags := lo.Map(cmd.Tags, func(tag string, _ int) domain.ChatTag {
		return domain.ChatTag(tag)
	})
	chats, err := uow.Chats.GetAll(cmd.Participant, tags)
	if err != nil {
		return nil, nil, err
	}
	return ChatsGot{Chats: chats}, nil, nil
}

type AddParticipantHandler struct {
	store *repositories.Store
	log   *slog.Logger
}

func NewAddParticipantHandler(store *repositories.Store, log *slog.Logger) *AddParticipantHandler {
	return &AddParticipantHandler{store: store, log: log}
}

func (h *AddParticipantHandler) Handle(ctx context.Context, request any) (any, []event.DomainEvent, error) {
	cmd := request.(AddParticipant)

	uow := h.store.Begin()
	defer uow.Rollback()

	chat, err := uow.Chats.Get(cmd.ChatID)
	if err != nil {
		return nil, nil, err
	}
	if chat.Deleted {
		return nil, nil, errors.ChatNotFound{ChatID: cmd.ChatID}
	}
	if !chat.IsParticipant(cmd.InvitedBy) {
		return nil, nil, errors.ParticipantNotInChat{AccountID: cmd.InvitedBy, ChatID: cmd.ChatID}
	}

	if !chat.AddParticipant(cmd.AccountID, cmd.InvitedBy) {
		h.log.Debug("participant already in chat", "chat", cmd.ChatID, "account", cmd.AccountID)
		return nil, nil, nil
	}

	if err := uow.Chats.Update(chat); err != nil {
		return nil, nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, nil, err
	}
	return nil, uow.Events(), nil
}

type AddTagHandler struct {
	store *repositories.Store
	log   *slog.Logger
}

func NewAddTagHandler(store *repositories.Store, log *slog.Logger) *AddTagHandler {
	return &AddTagHandler{store: store, log: log}
}

func (h *AddTagHandler) Handle(ctx context.Context, request any) (any, []event.DomainEvent, error) {
	cmd := request.(AddTag)
	return mutateChat(h.store, cmd.ChatID, func(chat *domain.Chat) error {
		return chat.AddTag(cmd.AccountID, domain.ChatTag(cmd.Tag))
	})
}

type RemoveTagHandler struct {
	store *repositories.Store
	log   *slog.Logger
}

func NewRemoveTagHandler(store *repositories.Store, log *slog.Logger) *RemoveTagHandler {
	return &RemoveTagHandler{store: store, log: log}
}

func (h *RemoveTagHandler) Handle(ctx context.Context, request any) (any, []event.DomainEvent, error) {
	cmd := request.(RemoveTag)
	return mutateChat(h.store, cmd.ChatID, func(chat *domain.Chat) error {
		return chat.RemoveTag(cmd.AccountID, domain.ChatTag(cmd.Tag))
	})
}

type SetFirstWriterHandler struct {
	store *repositories.Store
	log   *slog.Logger
}

func NewSetFirstWriterHandler(store *repositories.Store, log *slog.Logger) *SetFirstWriterHandler {
	return &SetFirstWriterHandler{store: store, log: log}
}

func (h *SetFirstWriterHandler) Handle(ctx context.Context, request any) (any, []event.DomainEvent, error) {
	cmd := request.(SetFirstWriter)
	return mutateChat(h.store, cmd.ChatID, func(chat *domain.Chat) error {
		return chat.SetFirstWriter(cmd.AccountID, cmd.Value)
	})
}

// mutateChat runs one chat mutation inside its own unit of work. Used by the
// small participant-settings commands that share the load-mutate-update shape.
func mutateChat(store *repositories.Store, chatID uuid.UUID, mutate func(chat *domain.Chat) error) (any, []event.DomainEvent, error) {
	uow := store.Begin()
	defer uow.Rollback()

	chat, err := uow.Chats.Get(chatID)
	if err != nil {
		return nil, nil, err
	}
	if chat.Deleted {
		return nil, nil, errors.ChatNotFound{ChatID: chatID}
	}
	if err := mutate(chat); err != nil {
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

type GetHistoryHandler struct {
	store *repositories.Store
	log   *slog.Logger
}

func NewGetHistoryHandler(store *repositories.Store, log *slog.Logger) *GetHistoryHandler {
	return &GetHistoryHandler{store: store, log: log}
}

func (h *GetHistoryHandler) Handle(ctx context.Context, request any) (any, []event.DomainEvent, error) {
	cmd := request.(GetHistory)

	uow := h.store.Begin()
	defer uow.Rollback()

	chat, err := uow.Chats.GetChatHistory(cmd.ChatID, cmd.Limit, cmd.LatestMessageID, cmd.Reverse)
	if err != nil {
		return nil, nil, err
	}
	if chat.Deleted {
		return nil, nil, errors.ChatNotFound{ChatID: cmd.ChatID}
	}
	if !chat.IsParticipant(cmd.Account) {
		return nil, nil, errors.ParticipantNotInChat{AccountID: cmd.Account, ChatID: cmd.ChatID}
	}
	return HistoryGot{Chat: chat}, nil, nil
}

// IEmitter fans out ephemeral events that never touch the store.
type IEmitter interface {
	Emit(ctx context.Context, e event.DomainEvent)
}

type TappingHandler struct {
	store   *repositories.Store
	emitter IEmitter
	log     *slog.Logger
}

func NewTappingHandler(store *repositories.Store, emitter IEmitter, log *slog.Logger) *TappingHandler {
	return &TappingHandler{store: store, emitter: emitter, log: log}
}

func (h *TappingHandler) Handle(ctx context.Context, request any) (any, []event.DomainEvent, error) {
	cmd := request.(Tapping)

	uow := h.store.Begin()
	defer uow.Rollback()

	chat, err := uow.Chats.Get(cmd.ChatID)
	if err != nil {
		return nil, nil, err
	}
	if chat.Deleted {
		return nil, nil, errors.ChatNotFound{ChatID: cmd.ChatID}
	}
	if !chat.IsParticipant(cmd.AccountID) {
		return nil, nil, errors.ParticipantNotInChat{AccountID: cmd.AccountID, ChatID: cmd.ChatID}
	}

	h.emitter.Emit(ctx, event.TappingInChat{ChatID: cmd.ChatID, AccountID: cmd.AccountID})
	return nil, nil, nil
}
