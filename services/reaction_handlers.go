package services

import (
	"context"
	"log/slog"

	"github.com/samber/lo"

	"chat-backend/domain"
	"chat-backend/domain/event"
	"chat-backend/errors"
	"chat-backend/repositories"
)

type ReactMessageHandler struct {
	store *repositories.Store
	log   *slog.Logger
}

func NewReactMessageHandler(store *repositories.Store, log *slog.Logger) *ReactMessageHandler {
	return &ReactMessageHandler{store: store, log: log}
}

func (h *ReactMessageHandler) Handle(ctx context.Context, request any) (any, []event.DomainEvent, error) {
	cmd := request.(ReactMessage)

	uow := h.store.Begin()
	defer uow.Rollback()

	message, err := uow.Messages.Get(cmd.MessageID)
	if err != nil {
		return nil, nil, err
	}
	if message.Deleted {
		return nil, nil, errors.MessageNotFound{MessageID: cmd.MessageID}
	}

	reaction := domain.NewReaction(cmd.MessageID, cmd.Reactor, cmd.Emoji)
	added, err := message.React(reaction)
	if err != nil {
		return nil, nil, err
	}
	if !added {
		h.log.Debug("reaction already present", "message", cmd.MessageID, "reactor", cmd.Reactor)
		return MessageReacted{}, nil, nil
	}

	if err := uow.Messages.Update(message); err != nil {
		return nil, nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, nil, err
	}
	return MessageReacted{ReactionID: reaction.ReactionID}, uow.Events(), nil
}

type UnreactMessageHandler struct {
	store *repositories.Store
	log   *slog.Logger
}

func NewUnreactMessageHandler(store *repositories.Store, log *slog.Logger) *UnreactMessageHandler {
	return &UnreactMessageHandler{store: store, log: log}
}

func (h *UnreactMessageHandler) Handle(ctx context.Context, request any) (any, []event.DomainEvent, error) {
	cmd := request.(UnreactMessage)

	uow := h.store.Begin()
	defer uow.Rollback()

	message, err := uow.Messages.Get(cmd.MessageID)
	if err != nil {
		return nil, nil, err
	}

	reaction, found := lo.Find(message.Reactions, func(r domain.Reaction) bool {
		return r.Reactor == cmd.Reactor && r.Emoji == cmd.Emoji
	})
	if !found || !message.Unreact(reaction.ReactionID) {
		h.log.Debug("no matching reaction", "message", cmd.MessageID, "reactor", cmd.Reactor)
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

type GetReactionsHandler struct {
	store *repositories.Store
	log   *slog.Logger
}

func NewGetReactionsHandler(store *repositories.Store, log *slog.Logger) *GetReactionsHandler {
	return &GetReactionsHandler{store: store, log: log}
}

func (h *GetReactionsHandler) Handle(ctx context.Context, request any) (any, []event.DomainEvent, error) {
	cmd := request.(GetReactions)

	uow := h.store.Begin()
	defer uow.Rollback()

	message, err := uow.Messages.Get(cmd.MessageID)
	if err != nil {
		return nil, nil, err
	}
	if message.Deleted {
		return nil, nil, errors.MessageNotFound{MessageID: cmd.MessageID}
	}
	return ReactionsGot{Reactions: message.Reactions}, nil, nil
}

type GetReactorsHandler struct {
	store *repositories.Store
	log   *slog.Logger
}

func NewGetReactorsHandler(store *repositories.Store, log *slog.Logger) *GetReactorsHandler {
	return &GetReactorsHandler{store: store, log: log}
}

// Handle lists the accounts that reacted to a message with one emoji.
func (h *GetReactorsHandler) Handle(ctx context.Context, request any) (any, []event.DomainEvent, error) {
	cmd := request.(GetReactors)

	uow := h.store.Begin()
	defer uow.Rollback()

	message, err := uow.Messages.Get(cmd.MessageID)
	if err != nil {
		return nil, nil, err
	}
	if message.Deleted {
		return nil, nil, errors.MessageNotFound{MessageID: cmd.MessageID}
	}

	reactors := lo.FilterMap(message.Reactions, func(r domain.Reaction, _ int) (string, bool) {
		return r.Reactor, r.Emoji == cmd.Emoji
	})
	return ReactorsGot{Reactors: reactors}, nil, nil
}
