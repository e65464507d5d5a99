package services

import (
	"log/slog"

	"chat-backend/domain/event"
	"chat-backend/infrastructure/broker"
	"chat-backend/repositories"
)

// IMessageIndex joins the projection's write and query sides; the concrete
// implementation lives in the search package.
type IMessageIndex interface {
	IIndexer
	IMessageSearcher
}

// NewChatMediator wires every command handler and event handler into one
// mediator. publisher is the broker connection used to push notifications;
// index and censor may be nil when the deployment runs without search or
// moderation.
func NewChatMediator(store *repositories.Store, publisher broker.MessageBroker, index IMessageIndex, censor ICensor, log *slog.Logger) *Mediator {
	m := NewMediator(log)

	m.BindRequest(OpenChat{}, NewOpenChatHandler(store, log))
	m.BindRequest(DeleteChat{}, NewDeleteChatHandler(store, log))
	m.BindRequest(GetChats{}, NewGetChatsHandler(store, log))
	m.BindRequest(AddParticipant{}, NewAddParticipantHandler(store, log))
	m.BindRequest(AddTag{}, NewAddTagHandler(store, log))
	m.BindRequest(RemoveTag{}, NewRemoveTagHandler(store, log))
	m.BindRequest(SetFirstWriter{}, NewSetFirstWriterHandler(store, log))
	m.BindRequest(GetHistory{}, NewGetHistoryHandler(store, log))
	m.BindRequest(Tapping{}, NewTappingHandler(store, m, log))

	m.BindRequest(SendMessage{}, NewSendMessageHandler(store, censor, log))
	m.BindRequest(UpdateMessage{}, NewUpdateMessageHandler(store, censor, log))
	m.BindRequest(DeleteMessage{}, NewDeleteMessageHandler(store, log))
	m.BindRequest(ReadMessage{}, NewReadMessageHandler(store, log))

	m.BindRequest(ReactMessage{}, NewReactMessageHandler(store, log))
	m.BindRequest(UnreactMessage{}, NewUnreactMessageHandler(store, log))
	m.BindRequest(GetReactions{}, NewGetReactionsHandler(store, log))
	m.BindRequest(GetReactors{}, NewGetReactorsHandler(store, log))

	m.BindRequest(CreateAttachment{}, NewCreateAttachmentHandler(store, log))
	m.BindRequest(UploadAttachment{}, NewUploadAttachmentHandler(store, log))
	m.BindRequest(GetAttachments{}, NewGetAttachmentsHandler(store, log))

	notifier := NewNotifier(store, publisher, log)
	m.BindEvent(event.NewMessageAdded{}, notifier)
	m.BindEvent(event.NewParticipantAdded{}, notifier)
	m.BindEvent(event.MessageRead{}, notifier)
	m.BindEvent(event.MessageUpdated{}, notifier)
	m.BindEvent(event.MessageDeleted{}, notifier)
	m.BindEvent(event.MessageReacted{}, notifier)
	m.BindEvent(event.MessageUnreacted{}, notifier)
	m.BindEvent(event.NewAttachmentUploaded{}, notifier)
	m.BindEvent(event.ChatDeleted{}, notifier)
	m.BindEvent(event.TappingInChat{}, notifier)

	if index != nil {
		m.BindRequest(SearchMessages{}, NewSearchMessagesHandler(store, index, log))

		indexer := NewMessageIndexer(store, index, log)
		m.BindEvent(event.NewMessageAdded{}, indexer)
		m.BindEvent(event.MessageUpdated{}, indexer)
		m.BindEvent(event.MessageDeleted{}, indexer)
	}

	return m
}
