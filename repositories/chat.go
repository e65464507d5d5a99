//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_chat_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"chat-backend/domain"
	"chat-backend/domain/event"
	"chat-backend/errors"
)

type IChatRepository interface {
	Add(chat *domain.Chat) error
	Get(chatID uuid.UUID) (*domain.Chat, error)
	Update(chat *domain.Chat) error
	GetChatHistory(chatID uuid.UUID, limit *int, latestMessageID *uuid.UUID, reverse bool) (*domain.Chat, error)
	GetNextMessage(chatID, targetMessageID uuid.UUID) (*domain.Message, error)
	GetPreviousMessage(chatID, targetMessageID uuid.UUID) (*domain.Message, error)
	CountAfter(chatID uuid.UUID, messageID *uuid.UUID) (int, error)
	GetAll(participant string, tags []domain.ChatTag) ([]*domain.Chat, error)
}

// ChatRepository persists chats and keeps the per-participant chat index in
// sync. It shares the unit of work's transaction with every other
// repository, and tracks each aggregate it touched in a seen set so pending
// events can be harvested after commit.
type ChatRepository struct {
	txn  *badger.Txn
	log  *slog.Logger
	seen map[uuid.UUID]*domain.Chat
}

func newChatRepository(txn *badger.Txn, log *slog.Logger) *ChatRepository {
	return &ChatRepository{txn: txn, log: log, seen: make(map[uuid.UUID]*domain.Chat)}
}

func (r *ChatRepository) Add(chat *domain.Chat) error {
	if err := r.store(chat); err != nil {
		return err
	}
	r.seen[chat.ChatID] = chat
	return nil
}

func (r *ChatRepository) Update(chat *domain.Chat) error {
	if err := r.store(chat); err != nil {
		return err
	}
	r.seen[chat.ChatID] = chat
	return nil
}

func (r *ChatRepository) store(chat *domain.Chat) error {
	bytes, err := json.Marshal(fromChat(chat))
	if err != nil {
		return err
	}
	if err = r.txn.Set(chatKey(chat.ChatID), bytes); err != nil {
		return err
	}
	// Participant membership only grows, so re-setting index keys on every
	// store keeps the index in sync without tombstones.
	for _, participant := range chat.Participants {
		key := accountChatKey(participant.AccountID, chat.ChatID)
		if err = r.txn.Set(key, []byte(chat.ChatID.String())); err != nil {
			return err
		}
	}
	return nil
}

func (r *ChatRepository) Get(chatID uuid.UUID) (*domain.Chat, error) {
	item, err := r.txn.Get(chatKey(chatID))
	if err == badger.ErrKeyNotFound {
		return nil, errors.ChatNotFound{ChatID: chatID}
	}
	if err != nil {
		return nil, err
	}

	var record chatRecord
	if err = item.Value(func(value []byte) error {
		return json.Unmarshal(value, &record)
	}); err != nil {
		return nil, err
	}

	chat := toChat(record)
	r.seen[chat.ChatID] = chat
	return chat, nil
}

// GetChatHistory loads the chat and reconstructs its history from the
// per-chat message index. Deleted messages are excluded. A nil cursor starts
// from the newest (reverse) or oldest (forward) entry; a cursor resumes
// strictly after the given message.
func (r *ChatRepository) GetChatHistory(chatID uuid.UUID, limit *int, latestMessageID *uuid.UUID, reverse bool) (*domain.Chat, error) {
	chat, err := r.Get(chatID)
	if err != nil {
		return nil, err
	}

	prefix := chatMessagePrefix(chatID)
	options := badger.DefaultIteratorOptions
	options.Reverse = reverse
	it := r.txn.NewIterator(options)
	defer it.Close()

	seekKey := prefix
	if reverse {
		seekKey = append(append([]byte{}, prefix...), []byte(maxPaddedTimestamp)...)
	}
	if latestMessageID != nil {
		cursor, err := r.getMessageRecord(*latestMessageID)
		if err != nil {
			return nil, err
		}
		seekKey = chatMessageSeekKey(chatID, cursor.Created, cursor.MessageID)
	}

	it.Seek(seekKey)
	if latestMessageID != nil && it.ValidForPrefix(prefix) {
		it.Next()
	}

	var history []*domain.Message
	for ; it.ValidForPrefix(prefix); it.Next() {
		if limit != nil && len(history) == *limit {
			r.log.Debug("chat history limit reached", "chat_id", chatID, "limit", *limit)
			break
		}
		message, err := r.messageAt(it.Item())
		if err != nil {
			return nil, err
		}
		if message.Deleted {
			continue
		}
		history = append(history, message)
	}

	chat.History = history
	return chat, nil
}

// GetNextMessage returns the first live message strictly after the target in
// chronological order.
func (r *ChatRepository) GetNextMessage(chatID, targetMessageID uuid.UUID) (*domain.Message, error) {
	return r.neighborMessage(chatID, targetMessageID, false)
}

// GetPreviousMessage returns the first live message strictly before the
// target in chronological order.
func (r *ChatRepository) GetPreviousMessage(chatID, targetMessageID uuid.UUID) (*domain.Message, error) {
	return r.neighborMessage(chatID, targetMessageID, true)
}

func (r *ChatRepository) neighborMessage(chatID, targetMessageID uuid.UUID, reverse bool) (*domain.Message, error) {
	target, err := r.getMessageRecord(targetMessageID)
	if err != nil {
		return nil, err
	}

	options := badger.DefaultIteratorOptions
	options.Reverse = reverse
	it := r.txn.NewIterator(options)
	defer it.Close()

	prefix := chatMessagePrefix(chatID)
	it.Seek(chatMessageSeekKey(chatID, target.Created, target.MessageID))
	if it.ValidForPrefix(prefix) {
		it.Next()
	}

	for ; it.ValidForPrefix(prefix); it.Next() {
		message, err := r.messageAt(it.Item())
		if err != nil {
			return nil, err
		}
		if message.Deleted {
			continue
		}
		return message, nil
	}
	return nil, errors.MessageNotFound{MessageID: targetMessageID}
}

// CountAfter returns how many live messages follow the given message. A nil
// message id counts the whole history, which is the unread count for an
// account with no read mark.
func (r *ChatRepository) CountAfter(chatID uuid.UUID, messageID *uuid.UUID) (int, error) {
	prefix := chatMessagePrefix(chatID)
	seekKey := prefix
	if messageID != nil {
		target, err := r.getMessageRecord(*messageID)
		if err != nil {
			return 0, err
		}
		seekKey = chatMessageSeekKey(chatID, target.Created, target.MessageID)
	}

	it := r.txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	it.Seek(seekKey)
	if messageID != nil && it.ValidForPrefix(prefix) {
		it.Next()
	}

	count := 0
	for ; it.ValidForPrefix(prefix); it.Next() {
		message, err := r.messageAt(it.Item())
		if err != nil {
			return 0, err
		}
		if message.Deleted {
			continue
		}
		count++
	}
	return count, nil
}

// GetAll returns the live chats a participant belongs to, newest activity
// first, optionally filtered to chats where the participant holds every
// given tag.
func (r *ChatRepository) GetAll(participant string, tags []domain.ChatTag) ([]*domain.Chat, error) {
	prefix := accountChatPrefix(participant)

	var chatIDs []uuid.UUID
	err := func() error {
		it := r.txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				chatID, err := uuid.Parse(string(value))
				if err != nil {
					return err
				}
				chatIDs = append(chatIDs, chatID)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}()
	if err != nil {
		return nil, err
	}

	var chats []*domain.Chat
	for _, chatID := range chatIDs {
		chat, err := r.Get(chatID)
		if err != nil {
			return nil, err
		}
		if chat.Deleted {
			continue
		}
		member, ok := chat.Participant(participant)
		if !ok {
			continue
		}
		if !lo.EveryBy(tags, member.HasTag) {
			continue
		}
		chats = append(chats, chat)
	}

	sortChatsByActivity(chats)
	return chats, nil
}

func (r *ChatRepository) getMessageRecord(messageID uuid.UUID) (messageRecord, error) {
	var record messageRecord
	item, err := r.txn.Get(messageKey(messageID))
	if err == badger.ErrKeyNotFound {
		return record, errors.MessageNotFound{MessageID: messageID}
	}
	if err != nil {
		return record, err
	}
	err = item.Value(func(value []byte) error {
		return json.Unmarshal(value, &record)
	})
	return record, err
}

// messageAt resolves an index entry to its message record.
func (r *ChatRepository) messageAt(item *badger.Item) (*domain.Message, error) {
	var messageID uuid.UUID
	err := item.Value(func(value []byte) error {
		id, err := uuid.Parse(string(value))
		if err != nil {
			return err
		}
		messageID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	record, err := r.getMessageRecord(messageID)
	if err != nil {
		return nil, err
	}
	return toMessage(record), nil
}

func sortChatsByActivity(chats []*domain.Chat) {
	for i := 1; i < len(chats); i++ {
		for j := i; j > 0 && chats[j].LastActivityTimestamp.After(chats[j-1].LastActivityTimestamp); j-- {
			chats[j], chats[j-1] = chats[j-1], chats[j]
		}
	}
}

// drainSeen harvests pending events from every chat touched during the unit
// of work. Called by the unit of work strictly after a successful commit.
func (r *ChatRepository) drainSeen() []event.DomainEvent {
	var events []event.DomainEvent
	for _, chat := range r.seen {
		events = append(events, chat.DrainEvents()...)
	}
	return events
}
