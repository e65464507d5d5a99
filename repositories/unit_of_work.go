//go:generate go run go.uber.org/mock/mockgen -source=unit_of_work.go -destination=../mocks/mock_unit_of_work.go -package=mocks
package repositories

import (
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"chat-backend/domain/event"
	"chat-backend/errors"
)

// Store owns the BadgerDB handle and opens units of work against it. It is
// constructed once at process start and passed by reference into every
// command handler; no package-level connection state exists.
type Store struct {
	db  *badger.DB
	log *slog.Logger
}

func NewStore(db *badger.DB, log *slog.Logger) *Store {
	return &Store{db: db, log: log}
}

// Begin opens a unit of work: one read-write transaction shared by every
// repository. The caller must either Commit or Rollback; the idiom is
//
//	uow := store.Begin()
//	defer uow.Rollback()
//	... mutate aggregates, persist through uow repositories ...
//	if err := uow.Commit(); err != nil { ... }
//
// Rollback after a successful Commit is a no-op, so the deferred call
// releases the transaction on every exit path.
func (s *Store) Begin() *UnitOfWork {
	txn := s.db.NewTransaction(true)
	return &UnitOfWork{
		txn:         txn,
		log:         s.log,
		Chats:       newChatRepository(txn, s.log),
		Messages:    newMessageRepository(txn, s.log),
		Attachments: newAttachmentRepository(txn, s.log),
		ReadMarks:   newReadMarkRepository(txn, s.log),
	}
}

// UnitOfWork spans all repositories touched by one use case. Either every
// buffered write becomes visible together at Commit, or none do.
type UnitOfWork struct {
	txn *badger.Txn
	log *slog.Logger

	Chats       *ChatRepository
	Messages    *MessageRepository
	Attachments *AttachmentRepository
	ReadMarks   *ReadMarkRepository

	committed bool
	finished  bool
}

// Commit executes the batch atomically. On failure no partial writes are
// visible and Events returns nothing.
func (u *UnitOfWork) Commit() error {
	if u.finished {
		return errors.ErrUnitOfWorkDone
	}
	u.finished = true

	if err := u.txn.Commit(); err != nil {
		u.log.Error("unit of work commit failed", "err", err)
		return err
	}
	u.committed = true
	return nil
}

// Rollback discards the batch unless Commit already ran.
func (u *UnitOfWork) Rollback() {
	if u.finished {
		return
	}
	u.finished = true
	u.txn.Discard()
}

// Events drains pending domain events from every aggregate seen by any
// repository during this unit of work. Events are only surfaced for state
// that is durably persisted: before a successful commit this returns nil.
// Per-aggregate raise order is preserved; cross-aggregate order follows the
// chat, message, attachment harvest sequence and is otherwise unspecified.
func (u *UnitOfWork) Events() []event.DomainEvent {
	if !u.committed {
		return nil
	}

	var events []event.DomainEvent
	events = append(events, u.Chats.drainSeen()...)
	events = append(events, u.Messages.drainSeen()...)
	events = append(events, u.Attachments.drainSeen()...)
	return events
}
