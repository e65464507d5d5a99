//go:generate go run go.uber.org/mock/mockgen -source=readmark.go -destination=../mocks/mock_readmark_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"chat-backend/domain"
)

type IReadMarkRepository interface {
	Add(mark *domain.ReadMark) error
	GetLast(chatID uuid.UUID, accountID string) (*domain.ReadMark, error)
}

// ReadMarkRepository appends read marks to a per-(chat, account) log. The
// current mark is the most recent entry by timestamp; older entries are kept
// as an audit trail.
type ReadMarkRepository struct {
	txn *badger.Txn
	log *slog.Logger
}

func newReadMarkRepository(txn *badger.Txn, log *slog.Logger) *ReadMarkRepository {
	return &ReadMarkRepository{txn: txn, log: log}
}

func (r *ReadMarkRepository) Add(mark *domain.ReadMark) error {
	bytes, err := json.Marshal(fromReadMark(mark))
	if err != nil {
		return err
	}
	key := readMarkKey(mark.ChatID, mark.AccountID, mark.ReadAt, mark.MarkID)
	return r.txn.Set(key, bytes)
}

// GetLast returns the newest read mark for the pair, or nil when the account
// has never read anything in the chat.
func (r *ReadMarkRepository) GetLast(chatID uuid.UUID, accountID string) (*domain.ReadMark, error) {
	prefix := readMarkPrefix(chatID, accountID)

	options := badger.DefaultIteratorOptions
	options.Reverse = true
	it := r.txn.NewIterator(options)
	defer it.Close()

	seekKey := append(append([]byte{}, prefix...), []byte(maxPaddedTimestamp)...)
	it.Seek(seekKey)
	if !it.ValidForPrefix(prefix) {
		return nil, nil
	}

	var record readMarkRecord
	err := it.Item().Value(func(value []byte) error {
		return json.Unmarshal(value, &record)
	})
	if err != nil {
		return nil, err
	}
	return toReadMark(record), nil
}
