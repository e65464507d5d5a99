// Package search maintains the full-text message index. The index is a
// projection fed by domain events; the store stays the source of truth and
// search results are re-checked against it before they are returned.
package search

import (
	"context"
	"log/slog"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

// Open mounts the index at path, creating it when absent.
func Open(path string, log *slog.Logger) (*MessageIndex, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, err
	}
	return &MessageIndex{writer: writer, log: log}, nil
}

// OpenInMemory builds an ephemeral index for tests and local runs.
func OpenInMemory(log *slog.Logger) (*MessageIndex, error) {
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return nil, err
	}
	return &MessageIndex{writer: writer, log: log}, nil
}

// Index upserts one message document. Indexing is keyed by message id, so
// re-indexing after an edit replaces the previous content.
func (i *MessageIndex) Index(messageID, chatID uuid.UUID, sender, content string) error {
	doc := bluge.NewDocument(messageID.String()).
		AddField(bluge.NewKeywordField("chat", chatID.String())).
		AddField(bluge.NewKeywordField("sender", sender)).
		AddField(bluge.NewTextField("content", content))
	return i.writer.Update(doc.ID(), doc)
}

func (i *MessageIndex) Delete(messageID uuid.UUID) error {
	return i.writer.Delete(bluge.Identifier(messageID.String()))
}

// Search returns the ids of the best-matching messages within one chat.
func (i *MessageIndex) Search(ctx context.Context, chatID uuid.UUID, query string, limit int) ([]uuid.UUID, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			i.log.Error("index reader close failed", "error", err)
		}
	}()

	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(chatID.String()).SetField("chat")).
		AddMust(bluge.NewMatchQuery(query).SetField("content"))

	matches, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	for {
		match, err := matches.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field != "_id" {
				return true
			}
			id, parseErr := uuid.Parse(string(value))
			if parseErr != nil {
				i.log.Warn("skipping unparsable index hit", "value", string(value))
				return true
			}
			ids = append(ids, id)
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (i *MessageIndex) Close() error {
	return i.writer.Close()
}
