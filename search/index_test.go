package search

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func openTestIndex(t *testing.T) *MessageIndex {
	t.Helper()
	index, err := OpenInMemory(logs.GetLoggerFromLevel(slog.LevelError))
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func TestMessageIndex_SearchIsScopedToChat(t *testing.T) {
	req := require.New(t)
	index := openTestIndex(t)

	chatA, chatB := uuid.New(), uuid.New()
	inA, inB := uuid.New(), uuid.New()

	req.NoError(index.Index(inA, chatA, "u1", "the quick brown fox"))
	req.NoError(index.Index(inB, chatB, "u2", "the quick brown fox"))

	ids, err := index.Search(context.Background(), chatA, "fox", 10)
	req.NoError(err)
	req.Equal([]uuid.UUID{inA}, ids)
}

func TestMessageIndex_ReindexReplacesContent(t *testing.T) {
	req := require.New(t)
	index := openTestIndex(t)

	chatID, messageID := uuid.New(), uuid.New()
	req.NoError(index.Index(messageID, chatID, "u1", "original wording"))
	req.NoError(index.Index(messageID, chatID, "u1", "edited wording"))

	ids, err := index.Search(context.Background(), chatID, "original", 10)
	req.NoError(err)
	req.Empty(ids)

	ids, err = index.Search(context.Background(), chatID, "edited", 10)
	req.NoError(err)
	req.Equal([]uuid.UUID{messageID}, ids)
}

func TestMessageIndex_DeleteRemovesHits(t *testing.T) {
	req := require.New(t)
	index := openTestIndex(t)

	chatID, messageID := uuid.New(), uuid.New()
	req.NoError(index.Index(messageID, chatID, "u1", "soon to vanish"))
	req.NoError(index.Delete(messageID))

	ids, err := index.Search(context.Background(), chatID, "vanish", 10)
	req.NoError(err)
	req.Empty(ids)
}
