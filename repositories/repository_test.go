package repositories

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"chat-backend/domain"
	"chat-backend/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db, slog.Default())
}

func Test_Chat_Round_Trip(t *testing.T) {
	req := require.New(t)
	store := openTestStore(t)

	chat := domain.NewChat("standup", "https://cdn.example.com/avatar.png", "alice")
	chat.AddParticipant("alice", "alice")
	chat.AddParticipant("bob", "alice")
	req.NoError(chat.AddTag("bob", "work"))
	req.NoError(chat.SetFirstWriter("alice", true))
	chat.DrainEvents()

	uow := store.Begin()
	defer uow.Rollback()
	req.NoError(uow.Chats.Add(chat))
	req.NoError(uow.Commit())

	uow = store.Begin()
	defer uow.Rollback()
	fetched, err := uow.Chats.Get(chat.ChatID)
	req.NoError(err)
	req.Equal(chat, fetched)
}

func Test_Message_Round_Trip(t *testing.T) {
	req := require.New(t)
	store := openTestStore(t)

	chatID := uuid.New()
	attachment := domain.NewAttachment(chatID, "alice", "pic.png", domain.AttachmentImage)
	req.NoError(attachment.Upload([]string{"https://cdn.example.com/pic.png"}, map[string]any{"width": 640.0}))
	attachment.DrainEvents()

	replyTo := uuid.New()
	message := domain.NewMessage(chatID, "alice", "look at this", &replyTo, []*domain.Attachment{attachment})
	req.NoError(attachment.Send(message.MessageID))
	attachment.DrainEvents()
	_, err := message.React(domain.NewReaction(message.MessageID, "bob", "👍"))
	req.NoError(err)
	message.DrainEvents()

	uow := store.Begin()
	defer uow.Rollback()
	req.NoError(uow.Messages.Add(message))
	req.NoError(uow.Commit())

	uow = store.Begin()
	defer uow.Rollback()
	fetched, err := uow.Messages.Get(message.MessageID)
	req.NoError(err)
	req.Equal(message, fetched)
}

func Test_Attachment_Round_Trip(t *testing.T) {
	req := require.New(t)
	store := openTestStore(t)

	attachment := domain.NewAttachment(uuid.New(), "alice", "voice.ogg", domain.AttachmentVoice)

	uow := store.Begin()
	defer uow.Rollback()
	req.NoError(uow.Attachments.Add(attachment))
	req.NoError(uow.Commit())

	uow = store.Begin()
	defer uow.Rollback()
	fetched, err := uow.Attachments.Get(attachment.AttachmentID)
	req.NoError(err)
	req.Equal(attachment, fetched)
	req.Equal(domain.AttachmentNew, fetched.Status)
}

func Test_Get_Missing_Chat(t *testing.T) {
	req := require.New(t)
	store := openTestStore(t)

	uow := store.Begin()
	defer uow.Rollback()
	_, err := uow.Chats.Get(uuid.New())
	req.ErrorAs(err, &errors.ChatNotFound{})
}

func seedHistory(t *testing.T, store *Store, senders ...string) (*domain.Chat, []*domain.Message) {
	t.Helper()
	req := require.New(t)

	chat := domain.NewChat("standup", "", "alice")
	chat.AddParticipant("alice", "alice")

	base := time.Now().UTC()
	var messages []*domain.Message
	for i, sender := range senders {
		message := domain.NewMessage(chat.ChatID, sender, "message", nil, nil)
		message.Created = base.Add(time.Duration(i) * time.Second)
		message.Updated = message.Created
		req.NoError(chat.AddMessage(message))
		messages = append(messages, message)
	}
	chat.DrainEvents()

	uow := store.Begin()
	defer uow.Rollback()
	req.NoError(uow.Chats.Add(chat))
	for _, message := range messages {
		message.DrainEvents()
		req.NoError(uow.Messages.Add(message))
	}
	req.NoError(uow.Commit())
	return chat, messages
}

func Test_Chat_History_Order_And_Cursor(t *testing.T) {
	req := require.New(t)
	store := openTestStore(t)
	chat, messages := seedHistory(t, store, "alice", "bob", "alice", "bob", "alice")

	uow := store.Begin()
	defer uow.Rollback()

	// Newest first, limited.
	fetched, err := uow.Chats.GetChatHistory(chat.ChatID, lo.ToPtr(2), nil, true)
	req.NoError(err)
	req.Len(fetched.History, 2)
	req.Equal(messages[4].MessageID, fetched.History[0].MessageID)
	req.Equal(messages[3].MessageID, fetched.History[1].MessageID)

	// Resume strictly after the cursor.
	fetched, err = uow.Chats.GetChatHistory(chat.ChatID, lo.ToPtr(2), &messages[3].MessageID, true)
	req.NoError(err)
	req.Len(fetched.History, 2)
	req.Equal(messages[2].MessageID, fetched.History[0].MessageID)
	req.Equal(messages[1].MessageID, fetched.History[1].MessageID)

	// Oldest first without cursor.
	fetched, err = uow.Chats.GetChatHistory(chat.ChatID, nil, nil, false)
	req.NoError(err)
	req.Len(fetched.History, 5)
	req.Equal(messages[0].MessageID, fetched.History[0].MessageID)
}

func Test_Chat_History_Excludes_Deleted(t *testing.T) {
	req := require.New(t)
	store := openTestStore(t)
	chat, messages := seedHistory(t, store, "alice", "bob", "alice")

	uow := store.Begin()
	defer uow.Rollback()
	middle, err := uow.Messages.Get(messages[1].MessageID)
	req.NoError(err)
	req.True(middle.Delete())
	req.NoError(uow.Messages.Update(middle))
	req.NoError(uow.Commit())

	uow = store.Begin()
	defer uow.Rollback()
	fetched, err := uow.Chats.GetChatHistory(chat.ChatID, nil, nil, true)
	req.NoError(err)
	req.Len(fetched.History, 2)
	for _, message := range fetched.History {
		req.NotEqual(messages[1].MessageID, message.MessageID)
	}
}

func Test_Next_Previous_And_CountAfter(t *testing.T) {
	req := require.New(t)
	store := openTestStore(t)
	chat, messages := seedHistory(t, store, "alice", "bob", "alice")

	uow := store.Begin()
	defer uow.Rollback()

	next, err := uow.Chats.GetNextMessage(chat.ChatID, messages[0].MessageID)
	req.NoError(err)
	req.Equal(messages[1].MessageID, next.MessageID)

	previous, err := uow.Chats.GetPreviousMessage(chat.ChatID, messages[2].MessageID)
	req.NoError(err)
	req.Equal(messages[1].MessageID, previous.MessageID)

	_, err = uow.Chats.GetNextMessage(chat.ChatID, messages[2].MessageID)
	req.ErrorAs(err, &errors.MessageNotFound{})

	count, err := uow.Chats.CountAfter(chat.ChatID, &messages[0].MessageID)
	req.NoError(err)
	req.Equal(2, count)

	count, err = uow.Chats.CountAfter(chat.ChatID, nil)
	req.NoError(err)
	req.Equal(3, count)
}

func Test_GetAll_Filters_By_Participant_And_Tag(t *testing.T) {
	req := require.New(t)
	store := openTestStore(t)

	work := domain.NewChat("work", "", "alice")
	work.AddParticipant("alice", "alice")
	work.AddParticipant("bob", "alice")
	req.NoError(work.AddTag("bob", "work"))

	leisure := domain.NewChat("leisure", "", "bob")
	leisure.AddParticipant("bob", "bob")

	private := domain.NewChat("private", "", "carol")
	private.AddParticipant("carol", "carol")

	uow := store.Begin()
	defer uow.Rollback()
	for _, chat := range []*domain.Chat{work, leisure, private} {
		chat.DrainEvents()
		req.NoError(uow.Chats.Add(chat))
	}
	req.NoError(uow.Commit())

	uow = store.Begin()
	defer uow.Rollback()

	chats, err := uow.Chats.GetAll("bob", nil)
	req.NoError(err)
	req.Len(chats, 2)

	chats, err = uow.Chats.GetAll("bob", []domain.ChatTag{"work"})
	req.NoError(err)
	req.Len(chats, 1)
	req.Equal(work.ChatID, chats[0].ChatID)

	chats, err = uow.Chats.GetAll("nobody", nil)
	req.NoError(err)
	req.Empty(chats)
}

func Test_ReadMark_Log_Newest_Wins(t *testing.T) {
	req := require.New(t)
	store := openTestStore(t)

	chatID := uuid.New()
	base := time.Now().UTC()
	first := domain.NewReadMark(chatID, "bob", uuid.New(), base)
	second := domain.NewReadMark(chatID, "bob", uuid.New(), base.Add(time.Second))

	uow := store.Begin()
	defer uow.Rollback()
	req.NoError(uow.ReadMarks.Add(first))
	req.NoError(uow.ReadMarks.Add(second))
	req.NoError(uow.Commit())

	uow = store.Begin()
	defer uow.Rollback()
	last, err := uow.ReadMarks.GetLast(chatID, "bob")
	req.NoError(err)
	req.Equal(second, last)

	none, err := uow.ReadMarks.GetLast(chatID, "carol")
	req.NoError(err)
	req.Nil(none)
}
