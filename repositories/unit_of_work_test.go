package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chat-backend/domain"
	"chat-backend/errors"
)

func Test_Rollback_Discards_All_Writes(t *testing.T) {
	req := require.New(t)
	store := openTestStore(t)

	chat := domain.NewChat("standup", "", "alice")
	chat.AddParticipant("alice", "alice")
	message := domain.NewMessage(chat.ChatID, "alice", "hi", nil, nil)
	req.NoError(chat.AddMessage(message))

	uow := store.Begin()
	req.NoError(uow.Chats.Add(chat))
	req.NoError(uow.Messages.Add(message))
	uow.Rollback()

	req.Empty(uow.Events())

	uow = store.Begin()
	defer uow.Rollback()
	_, err := uow.Chats.Get(chat.ChatID)
	req.ErrorAs(err, &errors.ChatNotFound{})
	_, err = uow.Messages.Get(message.MessageID)
	req.ErrorAs(err, &errors.MessageNotFound{})
}

func Test_Commit_Makes_Writes_Visible_Together(t *testing.T) {
	req := require.New(t)
	store := openTestStore(t)

	chat := domain.NewChat("standup", "", "alice")
	chat.AddParticipant("alice", "alice")
	message := domain.NewMessage(chat.ChatID, "alice", "hi", nil, nil)
	req.NoError(chat.AddMessage(message))

	uow := store.Begin()
	defer uow.Rollback()
	req.NoError(uow.Chats.Add(chat))
	req.NoError(uow.Messages.Add(message))

	// No events before the commit happened.
	req.Empty(uow.Events())

	req.NoError(uow.Commit())

	events := uow.Events()
	req.Len(events, 2)

	names := make(map[string]int)
	for _, e := range events {
		names[e.EventName()]++
	}
	req.Equal(1, names["NewParticipantAdded"])
	req.Equal(1, names["NewMessageAdded"])

	// Harvest is destructive: the commit surfaces each event once.
	req.Empty(uow.Events())

	uow = store.Begin()
	defer uow.Rollback()
	fetched, err := uow.Chats.Get(chat.ChatID)
	req.NoError(err)
	req.Len(fetched.Participants, 1)
	_, err = uow.Messages.Get(message.MessageID)
	req.NoError(err)
}

func Test_Commit_Twice_Fails(t *testing.T) {
	req := require.New(t)
	store := openTestStore(t)

	uow := store.Begin()
	req.NoError(uow.Commit())
	req.ErrorIs(uow.Commit(), errors.ErrUnitOfWorkDone)
}

func Test_Events_Cover_Every_Seen_Aggregate(t *testing.T) {
	req := require.New(t)
	store := openTestStore(t)

	chat := domain.NewChat("standup", "", "alice")
	chat.AddParticipant("alice", "alice")
	chat.DrainEvents()

	attachment := domain.NewAttachment(chat.ChatID, "alice", "pic.png", domain.AttachmentImage)
	req.NoError(attachment.Upload([]string{"https://cdn.example.com/pic.png"}, nil))

	message := domain.NewMessage(chat.ChatID, "alice", "look", nil, []*domain.Attachment{attachment})
	req.NoError(chat.AddMessage(message))

	uow := store.Begin()
	defer uow.Rollback()
	req.NoError(uow.Chats.Add(chat))
	req.NoError(uow.Messages.Add(message))
	req.NoError(uow.Attachments.Update(attachment))
	req.NoError(uow.Commit())

	var names []string
	for _, e := range uow.Events() {
		names = append(names, e.EventName())
	}
	req.ElementsMatch(
		[]string{"NewMessageAdded", "NewAttachmentUploaded", "AttachmentSent"},
		names,
	)
}
