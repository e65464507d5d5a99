package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chat-backend/domain/event"
	"chat-backend/errors"
)

func Test_AddParticipant_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	chat := NewChat("standup", "", "alice")

	req.True(chat.AddParticipant("alice", "alice"))
	req.True(chat.AddParticipant("bob", "alice"))
	req.False(chat.AddParticipant("bob", "alice"))

	req.Len(chat.Participants, 2)

	events := chat.DrainEvents()
	req.Len(events, 2)
	req.IsType(event.NewParticipantAdded{}, events[0])
}

func Test_AddMessage_Advances_Watermark(t *testing.T) {
	req := require.New(t)
	chat := NewChat("standup", "", "alice")
	chat.AddParticipant("alice", "alice")
	chat.DrainEvents()

	message := NewMessage(chat.ChatID, "alice", "hi", nil, nil)
	req.NoError(chat.AddMessage(message))

	req.Equal(&message.MessageID, chat.LastMessage)
	req.Equal(message.Created, chat.LastActivityTimestamp)

	events := chat.DrainEvents()
	req.Len(events, 1)
	added, ok := events[0].(event.NewMessageAdded)
	req.True(ok)
	req.Equal("alice", added.Sender)
}

func Test_AddMessage_Keeps_Strictly_Newer_Watermark(t *testing.T) {
	req := require.New(t)
	chat := NewChat("standup", "", "alice")

	newer := NewMessage(chat.ChatID, "alice", "second", nil, nil)
	req.NoError(chat.AddMessage(newer))

	older := NewMessage(chat.ChatID, "bob", "first", nil, nil)
	older.Created = newer.Created.Add(-time.Minute)
	req.NoError(chat.AddMessage(older))

	req.Equal(&newer.MessageID, chat.LastMessage)
	req.Equal(newer.Created, chat.LastActivityTimestamp)
}

func Test_AddMessage_Duplicate_Fails(t *testing.T) {
	req := require.New(t)
	chat := NewChat("standup", "", "alice")

	message := NewMessage(chat.ChatID, "alice", "hi", nil, nil)
	req.NoError(chat.AddMessage(message))

	err := chat.AddMessage(message)
	req.ErrorAs(err, &errors.DuplicateMessage{})
	req.Len(chat.History, 1)
}

func Test_AddMessage_Marks_Attachments_Sent(t *testing.T) {
	req := require.New(t)
	chat := NewChat("standup", "", "alice")

	attachment := NewAttachment(chat.ChatID, "alice", "pic.png", AttachmentImage)
	req.NoError(attachment.Upload([]string{"https://cdn.example.com/pic.png"}, nil))

	message := NewMessage(chat.ChatID, "alice", "look", nil, []*Attachment{attachment})
	req.NoError(chat.AddMessage(message))

	req.Equal(AttachmentSent, attachment.Status)
	req.Equal(&message.MessageID, attachment.MessageID)
}

func Test_ReadMessage_Monotonic_Guard(t *testing.T) {
	req := require.New(t)
	chat := NewChat("standup", "", "alice")
	chat.AddParticipant("alice", "alice")
	chat.AddParticipant("bob", "alice")

	first := NewMessage(chat.ChatID, "alice", "first", nil, nil)
	second := NewMessage(chat.ChatID, "alice", "second", nil, nil)
	first.Created = second.Created.Add(-time.Minute)
	req.NoError(chat.AddMessage(first))
	req.NoError(chat.AddMessage(second))
	chat.DrainEvents()

	mark := chat.ReadMessage("bob", second)
	req.NotNil(mark)
	req.Equal(second.MessageID, mark.MessageID)
	req.Len(chat.DrainEvents(), 1)

	// Reading an older message after the mark advanced changes nothing.
	req.Nil(chat.ReadMessage("bob", first))
	// Re-reading the same message changes nothing either.
	req.Nil(chat.ReadMessage("bob", second))

	// A different message tied on the mark's timestamp is as stale as an
	// older one.
	tied := NewMessage(chat.ChatID, "alice", "tied", nil, nil)
	tied.Created = second.Created
	req.NoError(chat.AddMessage(tied))
	chat.DrainEvents()
	req.Nil(chat.ReadMessage("bob", tied))
	req.Empty(chat.DrainEvents())
}

func Test_ReadMessage_Skips_Deleted_And_Strangers(t *testing.T) {
	req := require.New(t)
	chat := NewChat("standup", "", "alice")
	chat.AddParticipant("alice", "alice")

	message := NewMessage(chat.ChatID, "alice", "hi", nil, nil)
	req.NoError(chat.AddMessage(message))
	chat.DrainEvents()

	req.Nil(chat.ReadMessage("stranger", message))

	message.Delete()
	req.Nil(chat.ReadMessage("alice", message))
	req.Empty(chat.DrainEvents())
}

func Test_Tags(t *testing.T) {
	req := require.New(t)
	chat := NewChat("standup", "", "alice")
	chat.AddParticipant("alice", "alice")

	req.NoError(chat.AddTag("alice", "work"))
	req.NoError(chat.AddTag("alice", "work"))

	err := chat.AddTag("stranger", "work")
	req.ErrorAs(err, &errors.ParticipantNotInChat{})

	err = chat.RemoveTag("alice", "missing")
	req.ErrorAs(err, &errors.TagNotFound{})

	req.NoError(chat.RemoveTag("alice", "work"))
	participant, ok := chat.Participant("alice")
	req.True(ok)
	req.Empty(participant.Tags)
}

func Test_SetFirstWriter(t *testing.T) {
	req := require.New(t)
	chat := NewChat("standup", "", "alice")
	chat.AddParticipant("alice", "alice")

	req.NoError(chat.SetFirstWriter("alice", true))
	participant, _ := chat.Participant("alice")
	req.True(participant.FirstWriter)

	err := chat.SetFirstWriter("stranger", true)
	req.ErrorAs(err, &errors.ParticipantNotInChat{})
}

func Test_Chat_Delete_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	chat := NewChat("standup", "", "alice")

	req.True(chat.Delete("alice"))
	req.False(chat.Delete("alice"))
	req.Len(chat.DrainEvents(), 1)
}

func Test_Participant_Identity_Is_Account(t *testing.T) {
	req := require.New(t)
	chat := NewChat("standup", "", "alice")
	chat.AddParticipant("bob", "alice")

	participant, ok := chat.Participant("bob")
	req.True(ok)
	req.Equal("alice", participant.InvitedBy)

	_, ok = chat.Participant(uuid.NewString())
	req.False(ok)
}
