package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chat-backend/domain/event"
	"chat-backend/errors"
)

func Test_Upload_Twice_Fails(t *testing.T) {
	req := require.New(t)
	attachment := NewAttachment(uuid.New(), "alice", "voice.ogg", AttachmentVoice)

	urls := []string{"https://cdn.example.com/voice.ogg"}
	meta := map[string]any{"duration": 12.5}
	req.NoError(attachment.Upload(urls, meta))
	req.Equal(AttachmentUploaded, attachment.Status)
	req.NotNil(attachment.UploadedAt)

	err := attachment.Upload(urls, meta)
	req.ErrorAs(err, &errors.AlreadyUploaded{})

	events := attachment.DrainEvents()
	req.Len(events, 1)
	uploaded, ok := events[0].(event.NewAttachmentUploaded)
	req.True(ok)
	req.Equal(urls, uploaded.URLs)
}

func Test_Send_Twice_Fails(t *testing.T) {
	req := require.New(t)
	attachment := NewAttachment(uuid.New(), "alice", "pic.png", AttachmentImage)
	req.NoError(attachment.Upload([]string{"https://cdn.example.com/pic.png"}, nil))
	attachment.DrainEvents()

	messageID := uuid.New()
	req.NoError(attachment.Send(messageID))
	req.Equal(AttachmentSent, attachment.Status)

	err := attachment.Send(uuid.New())
	req.ErrorAs(err, &errors.AlreadySent{})

	events := attachment.DrainEvents()
	req.Len(events, 1)
	sent, ok := events[0].(event.AttachmentSent)
	req.True(ok)
	req.Equal(messageID, sent.MessageID)
}
