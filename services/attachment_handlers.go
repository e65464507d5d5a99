package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"chat-backend/domain"
	"chat-backend/domain/event"
	"chat-backend/errors"
	"chat-backend/repositories"
)

type CreateAttachmentHandler struct {
	store *repositories.Store
	log   *slog.Logger
}

func NewCreateAttachmentHandler(store *repositories.Store, log *slog.Logger) *CreateAttachmentHandler {
	return &CreateAttachmentHandler{store: store, log: log}
}

func (h *CreateAttachmentHandler) Handle(ctx context.Context, request any) (any, []event.DomainEvent, error) {
	cmd := request.(CreateAttachment)

	uow := h.store.Begin()
	defer uow.Rollback()

	chat, err := uow.Chats.Get(cmd.ChatID)
	if err != nil {
		return nil, nil, err
	}
	if chat.Deleted {
		return nil, nil, errors.ChatNotFound{ChatID: cmd.ChatID}
	}
	if !chat.IsParticipant(cmd.Uploader) {
		return nil, nil, errors.ParticipantNotInChat{AccountID: cmd.Uploader, ChatID: cmd.ChatID}
	}

	contentType := cmd.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(cmd.Sample).String()
	}

	attachment := domain.NewAttachment(cmd.ChatID, cmd.Uploader, cmd.Filename, attachmentTypeOf(contentType))
	if err := uow.Attachments.Add(attachment); err != nil {
		return nil, nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, nil, err
	}

	h.log.Info("attachment created",
		"attachment", attachment.AttachmentID,
		"chat", cmd.ChatID,
		"type", attachment.ContentType)
	return AttachmentCreated{AttachmentID: attachment.AttachmentID, ContentType: attachment.ContentType}, uow.Events(), nil
}

// attachmentTypeOf buckets a MIME type into the attachment taxonomy. Voice
// notes and circles are client-declared types, never sniffed.
func attachmentTypeOf(mime string) domain.AttachmentType {
	switch domain.AttachmentType(mime) {
	case domain.AttachmentVoice:
		return domain.AttachmentVoice
	case domain.AttachmentCircle:
		return domain.AttachmentCircle
	}

	switch {
	case strings.HasPrefix(mime, "image/"):
		return domain.AttachmentImage
	case strings.HasPrefix(mime, "video/"):
		return domain.AttachmentVideo
	case strings.HasPrefix(mime, "audio/"):
		return domain.AttachmentAudio
	default:
		return domain.AttachmentFile
	}
}

type UploadAttachmentHandler struct {
	store *repositories.Store
	log   *slog.Logger
}

func NewUploadAttachmentHandler(store *repositories.Store, log *slog.Logger) *UploadAttachmentHandler {
	return &UploadAttachmentHandler{store: store, log: log}
}

func (h *UploadAttachmentHandler) Handle(ctx context.Context, request any) (any, []event.DomainEvent, error) {
	cmd := request.(UploadAttachment)

	uow := h.store.Begin()
	defer uow.Rollback()

	attachment, err := uow.Attachments.Get(cmd.AttachmentID)
	if err != nil {
		return nil, nil, err
	}
	if attachment.Uploader != cmd.Uploader {
		return nil, nil, errors.AttachmentNotForSender{AttachmentID: cmd.AttachmentID, AccountID: cmd.Uploader}
	}
	if err := attachment.Upload(cmd.URLs, cmd.Meta); err != nil {
		return nil, nil, err
	}

	if err := uow.Attachments.Update(attachment); err != nil {
		return nil, nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, nil, err
	}
	return nil, uow.Events(), nil
}

type GetAttachmentsHandler struct {
	store *repositories.Store
	log   *slog.Logger
}

func NewGetAttachmentsHandler(store *repositories.Store, log *slog.Logger) *GetAttachmentsHandler {
	return &GetAttachmentsHandler{store: store, log: log}
}

func (h *GetAttachmentsHandler) Handle(ctx context.Context, request any) (any, []event.DomainEvent, error) {
	cmd := request.(GetAttachments)

	uow := h.store.Begin()
	defer uow.Rollback()

	chat, err := uow.Chats.Get(cmd.ChatID)
	if err != nil {
		return nil, nil, err
	}
	if chat.Deleted {
		return nil, nil, errors.ChatNotFound{ChatID: cmd.ChatID}
	}
	if !chat.IsParticipant(cmd.Account) {
		return nil, nil, errors.ParticipantNotInChat{AccountID: cmd.Account, ChatID: cmd.ChatID}
	}

	attachments, err := uow.Attachments.GetChatAttachments(cmd.ChatID, cmd.Limit)
	if err != nil {
		return nil, nil, err
	}
	return AttachmentsGot{Attachments: attachments}, nil, nil
}
