package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Key layout. Record keys derive deterministically from entity ids; index
// keys embed a 19-digit zero-padded UnixNano so a prefix scan yields entries
// in chronological order, with the entity id as a collision disambiguator
// when two entries land on the same nanosecond.
//
//	chat:{chat_id}                                  -> chat record
//	msg:{message_id}                                -> message record
//	att:{attachment_id}                             -> attachment record
//	idx:chatmsg:{chat_id}:{ts}:{message_id}         -> message id
//	idx:acctchat:{account_id}:{chat_id}             -> chat id
//	idx:chatatt:{chat_id}:{ts}:{attachment_id}      -> attachment id
//	readmark:{chat_id}:{account_id}:{ts}:{mark_id}  -> read-mark record

func chatKey(chatID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("chat:%s", chatID))
}

func messageKey(messageID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msg:%s", messageID))
}

func attachmentKey(attachmentID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("att:%s", attachmentID))
}

func chatMessagePrefix(chatID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("idx:chatmsg:%s:", chatID))
}

func chatMessageKey(chatID uuid.UUID, created time.Time, messageID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("idx:chatmsg:%s:%019d:%s", chatID, created.UnixNano(), messageID))
}

func chatMessageSeekKey(chatID uuid.UUID, created time.Time, messageID uuid.UUID) []byte {
	return chatMessageKey(chatID, created, messageID)
}

func accountChatPrefix(accountID string) []byte {
	return []byte(fmt.Sprintf("idx:acctchat:%s:", accountID))
}

func accountChatKey(accountID string, chatID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("idx:acctchat:%s:%s", accountID, chatID))
}

func chatAttachmentPrefix(chatID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("idx:chatatt:%s:", chatID))
}

func chatAttachmentKey(chatID uuid.UUID, created time.Time, attachmentID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("idx:chatatt:%s:%019d:%s", chatID, created.UnixNano(), attachmentID))
}

func readMarkPrefix(chatID uuid.UUID, accountID string) []byte {
	return []byte(fmt.Sprintf("readmark:%s:%s:", chatID, accountID))
}

func readMarkKey(chatID uuid.UUID, accountID string, readAt time.Time, markID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("readmark:%s:%s:%019d:%s", chatID, accountID, readAt.UnixNano(), markID))
}

// maxPaddedTimestamp seeks past every index entry of a prefix when iterating
// in reverse without a cursor.
const maxPaddedTimestamp = "9999999999999999999"
