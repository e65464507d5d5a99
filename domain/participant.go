package domain

import (
	"time"

	"github.com/google/uuid"
)

type ChatTag string

// Participant is owned exclusively by its Chat. Equality is by account id.
type Participant struct {
	AccountID   string
	InvitedBy   string
	FirstWriter bool
	Tags        map[ChatTag]struct{}

	// LastReadMessageID and LastReadAt track the most recent message this
	// participant has read. LastReadAt is the created timestamp of that
	// message, used for the monotonic read guard.
	LastReadMessageID *uuid.UUID
	LastReadAt        time.Time
}

func NewParticipant(accountID, invitedBy string) *Participant {
	return &Participant{
		AccountID: accountID,
		InvitedBy: invitedBy,
		Tags:      make(map[ChatTag]struct{}),
	}
}

func (p *Participant) AddTag(tag ChatTag) {
	if p.Tags == nil {
		p.Tags = make(map[ChatTag]struct{})
	}
	p.Tags[tag] = struct{}{}
}

func (p *Participant) RemoveTag(tag ChatTag) bool {
	if _, ok := p.Tags[tag]; !ok {
		return false
	}
	delete(p.Tags, tag)
	return true
}

func (p *Participant) HasTag(tag ChatTag) bool {
	_, ok := p.Tags[tag]
	return ok
}
