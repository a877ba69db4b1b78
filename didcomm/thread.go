package didcomm

import "github.com/google/uuid"

// Thread is the `~thread` decorator carried by every protocol message.
// ThID names the thread the message belongs to; PThID, when set, names
// the thread this message replies to (used for re-negotiation messages
// such as a CredentialProposal sent after an OfferSent).
type Thread struct {
	ThID  string `json:"thid,omitempty"`
	PThID string `json:"pthid,omitempty"`
}

// FromThread is true iff the message declares tid as the thread it
// belongs to.
func (t Thread) FromThread(tid string) bool {
	return t.ThID != "" && t.ThID == tid
}

// IsReply is true iff the message declares itself a reply to tid.
func (t Thread) IsReply(tid string) bool {
	return t.PThID != "" && t.PThID == tid
}

// NewThreadID mints a fresh thread identifier, the way a machine does on
// first outbound message as initiator.
func NewThreadID() string {
	return uuid.New().String()
}

// NewMessageID mints a fresh `@id` for an outbound message.
func NewMessageID() string {
	return uuid.New().String()
}
