package issuer

import (
	"github.com/anoncreds-network/issuecredential/didcomm"
	"github.com/anoncreds-network/issuecredential/protocol/issuecredential/data"
)

// Event is either a caller command or an inbound protocol message
// delivered to Handle.
type Event interface{ isIssuerEvent() }

// OfferSend asks the Issuer to create an offer from info and send it,
// carrying an optional comment.
type OfferSend struct {
	Info    data.OfferInfo
	Comment string
}

func (OfferSend) isIssuerEvent() {}

// CredentialSend asks the Issuer to issue the credential against the
// currently held request and send it.
type CredentialSend struct{}

func (CredentialSend) isIssuerEvent() {}

// MessageEvent wraps an inbound protocol message so it can be handed to
// Handle alongside commands.
type MessageEvent struct {
	Msg didcomm.Message
}

func (MessageEvent) isIssuerEvent() {}

// FromMessage adapts an inbound didcomm.Message into an Event.
func FromMessage(msg didcomm.Message) Event { return MessageEvent{Msg: msg} }
