package holder

import (
	"github.com/anoncreds-network/issuecredential/didcomm"
	"github.com/anoncreds-network/issuecredential/protocol/issuecredential/data"
)

// Event is either a caller command or an inbound protocol message
// delivered to Handle.
type Event interface{ isHolderEvent() }

// ProposalSend asks the Holder to (re-)send a CredentialProposal.
type ProposalSend struct {
	Proposal data.CredentialProposalData
}

func (ProposalSend) isHolderEvent() {}

// RequestSend asks the Holder to build and send a CredentialRequest
// against the currently held offer, using myPwDID as the holder's
// pairwise DID for this interaction.
type RequestSend struct {
	MyPwDID string
}

func (RequestSend) isHolderEvent() {}

// OfferReject asks the Holder to decline the currently held offer.
// Comment is nil when the caller supplied none.
type OfferReject struct {
	Comment *string
}

func (OfferReject) isHolderEvent() {}

// MessageEvent wraps an inbound protocol message so it can be handed to
// Handle alongside commands.
type MessageEvent struct {
	Msg didcomm.Message
}

func (MessageEvent) isHolderEvent() {}

// FromMessage adapts an inbound didcomm.Message into an Event.
func FromMessage(msg didcomm.Message) Event { return MessageEvent{Msg: msg} }
