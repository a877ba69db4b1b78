package issuer

import (
	"github.com/anoncreds-network/issuecredential/didcomm"
	"github.com/anoncreds-network/issuecredential/protocol/issuecredential/data"
	"github.com/anoncreds-network/issuecredential/protocol/issuecredential/status"
)

// State names the Issuer's seven states. CredentialSent is a transient
// terminal-ish state awaiting an ack, not itself terminal. Terminal
// states are Finished and Failed.
type State int

const (
	StateInitial State = iota
	StateProposalReceived
	StateOfferSent
	StateRequestReceived
	StateCredentialSent
	StateFinished
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "Initial"
	case StateProposalReceived:
		return "ProposalReceived"
	case StateOfferSent:
		return "OfferSent"
	case StateRequestReceived:
		return "RequestReceived"
	case StateCredentialSent:
		return "CredentialSent"
	case StateFinished:
		return "Finished"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether s is Finished or Failed.
func (s State) IsTerminal() bool { return s == StateFinished || s == StateFailed }

// Per-state data: one variant per state, only the fields valid in it.

type initialState struct{}

type proposalReceivedState struct {
	Proposal didcomm.CredentialProposal
}

type offerSentState struct {
	OfferInfo data.OfferInfo
	Offer     didcomm.CredentialOffer
}

type requestReceivedState struct {
	OfferInfo data.OfferInfo
	Offer     didcomm.CredentialOffer
	Request   didcomm.CredentialRequest
}

type credentialSentState struct {
	OfferInfo  data.OfferInfo
	Credential didcomm.Credential
	Revocation data.RevocationInfo
}

type finishedState struct {
	Credential didcomm.Credential
	Revocation data.RevocationInfo
	Status     status.Status
}

type failedState struct {
	Problem *didcomm.ProblemReport
	Reason  string
}
