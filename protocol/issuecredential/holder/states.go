package holder

import (
	"github.com/anoncreds-network/issuecredential/didcomm"
	"github.com/anoncreds-network/issuecredential/protocol/issuecredential/data"
	"github.com/anoncreds-network/issuecredential/protocol/issuecredential/status"
)

// State names the Holder's six states. Terminal states are Finished and
// Failed.
type State int

const (
	StateInitial State = iota
	StateProposalSent
	StateOfferReceived
	StateRequestSent
	StateFinished
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "Initial"
	case StateProposalSent:
		return "ProposalSent"
	case StateOfferReceived:
		return "OfferReceived"
	case StateRequestSent:
		return "RequestSent"
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

// Per-state data: one variant per state with only the fields valid in
// that state, no null-filled god struct.

type initialState struct{}

type proposalSentState struct {
	Proposal data.CredentialProposalData
}

type offerReceivedState struct {
	Offer didcomm.CredentialOffer
}

type requestSentState struct {
	Offer           didcomm.CredentialOffer
	Request         didcomm.CredentialRequest
	RequestMetadata string
}

type finishedState struct {
	Offer        didcomm.CredentialOffer
	Credential   didcomm.Credential
	Content      data.CredentialContent
	CredentialID string
	Status       status.Status
}

type failedState struct {
	Problem *didcomm.ProblemReport
	Reason  string
}
