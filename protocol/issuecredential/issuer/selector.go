package issuer

import "github.com/anoncreds-network/issuecredential/didcomm"

// Accepts reports whether msg is a candidate inbound message for this
// Issuer's current state, including the thread correlation each state
// requires (same thread, or is_reply for a renegotiation proposal).
// Initial accepts any CredentialProposal with no thread check — it
// adopts the proposal's own thread.
func (s SM) Accepts(msg didcomm.Message) bool {
	switch s.state {
	case StateInitial:
		_, ok := msg.(didcomm.CredentialProposal)
		return ok
	case StateOfferSent:
		switch m := msg.(type) {
		case didcomm.CredentialRequest:
			return m.FromThread(s.threadID)
		case didcomm.CredentialProposal:
			return m.Thread().IsReply(s.threadID)
		case didcomm.ProblemReport:
			return m.ThreadRef.FromThread(s.threadID)
		}
		return false
	case StateRequestReceived, StateCredentialSent:
		switch m := msg.(type) {
		case didcomm.Ack:
			return m.ThreadRef.FromThread(s.threadID)
		case didcomm.ProblemReport:
			return m.ThreadRef.FromThread(s.threadID)
		}
		return false
	default:
		// ProposalReceived has no inbound acceptance set: it only advances
		// on the OfferSend command. Finished/Failed are terminal.
		return false
	}
}

// Select returns the single message from candidates this Issuer should
// handle next, and whether one was found. At most one candidate
// matches in any well-formed interaction; tie-breaking among several
// is intentionally left to Go's native map iteration order.
func (s SM) Select(candidates map[string]didcomm.Message) (string, didcomm.Message, bool) {
	for key, msg := range candidates {
		if s.Accepts(msg) {
			return key, msg, true
		}
	}
	return "", nil, false
}
