package holder

import "github.com/anoncreds-network/issuecredential/didcomm"

// Accepts reports whether msg is a candidate inbound message for this
// Holder's current state. It does not check the thread id; that is
// thread.Verify's job once a message is actually selected.
func (h SM) Accepts(msg didcomm.Message) bool {
	switch h.state {
	case StateInitial:
		_, ok := msg.(didcomm.CredentialOffer)
		return ok
	case StateProposalSent:
		switch msg.(type) {
		case didcomm.CredentialOffer, didcomm.ProblemReport:
			return true
		}
		return false
	case StateRequestSent:
		switch msg.(type) {
		case didcomm.Credential, didcomm.ProblemReport:
			return true
		}
		return false
	default:
		// OfferReceived has no inbound acceptance set: it only advances on
		// caller commands. Finished/Failed are terminal.
		return false
	}
}

// Select returns the single message from candidates this Holder should
// handle next, and whether one was found. At most one candidate
// matches in any well-formed interaction; if more than one does,
// iteration order over the map (deliberately unspecified by Go)
// decides, since message ordering beyond that single-candidate rule is
// out of scope here.
func (h SM) Select(candidates map[string]didcomm.Message) (string, didcomm.Message, bool) {
	for key, msg := range candidates {
		if h.Accepts(msg) {
			return key, msg, true
		}
	}
	return "", nil, false
}
