// Package thread implements the thread-id verifier shared by the Holder
// and Issuer state machines. It is a pure predicate: it never mutates
// anything and never talks to a backend.
package thread

import (
	"github.com/lainio/err2"

	"github.com/anoncreds-network/issuecredential/didcomm"
	ierr "github.com/anoncreds-network/issuecredential/errors"
)

// Verify runs before every state transition. Rule: if msg is non-nil,
// carries a thread reference, and currentThreadID is already set, the
// reference must name currentThreadID — either as its own thread
// (FromThread) or as the thread it replies to (IsReply) — or
// verification fails with KindThreadIDMismatch. bypass short-circuits
// the check for caller commands and for the messages that adopt a
// fresh thread id for the first time.
func Verify(currentThreadID string, msg didcomm.Message, bypass bool) (err error) {
	defer err2.Annotate("verify thread id", &err)

	if bypass || msg == nil || currentThreadID == "" {
		return nil
	}

	ref := msg.Thread()
	if ref.ThID == "" && ref.PThID == "" {
		return nil
	}
	if ref.FromThread(currentThreadID) || ref.IsReply(currentThreadID) {
		return nil
	}

	return ierr.New(
		ierr.KindThreadIDMismatch,
		"message thread reference %+v does not match interaction thread id %q",
		ref, currentThreadID,
	)
}
