// Package connection defines the minimal collaborator interface the
// Holder and Issuer state machines need from a caller's transport layer:
// a source of pending inbound messages and a sink for outbound ones.
// Spec.md §1 places the Connection object itself out of scope; this
// interface is the seam the machines depend on, not an implementation of
// wire transport.
package connection

import "github.com/anoncreds-network/issuecredential/didcomm"

// Connection is the collaborator UpdateState needs: a pending-message
// bag keyed for the selector, a way to acknowledge a message once it has
// been handled, and an outbound send closure.
type Connection interface {
	// Messages returns the unread inbound messages pending for this
	// interaction, keyed however the caller's transport tracks them.
	Messages() (map[string]didcomm.Message, error)

	// MarkRead acknowledges the message at key so it is not returned by
	// Messages again.
	MarkRead(key string) error

	// SendMessageClosure returns the outbound send callback the state
	// machines call at most once per transition.
	SendMessageClosure() (func(didcomm.Message) error, error)
}
