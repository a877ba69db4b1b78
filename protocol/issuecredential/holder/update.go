package holder

import (
	"context"

	"github.com/golang/glog"
	"github.com/lainio/err2"

	"github.com/anoncreds-network/issuecredential/connection"
)

// UpdateState runs one poll-handle-acknowledge cycle against conn: it
// fetches the pending inbound bag, runs the selector, and if a candidate
// message was found, delivers it through Handle and marks it read. It is
// a no-op, returning the current state unchanged, when no candidate
// message is pending.
func (h *SM) UpdateState(ctx context.Context, conn connection.Connection) (state State, err error) {
	defer err2.Annotate("holder update state", &err)

	messages, msgErr := conn.Messages()
	if msgErr != nil {
		return h.state, msgErr
	}

	key, msg, found := h.Select(messages)
	if !found {
		return h.state, nil
	}

	send, sendErr := conn.SendMessageClosure()
	if sendErr != nil {
		return h.state, sendErr
	}

	if handleErr := h.Handle(ctx, FromMessage(msg), send); handleErr != nil {
		return h.state, handleErr
	}

	if markErr := conn.MarkRead(key); markErr != nil {
		glog.Warningf("holder %s: handled message %s but failed to mark it read: %v", h.sourceID, key, markErr)
		return h.state, markErr
	}

	return h.state, nil
}
