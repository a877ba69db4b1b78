package issuer

import (
	"context"

	"github.com/golang/glog"
	"github.com/lainio/err2"

	"github.com/anoncreds-network/issuecredential/connection"
)

// UpdateState runs one poll-handle-acknowledge cycle against conn,
// mirroring holder.SM.UpdateState.
func (s *SM) UpdateState(ctx context.Context, conn connection.Connection) (state State, err error) {
	defer err2.Annotate("issuer update state", &err)

	messages, msgErr := conn.Messages()
	if msgErr != nil {
		return s.state, msgErr
	}

	key, msg, found := s.Select(messages)
	if !found {
		return s.state, nil
	}

	send, sendErr := conn.SendMessageClosure()
	if sendErr != nil {
		return s.state, sendErr
	}

	if handleErr := s.Handle(ctx, FromMessage(msg), send); handleErr != nil {
		return s.state, handleErr
	}

	if markErr := conn.MarkRead(key); markErr != nil {
		glog.Warningf("issuer %s: handled message %s but failed to mark it read: %v", s.sourceID, key, markErr)
		return s.state, markErr
	}

	return s.state, nil
}
