package issuer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anoncreds-network/issuecredential/anoncreds"
	"github.com/anoncreds-network/issuecredential/didcomm"
	ierr "github.com/anoncreds-network/issuecredential/errors"
	"github.com/anoncreds-network/issuecredential/protocol/issuecredential/data"
	"github.com/anoncreds-network/issuecredential/protocol/issuecredential/status"
)

// TestHappyPath drives the Issuer through a full happy-path
// interaction: create, OfferSend, receive a matching
// CredentialRequest, then CredentialSend to Finished.
func TestHappyPath(t *testing.T) {
	backend := anoncreds.NewInMemory()
	s := New("issuer-1", backend)
	require.Equal(t, StateInitial, s.State())

	var sent []didcomm.Message
	send := func(msg didcomm.Message) error {
		sent = append(sent, msg)
		return nil
	}

	info := data.OfferInfo{CredDefID: "c1", CredentialJSON: `{"name":"Alice"}`}
	require.NoError(t, s.Handle(context.Background(), OfferSend{Info: info}, send))
	assert.Equal(t, StateOfferSent, s.State())
	require.Len(t, sent, 1)
	assert.Equal(t, didcomm.KindCredentialOffer, sent[0].Kind())

	request := didcomm.NewCredentialRequest(s.ThreadID(), didcomm.NewAttachment([]byte(`{}`)))
	require.NoError(t, s.Handle(context.Background(), FromMessage(request), send))
	assert.Equal(t, StateRequestReceived, s.State())

	require.NoError(t, s.Handle(context.Background(), CredentialSend{}, send))
	assert.Equal(t, StateFinished, s.State())
	assert.True(t, s.IsTerminal())
	assert.Equal(t, status.Success, s.CredentialStatus())
	require.Len(t, sent, 2)
	assert.Equal(t, didcomm.KindCredential, sent[1].Kind())
}

// TestThreadMismatchFiltered verifies that in OfferSent, a
// CredentialRequest on a different thread is not even a selector
// candidate, and state remains unchanged.
func TestThreadMismatchFiltered(t *testing.T) {
	backend := anoncreds.NewInMemory()
	s := New("issuer-2", backend)
	require.NoError(t, s.Handle(context.Background(), OfferSend{
		Info: data.OfferInfo{CredDefID: "c1", CredentialJSON: `{"name":"Alice"}`},
	}, func(didcomm.Message) error { return nil }))
	require.Equal(t, StateOfferSent, s.State())

	foreign := didcomm.NewCredentialRequest("some-other-thread", didcomm.NewAttachment([]byte(`{}`)))
	assert.False(t, s.Accepts(foreign))

	before := s
	err := s.Handle(context.Background(), FromMessage(foreign), nil)
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.KindThreadIDMismatch))
	assert.Equal(t, before, s)
}

// TestBackendFailureDuringCredentialSend verifies that when the backend
// fails CreateCredential, the Issuer transitions straight to Finished
// carrying the failure and emits a ProblemReport.
func TestBackendFailureDuringCredentialSend(t *testing.T) {
	backend := anoncreds.NewInMemory()
	backend.CreateCredErr = errors.New("ledger unavailable")
	s := New("issuer-3", backend)

	require.NoError(t, s.Handle(context.Background(), OfferSend{
		Info: data.OfferInfo{CredDefID: "c1", CredentialJSON: `{"name":"Alice"}`},
	}, func(didcomm.Message) error { return nil }))

	request := didcomm.NewCredentialRequest(s.ThreadID(), didcomm.NewAttachment([]byte(`{}`)))
	require.NoError(t, s.Handle(context.Background(), FromMessage(request), func(didcomm.Message) error { return nil }))
	require.Equal(t, StateRequestReceived, s.State())

	var sent []didcomm.Message
	send := func(msg didcomm.Message) error {
		sent = append(sent, msg)
		return nil
	}
	require.NoError(t, s.Handle(context.Background(), CredentialSend{}, send))
	assert.Equal(t, StateFinished, s.State())
	assert.True(t, s.IsTerminal())
	assert.NotEqual(t, status.Success, s.CredentialStatus())
	require.Len(t, sent, 1)
	assert.Equal(t, didcomm.KindProblemReport, sent[0].Kind())
}

// TestRevokeBeforeFinished verifies that revoke(true) in
// RequestReceived fails with NotReady, state unchanged.
func TestRevokeBeforeFinished(t *testing.T) {
	backend := anoncreds.NewInMemory()
	s := New("issuer-4", backend)
	require.NoError(t, s.Handle(context.Background(), OfferSend{
		Info: data.OfferInfo{CredDefID: "c1", CredentialJSON: `{"name":"Alice"}`},
	}, func(didcomm.Message) error { return nil }))
	request := didcomm.NewCredentialRequest(s.ThreadID(), didcomm.NewAttachment([]byte(`{}`)))
	require.NoError(t, s.Handle(context.Background(), FromMessage(request), func(didcomm.Message) error { return nil }))
	require.Equal(t, StateRequestReceived, s.State())

	before := s
	err := s.Revoke(context.Background(), true)
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.KindNotReady))
	assert.Equal(t, before, s)
}

func TestProposalAdoptionAndOfferFromProposal(t *testing.T) {
	backend := anoncreds.NewInMemory()
	s := New("issuer-5", backend)

	proposal := didcomm.NewCredentialProposal(didcomm.NewCredentialPreview(), "c1", "hello")
	require.NoError(t, s.Handle(context.Background(), FromMessage(proposal), nil))
	assert.Equal(t, StateProposalReceived, s.State())
	assert.Equal(t, proposal.ID, s.ThreadID())

	got, err := s.GetProposal()
	require.NoError(t, err)
	assert.Equal(t, proposal.ID, got.ID)

	require.NoError(t, s.Handle(context.Background(), OfferSend{
		Info: data.OfferInfo{CredDefID: "c1", CredentialJSON: `{"name":"Bob"}`},
	}, func(didcomm.Message) error { return nil }))
	assert.Equal(t, StateOfferSent, s.State())
}

func TestIsRevocableFailsInInitial(t *testing.T) {
	backend := anoncreds.NewInMemory()
	s := New("issuer-6", backend)
	_, err := s.IsRevocable()
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.KindInvalidState))
}

func TestRevocableCredentialLifecycle(t *testing.T) {
	backend := anoncreds.NewInMemory()
	s := New("issuer-7", backend)
	info := data.OfferInfo{CredDefID: "c1", CredentialJSON: `{"name":"Carol"}`, RevRegID: "rev-1", TailsFile: "tails-1"}
	require.NoError(t, s.Handle(context.Background(), OfferSend{Info: info}, func(didcomm.Message) error { return nil }))

	revocable, err := s.IsRevocable()
	require.NoError(t, err)
	assert.True(t, revocable)

	request := didcomm.NewCredentialRequest(s.ThreadID(), didcomm.NewAttachment([]byte(`{}`)))
	require.NoError(t, s.Handle(context.Background(), FromMessage(request), func(didcomm.Message) error { return nil }))
	require.NoError(t, s.Handle(context.Background(), CredentialSend{}, func(didcomm.Message) error { return nil }))
	assert.Equal(t, StateFinished, s.State())
	assert.NotEmpty(t, s.GetRevRegID())

	require.NoError(t, s.Revoke(context.Background(), false))
}
