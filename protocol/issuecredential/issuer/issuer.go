// Package issuer implements the Issuer state machine of the issue
// credential protocol: seven states, transitions driven by the
// combined inbound-message-or-command event, thread-id verified
// before every move.
package issuer

import (
	"context"

	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/assert"

	"github.com/anoncreds-network/issuecredential/anoncreds"
	"github.com/anoncreds-network/issuecredential/didcomm"
	ierr "github.com/anoncreds-network/issuecredential/errors"
	"github.com/anoncreds-network/issuecredential/protocol/issuecredential/data"
	"github.com/anoncreds-network/issuecredential/protocol/issuecredential/status"
	"github.com/anoncreds-network/issuecredential/protocol/issuecredential/thread"
)

// SendFunc is the injected outbound-message callback.
type SendFunc func(didcomm.Message) error

// SM is one Issuer interaction. It is a value type: copying it copies
// the whole interaction. Its fields are unexported and it defines no
// marshalling methods, so encoding/json does not capture its state. The
// zero value is not valid; build one with New or FromProposal.
type SM struct {
	sourceID string
	threadID string
	state    State

	initial          initialState
	proposalReceived proposalReceivedState
	offerSent        offerSentState
	requestReceived  requestReceivedState
	credentialSent   credentialSentState
	finished         finishedState
	failed           failedState

	backend anoncreds.Backend
}

// New creates a fresh Issuer in Initial with a new thread id.
func New(sourceID string, backend anoncreds.Backend) SM {
	return SM{
		sourceID: sourceID,
		threadID: didcomm.NewThreadID(),
		state:    StateInitial,
		backend:  backend,
	}
}

// FromProposal creates an Issuer already in ProposalReceived, adopting
// the proposal's thread id.
func FromProposal(sourceID string, proposal didcomm.CredentialProposal, backend anoncreds.Backend) SM {
	return SM{
		sourceID:         sourceID,
		threadID:         proposal.Thread().ThID,
		state:            StateProposalReceived,
		proposalReceived: proposalReceivedState{Proposal: proposal},
		backend:          backend,
	}
}

func (s SM) SourceID() string { return s.sourceID }
func (s SM) ThreadID() string { return s.threadID }
func (s SM) State() State     { return s.state }
func (s SM) IsTerminal() bool { return s.state.IsTerminal() }

// Handle is the single mutation entrypoint. On success it mutates the
// receiver in place; on failure the receiver is left exactly as it
// was: a failed transition observably leaves the interaction in its
// prior state.
func (s *SM) Handle(ctx context.Context, ev Event, send SendFunc) (err error) {
	defer err2.Annotate("issuer handle", &err)

	next, handleErr := s.transition(ctx, ev, send)
	if handleErr != nil {
		return handleErr
	}
	*s = next
	return nil
}

// transition computes the next state without mutating s, following
// the "consume self, produce new self" contract.
func (s SM) transition(ctx context.Context, ev Event, send SendFunc) (SM, error) {
	if s.IsTerminal() {
		glog.V(1).Infof("issuer %s: event %T dropped, terminal state %s", s.sourceID, ev, s.state)
		return s, nil
	}

	msg, isMsg := eventMessage(ev)
	bypass := !isMsg || s.isAdoptingProposal(msg)
	if err := thread.Verify(s.threadID, msg, bypass); err != nil {
		return s, err
	}

	switch s.state {
	case StateInitial:
		return s.handleInitial(ctx, ev, send)
	case StateProposalReceived:
		return s.handleProposalReceived(ctx, ev, send)
	case StateOfferSent:
		return s.handleOfferSent(ev)
	case StateRequestReceived:
		return s.handleRequestReceived(ctx, ev, send)
	case StateCredentialSent:
		return s.handleCredentialSent(ev)
	default:
		glog.Warningf("issuer %s: unreachable state %s", s.sourceID, s.state)
		return s, nil
	}
}

func eventMessage(ev Event) (didcomm.Message, bool) {
	if me, ok := ev.(MessageEvent); ok {
		return me.Msg, true
	}
	return nil, false
}

// isAdoptingProposal is true exactly for the one message that establishes
// a fresh thread id for an as-yet-threadless Issuer: a CredentialProposal
// arriving in Initial, with no thread check since it adopts the thread.
func (s SM) isAdoptingProposal(msg didcomm.Message) bool {
	if s.state != StateInitial || msg == nil {
		return false
	}
	_, ok := msg.(didcomm.CredentialProposal)
	return ok
}

func (s SM) handleInitial(ctx context.Context, ev Event, send SendFunc) (SM, error) {
	switch e := ev.(type) {
	case OfferSend:
		return s.sendOffer(ctx, e.Info, e.Comment, s.threadID, send)
	case MessageEvent:
		if proposal, ok := e.Msg.(didcomm.CredentialProposal); ok {
			next := s
			next.threadID = proposal.Thread().ThID
			next.state = StateProposalReceived
			next.proposalReceived = proposalReceivedState{Proposal: proposal}
			return next, nil
		}
	}
	glog.V(1).Infof("issuer %s: unable to process %T in %s", s.sourceID, ev, s.state)
	return s, nil
}

func (s SM) handleProposalReceived(ctx context.Context, ev Event, send SendFunc) (SM, error) {
	if e, ok := ev.(OfferSend); ok {
		return s.sendOffer(ctx, e.Info, e.Comment, s.proposalReceived.Proposal.Thread().ThID, send)
	}
	glog.V(1).Infof("issuer %s: unable to process %T in %s", s.sourceID, ev, s.state)
	return s, nil
}

func (s SM) handleOfferSent(ev Event) (SM, error) {
	me, ok := ev.(MessageEvent)
	if !ok {
		glog.V(1).Infof("issuer %s: unable to process %T in %s", s.sourceID, ev, s.state)
		return s, nil
	}

	switch msg := me.Msg.(type) {
	case didcomm.CredentialRequest:
		next := s
		next.state = StateRequestReceived
		next.requestReceived = requestReceivedState{
			OfferInfo: s.offerSent.OfferInfo,
			Offer:     s.offerSent.Offer,
			Request:   msg,
		}
		return next, nil
	case didcomm.CredentialProposal:
		next := s
		next.state = StateProposalReceived
		next.proposalReceived = proposalReceivedState{Proposal: msg}
		return next, nil
	case didcomm.ProblemReport:
		return s.toFailed(msg.Comment, &msg), nil
	}
	glog.V(1).Infof("issuer %s: unable to process %T in %s", s.sourceID, ev, s.state)
	return s, nil
}

func (s SM) handleRequestReceived(ctx context.Context, ev Event, send SendFunc) (SM, error) {
	if _, ok := ev.(CredentialSend); ok {
		return s.sendCredential(ctx, send)
	}
	glog.V(1).Infof("issuer %s: unable to process %T in %s", s.sourceID, ev, s.state)
	return s, nil
}

// handleCredentialSent is not reached: no transition enters
// CredentialSent, since sendCredential goes directly to Finished on both
// success and failure. If the state were entered, an Ack would move it
// to Finished and a ProblemReport to Failed.
func (s SM) handleCredentialSent(ev Event) (SM, error) {
	me, ok := ev.(MessageEvent)
	if !ok {
		glog.V(1).Infof("issuer %s: unable to process %T in %s", s.sourceID, ev, s.state)
		return s, nil
	}

	switch msg := me.Msg.(type) {
	case didcomm.Ack:
		next := s
		next.state = StateFinished
		next.finished = finishedState{
			Credential: s.credentialSent.Credential,
			Revocation: s.credentialSent.Revocation,
			Status:     status.Success,
		}
		return next, nil
	case didcomm.ProblemReport:
		return s.toFailed(msg.Comment, &msg), nil
	}
	glog.V(1).Infof("issuer %s: unable to process %T in %s", s.sourceID, ev, s.state)
	return s, nil
}

// sendOffer creates an offer via the backend, attaches the credential
// preview built from info.CredentialJSON, and sends it. Used by both
// the Initial and ProposalReceived branches.
func (s SM) sendOffer(ctx context.Context, info data.OfferInfo, comment, threadID string, send SendFunc) (next SM, err error) {
	defer err2.Annotate("issuer send offer", &err)
	assert.P.True(s.backend != nil, "issuer has no anoncreds backend configured")

	offerBlob, offerErr := s.backend.CreateOffer(ctx, info.CredDefID)
	if offerErr != nil {
		return s, ierr.Wrap(ierr.KindBackend, offerErr, "failed to create offer")
	}

	preview, previewErr := data.BuildCredentialPreview(info.CredentialJSON)
	if previewErr != nil {
		return s, previewErr
	}

	if threadID == "" {
		threadID = s.threadID
	}
	offer := didcomm.NewCredentialOffer(threadID, preview, didcomm.NewAttachment([]byte(offerBlob)), comment)

	if send != nil {
		if sendErr := send(offer); sendErr != nil {
			return s, ierr.Wrap(ierr.KindBackend, sendErr, "failed to send credential offer")
		}
	}

	next = s
	next.threadID = threadID
	next.state = StateOfferSent
	next.offerSent = offerSentState{OfferInfo: info, Offer: offer}
	return next, nil
}

// sendCredential issues the credential via the backend and sends it,
// transitioning straight to Finished whether it succeeds or fails —
// never routed through CredentialSent.
func (s SM) sendCredential(ctx context.Context, send SendFunc) (next SM, err error) {
	defer err2.Annotate("issuer send credential", &err)
	assert.P.True(s.backend != nil, "issuer has no anoncreds backend configured")

	info := s.requestReceived.OfferInfo
	offer := s.requestReceived.Offer
	request := s.requestReceived.Request

	preview, previewErr := data.BuildCredentialPreview(info.CredentialJSON)
	if previewErr != nil {
		return s, previewErr
	}
	encodedValues, encodeErr := data.EncodeAttributes(preview)
	if encodeErr != nil {
		return s, encodeErr
	}

	offerAttach, attachErr := offer.OffersAttach.Content()
	if attachErr != nil {
		return s, attachErr
	}
	requestAttach, reqAttachErr := request.RequestsAttach.Content()
	if reqAttachErr != nil {
		return s, reqAttachErr
	}

	credentialBlob, credRevID, issueErr := s.backend.CreateCredential(
		ctx, string(offerAttach), requestAttach, encodedValues, info.RevRegID, info.TailsFile,
	)
	if issueErr != nil {
		report := didcomm.NewProblemReport(s.threadID, issueErr.Error())
		if send != nil {
			_ = send(report)
		}
		next = s
		next.state = StateFinished
		next.finished = finishedState{Status: status.Failed}
		return next, nil
	}

	content := data.CredentialContent{
		CredDefID: info.CredDefID,
		RevRegID:  info.RevRegID,
		TailsFile: info.TailsFile,
		Raw:       credentialBlob,
	}
	raw, marshalErr := data.MarshalCredentialContent(content)
	if marshalErr != nil {
		return s, marshalErr
	}

	credential := didcomm.NewCredential(s.threadID, didcomm.NewAttachment(raw))
	if send != nil {
		if sendErr := send(credential); sendErr != nil {
			return s, ierr.Wrap(ierr.KindBackend, sendErr, "failed to send credential")
		}
	}

	next = s
	next.state = StateFinished
	next.finished = finishedState{
		Credential: credential,
		Revocation: data.RevocationInfo{CredRevID: credRevID, RevRegID: info.RevRegID, TailsFile: info.TailsFile},
		Status:     status.Success,
	}
	return next, nil
}

func (s SM) toFailed(reason string, problem *didcomm.ProblemReport) SM {
	next := s
	next.state = StateFailed
	next.failed = failedState{Problem: problem, Reason: reason}
	return next
}

// GetProposal returns the credential proposal this Issuer is holding,
// valid only in ProposalReceived; later states do not keep the proposal.
func (s SM) GetProposal() (didcomm.CredentialProposal, error) {
	if s.state != StateProposalReceived {
		return didcomm.CredentialProposal{}, ierr.New(ierr.KindInvalidState, "no proposal in state %s", s.state)
	}
	return s.proposalReceived.Proposal, nil
}

// CredentialStatus reports the terminal credential_status code,
// Undefined before the interaction reaches Finished or Failed.
func (s SM) CredentialStatus() status.Status {
	switch s.state {
	case StateFinished:
		return s.finished.Status
	case StateFailed:
		return status.Failed
	default:
		return status.Undefined
	}
}

// GetRevRegID returns the revocation registry id recorded for this
// interaction's credential, empty if not revocable or not yet issued.
func (s SM) GetRevRegID() string {
	switch s.state {
	case StateCredentialSent:
		return s.credentialSent.Revocation.RevRegID
	case StateFinished:
		return s.finished.Revocation.RevRegID
	default:
		return ""
	}
}

// IsRevocable reports whether rev_reg_id is present at the current
// state's data: true in every non-initial state when rev_reg_id is
// present, fails in Initial where no OfferInfo has been supplied yet.
func (s SM) IsRevocable() (bool, error) {
	switch s.state {
	case StateInitial:
		return false, ierr.New(ierr.KindInvalidState, "is_revokable is undefined in state %s", s.state)
	case StateProposalReceived:
		return false, nil
	case StateOfferSent:
		return s.offerSent.OfferInfo.Revocable(), nil
	case StateRequestReceived:
		return s.requestReceived.OfferInfo.Revocable(), nil
	case StateCredentialSent:
		return s.credentialSent.Revocation.RevRegID != "", nil
	case StateFinished:
		return s.finished.Revocation.RevRegID != "", nil
	default:
		return false, nil
	}
}

// Revoke revokes the issued credential, publishing to the ledger when
// publish is true and only marking the local cache otherwise. Legal
// only in Finished with complete RevocationInfo.
func (s SM) Revoke(ctx context.Context, publish bool) (err error) {
	defer err2.Annotate("issuer revoke", &err)
	assert.P.True(s.backend != nil, "issuer has no anoncreds backend configured")

	if s.state != StateFinished {
		return ierr.New(ierr.KindNotReady, "revoke is legal only in Finished, not %s", s.state)
	}
	rev := s.finished.Revocation
	if !rev.Complete() {
		return ierr.New(ierr.KindInvalidRevocationDetails, "incomplete revocation info %+v", rev)
	}

	if publish {
		return s.backend.RevokeCredential(ctx, rev.TailsFile, rev.RevRegID, rev.CredRevID)
	}
	return s.backend.RevokeCredentialLocal(ctx, rev.TailsFile, rev.RevRegID, rev.CredRevID)
}
