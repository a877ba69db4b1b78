// Package holder implements the Holder state machine of the issue
// credential protocol: six states, transitions driven by the combined
// inbound-message-or-command event, thread-id verified before every
// move.
package holder

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

// SendFunc is the injected outbound-message callback. It is called at
// most once per transition, before the machine commits to the
// post-transition state.
type SendFunc func(didcomm.Message) error

// SM is one Holder interaction. It is a value type: copying it copies
// the whole interaction. Its fields are unexported and it defines no
// marshalling methods, so encoding/json does not capture its state. The
// zero value is not valid; build one with New or FromOffer.
type SM struct {
	sourceID string
	threadID string
	state    State

	initial       initialState
	proposalSent  proposalSentState
	offerReceived offerReceivedState
	requestSent   requestSentState
	finished      finishedState
	failed        failedState

	backend anoncreds.Backend
}

// New creates a fresh Holder in Initial with a new thread id.
func New(sourceID string, backend anoncreds.Backend) SM {
	return SM{
		sourceID: sourceID,
		threadID: didcomm.NewThreadID(),
		state:    StateInitial,
		backend:  backend,
	}
}

// FromOffer creates a Holder already in OfferReceived, adopting the
// offer's thread id.
func FromOffer(sourceID string, offer didcomm.CredentialOffer, backend anoncreds.Backend) SM {
	return SM{
		sourceID:      sourceID,
		threadID:      offer.Thread().ThID,
		state:         StateOfferReceived,
		offerReceived: offerReceivedState{Offer: offer},
		backend:       backend,
	}
}

func (h SM) SourceID() string { return h.sourceID }
func (h SM) ThreadID() string { return h.threadID }
func (h SM) State() State     { return h.state }
func (h SM) IsTerminal() bool { return h.state.IsTerminal() }

// Handle is the single mutation entrypoint. On success it mutates the
// receiver in place; on failure the receiver is left exactly as it was:
// a failed transition observably leaves the interaction in its prior
// state.
func (h *SM) Handle(ctx context.Context, ev Event, send SendFunc) (err error) {
	defer err2.Annotate("holder handle", &err)

	next, handleErr := h.transition(ctx, ev, send)
	if handleErr != nil {
		return handleErr
	}
	*h = next
	return nil
}

// transition computes the next state without mutating h: Go encodes
// the "consume self, produce new self" contract as a value-receiver
// pure function instead of an owning move.
func (h SM) transition(ctx context.Context, ev Event, send SendFunc) (SM, error) {
	if h.IsTerminal() {
		glog.V(1).Infof("holder %s: event %T dropped, terminal state %s", h.sourceID, ev, h.state)
		return h, nil
	}

	msg, isMsg := eventMessage(ev)
	bypass := !isMsg || h.isAdoptingOffer(msg)
	if err := thread.Verify(h.threadID, msg, bypass); err != nil {
		return h, err
	}

	switch h.state {
	case StateInitial:
		return h.handleInitial(ev, send)
	case StateProposalSent:
		return h.handleProposalSent(ev, send)
	case StateOfferReceived:
		return h.handleOfferReceived(ctx, ev, send)
	case StateRequestSent:
		return h.handleRequestSent(ev, send)
	default:
		glog.Warningf("holder %s: unreachable state %s", h.sourceID, h.state)
		return h, nil
	}
}

func eventMessage(ev Event) (didcomm.Message, bool) {
	if me, ok := ev.(MessageEvent); ok {
		return me.Msg, true
	}
	return nil, false
}

// isAdoptingOffer is true exactly for the one message that establishes a
// fresh thread id for an as-yet-threadless Holder: a CredentialOffer
// arriving in Initial. Initial-adoption messages like this one bypass
// the thread check.
func (h SM) isAdoptingOffer(msg didcomm.Message) bool {
	if h.state != StateInitial || msg == nil {
		return false
	}
	_, ok := msg.(didcomm.CredentialOffer)
	return ok
}

func (h SM) handleInitial(ev Event, send SendFunc) (SM, error) {
	switch e := ev.(type) {
	case ProposalSend:
		return h.sendProposal(e.Proposal, send)
	case MessageEvent:
		if offer, ok := e.Msg.(didcomm.CredentialOffer); ok {
			next := h
			next.threadID = offer.Thread().ThID
			next.state = StateOfferReceived
			next.offerReceived = offerReceivedState{Offer: offer}
			return next, nil
		}
	}
	glog.V(1).Infof("holder %s: unable to process %T in %s", h.sourceID, ev, h.state)
	return h, nil
}

func (h SM) handleProposalSent(ev Event, send SendFunc) (SM, error) {
	if me, ok := ev.(MessageEvent); ok {
		if offer, ok := me.Msg.(didcomm.CredentialOffer); ok {
			next := h
			next.state = StateOfferReceived
			next.offerReceived = offerReceivedState{Offer: offer}
			return next, nil
		}
		if pr, ok := me.Msg.(didcomm.ProblemReport); ok {
			return h.toFailed(pr.Comment, &pr), nil
		}
	}
	glog.V(1).Infof("holder %s: unable to process %T in %s", h.sourceID, ev, h.state)
	return h, nil
}

func (h SM) handleOfferReceived(ctx context.Context, ev Event, send SendFunc) (SM, error) {
	switch e := ev.(type) {
	case ProposalSend:
		return h.sendProposal(e.Proposal, send)
	case RequestSend:
		return h.sendRequest(ctx, e.MyPwDID, send)
	case OfferReject:
		comment := ""
		if e.Comment != nil {
			comment = *e.Comment
		}
		report := didcomm.NewProblemReport(h.threadID, comment)
		if send != nil {
			if err := send(report); err != nil {
				return h, ierr.Wrap(ierr.KindBackend, err, "failed to send problem report")
			}
		}
		return h.toFailed(comment, &report), nil
	}
	glog.V(1).Infof("holder %s: unable to process %T in %s", h.sourceID, ev, h.state)
	return h, nil
}

func (h SM) handleRequestSent(ev Event, send SendFunc) (SM, error) {
	me, ok := ev.(MessageEvent)
	if !ok {
		glog.V(1).Infof("holder %s: unable to process %T in %s", h.sourceID, ev, h.state)
		return h, nil
	}

	switch msg := me.Msg.(type) {
	case didcomm.Credential:
		return h.storeCredential(msg)
	case didcomm.ProblemReport:
		return h.toFailed(msg.Comment, &msg), nil
	}
	glog.V(1).Infof("holder %s: unable to process %T in %s", h.sourceID, ev, h.state)
	return h, nil
}

func (h SM) sendProposal(p data.CredentialProposalData, send SendFunc) (next SM, err error) {
	defer err2.Annotate("holder send proposal", &err)

	attrsJSON, jsonErr := data.AttributesToCredentialJSON(p.Attrs)
	if jsonErr != nil {
		return h, jsonErr
	}
	preview, previewErr := data.BuildCredentialPreview(attrsJSON)
	if previewErr != nil {
		return h, previewErr
	}

	proposal := didcomm.NewCredentialProposal(preview, p.CredDefID, p.Comment)
	threadID := h.threadID
	if threadID == "" {
		threadID = proposal.ID
	}
	proposal.ThreadRef = didcomm.Thread{ThID: threadID}

	if send != nil {
		if sendErr := send(proposal); sendErr != nil {
			return h, ierr.Wrap(ierr.KindBackend, sendErr, "failed to send credential proposal")
		}
	}

	next = h
	next.threadID = threadID
	next.state = StateProposalSent
	next.proposalSent = proposalSentState{Proposal: p}
	return next, nil
}

func (h SM) sendRequest(ctx context.Context, myPwDID string, send SendFunc) (next SM, err error) {
	defer err2.Annotate("holder send request", &err)
	assert.P.True(h.backend != nil, "holder has no anoncreds backend configured")

	offerAttach, attachErr := h.offerReceived.Offer.OffersAttach.Content()
	if attachErr != nil {
		return h, attachErr
	}

	requestAttachment, requestMetadata, reqErr := h.backend.CreateCredentialRequest(ctx, string(offerAttach), myPwDID)
	if reqErr != nil {
		return h, ierr.Wrap(ierr.KindBackend, reqErr, "failed to build credential request")
	}

	request := didcomm.NewCredentialRequest(h.threadID, didcomm.NewAttachment([]byte(requestAttachment)))
	if send != nil {
		if sendErr := send(request); sendErr != nil {
			return h, ierr.Wrap(ierr.KindBackend, sendErr, "failed to send credential request")
		}
	}

	next = h
	next.state = StateRequestSent
	next.requestSent = requestSentState{
		Offer:           h.offerReceived.Offer,
		Request:         request,
		RequestMetadata: requestMetadata,
	}
	return next, nil
}

func (h SM) storeCredential(msg didcomm.Credential) (next SM, err error) {
	defer err2.Annotate("holder store credential", &err)

	raw, attachErr := msg.CredentialsAttach.Content()
	if attachErr != nil {
		return h, attachErr
	}
	content, parseErr := data.ParseCredentialContent(raw)
	if parseErr != nil {
		return h, parseErr
	}

	assert.P.True(h.backend != nil, "holder has no anoncreds backend configured")
	credentialID, storeErr := h.backend.StoreCredential(context.Background(), h.requestSent.RequestMetadata, content.Raw, "", "")
	if storeErr != nil {
		return h, ierr.Wrap(ierr.KindBackend, storeErr, "failed to store credential")
	}

	next = h
	next.state = StateFinished
	next.finished = finishedState{
		Offer:        h.requestSent.Offer,
		Credential:   msg,
		Content:      content,
		CredentialID: credentialID,
		Status:       status.Success,
	}
	return next, nil
}

// GetOffer returns the credential offer this Holder is holding, valid
// from OfferReceived onward.
func (h SM) GetOffer() (didcomm.CredentialOffer, error) {
	switch h.state {
	case StateOfferReceived:
		return h.offerReceived.Offer, nil
	case StateRequestSent:
		return h.requestSent.Offer, nil
	case StateFinished:
		return h.finished.Offer, nil
	default:
		return didcomm.CredentialOffer{}, ierr.New(ierr.KindInvalidState, "no offer in state %s", h.state)
	}
}

// GetCredential returns the issued credential message, valid in
// Finished.
func (h SM) GetCredential() (didcomm.Credential, error) {
	if h.state != StateFinished {
		return didcomm.Credential{}, ierr.New(ierr.KindInvalidState, "no credential in state %s", h.state)
	}
	return h.finished.Credential, nil
}

// GetAttributes extracts the attribute preview of the stored
// credential, read from the offer this credential was issued against
// since that is where the preview lives end to end.
func (h SM) GetAttributes() ([]didcomm.CredentialAttributePreview, error) {
	offer, err := h.GetOffer()
	if err != nil {
		return nil, err
	}
	return offer.CredentialPreview.Attributes, nil
}

// GetAttachment returns the raw decoded bytes of the offer's
// anoncreds attachment.
func (h SM) GetAttachment() ([]byte, error) {
	offer, err := h.GetOffer()
	if err != nil {
		return nil, err
	}
	return offer.OffersAttach.Content()
}

// GetTailsLocation returns the tails file location recorded against the
// finished credential, valid in Finished.
func (h SM) GetTailsLocation() (string, error) {
	if h.state != StateFinished {
		return "", ierr.New(ierr.KindInvalidState, "no credential in state %s", h.state)
	}
	return h.finished.Content.TailsFile, nil
}

// GetTailsHash is a placeholder for the tails file hash. The
// AnoncredsBackend exposes no way to compute or retrieve one; the
// Content envelope does not carry it either, so this reports
// KindNotReady rather than fabricate a digest.
func (h SM) GetTailsHash() (string, error) {
	if h.state != StateFinished {
		return "", ierr.New(ierr.KindInvalidState, "no credential in state %s", h.state)
	}
	return "", ierr.New(ierr.KindNotReady, "tails hash is not tracked by this backend")
}

// GetRevRegID returns the revocation registry id of the finished
// credential, empty if it is not revocable.
func (h SM) GetRevRegID() (string, error) {
	if h.state != StateFinished {
		return "", ierr.New(ierr.KindInvalidState, "no credential in state %s", h.state)
	}
	return h.finished.Content.RevRegID, nil
}

// IsRevocable reports whether the finished credential can be revoked.
func (h SM) IsRevocable() (bool, error) {
	if h.state != StateFinished {
		return false, ierr.New(ierr.KindInvalidState, "no credential in state %s", h.state)
	}
	return h.finished.Content.Revocable(), nil
}

// CredentialStatus reports the terminal credential_status code,
// Undefined before the interaction reaches a terminal state.
func (h SM) CredentialStatus() status.Status {
	switch h.state {
	case StateFinished:
		return h.finished.Status
	case StateFailed:
		return status.Failed
	default:
		return status.Undefined
	}
}

// DeleteCredential removes the stored credential from the anoncreds
// backend's wallet. Valid only in Finished; it does not change the
// interaction's state.
func (h SM) DeleteCredential(ctx context.Context) error {
	if h.state != StateFinished {
		return ierr.New(ierr.KindInvalidState, "no credential in state %s", h.state)
	}
	assert.P.True(h.backend != nil, "holder has no anoncreds backend configured")
	return h.backend.DeleteCredential(ctx, h.finished.CredentialID)
}

func (h SM) toFailed(reason string, problem *didcomm.ProblemReport) SM {
	next := h
	next.state = StateFailed
	next.failed = failedState{Problem: problem, Reason: reason}
	return next
}
