// Package didcomm defines the closed message taxonomy shared by the
// Holder and Issuer state machines and the JSON wire shape each message
// round-trips through. The engine itself
// never opens a socket or frames bytes onto one; it only needs the
// envelope's `@type`/`@id`/`~thread` triad to survive a codec round trip.
package didcomm

import (
	"encoding/json"

	"github.com/lainio/err2"
	"github.com/lainio/err2/assert"

	ierr "github.com/anoncreds-network/issuecredential/errors"
)

// Kind is the closed sum over protocol message variants.
type Kind string

const (
	KindCredentialProposal Kind = "credential-proposal"
	KindCredentialOffer    Kind = "credential-offer"
	KindCredentialRequest  Kind = "credential-request"
	KindCredential         Kind = "credential"
	KindAck                Kind = "ack"
	KindProblemReport      Kind = "problem-report"
)

// Aries RFC 0036 issue-credential 1.0 `@type` URIs. The engine does not
// interpret these beyond round-tripping them; they exist so a real wire
// codec sitting outside this module has something standard to frame.
const (
	TypeCredentialProposal = "https://didcomm.org/issue-credential/1.0/propose-credential"
	TypeCredentialOffer    = "https://didcomm.org/issue-credential/1.0/offer-credential"
	TypeCredentialRequest  = "https://didcomm.org/issue-credential/1.0/request-credential"
	TypeCredential         = "https://didcomm.org/issue-credential/1.0/issue-credential"
	TypeAck                = "https://didcomm.org/notification/1.0/ack"
	TypeProblemReport      = "https://didcomm.org/report-problem/1.0/problem-report"
)

// Message is implemented by every inbound/outbound protocol payload the
// machines exchange. Selector and verifier inspect only Thread(), never
// the payload.
type Message interface {
	Kind() Kind
	MsgID() string
	Thread() Thread
}

// MimeTypePlain is the mime type this protocol gives attribute values,
// which are always encoded as text/plain.
const MimeTypePlain = "text/plain"

// Attachment is a base64-encoded opaque blob, the wire shape of Indy
// anoncreds offer/request/credential payloads.
type Attachment struct {
	ID       string `json:"@id,omitempty"`
	MimeType string `json:"mime-type,omitempty"`
	Base64   string `json:"base64"`
}

// NewAttachment wraps raw bytes as a base64 attachment.
func NewAttachment(data []byte) Attachment {
	return Attachment{
		ID:       NewMessageID(),
		MimeType: "application/json",
		Base64:   base64Encode(data),
	}
}

// Content decodes the attachment back to raw bytes.
func (a Attachment) Content() (data []byte, err error) {
	defer err2.Annotate("attachment content", &err)
	data, decErr := base64Decode(a.Base64)
	if decErr != nil {
		return nil, ierr.Wrap(ierr.KindInvalidJSON, decErr, "attachment is not valid base64")
	}
	return data, nil
}

// CredentialAttributePreview is one name/value pair in a credential
// preview, always rendered with MimeTypePlain.
type CredentialAttributePreview struct {
	Name     string `json:"name"`
	MimeType string `json:"mime-type,omitempty"`
	Value    string `json:"value"`
}

// CredentialPreview is the `~attach`-adjacent preview of the attributes
// a credential offer/proposal carries, built by
// protocol/issuecredential/data from the caller-supplied attribute JSON.
type CredentialPreview struct {
	Type       string                       `json:"@type,omitempty"`
	Attributes []CredentialAttributePreview `json:"attributes"`
}

const previewTypeURI = "https://didcomm.org/issue-credential/1.0/credential-preview"

// NewCredentialPreview returns an empty preview ready for
// AddAttribute calls.
func NewCredentialPreview() CredentialPreview {
	return CredentialPreview{Type: previewTypeURI, Attributes: []CredentialAttributePreview{}}
}

// AddAttribute appends one name/value pair, always as text/plain.
func (p *CredentialPreview) AddAttribute(name, value string) {
	p.Attributes = append(p.Attributes, CredentialAttributePreview{
		Name:     name,
		MimeType: MimeTypePlain,
		Value:    value,
	})
}

// CredentialProposal is the holder->issuer (or renegotiation
// issuer<-holder) proposal message.
type CredentialProposal struct {
	ID                  string             `json:"@id"`
	ThreadRef           Thread             `json:"~thread,omitempty"`
	Comment             string             `json:"comment,omitempty"`
	CredentialProposal  CredentialPreview  `json:"credential_proposal"`
	CredDefID           string             `json:"cred_def_id,omitempty"`
}

func (m CredentialProposal) Kind() Kind    { return KindCredentialProposal }
func (m CredentialProposal) MsgID() string { return m.ID }
func (m CredentialProposal) Thread() Thread {
	if m.ThreadRef.ThID == "" {
		return Thread{ThID: m.ID, PThID: m.ThreadRef.PThID}
	}
	return m.ThreadRef
}

// CredentialOffer is the issuer->holder offer message.
type CredentialOffer struct {
	ID                string            `json:"@id"`
	ThreadRef         Thread            `json:"~thread,omitempty"`
	Comment           string            `json:"comment,omitempty"`
	CredentialPreview CredentialPreview `json:"credential_preview"`
	OffersAttach      Attachment        `json:"offers~attach"`
}

func (m CredentialOffer) Kind() Kind    { return KindCredentialOffer }
func (m CredentialOffer) MsgID() string { return m.ID }
func (m CredentialOffer) Thread() Thread {
	if m.ThreadRef.ThID == "" {
		return Thread{ThID: m.ID, PThID: m.ThreadRef.PThID}
	}
	return m.ThreadRef
}

// CredentialRequest is the holder->issuer request message.
type CredentialRequest struct {
	ID              string     `json:"@id"`
	ThreadRef       Thread     `json:"~thread"`
	RequestsAttach  Attachment `json:"requests~attach"`
}

func (m CredentialRequest) Kind() Kind     { return KindCredentialRequest }
func (m CredentialRequest) MsgID() string  { return m.ID }
func (m CredentialRequest) Thread() Thread { return m.ThreadRef }

// FromThread reports whether this request declares tid as its thread;
// the issuer's selector uses it to correlate requests in OfferSent.
func (m CredentialRequest) FromThread(tid string) bool { return m.ThreadRef.FromThread(tid) }

// Credential is the issuer->holder final credential message.
type Credential struct {
	ID                string     `json:"@id"`
	ThreadRef         Thread     `json:"~thread"`
	CredentialsAttach Attachment `json:"credentials~attach"`
}

func (m Credential) Kind() Kind     { return KindCredential }
func (m Credential) MsgID() string  { return m.ID }
func (m Credential) Thread() Thread { return m.ThreadRef }

// Ack closes the loop after a credential is accepted. It is framed and
// decoded only under the generic `notification/ack` @type (TypeAck); the
// codec does not recognise an issue-credential-specific ack @type.
type Ack struct {
	ID        string `json:"@id"`
	ThreadRef Thread `json:"~thread"`
	Status    string `json:"status,omitempty"`
}

func (m Ack) Kind() Kind     { return KindAck }
func (m Ack) MsgID() string  { return m.ID }
func (m Ack) Thread() Thread { return m.ThreadRef }

// ProblemReport ends an interaction in the Failed state.
type ProblemReport struct {
	ID        string `json:"@id"`
	ThreadRef Thread `json:"~thread"`
	Comment   string `json:"comment,omitempty"`
}

func (m ProblemReport) Kind() Kind     { return KindProblemReport }
func (m ProblemReport) MsgID() string  { return m.ID }
func (m ProblemReport) Thread() Thread { return m.ThreadRef }

// NewCredentialProposal builds a fresh proposal message, minting its own
// @id (and therefore its own thread, chosen on first outbound message
// by the initiator).
func NewCredentialProposal(preview CredentialPreview, credDefID, comment string) CredentialProposal {
	id := NewMessageID()
	return CredentialProposal{
		ID:                 id,
		CredentialProposal: preview,
		CredDefID:          credDefID,
		Comment:            comment,
	}
}

// NewCredentialOffer builds a fresh offer message threaded on threadID.
func NewCredentialOffer(threadID string, preview CredentialPreview, attach Attachment, comment string) CredentialOffer {
	return CredentialOffer{
		ID:                NewMessageID(),
		ThreadRef:         Thread{ThID: threadID},
		Comment:           comment,
		CredentialPreview: preview,
		OffersAttach:      attach,
	}
}

// NewCredentialRequest builds a fresh request message threaded on threadID.
func NewCredentialRequest(threadID string, attach Attachment) CredentialRequest {
	return CredentialRequest{
		ID:             NewMessageID(),
		ThreadRef:      Thread{ThID: threadID},
		RequestsAttach: attach,
	}
}

// NewCredential builds a fresh credential message threaded on threadID.
func NewCredential(threadID string, attach Attachment) Credential {
	return Credential{
		ID:                NewMessageID(),
		ThreadRef:         Thread{ThID: threadID},
		CredentialsAttach: attach,
	}
}

// NewProblemReport builds a fresh problem report threaded on threadID.
func NewProblemReport(threadID, comment string) ProblemReport {
	return ProblemReport{
		ID:        NewMessageID(),
		ThreadRef: Thread{ThID: threadID},
		Comment:   comment,
	}
}

// wireEnvelope is only used to sniff @type before dispatching to a
// concrete struct; it is never the long-term representation of a message.
type wireEnvelope struct {
	Type string `json:"@type"`
}

// Unmarshal decodes a wire-framed message by inspecting its `@type`
// field first. The engine depends on an external message codec but does
// not itself define one in full; here it is given a concrete, minimal
// body so the rest of the module has something real to exercise in
// tests.
func Unmarshal(raw []byte) (msg Message, err error) {
	defer err2.Annotate("didcomm unmarshal", &err)

	var env wireEnvelope
	if jsonErr := json.Unmarshal(raw, &env); jsonErr != nil {
		return nil, ierr.Wrap(ierr.KindInvalidJSON, jsonErr, "malformed message envelope")
	}

	switch env.Type {
	case TypeCredentialProposal:
		var m CredentialProposal
		err2.Check(json.Unmarshal(raw, &m))
		return m, nil
	case TypeCredentialOffer:
		var m CredentialOffer
		err2.Check(json.Unmarshal(raw, &m))
		return m, nil
	case TypeCredentialRequest:
		var m CredentialRequest
		err2.Check(json.Unmarshal(raw, &m))
		return m, nil
	case TypeCredential:
		var m Credential
		err2.Check(json.Unmarshal(raw, &m))
		return m, nil
	case TypeAck:
		var m Ack
		err2.Check(json.Unmarshal(raw, &m))
		return m, nil
	case TypeProblemReport:
		var m ProblemReport
		err2.Check(json.Unmarshal(raw, &m))
		return m, nil
	default:
		return nil, ierr.New(ierr.KindInvalidJSON, "unknown message @type %q", env.Type)
	}
}

// Marshal frames msg back onto the wire with its `@type` populated.
func Marshal(msg Message) (raw []byte, err error) {
	defer err2.Annotate("didcomm marshal", &err)
	assert.P.True(msg != nil, "cannot marshal nil message")

	var typed any
	switch m := msg.(type) {
	case CredentialProposal:
		typed = struct {
			Type string `json:"@type"`
			CredentialProposal
		}{TypeCredentialProposal, m}
	case CredentialOffer:
		typed = struct {
			Type string `json:"@type"`
			CredentialOffer
		}{TypeCredentialOffer, m}
	case CredentialRequest:
		typed = struct {
			Type string `json:"@type"`
			CredentialRequest
		}{TypeCredentialRequest, m}
	case Credential:
		typed = struct {
			Type string `json:"@type"`
			Credential
		}{TypeCredential, m}
	case Ack:
		typed = struct {
			Type string `json:"@type"`
			Ack
		}{TypeAck, m}
	case ProblemReport:
		typed = struct {
			Type string `json:"@type"`
			ProblemReport
		}{TypeProblemReport, m}
	default:
		return nil, ierr.New(ierr.KindInvalidJSON, "unsupported message type %T", msg)
	}

	data, jsonErr := json.Marshal(typed)
	if jsonErr != nil {
		return nil, ierr.Wrap(ierr.KindInvalidJSON, jsonErr, "failed to marshal message")
	}
	return data, nil
}
