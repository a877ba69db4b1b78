package data

import (
	"encoding/json"

	"github.com/lainio/err2"

	ierr "github.com/anoncreds-network/issuecredential/errors"
)

// CredentialContent is the envelope the Issuer wraps around an
// AnoncredsBackend's opaque credential blob before attaching it to the
// outgoing Credential message, and the shape the Holder parses back out
// of credentials~attach once the credential arrives. RevRegID and
// TailsFile are carried here — not re-derived from the backend, which
// exposes no "describe this credential" operation, only
// create/issue/store/delete/revoke — because the Issuer already knows
// them from the OfferInfo it issued against.
type CredentialContent struct {
	CredDefID string          `json:"cred_def_id"`
	RevRegID  string          `json:"rev_reg_id,omitempty"`
	TailsFile string          `json:"tails_file,omitempty"`
	Values    json.RawMessage `json:"values,omitempty"`
	Raw       string          `json:"raw"` // the backend's opaque credential blob, verbatim
}

// Revocable reports whether this credential carries enough information
// to later be revoked: revocation info exists on an Issuer's finished
// state iff the credential was revocable.
func (c CredentialContent) Revocable() bool {
	return c.RevRegID != "" && c.TailsFile != ""
}

// MarshalCredentialContent renders a CredentialContent to bytes suitable
// for NewAttachment.
func MarshalCredentialContent(c CredentialContent) (raw []byte, err error) {
	defer err2.Annotate("marshal credential content", &err)
	raw, jsonErr := json.Marshal(c)
	if jsonErr != nil {
		return nil, ierr.Wrap(ierr.KindInvalidJSON, jsonErr, "failed to marshal credential content")
	}
	return raw, nil
}

// ParseCredentialContent is MarshalCredentialContent's inverse, used by
// the Holder once a Credential message's attachment is decoded.
func ParseCredentialContent(raw []byte) (c CredentialContent, err error) {
	defer err2.Annotate("parse credential content", &err)
	if jsonErr := json.Unmarshal(raw, &c); jsonErr != nil {
		return CredentialContent{}, ierr.Wrap(ierr.KindInvalidJSON, jsonErr, "malformed credential content")
	}
	return c, nil
}
