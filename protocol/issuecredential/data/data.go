// Package data holds the shared value types and algorithmic glue both
// state machines build on: OfferInfo/RevocationInfo, the credential
// preview assembly, and attribute encoding.
package data

import (
	"encoding/json"

	"github.com/findy-network/findy-common-go/dto"
	"github.com/lainio/err2"

	ierr "github.com/anoncreds-network/issuecredential/errors"
	"github.com/anoncreds-network/issuecredential/didcomm"
)

// CredentialAttribute is one raw attribute as supplied by a caller,
// either via OfferInfo.CredentialJSON or CredentialProposalData.
type CredentialAttribute struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	MimeType string `json:"mime-type,omitempty"`
}

// OfferInfo is the Issuer's input to the OfferSend command.
type OfferInfo struct {
	CredDefID      string
	CredentialJSON string // attribute map or array of {name,value}
	RevRegID       string // empty when the credential is not revocable
	TailsFile      string
}

// Revocable reports whether this offer produces a revocable credential.
func (o OfferInfo) Revocable() bool { return o.RevRegID != "" }

// CredentialProposalData is the Holder's input to the ProposalSend
// command.
type CredentialProposalData struct {
	CredDefID string
	Attrs     []CredentialAttribute
	Comment   string
}

// RevocationInfo is attached to the Issuer's Finished state when the
// issued credential is revocable. All three fields must be present to
// revoke.
type RevocationInfo struct {
	CredRevID string
	RevRegID  string
	TailsFile string
}

// Complete reports whether every field needed to revoke is present.
func (r RevocationInfo) Complete() bool {
	return r.CredRevID != "" && r.RevRegID != "" && r.TailsFile != ""
}

// BuildCredentialPreview parses the attribute JSON an Issuer was handed
// at OfferSend time into a wire CredentialPreview: a JSON array of
// {name,value} entries adds each pair; a JSON object adds each
// key/value; anything else is skipped. Attribute mime type is always
// text/plain.
func BuildCredentialPreview(credentialJSON string) (preview didcomm.CredentialPreview, err error) {
	defer err2.Annotate("build credential preview", &err)

	preview = didcomm.NewCredentialPreview()

	var generic any
	dto.FromJSONStr(credentialJSON, &generic)

	switch v := generic.(type) {
	case []any:
		for _, item := range v {
			entry, ok := item.(map[string]any)
			if !ok {
				return preview, ierr.New(ierr.KindInvalidAttributesStructure, "array entry is not an object: %v", item)
			}
			name, hasName := entry["name"]
			value, hasValue := entry["value"]
			if !hasName || !hasValue {
				return preview, ierr.New(ierr.KindInvalidAttributesStructure, "entry missing name/value: %v", entry)
			}
			preview.AddAttribute(stringify(name), stringify(value))
		}
	case map[string]any:
		for name, value := range v {
			preview.AddAttribute(name, stringify(value))
		}
	default:
		// Neither an array nor an object: skipped, so the preview is
		// returned with no attributes.
	}

	return preview, nil
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	default:
		raw, _ := json.Marshal(s)
		return string(raw)
	}
}

// AttributesToCredentialJSON renders a CredentialProposalData's
// attributes back to the array-of-{name,value} JSON shape used as
// OfferInfo.CredentialJSON / the wire attachment.
func AttributesToCredentialJSON(attrs []CredentialAttribute) (raw string, err error) {
	defer err2.Annotate("attributes to credential json", &err)
	return dto.ToJSON(attrs), nil
}
