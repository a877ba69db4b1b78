package data

import (
	"crypto/sha256"
	"encoding/json"
	"math/big"
	"strconv"

	"github.com/lainio/err2"

	ierr "github.com/anoncreds-network/issuecredential/errors"
	"github.com/anoncreds-network/issuecredential/didcomm"
)

// EncodeAttributeValue is the canonical attribute encoding: a value
// that is the canonical decimal string of a 32-bit integer is kept
// as-is; every other value becomes the decimal representation of the
// unsigned big-endian integer held in its SHA-256 digest. This is
// deterministic, and collision-free for values outside the int32
// domain because SHA-256 is used rather than a narrower hash.
func EncodeAttributeValue(v string) string {
	if _, ok := canonicalInt32(v); ok {
		return v
	}
	digest := sha256.Sum256([]byte(v))
	return new(big.Int).SetBytes(digest[:]).String()
}

// canonicalInt32 reports whether v is exactly the decimal string a
// 32-bit integer would format to (rejecting "+5", "007", leading/trailing
// space, etc. — anything that wouldn't round-trip through
// strconv.FormatInt is not "a stringified 32-bit integer").
func canonicalInt32(v string) (int32, bool) {
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return 0, false
	}
	if strconv.FormatInt(n, 10) != v {
		return 0, false
	}
	return int32(n), true
}

// EncodedAttribute carries both the raw and encoded form of one
// attribute value; both forms are included in the issued-credential
// request structure.
type EncodedAttribute struct {
	Raw     string `json:"raw"`
	Encoded string `json:"encoded"`
}

// EncodeAttributes renders a credential preview's attributes into the
// {name: {raw, encoded}} JSON structure an AnoncredsBackend.CreateCredential
// call expects as its encodedValues argument.
func EncodeAttributes(preview didcomm.CredentialPreview) (encoded string, err error) {
	defer err2.Annotate("encode attributes", &err)

	out := make(map[string]EncodedAttribute, len(preview.Attributes))
	for _, attr := range preview.Attributes {
		out[attr.Name] = EncodedAttribute{
			Raw:     attr.Value,
			Encoded: EncodeAttributeValue(attr.Value),
		}
	}

	raw, jsonErr := json.Marshal(out)
	if jsonErr != nil {
		return "", ierr.Wrap(ierr.KindInvalidJSON, jsonErr, "failed to marshal encoded attributes")
	}
	return string(raw), nil
}
