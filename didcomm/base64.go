package didcomm

import "encoding/base64"

// base64Encode/base64Decode back Attachment.Base64. encoding/base64 is
// used directly rather than through a library: it is a single stdlib
// call with no decision logic worth abstracting, and nothing in the
// retrieval pack wraps it with anything beyond what the standard library
// already provides.
func base64Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func base64Decode(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
