package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialContentRoundTrip(t *testing.T) {
	c := CredentialContent{
		CredDefID: "cd1",
		RevRegID:  "rr1",
		TailsFile: "tails.bin",
		Raw:       `{"cred_def_id":"cd1","values":{}}`,
	}
	raw, err := MarshalCredentialContent(c)
	require.NoError(t, err)

	parsed, err := ParseCredentialContent(raw)
	require.NoError(t, err)
	assert.Equal(t, c, parsed)
	assert.True(t, parsed.Revocable())
}

func TestCredentialContentNotRevocableWithoutTails(t *testing.T) {
	c := CredentialContent{CredDefID: "cd1", RevRegID: "rr1"}
	assert.False(t, c.Revocable())
}

func TestParseCredentialContentInvalidJSON(t *testing.T) {
	_, err := ParseCredentialContent([]byte("not json"))
	require.Error(t, err)
}
