package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anoncreds-network/issuecredential/didcomm"
	ierr "github.com/anoncreds-network/issuecredential/errors"
)

func TestBuildCredentialPreviewFromObject(t *testing.T) {
	preview, err := BuildCredentialPreview(`{"name":"Alice","age":"25"}`)
	require.NoError(t, err)
	require.Len(t, preview.Attributes, 2)
	for _, a := range preview.Attributes {
		assert.Equal(t, didcomm.MimeTypePlain, a.MimeType)
	}
}

func TestBuildCredentialPreviewFromArray(t *testing.T) {
	preview, err := BuildCredentialPreview(`[{"name":"name","value":"Alice"},{"name":"age","value":"25"}]`)
	require.NoError(t, err)
	require.Len(t, preview.Attributes, 2)
	assert.Equal(t, "name", preview.Attributes[0].Name)
	assert.Equal(t, "Alice", preview.Attributes[0].Value)
}

func TestBuildCredentialPreviewArrayMissingField(t *testing.T) {
	_, err := BuildCredentialPreview(`[{"name":"name"}]`)
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.KindInvalidAttributesStructure))
}

func TestBuildCredentialPreviewSkipsScalar(t *testing.T) {
	preview, err := BuildCredentialPreview(`"just a string"`)
	require.NoError(t, err)
	assert.Empty(t, preview.Attributes)
}

func TestBuildCredentialPreviewInvalidJSON(t *testing.T) {
	_, err := BuildCredentialPreview(`not json`)
	require.Error(t, err)
}

func TestRevocationInfoComplete(t *testing.T) {
	assert.False(t, RevocationInfo{}.Complete())
	assert.False(t, RevocationInfo{CredRevID: "1", RevRegID: "r"}.Complete())
	assert.True(t, RevocationInfo{CredRevID: "1", RevRegID: "r", TailsFile: "t"}.Complete())
}

func TestAttributesToCredentialJSON(t *testing.T) {
	out, err := AttributesToCredentialJSON([]CredentialAttribute{{Name: "name", Value: "Alice"}})
	require.NoError(t, err)
	assert.Contains(t, out, `"name":"name"`)
	assert.Contains(t, out, `"value":"Alice"`)
}
