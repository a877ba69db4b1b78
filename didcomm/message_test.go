package didcomm

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadPredicates(t *testing.T) {
	th := Thread{ThID: "t1"}
	assert.True(t, th.FromThread("t1"))
	assert.False(t, th.FromThread("t2"))
	assert.False(t, th.IsReply("t1"))

	reply := Thread{PThID: "t1"}
	assert.True(t, reply.IsReply("t1"))
	assert.False(t, reply.FromThread("t1"))
}

func TestAttachmentRoundTrip(t *testing.T) {
	att := NewAttachment([]byte(`{"schema_id":"abc"}`))
	content, err := att.Content()
	require.NoError(t, err)
	assert.JSONEq(t, `{"schema_id":"abc"}`, string(content))
}

func TestCredentialPreviewAddAttribute(t *testing.T) {
	p := NewCredentialPreview()
	p.AddAttribute("name", "Alice")
	p.AddAttribute("age", "25")
	require.Len(t, p.Attributes, 2)
	assert.Equal(t, MimeTypePlain, p.Attributes[0].MimeType)
	assert.Equal(t, "Alice", p.Attributes[0].Value)
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	preview := NewCredentialPreview()
	preview.AddAttribute("name", "Alice")
	offer := NewCredentialOffer("thread-1", preview, NewAttachment([]byte(`{}`)), "hi")

	raw, err := Marshal(offer)
	require.NoError(t, err)

	decoded, err := Unmarshal(raw)
	require.NoError(t, err)

	got, ok := decoded.(CredentialOffer)
	require.True(t, ok)
	if diff := deep.Equal(offer, got); diff != nil {
		t.Fatalf("round trip mismatch: %v", diff)
	}
	assert.Equal(t, KindCredentialOffer, got.Kind())
	assert.True(t, got.Thread().FromThread("thread-1"))
}

func TestUnmarshalUnknownType(t *testing.T) {
	_, err := Unmarshal([]byte(`{"@type":"bogus"}`))
	require.Error(t, err)
}

func TestCredentialProposalAdoptsOwnIDAsThread(t *testing.T) {
	preview := NewCredentialPreview()
	p := NewCredentialProposal(preview, "cd1", "")
	assert.True(t, p.Thread().FromThread(p.ID))
}
