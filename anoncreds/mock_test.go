package anoncreds

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryOfferAndCredentialLifecycle(t *testing.T) {
	b := NewInMemory()
	ctx := context.Background()

	offer, err := b.CreateOffer(ctx, "cred-def-1")
	require.NoError(t, err)
	assert.Contains(t, offer, "cred-def-1")

	cred, credRevID, err := b.CreateCredential(ctx, offer, []byte("{}"), `{"name":["Alice","123"]}`, "rev-reg-1", "tails.bin")
	require.NoError(t, err)
	assert.NotEmpty(t, cred)
	assert.Equal(t, "1", credRevID)

	_, credRevID2, err := b.CreateCredential(ctx, offer, []byte("{}"), `{}`, "", "")
	require.NoError(t, err)
	assert.Empty(t, credRevID2, "non-revocable credentials get no cred_rev_id")

	assert.False(t, b.IsRevoked("rev-reg-1", credRevID))
	require.NoError(t, b.RevokeCredential(ctx, "tails.bin", "rev-reg-1", credRevID))
	assert.True(t, b.IsRevoked("rev-reg-1", credRevID))
}

func TestInMemoryCreateCredentialError(t *testing.T) {
	b := NewInMemory()
	b.CreateCredErr = errors.New("boom")
	_, _, err := b.CreateCredential(context.Background(), "{}", nil, "", "", "")
	require.Error(t, err)
}
