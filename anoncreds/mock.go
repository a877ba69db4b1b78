package anoncreds

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// InMemory is a reference Backend implementation with no real
// cryptography: offers and credentials are opaque JSON blobs tracking
// just enough bookkeeping (schema id, revocation registry, next
// cred-rev-id) for the state machines and their tests to exercise every
// transition end to end. It is safe for concurrent use by a single
// interaction at a time.
type InMemory struct {
	mu            sync.Mutex
	nextRevID     int
	revoked       map[string]bool
	RevokeErr     error // when set, RevokeCredential/-Local fail with this
	CreateCredErr error // when set, CreateCredential fails with this
}

// NewInMemory returns a ready-to-use in-memory backend.
func NewInMemory() *InMemory {
	return &InMemory{revoked: map[string]bool{}}
}

type offerBlob struct {
	SchemaID  string `json:"schema_id"`
	CredDefID string `json:"cred_def_id"`
	Nonce     string `json:"nonce"`
}

// credentialBlob is the cryptographic payload this reference backend
// hands back from CreateCredential. Revocation metadata (rev_reg_id,
// tails_file) is NOT part of it: the Issuer state machine tracks those
// itself and wraps them around this opaque blob when the wire
// Credential message is assembled, rather than re-deriving them from
// the backend.
type credentialBlob struct {
	CredDefID string          `json:"cred_def_id"`
	Values    json.RawMessage `json:"values"`
}

func (b *InMemory) CreateOffer(_ context.Context, credDefID string) (string, error) {
	blob := offerBlob{
		SchemaID:  fmt.Sprintf("schema:%s", credDefID),
		CredDefID: credDefID,
		Nonce:     uuid.New().String(),
	}
	raw, err := json.Marshal(blob)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

type requestBlob struct {
	CredDefID string `json:"cred_def_id"`
	ProverDID string `json:"prover_did"`
	Nonce     string `json:"nonce"`
}

func (b *InMemory) CreateCredentialRequest(_ context.Context, offer, myPwDID string) (string, string, error) {
	var parsedOffer offerBlob
	if err := json.Unmarshal([]byte(offer), &parsedOffer); err != nil {
		return "", "", err
	}

	req := requestBlob{
		CredDefID: parsedOffer.CredDefID,
		ProverDID: myPwDID,
		Nonce:     parsedOffer.Nonce,
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return "", "", err
	}

	metadata := fmt.Sprintf(`{"prover_did":%q}`, myPwDID)
	return string(raw), metadata, nil
}

func (b *InMemory) CreateCredential(
	_ context.Context,
	offer string,
	requestAttachment []byte,
	encodedValues string,
	revRegID, tailsFile string,
) (string, string, error) {
	if b.CreateCredErr != nil {
		return "", "", b.CreateCredErr
	}

	var parsedOffer offerBlob
	if err := json.Unmarshal([]byte(offer), &parsedOffer); err != nil {
		return "", "", err
	}

	blob := credentialBlob{
		CredDefID: parsedOffer.CredDefID,
		Values:    json.RawMessage(encodedValues),
	}
	raw, err := json.Marshal(blob)
	if err != nil {
		return "", "", err
	}

	var credRevID string
	if revRegID != "" && tailsFile != "" {
		b.mu.Lock()
		b.nextRevID++
		credRevID = fmt.Sprintf("%d", b.nextRevID)
		b.mu.Unlock()
	}

	return string(raw), credRevID, nil
}

func (b *InMemory) StoreCredential(_ context.Context, _, credentialBlob, _, _ string) (string, error) {
	return uuid.New().String(), nil
}

func (b *InMemory) DeleteCredential(_ context.Context, _ string) error {
	return nil
}

func (b *InMemory) RevokeCredential(_ context.Context, tailsFile, revRegID, credRevID string) error {
	if b.RevokeErr != nil {
		return b.RevokeErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[revRegID+"/"+credRevID] = true
	return nil
}

func (b *InMemory) RevokeCredentialLocal(ctx context.Context, tailsFile, revRegID, credRevID string) error {
	return b.RevokeCredential(ctx, tailsFile, revRegID, credRevID)
}

// IsRevoked reports whether (revRegID, credRevID) was revoked, for test
// assertions.
func (b *InMemory) IsRevoked(revRegID, credRevID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.revoked[revRegID+"/"+credRevID]
}
