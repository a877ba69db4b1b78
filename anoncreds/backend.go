// Package anoncreds defines the narrow interface the issue credential
// state machines use to reach the anonymous-credential cryptographic
// primitives, and an in-memory reference implementation for tests. The
// cryptographic primitives themselves (offer generation,
// credential issuance, revocation) are out of scope here, consumed
// instead through this narrow interface. The real indy/anoncreds
// library a production agent would link
// (github.com/findy-network/findy-wrapper-go/anoncreds) is not
// vendored here; this package is the seam for it.
package anoncreds

import "context"

// Backend is the AnoncredsBackend contract, with one addition beyond
// the commonly-cited six operations: CreateCredentialRequest. The
// Holder's RequestSend transition must build a CredentialRequest via
// the anoncreds backend, but no prior operation here actually produces
// one. Resolved (see DESIGN.md) by adding the operation real
// Indy/AnonCreds APIs already expose for this purpose
// (indy_prover_create_credential_req), so RequestSend has something
// concrete to call.
type Backend interface {
	// CreateOffer produces an opaque offer blob for credDefID.
	CreateOffer(ctx context.Context, credDefID string) (offerBlob string, err error)

	// CreateCredentialRequest builds a holder's request against a
	// received offer, returning the request blob to attach to the wire
	// CredentialRequest message and an opaque requestMetadata blob the
	// holder must hold onto until StoreCredential.
	CreateCredentialRequest(
		ctx context.Context,
		offerBlob, myPwDID string,
	) (requestBlob, requestMetadata string, err error)

	// CreateCredential issues a credential for a holder's request
	// against a previously created offer. encodedValues is the
	// raw+encoded attribute set built by
	// protocol/issuecredential/data.EncodeAttributes. revRegID and
	// tailsFile are empty when the credential is not revocable.
	CreateCredential(
		ctx context.Context,
		offerBlob string,
		requestAttachment []byte,
		encodedValues string,
		revRegID, tailsFile string,
	) (credentialBlob string, credRevID string, err error)

	// StoreCredential persists an issued credential into the holder's
	// wallet and returns a wallet-local credential id.
	StoreCredential(
		ctx context.Context,
		requestMetadata, credentialBlob, credDefBlob, revRegDef string,
	) (credentialID string, err error)

	// DeleteCredential removes a previously stored credential.
	DeleteCredential(ctx context.Context, credentialID string) error

	// RevokeCredential publishes a revocation to the ledger.
	RevokeCredential(ctx context.Context, tailsFile, revRegID, credRevID string) error

	// RevokeCredentialLocal marks a credential revoked in the local
	// revocation registry cache without publishing.
	RevokeCredentialLocal(ctx context.Context, tailsFile, revRegID, credRevID string) error
}
