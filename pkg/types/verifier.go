package types

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// ERC-5267 fields bitmap positions. Bit i is set when the corresponding
// EIP-712 domain field is used by the verifier, read least significant first.
const (
	FieldName byte = 1 << iota
	FieldVersion
	FieldChainId
	FieldVerifyingContract
	FieldSalt
)

// VerifierDomain bundles a verifier contract's own EIP-712 domain with the
// two verifier-specific values returned by eip712Domain(): the fields bitmap
// and the extensions list. Extensions are opaque to this module and are
// carried through to the wrapped envelope unchanged.
type VerifierDomain struct {
	Domain     apitypes.TypedDataDomain `json:"domain"`
	Fields     [1]byte                  `json:"fields"`
	Extensions []*big.Int               `json:"extensions"`
}

func (vd *VerifierDomain) HasName() bool              { return vd.Fields[0]&FieldName != 0 }
func (vd *VerifierDomain) HasVersion() bool           { return vd.Fields[0]&FieldVersion != 0 }
func (vd *VerifierDomain) HasChainId() bool           { return vd.Fields[0]&FieldChainId != 0 }
func (vd *VerifierDomain) HasVerifyingContract() bool { return vd.Fields[0]&FieldVerifyingContract != 0 }
func (vd *VerifierDomain) HasSalt() bool              { return vd.Fields[0]&FieldSalt != 0 }

// VerifierInfo is the caller's choice between supplying the verifier's domain
// parameters up front and asking for an on-chain lookup. Exactly one of the
// two shapes is accepted per request.
type VerifierInfo interface {
	verifierInfo()
}

// ResolvedVerifier is the fast path: the caller already knows the verifier's
// domain, fields bitmap and extensions, so no lookup call is made.
type ResolvedVerifier struct {
	VerifierDomain
}

func (ResolvedVerifier) verifierInfo() {}

// NewResolvedVerifier validates that the fast path is fully populated. A
// partially supplied triple is rejected here rather than silently falling
// through to a lookup.
func NewResolvedVerifier(domain *apitypes.TypedDataDomain, fields [1]byte, extensions []*big.Int) (*ResolvedVerifier, error) {
	if domain == nil {
		return nil, fmt.Errorf("verifier domain is required for the resolved fast path")
	}
	if extensions == nil {
		return nil, fmt.Errorf("extensions are required for the resolved fast path (use an empty slice)")
	}
	return &ResolvedVerifier{VerifierDomain{
		Domain:     *domain,
		Fields:     fields,
		Extensions: extensions,
	}}, nil
}

// LookupVerifier requests an ERC-5267 eip712Domain() lookup against the
// verifier address. Factory and FactoryData are forwarded for accounts that
// are not deployed yet.
type LookupVerifier struct {
	Address     common.Address
	Factory     *common.Address
	FactoryData []byte
}

func (LookupVerifier) verifierInfo() {}

// SignRequest is the input to the top-level wrapping operation: the original
// typed-data quadruple plus the verifier selection.
type SignRequest struct {
	// Account is the signing identity the caller expects to be used. The
	// zero address means "whatever account the configured signer holds".
	Account common.Address

	Domain      apitypes.TypedDataDomain
	Types       apitypes.Types
	PrimaryType string
	Message     apitypes.TypedDataMessage

	Verifier VerifierInfo
}

// TypedData assembles the request's original, unwrapped typed data value.
func (r *SignRequest) TypedData() *apitypes.TypedData {
	return &apitypes.TypedData{
		Types:       r.Types,
		PrimaryType: r.PrimaryType,
		Domain:      r.Domain,
		Message:     r.Message,
	}
}
