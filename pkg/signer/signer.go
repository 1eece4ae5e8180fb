package signer

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// ErrNoSigner indicates that no signing account could be resolved for a
// request. It is returned before any external call is attempted.
var ErrNoSigner = errors.New("no signing account available")

// ITypedDataSigner is the key-signing capability the wrapping pipeline
// delegates to. Implementations hash the typed data under its own domain and
// produce a raw signature; the pipeline treats the output as opaque bytes of
// whatever length the account's signing scheme yields.
type ITypedDataSigner interface {
	// Address returns the signing account's address.
	Address() common.Address

	// SignTypedData signs the given typed data value.
	SignTypedData(ctx context.Context, typedData *apitypes.TypedData) ([]byte, error)
}
