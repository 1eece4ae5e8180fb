package web3signer

import (
	"context"
	"net/http"
)

// IWeb3Signer defines the interface for interacting with Web3Signer services.
// This interface abstracts the Web3Signer client implementation to allow for
// easier testing and potential alternative implementations.
type IWeb3Signer interface {
	// SetHttpClient allows setting a custom HTTP client for the Web3Signer client.
	// This is useful for testing or when custom HTTP client configuration is needed.
	SetHttpClient(client *http.Client)

	// EthAccounts returns a list of accounts available for signing.
	// This corresponds to the eth_accounts JSON-RPC method.
	EthAccounts(ctx context.Context) ([]string, error)

	// EthSignTypedData signs typed data with the specified account and returns
	// the hex-encoded signature. This corresponds to the eth_signTypedData
	// JSON-RPC method.
	EthSignTypedData(ctx context.Context, account string, typedData interface{}) (string, error)

	// ListPublicKeys retrieves all available public keys from the Web3Signer service.
	// This is a convenience method that calls EthAccounts.
	ListPublicKeys(ctx context.Context) ([]string, error)
}

// Compile-time check to ensure Client implements IWeb3Signer
var _ IWeb3Signer = (*Client)(nil)
