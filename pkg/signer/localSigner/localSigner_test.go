package localSigner

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// Well-known test key (anvil account 0); never use with real funds.
const (
	testPrivateKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddressHex = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func testTypedData() *apitypes.TypedData {
	return &apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
			},
			"Transfer": []apitypes.Type{
				{Name: "to", Type: "address"},
				{Name: "amount", Type: "uint256"},
			},
		},
		PrimaryType: "Transfer",
		Domain: apitypes.TypedDataDomain{
			Name:    "Test Protocol",
			Version: "1",
			ChainId: math.NewHexOrDecimal256(1),
		},
		Message: apitypes.TypedDataMessage{
			"to":     "0xbBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB",
			"amount": "1000000000000000000",
		},
	}
}

// TestNewLocalSigner verifies address derivation and key validation
func TestNewLocalSigner(t *testing.T) {
	signer, err := NewLocalSigner(testPrivateKey, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(testAddressHex), signer.Address())

	// Bare hex without 0x prefix is accepted too
	signer2, err := NewLocalSigner(testPrivateKey[2:], zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Equal(t, signer.Address(), signer2.Address())
}

// TestNewLocalSigner_Invalid verifies malformed keys are rejected
func TestNewLocalSigner_Invalid(t *testing.T) {
	_, err := NewLocalSigner("", zaptest.NewLogger(t))
	require.Error(t, err)

	_, err = NewLocalSigner("0xzz", zaptest.NewLogger(t))
	require.Error(t, err)
}

// TestSignTypedData_RecoversToSigner verifies the signature recovers to the
// signing address over the typed data digest
func TestSignTypedData_RecoversToSigner(t *testing.T) {
	signer, err := NewLocalSigner(testPrivateKey, zaptest.NewLogger(t))
	require.NoError(t, err)

	td := testTypedData()
	sig, err := signer.SignTypedData(context.Background(), td)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	require.Contains(t, []byte{27, 28}, sig[64])

	digest, _, err := apitypes.TypedDataAndHash(*td)
	require.NoError(t, err)

	recSig := make([]byte, 65)
	copy(recSig, sig)
	recSig[64] -= 27
	pubKey, err := crypto.SigToPub(digest, recSig)
	require.NoError(t, err)
	require.Equal(t, signer.Address(), crypto.PubkeyToAddress(*pubKey))
}

// TestSignTypedData_Deterministic verifies repeated signing of the same
// payload yields identical bytes
func TestSignTypedData_Deterministic(t *testing.T) {
	signer, err := NewLocalSigner(testPrivateKey, zaptest.NewLogger(t))
	require.NoError(t, err)

	sig1, err := signer.SignTypedData(context.Background(), testTypedData())
	require.NoError(t, err)
	sig2, err := signer.SignTypedData(context.Background(), testTypedData())
	require.NoError(t, err)
	require.Equal(t, sig1, sig2)
}

// TestSignTypedData_BadSchema verifies hashing failures propagate
func TestSignTypedData_BadSchema(t *testing.T) {
	signer, err := NewLocalSigner(testPrivateKey, zaptest.NewLogger(t))
	require.NoError(t, err)

	td := testTypedData()
	td.PrimaryType = "Missing"
	_, err = signer.SignTypedData(context.Background(), td)
	require.Error(t, err)
}
