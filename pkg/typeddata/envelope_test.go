package typeddata

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/require"

	"github.com/erc7739/signer-go/pkg/types"
)

func accountVerifierDomain() *types.VerifierDomain {
	return &types.VerifierDomain{
		Domain: apitypes.TypedDataDomain{
			Name:              "Mock Account",
			Version:           "1",
			ChainId:           math.NewHexOrDecimal256(1),
			VerifyingContract: "0x2222222222222222222222222222222222222222",
			Salt:              "0x0000000000000000000000000000000000000000000000000000000000000000",
		},
		Fields:     [1]byte{0x0f},
		Extensions: []*big.Int{},
	}
}

// TestWrapForVerifier_Schema verifies the extended schema shape
func TestWrapForVerifier_Schema(t *testing.T) {
	wrapped, err := WrapForVerifier(etherMailTypedData(), accountVerifierDomain())
	require.NoError(t, err)

	require.Equal(t, TypedDataSignType, wrapped.PrimaryType)

	// Original types carried over untouched
	require.Equal(t, etherMailTypes()["Mail"], wrapped.Types["Mail"])
	require.Equal(t, etherMailTypes()["Person"], wrapped.Types["Person"])

	// The envelope field list is fixed, with contents bound to the
	// caller's primary type
	require.Equal(t, []apitypes.Type{
		{Name: "contents", Type: "Mail"},
		{Name: "fields", Type: "bytes1"},
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
		{Name: "salt", Type: "bytes32"},
		{Name: "extensions", Type: "uint256[]"},
	}, wrapped.Types[TypedDataSignType])

	// The signing domain's own type is declared for the hashing primitive
	require.Equal(t, DomainFieldList(&etherMailTypedData().Domain), wrapped.Types[DomainTypeName])
}

// TestWrapForVerifier_Message verifies the structural merge
func TestWrapForVerifier_Message(t *testing.T) {
	vd := accountVerifierDomain()
	vd.Extensions = []*big.Int{big.NewInt(7739)}

	wrapped, err := WrapForVerifier(etherMailTypedData(), vd)
	require.NoError(t, err)

	require.Equal(t, map[string]interface{}(etherMailMessage()), wrapped.Message["contents"])
	require.Equal(t, hexutil.Bytes{0x0f}, wrapped.Message["fields"])
	require.Equal(t, []interface{}{big.NewInt(7739)}, wrapped.Message["extensions"])
	require.Equal(t, "Mock Account", wrapped.Message["name"])
	require.Equal(t, "1", wrapped.Message["version"])
	require.Equal(t, vd.Domain.ChainId, wrapped.Message["chainId"])
	require.Equal(t, vd.Domain.VerifyingContract, wrapped.Message["verifyingContract"])
	require.Equal(t, vd.Domain.Salt, wrapped.Message["salt"])
}

// TestWrapForVerifier_KeepsSigningDomain verifies the caller's domain is the
// one the envelope is signed under
func TestWrapForVerifier_KeepsSigningDomain(t *testing.T) {
	wrapped, err := WrapForVerifier(etherMailTypedData(), accountVerifierDomain())
	require.NoError(t, err)
	require.Equal(t, etherMailDomain(), wrapped.Domain)
}

// TestWrapForVerifier_Hashable verifies the envelope is accepted by the
// hashing primitive and hashes deterministically
func TestWrapForVerifier_Hashable(t *testing.T) {
	wrapped, err := WrapForVerifier(etherMailTypedData(), accountVerifierDomain())
	require.NoError(t, err)

	digest1, _, err := apitypes.TypedDataAndHash(*wrapped)
	require.NoError(t, err)
	digest2, _, err := apitypes.TypedDataAndHash(*wrapped)
	require.NoError(t, err)
	require.Equal(t, digest1, digest2)
	require.Len(t, digest1, 32)
}

// TestWrapForVerifier_PartialDomain verifies absent optional fields stay
// absent from the merged message
func TestWrapForVerifier_PartialDomain(t *testing.T) {
	vd := &types.VerifierDomain{
		Domain:     apitypes.TypedDataDomain{Name: "Mock Account"},
		Extensions: []*big.Int{},
	}
	wrapped, err := WrapForVerifier(etherMailTypedData(), vd)
	require.NoError(t, err)

	require.Equal(t, "Mock Account", wrapped.Message["name"])
	require.Equal(t, "", wrapped.Message["version"])
	require.NotContains(t, wrapped.Message, "chainId")
	require.NotContains(t, wrapped.Message, "verifyingContract")
	require.NotContains(t, wrapped.Message, "salt")

	// The incomplete envelope is rejected downstream, not here
	_, _, err = apitypes.TypedDataAndHash(*wrapped)
	require.Error(t, err)
}

// TestWrapForVerifier_Errors verifies schema precondition failures
func TestWrapForVerifier_Errors(t *testing.T) {
	t.Run("missing primary type", func(t *testing.T) {
		td := etherMailTypedData()
		td.PrimaryType = "Missing"
		_, err := WrapForVerifier(td, accountVerifierDomain())
		require.Error(t, err)
	})

	t.Run("envelope type collision", func(t *testing.T) {
		td := etherMailTypedData()
		td.Types[TypedDataSignType] = []apitypes.Type{{Name: "x", Type: "uint256"}}
		_, err := WrapForVerifier(td, accountVerifierDomain())
		require.Error(t, err)
	})
}
