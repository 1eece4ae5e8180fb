package typeddata

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/erc7739/signer-go/pkg/types"
)

// TypedDataSignType is the synthetic top-level type a smart account signs
// instead of the caller's original primary type. Its field order is fixed by
// the on-chain verifier and must not change.
const TypedDataSignType = "TypedDataSign"

func typedDataSignFields(primaryType string) []apitypes.Type {
	return []apitypes.Type{
		{Name: "contents", Type: primaryType},
		{Name: "fields", Type: "bytes1"},
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
		{Name: "salt", Type: "bytes32"},
		{Name: "extensions", Type: "uint256[]"},
	}
}

// WrapForVerifier nests td's message under a TypedDataSign envelope carrying
// the verifier's domain parameters. The returned typed data keeps td's own
// domain for signing; only the schema and message change. The merge is purely
// structural: domain fields the verifier did not populate stay absent from
// the message and surface as errors in the signing primitive.
func WrapForVerifier(td *apitypes.TypedData, vd *types.VerifierDomain) (*apitypes.TypedData, error) {
	if _, ok := td.Types[td.PrimaryType]; !ok {
		return nil, fmt.Errorf("primary type %q is not declared in the schema", td.PrimaryType)
	}
	if _, ok := td.Types[TypedDataSignType]; ok {
		return nil, fmt.Errorf("schema already declares %s", TypedDataSignType)
	}

	extended := make(apitypes.Types, len(td.Types)+2)
	for name, fields := range td.Types {
		extended[name] = fields
	}
	extended[TypedDataSignType] = typedDataSignFields(td.PrimaryType)
	if _, ok := extended[DomainTypeName]; !ok {
		extended[DomainTypeName] = DomainFieldList(&td.Domain)
	}

	extensions := make([]interface{}, len(vd.Extensions))
	for i, ext := range vd.Extensions {
		extensions[i] = ext
	}

	message := apitypes.TypedDataMessage{
		"contents":   td.Message,
		"fields":     hexutil.Bytes(vd.Fields[:]),
		"extensions": extensions,
		// Empty name and version are valid domain values, unlike the
		// remaining fields where absence is meaningful.
		"name":    vd.Domain.Name,
		"version": vd.Domain.Version,
	}
	if vd.Domain.ChainId != nil {
		message["chainId"] = vd.Domain.ChainId
	}
	if len(vd.Domain.VerifyingContract) > 0 {
		message["verifyingContract"] = vd.Domain.VerifyingContract
	}
	if len(vd.Domain.Salt) > 0 {
		message["salt"] = vd.Domain.Salt
	}

	return &apitypes.TypedData{
		Types:       extended,
		PrimaryType: TypedDataSignType,
		Domain:      td.Domain,
		Message:     message,
	}, nil
}
