package typeddata

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// DomainTypeName is the reserved EIP-712 domain struct name.
const DomainTypeName = "EIP712Domain"

// DomainFieldList builds the EIP712Domain type definition for the fields
// actually populated in the domain. The canonical order is fixed: name,
// version, chainId, verifyingContract, salt. A verifier recomputing the
// domain hash on-chain declares exactly the same subset, so fields must
// never be emitted for zero values.
func DomainFieldList(domain *apitypes.TypedDataDomain) []apitypes.Type {
	fields := make([]apitypes.Type, 0, 5)
	if domain == nil {
		return fields
	}
	if len(domain.Name) > 0 {
		fields = append(fields, apitypes.Type{Name: "name", Type: "string"})
	}
	if len(domain.Version) > 0 {
		fields = append(fields, apitypes.Type{Name: "version", Type: "string"})
	}
	if domain.ChainId != nil {
		fields = append(fields, apitypes.Type{Name: "chainId", Type: "uint256"})
	}
	if len(domain.VerifyingContract) > 0 {
		fields = append(fields, apitypes.Type{Name: "verifyingContract", Type: "address"})
	}
	if len(domain.Salt) > 0 {
		fields = append(fields, apitypes.Type{Name: "salt", Type: "bytes32"})
	}
	return fields
}

// HashDomain computes hashStruct(EIP712Domain, domain) under the dynamic
// field list. An absent or fully empty domain hashes as the bare type hash
// of "EIP712Domain()".
func HashDomain(domain *apitypes.TypedDataDomain) (hexutil.Bytes, error) {
	fields := DomainFieldList(domain)
	if len(fields) == 0 {
		return crypto.Keccak256(crypto.Keccak256([]byte(DomainTypeName + "()"))), nil
	}
	td := apitypes.TypedData{
		Types:  apitypes.Types{DomainTypeName: fields},
		Domain: *domain,
	}
	return td.HashStruct(DomainTypeName, domain.Map())
}

// ContentsHash hashes td's message under its primary type and original,
// unwrapped schema. The domain takes no part in the hash, but the encoder
// rejects a fully empty domain up front, so a placeholder is substituted;
// it never reaches the encoded output.
func ContentsHash(td *apitypes.TypedData) (hexutil.Bytes, error) {
	h := apitypes.TypedData{
		Types:       td.Types,
		PrimaryType: td.PrimaryType,
		Domain:      td.Domain,
		Message:     td.Message,
	}
	if len(DomainFieldList(&h.Domain)) == 0 {
		h.Domain = apitypes.TypedDataDomain{Name: td.PrimaryType}
	}
	return h.HashStruct(h.PrimaryType, h.Message)
}
