package resolver

import (
	"context"
	"fmt"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"go.uber.org/zap"

	"github.com/erc7739/signer-go/pkg/types"
)

// eip712Domain() per ERC-5267:
//
//	returns (bytes1 fields, string name, string version, uint256 chainId,
//	         address verifyingContract, bytes32 salt, uint256[] extensions)
var (
	eip712DomainSelector = crypto.Keccak256([]byte("eip712Domain()"))[:4]
	eip712DomainOutputs  = buildEIP712DomainOutputs()
)

func buildEIP712DomainOutputs() abi.Arguments {
	newType := func(t string) abi.Type {
		typ, err := abi.NewType(t, "", nil)
		if err != nil {
			panic(fmt.Sprintf("invalid abi type %q: %v", t, err))
		}
		return typ
	}
	return abi.Arguments{
		{Name: "fields", Type: newType("bytes1")},
		{Name: "name", Type: newType("string")},
		{Name: "version", Type: newType("string")},
		{Name: "chainId", Type: newType("uint256")},
		{Name: "verifyingContract", Type: newType("address")},
		{Name: "salt", Type: newType("bytes32")},
		{Name: "extensions", Type: newType("uint256[]")},
	}
}

// RPCResolver looks a verifier's domain up on chain with a single eth_call.
type RPCResolver struct {
	ethClient *ethclient.Client
	logger    *zap.Logger
}

func NewRPCResolver(ethClient *ethclient.Client, logger *zap.Logger) *RPCResolver {
	return &RPCResolver{
		ethClient: ethClient,
		logger:    logger,
	}
}

var _ IDomainResolver = (*RPCResolver)(nil)

// ResolveVerifierDomain calls eip712Domain() on the verifier contract. The
// call is made exactly once; any failure is returned to the caller as is.
func (r *RPCResolver) ResolveVerifierDomain(ctx context.Context, params ResolveParams) (*types.VerifierDomain, error) {
	code, err := r.ethClient.CodeAt(ctx, params.Verifier, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read code at verifier %s: %w", params.Verifier, err)
	}
	if len(code) == 0 {
		if params.Factory != nil {
			return nil, fmt.Errorf("verifier %s (factory %s): %w", params.Verifier, params.Factory, ErrVerifierNotDeployed)
		}
		return nil, fmt.Errorf("verifier %s: %w", params.Verifier, ErrVerifierNotDeployed)
	}

	out, err := r.ethClient.CallContract(ctx, ethereum.CallMsg{
		To:   &params.Verifier,
		Data: eip712DomainSelector,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("eip712Domain() call to %s failed: %w", params.Verifier, err)
	}

	domain, err := DecodeEIP712DomainResult(out)
	if err != nil {
		return nil, fmt.Errorf("eip712Domain() response from %s: %w", params.Verifier, err)
	}

	r.logger.Sugar().Debugw("Resolved verifier domain",
		zap.String("verifier", params.Verifier.Hex()),
		zap.String("name", domain.Domain.Name),
		zap.String("version", domain.Domain.Version),
		zap.Int("extensions", len(domain.Extensions)),
	)
	return domain, nil
}

// DecodeEIP712DomainResult decodes the raw return data of an eip712Domain()
// call into a VerifierDomain. All seven values are carried over unchanged;
// the fields bitmap is kept alongside rather than used to trim the domain.
func DecodeEIP712DomainResult(data []byte) (*types.VerifierDomain, error) {
	values, err := eip712DomainOutputs.UnpackValues(data)
	if err != nil {
		return nil, fmt.Errorf("malformed return data: %w", err)
	}
	if len(values) != len(eip712DomainOutputs) {
		return nil, fmt.Errorf("expected %d return values, got %d", len(eip712DomainOutputs), len(values))
	}

	fields, ok0 := values[0].([1]byte)
	name, ok1 := values[1].(string)
	version, ok2 := values[2].(string)
	chainId, ok3 := values[3].(*big.Int)
	verifyingContract, ok4 := values[4].(common.Address)
	salt, ok5 := values[5].([32]byte)
	extensions, ok6 := values[6].([]*big.Int)
	if !(ok0 && ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
		return nil, fmt.Errorf("unexpected return value types")
	}

	return &types.VerifierDomain{
		Domain: apitypes.TypedDataDomain{
			Name:              name,
			Version:           version,
			ChainId:           (*math.HexOrDecimal256)(chainId),
			VerifyingContract: verifyingContract.Hex(),
			Salt:              hexutil.Encode(salt[:]),
		},
		Fields:     fields,
		Extensions: extensions,
	}, nil
}
