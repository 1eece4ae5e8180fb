package resolver

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"github.com/erc7739/signer-go/pkg/types"
)

// ErrVerifierNotDeployed is returned when the verifier address holds no code,
// so its eip712Domain() cannot be called. Callers holding a counterfactual
// account should supply the resolved domain directly instead.
var ErrVerifierNotDeployed = errors.New("verifier contract is not deployed")

// ResolveParams identifies the verifier whose domain is looked up. Factory
// and FactoryData describe how a not-yet-deployed verifier would be created
// and are forwarded to resolvers that can simulate the deployment.
type ResolveParams struct {
	Verifier    common.Address
	Factory     *common.Address
	FactoryData []byte
}

// IDomainResolver performs the single external lookup of a verifier's
// eip712Domain() parameters. Implementations make at most one attempt; retry
// policy belongs to the caller.
type IDomainResolver interface {
	ResolveVerifierDomain(ctx context.Context, params ResolveParams) (*types.VerifierDomain, error)
}

// StaticResolver serves a fixed verifier domain regardless of the requested
// address. Useful for tooling that targets a single known verifier.
type StaticResolver struct {
	domain types.VerifierDomain
}

func NewStaticResolver(domain types.VerifierDomain) *StaticResolver {
	return &StaticResolver{domain: domain}
}

func (r *StaticResolver) ResolveVerifierDomain(_ context.Context, _ ResolveParams) (*types.VerifierDomain, error) {
	domain := r.domain
	return &domain, nil
}

var _ IDomainResolver = (*StaticResolver)(nil)
