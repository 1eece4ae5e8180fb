package signer

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/erc7739/signer-go/pkg/resolver"
	"github.com/erc7739/signer-go/pkg/typeddata"
	"github.com/erc7739/signer-go/pkg/types"
)

// Service produces verifier-decodable wrapped signatures over typed data on
// behalf of a smart-contract account. Each call is a single pass: resolve the
// verifier domain, build the TypedDataSign envelope, sign it, then pack the
// signature with the hash material recomputed from the original inputs.
// The service holds no mutable state and is safe for concurrent use.
type Service struct {
	signer   ITypedDataSigner
	resolver resolver.IDomainResolver
	logger   *zap.Logger
}

func NewService(signer ITypedDataSigner, domainResolver resolver.IDomainResolver, logger *zap.Logger) *Service {
	return &Service{
		signer:   signer,
		resolver: domainResolver,
		logger:   logger,
	}
}

// SignTypedData runs the full wrapping pipeline and returns the packed
// signature bytes. It fails fast on the first error; no partial output is
// ever returned.
func (s *Service) SignTypedData(ctx context.Context, req *types.SignRequest) ([]byte, error) {
	if s.signer == nil {
		return nil, ErrNoSigner
	}
	if req.Account != (common.Address{}) && req.Account != s.signer.Address() {
		return nil, fmt.Errorf("account %s: %w", req.Account, ErrNoSigner)
	}

	verifierDomain, err := s.resolveVerifier(ctx, req.Verifier)
	if err != nil {
		return nil, err
	}

	original := req.TypedData()
	wrapped, err := typeddata.WrapForVerifier(original, verifierDomain)
	if err != nil {
		return nil, fmt.Errorf("failed to build signing envelope: %w", err)
	}

	signature, err := s.signer.SignTypedData(ctx, wrapped)
	if err != nil {
		return nil, fmt.Errorf("failed to sign envelope: %w", err)
	}

	// The hash material is recomputed from the original, unwrapped inputs;
	// the verifier recombines it with the envelope on chain.
	domainHash, err := typeddata.HashDomain(&req.Domain)
	if err != nil {
		return nil, fmt.Errorf("failed to hash domain: %w", err)
	}
	contentsHash, err := typeddata.ContentsHash(original)
	if err != nil {
		return nil, fmt.Errorf("failed to hash contents: %w", err)
	}
	encodedType := string(original.EncodeType(req.PrimaryType))

	packed, err := typeddata.PackWrappedSignature(signature, domainHash, contentsHash, encodedType)
	if err != nil {
		return nil, fmt.Errorf("failed to pack wrapped signature: %w", err)
	}

	s.logger.Sugar().Debugw("Produced wrapped typed data signature",
		zap.String("primaryType", req.PrimaryType),
		zap.Int("signatureBytes", len(signature)),
		zap.Int("packedBytes", len(packed)),
	)
	return packed, nil
}

func (s *Service) resolveVerifier(ctx context.Context, info types.VerifierInfo) (*types.VerifierDomain, error) {
	switch v := info.(type) {
	case *types.ResolvedVerifier:
		return &v.VerifierDomain, nil
	case types.ResolvedVerifier:
		return &v.VerifierDomain, nil
	case *types.LookupVerifier:
		return s.lookupVerifier(ctx, v)
	case types.LookupVerifier:
		return s.lookupVerifier(ctx, &v)
	case nil:
		return nil, fmt.Errorf("verifier info is required")
	default:
		return nil, fmt.Errorf("unsupported verifier info %T", info)
	}
}

func (s *Service) lookupVerifier(ctx context.Context, v *types.LookupVerifier) (*types.VerifierDomain, error) {
	if s.resolver == nil {
		return nil, fmt.Errorf("no domain resolver configured for verifier lookup")
	}
	domain, err := s.resolver.ResolveVerifierDomain(ctx, resolver.ResolveParams{
		Verifier:    v.Address,
		Factory:     v.Factory,
		FactoryData: v.FactoryData,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve verifier domain: %w", err)
	}
	return domain, nil
}
