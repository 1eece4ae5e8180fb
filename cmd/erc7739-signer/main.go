package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	internalAws "github.com/erc7739/signer-go/internal/aws"
	"github.com/erc7739/signer-go/pkg/clients/web3signer"
	"github.com/erc7739/signer-go/pkg/config"
	"github.com/erc7739/signer-go/pkg/resolver"
	"github.com/erc7739/signer-go/pkg/signer"
	"github.com/erc7739/signer-go/pkg/signer/awsKmsSigner"
	"github.com/erc7739/signer-go/pkg/signer/localSigner"
	"github.com/erc7739/signer-go/pkg/types"
)

func main() {
	// Optional .env for local development; missing file is fine
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "erc7739-signer",
		Usage: "Produce wrapped typed-data signatures for smart-contract accounts",
		Description: `Signs an EIP-712 typed message on behalf of a smart-contract account by
nesting it under a TypedDataSign envelope bound to the verifier's domain,
then packing the signature with the hash material the verifier recomputes
on chain.

The verifier's domain is taken from --verifier-domain when supplied, or
looked up via eip712Domain() against --verifier otherwise.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "typed-data",
				Aliases:  []string{"d"},
				Usage:    "Path to a JSON file with domain, types, primaryType and message",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "private-key",
				Usage:   "Hex-encoded secp256k1 private key for local signing",
				EnvVars: []string{config.EnvPrivateKey},
			},
			&cli.StringFlag{
				Name:    "kms-key-id",
				Usage:   "AWS KMS key id or alias for remote signing",
				EnvVars: []string{config.EnvKMSKeyId},
			},
			&cli.StringFlag{
				Name:    "aws-region",
				Usage:   "AWS region override for the KMS backend",
				EnvVars: []string{config.EnvAWSRegion},
			},
			&cli.StringFlag{
				Name:    "web3signer-url",
				Usage:   "Web3Signer base URL for remote signing",
				EnvVars: []string{config.EnvWeb3SignerUrl},
			},
			&cli.StringFlag{
				Name:    "from",
				Usage:   "Signing account address (required for web3signer)",
				EnvVars: []string{config.EnvFromAddress},
			},
			&cli.StringFlag{
				Name:  "verifier",
				Usage: "Verifier contract address for the eip712Domain() lookup",
			},
			&cli.StringFlag{
				Name:  "factory",
				Usage: "Factory address for a not-yet-deployed verifier",
			},
			&cli.StringFlag{
				Name:  "factory-data",
				Usage: "Hex-encoded factory deployment calldata",
			},
			&cli.StringFlag{
				Name:  "verifier-domain",
				Usage: "Path to a JSON file with the verifier's domain, fields and extensions (skips the lookup)",
			},
			&cli.StringFlag{
				Name:    "rpc-url",
				Usage:   "Ethereum RPC endpoint for the domain lookup",
				EnvVars: []string{config.EnvRPCUrl},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvVerbose},
			},
		},
		Action: runSign,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func runSign(c *cli.Context) error {
	ctx := c.Context

	logger, err := buildLogger(c.Bool("verbose"))
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	typedData, err := loadTypedData(c.String("typed-data"))
	if err != nil {
		return err
	}

	signerCfg := &config.SignerConfig{
		PrivateKey:    c.String("private-key"),
		KMSKeyId:      c.String("kms-key-id"),
		AWSRegion:     c.String("aws-region"),
		Web3SignerUrl: c.String("web3signer-url"),
		FromAddress:   c.String("from"),
	}
	if err := signerCfg.Validate(); err != nil {
		return fmt.Errorf("signer configuration error: %w", err)
	}

	backend, err := buildSigner(ctx, signerCfg, logger)
	if err != nil {
		return err
	}

	verifierInfo, needsLookup, err := buildVerifierInfo(c)
	if err != nil {
		return err
	}

	var domainResolver resolver.IDomainResolver
	if needsLookup {
		resolverCfg := &config.ResolverConfig{RPCUrl: c.String("rpc-url")}
		if err := resolverCfg.Validate(); err != nil {
			return fmt.Errorf("resolver configuration error: %w", err)
		}
		ethClient, err := ethclient.DialContext(ctx, resolverCfg.RPCUrl)
		if err != nil {
			return fmt.Errorf("failed to connect to %s: %w", resolverCfg.RPCUrl, err)
		}
		defer ethClient.Close()
		domainResolver = resolver.NewRPCResolver(ethClient, logger)
	}

	service := signer.NewService(backend, domainResolver, logger)
	wrapped, err := service.SignTypedData(ctx, &types.SignRequest{
		Domain:      typedData.Domain,
		Types:       typedData.Types,
		PrimaryType: typedData.PrimaryType,
		Message:     typedData.Message,
		Verifier:    verifierInfo,
	})
	if err != nil {
		return err
	}

	fmt.Println(hexutil.Encode(wrapped))
	return nil
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func loadTypedData(path string) (*apitypes.TypedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read typed data file: %w", err)
	}
	var typedData apitypes.TypedData
	if err := json.Unmarshal(raw, &typedData); err != nil {
		return nil, fmt.Errorf("failed to parse typed data file %s: %w", path, err)
	}
	return &typedData, nil
}

func buildSigner(ctx context.Context, cfg *config.SignerConfig, logger *zap.Logger) (signer.ITypedDataSigner, error) {
	switch {
	case cfg.PrivateKey != "":
		return localSigner.NewLocalSigner(cfg.PrivateKey, logger)
	case cfg.KMSKeyId != "":
		awsCfg, err := internalAws.LoadAWSConfig(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		identity, err := internalAws.GetCallerIdentity(ctx, awsCfg)
		if err != nil {
			return nil, fmt.Errorf("AWS credentials check failed: %w", err)
		}
		logger.Sugar().Debugw("Using AWS identity", zap.Stringp("arn", identity.Arn))
		return awsKmsSigner.NewKMSSigner(ctx, awsCfg, cfg.KMSKeyId, logger)
	case cfg.Web3SignerUrl != "":
		client, err := web3signer.NewClient(&web3signer.Config{
			BaseUrl: cfg.Web3SignerUrl,
			Timeout: web3signer.DefaultConfig().Timeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		return web3signer.NewTypedDataSigner(client, common.HexToAddress(cfg.FromAddress), logger), nil
	default:
		return nil, signer.ErrNoSigner
	}
}

// verifierDomainFile is the on-disk shape of a pre-resolved verifier domain.
type verifierDomainFile struct {
	Domain     apitypes.TypedDataDomain `json:"domain"`
	Fields     hexutil.Bytes            `json:"fields"`
	Extensions []*math.HexOrDecimal256  `json:"extensions"`
}

func buildVerifierInfo(c *cli.Context) (types.VerifierInfo, bool, error) {
	domainPath := c.String("verifier-domain")
	verifierAddr := c.String("verifier")

	switch {
	case domainPath != "" && verifierAddr != "":
		return nil, false, fmt.Errorf("--verifier-domain and --verifier are mutually exclusive")

	case domainPath != "":
		raw, err := os.ReadFile(domainPath)
		if err != nil {
			return nil, false, fmt.Errorf("failed to read verifier domain file: %w", err)
		}
		var vdf verifierDomainFile
		if err := json.Unmarshal(raw, &vdf); err != nil {
			return nil, false, fmt.Errorf("failed to parse verifier domain file %s: %w", domainPath, err)
		}
		var fields [1]byte
		if len(vdf.Fields) > 0 {
			fields[0] = vdf.Fields[0]
		}
		extensions := make([]*big.Int, len(vdf.Extensions))
		for i, ext := range vdf.Extensions {
			extensions[i] = (*big.Int)(ext)
		}
		resolved, err := types.NewResolvedVerifier(&vdf.Domain, fields, extensions)
		if err != nil {
			return nil, false, err
		}
		return resolved, false, nil

	case verifierAddr != "":
		if !common.IsHexAddress(verifierAddr) {
			return nil, false, fmt.Errorf("invalid verifier address: %s", verifierAddr)
		}
		lookup := &types.LookupVerifier{Address: common.HexToAddress(verifierAddr)}
		if factory := c.String("factory"); factory != "" {
			if !common.IsHexAddress(factory) {
				return nil, false, fmt.Errorf("invalid factory address: %s", factory)
			}
			addr := common.HexToAddress(factory)
			lookup.Factory = &addr
		}
		if factoryData := c.String("factory-data"); factoryData != "" {
			data, err := hexutil.Decode(factoryData)
			if err != nil {
				return nil, false, fmt.Errorf("invalid factory data: %w", err)
			}
			lookup.FactoryData = data
		}
		return lookup, true, nil

	default:
		return nil, false, fmt.Errorf("either --verifier-domain or --verifier is required")
	}
}
