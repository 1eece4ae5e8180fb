package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	internalAws "github.com/erc7739/signer-go/internal/aws"
	"github.com/erc7739/signer-go/internal/keyGenerator"
	"github.com/erc7739/signer-go/internal/keyGenerator/awsKms"
	"github.com/erc7739/signer-go/internal/keyGenerator/localKeyGenerator"
	"github.com/erc7739/signer-go/pkg/config"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "erc7739-keygen",
		Usage: "Provision a secp256k1 signing key locally or in AWS KMS",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "name",
				Usage:    "Name for the new key (also used as the KMS alias)",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "kms",
				Usage: "Create the key in AWS KMS instead of locally",
			},
			&cli.StringFlag{
				Name:    "aws-region",
				Usage:   "AWS region override for the KMS backend",
				EnvVars: []string{config.EnvAWSRegion},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvVerbose},
			},
		},
		Action: runKeygen,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func runKeygen(c *cli.Context) error {
	ctx := c.Context

	logger, err := buildLogger(c.Bool("verbose"))
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	var generator keyGenerator.IKeyGenerator
	if c.Bool("kms") {
		awsCfg, err := internalAws.LoadAWSConfig(ctx, c.String("aws-region"))
		if err != nil {
			return fmt.Errorf("failed to load AWS config: %w", err)
		}
		identity, err := internalAws.GetCallerIdentity(ctx, awsCfg)
		if err != nil {
			return fmt.Errorf("AWS credentials check failed: %w", err)
		}
		logger.Sugar().Debugw("Using AWS identity", zap.Stringp("arn", identity.Arn))
		generator = awsKms.NewAWSKMSKeyGenerator(awsCfg, c.String("aws-region"), logger)
	} else {
		generator = localKeyGenerator.NewLocalKeyGenerator(logger)
	}

	key, err := generator.GenerateSigningKey(ctx, c.String("name"))
	if err != nil {
		return err
	}

	pubKeyHex, err := key.GetPublicKeyHex()
	if err != nil {
		return err
	}

	fmt.Printf("keyId:      %s\n", key.KeyId)
	fmt.Printf("address:    %s\n", key.Address.Hex())
	fmt.Printf("publicKey:  %s\n", pubKeyHex)
	if key.PrivateKeyHex != "" {
		fmt.Printf("privateKey: %s\n", key.PrivateKeyHex)
	}
	return nil
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
