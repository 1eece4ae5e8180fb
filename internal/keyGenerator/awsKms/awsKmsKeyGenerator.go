package awsKms

import (
	"context"
	cryptoEcdsa "crypto/ecdsa"
	"encoding/asn1"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/erc7739/signer-go/internal/keyGenerator"
)

// AWSKMSKeyGenerator provisions signing keys inside AWS KMS. The private key
// never leaves KMS; only the key id and derived address are returned.
type AWSKMSKeyGenerator struct {
	logger    *zap.Logger
	kmsClient *kms.Client
	awsRegion string
}

func NewAWSKMSKeyGenerator(awsCfg aws.Config, awsRegion string, logger *zap.Logger) *AWSKMSKeyGenerator {
	return &AWSKMSKeyGenerator{
		logger:    logger,
		kmsClient: kms.NewFromConfig(awsCfg),
		awsRegion: awsRegion,
	}
}

var _ keyGenerator.IKeyGenerator = (*AWSKMSKeyGenerator)(nil)

func (a *AWSKMSKeyGenerator) GenerateSigningKey(ctx context.Context, keyName string) (*keyGenerator.GeneratedKey, error) {
	result, err := a.kmsClient.CreateKey(ctx, &kms.CreateKeyInput{
		KeyUsage:    kmstypes.KeyUsageTypeSignVerify,
		KeySpec:     kmstypes.KeySpecEccSecgP256k1,
		Description: aws.String(fmt.Sprintf("secp256k1 key for typed data signing - %s", keyName)),
		Tags: []kmstypes.Tag{
			{
				TagKey:   aws.String("Name"),
				TagValue: aws.String(keyName),
			},
			{
				TagKey:   aws.String("Purpose"),
				TagValue: aws.String("signing-key"),
			},
			{
				TagKey:   aws.String("Curve"),
				TagValue: aws.String("secp256k1"),
			},
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create KMS key %s in region %s", keyName, a.awsRegion)
	}

	keyId := *result.KeyMetadata.KeyId
	if err := a.createKeyAlias(ctx, keyId, keyName); err != nil {
		return nil, errors.Wrapf(err, "failed to create alias %s for key %s in region %s", keyName, keyId, a.awsRegion)
	}

	return a.GetKeyById(ctx, keyId)
}

func (a *AWSKMSKeyGenerator) GetKeyById(ctx context.Context, keyId string) (*keyGenerator.GeneratedKey, error) {
	pubKeyOutput, err := a.kmsClient.GetPublicKey(ctx, &kms.GetPublicKeyInput{
		KeyId: aws.String(keyId),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get public key for key %s in region %s", keyId, a.awsRegion)
	}

	pubKey, err := parseECDSAPublicKey(pubKeyOutput.PublicKey)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse public key for key %s in region %s", keyId, a.awsRegion)
	}

	return &keyGenerator.GeneratedKey{
		Address:   crypto.PubkeyToAddress(*pubKey),
		KeyId:     keyId,
		PublicKey: crypto.FromECDSAPub(pubKey),
	}, nil
}

func (a *AWSKMSKeyGenerator) createKeyAlias(ctx context.Context, keyId, aliasName string) error {
	_, err := a.kmsClient.CreateAlias(ctx, &kms.CreateAliasInput{
		AliasName:   aws.String(fmt.Sprintf("alias/%s", aliasName)),
		TargetKeyId: aws.String(keyId),
	})
	if err != nil {
		return fmt.Errorf("failed to create key alias: %w", err)
	}

	a.logger.Info("Created KMS key alias",
		zap.String("alias", fmt.Sprintf("alias/%s", aliasName)),
		zap.String("keyId", keyId),
	)
	return nil
}

// SPKI shape of the DER-encoded public key KMS returns
type asn1EcPublicKey struct {
	EcPublicKeyInfo asn1EcPublicKeyInfo
	PublicKey       asn1.BitString
}

type asn1EcPublicKeyInfo struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters asn1.ObjectIdentifier
}

func parseECDSAPublicKey(derBytes []byte) (*cryptoEcdsa.PublicKey, error) {
	var asn1pubk asn1EcPublicKey
	if _, err := asn1.Unmarshal(derBytes, &asn1pubk); err != nil {
		return nil, fmt.Errorf("failed to parse ASN.1 public key: %w", err)
	}
	return crypto.UnmarshalPubkey(asn1pubk.PublicKey.Bytes)
}
