package awsKmsSigner

import (
	"bytes"
	"context"
	cryptoEcdsa "crypto/ecdsa"
	"encoding/asn1"
	"fmt"
	"math/big"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmsTypes "github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/erc7739/signer-go/pkg/signer"
)

// KMSSigner signs typed data with an ECDSA_SECP256K1 key held in AWS KMS.
// KMS returns DER-encoded (r,s) pairs without a recovery id, so signatures
// are canonicalized to low-S and the recovery id is found by trial recovery
// against the key's known public key.
type KMSSigner struct {
	kmsClient *kms.Client
	keyId     string
	publicKey *cryptoEcdsa.PublicKey
	address   common.Address
	logger    *zap.Logger
}

func NewKMSSigner(ctx context.Context, awsCfg aws.Config, keyId string, logger *zap.Logger) (*KMSSigner, error) {
	if keyId == "" {
		return nil, fmt.Errorf("KMS key id cannot be empty")
	}
	kmsClient := kms.NewFromConfig(awsCfg)

	pubKeyOutput, err := kmsClient.GetPublicKey(ctx, &kms.GetPublicKeyInput{
		KeyId: aws.String(keyId),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get public key for KMS key %s", keyId)
	}
	publicKey, err := parseECDSAPublicKey(pubKeyOutput.PublicKey)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse public key for KMS key %s", keyId)
	}

	return &KMSSigner{
		kmsClient: kmsClient,
		keyId:     keyId,
		publicKey: publicKey,
		address:   crypto.PubkeyToAddress(*publicKey),
		logger:    logger,
	}, nil
}

var _ signer.ITypedDataSigner = (*KMSSigner)(nil)

func (s *KMSSigner) Address() common.Address {
	return s.address
}

func (s *KMSSigner) SignTypedData(ctx context.Context, typedData *apitypes.TypedData) ([]byte, error) {
	digest, _, err := apitypes.TypedDataAndHash(*typedData)
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed data: %w", err)
	}
	return s.signDigest(ctx, digest)
}

func (s *KMSSigner) signDigest(ctx context.Context, digest []byte) ([]byte, error) {
	if len(digest) != 32 {
		return nil, fmt.Errorf("digest must be exactly 32 bytes, got %d", len(digest))
	}

	signOutput, err := s.kmsClient.Sign(ctx, &kms.SignInput{
		KeyId:            aws.String(s.keyId),
		Message:          digest,
		SigningAlgorithm: kmsTypes.SigningAlgorithmSpecEcdsaSha256,
		MessageType:      kmsTypes.MessageTypeDigest,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "KMS sign failed for key %s", s.keyId)
	}

	var sigAsn1 asn1EcSig
	if _, err := asn1.Unmarshal(signOutput.Signature, &sigAsn1); err != nil {
		return nil, errors.Wrap(err, "failed to parse ASN.1 signature from KMS")
	}

	r := new(big.Int).SetBytes(sigAsn1.R.Bytes)
	sVal := new(big.Int).SetBytes(sigAsn1.S.Bytes)
	return recoverableSignature(digest, r, sVal, s.publicKey)
}

// secp256k1 curve order, for low-S canonicalization
var curveOrder, _ = new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)

// recoverableSignature turns an (r,s) pair into the 65-byte Ethereum
// signature form. S is canonicalized to the lower half of the curve order
// first; the recovery id is the one whose recovered key matches expectedKey,
// offset by 27 per the on-chain convention.
func recoverableSignature(digest []byte, r, s *big.Int, expectedKey *cryptoEcdsa.PublicKey) ([]byte, error) {
	halfOrder := new(big.Int).Rsh(curveOrder, 1)
	if s.Cmp(halfOrder) > 0 {
		s = new(big.Int).Sub(curveOrder, s)
	}

	expected := crypto.FromECDSAPub(expectedKey)
	sig := make([]byte, 65)
	r.FillBytes(sig[0:32])
	s.FillBytes(sig[32:64])

	for recoveryId := byte(0); recoveryId < 2; recoveryId++ {
		sig[64] = recoveryId
		recovered, err := crypto.Ecrecover(digest, sig)
		if err != nil {
			continue
		}
		if bytes.Equal(recovered, expected) {
			sig[64] = recoveryId + 27
			return sig, nil
		}
	}
	return nil, fmt.Errorf("could not determine recovery id for KMS signature")
}

// ASN.1 shapes of the DER structures KMS returns
type asn1EcSig struct {
	R asn1.RawValue
	S asn1.RawValue
}

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
