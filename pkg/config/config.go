package config

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names for the signer CLI
const (
	EnvPrivateKey    = "ERC7739_PRIVATE_KEY"
	EnvKMSKeyId      = "ERC7739_KMS_KEY_ID"
	EnvAWSRegion     = "ERC7739_AWS_REGION"
	EnvWeb3SignerUrl = "ERC7739_WEB3SIGNER_URL"
	EnvFromAddress   = "ERC7739_FROM_ADDRESS"
	EnvRPCUrl        = "ERC7739_RPC_URL"
	EnvVerbose       = "ERC7739_VERBOSE"
)

type ChainId uint

const (
	ChainId_EthereumMainnet ChainId = 1
	ChainId_EthereumSepolia ChainId = 11155111
	ChainId_EthereumAnvil   ChainId = 31337
)

// SignerConfig selects and configures the signing backend. Exactly one of
// PrivateKey, KMSKeyId or Web3SignerUrl must be set.
type SignerConfig struct {
	PrivateKey    string `json:"privateKey" yaml:"privateKey"`
	KMSKeyId      string `json:"kmsKeyId" yaml:"kmsKeyId"`
	AWSRegion     string `json:"awsRegion" yaml:"awsRegion"`
	Web3SignerUrl string `json:"web3SignerUrl" yaml:"web3SignerUrl"`

	// FromAddress is required for the Web3Signer backend, where the account
	// is held remotely and cannot be derived locally.
	FromAddress string `json:"fromAddress" yaml:"fromAddress"`
}

func (sc *SignerConfig) backendsConfigured() int {
	n := 0
	for _, v := range []string{sc.PrivateKey, sc.KMSKeyId, sc.Web3SignerUrl} {
		if v != "" {
			n++
		}
	}
	return n
}

func (sc *SignerConfig) Validate() error {
	var allErrors field.ErrorList

	switch sc.backendsConfigured() {
	case 0:
		allErrors = append(allErrors, field.Required(field.NewPath("privateKey"),
			"one of privateKey, kmsKeyId or web3SignerUrl is required"))
	case 1:
		// ok
	default:
		allErrors = append(allErrors, field.Invalid(field.NewPath("privateKey"), "(multiple)",
			"privateKey, kmsKeyId and web3SignerUrl are mutually exclusive"))
	}

	if sc.Web3SignerUrl != "" {
		if sc.FromAddress == "" {
			allErrors = append(allErrors, field.Required(field.NewPath("fromAddress"),
				"fromAddress is required for the web3signer backend"))
		} else if !common.IsHexAddress(sc.FromAddress) {
			allErrors = append(allErrors, field.Invalid(field.NewPath("fromAddress"), sc.FromAddress,
				"must be a hex address"))
		}
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

// ResolverConfig configures the on-chain domain lookup.
type ResolverConfig struct {
	RPCUrl string `json:"rpcUrl" yaml:"rpcUrl"`
}

func (rc *ResolverConfig) Validate() error {
	if rc.RPCUrl == "" {
		return fmt.Errorf("rpc url cannot be empty")
	}
	return nil
}
