package localKeyGenerator

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erc7739/signer-go/internal/keyGenerator"
)

// LocalKeyGenerator creates secp256k1 keys in process and keeps them in an
// in-memory store keyed by a generated id.
type LocalKeyGenerator struct {
	logger   *zap.Logger
	keyStore map[string]*keyGenerator.GeneratedKey
	mu       sync.RWMutex
}

func NewLocalKeyGenerator(logger *zap.Logger) *LocalKeyGenerator {
	return &LocalKeyGenerator{
		logger:   logger,
		keyStore: make(map[string]*keyGenerator.GeneratedKey),
	}
}

var _ keyGenerator.IKeyGenerator = (*LocalKeyGenerator)(nil)

func (l *LocalKeyGenerator) GenerateSigningKey(ctx context.Context, keyName string) (*keyGenerator.GeneratedKey, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate secp256k1 key: %w", err)
	}

	keyId := fmt.Sprintf("local-key-%s", uuid.New().String())
	key := &keyGenerator.GeneratedKey{
		Address:       crypto.PubkeyToAddress(privateKey.PublicKey),
		KeyId:         keyId,
		PublicKey:     crypto.FromECDSAPub(&privateKey.PublicKey),
		PrivateKeyHex: hexutil.Encode(crypto.FromECDSA(privateKey)),
	}

	l.mu.Lock()
	l.keyStore[keyId] = key
	l.mu.Unlock()

	l.logger.Info("Generated local signing key",
		zap.String("keyName", keyName),
		zap.String("keyId", keyId),
		zap.String("address", key.Address.Hex()),
	)
	return key, nil
}

func (l *LocalKeyGenerator) GetKeyById(ctx context.Context, keyId string) (*keyGenerator.GeneratedKey, error) {
	l.mu.RLock()
	key, exists := l.keyStore[keyId]
	l.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("key with ID %s not found", keyId)
	}
	return key, nil
}

// KeyCount returns the number of keys in the store.
func (l *LocalKeyGenerator) KeyCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.keyStore)
}
