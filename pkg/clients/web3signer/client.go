package web3signer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultBaseUrl = "http://localhost:9000"

type Config struct {
	BaseUrl string        `json:"baseUrl" yaml:"baseUrl"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		BaseUrl: DefaultBaseUrl,
		Timeout: 30 * time.Second,
	}
}

// Client is a JSON-RPC client for the Web3Signer remote signing service.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseUrl == "" {
		return nil, fmt.Errorf("web3signer base url cannot be empty")
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}, nil
}

func (c *Client) SetHttpClient(client *http.Client) {
	c.httpClient = client
}

type jsonRPCRequest struct {
	JsonRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	Id      string        `json:"id"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type jsonRPCResponse struct {
	JsonRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *jsonRPCError   `json:"error"`
	Id      string          `json:"id"`
}

func (c *Client) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	requestId := uuid.New().String()
	body, err := json.Marshal(&jsonRPCRequest{
		JsonRPC: "2.0",
		Method:  method,
		Params:  params,
		Id:      requestId,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseUrl, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Sugar().Debugw("Calling web3signer",
		zap.String("method", method),
		zap.String("requestId", requestId),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request to web3signer failed: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d: %s", method, resp.StatusCode, respBody)
	}

	var rpcResp jsonRPCResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%s failed with code %d: %s", method, rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("failed to unmarshal %s result: %w", method, err)
		}
	}
	return nil
}

// EthAccounts returns the accounts the Web3Signer service holds keys for.
func (c *Client) EthAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := c.call(ctx, "eth_accounts", []interface{}{}, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// EthSignTypedData signs typed data with the given account. The typedData
// value is marshalled as-is, so any JSON-compatible typed data shape works.
func (c *Client) EthSignTypedData(ctx context.Context, account string, typedData interface{}) (string, error) {
	var signature string
	if err := c.call(ctx, "eth_signTypedData", []interface{}{account, typedData}, &signature); err != nil {
		return "", err
	}
	return signature, nil
}

// ListPublicKeys retrieves all available public keys from the Web3Signer service.
func (c *Client) ListPublicKeys(ctx context.Context) ([]string, error) {
	return c.EthAccounts(ctx)
}
