package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	coreport "github.com/gscube/bulkerpay/internal/domain/port/core"
	gatewayport "github.com/gscube/bulkerpay/internal/domain/port/gateway"
)

// DefaultBaseURL is Paystack's production API endpoint
const DefaultBaseURL = "https://api.paystack.co"

// successStatus is the transaction status Paystack reports for a settled payment
const successStatus = "success"

// Config holds the settings for the Paystack client
type Config struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// Client is a thin HTTP wrapper over Paystack's initialize and verify
// endpoints. It never retries on its own; retry is an explicit, user-facing
// action at the service layer.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	logger     coreport.Logger
}

var _ gatewayport.PaymentGateway = (*Client)(nil)

// NewClient creates a Paystack gateway client
func NewClient(cfg Config, logger coreport.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		secretKey: cfg.SecretKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type initializeBody struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"` // minor units
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status          string `json:"status"`
		GatewayResponse string `json:"gateway_response"`
	} `json:"data"`
}

// Initialize opens a transaction with Paystack. A decline (status false in
// the provider's envelope) is reported through the result; only transport
// problems and non-2xx responses become errors.
func (c *Client) Initialize(ctx context.Context, req gatewayport.InitializeRequest) (*gatewayport.InitializeResult, error) {
	body, err := json.Marshal(initializeBody{
		Email:       req.Email,
		Amount:      req.AmountMinor,
		Currency:    req.Currency,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initialize request: %w", err)
	}

	var resp initializeResponse
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", bytes.NewReader(body), &resp); err != nil {
		return nil, err
	}

	c.logger.Debug("Paystack initialize response", map[string]any{
		"reference": req.Reference,
		"accepted":  resp.Status,
		"message":   resp.Message,
	})

	return &gatewayport.InitializeResult{
		Accepted:         resp.Status,
		AccessCode:       resp.Data.AccessCode,
		AuthorizationURL: resp.Data.AuthorizationURL,
		Message:          resp.Message,
	}, nil
}

// Verify fetches the authoritative status of a reference. Succeeded requires
// both the envelope status and the transaction status to be success.
func (c *Client) Verify(ctx context.Context, reference string) (*gatewayport.VerifyResult, error) {
	var resp verifyResponse
	if err := c.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &resp); err != nil {
		return nil, err
	}

	succeeded := resp.Status && resp.Data.Status == successStatus

	c.logger.Debug("Paystack verify response", map[string]any{
		"reference":        reference,
		"succeeded":        succeeded,
		"gateway_status":   resp.Data.Status,
		"gateway_response": resp.Data.GatewayResponse,
	})

	result := &gatewayport.VerifyResult{
		Succeeded:     succeeded,
		GatewayStatus: resp.Data.Status,
	}
	if !succeeded {
		result.FailureReason = resp.Data.GatewayResponse
	}
	return result, nil
}

// do issues one authenticated request and decodes the JSON envelope into out.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("Gateway returned non-2xx status", map[string]any{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		})
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, truncate(raw, 256))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
