package moneroo

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/trefleapp/trefle-backend/pkg/config"
	pkgerrors "github.com/trefleapp/trefle-backend/pkg/errors"
)

const defaultTimeout = 30 * time.Second

// SignatureHeader carries the HMAC-SHA256 hex digest of the raw webhook body.
const SignatureHeader = "X-Moneroo-Signature"

// Client is the outbound adapter for the Moneroo payment processor.
// Every call makes a single bounded-timeout attempt; retries are the
// caller's concern.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	apiKey        string
	webhookSecret string
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (used in tests).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient builds a Moneroo client from configuration.
func NewClient(cfg config.MonerooConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("moneroo api key is required")
	}
	if strings.TrimSpace(cfg.WebhookSecret) == "" {
		return nil, errors.New("moneroo webhook secret is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		webhookSecret: cfg.WebhookSecret,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Customer identifies the payer on a checkout session.
type Customer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// InitializePaymentParams describes a new checkout session.
type InitializePaymentParams struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Customer    Customer          `json:"customer"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	RedirectURL string            `json:"redirect_url,omitempty"`
	WebhookURL  string            `json:"webhook_url,omitempty"`
	CancelURL   string            `json:"cancel_url,omitempty"`
}

// PaymentSession is the provider's handle for an initialized payment.
type PaymentSession struct {
	PaymentID   string `json:"id"`
	CheckoutURL string `json:"checkout_url"`
	Status      string `json:"status"`
}

// PaymentStatus is the provider-side view of a payment.
type PaymentStatus struct {
	PaymentID string `json:"id"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

// Refund is the provider's record of a refund request.
type Refund struct {
	RefundID string `json:"id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// InitializePayment opens a checkout session and returns the payment
// reference plus the URL the customer is redirected to.
func (c *Client) InitializePayment(ctx context.Context, params InitializePaymentParams) (*PaymentSession, error) {
	if params.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}

	var session PaymentSession
	if err := c.do(ctx, http.MethodPost, "/payments/initialize", params, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// VerifyPayment fetches the current provider-side status of a payment.
func (c *Client) VerifyPayment(ctx context.Context, paymentID string) (*PaymentStatus, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id is required")
	}

	var status PaymentStatus
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/payments/%s/status", paymentID), nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// CreateRefund asks the provider to refund a captured payment.
func (c *Client) CreateRefund(ctx context.Context, paymentID string, amount int64, reason string) (*Refund, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id is required")
	}
	if amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}

	body := map[string]any{
		"payment_id": paymentID,
		"amount":     amount,
		"reason":     reason,
	}
	var refund Refund
	if err := c.do(ctx, http.MethodPost, "/refunds", body, &refund); err != nil {
		return nil, err
	}
	return &refund, nil
}

// VerifySignature checks the webhook signature header against the raw body
// using a constant-time HMAC-SHA256 comparison.
func (c *Client) VerifySignature(payload []byte, header string) bool {
	return VerifySignature(c.webhookSecret, payload, header)
}

// VerifySignature is the package-level form used where no client is wired.
func VerifySignature(secret string, payload []byte, header string) bool {
	if secret == "" || header == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(header)))
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode moneroo request")
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build moneroo request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "moneroo request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read moneroo response")
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode moneroo response (status %d)", resp.StatusCode))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !envelope.Success {
		msg := envelope.Message
		if msg == "" {
			msg = fmt.Sprintf("moneroo returned status %d", resp.StatusCode)
		}
		return pkgerrors.New(pkgerrors.CodeDependency, msg)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode moneroo payload")
		}
	}
	return nil
}
