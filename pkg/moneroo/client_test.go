package moneroo

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trefleapp/trefle-backend/pkg/config"
	pkgerrors "github.com/trefleapp/trefle-backend/pkg/errors"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.MonerooConfig{
		BaseURL:       srv.URL,
		APIKey:        "sk_test_123",
		WebhookSecret: "whsec_test",
		Timeout:       5 * time.Second,
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(config.MonerooConfig{WebhookSecret: "x"})
	require.Error(t, err)

	_, err = NewClient(config.MonerooConfig{APIKey: "x"})
	require.Error(t, err)
}

func TestInitializePayment_Success(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payments/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"pay_abc","checkout_url":"https://checkout.moneroo.io/pay_abc","status":"pending"}}`))
	}))

	session, err := client.InitializePayment(context.Background(), InitializePaymentParams{
		Amount:   150000,
		Currency: "XAF",
		Customer: Customer{Email: "buyer@example.com", Name: "Buyer"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pay_abc", session.PaymentID)
	assert.Equal(t, "https://checkout.moneroo.io/pay_abc", session.CheckoutURL)
}

func TestInitializePayment_RejectsNonPositiveAmount(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))

	_, err := client.InitializePayment(context.Background(), InitializePaymentParams{
		Amount:   0,
		Currency: "XAF",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestVerifyPayment_ProviderError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"success":false,"message":"upstream unavailable"}`))
	}))

	_, err := client.VerifyPayment(context.Background(), "pay_abc")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
	assert.Contains(t, err.Error(), "upstream unavailable")
}

func TestCreateRefund_Success(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/refunds", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"ref_1","status":"pending","amount":150000}}`))
	}))

	refund, err := client.CreateRefund(context.Background(), "pay_abc", 150000, "customer request")
	require.NoError(t, err)
	assert.Equal(t, "ref_1", refund.RefundID)
	assert.Equal(t, int64(150000), refund.Amount)
}

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"event":"payment.completed","data":{"id":"pay_abc"}}`)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, VerifySignature(secret, payload, valid))
	assert.True(t, VerifySignature(secret, payload, "  "+valid+"\n"))
	assert.False(t, VerifySignature(secret, payload, "deadbeef"))
	assert.False(t, VerifySignature(secret, payload, ""))
	assert.False(t, VerifySignature("", payload, valid))
	assert.False(t, VerifySignature(secret, []byte(`tampered`), valid))
}
