package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPayPal(t *testing.T, mux *http.ServeMux) *PayPalClient {
	mux.HandleFunc("POST /v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "tok"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return NewPayPalClient(PayPalConfig{
		BaseURL:  srv.URL,
		ClientID: "client",
		Secret:   "secret",
		Currency: "USD",
		Timeout:  2 * time.Second,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestPayPalClient_CreateOrder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body createOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "CAPTURE", body.Intent)
		require.Len(t, body.PurchaseUnits, 1)
		assert.Equal(t, "125.00", body.PurchaseUnits[0].Amount.Value)
		assert.Equal(t, "USD", body.PurchaseUnits[0].Amount.CurrencyCode)

		writeJSON(w, http.StatusCreated, map[string]string{"id": "REMOTE-1", "status": "CREATED"})
	})
	client := newTestPayPal(t, mux)

	id, err := client.CreateOrder(context.Background(), 12500)
	require.NoError(t, err)
	assert.Equal(t, "REMOTE-1", id)
}

func TestPayPalClient_CreateOrderRejectsNonPositiveAmount(t *testing.T) {
	client := newTestPayPal(t, http.NewServeMux())

	_, err := client.CreateOrder(context.Background(), 0)
	assert.ErrorContains(t, err, "amount must be positive")
}

func TestPayPalClient_CreateOrderErrorStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"name": "UNPROCESSABLE_ENTITY"})
	})
	client := newTestPayPal(t, mux)

	_, err := client.CreateOrder(context.Background(), 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 422")
}

func TestPayPalClient_CapturePayment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/checkout/orders/{id}/capture", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "REMOTE-1", r.PathValue("id"))
		writeJSON(w, http.StatusCreated, map[string]any{
			"id":     "REMOTE-1",
			"status": StatusCompleted,
			"payer":  map[string]string{"email_address": "buyer@example.com"},
			"purchase_units": []any{map[string]any{
				"payments": map[string]any{
					"captures": []any{map[string]any{
						"amount": map[string]string{"currency_code": "USD", "value": "125.00"},
					}},
				},
			}},
		})
	})
	client := newTestPayPal(t, mux)

	res, err := client.CapturePayment(context.Background(), "REMOTE-1")
	require.NoError(t, err)
	assert.Equal(t, &CaptureResult{
		ID:         "REMOTE-1",
		Status:     StatusCompleted,
		PayerEmail: "buyer@example.com",
		Amount:     "125.00",
	}, res)
}

func TestPayPalClient_BadCredentials(t *testing.T) {
	mux := http.NewServeMux()
	client := newTestPayPal(t, mux)
	client.cfg.Secret = "wrong"

	_, err := client.CapturePayment(context.Background(), "REMOTE-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token request failed with status 401")
}

func TestPayPalClient_Timeout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/checkout/orders/{id}/capture", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
	})
	client := newTestPayPal(t, mux)
	client.client.SetTimeout(100 * time.Millisecond)

	_, err := client.CapturePayment(context.Background(), "REMOTE-1")
	assert.Error(t, err)
}
