package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// StatusCompleted is the capture status PayPal reports once funds are taken.
const StatusCompleted = "COMPLETED"

// Gateway is the payment processor boundary used by the order workflow.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinorUnits int64) (string, error)
	CapturePayment(ctx context.Context, remoteOrderID string) (*CaptureResult, error)
}

type CaptureResult struct {
	ID         string
	Status     string
	PayerEmail string
	Amount     string
}

type PayPalConfig struct {
	BaseURL  string
	ClientID string
	Secret   string
	Currency string
	Timeout  time.Duration
}

type PayPalClient struct {
	client *resty.Client
	cfg    PayPalConfig
}

func NewPayPalClient(cfg PayPalConfig) *PayPalClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	return &PayPalClient{client: client, cfg: cfg}
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
}

func (p *PayPalClient) accessToken(ctx context.Context) (string, error) {
	if p.cfg.ClientID == "" || p.cfg.Secret == "" {
		return "", errors.New("paypal client credentials are not set")
	}

	var token accessTokenResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBasicAuth(p.cfg.ClientID, p.cfg.Secret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&token).
		Post("/v1/oauth2/token")
	if err != nil {
		return "", fmt.Errorf("paypal token request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("paypal token request failed with status %d: %s", resp.StatusCode(), resp.String())
	}
	if token.AccessToken == "" {
		return "", errors.New("paypal token response has no access_token")
	}
	return token.AccessToken, nil
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type createOrderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

type purchaseUnit struct {
	Amount amount `json:"amount"`
}

type createOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CreateOrder opens a remote order for the amount, given in minor units.
func (p *PayPalClient) CreateOrder(ctx context.Context, amountMinorUnits int64) (string, error) {
	if amountMinorUnits <= 0 {
		return "", fmt.Errorf("amount must be positive, got %d", amountMinorUnits)
	}
	token, err := p.accessToken(ctx)
	if err != nil {
		return "", err
	}

	body := createOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			Amount: amount{
				CurrencyCode: p.cfg.Currency,
				Value:        decimal.New(amountMinorUnits, -2).StringFixed(2),
			},
		}},
	}

	var out createOrderResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&out).
		Post("/v2/checkout/orders")
	if err != nil {
		return "", fmt.Errorf("paypal create order failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("paypal create order failed with status %d: %s", resp.StatusCode(), resp.String())
	}
	if out.ID == "" {
		return "", errors.New("paypal create order response has no id")
	}
	return out.ID, nil
}

type captureResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Payer  struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				Amount amount `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

func (p *PayPalClient) CapturePayment(ctx context.Context, remoteOrderID string) (*CaptureResult, error) {
	if remoteOrderID == "" {
		return nil, errors.New("remote order id is required")
	}
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var out captureResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetPathParam("id", remoteOrderID).
		SetResult(&out).
		Post("/v2/checkout/orders/{id}/capture")
	if err != nil {
		return nil, fmt.Errorf("paypal capture failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("paypal capture failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	result := &CaptureResult{
		ID:         out.ID,
		Status:     out.Status,
		PayerEmail: out.Payer.EmailAddress,
	}
	if len(out.PurchaseUnits) > 0 && len(out.PurchaseUnits[0].Payments.Captures) > 0 {
		result.Amount = out.PurchaseUnits[0].Payments.Captures[0].Amount.Value
	}
	return result, nil
}
