package providers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/AfricaChange/AfricaChange/src/types"
)

const (
	orangeTokenURL   = "https://api.orange.com/oauth/v3/token"
	orangePaymentURL = "https://api.orange.com/orange-money-webpay/dev/v1/webpayment"
)

type OrangeProvider struct {
	clientID      string
	clientSecret  string
	merchantKey   string
	webhookSecret string
	currency      string
	httpClient    *http.Client
}

func NewOrangeProvider() (*OrangeProvider, error) {
	p := &OrangeProvider{
		clientID:      os.Getenv("ORANGE_CLIENT_ID"),
		clientSecret:  os.Getenv("ORANGE_CLIENT_SECRET"),
		merchantKey:   os.Getenv("ORANGE_MERCHANT_KEY"),
		webhookSecret: os.Getenv("ORANGE_WEBHOOK_SECRET"),
		currency:      os.Getenv("ORANGE_CURRENCY"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	if p.currency == "" {
		p.currency = "XOF"
	}
	if p.clientID == "" || p.clientSecret == "" || p.merchantKey == "" {
		return nil, fmt.Errorf("%w: orange", ErrMissingConfig)
	}
	return p, nil
}

func (p *OrangeProvider) Name() string {
	return "Orange Money"
}

func (p *OrangeProvider) getToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString([]byte(p.clientID + ":" + p.clientSecret))
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, orangeTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("orange token request failed with status %d", resp.StatusCode)
	}
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.AccessToken, nil
}

func (p *OrangeProvider) Initiate(ctx context.Context, params InitiateParams) (*InitiateResult, error) {
	token, err := p.getToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("orange auth failed: %w", err)
	}

	payload := map[string]any{
		"merchant_key": p.merchantKey,
		"currency":     p.currency,
		"order_id":     params.Reference,
		"amount":       fmt.Sprint(int64(params.Amount)),
		"return_url":   params.ReturnURL,
		"payer_phone":  params.Phone,
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, orangePaymentURL, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("orange webpayment failed with status %d: %s", resp.StatusCode, string(msg))
	}
	var body struct {
		PaymentURL string `json:"payment_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return &InitiateResult{
		PaymentURL:        body.PaymentURL,
		ProviderReference: params.Reference,
	}, nil
}

func (p *OrangeProvider) SignatureHeader() string {
	return "X-Orange-Signature"
}

// VerifyCallback checks the X-Orange-Signature header: hex-encoded
// HMAC-SHA256 over the raw body, compared in constant time.
func (p *OrangeProvider) VerifyCallback(raw []byte, signature string) bool {
	if p.webhookSecret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(p.webhookSecret))
	mac.Write(raw)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

var orangeStatusMap = map[string]types.TransactionStatus{
	"SUCCESS":   types.TRANSACTION_VALID,
	"INITIATED": types.TRANSACTION_PENDING,
	"PENDING":   types.TRANSACTION_PENDING,
	"FAILED":    types.TRANSACTION_FAILED,
	"EXPIRED":   types.TRANSACTION_FAILED,
}

func (p *OrangeProvider) Normalize(payload types.JSONB) (*Callback, error) {
	reference := payloadString(payload, "order_id")
	external := payloadString(payload, "status")
	mapped, ok := orangeStatusMap[strings.ToUpper(external)]
	if !ok {
		return nil, fmt.Errorf("%w: orange %q", ErrUnknownStatus, external)
	}
	cb := &Callback{
		Reference: reference,
		Status:    mapped,
		// The event type carries the mapped status so staged lifecycle
		// notifications (INITIATED, then SUCCESS) dedup independently
		// while identical redeliveries still collide.
		EventType: "callback_" + string(mapped),
	}
	if nonce := payloadString(payload, "notif_token"); nonce != "" {
		cb.Nonce = &nonce
	}
	return cb, nil
}
