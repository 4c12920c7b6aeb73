package providers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/AfricaChange/AfricaChange/src/types"
)

const waveCheckoutURL = "https://api.wave.com/v1/checkout/sessions"

type WaveProvider struct {
	apiKey        string
	webhookSecret string
	currency      string
	httpClient    *http.Client
}

func NewWaveProvider() (*WaveProvider, error) {
	p := &WaveProvider{
		apiKey:        os.Getenv("WAVE_API_KEY"),
		webhookSecret: os.Getenv("WAVE_WEBHOOK_SECRET"),
		currency:      os.Getenv("WAVE_CURRENCY"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	if p.currency == "" {
		p.currency = "XOF"
	}
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: wave", ErrMissingConfig)
	}
	return p, nil
}

func (p *WaveProvider) Name() string {
	return "Wave"
}

func (p *WaveProvider) Initiate(ctx context.Context, params InitiateParams) (*InitiateResult, error) {
	payload := map[string]any{
		"amount":               int64(params.Amount),
		"currency":             p.currency,
		"client_reference":     params.Reference,
		"success_redirect_url": params.ReturnURL,
		"cancel_redirect_url":  params.ReturnURL,
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, waveCheckoutURL, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("wave checkout failed with status %d: %s", resp.StatusCode, string(msg))
	}
	var body struct {
		CheckoutURL string `json:"checkout_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return &InitiateResult{
		PaymentURL:        body.CheckoutURL,
		ProviderReference: params.Reference,
	}, nil
}

func (p *WaveProvider) SignatureHeader() string {
	return "Wave-Signature"
}

// VerifyCallback checks the Wave-Signature header: hex-encoded
// HMAC-SHA256 over the raw body against the webhook secret.
func (p *WaveProvider) VerifyCallback(raw []byte, signature string) bool {
	if p.webhookSecret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(p.webhookSecret))
	mac.Write(raw)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

var waveStatusMap = map[string]types.TransactionStatus{
	"succeeded":  types.TRANSACTION_VALID,
	"processing": types.TRANSACTION_PENDING,
	"cancelled":  types.TRANSACTION_FAILED,
	"failed":     types.TRANSACTION_FAILED,
	"expired":    types.TRANSACTION_FAILED,
}

func (p *WaveProvider) Normalize(payload types.JSONB) (*Callback, error) {
	reference := payloadString(payload, "client_reference")
	external := payloadString(payload, "payment_status", "status")
	mapped, ok := waveStatusMap[strings.ToLower(external)]
	if !ok {
		return nil, fmt.Errorf("%w: wave %q", ErrUnknownStatus, external)
	}
	cb := &Callback{
		Reference: reference,
		Status:    mapped,
		// Mapped status in the event type: processing and succeeded
		// events for the same session dedup independently.
		EventType: "callback_" + string(mapped),
	}
	// Wave checkout session ids are single-use; they double as the
	// replay nonce.
	if nonce := payloadString(payload, "id", "checkout_session_id"); nonce != "" {
		cb.Nonce = &nonce
	}
	return cb, nil
}
