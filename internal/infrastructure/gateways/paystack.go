package gateways

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"avilegal.backend/internal/domain/entities"
)

const DefaultPaystackBaseURL = "https://api.paystack.co"

var koboPerNaira = decimal.NewFromInt(100)

// Paystack talks to the Paystack transaction API. Amounts are sent in kobo.
type Paystack struct {
	client  *resty.Client
	secrets SecretSource
}

func NewPaystack(baseURL string, timeout time.Duration, secrets SecretSource) *Paystack {
	if baseURL == "" {
		baseURL = DefaultPaystackBaseURL
	}
	return &Paystack{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		secrets: secrets,
	}
}

func (p *Paystack) Name() string { return entities.GatewayPaystack }

func (p *Paystack) Configured(ctx context.Context) bool {
	return p.secretKey(ctx) != ""
}

func (p *Paystack) secretKey(ctx context.Context) string {
	key, err := p.secrets.Get(ctx, entities.SettingPaystackSecretKey)
	if err != nil {
		return ""
	}
	return key
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type paystackInitData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type paystackVerifyData struct {
	Status          string `json:"status"`
	Reference       string `json:"reference"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	GatewayResponse string `json:"gateway_response"`
	PaidAt          string `json:"paid_at"`
}

func (p *Paystack) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	body := map[string]interface{}{
		"email":        req.Customer.Email,
		"amount":       req.Amount.Mul(koboPerNaira).Round(0).IntPart(),
		"reference":    req.Reference,
		"callback_url": req.CallbackURL,
		"metadata":     req.Metadata,
	}
	if req.Currency != "" {
		body["currency"] = req.Currency
	}

	var env paystackEnvelope
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.secretKey(ctx)).
		SetBody(body).
		Post("/transaction/initialize")
	if err != nil {
		return nil, transportError(p.Name(), err)
	}
	_ = json.Unmarshal(resp.Body(), &env)
	if resp.IsError() || !env.Status {
		return nil, providerError(p.Name(), resp.StatusCode(), env.Message)
	}

	var data paystackInitData
	if err := json.Unmarshal(env.Data, &data); err != nil || data.AuthorizationURL == "" {
		return nil, providerError(p.Name(), resp.StatusCode(), "missing authorization url")
	}
	return &InitializeResponse{AuthorizationURL: data.AuthorizationURL, Raw: resp.Body()}, nil
}

func (p *Paystack) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	var env paystackEnvelope
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.secretKey(ctx)).
		Get("/transaction/verify/" + url.PathEscape(reference))
	if err != nil {
		return nil, transportError(p.Name(), err)
	}
	_ = json.Unmarshal(resp.Body(), &env)
	if resp.IsError() || !env.Status {
		return nil, providerError(p.Name(), resp.StatusCode(), env.Message)
	}

	var data paystackVerifyData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, providerError(p.Name(), resp.StatusCode(), "malformed verify payload")
	}

	result := &VerifyResult{
		Message:  data.GatewayResponse,
		Amount:   decimal.NewFromInt(data.Amount).Div(koboPerNaira),
		Currency: data.Currency,
		PaidAt:   parseTime(data.PaidAt),
		Raw:      resp.Body(),
	}
	switch data.Status {
	case "success":
		result.Status = VerifyStatusSuccess
	case "failed", "reversed":
		result.Status = VerifyStatusFailed
	default:
		result.Status = VerifyStatusPending
	}
	if result.Message == "" {
		result.Message = data.Status
	}
	return result, nil
}
