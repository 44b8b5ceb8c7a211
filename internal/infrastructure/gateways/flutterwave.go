package gateways

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"avilegal.backend/internal/domain/entities"
)

const DefaultFlutterwaveBaseURL = "https://api.flutterwave.com"

// Flutterwave talks to the Flutterwave v3 API. Amounts are sent in naira.
type Flutterwave struct {
	client  *resty.Client
	secrets SecretSource
}

func NewFlutterwave(baseURL string, timeout time.Duration, secrets SecretSource) *Flutterwave {
	if baseURL == "" {
		baseURL = DefaultFlutterwaveBaseURL
	}
	return &Flutterwave{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		secrets: secrets,
	}
}

func (f *Flutterwave) Name() string { return entities.GatewayFlutterwave }

func (f *Flutterwave) Configured(ctx context.Context) bool {
	return f.secretKey(ctx) != ""
}

func (f *Flutterwave) secretKey(ctx context.Context) string {
	key, err := f.secrets.Get(ctx, entities.SettingFlutterwaveSecretKey)
	if err != nil {
		return ""
	}
	return key
}

type flutterwaveEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type flutterwaveVerifyData struct {
	Status        string          `json:"status"`
	TxRef         string          `json:"tx_ref"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	ProcessorResp string          `json:"processor_response"`
	CreatedAt     string          `json:"created_at"`
}

func (f *Flutterwave) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	currency := req.Currency
	if currency == "" {
		currency = entities.DefaultCurrency
	}
	body := map[string]interface{}{
		"tx_ref":       req.Reference,
		"amount":       req.Amount.StringFixed(2),
		"currency":     currency,
		"redirect_url": req.CallbackURL,
		"customer": map[string]string{
			"email":       req.Customer.Email,
			"name":        req.Customer.Name,
			"phonenumber": req.Customer.Phone,
		},
		"meta": req.Metadata,
		"customizations": map[string]string{
			"title":       req.Title,
			"description": req.Description,
		},
	}

	var env flutterwaveEnvelope
	resp, err := f.client.R().
		SetContext(ctx).
		SetAuthToken(f.secretKey(ctx)).
		SetBody(body).
		Post("/v3/payments")
	if err != nil {
		return nil, transportError(f.Name(), err)
	}
	_ = json.Unmarshal(resp.Body(), &env)
	if resp.IsError() || env.Status != "success" {
		return nil, providerError(f.Name(), resp.StatusCode(), env.Message)
	}

	var data struct {
		Link string `json:"link"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Link == "" {
		return nil, providerError(f.Name(), resp.StatusCode(), "missing payment link")
	}
	return &InitializeResponse{AuthorizationURL: data.Link, Raw: resp.Body()}, nil
}

func (f *Flutterwave) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	var env flutterwaveEnvelope
	resp, err := f.client.R().
		SetContext(ctx).
		SetAuthToken(f.secretKey(ctx)).
		SetQueryParam("tx_ref", reference).
		Get("/v3/transactions/verify_by_reference")
	if err != nil {
		return nil, transportError(f.Name(), err)
	}
	_ = json.Unmarshal(resp.Body(), &env)
	if resp.IsError() || env.Status != "success" {
		return nil, providerError(f.Name(), resp.StatusCode(), env.Message)
	}

	var data flutterwaveVerifyData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, providerError(f.Name(), resp.StatusCode(), "malformed verify payload")
	}

	result := &VerifyResult{
		Message:  data.ProcessorResp,
		Amount:   data.Amount,
		Currency: data.Currency,
		PaidAt:   parseTime(data.CreatedAt),
		Raw:      resp.Body(),
	}
	switch data.Status {
	case "successful":
		result.Status = VerifyStatusSuccess
	case "failed":
		result.Status = VerifyStatusFailed
	default:
		result.Status = VerifyStatusPending
	}
	if result.Message == "" {
		result.Message = data.Status
	}
	return result, nil
}
