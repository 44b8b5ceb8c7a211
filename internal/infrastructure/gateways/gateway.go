package gateways

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/shopspring/decimal"

	domainerrors "avilegal.backend/internal/domain/errors"
)

// Gateway is a payment provider adapter.
type Gateway interface {
	Name() string
	// Configured reports whether credentials are present. It is checked
	// before any payment row is written.
	Configured(ctx context.Context) bool
	Initialize(ctx context.Context, req InitializeRequest) (*InitializeResponse, error)
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
}

// SecretSource reads gateway credentials at call time.
type SecretSource interface {
	Get(ctx context.Context, key string) (string, error)
}

type Customer struct {
	Email string
	Name  string
	Phone string
}

type InitializeRequest struct {
	Reference   string
	Amount      decimal.Decimal
	Currency    string
	Customer    Customer
	CallbackURL string
	// Title and Description label the hosted checkout page.
	Title       string
	Description string
	Metadata    map[string]string
}

type InitializeResponse struct {
	AuthorizationURL string
	Raw              json.RawMessage
}

// VerifyStatus is the normalized provider verdict.
type VerifyStatus string

const (
	VerifyStatusSuccess VerifyStatus = "success"
	VerifyStatusPending VerifyStatus = "pending"
	VerifyStatusFailed  VerifyStatus = "failed"
)

type VerifyResult struct {
	Status   VerifyStatus
	Message  string
	Amount   decimal.Decimal
	Currency string
	PaidAt   *time.Time
	Raw      json.RawMessage
}

func (r *VerifyResult) Success() bool {
	return r != nil && r.Status == VerifyStatusSuccess
}

// transportError maps a client failure to ErrGatewayTimeout or ErrGatewayError.
func transportError(gateway string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%s: %w: %v", gateway, domainerrors.ErrGatewayTimeout, err)
	}
	return fmt.Errorf("%s: %w: %v", gateway, domainerrors.ErrGatewayError, err)
}

func providerError(gateway string, status int, message string) error {
	if message == "" {
		message = "unexpected response"
	}
	return fmt.Errorf("%s: %w: status %d: %s", gateway, domainerrors.ErrGatewayError, status, message)
}

func parseTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000Z"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}
