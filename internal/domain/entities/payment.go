package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Gateway identifiers
const (
	GatewayPaystack    = "paystack"
	GatewayFlutterwave = "flutterwave"
)

const (
	DefaultCurrency = "NGN"
	ReferencePrefix = "AVL-"
)

// Payment represents a gateway charge for an application
type Payment struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"userId"`
	ApplicationID   uuid.UUID       `json:"applicationId"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Reference       string          `json:"reference"`
	Gateway         string          `json:"gateway"`
	Status          PaymentStatus   `json:"status"`
	GatewayResponse null.JSON       `json:"gatewayResponse,omitempty"`
	VerifyAttempts  int             `json:"verifyAttempts"`
	LastError       null.String     `json:"-"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`

	// Joins
	Application *Application `json:"application,omitempty"`
	User        *User        `json:"user,omitempty"`
}

// InitializePaymentInput starts checkout. When ApplicationID is set the
// payment is retried for an existing unpaid application and the remaining
// application fields are ignored.
type InitializePaymentInput struct {
	ApplicationID *uuid.UUID         `json:"applicationId"`
	ServiceID     uuid.UUID          `json:"serviceId"`
	Gateway       string             `json:"gateway" binding:"required,oneof=paystack flutterwave"`
	CompanyName   string             `json:"companyName" binding:"omitempty,max=255"`
	BusinessType  string             `json:"businessType" binding:"omitempty,max=100"`
	Details       ApplicationDetails `json:"details"`
}

// InitializePaymentResult is returned to the client to redirect to checkout
type InitializePaymentResult struct {
	AuthorizationURL string    `json:"authorizationUrl"`
	Reference        string    `json:"reference"`
	PaymentID        uuid.UUID `json:"paymentId"`
	ApplicationID    uuid.UUID `json:"applicationId"`
}

// VerifyPaymentInput identifies the payment to verify
type VerifyPaymentInput struct {
	Reference string `json:"reference" binding:"required"`
}

// VerifyPaymentResult reports the verification outcome
type VerifyPaymentResult struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message"`
	Payment     *Payment     `json:"payment"`
	Application *Application `json:"application,omitempty"`
}

// PaymentFilter narrows payment listings
type PaymentFilter struct {
	UserID  *uuid.UUID
	Status  PaymentStatus
	Gateway string
}

// PaymentPublicConfig exposes client-side gateway keys
type PaymentPublicConfig struct {
	PaystackPublicKey    string   `json:"paystackPublicKey"`
	FlutterwavePublicKey string   `json:"flutterwavePublicKey"`
	EnabledGateways      []string `json:"enabledGateways"`
}
