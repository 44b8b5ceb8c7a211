package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service is a catalog offering customers can apply for
type Service struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Slug           string          `json:"slug"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	ProcessingTime string          `json:"processingTime"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// ServiceInput is used to create or update a catalog service
type ServiceInput struct {
	Name           string          `json:"name" binding:"required,max=255"`
	Slug           string          `json:"slug" binding:"omitempty,max=255"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price" binding:"required"`
	ProcessingTime string          `json:"processingTime" binding:"omitempty,max=100"`
	IsActive       *bool           `json:"isActive"`
}
