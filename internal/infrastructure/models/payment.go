package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

type Payment struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ApplicationID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency        string          `gorm:"type:varchar(3);not null;default:'NGN'"`
	Reference       string          `gorm:"type:varchar(50);uniqueIndex;not null"`
	Gateway         string          `gorm:"type:varchar(20);not null"`
	Status          string          `gorm:"type:varchar(20);not null;index"`
	GatewayResponse null.JSON       `gorm:"type:jsonb"`
	VerifyAttempts  int             `gorm:"not null;default:0"`
	LastError       *string         `gorm:"type:text"`
	PaidAt          *time.Time      `gorm:"type:timestamp"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Application *Application `gorm:"foreignKey:ApplicationID"`
	User        *User        `gorm:"foreignKey:UserID"`
}

type Document struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	ApplicationID   *uuid.UUID `gorm:"type:uuid;index"`
	Name            string     `gorm:"type:varchar(255);not null"`
	Type            string     `gorm:"type:varchar(50);not null"`
	FilePath        string     `gorm:"type:varchar(500);not null"`
	FileName        string     `gorm:"type:varchar(255);not null"`
	FileSize        int64      `gorm:"not null"`
	MimeType        string     `gorm:"type:varchar(100)"`
	Status          string     `gorm:"type:varchar(20);not null;index"`
	RejectionReason *string    `gorm:"type:text"`
	UploadedByAdmin bool       `gorm:"not null;default:false"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	User *User `gorm:"foreignKey:UserID"`
}
