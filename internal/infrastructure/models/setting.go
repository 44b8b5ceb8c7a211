package models

import (
	"time"

	"github.com/google/uuid"
)

type Setting struct {
	Key       string `gorm:"type:varchar(100);primaryKey"`
	Value     string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type EmailTemplate struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Slug        string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Subject     string    `gorm:"type:varchar(255);not null"`
	Body        string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text"`
	Variables   string    `gorm:"type:jsonb"`
	IsActive    bool      `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
