package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name           string          `gorm:"type:varchar(255);not null"`
	Slug           string          `gorm:"type:varchar(255);uniqueIndex;not null"`
	Description    string          `gorm:"type:text"`
	Price          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ProcessingTime string          `gorm:"type:varchar(100)"`
	IsActive       bool            `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

type Application struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	ServiceID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	CompanyName  string     `gorm:"type:varchar(255);not null"`
	BusinessType *string    `gorm:"type:varchar(100)"`
	Details      string     `gorm:"type:jsonb"`
	Status       string     `gorm:"type:varchar(30);not null;index"`
	AdminNotes   *string    `gorm:"type:text"`
	SubmittedAt  *time.Time `gorm:"type:timestamp"`
	CompletedAt  *time.Time `gorm:"type:timestamp"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Service    *Service    `gorm:"foreignKey:ServiceID"`
	User       *User       `gorm:"foreignKey:UserID"`
	Milestones []Milestone `gorm:"foreignKey:ApplicationID"`
	Documents  []Document  `gorm:"foreignKey:ApplicationID"`
	Payments   []Payment   `gorm:"foreignKey:ApplicationID"`
}

type Milestone struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ApplicationID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title         string     `gorm:"type:varchar(255);not null"`
	Description   string     `gorm:"type:text"`
	Status        string     `gorm:"type:varchar(20);not null"`
	Position      int        `gorm:"not null"`
	CompletedAt   *time.Time `gorm:"type:timestamp"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
