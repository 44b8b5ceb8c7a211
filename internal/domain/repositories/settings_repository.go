package repositories

import (
	"context"

	"github.com/google/uuid"

	"avilegal.backend/internal/domain/entities"
)

// SettingRepository defines key/value settings storage
type SettingRepository interface {
	All(ctx context.Context) (map[string]string, error)
	Upsert(ctx context.Context, key, value string) error
}

// EmailTemplateRepository defines email template storage
type EmailTemplateRepository interface {
	GetBySlug(ctx context.Context, slug string) (*entities.EmailTemplate, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entities.EmailTemplate, error)
	List(ctx context.Context) ([]*entities.EmailTemplate, error)
	Update(ctx context.Context, tpl *entities.EmailTemplate) error
	// Upsert inserts the template if its slug is absent, otherwise overwrites it.
	Upsert(ctx context.Context, tpl *entities.EmailTemplate) error
	// CreateIfMissing inserts the template only when the slug is absent.
	CreateIfMissing(ctx context.Context, tpl *entities.EmailTemplate) error
}
