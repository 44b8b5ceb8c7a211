package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/internal/infrastructure/models"
	"avilegal.backend/pkg/utils"
)

// SettingRepository implements key/value settings storage
type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) All(ctx context.Context) (map[string]string, error) {
	var rows []models.Setting
	if err := GetDB(ctx, r.db).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, s := range rows {
		out[s.Key] = s.Value
	}
	return out, nil
}

func (r *SettingRepository) Upsert(ctx context.Context, key, value string) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&models.Setting{Key: key, Value: value}).Error
}

// EmailTemplateRepository implements email template storage
type EmailTemplateRepository struct {
	db *gorm.DB
}

func NewEmailTemplateRepository(db *gorm.DB) *EmailTemplateRepository {
	return &EmailTemplateRepository{db: db}
}

func (r *EmailTemplateRepository) GetBySlug(ctx context.Context, slug string) (*entities.EmailTemplate, error) {
	return r.getOne(ctx, "slug = ?", slug)
}

func (r *EmailTemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.EmailTemplate, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *EmailTemplateRepository) getOne(ctx context.Context, query string, arg interface{}) (*entities.EmailTemplate, error) {
	var m models.EmailTemplate
	if err := GetDB(ctx, r.db).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return templateToEntity(&m), nil
}

func (r *EmailTemplateRepository) List(ctx context.Context) ([]*entities.EmailTemplate, error) {
	var rows []models.EmailTemplate
	if err := GetDB(ctx, r.db).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.EmailTemplate, 0, len(rows))
	for i := range rows {
		out = append(out, templateToEntity(&rows[i]))
	}
	return out, nil
}

// Update writes the editable fields: subject, body and active flag
func (r *EmailTemplateRepository) Update(ctx context.Context, tpl *entities.EmailTemplate) error {
	result := GetDB(ctx, r.db).Model(&models.EmailTemplate{}).Where("id = ?", tpl.ID).Updates(map[string]interface{}{
		"subject":    tpl.Subject,
		"body":       tpl.Body,
		"is_active":  tpl.IsActive,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *EmailTemplateRepository) Upsert(ctx context.Context, tpl *entities.EmailTemplate) error {
	return r.insert(ctx, tpl, clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "subject", "body", "description", "variables", "is_active", "updated_at"}),
	})
}

func (r *EmailTemplateRepository) CreateIfMissing(ctx context.Context, tpl *entities.EmailTemplate) error {
	return r.insert(ctx, tpl, clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	})
}

func (r *EmailTemplateRepository) insert(ctx context.Context, tpl *entities.EmailTemplate, onConflict clause.OnConflict) error {
	if tpl.ID == uuid.Nil {
		tpl.ID = utils.GenerateUUIDv7()
	}
	m, err := templateToModel(tpl)
	if err != nil {
		return err
	}
	return GetDB(ctx, r.db).Clauses(onConflict).Create(m).Error
}
