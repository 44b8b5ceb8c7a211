package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/internal/infrastructure/models"
	"avilegal.backend/pkg/utils"
)

// DocumentRepository implements document data operations
type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *entities.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = utils.GenerateUUIDv7()
	}
	m := documentToModel(doc)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	doc.CreatedAt = m.CreatedAt
	doc.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Document, error) {
	var m models.Document
	if err := GetDB(ctx, r.db).Preload("User").Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return documentToEntity(&m), nil
}

func (r *DocumentRepository) List(ctx context.Context, filter entities.DocumentFilter, page utils.PaginationParams) ([]*entities.Document, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Document{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.ApplicationID != nil {
		query = query.Where("application_id = ?", *filter.ApplicationID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Document
	if err := query.Preload("User").Order("created_at DESC").Scopes(paginate(page)).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*entities.Document, 0, len(rows))
	for i := range rows {
		out = append(out, documentToEntity(&rows[i]))
	}
	return out, total, nil
}

// Review only moves pending documents. false means the document was no
// longer pending.
func (r *DocumentRepository) Review(ctx context.Context, id uuid.UUID, status entities.DocumentStatus, reason null.String) (bool, error) {
	result := GetDB(ctx, r.db).Model(&models.Document{}).
		Where("id = ? AND status = ?", id, string(entities.DocumentStatusPending)).
		Updates(map[string]interface{}{
			"status":           string(status),
			"rejection_reason": reason.Ptr(),
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Delete(&models.Document{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *DocumentRepository) DetachFromApplication(ctx context.Context, applicationID uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&models.Document{}).
		Where("application_id = ?", applicationID).
		Updates(map[string]interface{}{
			"application_id": nil,
			"updated_at":     time.Now(),
		}).Error
}
