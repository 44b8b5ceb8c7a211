package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/internal/infrastructure/models"
	"avilegal.backend/pkg/utils"
)

// ServiceRepository implements catalog data operations
type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) Create(ctx context.Context, service *entities.Service) error {
	if service.ID == uuid.Nil {
		service.ID = utils.GenerateUUIDv7()
	}
	m := serviceToModel(service)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	service.CreatedAt = m.CreatedAt
	service.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *ServiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Service, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *ServiceRepository) GetBySlug(ctx context.Context, slug string) (*entities.Service, error) {
	return r.getOne(ctx, "slug = ?", slug)
}

func (r *ServiceRepository) getOne(ctx context.Context, query string, arg interface{}) (*entities.Service, error) {
	var m models.Service
	if err := GetDB(ctx, r.db).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return serviceToEntity(&m), nil
}

// List returns services ordered by price
func (r *ServiceRepository) List(ctx context.Context, activeOnly bool) ([]*entities.Service, error) {
	query := GetDB(ctx, r.db).Order("price ASC, name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.Service
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Service, 0, len(rows))
	for i := range rows {
		out = append(out, serviceToEntity(&rows[i]))
	}
	return out, nil
}

func (r *ServiceRepository) Update(ctx context.Context, service *entities.Service) error {
	result := GetDB(ctx, r.db).Model(&models.Service{}).Where("id = ?", service.ID).Updates(map[string]interface{}{
		"name":            service.Name,
		"slug":            service.Slug,
		"description":     service.Description,
		"price":           service.Price,
		"processing_time": service.ProcessingTime,
		"is_active":       service.IsActive,
		"updated_at":      time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Delete soft deletes a service so historical applications keep their join
func (r *ServiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Delete(&models.Service{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ApplicationRepository implements application data operations
type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, app *entities.Application) error {
	if app.ID == uuid.Nil {
		app.ID = utils.GenerateUUIDv7()
	}
	m, err := applicationToModel(app)
	if err != nil {
		return err
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	app.CreatedAt = m.CreatedAt
	app.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Application, error) {
	var m models.Application
	err := lockingDB(ctx, r.db).
		Preload("Service", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("User").
		Preload("Milestones", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Documents", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return applicationToEntity(&m), nil
}

// List returns applications newest first with service and milestones
func (r *ApplicationRepository) List(ctx context.Context, filter entities.ApplicationFilter, page utils.PaginationParams) ([]*entities.Application, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Application{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Search != "" {
		query = query.Where("LOWER(company_name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Application
	if err := query.
		Preload("Service", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("User").
		Preload("Milestones", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at DESC").
		Scopes(paginate(page)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*entities.Application, 0, len(rows))
	for i := range rows {
		out = append(out, applicationToEntity(&rows[i]))
	}
	return out, total, nil
}

// Update persists the customer-editable fields. Only pending_payment rows are
// written; a submitted application yields ErrForbidden.
func (r *ApplicationRepository) Update(ctx context.Context, app *entities.Application) error {
	m, err := applicationToModel(app)
	if err != nil {
		return err
	}
	db := GetDB(ctx, r.db)
	result := db.Model(&models.Application{}).
		Where("id = ? AND status = ?", app.ID, string(entities.ApplicationStatusPendingPayment)).
		Updates(map[string]interface{}{
			"company_name":  m.CompanyName,
			"business_type": m.BusinessType,
			"details":       m.Details,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.Application{}).Where("id = ?", app.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domainerrors.ErrForbidden
		}
		return domainerrors.ErrNotFound
	}
	return nil
}

// TransitionStatus is a compare-and-set on status. fields are written with
// the new status.
func (r *ApplicationRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []entities.ApplicationStatus, to entities.ApplicationStatus, fields map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{
		"status":     string(to),
		"updated_at": time.Now(),
	}
	for k, v := range fields {
		updates[k] = v
	}
	sources := make([]string, 0, len(from))
	for _, s := range from {
		sources = append(sources, string(s))
	}

	result := GetDB(ctx, r.db).Model(&models.Application{}).
		Where("id = ? AND status IN ?", id, sources).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("application_id = ?", id).Delete(&models.Milestone{}).Error; err != nil {
		return err
	}
	result := db.Delete(&models.Application{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// CountByStatus tallies applications per status, optionally for one user
func (r *ApplicationRepository) CountByStatus(ctx context.Context, userID *uuid.UUID) (entities.ApplicationStatusCounts, error) {
	query := GetDB(ctx, r.db).Model(&models.Application{}).Select("status, COUNT(*) AS total").Group("status")
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	var rows []struct {
		Status string
		Total  int64
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(entities.ApplicationStatusCounts, len(rows))
	for _, row := range rows {
		out[entities.ApplicationStatus(row.Status)] = row.Total
	}
	return out, nil
}

// MilestoneRepository implements milestone data operations
type MilestoneRepository struct {
	db *gorm.DB
}

func NewMilestoneRepository(db *gorm.DB) *MilestoneRepository {
	return &MilestoneRepository{db: db}
}

func (r *MilestoneRepository) CreateBatch(ctx context.Context, milestones []*entities.Milestone) error {
	if len(milestones) == 0 {
		return nil
	}
	rows := make([]*models.Milestone, 0, len(milestones))
	for _, ms := range milestones {
		if ms.ID == uuid.Nil {
			ms.ID = utils.GenerateUUIDv7()
		}
		rows = append(rows, milestoneToModel(ms))
	}
	return GetDB(ctx, r.db).Create(&rows).Error
}

func (r *MilestoneRepository) ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]*entities.Milestone, error) {
	var rows []models.Milestone
	if err := GetDB(ctx, r.db).Where("application_id = ?", applicationID).Order("position ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Milestone, 0, len(rows))
	for i := range rows {
		out = append(out, milestoneToEntity(&rows[i]))
	}
	return out, nil
}

func (r *MilestoneRepository) CountByApplication(ctx context.Context, applicationID uuid.UUID) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&models.Milestone{}).Where("application_id = ?", applicationID).Count(&total).Error
	return total, err
}

func (r *MilestoneRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Milestone, error) {
	var m models.Milestone
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return milestoneToEntity(&m), nil
}

func (r *MilestoneRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.MilestoneStatus, completedAt *time.Time) error {
	result := GetDB(ctx, r.db).Model(&models.Milestone{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       string(status),
		"completed_at": completedAt,
		"updated_at":   time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *MilestoneRepository) StartByOrder(ctx context.Context, applicationID uuid.UUID, order int) error {
	return GetDB(ctx, r.db).Model(&models.Milestone{}).
		Where("application_id = ? AND position = ? AND status = ?", applicationID, order, string(entities.MilestoneStatusPending)).
		Updates(map[string]interface{}{
			"status":     string(entities.MilestoneStatusInProgress),
			"updated_at": time.Now(),
		}).Error
}

func (r *MilestoneRepository) StartNextAfter(ctx context.Context, applicationID uuid.UUID, order int) error {
	db := GetDB(ctx, r.db)
	var next models.Milestone
	err := db.Where("application_id = ? AND position > ?", applicationID, order).
		Order("position ASC").
		Take(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return r.StartByOrder(ctx, applicationID, next.Position)
}

// CompleteAll marks every unfinished milestone completed at the given time
func (r *MilestoneRepository) CompleteAll(ctx context.Context, applicationID uuid.UUID, at time.Time) error {
	return GetDB(ctx, r.db).Model(&models.Milestone{}).
		Where("application_id = ? AND status <> ?", applicationID, string(entities.MilestoneStatusCompleted)).
		Updates(map[string]interface{}{
			"status":       string(entities.MilestoneStatusCompleted),
			"completed_at": at,
			"updated_at":   time.Now(),
		}).Error
}
