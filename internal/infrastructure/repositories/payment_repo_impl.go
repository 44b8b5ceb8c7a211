package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/internal/infrastructure/models"
	"avilegal.backend/pkg/utils"
)

// PaymentRepository implements payment data operations
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create creates a new payment
func (r *PaymentRepository) Create(ctx context.Context, payment *entities.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = utils.GenerateUUIDv7()
	}
	if payment.Currency == "" {
		payment.Currency = entities.DefaultCurrency
	}
	m := paymentToModel(payment)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	payment.CreatedAt = m.CreatedAt
	payment.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a payment by ID with its application and service
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Payment, error) {
	var m models.Payment
	if err := GetDB(ctx, r.db).
		Preload("Application").
		Preload("Application.Service", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("id = ?", id).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return paymentToEntity(&m), nil
}

// GetByReference reads the bare payment row, taking a row lock when asked
func (r *PaymentRepository) GetByReference(ctx context.Context, reference string) (*entities.Payment, error) {
	var m models.Payment
	if err := lockingDB(ctx, r.db).Where("reference = ?", reference).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return paymentToEntity(&m), nil
}

// List lists payments newest first with application, service and payer
func (r *PaymentRepository) List(ctx context.Context, filter entities.PaymentFilter, page utils.PaginationParams) ([]*entities.Payment, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Payment{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Gateway != "" {
		query = query.Where("gateway = ?", filter.Gateway)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Payment
	if err := query.
		Preload("Application").
		Preload("Application.Service", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("User").
		Order("created_at DESC").
		Scopes(paginate(page)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*entities.Payment, 0, len(rows))
	for i := range rows {
		out = append(out, paymentToEntity(&rows[i]))
	}
	return out, total, nil
}

// MarkSuccess is conditional on the payment not already being successful so
// concurrent verifications flip it exactly once.
func (r *PaymentRepository) MarkSuccess(ctx context.Context, id uuid.UUID, paidAt time.Time, gatewayResponse []byte) (bool, error) {
	updates := map[string]interface{}{
		"status":     string(entities.PaymentStatusSuccess),
		"paid_at":    paidAt,
		"last_error": nil,
		"updated_at": time.Now(),
	}
	if len(gatewayResponse) > 0 {
		updates["gateway_response"] = string(gatewayResponse)
	}
	result := GetDB(ctx, r.db).Model(&models.Payment{}).
		Where("id = ? AND status <> ?", id, string(entities.PaymentStatusSuccess)).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PaymentRepository) RecordVerifyFailure(ctx context.Context, id uuid.UUID, lastError string, markFailed bool) error {
	updates := map[string]interface{}{
		"verify_attempts": gorm.Expr("verify_attempts + 1"),
		"last_error":      lastError,
		"updated_at":      time.Now(),
	}
	if markFailed {
		updates["status"] = string(entities.PaymentStatusFailed)
	}
	result := GetDB(ctx, r.db).Model(&models.Payment{}).
		Where("id = ? AND status <> ?", id, string(entities.PaymentStatusSuccess)).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *PaymentRepository) DeletePendingByApplication(ctx context.Context, applicationID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("application_id = ? AND status <> ?", applicationID, string(entities.PaymentStatusSuccess)).
		Delete(&models.Payment{}).Error
}

// ExpirePending fails up to limit pending payments created before olderThan
func (r *PaymentRepository) ExpirePending(ctx context.Context, olderThan time.Time, limit int) (int64, error) {
	db := GetDB(ctx, r.db)
	ids := db.Model(&models.Payment{}).
		Select("id").
		Where("status = ? AND created_at < ?", string(entities.PaymentStatusPending), olderThan).
		Order("created_at ASC").
		Limit(limit)

	result := db.Model(&models.Payment{}).
		Where("id IN (?)", ids).
		Updates(map[string]interface{}{
			"status":     string(entities.PaymentStatusFailed),
			"last_error": "expired",
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

func (r *PaymentRepository) SumSuccessful(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	row := GetDB(ctx, r.db).Model(&models.Payment{}).
		Select("SUM(amount)").
		Where("status = ?", string(entities.PaymentStatusSuccess)).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
