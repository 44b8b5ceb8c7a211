package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"avilegal.backend/internal/domain/entities"
	"avilegal.backend/pkg/utils"
)

// PaymentRepository defines payment data operations
type PaymentRepository interface {
	Create(ctx context.Context, payment *entities.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Payment, error)
	// GetByReference honours WithLock when called inside a unit of work.
	GetByReference(ctx context.Context, reference string) (*entities.Payment, error)
	List(ctx context.Context, filter entities.PaymentFilter, page utils.PaginationParams) ([]*entities.Payment, int64, error)
	// MarkSuccess flips a non-successful payment to success and reports
	// whether this call performed the change.
	MarkSuccess(ctx context.Context, id uuid.UUID, paidAt time.Time, gatewayResponse []byte) (bool, error)
	// RecordVerifyFailure increments the attempt counter and stores the error.
	// When markFailed is set a pending payment also moves to failed.
	RecordVerifyFailure(ctx context.Context, id uuid.UUID, lastError string, markFailed bool) error
	DeletePendingByApplication(ctx context.Context, applicationID uuid.UUID) error
	ExpirePending(ctx context.Context, olderThan time.Time, limit int) (int64, error)
	SumSuccessful(ctx context.Context) (decimal.Decimal, error)
}
