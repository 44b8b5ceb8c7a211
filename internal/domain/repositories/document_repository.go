package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"avilegal.backend/internal/domain/entities"
	"avilegal.backend/pkg/utils"
)

// DocumentRepository defines document data operations
type DocumentRepository interface {
	Create(ctx context.Context, doc *entities.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Document, error)
	List(ctx context.Context, filter entities.DocumentFilter, page utils.PaginationParams) ([]*entities.Document, int64, error)
	// Review moves a pending document to status and reports whether it changed.
	Review(ctx context.Context, id uuid.UUID, status entities.DocumentStatus, reason null.String) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DetachFromApplication(ctx context.Context, applicationID uuid.UUID) error
}
