package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"avilegal.backend/internal/domain/entities"
	"avilegal.backend/pkg/utils"
)

// ServiceRepository defines catalog data operations
type ServiceRepository interface {
	Create(ctx context.Context, service *entities.Service) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Service, error)
	GetBySlug(ctx context.Context, slug string) (*entities.Service, error)
	List(ctx context.Context, activeOnly bool) ([]*entities.Service, error)
	Update(ctx context.Context, service *entities.Service) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ApplicationRepository defines application data operations
type ApplicationRepository interface {
	Create(ctx context.Context, app *entities.Application) error
	// GetByID loads the application with its service, user, milestones,
	// documents and payments.
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Application, error)
	List(ctx context.Context, filter entities.ApplicationFilter, page utils.PaginationParams) ([]*entities.Application, int64, error)
	Update(ctx context.Context, app *entities.Application) error
	// TransitionStatus moves the application from one status to another and
	// reports whether a row changed.
	TransitionStatus(ctx context.Context, id uuid.UUID, from []entities.ApplicationStatus, to entities.ApplicationStatus, fields map[string]interface{}) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context, userID *uuid.UUID) (entities.ApplicationStatusCounts, error)
}

// MilestoneRepository defines milestone data operations
type MilestoneRepository interface {
	CreateBatch(ctx context.Context, milestones []*entities.Milestone) error
	ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]*entities.Milestone, error)
	CountByApplication(ctx context.Context, applicationID uuid.UUID) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Milestone, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.MilestoneStatus, completedAt *time.Time) error
	// StartByOrder sets the milestone at order to in_progress if it is pending.
	StartByOrder(ctx context.Context, applicationID uuid.UUID, order int) error
	// StartNextAfter starts the first milestone ordered after order, if it
	// is pending. Gaps in the ordering are allowed.
	StartNextAfter(ctx context.Context, applicationID uuid.UUID, order int) error
	CompleteAll(ctx context.Context, applicationID uuid.UUID, at time.Time) error
}
