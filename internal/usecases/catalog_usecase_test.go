package usecases_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/internal/usecases"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "business-name-registration", usecases.Slugify("  Business Name: Registration! "))
	assert.Equal(t, "llc-2024", usecases.Slugify("LLC -- 2024"))
	assert.Equal(t, "", usecases.Slugify("***"))
}

func TestServiceUsecase_Create(t *testing.T) {
	repo := new(MockServiceRepository)
	uc := usecases.NewServiceUsecase(repo)
	repo.On("GetBySlug", mock.Anything, "company-registration").Return(nil, domainerrors.ErrNotFound)
	repo.On("GetBySlug", mock.Anything, "taken").Return(&entities.Service{ID: uuid.New()}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc, err := uc.Create(context.Background(), &entities.ServiceInput{
		Name:  "Company Registration",
		Price: decimal.RequireFromString("150000.456"),
	})
	require.NoError(t, err)
	assert.Equal(t, "company-registration", svc.Slug)
	assert.True(t, svc.IsActive)
	assert.Equal(t, "150000.46", svc.Price.StringFixed(2))

	_, err = uc.Create(context.Background(), &entities.ServiceInput{Name: "X", Slug: "taken"})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)

	_, err = uc.Create(context.Background(), &entities.ServiceInput{Name: "X", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestServiceUsecase_UpdateKeepsOwnSlug(t *testing.T) {
	repo := new(MockServiceRepository)
	uc := usecases.NewServiceUsecase(repo)
	svc := &entities.Service{ID: uuid.New(), Slug: "llc", IsActive: true}
	repo.On("GetByID", mock.Anything, svc.ID).Return(svc, nil)
	repo.On("GetBySlug", mock.Anything, "llc").Return(svc, nil)
	repo.On("Update", mock.Anything, svc).Return(nil)

	inactive := false
	got, err := uc.Update(context.Background(), svc.ID, &entities.ServiceInput{Name: "LLC", Price: decimal.NewFromInt(10), IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestServiceUsecase_GetActiveBySlug(t *testing.T) {
	repo := new(MockServiceRepository)
	uc := usecases.NewServiceUsecase(repo)
	repo.On("GetBySlug", mock.Anything, "live").Return(&entities.Service{IsActive: true}, nil)
	repo.On("GetBySlug", mock.Anything, "retired").Return(&entities.Service{IsActive: false}, nil)

	_, err := uc.GetActiveBySlug(context.Background(), "live")
	assert.NoError(t, err)
	_, err = uc.GetActiveBySlug(context.Background(), "retired")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestDashboardUsecase(t *testing.T) {
	apps := new(MockApplicationRepository)
	users := new(MockUserRepository)
	payments := new(MockPaymentRepository)
	uc := usecases.NewDashboardUsecase(apps, users, payments)
	userID := uuid.New()

	apps.On("CountByStatus", mock.Anything, &userID).Return(entities.ApplicationStatusCounts{
		entities.ApplicationStatusPendingPayment: 1,
		entities.ApplicationStatusPending:        2,
		entities.ApplicationStatusCompleted:      3,
	}, nil)
	stats, err := uc.CustomerStats(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, &entities.CustomerDashboardStats{TotalApplications: 6, Pending: 3, Completed: 3}, stats)

	apps.On("CountByStatus", mock.Anything, (*uuid.UUID)(nil)).Return(entities.ApplicationStatusCounts{
		entities.ApplicationStatusPending:    4,
		entities.ApplicationStatusProcessing: 1,
	}, nil)
	users.On("CountByRole", mock.Anything, entities.RoleCustomer).Return(int64(12), nil)
	payments.On("SumSuccessful", mock.Anything).Return(decimal.NewFromInt(250000), nil)

	admin, err := uc.AdminStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), admin.TotalUsers)
	assert.Equal(t, int64(5), admin.TotalApplications)
	assert.Equal(t, int64(4), admin.PendingApplications)
	assert.True(t, admin.TotalRevenue.Equal(decimal.NewFromInt(250000)))
}
