package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/pkg/utils"
)

func seedService(t *testing.T, db *gorm.DB, slug string, price int64, active bool) *entities.Service {
	t.Helper()
	s := &entities.Service{
		Name:     "Service " + slug,
		Slug:     slug,
		Price:    decimal.NewFromInt(price),
		IsActive: active,
	}
	require.NoError(t, NewServiceRepository(db).Create(context.Background(), s))
	return s
}

func seedApplication(t *testing.T, db *gorm.DB, userID, serviceID uuid.UUID, status entities.ApplicationStatus) *entities.Application {
	t.Helper()
	app := &entities.Application{
		UserID:       userID,
		ServiceID:    serviceID,
		CompanyName:  "Acme Ventures",
		BusinessType: null.StringFrom("sole_proprietorship"),
		Details: entities.ApplicationDetails{
			NatureOfBusiness: "Retail",
			Applicant:        &entities.Person{FullName: "Ada Obi", Email: "ada@example.com"},
		},
		Status: status,
	}
	require.NoError(t, NewApplicationRepository(db).Create(context.Background(), app))
	return app
}

func TestServiceRepository_CRUD(t *testing.T) {
	db := newTestDB(t)
	createAllTables(t, db)
	ctx := context.Background()
	repo := NewServiceRepository(db)

	incorporation := seedService(t, db, "company-incorporation", 100000, true)
	seedService(t, db, "business-name", 50000, true)
	seedService(t, db, "trustees", 200000, false)

	active, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "business-name", active[0].Slug)

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	got, err := repo.GetBySlug(ctx, "company-incorporation")
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(100000)))

	got.Price = decimal.NewFromInt(120000)
	got.IsActive = false
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.GetByID(ctx, incorporation.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(120000)))
	assert.False(t, got.IsActive)

	require.NoError(t, repo.Delete(ctx, incorporation.ID))
	_, err = repo.GetByID(ctx, incorporation.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, incorporation.ID), domainerrors.ErrNotFound)
}

func TestApplicationRepository_GetByIDLoadsRelations(t *testing.T) {
	db := newTestDB(t)
	createAllTables(t, db)
	ctx := context.Background()
	repo := NewApplicationRepository(db)

	user := seedUser(t, db, "ada@example.com")
	svc := seedService(t, db, "business-name", 50000, true)
	app := seedApplication(t, db, user.ID, svc.ID, entities.ApplicationStatusPending)

	require.NoError(t, NewMilestoneRepository(db).CreateBatch(ctx, entities.NewDefaultMilestones(app.ID, time.Now())))

	got, err := repo.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Ventures", got.CompanyName)
	assert.Equal(t, "sole_proprietorship", got.BusinessType.String)
	require.NotNil(t, got.Details.Applicant)
	assert.Equal(t, "Ada Obi", got.Details.Applicant.FullName)
	require.NotNil(t, got.Service)
	assert.Equal(t, svc.ID, got.Service.ID)
	require.NotNil(t, got.User)
	assert.Equal(t, user.Email, got.User.Email)
	require.Len(t, got.Milestones, 6)
	assert.Equal(t, 1, got.Milestones[0].Order)
	assert.Equal(t, 17, got.ProgressPercentage)
	require.NotNil(t, got.CurrentMilestone)
	assert.Equal(t, "Document Review", got.CurrentMilestone.Title)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestApplicationRepository_TransitionStatusIsConditional(t *testing.T) {
	db := newTestDB(t)
	createAllTables(t, db)
	ctx := context.Background()
	repo := NewApplicationRepository(db)

	user := seedUser(t, db, "ada@example.com")
	svc := seedService(t, db, "business-name", 50000, true)
	app := seedApplication(t, db, user.ID, svc.ID, entities.ApplicationStatusPendingPayment)

	now := time.Now()
	changed, err := repo.TransitionStatus(ctx, app.ID,
		[]entities.ApplicationStatus{entities.ApplicationStatusPendingPayment},
		entities.ApplicationStatusPending,
		map[string]interface{}{"submitted_at": now})
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.TransitionStatus(ctx, app.ID,
		[]entities.ApplicationStatus{entities.ApplicationStatusPendingPayment},
		entities.ApplicationStatusPending, nil)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := repo.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ApplicationStatusPending, got.Status)
	require.NotNil(t, got.SubmittedAt)
}

func TestApplicationRepository_ListUpdateDeleteAndCounts(t *testing.T) {
	db := newTestDB(t)
	createAllTables(t, db)
	ctx := context.Background()
	repo := NewApplicationRepository(db)

	ada := seedUser(t, db, "ada@example.com")
	bola := seedUser(t, db, "bola@example.com")
	svc := seedService(t, db, "business-name", 50000, true)
	first := seedApplication(t, db, ada.ID, svc.ID, entities.ApplicationStatusPendingPayment)
	seedApplication(t, db, ada.ID, svc.ID, entities.ApplicationStatusProcessing)
	seedApplication(t, db, bola.ID, svc.ID, entities.ApplicationStatusProcessing)

	items, total, err := repo.List(ctx, entities.ApplicationFilter{UserID: &ada.ID}, utils.PaginationParams{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 1)

	_, total, err = repo.List(ctx, entities.ApplicationFilter{Status: entities.ApplicationStatusProcessing, Search: "acme"}, utils.PaginationParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	counts, err := repo.CountByStatus(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[entities.ApplicationStatusProcessing])
	assert.Equal(t, int64(1), counts[entities.ApplicationStatusPendingPayment])

	counts, err = repo.CountByStatus(ctx, &bola.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[entities.ApplicationStatusProcessing])
	assert.Zero(t, counts[entities.ApplicationStatusPendingPayment])

	first.CompanyName = "Renamed Ltd"
	first.Details.NatureOfBusiness = "Consulting"
	require.NoError(t, repo.Update(ctx, first))
	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Ltd", got.CompanyName)
	assert.Equal(t, "Consulting", got.Details.NatureOfBusiness)

	submitted := seedApplication(t, db, ada.ID, svc.ID, entities.ApplicationStatusPending)
	submitted.CompanyName = "Too Late Ltd"
	assert.ErrorIs(t, repo.Update(ctx, submitted), domainerrors.ErrForbidden)
	got, err = repo.GetByID(ctx, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Ventures", got.CompanyName)

	missing := *first
	missing.ID = uuid.New()
	assert.ErrorIs(t, repo.Update(ctx, &missing), domainerrors.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, first.ID))
	assert.ErrorIs(t, repo.Delete(ctx, first.ID), domainerrors.ErrNotFound)
}

func TestMilestoneRepository_Progression(t *testing.T) {
	db := newTestDB(t)
	createAllTables(t, db)
	ctx := context.Background()
	repo := NewMilestoneRepository(db)
	appID := uuid.New()

	require.NoError(t, repo.CreateBatch(ctx, entities.NewDefaultMilestones(appID, time.Now())))
	require.NoError(t, repo.CreateBatch(ctx, nil))

	count, err := repo.CountByApplication(ctx, appID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), count)

	require.NoError(t, repo.StartByOrder(ctx, appID, entities.ReviewMilestoneOrder))
	list, err := repo.ListByApplication(ctx, appID)
	require.NoError(t, err)
	assert.Equal(t, entities.MilestoneStatusCompleted, list[0].Status)
	assert.Equal(t, entities.MilestoneStatusInProgress, list[1].Status)

	now := time.Now()
	require.NoError(t, repo.UpdateStatus(ctx, list[1].ID, entities.MilestoneStatusCompleted, &now))
	got, err := repo.GetByID(ctx, list[1].ID)
	require.NoError(t, err)
	assert.Equal(t, entities.MilestoneStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)

	require.NoError(t, repo.CompleteAll(ctx, appID, now))
	list, err = repo.ListByApplication(ctx, appID)
	require.NoError(t, err)
	for _, m := range list {
		assert.Equal(t, entities.MilestoneStatusCompleted, m.Status)
		assert.NotNil(t, m.CompletedAt)
	}

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), entities.MilestoneStatusCompleted, nil), domainerrors.ErrNotFound)
}

func TestMilestoneRepository_StartNextAfterSkipsGaps(t *testing.T) {
	db := newTestDB(t)
	createAllTables(t, db)
	ctx := context.Background()
	repo := NewMilestoneRepository(db)
	appID := uuid.New()

	require.NoError(t, repo.CreateBatch(ctx, []*entities.Milestone{
		{ApplicationID: appID, Title: "Payment Received", Order: 10, Status: entities.MilestoneStatusCompleted},
		{ApplicationID: appID, Title: "Document Review", Order: 20, Status: entities.MilestoneStatusPending},
		{ApplicationID: appID, Title: "Completed", Order: 40, Status: entities.MilestoneStatusPending},
	}))

	require.NoError(t, repo.StartNextAfter(ctx, appID, 10))
	list, err := repo.ListByApplication(ctx, appID)
	require.NoError(t, err)
	assert.Equal(t, entities.MilestoneStatusInProgress, list[1].Status)
	assert.Equal(t, entities.MilestoneStatusPending, list[2].Status)

	require.NoError(t, repo.StartNextAfter(ctx, appID, 20))
	list, err = repo.ListByApplication(ctx, appID)
	require.NoError(t, err)
	assert.Equal(t, entities.MilestoneStatusInProgress, list[2].Status)

	// nothing after the last milestone
	require.NoError(t, repo.StartNextAfter(ctx, appID, 40))
}
