package usecases

import (
	"context"

	"github.com/google/uuid"

	"avilegal.backend/internal/domain/entities"
	"avilegal.backend/internal/domain/repositories"
)

// DashboardUsecase computes the counters shown on dashboards
type DashboardUsecase struct {
	appRepo     repositories.ApplicationRepository
	userRepo    repositories.UserRepository
	paymentRepo repositories.PaymentRepository
}

func NewDashboardUsecase(
	appRepo repositories.ApplicationRepository,
	userRepo repositories.UserRepository,
	paymentRepo repositories.PaymentRepository,
) *DashboardUsecase {
	return &DashboardUsecase{appRepo: appRepo, userRepo: userRepo, paymentRepo: paymentRepo}
}

// CustomerStats counts pending_payment together with pending.
func (u *DashboardUsecase) CustomerStats(ctx context.Context, userID uuid.UUID) (*entities.CustomerDashboardStats, error) {
	counts, err := u.appRepo.CountByStatus(ctx, &userID)
	if err != nil {
		return nil, err
	}
	return &entities.CustomerDashboardStats{
		TotalApplications: total(counts),
		Pending:           counts[entities.ApplicationStatusPending] + counts[entities.ApplicationStatusPendingPayment],
		Processing:        counts[entities.ApplicationStatusProcessing],
		Completed:         counts[entities.ApplicationStatusCompleted],
	}, nil
}

func (u *DashboardUsecase) AdminStats(ctx context.Context) (*entities.AdminDashboardStats, error) {
	counts, err := u.appRepo.CountByStatus(ctx, nil)
	if err != nil {
		return nil, err
	}
	customers, err := u.userRepo.CountByRole(ctx, entities.RoleCustomer)
	if err != nil {
		return nil, err
	}
	revenue, err := u.paymentRepo.SumSuccessful(ctx)
	if err != nil {
		return nil, err
	}
	return &entities.AdminDashboardStats{
		TotalUsers:          customers,
		TotalApplications:   total(counts),
		PendingApplications: counts[entities.ApplicationStatusPending],
		TotalRevenue:        revenue,
	}, nil
}

func total(counts entities.ApplicationStatusCounts) int64 {
	var n int64
	for _, c := range counts {
		n += c
	}
	return n
}
