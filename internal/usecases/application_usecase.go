package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/internal/domain/repositories"
	"avilegal.backend/internal/infrastructure/notification"
	"avilegal.backend/pkg/metrics"
	"avilegal.backend/pkg/utils"
)

// ApplicationUsecase drives the application status machine and milestones
type ApplicationUsecase struct {
	uow           repositories.UnitOfWork
	appRepo       repositories.ApplicationRepository
	serviceRepo   repositories.ServiceRepository
	milestoneRepo repositories.MilestoneRepository
	paymentRepo   repositories.PaymentRepository
	docRepo       repositories.DocumentRepository
	storage       FileStorage
	notifier      Notifier
	now           func() time.Time
}

func NewApplicationUsecase(
	uow repositories.UnitOfWork,
	appRepo repositories.ApplicationRepository,
	serviceRepo repositories.ServiceRepository,
	milestoneRepo repositories.MilestoneRepository,
	paymentRepo repositories.PaymentRepository,
	docRepo repositories.DocumentRepository,
	storage FileStorage,
	notifier Notifier,
) *ApplicationUsecase {
	return &ApplicationUsecase{
		uow:           uow,
		appRepo:       appRepo,
		serviceRepo:   serviceRepo,
		milestoneRepo: milestoneRepo,
		paymentRepo:   paymentRepo,
		docRepo:       docRepo,
		storage:       storage,
		notifier:      notifier,
		now:           time.Now,
	}
}

// newApplication validates input against an active service and builds an
// unsaved application awaiting payment.
func newApplication(ctx context.Context, serviceRepo repositories.ServiceRepository, userID, serviceID uuid.UUID, companyName, businessType string, details entities.ApplicationDetails) (*entities.Application, error) {
	svc, err := serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NewError("service not found", domainerrors.ErrNotFound)
		}
		return nil, err
	}
	if !svc.IsActive {
		return nil, domainerrors.NewError("service is not available", domainerrors.ErrValidation)
	}

	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return nil, domainerrors.NewError("companyName is required", domainerrors.ErrValidation)
	}
	businessType = strings.TrimSpace(businessType)
	if err := details.Validate(businessType); err != nil {
		return nil, err
	}

	app := &entities.Application{
		UserID:      userID,
		ServiceID:   svc.ID,
		CompanyName: companyName,
		Details:     details,
		Status:      entities.ApplicationStatusPendingPayment,
		Service:     svc,
	}
	if businessType != "" {
		app.BusinessType = null.StringFrom(businessType)
	}
	return app, nil
}

// Create stores a new application in pending_payment
func (u *ApplicationUsecase) Create(ctx context.Context, userID uuid.UUID, input *entities.CreateApplicationInput) (*entities.Application, error) {
	app, err := newApplication(ctx, u.serviceRepo, userID, input.ServiceID, input.CompanyName, input.BusinessType, input.Details)
	if err != nil {
		return nil, err
	}
	if err := u.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// List returns the caller's applications
func (u *ApplicationUsecase) List(ctx context.Context, userID uuid.UUID, status entities.ApplicationStatus, page utils.PaginationParams) (utils.Page[*entities.Application], error) {
	return u.list(ctx, entities.ApplicationFilter{UserID: &userID, Status: status}, page)
}

// Get returns one of the caller's applications. Other users' applications
// are reported as not found.
func (u *ApplicationUsecase) Get(ctx context.Context, userID, id uuid.UUID) (*entities.Application, error) {
	app, err := u.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	u.decorate(app)
	return app, nil
}

// Update edits an application that has not been paid for yet
func (u *ApplicationUsecase) Update(ctx context.Context, userID, id uuid.UUID, input *entities.UpdateApplicationInput) (*entities.Application, error) {
	app, err := u.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !app.IsEditable() {
		return nil, domainerrors.NewError("cannot edit submitted application", domainerrors.ErrForbidden)
	}

	if input.CompanyName != nil {
		name := strings.TrimSpace(*input.CompanyName)
		if name == "" {
			return nil, domainerrors.NewError("companyName is required", domainerrors.ErrValidation)
		}
		app.CompanyName = name
	}
	if input.BusinessType != nil {
		bt := strings.TrimSpace(*input.BusinessType)
		app.BusinessType = null.NewString(bt, bt != "")
	}
	if input.Details != nil {
		app.Details = *input.Details
	}
	if err := app.Details.Validate(app.BusinessType.String); err != nil {
		return nil, err
	}

	if err := u.appRepo.Update(ctx, app); err != nil {
		if errors.Is(err, domainerrors.ErrForbidden) {
			return nil, domainerrors.NewError("cannot edit submitted application", domainerrors.ErrForbidden)
		}
		return nil, err
	}
	u.decorate(app)
	return app, nil
}

// Delete removes an unpaid application with its unsuccessful payments.
// Documents are kept and detached.
func (u *ApplicationUsecase) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := u.getOwned(ctx, userID, id); err != nil {
		return err
	}

	return u.uow.Do(ctx, func(txCtx context.Context) error {
		app, err := u.appRepo.GetByID(u.uow.WithLock(txCtx), id)
		if err != nil {
			return err
		}
		if !app.IsEditable() {
			return domainerrors.NewError("cannot delete submitted application", domainerrors.ErrInvalidState)
		}
		if err := u.paymentRepo.DeletePendingByApplication(txCtx, id); err != nil {
			return err
		}
		if err := u.docRepo.DetachFromApplication(txCtx, id); err != nil {
			return err
		}
		return u.appRepo.Delete(txCtx, id)
	})
}

// AdminList lists all applications with optional status filter
func (u *ApplicationUsecase) AdminList(ctx context.Context, filter entities.ApplicationFilter, page utils.PaginationParams) (utils.Page[*entities.Application], error) {
	return u.list(ctx, filter, page)
}

func (u *ApplicationUsecase) AdminGet(ctx context.Context, id uuid.UUID) (*entities.Application, error) {
	app, err := u.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.decorate(app)
	return app, nil
}

// Approve moves a pending application to processing and starts the
// document review milestone.
func (u *ApplicationUsecase) Approve(ctx context.Context, id uuid.UUID) (*entities.Application, error) {
	app, err := u.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != entities.ApplicationStatusPending {
		return nil, domainerrors.NewError("only pending applications can be approved", domainerrors.ErrInvalidState)
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		changed, err := u.appRepo.TransitionStatus(txCtx, id,
			[]entities.ApplicationStatus{entities.ApplicationStatusPending},
			entities.ApplicationStatusProcessing, nil)
		if err != nil {
			return err
		}
		if !changed {
			return domainerrors.NewError("only pending applications can be approved", domainerrors.ErrInvalidState)
		}
		return u.milestoneRepo.StartByOrder(txCtx, id, entities.ReviewMilestoneOrder)
	})
	if err != nil {
		return nil, err
	}
	metrics.ApplicationTransitioned(string(entities.ApplicationStatusProcessing))

	app, err = u.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.notifyStatus(ctx, app, milestoneAt(app.Milestones, entities.ReviewMilestoneOrder),
		"Your application has been approved and is now being processed.")
	u.decorate(app)
	return app, nil
}

// Reject stops a pending or processing application. The reason is stored in
// admin notes and shown to the customer.
func (u *ApplicationUsecase) Reject(ctx context.Context, id uuid.UUID, reason string) (*entities.Application, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domainerrors.NewError("reason is required", domainerrors.ErrValidation)
	}

	changed, err := u.appRepo.TransitionStatus(ctx, id,
		[]entities.ApplicationStatus{entities.ApplicationStatusPending, entities.ApplicationStatusProcessing},
		entities.ApplicationStatusRejected,
		map[string]interface{}{"admin_notes": reason})
	if err != nil {
		return nil, err
	}

	app, err := u.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, domainerrors.NewError("only pending or processing applications can be rejected", domainerrors.ErrInvalidState)
	}
	metrics.ApplicationTransitioned(string(entities.ApplicationStatusRejected))

	u.notifyStatus(ctx, app, nil, reason)
	u.decorate(app)
	return app, nil
}

// AdvanceMilestone completes one milestone and starts the next by order.
// The application status is not changed.
func (u *ApplicationUsecase) AdvanceMilestone(ctx context.Context, id, milestoneID uuid.UUID) (*entities.Application, error) {
	milestone, err := u.milestoneRepo.GetByID(ctx, milestoneID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NewError("milestone not found", domainerrors.ErrNotFound)
		}
		return nil, err
	}
	if milestone.ApplicationID != id {
		return nil, domainerrors.NewError("milestone does not belong to this application", domainerrors.ErrNotFound)
	}
	if milestone.Status == entities.MilestoneStatusCompleted {
		return nil, domainerrors.NewError("milestone already completed", domainerrors.ErrInvalidState)
	}

	now := u.now()
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.milestoneRepo.UpdateStatus(txCtx, milestone.ID, entities.MilestoneStatusCompleted, &now); err != nil {
			return err
		}
		return u.milestoneRepo.StartNextAfter(txCtx, id, milestone.Order)
	})
	if err != nil {
		return nil, err
	}

	app, err := u.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	milestone.Status = entities.MilestoneStatusCompleted
	milestone.CompletedAt = &now
	u.notifyStatus(ctx, app, milestone, "Milestone completed: "+milestone.Title+".")
	u.decorate(app)
	return app, nil
}

// Complete finishes a processing application and force-completes every
// remaining milestone.
func (u *ApplicationUsecase) Complete(ctx context.Context, id uuid.UUID) (*entities.Application, error) {
	now := u.now()
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		changed, err := u.appRepo.TransitionStatus(txCtx, id,
			[]entities.ApplicationStatus{entities.ApplicationStatusProcessing},
			entities.ApplicationStatusCompleted,
			map[string]interface{}{"completed_at": now})
		if err != nil {
			return err
		}
		if !changed {
			if _, err := u.appRepo.GetByID(txCtx, id); err != nil {
				return err
			}
			return domainerrors.NewError("only processing applications can be completed", domainerrors.ErrInvalidState)
		}
		return u.milestoneRepo.CompleteAll(txCtx, id, now)
	})
	if err != nil {
		return nil, err
	}
	metrics.ApplicationTransitioned(string(entities.ApplicationStatusCompleted))

	app, err := u.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.User != nil {
		u.notifier.Notify(ctx, notification.EmailJob{
			To:       app.User.Email,
			ToName:   app.User.Name,
			Template: entities.TemplateRegistrationComplete,
			Vars: map[string]string{
				"user_name":     app.User.Name,
				"business_name": app.CompanyName,
				"service_name":  serviceName(app),
				"completed_at":  now.Format(emailDateLayout),
			},
		})
	}
	u.decorate(app)
	return app, nil
}

func (u *ApplicationUsecase) list(ctx context.Context, filter entities.ApplicationFilter, page utils.PaginationParams) (utils.Page[*entities.Application], error) {
	page = utils.GetPaginationParams(page.Page, page.Limit)
	if filter.Status != "" && !filter.Status.Valid() {
		return utils.Page[*entities.Application]{}, domainerrors.NewError("invalid status filter", domainerrors.ErrValidation)
	}
	apps, total, err := u.appRepo.List(ctx, filter, page)
	if err != nil {
		return utils.Page[*entities.Application]{}, err
	}
	for _, app := range apps {
		u.decorate(app)
	}
	return utils.NewPage(apps, total, page), nil
}

func (u *ApplicationUsecase) getOwned(ctx context.Context, userID, id uuid.UUID) (*entities.Application, error) {
	app, err := u.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.UserID != userID {
		return nil, domainerrors.ErrNotFound
	}
	return app, nil
}

// decorate fills document URLs and derived progress.
func (u *ApplicationUsecase) decorate(app *entities.Application) {
	for i := range app.Documents {
		app.Documents[i].URL = u.storage.URL(app.Documents[i].FilePath)
	}
	app.ComputeProgress()
}

func (u *ApplicationUsecase) notifyStatus(ctx context.Context, app *entities.Application, milestone *entities.Milestone, message string) {
	if app.User == nil {
		return
	}
	u.notifier.Notify(ctx, notification.EmailJob{
		To:       app.User.Email,
		ToName:   app.User.Name,
		Template: entities.TemplateApplicationStatus,
		Vars: map[string]string{
			"user_name":      app.User.Name,
			"business_name":  app.CompanyName,
			"service_name":   serviceName(app),
			"status":         humanize(string(app.Status)),
			"milestone_info": milestoneInfo(milestone),
			"status_message": message,
		},
	})
}

func milestoneAt(milestones []entities.Milestone, order int) *entities.Milestone {
	for i := range milestones {
		if milestones[i].Order == order {
			m := milestones[i]
			return &m
		}
	}
	return nil
}
