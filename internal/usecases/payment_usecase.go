package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/internal/domain/repositories"
	"avilegal.backend/internal/infrastructure/gateways"
	"avilegal.backend/internal/infrastructure/notification"
	"avilegal.backend/pkg/crypto"
	"avilegal.backend/pkg/logger"
	"avilegal.backend/pkg/metrics"
	"avilegal.backend/pkg/utils"
)

const referenceLength = 10

// PaymentOptions are the static payment settings from the environment.
type PaymentOptions struct {
	MaxVerifyAttempts  int
	DefaultFrontendURL string
	DefaultCompanyName string
}

// PaymentUsecase initializes checkouts and confirms them with the gateway
type PaymentUsecase struct {
	uow           repositories.UnitOfWork
	paymentRepo   repositories.PaymentRepository
	appRepo       repositories.ApplicationRepository
	serviceRepo   repositories.ServiceRepository
	milestoneRepo repositories.MilestoneRepository
	userRepo      repositories.UserRepository
	gateways      GatewayRegistry
	settings      SettingsProvider
	notifier      Notifier
	opts          PaymentOptions
	now           func() time.Time
	newReference  func() (string, error)
}

func NewPaymentUsecase(
	uow repositories.UnitOfWork,
	paymentRepo repositories.PaymentRepository,
	appRepo repositories.ApplicationRepository,
	serviceRepo repositories.ServiceRepository,
	milestoneRepo repositories.MilestoneRepository,
	userRepo repositories.UserRepository,
	gatewayRegistry GatewayRegistry,
	settings SettingsProvider,
	notifier Notifier,
	opts PaymentOptions,
) *PaymentUsecase {
	if opts.MaxVerifyAttempts <= 0 {
		opts.MaxVerifyAttempts = 5
	}
	return &PaymentUsecase{
		uow:           uow,
		paymentRepo:   paymentRepo,
		appRepo:       appRepo,
		serviceRepo:   serviceRepo,
		milestoneRepo: milestoneRepo,
		userRepo:      userRepo,
		gateways:      gatewayRegistry,
		settings:      settings,
		notifier:      notifier,
		opts:          opts,
		now:           time.Now,
		newReference:  generateReference,
	}
}

func generateReference() (string, error) {
	suffix, err := crypto.RandomUpperAlphanumeric(referenceLength)
	if err != nil {
		return "", err
	}
	return entities.ReferencePrefix + suffix, nil
}

// Config returns the public gateway keys and the gateways ready for checkout
func (u *PaymentUsecase) Config(ctx context.Context) *entities.PaymentPublicConfig {
	cfg := &entities.PaymentPublicConfig{
		PaystackPublicKey:    u.settings.GetDefault(ctx, entities.SettingPaystackPublicKey, ""),
		FlutterwavePublicKey: u.settings.GetDefault(ctx, entities.SettingFlutterwavePublicKey, ""),
		EnabledGateways:      []string{},
	}
	for _, name := range u.gateways.Names() {
		gw, err := u.gateways.Get(name)
		if err == nil && gw.Configured(ctx) {
			cfg.EnabledGateways = append(cfg.EnabledGateways, name)
		}
	}
	return cfg
}

// Initialize creates a pending payment (and application, unless an unpaid
// one is given) and opens a checkout with the gateway.
func (u *PaymentUsecase) Initialize(ctx context.Context, userID uuid.UUID, input *entities.InitializePaymentInput) (*entities.InitializePaymentResult, error) {
	gw, err := u.gateways.Get(input.Gateway)
	if err != nil {
		return nil, err
	}
	if !gw.Configured(ctx) {
		return nil, domainerrors.ErrGatewayUnavailable
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	app, isNew, err := u.resolveApplication(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	reference, err := u.newReference()
	if err != nil {
		return nil, err
	}
	payment := &entities.Payment{
		UserID:    userID,
		Amount:    app.Service.Price,
		Currency:  entities.DefaultCurrency,
		Reference: reference,
		Gateway:   gw.Name(),
		Status:    entities.PaymentStatusPending,
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if isNew {
			if err := u.appRepo.Create(txCtx, app); err != nil {
				return err
			}
		}
		payment.ApplicationID = app.ID
		return u.paymentRepo.Create(txCtx, payment)
	})
	if err != nil {
		return nil, err
	}

	frontend := strings.TrimRight(u.settings.GetDefault(ctx, entities.SettingFrontendURL, u.opts.DefaultFrontendURL), "/")
	resp, err := gw.Initialize(ctx, gateways.InitializeRequest{
		Reference: payment.Reference,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		Customer: gateways.Customer{
			Email: user.Email,
			Name:  user.Name,
			Phone: user.Phone,
		},
		CallbackURL: frontend + "/payment/callback",
		Title:       u.settings.GetDefault(ctx, entities.SettingCompanyName, u.opts.DefaultCompanyName),
		Description: app.Service.Name,
		Metadata: map[string]string{
			"payment_id":     payment.ID.String(),
			"application_id": app.ID.String(),
			"service":        app.Service.Name,
		},
	})
	if err != nil {
		metrics.PaymentInitialized(gw.Name(), "error")
		logger.Error(ctx, "Payment initialization failed",
			zap.String("gateway", gw.Name()),
			zap.String("reference", payment.Reference),
			zap.Error(err),
		)
		// The reference never reached checkout, so it can never be paid.
		if recErr := u.paymentRepo.RecordVerifyFailure(ctx, payment.ID, "initialize: "+err.Error(), true); recErr != nil {
			logger.Warn(ctx, "Failed to record initialization failure", zap.Error(recErr))
		}
		return nil, gatewayFailure("Failed to initialize payment", err)
	}
	metrics.PaymentInitialized(gw.Name(), "ok")

	return &entities.InitializePaymentResult{
		AuthorizationURL: resp.AuthorizationURL,
		Reference:        payment.Reference,
		PaymentID:        payment.ID,
		ApplicationID:    app.ID,
	}, nil
}

func (u *PaymentUsecase) resolveApplication(ctx context.Context, userID uuid.UUID, input *entities.InitializePaymentInput) (*entities.Application, bool, error) {
	if input.ApplicationID == nil {
		app, err := newApplication(ctx, u.serviceRepo, userID, input.ServiceID, input.CompanyName, input.BusinessType, input.Details)
		return app, true, err
	}

	app, err := u.appRepo.GetByID(ctx, *input.ApplicationID)
	if err != nil {
		return nil, false, err
	}
	if app.UserID != userID {
		return nil, false, domainerrors.ErrNotFound
	}
	if app.Status != entities.ApplicationStatusPendingPayment {
		return nil, false, domainerrors.NewError("application has already been paid for", domainerrors.ErrInvalidState)
	}
	if app.Service == nil {
		if app.Service, err = u.serviceRepo.GetByID(ctx, app.ServiceID); err != nil {
			return nil, false, err
		}
	}
	return app, false, nil
}

// Verify confirms one of the caller's payments with its gateway. A success
// is applied exactly once: the payment row is locked and flipped
// conditionally, and only the call that flips it submits the application and
// creates milestones. The gateway must report the amount and currency that
// were charged.
func (u *PaymentUsecase) Verify(ctx context.Context, userID uuid.UUID, reference string) (*entities.VerifyPaymentResult, error) {
	reference = strings.TrimSpace(reference)
	payment, err := u.paymentRepo.GetByReference(ctx, reference)
	if err == nil && payment.UserID != userID {
		err = domainerrors.ErrNotFound
	}
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NewError("Payment not found", domainerrors.ErrNotFound)
		}
		return nil, err
	}
	if payment.Status == entities.PaymentStatusSuccess {
		return u.verified(ctx, payment.ID, "Payment already verified")
	}

	gw, err := u.gateways.Get(payment.Gateway)
	if err != nil {
		return nil, err
	}

	result, err := gw.Verify(ctx, payment.Reference)
	if err != nil {
		metrics.PaymentVerified(gw.Name(), "error")
		logger.Error(ctx, "Payment verification request failed",
			zap.String("gateway", gw.Name()),
			zap.String("reference", payment.Reference),
			zap.Error(err),
		)
		u.recordFailure(ctx, payment, err.Error(), false)
		return nil, gatewayFailure("Payment verification failed", err)
	}

	if !result.Success() {
		metrics.PaymentVerified(gw.Name(), string(result.Status))
		logger.Warn(ctx, "Payment not confirmed by gateway",
			zap.String("gateway", gw.Name()),
			zap.String("reference", payment.Reference),
			zap.String("status", string(result.Status)),
			zap.String("message", result.Message),
		)
		u.recordFailure(ctx, payment, string(result.Status)+": "+result.Message, result.Status == gateways.VerifyStatusFailed)
		return &entities.VerifyPaymentResult{Success: false, Message: "Payment verification failed"}, nil
	}

	if reason := chargeMismatch(payment, result); reason != "" {
		metrics.PaymentVerified(gw.Name(), "mismatch")
		logger.Warn(ctx, "Gateway reported a different charge",
			zap.String("gateway", gw.Name()),
			zap.String("reference", payment.Reference),
			zap.String("expected", payment.Amount.StringFixed(2)+" "+payment.Currency),
			zap.String("received", result.Amount.StringFixed(2)+" "+result.Currency),
		)
		u.recordFailure(ctx, payment, reason, true)
		return &entities.VerifyPaymentResult{Success: false, Message: "Payment verification failed"}, nil
	}

	paidAt := u.now()
	if result.PaidAt != nil {
		paidAt = *result.PaidAt
	}

	var applied bool
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		locked, err := u.paymentRepo.GetByReference(u.uow.WithLock(txCtx), payment.Reference)
		if err != nil {
			return err
		}
		applied, err = u.paymentRepo.MarkSuccess(txCtx, locked.ID, paidAt, result.Raw)
		if err != nil || !applied {
			return err
		}

		submitted, err := u.appRepo.TransitionStatus(txCtx, locked.ApplicationID,
			[]entities.ApplicationStatus{entities.ApplicationStatusPendingPayment},
			entities.ApplicationStatusPending,
			map[string]interface{}{"submitted_at": paidAt})
		if err != nil || !submitted {
			return err
		}

		count, err := u.milestoneRepo.CountByApplication(txCtx, locked.ApplicationID)
		if err != nil || count > 0 {
			return err
		}
		return u.milestoneRepo.CreateBatch(txCtx, entities.NewDefaultMilestones(locked.ApplicationID, paidAt))
	})
	if err != nil {
		return nil, err
	}

	if !applied {
		return u.verified(ctx, payment.ID, "Payment already verified")
	}

	metrics.PaymentVerified(gw.Name(), "success")
	metrics.ApplicationTransitioned(string(entities.ApplicationStatusPending))
	out, err := u.verified(ctx, payment.ID, "Payment verified successfully")
	if err != nil {
		return nil, err
	}
	u.notifyConfirmed(ctx, out.Payment)
	return out, nil
}

// History returns the caller's payments
func (u *PaymentUsecase) History(ctx context.Context, userID uuid.UUID, page utils.PaginationParams) (utils.Page[*entities.Payment], error) {
	return u.list(ctx, entities.PaymentFilter{UserID: &userID}, page)
}

// AdminList lists all payments
func (u *PaymentUsecase) AdminList(ctx context.Context, filter entities.PaymentFilter, page utils.PaginationParams) (utils.Page[*entities.Payment], error) {
	return u.list(ctx, filter, page)
}

func (u *PaymentUsecase) list(ctx context.Context, filter entities.PaymentFilter, page utils.PaginationParams) (utils.Page[*entities.Payment], error) {
	page = utils.GetPaginationParams(page.Page, page.Limit)
	payments, total, err := u.paymentRepo.List(ctx, filter, page)
	if err != nil {
		return utils.Page[*entities.Payment]{}, err
	}
	return utils.NewPage(payments, total, page), nil
}

func (u *PaymentUsecase) verified(ctx context.Context, paymentID uuid.UUID, message string) (*entities.VerifyPaymentResult, error) {
	payment, err := u.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return &entities.VerifyPaymentResult{
		Success:     true,
		Message:     message,
		Payment:     payment,
		Application: payment.Application,
	}, nil
}

// chargeMismatch describes how a successful gateway charge differs from the
// payment, or returns "" when it matches. An empty gateway currency is
// accepted.
func chargeMismatch(payment *entities.Payment, result *gateways.VerifyResult) string {
	if !result.Amount.Equal(payment.Amount) {
		return "amount mismatch: charged " + result.Amount.StringFixed(2) + ", expected " + payment.Amount.StringFixed(2)
	}
	if result.Currency != "" && payment.Currency != "" && !strings.EqualFold(result.Currency, payment.Currency) {
		return "currency mismatch: charged " + result.Currency + ", expected " + payment.Currency
	}
	return ""
}

// recordFailure counts a failed verification. Explicit provider failures
// fail the payment once the attempt budget is used up.
func (u *PaymentUsecase) recordFailure(ctx context.Context, payment *entities.Payment, reason string, providerFailed bool) {
	markFailed := providerFailed && payment.VerifyAttempts+1 >= u.opts.MaxVerifyAttempts
	if err := u.paymentRepo.RecordVerifyFailure(ctx, payment.ID, reason, markFailed); err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		logger.Error(ctx, "Failed to record verification failure", zap.String("reference", payment.Reference), zap.Error(err))
	}
}

func (u *PaymentUsecase) notifyConfirmed(ctx context.Context, payment *entities.Payment) {
	user, err := u.userRepo.GetByID(ctx, payment.UserID)
	if err != nil {
		logger.Warn(ctx, "Skipping payment confirmation email", zap.Error(err))
		return
	}
	vars := map[string]string{
		"user_name": user.Name,
		"amount":    formatAmount(payment.Amount),
		"reference": payment.Reference,
		"gateway":   humanize(payment.Gateway),
		"paid_at":   formatEmailTime(payment.PaidAt),
	}
	if app := payment.Application; app != nil {
		vars["service_name"] = serviceName(app)
		vars["business_name"] = app.CompanyName
	}
	u.notifier.Notify(ctx, notification.EmailJob{
		To:       user.Email,
		ToName:   user.Name,
		Template: entities.TemplatePaymentConfirmation,
		Vars:     vars,
	})
}

// gatewayFailure keeps the gateway sentinel for status mapping and replaces
// the provider message with a generic one.
func gatewayFailure(message string, err error) error {
	switch {
	case errors.Is(err, domainerrors.ErrGatewayTimeout):
		return domainerrors.NewError(message, domainerrors.ErrGatewayTimeout)
	case errors.Is(err, domainerrors.ErrGatewayUnavailable):
		return domainerrors.NewError(message, domainerrors.ErrGatewayUnavailable)
	default:
		return domainerrors.NewError(message, domainerrors.ErrGatewayError)
	}
}
