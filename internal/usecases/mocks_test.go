package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/volatiletech/null/v8"

	"avilegal.backend/internal/domain/entities"
	"avilegal.backend/internal/infrastructure/gateways"
	"avilegal.backend/internal/infrastructure/notification"
	"avilegal.backend/pkg/utils"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

func (m *MockUnitOfWork) WithLock(ctx context.Context) context.Context {
	m.Called(ctx)
	return ctx
}

func newMockUnitOfWork() *MockUnitOfWork {
	uow := new(MockUnitOfWork)
	uow.On("Do", mock.Anything, mock.Anything).Maybe()
	uow.On("WithLock", mock.Anything).Maybe()
	return uow
}

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *MockUserRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.UserStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, filter entities.UserFilter, page utils.PaginationParams) ([]*entities.User, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

// Mock RoleRepository
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) Create(ctx context.Context, role *entities.Role) error {
	args := m.Called(ctx, role)
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockRoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Role), args.Error(1)
}

func (m *MockRoleRepository) GetByName(ctx context.Context, name string) (*entities.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Role), args.Error(1)
}

func (m *MockRoleRepository) List(ctx context.Context) ([]*entities.Role, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Role), args.Error(1)
}

func (m *MockRoleRepository) Update(ctx context.Context, role *entities.Role) error {
	return m.Called(ctx, role).Error(0)
}

func (m *MockRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRoleRepository) CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error) {
	args := m.Called(ctx, roleID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRoleRepository) SyncPermissions(ctx context.Context, roleID uuid.UUID, permissionNames []string) error {
	return m.Called(ctx, roleID, permissionNames).Error(0)
}

func (m *MockRoleRepository) ListPermissions(ctx context.Context) ([]*entities.Permission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Permission), args.Error(1)
}

func (m *MockRoleRepository) UpsertPermission(ctx context.Context, p *entities.Permission) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRoleRepository) SyncUserRoles(ctx context.Context, userID uuid.UUID, roleNames []string) error {
	return m.Called(ctx, userID, roleNames).Error(0)
}

func (m *MockRoleRepository) GetUserPermissions(ctx context.Context, userID uuid.UUID) (entities.PermissionSet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entities.PermissionSet), args.Error(1)
}

// Mock ServiceRepository
type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) Create(ctx context.Context, service *entities.Service) error {
	args := m.Called(ctx, service)
	if service.ID == uuid.Nil {
		service.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Service), args.Error(1)
}

func (m *MockServiceRepository) GetBySlug(ctx context.Context, slug string) (*entities.Service, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Service), args.Error(1)
}

func (m *MockServiceRepository) List(ctx context.Context, activeOnly bool) ([]*entities.Service, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Service), args.Error(1)
}

func (m *MockServiceRepository) Update(ctx context.Context, service *entities.Service) error {
	return m.Called(ctx, service).Error(0)
}

func (m *MockServiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// Mock ApplicationRepository
type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) Create(ctx context.Context, app *entities.Application) error {
	args := m.Called(ctx, app)
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Application), args.Error(1)
}

func (m *MockApplicationRepository) List(ctx context.Context, filter entities.ApplicationFilter, page utils.PaginationParams) ([]*entities.Application, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Application), args.Get(1).(int64), args.Error(2)
}

func (m *MockApplicationRepository) Update(ctx context.Context, app *entities.Application) error {
	return m.Called(ctx, app).Error(0)
}

func (m *MockApplicationRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []entities.ApplicationStatus, to entities.ApplicationStatus, fields map[string]interface{}) (bool, error) {
	args := m.Called(ctx, id, from, to, fields)
	return args.Bool(0), args.Error(1)
}

func (m *MockApplicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockApplicationRepository) CountByStatus(ctx context.Context, userID *uuid.UUID) (entities.ApplicationStatusCounts, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entities.ApplicationStatusCounts), args.Error(1)
}

// Mock MilestoneRepository
type MockMilestoneRepository struct {
	mock.Mock
}

func (m *MockMilestoneRepository) CreateBatch(ctx context.Context, milestones []*entities.Milestone) error {
	return m.Called(ctx, milestones).Error(0)
}

func (m *MockMilestoneRepository) ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]*entities.Milestone, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Milestone), args.Error(1)
}

func (m *MockMilestoneRepository) CountByApplication(ctx context.Context, applicationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, applicationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMilestoneRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Milestone, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Milestone), args.Error(1)
}

func (m *MockMilestoneRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.MilestoneStatus, completedAt *time.Time) error {
	return m.Called(ctx, id, status, completedAt).Error(0)
}

func (m *MockMilestoneRepository) StartByOrder(ctx context.Context, applicationID uuid.UUID, order int) error {
	return m.Called(ctx, applicationID, order).Error(0)
}

func (m *MockMilestoneRepository) StartNextAfter(ctx context.Context, applicationID uuid.UUID, order int) error {
	return m.Called(ctx, applicationID, order).Error(0)
}

func (m *MockMilestoneRepository) CompleteAll(ctx context.Context, applicationID uuid.UUID, at time.Time) error {
	return m.Called(ctx, applicationID, at).Error(0)
}

// Mock PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *entities.Payment) error {
	args := m.Called(ctx, payment)
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByReference(ctx context.Context, reference string) (*entities.Payment, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

func (m *MockPaymentRepository) List(ctx context.Context, filter entities.PaymentFilter, page utils.PaginationParams) ([]*entities.Payment, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepository) MarkSuccess(ctx context.Context, id uuid.UUID, paidAt time.Time, gatewayResponse []byte) (bool, error) {
	args := m.Called(ctx, id, paidAt, gatewayResponse)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) RecordVerifyFailure(ctx context.Context, id uuid.UUID, lastError string, markFailed bool) error {
	return m.Called(ctx, id, lastError, markFailed).Error(0)
}

func (m *MockPaymentRepository) DeletePendingByApplication(ctx context.Context, applicationID uuid.UUID) error {
	return m.Called(ctx, applicationID).Error(0)
}

func (m *MockPaymentRepository) ExpirePending(ctx context.Context, olderThan time.Time, limit int) (int64, error) {
	args := m.Called(ctx, olderThan, limit)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) SumSuccessful(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// Mock DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *entities.Document) error {
	args := m.Called(ctx, doc)
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Document), args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context, filter entities.DocumentFilter, page utils.PaginationParams) ([]*entities.Document, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Document), args.Get(1).(int64), args.Error(2)
}

func (m *MockDocumentRepository) Review(ctx context.Context, id uuid.UUID, status entities.DocumentStatus, reason null.String) (bool, error) {
	args := m.Called(ctx, id, status, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDocumentRepository) DetachFromApplication(ctx context.Context, applicationID uuid.UUID) error {
	return m.Called(ctx, applicationID).Error(0)
}

// Mock EmailTemplateRepository
type MockEmailTemplateRepository struct {
	mock.Mock
}

func (m *MockEmailTemplateRepository) GetBySlug(ctx context.Context, slug string) (*entities.EmailTemplate, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.EmailTemplate), args.Error(1)
}

func (m *MockEmailTemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.EmailTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.EmailTemplate), args.Error(1)
}

func (m *MockEmailTemplateRepository) List(ctx context.Context) ([]*entities.EmailTemplate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.EmailTemplate), args.Error(1)
}

func (m *MockEmailTemplateRepository) Update(ctx context.Context, tpl *entities.EmailTemplate) error {
	return m.Called(ctx, tpl).Error(0)
}

func (m *MockEmailTemplateRepository) Upsert(ctx context.Context, tpl *entities.EmailTemplate) error {
	return m.Called(ctx, tpl).Error(0)
}

func (m *MockEmailTemplateRepository) CreateIfMissing(ctx context.Context, tpl *entities.EmailTemplate) error {
	return m.Called(ctx, tpl).Error(0)
}

// Mock Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, job notification.EmailJob) {
	m.Called(ctx, job)
}

// Mock SettingsProvider backed by a map
type MockSettings struct {
	mock.Mock
	values map[string]string
}

func newMockSettings(values map[string]string) *MockSettings {
	if values == nil {
		values = map[string]string{}
	}
	return &MockSettings{values: values}
}

func (m *MockSettings) Get(_ context.Context, key string) (string, error) {
	return m.values[key], nil
}

func (m *MockSettings) GetDefault(_ context.Context, key, def string) string {
	if v, ok := m.values[key]; ok && v != "" {
		return v
	}
	return def
}

func (m *MockSettings) All(context.Context) (map[string]string, error) {
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

func (m *MockSettings) SetMany(ctx context.Context, values map[string]string) error {
	args := m.Called(ctx, values)
	if args.Error(0) == nil {
		for k, v := range values {
			m.values[k] = v
		}
	}
	return args.Error(0)
}

func (m *MockSettings) Invalidate(context.Context) {}

// Mock Gateway
type MockGateway struct {
	mock.Mock
	name string
}

func (m *MockGateway) Name() string { return m.name }

func (m *MockGateway) Configured(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *MockGateway) Initialize(ctx context.Context, req gateways.InitializeRequest) (*gateways.InitializeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateways.InitializeResponse), args.Error(1)
}

func (m *MockGateway) Verify(ctx context.Context, reference string) (*gateways.VerifyResult, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateways.VerifyResult), args.Error(1)
}

// Mock FileStorage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, filePath string, content []byte, contentType string) error {
	return m.Called(ctx, filePath, content, contentType).Error(0)
}

func (m *MockStorage) Delete(ctx context.Context, filePath string) error {
	return m.Called(ctx, filePath).Error(0)
}

func (m *MockStorage) URL(filePath string) string {
	return "https://files.test/" + filePath
}

// Mock TokenDenylist
type MockDenylist struct {
	mock.Mock
}

func (m *MockDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return m.Called(ctx, tokenID, ttl).Error(0)
}

func (m *MockDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// Mock EmailSender
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendRendered(ctx context.Context, to, toName string, rendered *notification.Rendered) error {
	return m.Called(ctx, to, toName, rendered).Error(0)
}
