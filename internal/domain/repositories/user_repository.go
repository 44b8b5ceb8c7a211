package repositories

import (
	"context"

	"github.com/google/uuid"

	"avilegal.backend/internal/domain/entities"
	"avilegal.backend/pkg/utils"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.UserStatus) error
	List(ctx context.Context, filter entities.UserFilter, page utils.PaginationParams) ([]*entities.User, int64, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

// RoleRepository defines role and permission data operations
type RoleRepository interface {
	Create(ctx context.Context, role *entities.Role) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Role, error)
	GetByName(ctx context.Context, name string) (*entities.Role, error)
	List(ctx context.Context) ([]*entities.Role, error)
	Update(ctx context.Context, role *entities.Role) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error)
	SyncPermissions(ctx context.Context, roleID uuid.UUID, permissionNames []string) error

	ListPermissions(ctx context.Context) ([]*entities.Permission, error)
	UpsertPermission(ctx context.Context, p *entities.Permission) error

	SyncUserRoles(ctx context.Context, userID uuid.UUID, roleNames []string) error
	GetUserPermissions(ctx context.Context, userID uuid.UUID) (entities.PermissionSet, error)
}
