package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/internal/domain/repositories"
	"avilegal.backend/pkg/crypto"
	"avilegal.backend/pkg/utils"
)

// UserUsecase is the staff-facing user administration
type UserUsecase struct {
	uow      repositories.UnitOfWork
	userRepo repositories.UserRepository
	roleRepo repositories.RoleRepository
}

func NewUserUsecase(uow repositories.UnitOfWork, userRepo repositories.UserRepository, roleRepo repositories.RoleRepository) *UserUsecase {
	return &UserUsecase{uow: uow, userRepo: userRepo, roleRepo: roleRepo}
}

func (u *UserUsecase) List(ctx context.Context, filter entities.UserFilter, page utils.PaginationParams) (utils.Page[*entities.User], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return utils.Page[*entities.User]{}, domainerrors.NewError("invalid status filter", domainerrors.ErrValidation)
	}
	page = utils.GetPaginationParams(page.Page, page.Limit)
	users, total, err := u.userRepo.List(ctx, filter, page)
	if err != nil {
		return utils.Page[*entities.User]{}, err
	}
	return utils.NewPage(users, total, page), nil
}

func (u *UserUsecase) Get(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return u.userRepo.GetByID(ctx, id)
}

// UpdateStatus suspends or reactivates an account. Staff cannot change
// their own status.
func (u *UserUsecase) UpdateStatus(ctx context.Context, actorID, id uuid.UUID, status entities.UserStatus) (*entities.User, error) {
	if !status.Valid() {
		return nil, domainerrors.NewError("invalid status", domainerrors.ErrValidation)
	}
	if actorID == id {
		return nil, domainerrors.NewError("you cannot change your own status", domainerrors.ErrForbidden)
	}
	if err := u.userRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return u.userRepo.GetByID(ctx, id)
}

// ListStaff returns users holding any role other than customer
func (u *UserUsecase) ListStaff(ctx context.Context, page utils.PaginationParams) (utils.Page[*entities.User], error) {
	roles, err := u.roleRepo.List(ctx)
	if err != nil {
		return utils.Page[*entities.User]{}, err
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		if r.Name != entities.RoleCustomer {
			names = append(names, r.Name)
		}
	}
	if len(names) == 0 {
		return utils.NewPage([]*entities.User{}, 0, utils.GetPaginationParams(page.Page, page.Limit)), nil
	}
	return u.List(ctx, entities.UserFilter{Roles: names}, page)
}

// CreateStaff creates an active account holding a single role
func (u *UserUsecase) CreateStaff(ctx context.Context, input *entities.CreateStaffInput) (*entities.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	_, err := u.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, domainerrors.NewError("email already registered", domainerrors.ErrAlreadyExists)
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := &entities.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
		Status:       entities.UserStatusActive,
	}
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.Create(txCtx, user); err != nil {
			return err
		}
		return u.roleRepo.SyncUserRoles(txCtx, user.ID, []string{entities.NormalizeRoleName(input.Role)})
	})
	if err != nil {
		return nil, err
	}
	return u.userRepo.GetByID(ctx, user.ID)
}
