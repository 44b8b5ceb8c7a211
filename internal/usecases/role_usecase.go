package usecases

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/internal/domain/repositories"
)

var roleNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// RoleUsecase manages roles, their permissions and user assignments
type RoleUsecase struct {
	uow      repositories.UnitOfWork
	roleRepo repositories.RoleRepository
	userRepo repositories.UserRepository
}

func NewRoleUsecase(uow repositories.UnitOfWork, roleRepo repositories.RoleRepository, userRepo repositories.UserRepository) *RoleUsecase {
	return &RoleUsecase{uow: uow, roleRepo: roleRepo, userRepo: userRepo}
}

func (u *RoleUsecase) List(ctx context.Context) ([]*entities.Role, error) {
	return u.roleRepo.List(ctx)
}

func (u *RoleUsecase) Get(ctx context.Context, id uuid.UUID) (*entities.Role, error) {
	return u.roleRepo.GetByID(ctx, id)
}

// Create adds a custom role. The name is normalized to lower_snake case.
func (u *RoleUsecase) Create(ctx context.Context, input *entities.CreateRoleInput) (*entities.Role, error) {
	name, err := u.checkName(ctx, input.Name, uuid.Nil)
	if err != nil {
		return nil, err
	}

	role := &entities.Role{
		Name:        name,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Description: strings.TrimSpace(input.Description),
	}
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.roleRepo.Create(txCtx, role); err != nil {
			return err
		}
		return u.roleRepo.SyncPermissions(txCtx, role.ID, input.Permissions)
	})
	if err != nil {
		return nil, err
	}
	return u.roleRepo.GetByID(ctx, role.ID)
}

// Update edits a role. System roles keep their name.
func (u *RoleUsecase) Update(ctx context.Context, id uuid.UUID, input *entities.UpdateRoleInput) (*entities.Role, error) {
	role, err := u.roleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := entities.NormalizeRoleName(*input.Name)
		if name != role.Name {
			if role.IsSystem {
				return nil, domainerrors.NewError("Cannot modify system role name", domainerrors.ErrForbidden)
			}
			if name, err = u.checkName(ctx, name, role.ID); err != nil {
				return nil, err
			}
			role.Name = name
		}
	}
	if input.DisplayName != nil {
		role.DisplayName = strings.TrimSpace(*input.DisplayName)
	}
	if input.Description != nil {
		role.Description = strings.TrimSpace(*input.Description)
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.roleRepo.Update(txCtx, role); err != nil {
			return err
		}
		if input.Permissions == nil {
			return nil
		}
		return u.roleRepo.SyncPermissions(txCtx, role.ID, input.Permissions)
	})
	if err != nil {
		return nil, err
	}
	return u.roleRepo.GetByID(ctx, role.ID)
}

// Delete removes a custom role nobody holds
func (u *RoleUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	role, err := u.roleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return domainerrors.NewError("Cannot delete system role", domainerrors.ErrForbidden)
	}
	users, err := u.roleRepo.CountUsers(ctx, id)
	if err != nil {
		return err
	}
	if users > 0 {
		return domainerrors.NewError("Cannot delete role with assigned users", domainerrors.ErrForbidden)
	}
	return u.roleRepo.Delete(ctx, id)
}

// Permissions returns every permission grouped and sorted by group
func (u *RoleUsecase) Permissions(ctx context.Context) ([]entities.PermissionGroup, error) {
	perms, err := u.roleRepo.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}
	byGroup := make(map[string][]*entities.Permission)
	for _, p := range perms {
		byGroup[p.Group] = append(byGroup[p.Group], p)
	}
	groups := make([]entities.PermissionGroup, 0, len(byGroup))
	for g, ps := range byGroup {
		groups = append(groups, entities.PermissionGroup{Group: g, Permissions: ps})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Group < groups[j].Group })
	return groups, nil
}

// SyncUserRoles replaces the user's roles
func (u *RoleUsecase) SyncUserRoles(ctx context.Context, userID uuid.UUID, roles []string) (*entities.User, error) {
	if _, err := u.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if err := u.roleRepo.SyncUserRoles(ctx, userID, roles); err != nil {
		return nil, err
	}
	return u.userRepo.GetByID(ctx, userID)
}

// AssignRole adds one role to the user's current roles
func (u *RoleUsecase) AssignRole(ctx context.Context, userID uuid.UUID, role string) (*entities.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.HasRole(role) {
		return user, nil
	}
	return u.SyncUserRoles(ctx, userID, append(user.RoleNames(), role))
}

// RemoveRole drops one role from the user's current roles
func (u *RoleUsecase) RemoveRole(ctx context.Context, userID uuid.UUID, role string) (*entities.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	keep := make([]string, 0, len(user.Roles))
	for _, name := range user.RoleNames() {
		if name != role {
			keep = append(keep, name)
		}
	}
	return u.SyncUserRoles(ctx, userID, keep)
}

// checkName normalizes name and ensures no other role uses it.
func (u *RoleUsecase) checkName(ctx context.Context, raw string, self uuid.UUID) (string, error) {
	name := entities.NormalizeRoleName(raw)
	if !roleNamePattern.MatchString(name) {
		return "", domainerrors.NewError("role name may contain only letters, digits and underscores", domainerrors.ErrValidation)
	}
	existing, err := u.roleRepo.GetByName(ctx, name)
	switch {
	case err == nil && existing.ID != self:
		return "", domainerrors.NewError("role name already exists", domainerrors.ErrAlreadyExists)
	case err != nil && !errors.Is(err, domainerrors.ErrNotFound):
		return "", err
	}
	return name, nil
}
