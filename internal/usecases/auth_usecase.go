package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/internal/domain/repositories"
	"avilegal.backend/internal/infrastructure/notification"
	"avilegal.backend/pkg/crypto"
	"avilegal.backend/pkg/jwt"
	"avilegal.backend/pkg/logger"
)

// AuthUsecase handles registration, sessions and the caller's own profile
type AuthUsecase struct {
	uow        repositories.UnitOfWork
	userRepo   repositories.UserRepository
	roleRepo   repositories.RoleRepository
	jwtService *jwt.JWTService
	denylist   TokenDenylist
	notifier   Notifier
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	uow repositories.UnitOfWork,
	userRepo repositories.UserRepository,
	roleRepo repositories.RoleRepository,
	jwtService *jwt.JWTService,
	denylist TokenDenylist,
	notifier Notifier,
) *AuthUsecase {
	return &AuthUsecase{
		uow:        uow,
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		jwtService: jwtService,
		denylist:   denylist,
		notifier:   notifier,
	}
}

// Register creates a customer account and signs it in
func (u *AuthUsecase) Register(ctx context.Context, input *entities.RegisterInput) (*entities.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	_, err := u.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, domainerrors.NewError("email already registered", domainerrors.ErrAlreadyExists)
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: passwordHash,
		Status:       entities.UserStatusActive,
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.Create(txCtx, user); err != nil {
			return err
		}
		return u.roleRepo.SyncUserRoles(txCtx, user.ID, []string{entities.RoleCustomer})
	})
	if err != nil {
		return nil, err
	}
	user.Roles = []entities.Role{{Name: entities.RoleCustomer, DisplayName: "Customer"}}

	u.notifier.Notify(ctx, notification.EmailJob{
		To:       user.Email,
		ToName:   user.Name,
		Template: entities.TemplateWelcome,
		Vars:     map[string]string{"user_name": user.Name},
	})

	return u.issue(ctx, user)
}

// Login authenticates a user and returns tokens
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	user, err := u.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !crypto.CheckPassword(input.Password, user.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}
	if user.Status == entities.UserStatusSuspended {
		return nil, domainerrors.ErrAccountSuspended
	}

	return u.issue(ctx, user)
}

// Refresh rotates a refresh token. The presented token is revoked.
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*entities.AuthResponse, error) {
	claims, err := u.jwtService.ValidateTyped(refreshToken, jwt.TokenTypeRefresh)
	if err != nil {
		return nil, domainerrors.NewError("invalid refresh token", domainerrors.ErrUnauthorized)
	}

	revoked, err := u.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, domainerrors.NewError("refresh token revoked", domainerrors.ErrUnauthorized)
	}

	user, err := u.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NewError("invalid refresh token", domainerrors.ErrUnauthorized)
		}
		return nil, err
	}
	if user.Status == entities.UserStatusSuspended {
		return nil, domainerrors.ErrAccountSuspended
	}

	if err := u.denylist.Revoke(ctx, claims.ID, claims.Remaining()); err != nil {
		return nil, err
	}
	return u.issue(ctx, user)
}

// Logout revokes the access token and, when given, the refresh token.
func (u *AuthUsecase) Logout(ctx context.Context, access *jwt.Claims, refreshToken string) error {
	if err := u.denylist.Revoke(ctx, access.ID, access.Remaining()); err != nil {
		return err
	}
	if refreshToken == "" {
		return nil
	}
	refresh, err := u.jwtService.ValidateTyped(refreshToken, jwt.TokenTypeRefresh)
	if err != nil || refresh.UserID != access.UserID {
		logger.Debug(ctx, "Ignoring refresh token on logout", zap.Error(err))
		return nil
	}
	return u.denylist.Revoke(ctx, refresh.ID, refresh.Remaining())
}

// ValidateAccessToken checks signature, type and revocation.
func (u *AuthUsecase) ValidateAccessToken(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := u.jwtService.ValidateTyped(token, jwt.TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	revoked, err := u.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, jwt.ErrInvalidToken
	}
	return claims, nil
}

// ResolvePrincipal loads the user with roles and the permission set.
func (u *AuthUsecase) ResolvePrincipal(ctx context.Context, userID uuid.UUID) (*entities.Principal, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NewError("user no longer exists", domainerrors.ErrUnauthorized)
		}
		return nil, err
	}
	perms, err := u.roleRepo.GetUserPermissions(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &entities.Principal{User: user, Permissions: perms}, nil
}

// UpdateProfile changes the caller's name and phone
func (u *AuthUsecase) UpdateProfile(ctx context.Context, userID uuid.UUID, input *entities.UpdateProfileInput) (*entities.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Name = strings.TrimSpace(input.Name)
	user.Phone = strings.TrimSpace(input.Phone)
	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password before replacing it
func (u *AuthUsecase) ChangePassword(ctx context.Context, userID uuid.UUID, input *entities.ChangePasswordInput) error {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !crypto.CheckPassword(input.CurrentPassword, user.PasswordHash) {
		return domainerrors.NewError("current password is incorrect", domainerrors.ErrValidation)
	}
	if input.CurrentPassword == input.NewPassword {
		return domainerrors.NewError("new password must differ from the current password", domainerrors.ErrValidation)
	}
	hash, err := crypto.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	return u.userRepo.UpdatePassword(ctx, user.ID, hash)
}

func (u *AuthUsecase) issue(ctx context.Context, user *entities.User) (*entities.AuthResponse, error) {
	pair, err := u.jwtService.GenerateTokenPair(user.ID, user.Email, user.RoleNames())
	if err != nil {
		return nil, err
	}
	perms, err := u.roleRepo.GetUserPermissions(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &entities.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		User:         user,
		Permissions:  perms.Names(),
	}, nil
}
