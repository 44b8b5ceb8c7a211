package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/internal/interfaces/http/response"
	"avilegal.backend/pkg/jwt"
	"avilegal.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// UserIDKey is the context key for user ID
	UserIDKey = "userId"
	// ClaimsKey is the context key for the validated access token claims
	ClaimsKey = "claims"
	// PrincipalKey is the context key for the resolved principal
	PrincipalKey = "principal"
)

// TokenValidator validates access tokens, including revocation.
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, token string) (*jwt.Claims, error)
}

// PrincipalResolver loads a user with roles and permissions.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, userID uuid.UUID) (*entities.Principal, error)
}

// AuthMiddleware requires a valid, unrevoked bearer access token.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			response.Abort(c, domainerrors.Unauthorized("Authorization header is required"))
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			response.Abort(c, domainerrors.Unauthorized("Invalid authorization format. Use: Bearer <token>"))
			return
		}

		claims, err := validator.ValidateAccessToken(c.Request.Context(), strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			switch {
			case errors.Is(err, jwt.ErrExpiredToken):
				response.Abort(c, domainerrors.Unauthorized("Token has expired"))
			case errors.Is(err, jwt.ErrInvalidToken):
				response.Abort(c, domainerrors.Unauthorized("Invalid token"))
			default:
				response.Abort(c, err)
			}
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(ClaimsKey, claims)
		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, claims.UserID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// PrincipalMiddleware resolves the caller's roles and permissions once per
// request. Suspended accounts are rejected here.
func PrincipalMiddleware(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.Abort(c, domainerrors.Unauthorized("Unauthenticated"))
			return
		}

		principal, err := resolver.ResolvePrincipal(c.Request.Context(), userID)
		if err != nil {
			response.Abort(c, err)
			return
		}
		if principal.User.Status == entities.UserStatusSuspended {
			response.Abort(c, domainerrors.NewError("Your account has been suspended", domainerrors.ErrAccountSuspended))
			return
		}

		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

// GetUserID gets the user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

// GetClaims returns the validated access token claims.
func GetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}

// GetPrincipal returns the principal set by PrincipalMiddleware.
func GetPrincipal(c *gin.Context) (*entities.Principal, bool) {
	v, exists := c.Get(PrincipalKey)
	if !exists {
		return nil, false
	}
	p, ok := v.(*entities.Principal)
	return p, ok
}

// RequireRole allows callers holding any of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			response.Abort(c, domainerrors.Unauthorized("Unauthenticated"))
			return
		}
		if !principal.User.HasRole(roles...) {
			response.Abort(c, domainerrors.Forbidden("Access denied"))
			return
		}
		c.Next()
	}
}

// RequireStaff gates the admin area.
func RequireStaff() gin.HandlerFunc {
	return RequireRole(entities.StaffRoles...)
}

// RequirePermission allows callers holding any of perms. Super admins
// always pass.
func RequirePermission(perms ...entities.PermissionName) gin.HandlerFunc {
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = string(p)
	}
	denied := "You do not have permission to perform this action. Required: " + strings.Join(names, ", ")

	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			response.Abort(c, domainerrors.Unauthorized("Unauthenticated"))
			return
		}
		if !principal.Can(perms...) {
			response.Abort(c, domainerrors.Forbidden(denied))
			return
		}
		c.Next()
	}
}
