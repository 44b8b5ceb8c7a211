package usecases

import (
	"context"
	"time"

	"avilegal.backend/internal/domain/entities"
	"avilegal.backend/internal/infrastructure/gateways"
	"avilegal.backend/internal/infrastructure/notification"
)

// Notifier sends templated emails. Delivery failures are not reported back.
type Notifier interface {
	Notify(ctx context.Context, job notification.EmailJob)
}

// SettingsProvider is the runtime key/value configuration.
type SettingsProvider interface {
	Get(ctx context.Context, key string) (string, error)
	GetDefault(ctx context.Context, key, def string) string
	All(ctx context.Context) (map[string]string, error)
	SetMany(ctx context.Context, values map[string]string) error
	Invalidate(ctx context.Context)
}

// GatewayRegistry resolves payment gateway adapters by identifier.
type GatewayRegistry interface {
	Get(name string) (gateways.Gateway, error)
	Names() []string
}

// FileStorage persists uploaded documents.
type FileStorage interface {
	Put(ctx context.Context, filePath string, content []byte, contentType string) error
	Delete(ctx context.Context, filePath string) error
	URL(filePath string) string
}

// TokenDenylist tracks revoked token ids until they expire.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// EmailSender delivers an already rendered email and reports the outcome.
type EmailSender interface {
	SendRendered(ctx context.Context, to, toName string, rendered *notification.Rendered) error
}

// TemplateRenderer exposes template substitution for previews and tests.
type TemplateRenderer interface {
	CommonVars(ctx context.Context) map[string]string
	RenderTemplate(tpl *entities.EmailTemplate, vars map[string]string) *notification.Rendered
}
