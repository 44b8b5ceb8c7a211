package notification

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/pkg/logger"
)

const fallbackBody = "This is an automated notification."

// TemplateSource loads email templates by slug.
type TemplateSource interface {
	GetBySlug(ctx context.Context, slug string) (*entities.EmailTemplate, error)
}

// Settings is the subset of the settings provider used for common variables.
type Settings interface {
	GetDefault(ctx context.Context, key, def string) string
}

// Defaults are used when the settings store has no value.
type Defaults struct {
	CompanyName string
	FrontendURL string
}

// Rendered is a template after placeholder substitution.
type Rendered struct {
	Subject  string
	Markdown string
}

type Renderer struct {
	templates TemplateSource
	settings  Settings
	defaults  Defaults
}

func NewRenderer(templates TemplateSource, settings Settings, defaults Defaults) *Renderer {
	if defaults.CompanyName == "" {
		defaults.CompanyName = "AviLegal"
	}
	return &Renderer{templates: templates, settings: settings, defaults: defaults}
}

// CommonVars are merged under every template's own variables.
func (r *Renderer) CommonVars(ctx context.Context) map[string]string {
	frontend := strings.TrimRight(r.settings.GetDefault(ctx, entities.SettingFrontendURL, r.defaults.FrontendURL), "/")
	return map[string]string{
		"company_name":  r.settings.GetDefault(ctx, entities.SettingCompanyName, r.defaults.CompanyName),
		"company_email": r.settings.GetDefault(ctx, entities.SettingCompanyEmail, ""),
		"company_phone": r.settings.GetDefault(ctx, entities.SettingCompanyPhone, ""),
		"dashboard_url": frontend + "/dashboard",
	}
}

// Render resolves slug and substitutes vars. A missing or inactive template
// yields the generic fallback message.
func (r *Renderer) Render(ctx context.Context, slug string, vars map[string]string) (*Rendered, error) {
	merged := r.CommonVars(ctx)
	for k, v := range vars {
		merged[k] = v
	}

	tpl, err := r.templates.GetBySlug(ctx, slug)
	if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}
	if tpl == nil || !tpl.IsActive {
		logger.Warn(ctx, "Email template missing or inactive", zap.String("template", slug))
		return &Rendered{
			Subject:  "Notification from " + merged["company_name"],
			Markdown: fallbackBody,
		}, nil
	}

	return r.RenderTemplate(tpl, merged), nil
}

// RenderTemplate substitutes vars into tpl as is, without common variables.
func (r *Renderer) RenderTemplate(tpl *entities.EmailTemplate, vars map[string]string) *Rendered {
	return &Rendered{
		Subject:  entities.RenderPlaceholders(tpl.Subject, vars),
		Markdown: entities.RenderPlaceholders(tpl.Body, vars),
	}
}
