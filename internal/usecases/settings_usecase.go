package usecases

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/internal/infrastructure/notification"
	"avilegal.backend/pkg/logger"
)

var smtpEncryptions = map[string]bool{"tls": true, "ssl": true, "none": true}

const testEmailBody = `# Test Email

This is a test email from **%s**.

If you are reading this, your SMTP settings are working.`

// SettingsUsecase is the admin view over the runtime settings
type SettingsUsecase struct {
	settings SettingsProvider
	sender   EmailSender
	defaults PublicDefaults
}

// PublicDefaults fill public settings that were never configured.
type PublicDefaults struct {
	CompanyName string
}

func NewSettingsUsecase(settings SettingsProvider, sender EmailSender, defaults PublicDefaults) *SettingsUsecase {
	if defaults.CompanyName == "" {
		defaults.CompanyName = "AviLegal"
	}
	return &SettingsUsecase{settings: settings, sender: sender, defaults: defaults}
}

// List returns every setting sorted by key with secrets masked.
func (u *SettingsUsecase) List(ctx context.Context) ([]entities.Setting, error) {
	all, err := u.settings.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entities.Setting, 0, len(all))
	for k, v := range all {
		if entities.IsSecretSetting(k) {
			v = entities.MaskSettingValue(v)
		}
		out = append(out, entities.Setting{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Update writes the given keys. Values still carrying the mask are the
// form echoing a secret back and are skipped.
func (u *SettingsUsecase) Update(ctx context.Context, values map[string]string) ([]entities.Setting, error) {
	changes := make(map[string]string, len(values))
	for k, v := range values {
		k = strings.TrimSpace(k)
		if k == "" {
			return nil, domainerrors.NewError("setting key is required", domainerrors.ErrValidation)
		}
		if entities.IsMaskedValue(v) {
			continue
		}
		if k == entities.SettingSMTPEncryption && v != "" && !smtpEncryptions[strings.ToLower(v)] {
			return nil, domainerrors.NewError("smtp_encryption must be tls, ssl or none", domainerrors.ErrValidation)
		}
		changes[k] = strings.TrimSpace(v)
	}
	if len(changes) > 0 {
		if err := u.settings.SetMany(ctx, changes); err != nil {
			return nil, err
		}
		logger.Info(ctx, "Settings updated", zap.Int("count", len(changes)))
	}
	return u.List(ctx)
}

// Public returns the configuration the storefront may see
func (u *SettingsUsecase) Public(ctx context.Context) *entities.PublicSettings {
	return &entities.PublicSettings{
		PaystackPublicKey:    u.settings.GetDefault(ctx, entities.SettingPaystackPublicKey, ""),
		FlutterwavePublicKey: u.settings.GetDefault(ctx, entities.SettingFlutterwavePublicKey, ""),
		CompanyName:          u.settings.GetDefault(ctx, entities.SettingCompanyName, u.defaults.CompanyName),
		CompanyEmail:         u.settings.GetDefault(ctx, entities.SettingCompanyEmail, ""),
		CompanyPhone:         u.settings.GetDefault(ctx, entities.SettingCompanyPhone, ""),
	}
}

// SendTestEmail delivers a fixed message with the current SMTP settings.
// Unlike business notifications the delivery error is returned.
func (u *SettingsUsecase) SendTestEmail(ctx context.Context, to string) error {
	company := u.settings.GetDefault(ctx, entities.SettingCompanyName, u.defaults.CompanyName)
	rendered := &notification.Rendered{
		Subject:  "Test Email from " + company,
		Markdown: fmt.Sprintf(testEmailBody, company),
	}
	if err := u.sender.SendRendered(ctx, to, "", rendered); err != nil {
		logger.Error(ctx, "Test email failed", zap.String("to", to), zap.Error(err))
		return domainerrors.NewError("Failed to send test email: "+err.Error(), domainerrors.ErrGatewayError)
	}
	return nil
}
