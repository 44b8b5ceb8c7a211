package entities

import "strings"

// Setting keys
const (
	SettingPaystackPublicKey    = "paystack_public_key"
	SettingPaystackSecretKey    = "paystack_secret_key"
	SettingFlutterwavePublicKey = "flutterwave_public_key"
	SettingFlutterwaveSecretKey = "flutterwave_secret_key"
	SettingFrontendURL          = "frontend_url"
	SettingCompanyName          = "company_name"
	SettingCompanyEmail         = "company_email"
	SettingCompanyPhone         = "company_phone"
	SettingSMTPHost             = "smtp_host"
	SettingSMTPPort             = "smtp_port"
	SettingSMTPUsername         = "smtp_username"
	SettingSMTPPassword         = "smtp_password"
	SettingSMTPEncryption       = "smtp_encryption"
	SettingSMTPFromAddress      = "smtp_from_address"
	SettingSMTPFromName         = "smtp_from_name"
)

const (
	maskPrefix   = "••••••••"
	maskedMarker = "••••"
)

// Setting is one key/value configuration entry
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// IsSecretSetting reports whether the value must never be shown in full.
func IsSecretSetting(key string) bool {
	return strings.Contains(key, "secret_key") ||
		strings.Contains(key, "SECRET") ||
		strings.Contains(key, "password")
}

// MaskSettingValue hides all but the last four characters.
func MaskSettingValue(value string) string {
	if value == "" {
		return ""
	}
	runes := []rune(value)
	if len(runes) <= 4 {
		return maskPrefix
	}
	return maskPrefix + string(runes[len(runes)-4:])
}

// IsMaskedValue reports whether value is a masked echo of a secret.
func IsMaskedValue(value string) bool {
	return strings.HasPrefix(value, maskedMarker)
}

// UpdateSettingsInput is a bulk key/value update
type UpdateSettingsInput struct {
	Settings map[string]string `json:"settings" binding:"required"`
}

// TestEmailInput names the recipient of a test email
type TestEmailInput struct {
	Email string `json:"email" binding:"required,email"`
}

// PublicSettings is the unauthenticated site configuration
type PublicSettings struct {
	PaystackPublicKey    string `json:"paystackPublicKey"`
	FlutterwavePublicKey string `json:"flutterwavePublicKey"`
	CompanyName          string `json:"companyName"`
	CompanyEmail         string `json:"companyEmail"`
	CompanyPhone         string `json:"companyPhone"`
}
