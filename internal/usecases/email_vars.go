package usecases

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"avilegal.backend/internal/domain/entities"
)

const (
	emailDateTimeLayout = "January 2, 2006 3:04 PM"
	emailDateLayout     = "January 2, 2006"
)

// humanize turns "pending_payment" into "Pending payment".
func humanize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// formatAmount renders 2 decimal places with thousands separators.
func formatAmount(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	intPart, frac := fixed[:len(fixed)-3], fixed[len(fixed)-3:]

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString(frac)
	return b.String()
}

func milestoneInfo(m *entities.Milestone) string {
	if m == nil {
		return ""
	}
	return "**" + m.Title + "** - " + m.Description
}

func serviceName(app *entities.Application) string {
	if app.Service != nil && app.Service.Name != "" {
		return app.Service.Name
	}
	return "Service"
}

func formatEmailTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(emailDateTimeLayout)
}
