package entities

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	domainerrors "avilegal.backend/internal/domain/errors"
)

// Business types that require more than one partner on the application.
var multiPartnerBusinessTypes = map[string]bool{
	"partnership":         true,
	"limited_partnership": true,
}

// Person is an individual named on an application.
type Person struct {
	FullName    string `json:"fullName" validate:"required,max=255"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Address     string `json:"address,omitempty" validate:"omitempty,max=500"`
	Nationality string `json:"nationality,omitempty" validate:"omitempty,max=100"`
	DateOfBirth string `json:"dateOfBirth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IDType      string `json:"idType,omitempty" validate:"omitempty,oneof=passport nin drivers_license voters_card"`
	IDNumber    string `json:"idNumber,omitempty" validate:"omitempty,max=50"`
}

// Partner is a director, proprietor or trustee with an optional holding.
type Partner struct {
	Person
	Role         string  `json:"role,omitempty" validate:"omitempty,max=100"`
	SharePercent float64 `json:"sharePercent,omitempty" validate:"gte=0,lte=100"`
}

// ApplicationDetails is the structured form data submitted with an application.
type ApplicationDetails struct {
	Applicant        *Person           `json:"applicant,omitempty"`
	AlternativeNames []string          `json:"alternativeNames,omitempty" validate:"max=3,dive,required,max=255"`
	NatureOfBusiness string            `json:"natureOfBusiness,omitempty" validate:"max=1000"`
	BusinessAddress  string            `json:"businessAddress,omitempty" validate:"max=500"`
	Partners         []Partner         `json:"partners,omitempty" validate:"max=20,dive"`
	Extra            map[string]string `json:"extra,omitempty" validate:"max=50,dive,keys,required,max=64,endkeys,max=2000"`
}

var (
	detailsValidator     *validator.Validate
	detailsValidatorOnce sync.Once
)

func getDetailsValidator() *validator.Validate {
	detailsValidatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		detailsValidator = v
	})
	return detailsValidator
}

// Validate checks field constraints and business-type specific rules.
func (d ApplicationDetails) Validate(businessType string) error {
	if err := getDetailsValidator().Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domainerrors.NewError(describeFieldError(verrs[0]), domainerrors.ErrValidation)
		}
		return domainerrors.NewError("invalid application details", domainerrors.ErrValidation)
	}

	if multiPartnerBusinessTypes[strings.ToLower(businessType)] && len(d.Partners) < 2 {
		return domainerrors.NewError("details.partners: at least two partners are required", domainerrors.ErrValidation)
	}

	var total float64
	for _, p := range d.Partners {
		total += p.SharePercent
	}
	if total > 100 {
		return domainerrors.NewError("details.partners: share percentages exceed 100", domainerrors.ErrValidation)
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "ApplicationDetails.")
	field = strings.ReplaceAll(field, "Person.", "")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("details.%s is required", field)
	case "max":
		return fmt.Sprintf("details.%s must be at most %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("details.%s must be a valid email", field)
	case "oneof":
		return fmt.Sprintf("details.%s must be one of: %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("details.%s must be a date (YYYY-MM-DD)", field)
	default:
		return fmt.Sprintf("details.%s is invalid", field)
	}
}
