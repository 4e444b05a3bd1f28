package middleware

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "github.com/MayaS12/Malnutrition-dashboard/internal/errors"
	"github.com/MayaS12/Malnutrition-dashboard/pkg/contracts/domain"
)

// Validator checks request structs tagged with go-playground validate rules.
// Field names in errors come from the query tag, then the json tag.
type Validator struct {
	validate *validator.Validate
}

// NewValidator registers the dashboard's custom rules
func NewValidator() *Validator {
	v := validator.New()

	v.RegisterValidation("geo_level", isGeoLevel)
	v.RegisterValidation("growth_status", isGrowthStatus)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"query", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	return &Validator{validate: v}
}

// Struct validates s and returns an *apierrors.APIError listing every bad field
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.ErrInvalidRequest
	}

	out := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(out)
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(err.Param(), " ", ", "))
	case "geo_level":
		return fmt.Sprintf("%s must be one of: %s, %s", field, domain.LevelState, domain.LevelDistrict)
	case "growth_status":
		names := make([]string, len(domain.GrowthStatuses))
		for i, s := range domain.GrowthStatuses {
			names[i] = string(s)
		}
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(names, ", "))
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

func isGeoLevel(fl validator.FieldLevel) bool {
	return domain.Level(fl.Field().String()).IsValid()
}

func isGrowthStatus(fl validator.FieldLevel) bool {
	return domain.GrowthStatus(fl.Field().String()).IsValid()
}
