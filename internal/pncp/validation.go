package pncp

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/farxc/pncp_wrapper/internal/pncp/utils"
)

// ValidationError rejects a query before anything is sent upstream.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("query"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("compactdate", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if !utils.IsCompactDate(s) {
			return false
		}
		_, err := utils.ParseCompactDate(s)
		return err == nil
	})

	return v
}

// validateQuery runs the struct tags and returns the first failure as a
// *ValidationError.
func validateQuery(v *validator.Validate, q any) error {
	err := v.Struct(q)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	field := fe.Field()
	if i := strings.Index(field, "["); i > 0 {
		field = field[:i]
	}
	return &ValidationError{Field: field, Message: describe(fe)}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "compactdate":
		return fmt.Sprintf("%q is not a date in YYYYMMDD format", fe.Value())
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "len", "alpha":
		return "must be a two-letter state code"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
