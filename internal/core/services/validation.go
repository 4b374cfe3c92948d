package services

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/Kuba27x/Cinema-app/internal/core/domain"
	"github.com/go-playground/validator/v10"
)

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phonePattern = regexp.MustCompile(`^[0-9+]{9,15}$`)
)

var validationReasons = map[string]string{
	"required":     "is required",
	"not_blank":    "must not be blank",
	"uuid":         "must be a UUID",
	"cinema_email": "must look like name@domain.tld",
	"cinema_phone": "must be 9-15 digits or '+'",
	"min":          "must not be empty",
	"unique":       "must not repeat a seat",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("not_blank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("cinema_email", func(fl validator.FieldLevel) bool {
		return ValidEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("cinema_phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	return v
}

// ValidEmail reports whether s has the local@domain.tld shape accepted for
// bookings and receipt lookups.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// validateStruct runs the struct validator and reports the first failing
// field, in declaration order, as a *domain.InvalidInputError.
func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &domain.InvalidInputError{Field: "request", Reason: err.Error()}
	}

	fe := verrs[0]
	reason, ok := validationReasons[fe.Tag()]
	if !ok {
		reason = "failed " + fe.Tag() + " check"
	}
	return &domain.InvalidInputError{Field: fieldPath(fe), Reason: reason}
}

// fieldPath drops the struct name prefix from the validator namespace, so
// CreateReservationRequest.seats[1].seat_number becomes seats[1].seat_number.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
