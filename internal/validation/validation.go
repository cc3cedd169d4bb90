// Package validation runs client-side form checks before any network call.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	pkgvalidator "github.com/Kiran6976/Houserent-Frontend-sub000/pkg/validator"
)

// Errors maps a form field (its JSON name) to a user-facing message
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a message for a field, keeping the first one
func (e Errors) Add(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

// Err returns e as an error, or nil when no field failed
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// AsErrors extracts field errors from err
func AsErrors(err error) (Errors, bool) {
	var verrs Errors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}

// Validator wraps go-playground/validator with the marketplace's rules
type Validator struct {
	validate *validator.Validate
	phone    *pkgvalidator.PhoneValidator
}

// New creates a validator with custom tags registered
func New() *Validator {
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		phone:    pkgvalidator.NewPhoneValidator(),
	}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Money travels as decimal.Decimal; rules see its string form.
	v.validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	mustRegister(v.validate, "in_phone", func(fl validator.FieldLevel) bool {
		return v.phone.IsValid(fl.Field().String())
	})
	mustRegister(v.validate, "dec_positive", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.IsPositive()
	})
	mustRegister(v.validate, "dec_nonnegative", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && !d.IsNegative()
	})
	mustRegister(v.validate, "bank_account", func(fl validator.FieldLevel) bool {
		_, err := pkgvalidator.ValidateAccountNumber(fl.Field().String())
		return err == nil
	})
	mustRegister(v.validate, "ifsc", func(fl validator.FieldLevel) bool {
		_, err := pkgvalidator.ValidateIFSC(fl.Field().String())
		return err == nil
	})
	mustRegister(v.validate, "upi_id", func(fl validator.FieldLevel) bool {
		_, err := pkgvalidator.ValidateUPIID(fl.Field().String())
		return err == nil
	})
	mustRegister(v.validate, "period", func(fl validator.FieldLevel) bool {
		_, err := pkgvalidator.ValidatePeriod(fl.Field().String())
		return err == nil
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// Struct validates s and returns Errors keyed by JSON field name, or nil
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}

	out := Errors{}
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "This field is required"
	case "email":
		return "Enter a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("Must be exactly %s characters", fe.Param())
	case "numeric":
		return "Must contain digits only"
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return "Enter a valid date (YYYY-MM-DD)"
	case "in_phone":
		return "Enter a valid 10-digit mobile number"
	case "dec_positive":
		return "Must be a number greater than 0"
	case "dec_nonnegative":
		return "Must be a number, 0 or more"
	case "bank_account":
		return pkgvalidator.ErrInvalidAccount.Error()
	case "ifsc":
		return pkgvalidator.ErrInvalidIFSC.Error()
	case "upi_id":
		return pkgvalidator.ErrInvalidUPIID.Error()
	case "period":
		return pkgvalidator.ErrInvalidPeriod.Error()
	}
	return "Invalid value"
}
