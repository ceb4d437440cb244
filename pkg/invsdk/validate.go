package invsdk

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError is returned when a payload fails client-side validation.
// No request is sent.
type ValidationError struct {
	// Fields maps the JSON field name to the reason it was rejected
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, e.Fields[name])
	}
	return strings.Join(msgs, "; ")
}

// Validator checks request payloads against their validate struct tags.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()

	// Use JSON tag names instead of struct field names for error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})

	v.RegisterStructValidation(transactionSupplierRule, CreateTransactionRequest{})

	return &Validator{validate: v}
}

// Validate returns a *ValidationError when payload breaks a rule.
func (v *Validator) Validate(payload any) error {
	if err := v.validate.Struct(payload); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return formatValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// transactionSupplierRule requires a supplier for stock movements that come
// from or go back to one.
func transactionSupplierRule(sl validator.StructLevel) {
	tx := sl.Current().Interface().(CreateTransactionRequest)
	switch tx.TransactionType {
	case TransactionDelivery, TransactionPullOut:
		if tx.SupplierID == nil {
			sl.ReportError(tx.SupplierID, "supplier_id", "SupplierID", "required_for_type", tx.TransactionType)
		}
	}
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	out := &ValidationError{Fields: make(map[string]string, len(errs))}
	for _, err := range errs {
		var message string
		field := err.Field()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "required_for_type":
			message = fmt.Sprintf("%s is required for %s transactions", field, err.Param())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", field, err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", field, err.Param())
		case "gte":
			message = fmt.Sprintf("%s must be greater than or equal to %s", field, err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of [%s]", field, err.Param())
		default:
			message = fmt.Sprintf("%s failed validation for %s", field, err.Tag())
		}
		out.Fields[field] = message
	}

	return out
}
