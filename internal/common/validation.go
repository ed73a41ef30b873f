package common

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/extraction-bench/constants"
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Message, e.Value)
}

// Validator provides validation utilities
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		errors: make([]ValidationError, 0),
	}
}

// Field runs every rule against value; rules never short-circuit each other.
func (v *Validator) Field(fieldName string, value interface{}, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

// Add records a violation that is not expressed as a rule.
func (v *Validator) Add(fieldName string, value interface{}, message string) *Validator {
	v.errors = append(v.errors, ValidationError{Field: fieldName, Value: value, Message: message})
	return v
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Messages returns every error rendered as a string, in the order recorded.
func (v *Validator) Messages() []string {
	out := make([]string, 0, len(v.errors))
	for _, err := range v.errors {
		out = append(out, err.Error())
	}
	return out
}

// ValidationRule represents a single validation rule
type ValidationRule func(fieldName string, value interface{}) *ValidationError

// deref unwraps the pointer types used by normalized records; ok is false for nil.
func deref(value interface{}) (interface{}, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case *string:
		if v == nil {
			return nil, false
		}
		return *v, true
	case *decimal.Decimal:
		if v == nil {
			return nil, false
		}
		return *v, true
	case *constants.Category:
		if v == nil {
			return nil, false
		}
		return *v, true
	}
	return value, true
}

// Required - Common validation rules
func Required(fieldName string, value interface{}) *ValidationError {
	v, ok := deref(value)
	if !ok {
		return &ValidationError{Field: fieldName, Message: "is required"}
	}
	switch s := v.(type) {
	case string:
		if strings.TrimSpace(s) == "" {
			return &ValidationError{Field: fieldName, Message: "is required"}
		}
	case constants.Category:
		if s == "" {
			return &ValidationError{Field: fieldName, Message: "is required"}
		}
	}
	return nil
}

func MaxLength(max int) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		v, ok := deref(value)
		if !ok {
			return nil
		}
		str, ok := v.(string)
		if !ok {
			return nil
		}
		if utf8.RuneCountInString(str) > max {
			return &ValidationError{
				Field:   fieldName,
				Message: fmt.Sprintf("must be at most %d characters", max),
			}
		}
		return nil
	}
}

// ISODate checks a canonical YYYY-MM-DD calendar date; absent values are left to Required.
func ISODate(fieldName string, value interface{}) *ValidationError {
	v, ok := deref(value)
	if !ok {
		return nil
	}
	str, ok := v.(string)
	if !ok {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be a string"}
	}
	if _, err := time.Parse("2006-01-02", str); err != nil {
		return &ValidationError{Field: fieldName, Value: str, Message: "must be a valid calendar date (YYYY-MM-DD)"}
	}
	return nil
}

// NonNegative checks a decimal amount; absent values are left to Required.
func NonNegative(fieldName string, value interface{}) *ValidationError {
	v, ok := deref(value)
	if !ok {
		return nil
	}
	d, ok := v.(decimal.Decimal)
	if !ok {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be numeric"}
	}
	if d.IsNegative() {
		return &ValidationError{Field: fieldName, Value: d.String(), Message: "must be non-negative"}
	}
	return nil
}

var currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

func CurrencyCode(fieldName string, value interface{}) *ValidationError {
	v, ok := deref(value)
	if !ok {
		return nil
	}
	str, ok := v.(string)
	if !ok {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be a string"}
	}

	// ISO 4217 currency codes are 3 uppercase letters
	if !currencyRegex.MatchString(str) {
		return &ValidationError{
			Field:   fieldName,
			Value:   str,
			Message: "must be 3 uppercase letters (ISO 4217)",
		}
	}
	if !constants.IsRecognizedCurrency(str) {
		return &ValidationError{
			Field:   fieldName,
			Value:   str,
			Message: "is not a recognized currency code",
		}
	}
	return nil
}

// OneOfCategory checks membership in the category enum.
func OneOfCategory(fieldName string, value interface{}) *ValidationError {
	v, ok := deref(value)
	if !ok {
		return nil
	}
	cat, ok := v.(constants.Category)
	if !ok || !cat.IsValid() {
		return &ValidationError{
			Field:   fieldName,
			Value:   v,
			Message: "must be one of " + strings.Join(constants.AsStringSlice(), ", "),
		}
	}
	return nil
}
