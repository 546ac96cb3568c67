// src/security/validation/field_validator.go
package validation

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

var ErrValidationFailed = errors.New("validation failed")

const (
	DefaultMaxStringLength = 255
	MaxMonikerLength       = 32
	MaxMonthLength         = 16

	// fractionTolerance absorbs float noise from the exporter's divisions.
	fractionTolerance = 1e-9
)

// --- String Validators ---

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// --- Numeric Validators ---

// ValidateFinite rejects NaN and infinities.
func ValidateFinite(v float64, fieldName string) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s is not a finite number", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateFraction checks that v is a finite fraction in [0,1].
func ValidateFraction(v float64, fieldName string) error {
	if err := ValidateFinite(v, fieldName); err != nil {
		return err
	}
	if v < -fractionTolerance || v > 1+fractionTolerance {
		return fmt.Errorf("%w: %s must be a fraction between 0 and 1, got %g", ErrValidationFailed, fieldName, v)
	}
	return nil
}

// --- Month Validator ---

// ValidateMonth checks a month label such as "Jan-24" or "01-2024": a non-empty
// segment, a '-' separator, and a non-empty year segment after it.
func ValidateMonth(s, fieldName string) error {
	if err := ValidateStringNotEmpty(s, fieldName); err != nil {
		return err
	}
	if err := ValidateStringMaxLength(s, MaxMonthLength, fieldName); err != nil {
		return err
	}
	parts := strings.Split(s, "-")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("%w: %s ('%s') is not in the expected format (MON-YY)", ErrValidationFailed, fieldName, s)
	}
	return nil
}
