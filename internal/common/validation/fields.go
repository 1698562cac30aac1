package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-\(\)]{10,}$`)
	urlPattern   = regexp.MustCompile(`^(https?|ftp)://[^\s/$.?#].[^\s]*$`)
)

// Checker accumulates field-level violations for one record.
type Checker struct {
	errors []ValidationError
}

func NewChecker() *Checker {
	return &Checker{}
}

func (c *Checker) add(field, code, format string, args ...interface{}) {
	c.errors = append(c.errors, ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	})
}

// Required rejects blank strings.
func (c *Checker) Required(field, value string) *Checker {
	if strings.TrimSpace(value) == "" {
		c.add(field, "REQUIRED_FIELD_MISSING", "required field missing")
	}
	return c
}

// MaxLength counts characters, as varchar(n) does.
func (c *Checker) MaxLength(field, value string, max int) *Checker {
	if n := utf8.RuneCountInString(value); n > max {
		c.add(field, "MAX_LENGTH_VIOLATION", "value must be at most %d characters, got %d", max, n)
	}
	return c
}

// OptionalMaxLength is MaxLength for nullable columns.
func (c *Checker) OptionalMaxLength(field string, value *string, max int) *Checker {
	if value != nil {
		c.MaxLength(field, *value, max)
	}
	return c
}

// Email checks a nullable email column.
func (c *Checker) Email(field string, value *string) *Checker {
	if value != nil && *value != "" && !ValidateEmail(*value) {
		c.add(field, "PATTERN_MISMATCH", "value must be a valid email address")
	}
	return c
}

// URL checks a nullable link column.
func (c *Checker) URL(field string, value *string) *Checker {
	if value != nil && *value != "" && !ValidateURL(*value) {
		c.add(field, "PATTERN_MISMATCH", "value must be an absolute http(s) or ftp URL")
	}
	return c
}

// Decimal enforces numeric(digits, places): no more than places decimals and
// no more than digits-places whole digits.
func (c *Checker) Decimal(field string, value decimal.Decimal, digits, places int) *Checker {
	if !value.Equal(value.Round(int32(places))) {
		c.add(field, "DECIMAL_PLACES_VIOLATION", "ensure that there are no more than %d decimal places", places)
		return c
	}
	whole := value.Abs().Truncate(0)
	wholeDigits := 0
	if !whole.IsZero() {
		wholeDigits = len(whole.String())
	}
	if max := digits - places; wholeDigits > max {
		c.add(field, "MAX_DIGITS_VIOLATION", "ensure that there are no more than %d digits before the decimal point", max)
	}
	return c
}

// NullDecimal is Decimal for nullable columns.
func (c *Checker) NullDecimal(field string, value decimal.NullDecimal, digits, places int) *Checker {
	if value.Valid {
		c.Decimal(field, value.Decimal, digits, places)
	}
	return c
}

// Merge appends the errors of another result, e.g. a JSON schema check.
func (c *Checker) Merge(res *ValidationResult) *Checker {
	if res != nil {
		c.errors = append(c.errors, res.Errors...)
	}
	return c
}

func (c *Checker) Result() *ValidationResult {
	return &ValidationResult{
		Valid:  len(c.errors) == 0,
		Errors: c.errors,
	}
}

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone validates basic phone number format
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidateURL validates URL format
func ValidateURL(url string) bool {
	return urlPattern.MatchString(url)
}
