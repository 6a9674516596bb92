// Package validate collects field errors and reports them as a single
// apperr validation error.
package validate

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/kevinaaaquil/novels/apperr"
)

// Validator is not safe for concurrent use; create one per operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails when the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// Email fails for anything net/mail cannot parse as a bare address. Empty
// values are left to Required.
func (v *Validator) Email(field, value string) *Validator {
	if value == "" {
		return v
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v.add(field, "Must be a valid email address")
	}
	return v
}

func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// Err returns nil when every rule passed. msg becomes the top-level message.
func (v *Validator) Err(msg string) error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError(msg, v.errs...)
}

func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}
