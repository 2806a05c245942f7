package invoice

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthorized is returned when a guarded operation is attempted
	// by anyone other than the configured admin.
	ErrUnauthorized = errors.New("invoice: only admin may perform this operation")
	// ErrDuplicateInvoice is returned when an invoice id already exists
	// in the store. Existing records are never overwritten.
	ErrDuplicateInvoice = errors.New("invoice: invoice id already exists")
	// ErrInvoiceNotFound is returned when the id is absent, including
	// ids that were already settled or cancelled.
	ErrInvoiceNotFound = errors.New("invoice: invoice not found")
	// ErrInvalidPayment is returned when the attached payment set is
	// malformed: zero or multiple coins on pay, or any funds attached to
	// an operation that does not accept them.
	ErrInvalidPayment = errors.New("invoice: invalid attached payment")
	// ErrInvalidDenom is returned when the attached coin is not the
	// configured settlement denom.
	ErrInvalidDenom = errors.New("invoice: attached denom not accepted")
	// ErrAmountMismatch is returned when the attached amount does not
	// equal the invoice amount exactly. Partial and over-payments are
	// both rejected.
	ErrAmountMismatch = errors.New("invoice: attached amount does not match invoice")
	// ErrNotInstantiated is returned when an operation arrives before
	// the contract configuration exists.
	ErrNotInstantiated = errors.New("invoice: contract not instantiated")
	// ErrAlreadyInstantiated is returned when instantiation is attempted
	// twice; the configuration is write-once.
	ErrAlreadyInstantiated = errors.New("invoice: contract already instantiated")

	errNilState = errors.New("invoice: engine state not configured")
)

// ValidationError reports which input fields failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invoice: invalid fields: %s", strings.Join(e.Fields, ", "))
}

// InvalidFields reports whether err is a ValidationError and, if so,
// which fields it names.
func InvalidFields(err error) ([]string, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Fields, true
	}
	return nil, false
}
