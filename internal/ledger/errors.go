package ledger

import "fmt"

// ErrorCode is a machine-readable identifier for a domain failure. Every
// fallible engine operation returns a *DomainError carrying one of these
// codes; callers switch on the code rather than matching message text.
type ErrorCode string

const (
	ErrCodeNoLines          ErrorCode = "NO_LINES"
	ErrCodeFiscalYearClosed ErrorCode = "FISCAL_YEAR_CLOSED"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidLine      ErrorCode = "INVALID_LINE"
	ErrCodeAccountNotFound  ErrorCode = "ACCOUNT_NOT_FOUND"
	ErrCodeUnbalanced       ErrorCode = "UNBALANCED"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyCorrected ErrorCode = "ALREADY_CORRECTED"
)

// DomainError is a typed domain failure with a stable code and a
// human-readable message. LineIndex is set for per-line violations and
// Difference for unbalanced vouchers (debits minus credits).
type DomainError struct {
	Code       ErrorCode
	Message    string
	LineIndex  int
	Difference Ore
}

func (e *DomainError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// NewDomainError constructs a DomainError with a formatted message.
func NewDomainError(code ErrorCode, format string, args ...any) *DomainError {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...), LineIndex: -1}
}

// LineError constructs an INVALID_LINE (or similar per-line) error pointing
// at the zero-based line index.
func LineError(code ErrorCode, index int, format string, args ...any) *DomainError {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...), LineIndex: index}
}
