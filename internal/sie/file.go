package sie

import (
	"fmt"
	"time"

	"github.com/tinoosan/bokforing/internal/ledger"
)

// File is the in-memory form of a parsed SIE4 document.
type File struct {
	Flag        int
	Format      string
	Type        string
	Program     string
	ProgramVer  string
	Generated   time.Time
	CompanyName string
	OrgNumber   string
	// Years is keyed by the SIE year index: 0 = current year, -1 = previous.
	Years           map[int]Period
	Accounts        []Account
	OpeningBalances []Balance
	ClosingBalances []Balance
	Results         []Balance
	Vouchers        []Voucher
}

// Period is one fiscal year declared with #RAR.
type Period struct {
	Start time.Time
	End   time.Time
}

// Account is a #KONTO row.
type Account struct {
	Number string
	Name   string
}

// Balance is an #IB, #UB or #RES row, in öre.
type Balance struct {
	YearIndex     int
	AccountNumber string
	Amount        ledger.Ore
}

// Voucher is a #VER block. Amounts on transactions are signed öre:
// positive is a debit, negative a credit.
type Voucher struct {
	Series       string
	Number       int
	Date         time.Time
	Description  string
	Transactions []Transaction
}

// Transaction is one #TRANS row inside a voucher block.
type Transaction struct {
	AccountNumber string
	Amount        ledger.Ore
	Description   string
}

// ParseErrorCode identifies the class of a parse failure.
type ParseErrorCode string

const (
	// ErrCodeInvalidFormat covers any malformed line; the whole parse aborts,
	// partial results are never returned.
	ErrCodeInvalidFormat ParseErrorCode = "INVALID_FORMAT"
	// ErrCodeMissingRequiredField is returned when a mandatory tag such as
	// #FNAMN never appears.
	ErrCodeMissingRequiredField ParseErrorCode = "MISSING_REQUIRED_FIELD"
)

// ParseError reports why a SIE document could not be parsed. Line is 1-based
// and set for INVALID_FORMAT; Field names the missing tag for
// MISSING_REQUIRED_FIELD.
type ParseError struct {
	Code    ParseErrorCode
	Line    int
	Field   string
	Message string
}

func (e *ParseError) Error() string {
	if e.Code == ErrCodeInvalidFormat {
		return fmt.Sprintf("%s: line %d: %s", e.Code, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
}

func invalidFormat(line int, format string, args ...any) *ParseError {
	return &ParseError{Code: ErrCodeInvalidFormat, Line: line, Message: fmt.Sprintf(format, args...)}
}

func missingField(field string) *ParseError {
	return &ParseError{Code: ErrCodeMissingRequiredField, Field: field, Message: "required field is missing"}
}
