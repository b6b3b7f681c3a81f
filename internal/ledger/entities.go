package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Ore is a monetary amount in öre (1/100 SEK). All arithmetic in the engine
// is exact integer arithmetic on this type; conversion to kronor happens in
// the presentation layer only.
type Ore int64

// AccountType enumerates the broad classification of an account in the ledger.
type AccountType string

const (
	// AccountTypeAsset increases on the debit side and holds resources owned by the entity.
	AccountTypeAsset AccountType = "asset"
	// AccountTypeLiability increases on the credit side and tracks obligations.
	AccountTypeLiability AccountType = "liability"
	// AccountTypeEquity captures the owner's residual interest in the entity.
	AccountTypeEquity AccountType = "equity"
	// AccountTypeRevenue represents inflows that increase equity.
	AccountTypeRevenue AccountType = "revenue"
	// AccountTypeExpense represents outflows that decrease equity.
	AccountTypeExpense AccountType = "expense"
)

// Account is one entry in the BAS chart of accounts. Number is the 4-digit
// BAS account number and is the stable identifier vouchers reference.
type Account struct {
	Number string
	Name   string
	Type   AccountType
	// VAT marks accounts that participate in the VAT summary report.
	VAT bool
	// Active indicates whether new vouchers may post to the account.
	// Inactive accounts remain usable for historical reports.
	Active bool
}

// VoucherLine is a single debit or credit posting within a voucher.
// Exactly one of Debit/Credit is nonzero on a valid line.
type VoucherLine struct {
	ID            uuid.UUID
	VoucherID     uuid.UUID
	AccountNumber string
	Debit         Ore
	Credit        Ore
	Description   string
}

// Valid reports whether the line has exactly one nonzero, non-negative side.
func (l VoucherLine) Valid() bool {
	if l.Debit < 0 || l.Credit < 0 {
		return false
	}
	return (l.Debit > 0) != (l.Credit > 0)
}

// Voucher is one atomic, balanced accounting transaction (verifikat).
// Vouchers are immutable once materialized; corrections are new vouchers
// linked through CorrectsID/CorrectedByID, never edits.
type Voucher struct {
	ID           uuid.UUID
	FiscalYearID uuid.UUID
	// Number is assigned monotonically per fiscal year and never reused.
	Number      int
	Date        time.Time
	Description string
	Lines       []VoucherLine
	// CorrectsID points at the voucher this one reverses, if any.
	CorrectsID *uuid.UUID
	// CorrectedByID points at the voucher that reversed this one, if any.
	CorrectedByID *uuid.UUID
}

// TotalDebit sums the debit side of all lines.
func (v Voucher) TotalDebit() Ore {
	var sum Ore
	for _, l := range v.Lines {
		sum += l.Debit
	}
	return sum
}

// TotalCredit sums the credit side of all lines.
func (v Voucher) TotalCredit() Ore {
	var sum Ore
	for _, l := range v.Lines {
		sum += l.Credit
	}
	return sum
}

// Balanced reports whether debits equal credits exactly.
func (v Voucher) Balanced() bool { return v.TotalDebit() == v.TotalCredit() }

// FiscalYear bounds the period a voucher may be posted into. Once Closed is
// set no voucher may be created or corrected within it.
type FiscalYear struct {
	ID        uuid.UUID
	StartDate time.Time
	EndDate   time.Time
	Closed    bool
}

// Contains reports whether d falls within [StartDate, EndDate] at day
// granularity.
func (fy FiscalYear) Contains(d time.Time) bool {
	day := TruncateDay(d)
	return !day.Before(TruncateDay(fy.StartDate)) && !day.After(TruncateDay(fy.EndDate))
}

// TruncateDay drops the time-of-day component. SIE has no time component, so
// all date comparisons in the engine happen at day granularity.
func TruncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
