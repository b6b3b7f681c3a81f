// Package voucher implements the voucher engine: validation of candidate
// vouchers against their fiscal year and chart of accounts, materialization
// of validated drafts, the correction chain, and fiscal-year closing.
package voucher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/bokforing/internal/errs"
	"github.com/tinoosan/bokforing/internal/ledger"
)

// Repo defines the read operations needed by the service.
type Repo interface {
	FiscalYear(ctx context.Context, id uuid.UUID) (ledger.FiscalYear, error)
	ChartOfAccounts(ctx context.Context) (map[string]ledger.Account, error)
	Voucher(ctx context.Context, id uuid.UUID) (ledger.Voucher, error)
	VouchersByFiscalYear(ctx context.Context, fiscalYearID uuid.UUID) ([]ledger.Voucher, error)
}

// Writer defines the write operations needed by the service. Allocation of
// the next voucher number must be serialized by the implementation so
// concurrent submissions never observe the same number, and LinkCorrection
// must re-check the already-corrected invariant at commit time.
type Writer interface {
	NextVoucherNumber(ctx context.Context, fiscalYearID uuid.UUID) (int, error)
	CreateVoucher(ctx context.Context, v ledger.Voucher) (ledger.Voucher, error)
	LinkCorrection(ctx context.Context, originalID, correctionID uuid.UUID) error
	CloseFiscalYear(ctx context.Context, fiscalYearID uuid.UUID) error
}

// Draft is a candidate voucher as submitted by a caller, before validation
// and ID assignment.
type Draft struct {
	FiscalYearID uuid.UUID
	Date         time.Time
	Description  string
	Lines        []DraftLine
}

// DraftLine mirrors a voucher line without identity.
type DraftLine struct {
	AccountNumber string
	Debit         ledger.Ore
	Credit        ledger.Ore
	Description   string
}

// Service exposes the voucher engine operations.
type Service interface {
	Validate(draft Draft, fy ledger.FiscalYear, accounts map[string]ledger.Account) *ledger.DomainError
	Create(ctx context.Context, draft Draft) (ledger.Voucher, error)
	Correct(ctx context.Context, voucherID uuid.UUID, date time.Time) (ledger.Voucher, error)
	CloseYear(ctx context.Context, fiscalYearID uuid.UUID, resultAccount string, date time.Time) (ledger.Voucher, error)
}

type service struct {
	repo   Repo
	writer Writer
	newID  func() uuid.UUID
}

// New constructs the voucher service. Line IDs come from uuid.New; voucher
// numbers from the Writer's allocator.
func New(repo Repo, writer Writer) Service {
	return &service{repo: repo, writer: writer, newID: uuid.New}
}

// Validate checks a draft against its fiscal year and chart of accounts.
// Rules run in a fixed order and the first violation wins; callers must not
// expect multiple simultaneous errors.
func (s *service) Validate(draft Draft, fy ledger.FiscalYear, accounts map[string]ledger.Account) *ledger.DomainError {
	if len(draft.Lines) == 0 {
		return ledger.NewDomainError(ledger.ErrCodeNoLines, "a voucher requires at least one line")
	}
	if fy.Closed {
		return ledger.NewDomainError(ledger.ErrCodeFiscalYearClosed, "fiscal year is closed")
	}
	if !fy.Contains(draft.Date) {
		return ledger.NewDomainError(ledger.ErrCodeInvalidDate, "date %s is outside the fiscal year", draft.Date.Format("2006-01-02"))
	}
	var totalDebit, totalCredit ledger.Ore
	for i, l := range draft.Lines {
		if l.Debit < 0 || l.Credit < 0 {
			return ledger.LineError(ledger.ErrCodeInvalidLine, i, "line %d: amounts must not be negative", i)
		}
		if l.Debit > 0 && l.Credit > 0 {
			return ledger.LineError(ledger.ErrCodeInvalidLine, i, "line %d: a line cannot carry both debit and credit", i)
		}
		if l.Debit == 0 && l.Credit == 0 {
			return ledger.LineError(ledger.ErrCodeInvalidLine, i, "line %d: a line must carry a debit or a credit", i)
		}
		if !ledger.ValidNumber(l.AccountNumber) {
			return ledger.LineError(ledger.ErrCodeInvalidLine, i, "line %d: %q is not a valid account number", i, l.AccountNumber)
		}
		if _, ok := accounts[l.AccountNumber]; !ok {
			return ledger.LineError(ledger.ErrCodeAccountNotFound, i, "line %d: account %s is not in the chart of accounts", i, l.AccountNumber)
		}
		totalDebit += l.Debit
		totalCredit += l.Credit
	}
	if totalDebit != totalCredit {
		return &ledger.DomainError{
			Code:       ledger.ErrCodeUnbalanced,
			Message:    fmt.Sprintf("debits (%d) do not equal credits (%d)", totalDebit, totalCredit),
			LineIndex:  -1,
			Difference: totalDebit - totalCredit,
		}
	}
	return nil
}

// Materialize turns a validated draft into an immutable voucher. It assumes
// Validate already passed and performs no checks of its own: it only assigns
// identity (voucher ID, per-year number, line IDs).
func Materialize(draft Draft, id uuid.UUID, number int, newLineID func() uuid.UUID) ledger.Voucher {
	v := ledger.Voucher{
		ID:           id,
		FiscalYearID: draft.FiscalYearID,
		Number:       number,
		Date:         ledger.TruncateDay(draft.Date),
		Description:  draft.Description,
		Lines:        make([]ledger.VoucherLine, 0, len(draft.Lines)),
	}
	for _, l := range draft.Lines {
		v.Lines = append(v.Lines, ledger.VoucherLine{
			ID:            newLineID(),
			VoucherID:     id,
			AccountNumber: l.AccountNumber,
			Debit:         l.Debit,
			Credit:        l.Credit,
			Description:   l.Description,
		})
	}
	return v
}

// Create validates the draft and persists the materialized voucher.
func (s *service) Create(ctx context.Context, draft Draft) (ledger.Voucher, error) {
	fy, err := s.repo.FiscalYear(ctx, draft.FiscalYearID)
	if err != nil {
		return ledger.Voucher{}, err
	}
	accounts, err := s.repo.ChartOfAccounts(ctx)
	if err != nil {
		return ledger.Voucher{}, err
	}
	if derr := s.Validate(draft, fy, accounts); derr != nil {
		return ledger.Voucher{}, derr
	}
	number, err := s.writer.NextVoucherNumber(ctx, draft.FiscalYearID)
	if err != nil {
		return ledger.Voucher{}, err
	}
	v := Materialize(draft, s.newID(), number, s.newID)
	return s.writer.CreateVoucher(ctx, v)
}

// Correct produces a new voucher that reverses the original: every line is
// re-emitted with debit and credit swapped and the two vouchers are linked
// bidirectionally. The original is never mutated beyond the back-reference;
// this keeps the ledger append-only.
func (s *service) Correct(ctx context.Context, voucherID uuid.UUID, date time.Time) (ledger.Voucher, error) {
	orig, err := s.repo.Voucher(ctx, voucherID)
	if errors.Is(err, errs.ErrNotFound) {
		return ledger.Voucher{}, ledger.NewDomainError(ledger.ErrCodeNotFound, "voucher %s does not exist", voucherID)
	}
	if err != nil {
		return ledger.Voucher{}, err
	}
	if orig.CorrectedByID != nil {
		return ledger.Voucher{}, ledger.NewDomainError(ledger.ErrCodeAlreadyCorrected, "voucher #%d has already been corrected", orig.Number)
	}
	fy, err := s.repo.FiscalYear(ctx, orig.FiscalYearID)
	if err != nil {
		return ledger.Voucher{}, err
	}
	accounts, err := s.repo.ChartOfAccounts(ctx)
	if err != nil {
		return ledger.Voucher{}, err
	}

	draft := Draft{
		FiscalYearID: orig.FiscalYearID,
		Date:         date,
		Description:  fmt.Sprintf("Rättelse av verifikat #%d", orig.Number),
	}
	for _, l := range orig.Lines {
		draft.Lines = append(draft.Lines, DraftLine{
			AccountNumber: l.AccountNumber,
			Debit:         l.Credit,
			Credit:        l.Debit,
			Description:   l.Description,
		})
	}
	if derr := s.Validate(draft, fy, accounts); derr != nil {
		return ledger.Voucher{}, derr
	}
	number, err := s.writer.NextVoucherNumber(ctx, orig.FiscalYearID)
	if err != nil {
		return ledger.Voucher{}, err
	}
	corr := Materialize(draft, s.newID(), number, s.newID)
	corr.CorrectsID = &orig.ID
	created, err := s.writer.CreateVoucher(ctx, corr)
	if err != nil {
		return ledger.Voucher{}, err
	}
	// The writer re-checks the already-corrected invariant under its own
	// serialization; a concurrent correction loses here.
	if err := s.writer.LinkCorrection(ctx, orig.ID, created.ID); err != nil {
		return ledger.Voucher{}, err
	}
	return created, nil
}

// ClosingLines computes the year-closing lines: one line per P&L account
// (3000–8999) with a nonzero net balance, sign chosen to zero the account,
// plus a single balancing line into the year-result account.
func ClosingLines(vouchers []ledger.Voucher, resultAccount string) []DraftLine {
	nets := make(map[string]ledger.Ore) // credit-positive net per P&L account
	for _, v := range vouchers {
		for _, l := range v.Lines {
			if !ledger.InRange(l.AccountNumber, 3000, 8999) {
				continue
			}
			nets[l.AccountNumber] += l.Credit - l.Debit
		}
	}
	numbers := make([]string, 0, len(nets))
	for n := range nets {
		if nets[n] != 0 {
			numbers = append(numbers, n)
		}
	}
	sort.Strings(numbers)

	var lines []DraftLine
	var total ledger.Ore
	for _, n := range numbers {
		net := nets[n]
		if net > 0 {
			// revenue-side balance is debited down to zero
			lines = append(lines, DraftLine{AccountNumber: n, Debit: net})
		} else {
			// expense-side balance is credited down to zero
			lines = append(lines, DraftLine{AccountNumber: n, Credit: -net})
		}
		total += net
	}
	if len(lines) == 0 {
		return nil
	}
	// the year result lands in equity: profit as credit, loss as debit;
	// a break-even year already balances and gets no result line
	if total > 0 {
		lines = append(lines, DraftLine{AccountNumber: resultAccount, Credit: total})
	} else if total < 0 {
		lines = append(lines, DraftLine{AccountNumber: resultAccount, Debit: -total})
	}
	return lines
}

// CloseYear posts the closing voucher through the normal create path and
// then flips the year's Closed flag via the writer. Closing is only legal
// while the year is still open.
func (s *service) CloseYear(ctx context.Context, fiscalYearID uuid.UUID, resultAccount string, date time.Time) (ledger.Voucher, error) {
	fy, err := s.repo.FiscalYear(ctx, fiscalYearID)
	if err != nil {
		return ledger.Voucher{}, err
	}
	if fy.Closed {
		return ledger.Voucher{}, ledger.NewDomainError(ledger.ErrCodeFiscalYearClosed, "fiscal year is already closed")
	}
	vouchers, err := s.repo.VouchersByFiscalYear(ctx, fiscalYearID)
	if err != nil {
		return ledger.Voucher{}, err
	}
	var closing ledger.Voucher
	if lines := ClosingLines(vouchers, resultAccount); lines != nil {
		closing, err = s.Create(ctx, Draft{
			FiscalYearID: fiscalYearID,
			Date:         date,
			Description:  "Årsbokslut",
			Lines:        lines,
		})
		if err != nil {
			return ledger.Voucher{}, err
		}
	}
	if err := s.writer.CloseFiscalYear(ctx, fiscalYearID); err != nil {
		return ledger.Voucher{}, err
	}
	return closing, nil
}
