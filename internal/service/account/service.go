// Package account implements chart-of-accounts and fiscal-year rules:
// BAS number validation, type derivation for imports, uniqueness per number,
// and soft-deactivation. Accounts referenced by historical vouchers are
// never deleted.
package account

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/bokforing/internal/errs"
	"github.com/tinoosan/bokforing/internal/ledger"
)

type Repo interface {
	ChartOfAccounts(ctx context.Context) (map[string]ledger.Account, error)
	FiscalYears(ctx context.Context) ([]ledger.FiscalYear, error)
}

type Writer interface {
	CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error)
	UpdateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error)
	CreateFiscalYear(ctx context.Context, fy ledger.FiscalYear) (ledger.FiscalYear, error)
}

// Service exposes chart and fiscal-year management.
type Service interface {
	ValidateAccount(a ledger.Account) error
	Create(ctx context.Context, a ledger.Account) (ledger.Account, error)
	List(ctx context.Context) ([]ledger.Account, error)
	Deactivate(ctx context.Context, number string) error
	EnsureImported(ctx context.Context, specs []ledger.Account) (map[string]ledger.Account, error)
	CreateFiscalYear(ctx context.Context, start, end time.Time) (ledger.FiscalYear, error)
	FiscalYearFor(ctx context.Context, date time.Time) (ledger.FiscalYear, error)
}

type service struct {
	repo   Repo
	writer Writer
}

func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

// ValidateAccount checks number shape and type consistency. An empty type is
// filled from the BAS derivation; a stored type always wins once set.
func (s *service) ValidateAccount(a ledger.Account) error {
	if !ledger.ValidNumber(a.Number) {
		return fmt.Errorf("%w: account number must be four digits starting with 1-8", errs.ErrInvalid)
	}
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name is required", errs.ErrInvalid)
	}
	switch a.Type {
	case ledger.AccountTypeAsset, ledger.AccountTypeLiability, ledger.AccountTypeEquity,
		ledger.AccountTypeRevenue, ledger.AccountTypeExpense:
	default:
		return fmt.Errorf("%w: unknown account type %q", errs.ErrInvalid, a.Type)
	}
	return nil
}

func (s *service) Create(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	if a.Type == "" {
		if t, ok := ledger.TypeForNumber(a.Number); ok {
			a.Type = t
		}
	}
	if err := s.ValidateAccount(a); err != nil {
		return ledger.Account{}, err
	}
	chart, err := s.repo.ChartOfAccounts(ctx)
	if err != nil {
		return ledger.Account{}, err
	}
	if _, exists := chart[a.Number]; exists {
		return ledger.Account{}, errs.ErrDuplicate
	}
	a.Active = true
	return s.writer.CreateAccount(ctx, a)
}

func (s *service) List(ctx context.Context) ([]ledger.Account, error) {
	chart, err := s.repo.ChartOfAccounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ledger.Account, 0, len(chart))
	for _, a := range chart {
		out = append(out, a)
	}
	sortAccounts(out)
	return out, nil
}

// Deactivate soft-deletes an account. It stays usable in historical reports.
func (s *service) Deactivate(ctx context.Context, number string) error {
	chart, err := s.repo.ChartOfAccounts(ctx)
	if err != nil {
		return err
	}
	a, ok := chart[number]
	if !ok {
		return errs.ErrNotFound
	}
	a.Active = false
	_, err = s.writer.UpdateAccount(ctx, a)
	return err
}

// EnsureImported backfills accounts arriving through a SIE import: unknown
// numbers are created with the BAS-derived type, known numbers keep their
// stored definition untouched. The returned chart reflects the final state.
func (s *service) EnsureImported(ctx context.Context, specs []ledger.Account) (map[string]ledger.Account, error) {
	chart, err := s.repo.ChartOfAccounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, spec := range specs {
		if _, exists := chart[spec.Number]; exists {
			continue
		}
		t, ok := ledger.TypeForNumber(spec.Number)
		if !ok {
			// numbers outside the BAS classes cannot be backfilled
			continue
		}
		a := ledger.Account{Number: spec.Number, Name: spec.Name, Type: t, Active: true}
		if a.Name == "" {
			a.Name = "Konto " + a.Number
		}
		created, err := s.writer.CreateAccount(ctx, a)
		if err != nil {
			return nil, err
		}
		chart[created.Number] = created
	}
	return chart, nil
}

// CreateFiscalYear validates end >= start and non-overlap with existing
// years before persisting.
func (s *service) CreateFiscalYear(ctx context.Context, start, end time.Time) (ledger.FiscalYear, error) {
	start, end = ledger.TruncateDay(start), ledger.TruncateDay(end)
	if end.Before(start) {
		return ledger.FiscalYear{}, fmt.Errorf("%w: fiscal year end must not precede its start", errs.ErrInvalid)
	}
	years, err := s.repo.FiscalYears(ctx)
	if err != nil {
		return ledger.FiscalYear{}, err
	}
	for _, fy := range years {
		if !start.After(ledger.TruncateDay(fy.EndDate)) && !end.Before(ledger.TruncateDay(fy.StartDate)) {
			return ledger.FiscalYear{}, errs.ErrConflict
		}
	}
	fy := ledger.FiscalYear{ID: uuid.New(), StartDate: start, EndDate: end}
	return s.writer.CreateFiscalYear(ctx, fy)
}

// FiscalYearFor finds the year containing the date.
func (s *service) FiscalYearFor(ctx context.Context, date time.Time) (ledger.FiscalYear, error) {
	years, err := s.repo.FiscalYears(ctx)
	if err != nil {
		return ledger.FiscalYear{}, err
	}
	for _, fy := range years {
		if fy.Contains(date) {
			return fy, nil
		}
	}
	return ledger.FiscalYear{}, errs.ErrNotFound
}

func sortAccounts(accs []ledger.Account) {
	sort.Slice(accs, func(i, j int) bool { return accs[i].Number < accs[j].Number })
}
