// Package memory provides a simple in-memory implementation used for
// development and tests. It keeps code paths easy to follow while allowing
// a real DB to be plugged in behind the same interfaces.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/tinoosan/bokforing/internal/errs"
	"github.com/tinoosan/bokforing/internal/ledger"
)

// Store is an in-memory implementation of the repository and writer
// interfaces used by the services. It is guarded by an RWMutex for
// concurrent reads/writes; voucher-number allocation and correction linking
// happen under the write lock, which provides the serialization the voucher
// engine requires of its collaborator.
type Store struct {
	mu          sync.RWMutex
	accounts    map[string]ledger.Account
	fiscalYears map[uuid.UUID]ledger.FiscalYear
	vouchers    map[uuid.UUID]*ledger.Voucher
	// voucherIDsByYear preserves creation order for export and reports.
	voucherIDsByYear map[uuid.UUID][]uuid.UUID
	// nextNumber is the per-year monotonic voucher number allocator.
	nextNumber map[uuid.UUID]int
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		accounts:         make(map[string]ledger.Account),
		fiscalYears:      make(map[uuid.UUID]ledger.FiscalYear),
		vouchers:         make(map[uuid.UUID]*ledger.Voucher),
		voucherIDsByYear: make(map[uuid.UUID][]uuid.UUID),
		nextNumber:       make(map[uuid.UUID]int),
	}
}

// Seed helpers for local dev/tests.
func (s *Store) SeedAccount(a ledger.Account) {
	s.mu.Lock()
	s.accounts[a.Number] = a
	s.mu.Unlock()
}

func (s *Store) SeedFiscalYear(fy ledger.FiscalYear) {
	s.mu.Lock()
	s.fiscalYears[fy.ID] = fy
	s.mu.Unlock()
}

// ChartOfAccounts returns a copy of the account map keyed by number.
func (s *Store) ChartOfAccounts(_ context.Context) (map[string]ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]ledger.Account, len(s.accounts))
	for n, a := range s.accounts {
		out[n] = a
	}
	return out, nil
}

// CreateAccount persists a new account, rejecting duplicate numbers.
func (s *Store) CreateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[a.Number]; exists {
		return ledger.Account{}, errs.ErrDuplicate
	}
	s.accounts[a.Number] = a
	return a, nil
}

// UpdateAccount persists changes to an existing account.
func (s *Store) UpdateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[a.Number]; !exists {
		return ledger.Account{}, errs.ErrNotFound
	}
	s.accounts[a.Number] = a
	return a, nil
}

// FiscalYear returns a fiscal year by ID.
func (s *Store) FiscalYear(_ context.Context, id uuid.UUID) (ledger.FiscalYear, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fy, ok := s.fiscalYears[id]
	if !ok {
		return ledger.FiscalYear{}, errs.ErrNotFound
	}
	return fy, nil
}

// FiscalYears lists all fiscal years ordered by start date.
func (s *Store) FiscalYears(_ context.Context) ([]ledger.FiscalYear, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.FiscalYear, 0, len(s.fiscalYears))
	for _, fy := range s.fiscalYears {
		out = append(out, fy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

// CreateFiscalYear persists a new fiscal year.
func (s *Store) CreateFiscalYear(_ context.Context, fy ledger.FiscalYear) (ledger.FiscalYear, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fiscalYears[fy.ID] = fy
	return fy, nil
}

// CloseFiscalYear flips the Closed flag.
func (s *Store) CloseFiscalYear(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fy, ok := s.fiscalYears[id]
	if !ok {
		return errs.ErrNotFound
	}
	if fy.Closed {
		return errs.ErrClosed
	}
	fy.Closed = true
	s.fiscalYears[id] = fy
	return nil
}

// NextVoucherNumber hands out the next sequence number for a fiscal year.
// Numbers are never reused, even if the voucher they were allocated for is
// never created (gap-tolerant).
func (s *Store) NextVoucherNumber(_ context.Context, fiscalYearID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fiscalYears[fiscalYearID]; !ok {
		return 0, errs.ErrNotFound
	}
	s.nextNumber[fiscalYearID]++
	return s.nextNumber[fiscalYearID], nil
}

// Voucher returns a voucher by ID.
func (s *Store) Voucher(_ context.Context, id uuid.UUID) (ledger.Voucher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vouchers[id]
	if !ok {
		return ledger.Voucher{}, errs.ErrNotFound
	}
	return cloneVoucher(*v), nil
}

// VouchersByFiscalYear returns vouchers in creation order.
func (s *Store) VouchersByFiscalYear(_ context.Context, fiscalYearID uuid.UUID) ([]ledger.Voucher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.voucherIDsByYear[fiscalYearID]
	out := make([]ledger.Voucher, 0, len(ids))
	for _, id := range ids {
		if v, ok := s.vouchers[id]; ok {
			out = append(out, cloneVoucher(*v))
		}
	}
	return out, nil
}

// CreateVoucher stores a materialized voucher.
func (s *Store) CreateVoucher(_ context.Context, v ledger.Voucher) (ledger.Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fy, ok := s.fiscalYears[v.FiscalYearID]
	if !ok {
		return ledger.Voucher{}, errs.ErrNotFound
	}
	if fy.Closed {
		return ledger.Voucher{}, errs.ErrClosed
	}
	stored := cloneVoucher(v)
	s.vouchers[v.ID] = &stored
	s.voucherIDsByYear[v.FiscalYearID] = append(s.voucherIDsByYear[v.FiscalYearID], v.ID)
	return v, nil
}

// LinkCorrection sets the bidirectional back-references between an original
// voucher and its correction. The already-corrected invariant is re-checked
// here, under the write lock, to close the race between the engine's check
// and this write.
func (s *Store) LinkCorrection(_ context.Context, originalID, correctionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	orig, ok := s.vouchers[originalID]
	if !ok {
		return errs.ErrNotFound
	}
	corr, ok := s.vouchers[correctionID]
	if !ok {
		return errs.ErrNotFound
	}
	if orig.CorrectedByID != nil {
		return errs.ErrConflict
	}
	orig.CorrectedByID = &correctionID
	corr.CorrectsID = &originalID
	return nil
}

// Reset drops all data, for tests.
func (s *Store) Reset() {
	s.mu.Lock()
	s.accounts = map[string]ledger.Account{}
	s.fiscalYears = map[uuid.UUID]ledger.FiscalYear{}
	s.vouchers = map[uuid.UUID]*ledger.Voucher{}
	s.voucherIDsByYear = map[uuid.UUID][]uuid.UUID{}
	s.nextNumber = map[uuid.UUID]int{}
	s.mu.Unlock()
}

// Ready reports readiness; the memory store is always ready.
func (s *Store) Ready(_ context.Context) error { return nil }

func cloneVoucher(v ledger.Voucher) ledger.Voucher {
	lines := make([]ledger.VoucherLine, len(v.Lines))
	copy(lines, v.Lines)
	v.Lines = lines
	if v.CorrectsID != nil {
		id := *v.CorrectsID
		v.CorrectsID = &id
	}
	if v.CorrectedByID != nil {
		id := *v.CorrectedByID
		v.CorrectedByID = &id
	}
	return v
}
