package postgres

// Package postgres provides a pgx-backed storage implementation that satisfies
// the repository and writer interfaces used by the services.
//
// It is intentionally small and explicit: mapping between domain entities and
// SQL rows, plus the transactions that serialize voucher-number allocation and
// correction linking.

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tinoosan/bokforing/internal/errs"
	"github.com/tinoosan/bokforing/internal/ledger"
)

// Store holds a pgx connection pool and implements the read/write interfaces
// used across the service layer. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil { return nil, err }
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil { return nil, err }
	if err := pool.Ping(ctx); err != nil { pool.Close(); return nil, err }
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() { if s.pool != nil { s.pool.Close() } }

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// Migrate creates the expected schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		create table if not exists accounts (
			number   text primary key,
			name     text not null,
			type     text not null,
			vat      boolean not null default false,
			active   boolean not null default true
		);
		create table if not exists fiscal_years (
			id          uuid primary key,
			start_date  date not null,
			end_date    date not null,
			closed      boolean not null default false,
			next_number integer not null default 0
		);
		create table if not exists vouchers (
			id              uuid primary key,
			fiscal_year_id  uuid not null references fiscal_years(id),
			number          integer not null,
			date            date not null,
			description     text not null default '',
			corrects_id     uuid references vouchers(id),
			corrected_by_id uuid references vouchers(id),
			unique (fiscal_year_id, number)
		);
		create table if not exists voucher_lines (
			id             uuid primary key,
			voucher_id     uuid not null references vouchers(id),
			line_no        integer not null,
			account_number text not null references accounts(number),
			debit_minor    bigint not null default 0,
			credit_minor   bigint not null default 0,
			description    text not null default '',
			unique (voucher_id, line_no)
		);
	`)
	return err
}

// --- Account reads ---

// ChartOfAccounts returns all accounts keyed by number.
func (s *Store) ChartOfAccounts(ctx context.Context) (map[string]ledger.Account, error) {
	rows, err := s.pool.Query(ctx, `
		select number, name, type, vat, active from accounts
	`)
	if err != nil { return nil, err }
	defer rows.Close()
	out := make(map[string]ledger.Account)
	for rows.Next() {
		var a ledger.Account
		if err := rows.Scan(&a.Number, &a.Name, &a.Type, &a.VAT, &a.Active); err != nil { return nil, err }
		out[a.Number] = a
	}
	return out, rows.Err()
}

// --- Account writes ---

// CreateAccount inserts an account row, rejecting duplicate numbers.
func (s *Store) CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	ct, err := s.pool.Exec(ctx, `
		insert into accounts (number, name, type, vat, active)
		values ($1,$2,$3,$4,$5)
		on conflict (number) do nothing
	`, a.Number, a.Name, a.Type, a.VAT, a.Active)
	if err != nil { return ledger.Account{}, err }
	if ct.RowsAffected() == 0 { return ledger.Account{}, errs.ErrDuplicate }
	return a, nil
}

// UpdateAccount updates mutable fields (name, vat, active).
func (s *Store) UpdateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	ct, err := s.pool.Exec(ctx, `
		update accounts set name=$1, vat=$2, active=$3 where number=$4
	`, a.Name, a.VAT, a.Active, a.Number)
	if err != nil { return ledger.Account{}, err }
	if ct.RowsAffected() == 0 { return ledger.Account{}, errs.ErrNotFound }
	return a, nil
}

// --- Fiscal years ---

func (s *Store) FiscalYear(ctx context.Context, id uuid.UUID) (ledger.FiscalYear, error) {
	var fy ledger.FiscalYear
	err := s.pool.QueryRow(ctx, `
		select id, start_date, end_date, closed from fiscal_years where id = $1
	`, id).Scan(&fy.ID, &fy.StartDate, &fy.EndDate, &fy.Closed)
	if errors.Is(err, pgx.ErrNoRows) { return ledger.FiscalYear{}, errs.ErrNotFound }
	if err != nil { return ledger.FiscalYear{}, err }
	return fy, nil
}

func (s *Store) FiscalYears(ctx context.Context) ([]ledger.FiscalYear, error) {
	rows, err := s.pool.Query(ctx, `
		select id, start_date, end_date, closed from fiscal_years order by start_date asc
	`)
	if err != nil { return nil, err }
	defer rows.Close()
	out := make([]ledger.FiscalYear, 0)
	for rows.Next() {
		var fy ledger.FiscalYear
		if err := rows.Scan(&fy.ID, &fy.StartDate, &fy.EndDate, &fy.Closed); err != nil { return nil, err }
		out = append(out, fy)
	}
	return out, rows.Err()
}

func (s *Store) CreateFiscalYear(ctx context.Context, fy ledger.FiscalYear) (ledger.FiscalYear, error) {
	_, err := s.pool.Exec(ctx, `
		insert into fiscal_years (id, start_date, end_date, closed)
		values ($1,$2,$3,$4)
	`, fy.ID, fy.StartDate, fy.EndDate, fy.Closed)
	if err != nil { return ledger.FiscalYear{}, err }
	return fy, nil
}

// CloseFiscalYear flips the closed flag exactly once.
func (s *Store) CloseFiscalYear(ctx context.Context, id uuid.UUID) error {
	ct, err := s.pool.Exec(ctx, `
		update fiscal_years set closed = true where id = $1 and closed = false
	`, id)
	if err != nil { return err }
	if ct.RowsAffected() == 0 {
		var closed bool
		err := s.pool.QueryRow(ctx, `select closed from fiscal_years where id = $1`, id).Scan(&closed)
		if errors.Is(err, pgx.ErrNoRows) { return errs.ErrNotFound }
		if err != nil { return err }
		return errs.ErrClosed
	}
	return nil
}

// NextVoucherNumber allocates the next per-year sequence number. The row lock
// taken by "for update" serializes concurrent allocations so two submissions
// never observe the same number.
func (s *Store) NextVoucherNumber(ctx context.Context, fiscalYearID uuid.UUID) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil { return 0, err }
	defer func() { _ = tx.Rollback(ctx) }()
	var next int
	err = tx.QueryRow(ctx, `
		select next_number + 1 from fiscal_years where id = $1 for update
	`, fiscalYearID).Scan(&next)
	if errors.Is(err, pgx.ErrNoRows) { return 0, errs.ErrNotFound }
	if err != nil { return 0, err }
	if _, err := tx.Exec(ctx, `
		update fiscal_years set next_number = $1 where id = $2
	`, next, fiscalYearID); err != nil { return 0, err }
	if err := tx.Commit(ctx); err != nil { return 0, err }
	return next, nil
}

// --- Voucher reads ---

// Voucher returns a voucher by id with lines populated.
func (s *Store) Voucher(ctx context.Context, id uuid.UUID) (ledger.Voucher, error) {
	var v ledger.Voucher
	err := s.pool.QueryRow(ctx, `
		select id, fiscal_year_id, number, date, description, corrects_id, corrected_by_id
		from vouchers where id = $1
	`, id).Scan(&v.ID, &v.FiscalYearID, &v.Number, &v.Date, &v.Description, &v.CorrectsID, &v.CorrectedByID)
	if errors.Is(err, pgx.ErrNoRows) { return ledger.Voucher{}, errs.ErrNotFound }
	if err != nil { return ledger.Voucher{}, err }
	v.Lines, err = s.linesFor(ctx, []uuid.UUID{v.ID})
	if err != nil { return ledger.Voucher{}, err }
	return v, nil
}

// VouchersByFiscalYear returns a year's vouchers ordered by number, with
// lines populated.
func (s *Store) VouchersByFiscalYear(ctx context.Context, fiscalYearID uuid.UUID) ([]ledger.Voucher, error) {
	rows, err := s.pool.Query(ctx, `
		select id, fiscal_year_id, number, date, description, corrects_id, corrected_by_id
		from vouchers
		where fiscal_year_id = $1
		order by number asc
	`, fiscalYearID)
	if err != nil { return nil, err }
	defer rows.Close()
	out := make([]ledger.Voucher, 0)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var v ledger.Voucher
		if err := rows.Scan(&v.ID, &v.FiscalYearID, &v.Number, &v.Date, &v.Description, &v.CorrectsID, &v.CorrectedByID); err != nil { return nil, err }
		out = append(out, v)
		ids = append(ids, v.ID)
	}
	if err := rows.Err(); err != nil { return nil, err }
	if len(out) == 0 { return out, nil }
	lines, err := s.linesFor(ctx, ids)
	if err != nil { return nil, err }
	byVoucher := make(map[uuid.UUID][]ledger.VoucherLine, len(out))
	for _, l := range lines { byVoucher[l.VoucherID] = append(byVoucher[l.VoucherID], l) }
	for i := range out { out[i].Lines = byVoucher[out[i].ID] }
	return out, nil
}

// linesFor reads back voucher lines in submission order; line_no preserves the
// caller's line sequence, which both the journal and the SIE export rely on.
func (s *Store) linesFor(ctx context.Context, voucherIDs []uuid.UUID) ([]ledger.VoucherLine, error) {
	rows, err := s.pool.Query(ctx, `
		select id, voucher_id, account_number, debit_minor, credit_minor, description
		from voucher_lines
		where voucher_id = any($1)
		order by voucher_id, line_no asc
	`, voucherIDs)
	if err != nil { return nil, err }
	defer rows.Close()
	out := make([]ledger.VoucherLine, 0)
	for rows.Next() {
		var l ledger.VoucherLine
		if err := rows.Scan(&l.ID, &l.VoucherID, &l.AccountNumber, &l.Debit, &l.Credit, &l.Description); err != nil { return nil, err }
		out = append(out, l)
	}
	return out, rows.Err()
}

// --- Voucher writes ---

// CreateVoucher inserts a voucher and its lines in one transaction. The year's
// row is locked first so a concurrent close cannot slip in between the closed
// check and the insert.
func (s *Store) CreateVoucher(ctx context.Context, v ledger.Voucher) (ledger.Voucher, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil { return ledger.Voucher{}, err }
	defer func() { _ = tx.Rollback(ctx) }()
	var closed bool
	err = tx.QueryRow(ctx, `
		select closed from fiscal_years where id = $1 for update
	`, v.FiscalYearID).Scan(&closed)
	if errors.Is(err, pgx.ErrNoRows) { return ledger.Voucher{}, errs.ErrNotFound }
	if err != nil { return ledger.Voucher{}, err }
	if closed { return ledger.Voucher{}, errs.ErrClosed }
	if _, err := tx.Exec(ctx, `
		insert into vouchers (id, fiscal_year_id, number, date, description, corrects_id, corrected_by_id)
		values ($1,$2,$3,$4,$5,$6,$7)
	`, v.ID, v.FiscalYearID, v.Number, v.Date, v.Description, v.CorrectsID, v.CorrectedByID); err != nil {
		return ledger.Voucher{}, err
	}
	for i, l := range v.Lines {
		if _, err := tx.Exec(ctx, `
			insert into voucher_lines (id, voucher_id, line_no, account_number, debit_minor, credit_minor, description)
			values ($1,$2,$3,$4,$5,$6,$7)
		`, l.ID, v.ID, i, l.AccountNumber, l.Debit, l.Credit, l.Description); err != nil {
			return ledger.Voucher{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil { return ledger.Voucher{}, err }
	return v, nil
}

// LinkCorrection sets the bidirectional back-references between an original
// voucher and its correction. The conditional update re-checks the
// already-corrected invariant at commit time; a concurrent correction loses.
func (s *Store) LinkCorrection(ctx context.Context, originalID, correctionID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil { return err }
	defer func() { _ = tx.Rollback(ctx) }()
	ct, err := tx.Exec(ctx, `
		update vouchers set corrected_by_id = $1
		where id = $2 and corrected_by_id is null
	`, correctionID, originalID)
	if err != nil { return err }
	if ct.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `
			select exists (select 1 from vouchers where id = $1)
		`, originalID).Scan(&exists); err != nil { return err }
		if !exists { return errs.ErrNotFound }
		return errs.ErrConflict
	}
	ct, err = tx.Exec(ctx, `
		update vouchers set corrects_id = $1 where id = $2
	`, originalID, correctionID)
	if err != nil { return err }
	if ct.RowsAffected() == 0 { return errs.ErrNotFound }
	return tx.Commit(ctx)
}
