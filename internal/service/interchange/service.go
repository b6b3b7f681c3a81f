// Package interchange bridges the SIE codec and the ledger: the import path
// turns a parsed SIE file into candidate vouchers fed through the voucher
// engine, the export path renders the stored ledger back into SIE4 text.
package interchange

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/bokforing/internal/ledger"
	"github.com/tinoosan/bokforing/internal/service/account"
	"github.com/tinoosan/bokforing/internal/service/voucher"
	"github.com/tinoosan/bokforing/internal/sie"
)

// Repo provides the reads the export path needs.
type Repo interface {
	ChartOfAccounts(ctx context.Context) (map[string]ledger.Account, error)
	FiscalYear(ctx context.Context, id uuid.UUID) (ledger.FiscalYear, error)
	VouchersByFiscalYear(ctx context.Context, fiscalYearID uuid.UUID) ([]ledger.Voucher, error)
}

// Company identifies the exporting entity in the SIE header.
type Company struct {
	Name      string
	OrgNumber string
}

// ImportResult summarizes a completed import.
type ImportResult struct {
	CompanyName      string
	AccountsCreated  int
	VouchersImported int
}

// Service exposes SIE import and export.
type Service interface {
	Import(ctx context.Context, raw []byte) (ImportResult, error)
	Export(ctx context.Context, fiscalYearID uuid.UUID, company Company, generated time.Time) (string, error)
}

type service struct {
	repo     Repo
	accounts account.Service
	vouchers voucher.Service
}

func New(repo Repo, accounts account.Service, vouchers voucher.Service) Service {
	return &service{repo: repo, accounts: accounts, vouchers: vouchers}
}

// Import decodes and parses raw SIE bytes, backfills unknown accounts with
// BAS-derived types, ensures the declared fiscal years exist, and feeds each
// voucher block through the voucher engine. Drafts are validated up front so
// a bad voucher aborts the import before anything is created.
func (s *service) Import(ctx context.Context, raw []byte) (ImportResult, error) {
	f, err := sie.Parse(sie.Decode(raw))
	if err != nil {
		return ImportResult{}, err
	}

	specs := make([]ledger.Account, 0, len(f.Accounts))
	for _, a := range f.Accounts {
		specs = append(specs, ledger.Account{Number: a.Number, Name: a.Name})
	}
	chartBefore, err := s.repo.ChartOfAccounts(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	chart, err := s.accounts.EnsureImported(ctx, specs)
	if err != nil {
		return ImportResult{}, err
	}

	for _, p := range f.Years {
		if _, err := s.accounts.FiscalYearFor(ctx, p.Start); err == nil {
			continue
		}
		if _, err := s.accounts.CreateFiscalYear(ctx, p.Start, p.End); err != nil {
			return ImportResult{}, err
		}
	}

	type pending struct {
		draft voucher.Draft
		fy    ledger.FiscalYear
	}
	drafts := make([]pending, 0, len(f.Vouchers))
	for _, sv := range f.Vouchers {
		fy, err := s.accounts.FiscalYearFor(ctx, sv.Date)
		if err != nil {
			return ImportResult{}, err
		}
		d := voucher.Draft{
			FiscalYearID: fy.ID,
			Date:         sv.Date,
			Description:  sv.Description,
		}
		for _, tr := range sv.Transactions {
			// SIE sign convention: positive is a debit, negative a credit.
			line := voucher.DraftLine{AccountNumber: tr.AccountNumber, Description: tr.Description}
			if tr.Amount >= 0 {
				line.Debit = tr.Amount
			} else {
				line.Credit = -tr.Amount
			}
			d.Lines = append(d.Lines, line)
		}
		if derr := s.vouchers.Validate(d, fy, chart); derr != nil {
			return ImportResult{}, derr
		}
		drafts = append(drafts, pending{draft: d, fy: fy})
	}
	for _, p := range drafts {
		if _, err := s.vouchers.Create(ctx, p.draft); err != nil {
			return ImportResult{}, err
		}
	}
	return ImportResult{
		CompanyName:      f.CompanyName,
		AccountsCreated:  len(chart) - len(chartBefore),
		VouchersImported: len(drafts),
	}, nil
}

// Export renders one fiscal year as SIE4 text. Closing balances (#UB) cover
// the balance accounts and result rows (#RES) the P&L accounts, both in the
// SIE debit-positive sign convention; zero amounts are dropped by the codec.
func (s *service) Export(ctx context.Context, fiscalYearID uuid.UUID, company Company, generated time.Time) (string, error) {
	fy, err := s.repo.FiscalYear(ctx, fiscalYearID)
	if err != nil {
		return "", err
	}
	chart, err := s.repo.ChartOfAccounts(ctx)
	if err != nil {
		return "", err
	}
	vouchers, err := s.repo.VouchersByFiscalYear(ctx, fiscalYearID)
	if err != nil {
		return "", err
	}

	numbers := make([]string, 0, len(chart))
	for n := range chart {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers)

	opts := sie.ExportOptions{
		Program:     "bokforing",
		ProgramVer:  "1.0",
		Generated:   generated.Format("20060102"),
		CompanyName: company.Name,
		OrgNumber:   company.OrgNumber,
		Years: map[int]sie.Period{
			0: {Start: fy.StartDate, End: fy.EndDate},
		},
	}
	for _, n := range numbers {
		opts.Accounts = append(opts.Accounts, sie.Account{Number: n, Name: chart[n].Name})
	}

	nets := make(map[string]ledger.Ore) // debit-positive
	for _, v := range vouchers {
		for _, l := range v.Lines {
			nets[l.AccountNumber] += l.Debit - l.Credit
		}
	}
	for _, n := range numbers {
		net := nets[n]
		if net == 0 {
			continue
		}
		if ledger.InRange(n, 3000, 8999) {
			opts.Results = append(opts.Results, sie.Balance{YearIndex: 0, AccountNumber: n, Amount: net})
		} else {
			opts.Closing = append(opts.Closing, sie.Balance{YearIndex: 0, AccountNumber: n, Amount: net})
		}
	}

	for _, v := range vouchers {
		sv := sie.Voucher{Series: "A", Number: v.Number, Date: v.Date, Description: v.Description}
		for _, l := range v.Lines {
			amount := l.Debit
			if l.Credit > 0 {
				amount = -l.Credit
			}
			sv.Transactions = append(sv.Transactions, sie.Transaction{
				AccountNumber: l.AccountNumber,
				Amount:        amount,
				Description:   l.Description,
			})
		}
		opts.Vouchers = append(opts.Vouchers, sv)
	}
	return sie.Export(opts), nil
}
