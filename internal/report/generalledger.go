package report

import (
	"time"

	"github.com/tinoosan/bokforing/internal/ledger"
)

// LedgerEntry is one posting in an account's general ledger view. Balance is
// the running total after this posting, in the account's natural sign.
type LedgerEntry struct {
	Date          time.Time  `json:"date"`
	VoucherNumber int        `json:"voucher_number"`
	Description   string     `json:"description"`
	Debit         ledger.Ore `json:"debit_minor"`
	Credit        ledger.Ore `json:"credit_minor"`
	Balance       ledger.Ore `json:"balance_minor"`
}

// LedgerAccount is one account block in the general ledger (huvudbok).
type LedgerAccount struct {
	AccountNumber  string             `json:"account_number"`
	AccountName    string             `json:"account_name"`
	Type           ledger.AccountType `json:"type"`
	Entries        []LedgerEntry      `json:"entries"`
	ClosingBalance ledger.Ore         `json:"closing_balance_minor"`
}

// GeneralLedger groups every active account's postings chronologically.
type GeneralLedger struct {
	Accounts []LedgerAccount `json:"accounts"`
}

// BuildGeneralLedger sorts each account's postings by date (voucher number
// as tie-break) and accumulates the running balance. The closing balance is
// the final running value, which matches the trial balance for the account.
// Accounts whose postings cancel to zero are omitted.
func BuildGeneralLedger(vouchers []ledger.Voucher, accounts map[string]ledger.Account) GeneralLedger {
	grouped := postingsByAccount(vouchers)
	sums := totals(vouchers)

	var gl GeneralLedger
	for _, num := range sortedNumbers(sums) {
		t := sums[num]
		if t.Debit == t.Credit {
			continue
		}
		typ := accountType(accounts, num)
		acc := LedgerAccount{
			AccountNumber: num,
			AccountName:   accountName(accounts, num),
			Type:          typ,
		}
		var running ledger.Ore
		for _, p := range grouped[num] {
			if ledger.NormalSide(typ) == ledger.SideDebit {
				running += p.line.Debit - p.line.Credit
			} else {
				running += p.line.Credit - p.line.Debit
			}
			desc := p.line.Description
			if desc == "" {
				desc = p.voucher.Description
			}
			acc.Entries = append(acc.Entries, LedgerEntry{
				Date:          p.voucher.Date,
				VoucherNumber: p.voucher.Number,
				Description:   desc,
				Debit:         p.line.Debit,
				Credit:        p.line.Credit,
				Balance:       running,
			})
		}
		acc.ClosingBalance = running
		gl.Accounts = append(gl.Accounts, acc)
	}
	return gl
}
