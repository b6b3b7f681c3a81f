package report

import "github.com/tinoosan/bokforing/internal/ledger"

// TrialBalanceRow is one account in the trial balance (råbalans).
// Balance carries the account's natural sign.
type TrialBalanceRow struct {
	AccountNumber string             `json:"account_number"`
	AccountName   string             `json:"account_name"`
	Type          ledger.AccountType `json:"type"`
	Debit         ledger.Ore         `json:"debit_minor"`
	Credit        ledger.Ore         `json:"credit_minor"`
	Balance       ledger.Ore         `json:"balance_minor"`
}

// TrialBalance lists every account with activity and the grand debit/credit
// totals, which must be equal for a consistent ledger.
type TrialBalance struct {
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  ledger.Ore        `json:"total_debit_minor"`
	TotalCredit ledger.Ore        `json:"total_credit_minor"`
}

// BuildTrialBalance aggregates all vouchers into per-account debit/credit
// totals. Accounts whose debits and credits cancel out are omitted.
func BuildTrialBalance(vouchers []ledger.Voucher, accounts map[string]ledger.Account) TrialBalance {
	sums := totals(vouchers)
	var tb TrialBalance
	for _, num := range sortedNumbers(sums) {
		t := sums[num]
		if t.Debit == t.Credit {
			continue
		}
		typ := accountType(accounts, num)
		tb.Rows = append(tb.Rows, TrialBalanceRow{
			AccountNumber: num,
			AccountName:   accountName(accounts, num),
			Type:          typ,
			Debit:         t.Debit,
			Credit:        t.Credit,
			Balance:       natural(t, typ),
		})
		tb.TotalDebit += t.Debit
		tb.TotalCredit += t.Credit
	}
	return tb
}
