package report

import "github.com/tinoosan/bokforing/internal/ledger"

// BalanceSheet is the balansräkning. The current year's result is computed
// directly from the P&L accounts and folded into the liabilities-and-equity
// side; Difference is a diagnostic that is zero for a balanced ledger and is
// reported rather than silently corrected.
type BalanceSheet struct {
	Assets      Section `json:"assets"`      // debit-positive
	Liabilities Section `json:"liabilities"` // credit-positive
	Equity      Section `json:"equity"`      // credit-positive

	YearResult                ledger.Ore `json:"year_result_minor"`
	TotalAssets               ledger.Ore `json:"total_assets_minor"`
	TotalLiabilitiesAndEquity ledger.Ore `json:"total_liabilities_and_equity_minor"`
	Difference                ledger.Ore `json:"difference_minor"`
}

// BuildBalanceSheet sections balance accounts by their stored type and
// derives the running year result from accounts 3000–8999 (credit-debit).
func BuildBalanceSheet(vouchers []ledger.Voucher, accounts map[string]ledger.Account) BalanceSheet {
	sums := totals(vouchers)
	var bs BalanceSheet
	for _, num := range sortedNumbers(sums) {
		t := sums[num]
		typ := accountType(accounts, num)
		amount := natural(t, typ)

		if ledger.InRange(num, 3000, 8999) {
			bs.YearResult += t.Credit - t.Debit
			continue
		}
		if amount == 0 {
			continue
		}
		row := Row{AccountNumber: num, AccountName: accountName(accounts, num), Amount: amount}
		switch typ {
		case ledger.AccountTypeAsset:
			bs.Assets.Rows = append(bs.Assets.Rows, row)
			bs.Assets.Total += amount
		case ledger.AccountTypeLiability:
			bs.Liabilities.Rows = append(bs.Liabilities.Rows, row)
			bs.Liabilities.Total += amount
		case ledger.AccountTypeEquity:
			bs.Equity.Rows = append(bs.Equity.Rows, row)
			bs.Equity.Total += amount
		}
	}
	bs.TotalAssets = bs.Assets.Total
	bs.TotalLiabilitiesAndEquity = bs.Liabilities.Total + bs.Equity.Total + bs.YearResult
	bs.Difference = bs.TotalAssets - bs.TotalLiabilitiesAndEquity
	return bs
}
