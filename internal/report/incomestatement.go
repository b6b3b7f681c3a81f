package report

import "github.com/tinoosan/bokforing/internal/ledger"

// Row is a single account line in a sectioned report, with the amount in the
// sign convention of its section.
type Row struct {
	AccountNumber string     `json:"account_number"`
	AccountName   string     `json:"account_name"`
	Amount        ledger.Ore `json:"amount_minor"`
}

// Section groups rows with their subtotal.
type Section struct {
	Rows  []Row      `json:"rows"`
	Total ledger.Ore `json:"total_minor"`
}

// IncomeStatement is the resultaträkning. Expense amounts are displayed as
// positive costs, so OperatingResult is Revenue.Total - Expenses.Total and
// NetResult further adds financial income and subtracts financial expenses.
type IncomeStatement struct {
	Revenue           Section    `json:"revenue"`            // 3000–3999, credit-positive
	Expenses          Section    `json:"expenses"`           // 4000–7999, shown as positive costs
	FinancialIncome   Section    `json:"financial_income"`   // 8000–8399
	FinancialExpenses Section    `json:"financial_expenses"` // 8400–8999
	OperatingResult   ledger.Ore `json:"operating_result_minor"`
	NetResult         ledger.Ore `json:"net_result_minor"`
}

// BuildIncomeStatement sections P&L accounts by BAS number range. Sign
// conventions per range come from the shared natural-balance rule; the two
// expense sections are negated into positive costs for display.
func BuildIncomeStatement(vouchers []ledger.Voucher, accounts map[string]ledger.Account) IncomeStatement {
	sums := totals(vouchers)
	var is IncomeStatement
	for _, num := range sortedNumbers(sums) {
		t := sums[num]
		typ := accountType(accounts, num)
		amount := natural(t, typ)
		if amount == 0 {
			continue
		}
		row := Row{AccountNumber: num, AccountName: accountName(accounts, num), Amount: amount}
		switch {
		case ledger.InRange(num, 3000, 3999):
			is.Revenue.Rows = append(is.Revenue.Rows, row)
			is.Revenue.Total += amount
		case ledger.InRange(num, 4000, 7999):
			is.Expenses.Rows = append(is.Expenses.Rows, row)
			is.Expenses.Total += amount
		case ledger.InRange(num, 8000, 8399):
			is.FinancialIncome.Rows = append(is.FinancialIncome.Rows, row)
			is.FinancialIncome.Total += amount
		case ledger.InRange(num, 8400, 8999):
			is.FinancialExpenses.Rows = append(is.FinancialExpenses.Rows, row)
			is.FinancialExpenses.Total += amount
		}
	}
	is.OperatingResult = is.Revenue.Total - is.Expenses.Total
	is.NetResult = is.OperatingResult + is.FinancialIncome.Total - is.FinancialExpenses.Total
	return is
}
