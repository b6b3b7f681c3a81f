package report

import "github.com/tinoosan/bokforing/internal/ledger"

// VATSummary is the internal VAT overview: outgoing VAT collected on sales,
// ingoing deductible VAT on purchases, and the net position. This is a
// bookkeeping view only, not a filing document.
type VATSummary struct {
	Outgoing Section    `json:"outgoing"`
	Ingoing  Section    `json:"ingoing"`
	Net      ledger.Ore `json:"net_minor"`
}

// BuildVATSummary aggregates accounts flagged as VAT accounts. Outgoing VAT
// lives in 2610–2639, ingoing in 2640–2649 per the BAS convention; VAT
// accounts outside those ranges are classified by their net sign.
func BuildVATSummary(vouchers []ledger.Voucher, accounts map[string]ledger.Account) VATSummary {
	sums := totals(vouchers)
	var vs VATSummary
	for _, num := range sortedNumbers(sums) {
		acc, ok := accounts[num]
		if !ok || !acc.VAT {
			continue
		}
		t := sums[num]
		amount := t.Credit - t.Debit
		if amount == 0 {
			continue
		}
		row := Row{AccountNumber: num, AccountName: accountName(accounts, num), Amount: amount}
		switch {
		case ledger.InRange(num, 2610, 2639):
			vs.Outgoing.Rows = append(vs.Outgoing.Rows, row)
			vs.Outgoing.Total += amount
		case ledger.InRange(num, 2640, 2649):
			// ingoing VAT is a receivable, reported debit-positive
			row.Amount = -amount
			vs.Ingoing.Rows = append(vs.Ingoing.Rows, row)
			vs.Ingoing.Total += row.Amount
		case amount > 0:
			vs.Outgoing.Rows = append(vs.Outgoing.Rows, row)
			vs.Outgoing.Total += amount
		default:
			row.Amount = -amount
			vs.Ingoing.Rows = append(vs.Ingoing.Rows, row)
			vs.Ingoing.Total += row.Amount
		}
	}
	vs.Net = vs.Outgoing.Total - vs.Ingoing.Total
	return vs
}
