// Package report derives the statutory report views from a flat voucher
// list. Every report is a pure function of (vouchers, accounts); inputs are
// never mutated and all amounts stay in öre. Currency formatting belongs to
// the caller.
package report

import (
	"sort"

	"github.com/tinoosan/bokforing/internal/ledger"
)

// placeholderName stands in for accounts missing from the supplied chart.
// Reports must stay viewable even with an incomplete chart, so an unknown
// account never fails a report.
const placeholderName = "Okänt konto"

// AccountTotal is the per-account aggregate every report starts from: debit
// and credit summed separately across all lines of all vouchers.
type AccountTotal struct {
	Debit  ledger.Ore
	Credit ledger.Ore
}

// totals sums debits and credits per account number.
func totals(vouchers []ledger.Voucher) map[string]AccountTotal {
	out := make(map[string]AccountTotal)
	for _, v := range vouchers {
		for _, l := range v.Lines {
			t := out[l.AccountNumber]
			t.Debit += l.Debit
			t.Credit += l.Credit
			out[l.AccountNumber] = t
		}
	}
	return out
}

// natural returns the total in the account's natural balance sign:
// debit-positive for assets and expenses, credit-positive otherwise.
func natural(t AccountTotal, typ ledger.AccountType) ledger.Ore {
	if ledger.NormalSide(typ) == ledger.SideDebit {
		return t.Debit - t.Credit
	}
	return t.Credit - t.Debit
}

// accountType resolves the reporting type for an account number: the stored
// type when the account is known, the BAS derivation as fallback.
func accountType(accounts map[string]ledger.Account, number string) ledger.AccountType {
	if a, ok := accounts[number]; ok && a.Type != "" {
		return a.Type
	}
	if t, ok := ledger.TypeForNumber(number); ok {
		return t
	}
	return ledger.AccountTypeAsset
}

// accountName resolves a display name, degrading to a placeholder for
// numbers missing from the chart.
func accountName(accounts map[string]ledger.Account, number string) string {
	if a, ok := accounts[number]; ok && a.Name != "" {
		return a.Name
	}
	return placeholderName
}

func sortedNumbers(m map[string]AccountTotal) []string {
	out := make([]string, 0, len(m))
	for n := range m {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// posting is one voucher line joined with its voucher header, the unit of
// the chronological reports.
type posting struct {
	voucher ledger.Voucher
	line    ledger.VoucherLine
}

// postingsByAccount groups lines per account in stable chronological order:
// by date, tie-broken by voucher number. The running-balance reports depend
// on this ordering.
func postingsByAccount(vouchers []ledger.Voucher) map[string][]posting {
	out := make(map[string][]posting)
	for _, v := range vouchers {
		for _, l := range v.Lines {
			out[l.AccountNumber] = append(out[l.AccountNumber], posting{voucher: v, line: l})
		}
	}
	for n := range out {
		ps := out[n]
		sort.SliceStable(ps, func(i, j int) bool {
			di, dj := ledger.TruncateDay(ps[i].voucher.Date), ledger.TruncateDay(ps[j].voucher.Date)
			if !di.Equal(dj) {
				return di.Before(dj)
			}
			return ps[i].voucher.Number < ps[j].voucher.Number
		})
		out[n] = ps
	}
	return out
}

// sortVouchersChronological returns a copy of vouchers ordered by date, then
// voucher number.
func sortVouchersChronological(vouchers []ledger.Voucher) []ledger.Voucher {
	out := make([]ledger.Voucher, len(vouchers))
	copy(out, vouchers)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := ledger.TruncateDay(out[i].Date), ledger.TruncateDay(out[j].Date)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return out[i].Number < out[j].Number
	})
	return out
}
