package sie

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tinoosan/bokforing/internal/ledger"
)

// ExportOptions carries everything the exporter needs to render a full SIE4
// document. Balances with a zero amount are dropped from the output.
type ExportOptions struct {
	Program     string
	ProgramVer  string
	Generated   string // YYYYMMDD; today's date is a caller concern
	CompanyName string
	OrgNumber   string
	Years       map[int]Period
	Accounts    []Account
	Opening     []Balance
	Closing     []Balance
	Results     []Balance
	Vouchers    []Voucher
}

// Export renders a SIE4 document. Tags are emitted in the fixed order third
// party importers expect: identification first, then the chart of accounts,
// then balances, then the voucher blocks in input order.
func Export(opts ExportOptions) string {
	var b strings.Builder

	b.WriteString("#FLAGGA 0\r\n")
	b.WriteString("#FORMAT PC8\r\n")
	b.WriteString("#SIETYP 4\r\n")
	fmt.Fprintf(&b, "#PROGRAM %s %s\r\n", quote(opts.Program), quote(opts.ProgramVer))
	if opts.Generated != "" {
		fmt.Fprintf(&b, "#GEN %s\r\n", opts.Generated)
	}
	fmt.Fprintf(&b, "#FNAMN %s\r\n", quote(opts.CompanyName))
	if opts.OrgNumber != "" {
		fmt.Fprintf(&b, "#ORGNR %s\r\n", opts.OrgNumber)
	}

	idxs := make([]int, 0, len(opts.Years))
	for idx := range opts.Years {
		idxs = append(idxs, idx)
	}
	// Year indexes run 0, -1, -2, ... with the current year first.
	sort.Sort(sort.Reverse(sort.IntSlice(idxs)))
	for _, idx := range idxs {
		p := opts.Years[idx]
		fmt.Fprintf(&b, "#RAR %d %s %s\r\n", idx, p.Start.Format(sieDateLayout), p.End.Format(sieDateLayout))
	}

	for _, a := range opts.Accounts {
		fmt.Fprintf(&b, "#KONTO %s %s\r\n", a.Number, quote(a.Name))
	}
	writeBalances(&b, "#IB", opts.Opening)
	writeBalances(&b, "#UB", opts.Closing)
	writeBalances(&b, "#RES", opts.Results)

	for _, v := range opts.Vouchers {
		fmt.Fprintf(&b, "#VER %s %d %s %s\r\n", v.Series, v.Number, v.Date.Format(sieDateLayout), quote(v.Description))
		b.WriteString("{\r\n")
		for _, tr := range v.Transactions {
			if tr.Description != "" {
				fmt.Fprintf(&b, "#TRANS %s {} %s %s %s\r\n", tr.AccountNumber, FormatAmount(tr.Amount), v.Date.Format(sieDateLayout), quote(tr.Description))
			} else {
				fmt.Fprintf(&b, "#TRANS %s {} %s\r\n", tr.AccountNumber, FormatAmount(tr.Amount))
			}
		}
		b.WriteString("}\r\n")
	}
	return b.String()
}

func writeBalances(b *strings.Builder, tag string, balances []Balance) {
	for _, bal := range balances {
		if bal.Amount == 0 {
			continue
		}
		fmt.Fprintf(b, "%s %d %s %s\r\n", tag, bal.YearIndex, bal.AccountNumber, FormatAmount(bal.Amount))
	}
}

// FormatAmount renders öre as a SIE decimal: divided by 100, two fixed
// decimals, comma separator.
func FormatAmount(amount ledger.Ore) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := fmt.Sprintf("%d,%02d", amount/100, amount%100)
	if neg {
		return "-" + s
	}
	return s
}

// quote wraps a free-text field in double quotes, escaping embedded quotes
// by doubling them.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
