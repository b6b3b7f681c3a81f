package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/tinoosan/bokforing/internal/ledger"
)

// JournalLine is one posting within a journal entry, joined with the
// resolved account name.
type JournalLine struct {
	AccountNumber string     `json:"account_number"`
	AccountName   string     `json:"account_name"`
	Debit         ledger.Ore `json:"debit_minor"`
	Credit        ledger.Ore `json:"credit_minor"`
	Description   string     `json:"description,omitempty"`
}

// JournalEntry is one voucher in the journal (grundbok) view.
type JournalEntry struct {
	VoucherID     uuid.UUID     `json:"voucher_id"`
	VoucherNumber int           `json:"voucher_number"`
	Date          time.Time     `json:"date"`
	Description   string        `json:"description"`
	Lines         []JournalLine `json:"lines"`
	TotalDebit    ledger.Ore    `json:"total_debit_minor"`
	TotalCredit   ledger.Ore    `json:"total_credit_minor"`
}

// Journal lists every voucher chronologically with its lines in posting
// order. Unlike the account-keyed reports nothing is omitted here: the
// journal is the complete audit record.
type Journal struct {
	Entries     []JournalEntry `json:"entries"`
	TotalDebit  ledger.Ore     `json:"total_debit_minor"`
	TotalCredit ledger.Ore     `json:"total_credit_minor"`
}

// BuildJournal orders vouchers by date (voucher number as tie-break) and
// resolves account names per line.
func BuildJournal(vouchers []ledger.Voucher, accounts map[string]ledger.Account) Journal {
	var j Journal
	for _, v := range sortVouchersChronological(vouchers) {
		e := JournalEntry{
			VoucherID:     v.ID,
			VoucherNumber: v.Number,
			Date:          v.Date,
			Description:   v.Description,
		}
		for _, l := range v.Lines {
			e.Lines = append(e.Lines, JournalLine{
				AccountNumber: l.AccountNumber,
				AccountName:   accountName(accounts, l.AccountNumber),
				Debit:         l.Debit,
				Credit:        l.Credit,
				Description:   l.Description,
			})
			e.TotalDebit += l.Debit
			e.TotalCredit += l.Credit
		}
		j.TotalDebit += e.TotalDebit
		j.TotalCredit += e.TotalCredit
		j.Entries = append(j.Entries, e)
	}
	return j
}
