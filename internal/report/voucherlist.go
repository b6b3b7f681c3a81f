package report

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tinoosan/bokforing/internal/ledger"
)

// VoucherSummary is one voucher in the verifikationslista, including its
// correction-chain links so a reader can follow an audit trail without the
// full voucher bodies.
type VoucherSummary struct {
	ID            uuid.UUID  `json:"id"`
	Number        int        `json:"number"`
	Date          time.Time  `json:"date"`
	Description   string     `json:"description"`
	Amount        ledger.Ore `json:"amount_minor"` // total debit side, equals total credit for a valid voucher
	LineCount     int        `json:"line_count"`
	CorrectsID    *uuid.UUID `json:"corrects_id,omitempty"`
	CorrectedByID *uuid.UUID `json:"corrected_by_id,omitempty"`
}

// VoucherList enumerates vouchers in number order.
type VoucherList struct {
	Vouchers []VoucherSummary `json:"vouchers"`
}

// BuildVoucherList orders vouchers by their per-year sequence number.
func BuildVoucherList(vouchers []ledger.Voucher) VoucherList {
	out := make([]VoucherSummary, 0, len(vouchers))
	for _, v := range vouchers {
		out = append(out, VoucherSummary{
			ID:            v.ID,
			Number:        v.Number,
			Date:          v.Date,
			Description:   v.Description,
			Amount:        v.TotalDebit(),
			LineCount:     len(v.Lines),
			CorrectsID:    v.CorrectsID,
			CorrectedByID: v.CorrectedByID,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return VoucherList{Vouchers: out}
}
