package httpapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/tinoosan/bokforing/internal/ledger"
)

// Amounts travel as integer öre in *_minor fields; the human-readable SEK
// string is derived, never parsed back.
func fmtSEK(minor ledger.Ore) string {
	amt, err := money.NewAmountFromMinorUnits("SEK", int64(minor))
	if err != nil {
		return ""
	}
	return amt.String()
}

type postAccountRequest struct {
	Number string             `json:"number"`
	Name   string             `json:"name"`
	Type   ledger.AccountType `json:"type,omitempty"`
	VAT    bool               `json:"vat,omitempty"`
}

type accountResponse struct {
	Number string             `json:"number"`
	Name   string             `json:"name"`
	Type   ledger.AccountType `json:"type"`
	VAT    bool               `json:"vat"`
	Active bool               `json:"active"`
}

func toAccountResponse(a ledger.Account) accountResponse {
	return accountResponse{Number: a.Number, Name: a.Name, Type: a.Type, VAT: a.VAT, Active: a.Active}
}

type postFiscalYearRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type fiscalYearResponse struct {
	ID        uuid.UUID `json:"id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Closed    bool      `json:"closed"`
}

func toFiscalYearResponse(fy ledger.FiscalYear) fiscalYearResponse {
	return fiscalYearResponse{
		ID:        fy.ID,
		StartDate: fy.StartDate.Format("2006-01-02"),
		EndDate:   fy.EndDate.Format("2006-01-02"),
		Closed:    fy.Closed,
	}
}

type postVoucherRequest struct {
	FiscalYearID uuid.UUID         `json:"fiscal_year_id"`
	Date         string            `json:"date"`
	Description  string            `json:"description"`
	Lines        []postVoucherLine `json:"lines"`
}

type postVoucherLine struct {
	AccountNumber string `json:"account_number"`
	DebitMinor    int64  `json:"debit_minor"`
	CreditMinor   int64  `json:"credit_minor"`
	Description   string `json:"description,omitempty"`
}

type voucherResponse struct {
	ID            uuid.UUID             `json:"id"`
	FiscalYearID  uuid.UUID             `json:"fiscal_year_id"`
	Number        int                   `json:"number"`
	Date          string                `json:"date"`
	Description   string                `json:"description"`
	Lines         []voucherLineResponse `json:"lines"`
	CorrectsID    *uuid.UUID            `json:"corrects_id,omitempty"`
	CorrectedByID *uuid.UUID            `json:"corrected_by_id,omitempty"`
}

type voucherLineResponse struct {
	ID            uuid.UUID `json:"id"`
	AccountNumber string    `json:"account_number"`
	DebitMinor    int64     `json:"debit_minor"`
	CreditMinor   int64     `json:"credit_minor"`
	Debit         string    `json:"debit"`
	Credit        string    `json:"credit"`
	Description   string    `json:"description,omitempty"`
}

func toVoucherResponse(v ledger.Voucher) voucherResponse {
	resp := voucherResponse{
		ID:            v.ID,
		FiscalYearID:  v.FiscalYearID,
		Number:        v.Number,
		Date:          v.Date.Format("2006-01-02"),
		Description:   v.Description,
		CorrectsID:    v.CorrectsID,
		CorrectedByID: v.CorrectedByID,
		Lines:         make([]voucherLineResponse, 0, len(v.Lines)),
	}
	for _, l := range v.Lines {
		resp.Lines = append(resp.Lines, voucherLineResponse{
			ID:            l.ID,
			AccountNumber: l.AccountNumber,
			DebitMinor:    int64(l.Debit),
			CreditMinor:   int64(l.Credit),
			Debit:         fmtSEK(l.Debit),
			Credit:        fmtSEK(l.Credit),
			Description:   l.Description,
		})
	}
	return resp
}

type correctVoucherRequest struct {
	Date string `json:"date"`
}

type closeFiscalYearRequest struct {
	Date          string `json:"date"`
	ResultAccount string `json:"result_account,omitempty"`
}

type closeFiscalYearResponse struct {
	FiscalYear     fiscalYearResponse `json:"fiscal_year"`
	ClosingVoucher *voucherResponse   `json:"closing_voucher,omitempty"`
}

type importSIEResponse struct {
	CompanyName      string `json:"company_name"`
	AccountsCreated  int    `json:"accounts_created"`
	VouchersImported int    `json:"vouchers_imported"`
}

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, bool) {
	d, err := time.Parse(dateLayout, s)
	return d, err == nil
}
