package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tinoosan/bokforing/internal/ledger"
	"github.com/tinoosan/bokforing/internal/report"
)

// reportInput loads the vouchers and chart a report builder needs. Every
// report is scoped to a single fiscal year.
func (s *Server) reportInput(w http.ResponseWriter, r *http.Request) ([]ledger.Voucher, map[string]ledger.Account, bool) {
	fyID, err := uuid.Parse(r.URL.Query().Get("fiscal_year_id"))
	if err != nil {
		badRequest(w, "fiscal_year_id is required")
		return nil, nil, false
	}
	if _, err := s.repo.FiscalYear(r.Context(), fyID); err != nil {
		s.writeDomainErr(w, err)
		return nil, nil, false
	}
	vouchers, err := s.repo.VouchersByFiscalYear(r.Context(), fyID)
	if err != nil {
		s.writeDomainErr(w, err)
		return nil, nil, false
	}
	accounts, err := s.repo.ChartOfAccounts(r.Context())
	if err != nil {
		s.writeDomainErr(w, err)
		return nil, nil, false
	}
	return vouchers, accounts, true
}

// GET /v1/reports/trial-balance?fiscal_year_id=
func (s *Server) trialBalance(w http.ResponseWriter, r *http.Request) {
	vouchers, accounts, ok := s.reportInput(w, r)
	if !ok {
		return
	}
	toJSON(w, http.StatusOK, report.BuildTrialBalance(vouchers, accounts))
}

// GET /v1/reports/income-statement?fiscal_year_id=
func (s *Server) incomeStatement(w http.ResponseWriter, r *http.Request) {
	vouchers, accounts, ok := s.reportInput(w, r)
	if !ok {
		return
	}
	toJSON(w, http.StatusOK, report.BuildIncomeStatement(vouchers, accounts))
}

// GET /v1/reports/balance-sheet?fiscal_year_id=
func (s *Server) balanceSheet(w http.ResponseWriter, r *http.Request) {
	vouchers, accounts, ok := s.reportInput(w, r)
	if !ok {
		return
	}
	toJSON(w, http.StatusOK, report.BuildBalanceSheet(vouchers, accounts))
}

// GET /v1/reports/journal?fiscal_year_id=
func (s *Server) journal(w http.ResponseWriter, r *http.Request) {
	vouchers, accounts, ok := s.reportInput(w, r)
	if !ok {
		return
	}
	toJSON(w, http.StatusOK, report.BuildJournal(vouchers, accounts))
}

// GET /v1/reports/general-ledger?fiscal_year_id=
func (s *Server) generalLedger(w http.ResponseWriter, r *http.Request) {
	vouchers, accounts, ok := s.reportInput(w, r)
	if !ok {
		return
	}
	toJSON(w, http.StatusOK, report.BuildGeneralLedger(vouchers, accounts))
}

// GET /v1/reports/voucher-list?fiscal_year_id=
func (s *Server) voucherList(w http.ResponseWriter, r *http.Request) {
	vouchers, _, ok := s.reportInput(w, r)
	if !ok {
		return
	}
	toJSON(w, http.StatusOK, report.BuildVoucherList(vouchers))
}

// GET /v1/reports/vat?fiscal_year_id=
func (s *Server) vatSummary(w http.ResponseWriter, r *http.Request) {
	vouchers, accounts, ok := s.reportInput(w, r)
	if !ok {
		return
	}
	toJSON(w, http.StatusOK, report.BuildVATSummary(vouchers, accounts))
}
