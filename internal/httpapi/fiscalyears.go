package httpapi

import (
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// POST /v1/fiscal-years
func (s *Server) postFiscalYear(w http.ResponseWriter, r *http.Request) {
	dates, ok := r.Context().Value(ctxKeyPostFiscalYear).([2]time.Time)
	if !ok {
		badRequest(w, "missing validated request")
		return
	}
	fy, err := s.accountSvc.CreateFiscalYear(r.Context(), dates[0], dates[1])
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toFiscalYearResponse(fy))
}

// GET /v1/fiscal-years
func (s *Server) listFiscalYears(w http.ResponseWriter, r *http.Request) {
	years, err := s.repo.FiscalYears(r.Context())
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	out := make([]fiscalYearResponse, 0, len(years))
	for _, fy := range years {
		out = append(out, toFiscalYearResponse(fy))
	}
	toJSON(w, http.StatusOK, struct {
		Items []fiscalYearResponse `json:"items"`
	}{Items: out})
}

// POST /v1/fiscal-years/{id}/close posts the year-closing voucher and flips
// the closed flag. The result account defaults from server options.
func (s *Server) closeFiscalYear(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid fiscal year id")
		return
	}
	var req closeFiscalYearRequest
	if err := decodeStrict(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	date, ok := parseDate(req.Date)
	if !ok {
		badRequest(w, "date must be YYYY-MM-DD")
		return
	}
	resultAccount := req.ResultAccount
	if resultAccount == "" {
		resultAccount = s.opts.ResultAccount
	}
	closing, err := s.voucherSvc.CloseYear(r.Context(), id, resultAccount, date)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	fy, err := s.repo.FiscalYear(r.Context(), id)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	resp := closeFiscalYearResponse{FiscalYear: toFiscalYearResponse(fy)}
	if closing.ID != uuid.Nil {
		v := toVoucherResponse(closing)
		resp.ClosingVoucher = &v
	}
	toJSON(w, http.StatusOK, resp)
}
