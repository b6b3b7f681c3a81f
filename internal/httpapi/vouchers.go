package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tinoosan/bokforing/internal/service/voucher"
)

// POST /v1/vouchers
func (s *Server) postVoucher(w http.ResponseWriter, r *http.Request) {
	draft, ok := r.Context().Value(ctxKeyPostVoucher).(voucher.Draft)
	if !ok {
		badRequest(w, "missing validated request")
		return
	}
	v, err := s.voucherSvc.Create(r.Context(), draft)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	vouchersCreatedTotal.Inc()
	toJSON(w, http.StatusCreated, toVoucherResponse(v))
}

// GET /v1/vouchers?fiscal_year_id=
func (s *Server) listVouchers(w http.ResponseWriter, r *http.Request) {
	fyID, err := uuid.Parse(r.URL.Query().Get("fiscal_year_id"))
	if err != nil {
		badRequest(w, "fiscal_year_id is required")
		return
	}
	vouchers, err := s.repo.VouchersByFiscalYear(r.Context(), fyID)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	out := make([]voucherResponse, 0, len(vouchers))
	for _, v := range vouchers {
		out = append(out, toVoucherResponse(v))
	}
	toJSON(w, http.StatusOK, struct {
		Items []voucherResponse `json:"items"`
	}{Items: out})
}

// GET /v1/vouchers/{id}
func (s *Server) getVoucher(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid voucher id")
		return
	}
	v, err := s.repo.Voucher(r.Context(), id)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toVoucherResponse(v))
}

// POST /v1/vouchers/{id}/correct posts the reversing voucher and links the
// pair. A voucher can be corrected at most once.
func (s *Server) correctVoucher(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid voucher id")
		return
	}
	var req correctVoucherRequest
	if err := decodeStrict(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	date, ok := parseDate(req.Date)
	if !ok {
		badRequest(w, "date must be YYYY-MM-DD")
		return
	}
	corr, err := s.voucherSvc.Correct(r.Context(), id, date)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	vouchersCreatedTotal.Inc()
	toJSON(w, http.StatusCreated, toVoucherResponse(corr))
}
