package httpapi

import (
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/bokforing/internal/service/interchange"
)

// maxSIEBody caps uploads; SIE files for a single year stay well below this.
const maxSIEBody = 32 << 20

// POST /v1/sie/import takes raw SIE bytes in the request body. Encoding is
// detected from the content, so no charset negotiation happens here.
func (s *Server) importSIE(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxSIEBody))
	if err != nil {
		badRequest(w, "failed to read request body")
		return
	}
	if len(raw) == 0 {
		badRequest(w, "empty request body")
		return
	}
	res, err := s.sieSvc.Import(r.Context(), raw)
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, importSIEResponse{
		CompanyName:      res.CompanyName,
		AccountsCreated:  res.AccountsCreated,
		VouchersImported: res.VouchersImported,
	})
}

// GET /v1/sie/export?fiscal_year_id= streams the year as SIE4 text.
func (s *Server) exportSIE(w http.ResponseWriter, r *http.Request) {
	fyID, err := uuid.Parse(r.URL.Query().Get("fiscal_year_id"))
	if err != nil {
		badRequest(w, "fiscal_year_id is required")
		return
	}
	out, err := s.sieSvc.Export(r.Context(), fyID, interchange.Company{
		Name:      s.opts.CompanyName,
		OrgNumber: s.opts.OrgNumber,
	}, time.Now())
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="export.se"`)
	_, _ = w.Write([]byte(out))
}
