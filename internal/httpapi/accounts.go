package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/tinoosan/bokforing/internal/bas"
	"github.com/tinoosan/bokforing/internal/ledger"
)

// POST /v1/accounts
func (s *Server) postAccount(w http.ResponseWriter, r *http.Request) {
	req, ok := r.Context().Value(ctxKeyPostAccount).(postAccountRequest)
	if !ok {
		badRequest(w, "missing validated request")
		return
	}
	a, err := s.accountSvc.Create(r.Context(), ledger.Account{
		Number: req.Number,
		Name:   req.Name,
		Type:   req.Type,
		VAT:    req.VAT,
	})
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toAccountResponse(a))
}

// GET /v1/accounts
func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accountSvc.List(r.Context())
	if err != nil {
		s.writeDomainErr(w, err)
		return
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	toJSON(w, http.StatusOK, struct {
		Items []accountResponse `json:"items"`
	}{Items: out})
}

// DELETE /v1/accounts/{number} deactivates; history stays intact.
func (s *Server) deactivateAccount(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	if err := s.accountSvc.Deactivate(r.Context(), number); err != nil {
		s.writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /v1/bas serves the curated BAS dictionary.
func (s *Server) getBASChart(w http.ResponseWriter, r *http.Request) {
	toJSON(w, http.StatusOK, struct {
		Items []bas.Def `json:"items"`
	}{Items: bas.Curated()})
}
