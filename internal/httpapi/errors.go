package httpapi

import (
	"errors"
	"net/http"

	"github.com/tinoosan/bokforing/internal/errs"
	"github.com/tinoosan/bokforing/internal/ledger"
	"github.com/tinoosan/bokforing/internal/sie"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	LineIndex *int   `json:"line_index,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) { writeErr(w, http.StatusBadRequest, msg, "") }
func notFound(w http.ResponseWriter)               { writeErr(w, http.StatusNotFound, "not_found", "NOT_FOUND") }

// writeDomainErr maps errors surfaced by the services to HTTP statuses:
// validation failures become 422 with the domain code, sentinel errors map to
// 404/409, everything else is a 500.
func (s *Server) writeDomainErr(w http.ResponseWriter, err error) {
	var derr *ledger.DomainError
	if errors.As(err, &derr) {
		status := http.StatusUnprocessableEntity
		switch derr.Code {
		case ledger.ErrCodeNotFound:
			status = http.StatusNotFound
		case ledger.ErrCodeAlreadyCorrected:
			status = http.StatusConflict
		}
		resp := errorResponse{Error: derr.Message, Code: string(derr.Code)}
		if derr.LineIndex >= 0 {
			idx := derr.LineIndex
			resp.LineIndex = &idx
		}
		toJSON(w, status, resp)
		return
	}
	var perr *sie.ParseError
	if errors.As(err, &perr) {
		writeErr(w, http.StatusUnprocessableEntity, perr.Error(), string(perr.Code))
		return
	}
	switch {
	case errors.Is(err, errs.ErrNotFound):
		notFound(w)
	case errors.Is(err, errs.ErrDuplicate):
		writeErr(w, http.StatusConflict, err.Error(), "DUPLICATE")
	case errors.Is(err, errs.ErrConflict):
		writeErr(w, http.StatusConflict, err.Error(), "CONFLICT")
	case errors.Is(err, errs.ErrClosed):
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), string(ledger.ErrCodeFiscalYearClosed))
	case errors.Is(err, errs.ErrInvalid):
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "INVALID")
	default:
		s.log.Error("internal error", "err", err)
		writeErr(w, http.StatusInternalServerError, "internal error", "")
	}
}
