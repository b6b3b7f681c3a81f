package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tinoosan/bokforing/internal/ledger"
	"github.com/tinoosan/bokforing/internal/service/voucher"
)

type ctxKey string

const (
	ctxKeyPostVoucher    ctxKey = "validatedPostVoucher"
	ctxKeyPostAccount    ctxKey = "validatedPostAccount"
	ctxKeyPostFiscalYear ctxKey = "validatedPostFiscalYear"
)

// requestLogger logs basic request info at INFO.
func requestLogger(l *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			reqID := chimw.GetReqID(r.Context())
			l.Info("request started", "req_id", reqID, "method", r.Method, "path", r.URL.Path)

			next.ServeHTTP(ww, r)

			l.Info("request complete",
				"req_id", reqID,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String(),
			)
		})
	}
}

// recoverer logs panics as ERROR and returns 500.
func recoverer(l *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					reqID := chimw.GetReqID(r.Context())
					l.Error("panic", "req_id", reqID, "err", rec, "stack", string(debug.Stack()))
					w.WriteHeader(http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func decodeStrict(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// validatePostVoucher parses the POST /v1/vouchers body into a draft and
// stores it in the request context for the handler. Domain validation happens
// in the service so the error order stays in one place.
func (s *Server) validatePostVoucher() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req postVoucherRequest
			if err := decodeStrict(r, &req); err != nil {
				badRequest(w, "invalid JSON: "+err.Error())
				return
			}
			date, ok := parseDate(req.Date)
			if !ok {
				badRequest(w, "date must be YYYY-MM-DD")
				return
			}
			draft := voucher.Draft{
				FiscalYearID: req.FiscalYearID,
				Date:         date,
				Description:  req.Description,
			}
			for _, l := range req.Lines {
				draft.Lines = append(draft.Lines, voucher.DraftLine{
					AccountNumber: l.AccountNumber,
					Debit:         ledger.Ore(l.DebitMinor),
					Credit:        ledger.Ore(l.CreditMinor),
					Description:   l.Description,
				})
			}
			ctx := context.WithValue(r.Context(), ctxKeyPostVoucher, draft)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (s *Server) validatePostAccount() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req postAccountRequest
			if err := decodeStrict(r, &req); err != nil {
				badRequest(w, "invalid JSON: "+err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyPostAccount, req)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (s *Server) validatePostFiscalYear() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req postFiscalYearRequest
			if err := decodeStrict(r, &req); err != nil {
				badRequest(w, "invalid JSON: "+err.Error())
				return
			}
			start, ok := parseDate(req.StartDate)
			if !ok {
				badRequest(w, "start_date must be YYYY-MM-DD")
				return
			}
			end, ok := parseDate(req.EndDate)
			if !ok {
				badRequest(w, "end_date must be YYYY-MM-DD")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyPostFiscalYear, [2]time.Time{start, end})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
