// Package httpapi wires the HTTP surface of the bookkeeping service.
// It keeps handlers thin, delegating business rules to the service layer.
package httpapi

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tinoosan/bokforing/internal/service/account"
	"github.com/tinoosan/bokforing/internal/service/interchange"
	"github.com/tinoosan/bokforing/internal/service/voucher"
)

// Repository combines the read interfaces the services need. Both the memory
// and the postgres store satisfy it.
type Repository interface {
	voucher.Repo
	account.Repo
}

// Writer combines the write interfaces the services need.
type Writer interface {
	voucher.Writer
	account.Writer
}

// Options carries the company identity used on SIE export and the equity
// account the year result is booked against.
type Options struct {
	CompanyName   string
	OrgNumber     string
	ResultAccount string
}

// Server wires handlers and middleware using Chi.
type Server struct {
	voucherSvc voucher.Service
	accountSvc account.Service
	sieSvc     interchange.Service
	repo       Repository
	opts       Options
	log        *slog.Logger
	rt         *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
// The logger is used by request/response logging and panic recovery.
func New(repo Repository, writer Writer, opts Options, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)

	if opts.ResultAccount == "" {
		opts.ResultAccount = "2099"
	}
	accountSvc := account.New(repo, writer)
	voucherSvc := voucher.New(repo, writer)
	s := &Server{
		voucherSvc: voucherSvc,
		accountSvc: accountSvc,
		sieSvc:     interchange.New(repo, accountSvc, voucherSvc),
		repo:       repo,
		opts:       opts,
		rt:         r,
		log:        logger,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints and attaches any per-route middleware.
func (s *Server) routes() {
	// Accounts
	s.rt.With(s.validatePostAccount()).Post("/v1/accounts", s.postAccount)
	s.rt.Get("/v1/accounts", s.listAccounts)
	s.rt.Delete("/v1/accounts/{number}", s.deactivateAccount)
	s.rt.Get("/v1/bas", s.getBASChart)
	// Fiscal years
	s.rt.With(s.validatePostFiscalYear()).Post("/v1/fiscal-years", s.postFiscalYear)
	s.rt.Get("/v1/fiscal-years", s.listFiscalYears)
	s.rt.Post("/v1/fiscal-years/{id}/close", s.closeFiscalYear)
	// Vouchers
	s.rt.With(s.validatePostVoucher()).Post("/v1/vouchers", s.postVoucher)
	s.rt.Get("/v1/vouchers", s.listVouchers)
	s.rt.Get("/v1/vouchers/{id}", s.getVoucher)
	s.rt.Post("/v1/vouchers/{id}/correct", s.correctVoucher)
	// Reports
	s.rt.Get("/v1/reports/trial-balance", s.trialBalance)
	s.rt.Get("/v1/reports/income-statement", s.incomeStatement)
	s.rt.Get("/v1/reports/balance-sheet", s.balanceSheet)
	s.rt.Get("/v1/reports/journal", s.journal)
	s.rt.Get("/v1/reports/general-ledger", s.generalLedger)
	s.rt.Get("/v1/reports/voucher-list", s.voucherList)
	s.rt.Get("/v1/reports/vat", s.vatSummary)
	// SIE interchange
	s.rt.Post("/v1/sie/import", s.importSIE)
	s.rt.Get("/v1/sie/export", s.exportSIE)
	// Health and metrics (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Handle("/metrics", metricsHandler())
}
