package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tinoosan/bokforing/internal/ledger"
	"github.com/tinoosan/bokforing/internal/storage/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type voucherResp struct {
	ID           string `json:"id"`
	FiscalYearID string `json:"fiscal_year_id"`
	Number       int    `json:"number"`
	Date         string `json:"date"`
	Description  string `json:"description"`
	Lines        []struct {
		AccountNumber string `json:"account_number"`
		DebitMinor    int64  `json:"debit_minor"`
		CreditMinor   int64  `json:"credit_minor"`
		Debit         string `json:"debit"`
	} `json:"lines"`
	CorrectsID    string `json:"corrects_id"`
	CorrectedByID string `json:"corrected_by_id"`
}

type errResp struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	LineIndex *int   `json:"line_index"`
}

func setup(t *testing.T) (*memory.Store, http.Handler, ledger.FiscalYear) {
	t.Helper()
	store := memory.New()
	fy := ledger.FiscalYear{
		ID:        uuid.New(),
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	store.SeedFiscalYear(fy)
	for _, a := range []ledger.Account{
		{Number: "1910", Name: "Kassa", Type: ledger.AccountTypeAsset, Active: true},
		{Number: "2099", Name: "Årets resultat", Type: ledger.AccountTypeEquity, Active: true},
		{Number: "2611", Name: "Utgående moms 25%", Type: ledger.AccountTypeLiability, VAT: true, Active: true},
		{Number: "3000", Name: "Försäljning", Type: ledger.AccountTypeRevenue, Active: true},
		{Number: "5010", Name: "Lokalhyra", Type: ledger.AccountTypeExpense, Active: true},
	} {
		store.SeedAccount(a)
	}
	h := New(store, store, Options{CompanyName: "Testbolaget AB", OrgNumber: "556000-0000"}, testLogger()).Handler()
	return store, h, fy
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postVoucherBody(fy ledger.FiscalYear, date string, lines []map[string]any) map[string]any {
	return map[string]any{
		"fiscal_year_id": fy.ID.String(),
		"date":           date,
		"description":    "Kontantförsäljning",
		"lines":          lines,
	}
}

func TestPostVoucher_ValidAndInvalid(t *testing.T) {
	_, h, fy := setup(t)

	// valid: sale with VAT
	rec := doJSON(t, h, http.MethodPost, "/v1/vouchers", postVoucherBody(fy, "2024-02-15", []map[string]any{
		{"account_number": "1910", "debit_minor": 12500},
		{"account_number": "3000", "credit_minor": 10000},
		{"account_number": "2611", "credit_minor": 2500},
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var vr voucherResp
	if err := json.Unmarshal(rec.Body.Bytes(), &vr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if vr.Number != 1 || len(vr.Lines) != 3 {
		t.Fatalf("unexpected response: %+v", vr)
	}
	if vr.Lines[0].Debit == "" {
		t.Fatalf("expected display amount, got %+v", vr.Lines[0])
	}

	// invalid: unbalanced
	rec = doJSON(t, h, http.MethodPost, "/v1/vouchers", postVoucherBody(fy, "2024-02-16", []map[string]any{
		{"account_number": "1910", "debit_minor": 12500},
		{"account_number": "3000", "credit_minor": 10000},
	}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	var er errResp
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if er.Code != "UNBALANCED" {
		t.Fatalf("expected UNBALANCED, got %q", er.Code)
	}

	// invalid: unknown account carries the line index
	rec = doJSON(t, h, http.MethodPost, "/v1/vouchers", postVoucherBody(fy, "2024-02-16", []map[string]any{
		{"account_number": "1910", "debit_minor": 100},
		{"account_number": "4711", "credit_minor": 100},
	}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	er = errResp{}
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if er.Code != "ACCOUNT_NOT_FOUND" || er.LineIndex == nil || *er.LineIndex != 1 {
		t.Fatalf("unexpected error: %+v", er)
	}

	// invalid: date outside the fiscal year
	rec = doJSON(t, h, http.MethodPost, "/v1/vouchers", postVoucherBody(fy, "2025-02-16", []map[string]any{
		{"account_number": "1910", "debit_minor": 100},
		{"account_number": "3000", "credit_minor": 100},
	}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCorrectVoucher(t *testing.T) {
	_, h, fy := setup(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/vouchers", postVoucherBody(fy, "2024-02-15", []map[string]any{
		{"account_number": "1910", "debit_minor": 5000},
		{"account_number": "3000", "credit_minor": 5000},
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var orig voucherResp
	_ = json.Unmarshal(rec.Body.Bytes(), &orig)

	rec = doJSON(t, h, http.MethodPost, "/v1/vouchers/"+orig.ID+"/correct", map[string]any{"date": "2024-03-01"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var corr voucherResp
	_ = json.Unmarshal(rec.Body.Bytes(), &corr)
	if corr.CorrectsID != orig.ID {
		t.Fatalf("correction does not reference original: %+v", corr)
	}
	if !strings.HasPrefix(corr.Description, "Rättelse av verifikat #") {
		t.Fatalf("unexpected description: %q", corr.Description)
	}
	if corr.Lines[0].DebitMinor != 0 || corr.Lines[0].CreditMinor != 5000 {
		t.Fatalf("lines not swapped: %+v", corr.Lines[0])
	}

	// second correction of the same voucher is rejected
	rec = doJSON(t, h, http.MethodPost, "/v1/vouchers/"+orig.ID+"/correct", map[string]any{"date": "2024-03-02"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	// unknown voucher is a 404
	rec = doJSON(t, h, http.MethodPost, "/v1/vouchers/"+uuid.NewString()+"/correct", map[string]any{"date": "2024-03-02"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTrialBalanceEndpoint(t *testing.T) {
	_, h, fy := setup(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/vouchers", postVoucherBody(fy, "2024-02-15", []map[string]any{
		{"account_number": "1910", "debit_minor": 50000},
		{"account_number": "3000", "credit_minor": 50000},
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/reports/trial-balance?fiscal_year_id="+fy.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var tb struct {
		Rows []struct {
			AccountNumber string `json:"account_number"`
			DebitMinor    int64  `json:"debit_minor"`
			CreditMinor   int64  `json:"credit_minor"`
		} `json:"rows"`
		TotalDebitMinor  int64 `json:"total_debit_minor"`
		TotalCreditMinor int64 `json:"total_credit_minor"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &tb); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tb.Rows) != 2 || tb.TotalDebitMinor != 50000 || tb.TotalCreditMinor != 50000 {
		t.Fatalf("unexpected trial balance: %+v", tb)
	}

	// missing year is a 404
	rec = doJSON(t, h, http.MethodGet, "/v1/reports/trial-balance?fiscal_year_id="+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountsEndpoints(t *testing.T) {
	_, h, _ := setup(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/accounts", map[string]any{"number": "6110", "name": "Kontorsmateriel"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var ar struct {
		Number string `json:"number"`
		Type   string `json:"type"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &ar)
	if ar.Type != "expense" {
		t.Fatalf("expected derived type expense, got %q", ar.Type)
	}

	// duplicate number
	rec = doJSON(t, h, http.MethodPost, "/v1/accounts", map[string]any{"number": "6110", "name": "Igen"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	// malformed BAS number is the caller's mistake, not a server error
	rec = doJSON(t, h, http.MethodPost, "/v1/accounts", map[string]any{"number": "0042", "name": "X"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	var er struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if er.Code != "INVALID" {
		t.Fatalf("expected code INVALID, got %q", er.Code)
	}

	// fiscal year ending before it starts, same treatment
	rec = doJSON(t, h, http.MethodPost, "/v1/fiscal-years", map[string]any{
		"start_date": "2026-01-01", "end_date": "2025-01-01",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodDelete, "/v1/accounts/6110", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/bas", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCloseFiscalYearEndpoint(t *testing.T) {
	_, h, fy := setup(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/vouchers", postVoucherBody(fy, "2024-02-15", []map[string]any{
		{"account_number": "1910", "debit_minor": 50000},
		{"account_number": "3000", "credit_minor": 50000},
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/fiscal-years/"+fy.ID.String()+"/close", map[string]any{"date": "2024-12-31"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var cr struct {
		FiscalYear struct {
			Closed bool `json:"closed"`
		} `json:"fiscal_year"`
		ClosingVoucher *voucherResp `json:"closing_voucher"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &cr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !cr.FiscalYear.Closed || cr.ClosingVoucher == nil {
		t.Fatalf("unexpected close response: %s", rec.Body.String())
	}

	// posting into a closed year fails
	rec = doJSON(t, h, http.MethodPost, "/v1/vouchers", postVoucherBody(fy, "2024-03-01", []map[string]any{
		{"account_number": "1910", "debit_minor": 100},
		{"account_number": "3000", "credit_minor": 100},
	}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSIEImportExportEndpoints(t *testing.T) {
	_, h, _ := setup(t)

	sieText := "#FLAGGA 0\r\n#FNAMN \"Importbolaget\"\r\n" +
		"#RAR 0 20230101 20231231\r\n" +
		"#KONTO 1930 Bank\r\n#KONTO 3001 Tjänster\r\n" +
		"#VER A 1 20230601 Faktura\r\n{\r\n" +
		"#TRANS 1930 {} 100,00\r\n#TRANS 3001 {} -100,00\r\n}\r\n"
	req := httptest.NewRequest(http.MethodPost, "/v1/sie/import", strings.NewReader(sieText))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var ir struct {
		CompanyName      string `json:"company_name"`
		VouchersImported int    `json:"vouchers_imported"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &ir); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ir.CompanyName != "Importbolaget" || ir.VouchersImported != 1 {
		t.Fatalf("unexpected import result: %+v", ir)
	}

	// fetch the year the import created and export it again
	rec = doJSON(t, h, http.MethodGet, "/v1/fiscal-years", nil)
	var fys struct {
		Items []struct {
			ID        string `json:"id"`
			StartDate string `json:"start_date"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &fys); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var importedID string
	for _, it := range fys.Items {
		if it.StartDate == "2023-01-01" {
			importedID = it.ID
		}
	}
	if importedID == "" {
		t.Fatalf("imported fiscal year not found: %+v", fys)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/sie/export?fiscal_year_id="+importedID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "#FNAMN \"Testbolaget AB\"") || !strings.Contains(body, "#TRANS 1930 {} 100,00") {
		t.Fatalf("unexpected export: %s", body)
	}
}

func TestHealthEndpoints(t *testing.T) {
	_, h, _ := setup(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, h, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}
