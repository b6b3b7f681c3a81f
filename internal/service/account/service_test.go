package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/bokforing/internal/errs"
	"github.com/tinoosan/bokforing/internal/ledger"
	"github.com/tinoosan/bokforing/internal/storage/memory"
)

func TestCreate_DerivesTypeFromNumber(t *testing.T) {
	store := memory.New()
	svc := New(store, store)
	ctx := context.Background()

	a, err := svc.Create(ctx, ledger.Account{Number: "1930", Name: "Företagskonto"})
	require.NoError(t, err)
	assert.Equal(t, ledger.AccountTypeAsset, a.Type)
	assert.True(t, a.Active)
}

func TestCreate_StoredTypeWins(t *testing.T) {
	store := memory.New()
	svc := New(store, store)
	ctx := context.Background()

	// 2081 derives to equity, but an explicit type is kept as-is
	a, err := svc.Create(ctx, ledger.Account{Number: "2081", Name: "Aktiekapital", Type: ledger.AccountTypeLiability})
	require.NoError(t, err)
	assert.Equal(t, ledger.AccountTypeLiability, a.Type)
}

func TestCreate_RejectsBadNumberAndDuplicates(t *testing.T) {
	store := memory.New()
	svc := New(store, store)
	ctx := context.Background()

	_, err := svc.Create(ctx, ledger.Account{Number: "0042", Name: "X"})
	assert.ErrorIs(t, err, errs.ErrInvalid)
	_, err = svc.Create(ctx, ledger.Account{Number: "9100", Name: "X"})
	assert.ErrorIs(t, err, errs.ErrInvalid)

	_, err = svc.Create(ctx, ledger.Account{Number: "1910", Name: "Kassa"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, ledger.Account{Number: "1910", Name: "Kassa igen"})
	assert.ErrorIs(t, err, errs.ErrDuplicate)
}

func TestDeactivate(t *testing.T) {
	store := memory.New()
	svc := New(store, store)
	ctx := context.Background()

	_, err := svc.Create(ctx, ledger.Account{Number: "1910", Name: "Kassa"})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, "1910"))

	chart, err := store.ChartOfAccounts(ctx)
	require.NoError(t, err)
	assert.False(t, chart["1910"].Active)

	assert.ErrorIs(t, svc.Deactivate(ctx, "1110"), errs.ErrNotFound)
}

func TestEnsureImported(t *testing.T) {
	store := memory.New()
	svc := New(store, store)
	ctx := context.Background()

	_, err := svc.Create(ctx, ledger.Account{Number: "1910", Name: "Kassa", Type: ledger.AccountTypeAsset})
	require.NoError(t, err)

	chart, err := svc.EnsureImported(ctx, []ledger.Account{
		{Number: "1910", Name: "Annat namn"}, // already known, untouched
		{Number: "3000", Name: "Försäljning"},
		{Number: "5010", Name: ""},     // name backfilled
		{Number: "9999", Name: "Skräp"}, // outside BAS classes, skipped
	})
	require.NoError(t, err)

	assert.Equal(t, "Kassa", chart["1910"].Name)
	assert.Equal(t, ledger.AccountTypeRevenue, chart["3000"].Type)
	assert.Equal(t, "Konto 5010", chart["5010"].Name)
	_, ok := chart["9999"]
	assert.False(t, ok)
}

func TestFiscalYears(t *testing.T) {
	store := memory.New()
	svc := New(store, store)
	ctx := context.Background()

	fy, err := svc.CreateFiscalYear(ctx,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	_, err = svc.CreateFiscalYear(ctx,
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, errs.ErrConflict, "overlapping years rejected")

	_, err = svc.CreateFiscalYear(ctx,
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, errs.ErrInvalid, "end before start rejected")

	got, err := svc.FiscalYearFor(ctx, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, fy.ID, got.ID)

	_, err = svc.FiscalYearFor(ctx, time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
