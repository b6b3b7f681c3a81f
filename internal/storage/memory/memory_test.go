package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/bokforing/internal/errs"
	"github.com/tinoosan/bokforing/internal/ledger"
)

func seededYear(s *Store) ledger.FiscalYear {
	fy := ledger.FiscalYear{
		ID:        uuid.New(),
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	s.SeedFiscalYear(fy)
	return fy
}

func TestNextVoucherNumber_Concurrent(t *testing.T) {
	s := New()
	fy := seededYear(s)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	got := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := s.NextVoucherNumber(ctx, fy.ID)
			if !assert.NoError(t, err) {
				return
			}
			got <- num
		}()
	}
	wg.Wait()
	close(got)

	seen := make(map[int]bool, n)
	for num := range got {
		assert.False(t, seen[num], "number %d handed out twice", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
}

func TestNextVoucherNumber_UnknownYear(t *testing.T) {
	s := New()
	_, err := s.NextVoucherNumber(context.Background(), uuid.New())
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCreateVoucher_ClosedYear(t *testing.T) {
	s := New()
	fy := seededYear(s)
	ctx := context.Background()
	require.NoError(t, s.CloseFiscalYear(ctx, fy.ID))

	_, err := s.CreateVoucher(ctx, ledger.Voucher{ID: uuid.New(), FiscalYearID: fy.ID})
	assert.ErrorIs(t, err, errs.ErrClosed)

	assert.ErrorIs(t, s.CloseFiscalYear(ctx, fy.ID), errs.ErrClosed)
}

func TestLinkCorrection_OnlyOnce(t *testing.T) {
	s := New()
	fy := seededYear(s)
	ctx := context.Background()

	orig := ledger.Voucher{ID: uuid.New(), FiscalYearID: fy.ID, Number: 1}
	c1 := ledger.Voucher{ID: uuid.New(), FiscalYearID: fy.ID, Number: 2}
	c2 := ledger.Voucher{ID: uuid.New(), FiscalYearID: fy.ID, Number: 3}
	for _, v := range []ledger.Voucher{orig, c1, c2} {
		_, err := s.CreateVoucher(ctx, v)
		require.NoError(t, err)
	}

	require.NoError(t, s.LinkCorrection(ctx, orig.ID, c1.ID))
	assert.ErrorIs(t, s.LinkCorrection(ctx, orig.ID, c2.ID), errs.ErrConflict)

	got, err := s.Voucher(ctx, orig.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CorrectedByID)
	assert.Equal(t, c1.ID, *got.CorrectedByID)
}

func TestVoucherLineOrderPreserved(t *testing.T) {
	// the line sequence is part of the voucher; stores must return it in
	// submission order for the journal and SIE export
	s := New()
	fy := seededYear(s)
	ctx := context.Background()

	v := ledger.Voucher{
		ID:           uuid.New(),
		FiscalYearID: fy.ID,
		Number:       1,
		Lines: []ledger.VoucherLine{
			{ID: uuid.New(), AccountNumber: "1910", Debit: 12500},
			{ID: uuid.New(), AccountNumber: "3000", Credit: 10000},
			{ID: uuid.New(), AccountNumber: "2611", Credit: 2500},
		},
	}
	_, err := s.CreateVoucher(ctx, v)
	require.NoError(t, err)

	got, err := s.Voucher(ctx, v.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 3)
	for i, want := range []string{"1910", "3000", "2611"} {
		assert.Equal(t, want, got.Lines[i].AccountNumber)
	}
}

func TestVoucherReadsAreCopies(t *testing.T) {
	s := New()
	fy := seededYear(s)
	ctx := context.Background()

	v := ledger.Voucher{
		ID:           uuid.New(),
		FiscalYearID: fy.ID,
		Number:       1,
		Lines:        []ledger.VoucherLine{{AccountNumber: "1910", Debit: 100}},
	}
	_, err := s.CreateVoucher(ctx, v)
	require.NoError(t, err)

	got, err := s.Voucher(ctx, v.ID)
	require.NoError(t, err)
	got.Lines[0].Debit = 999

	again, err := s.Voucher(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.Ore(100), again.Lines[0].Debit)
}
