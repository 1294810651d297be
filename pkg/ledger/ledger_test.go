package ledger

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/amirasaad/sendnreceive/pkg/currency"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredit(t *testing.T) {
	l := New(0)
	require.NoError(t, l.Credit(currency.USDC, 8.30))
	require.NoError(t, l.Credit(currency.USDC, 100))
	require.NoError(t, l.Credit(currency.EURC, 50))
	require.NoError(t, l.Credit(currency.EURC, 0))

	b := l.Balances()
	assert.True(t, decimal.RequireFromString("108.30").Equal(b.USDC), b.USDC.String())
	assert.True(t, decimal.NewFromInt(50).Equal(b.EURC))
	assert.InDelta(t, 108.30, l.Balance(currency.USDC), 1e-9)
}

func TestCredit_Rejects(t *testing.T) {
	l := New(0)
	tests := []struct {
		name    string
		coin    currency.Code
		amount  float64
		wantErr error
	}{
		{name: "fiat", coin: currency.USD, amount: 1, wantErr: ErrNotStablecoin},
		{name: "unknown", coin: "SOL", amount: 1, wantErr: ErrNotStablecoin},
		{name: "negative", coin: currency.USDC, amount: -1, wantErr: ErrInvalidCredit},
		{name: "NaN", coin: currency.EURC, amount: math.NaN(), wantErr: ErrInvalidCredit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, l.Credit(tt.coin, tt.amount), tt.wantErr)
		})
	}
	assert.True(t, l.Balances().USDC.IsZero())
}

func TestTotalsEqualSumOfCredits(t *testing.T) {
	l := New(0)
	amounts := []float64{0.1, 0.2, 8.3, 19.99, 0.01, 1234.56}
	want := decimal.Zero
	prev := decimal.Zero
	for _, a := range amounts {
		require.NoError(t, l.Credit(currency.USDC, a))
		want = want.Add(decimal.NewFromFloat(a))
		got := l.Balances().USDC
		assert.True(t, got.GreaterThanOrEqual(prev), "totals never decrease")
		prev = got
	}
	assert.True(t, want.Equal(l.Balances().USDC))
	assert.Equal(t, "1263.16", l.Balances().USDC.StringFixed(2))
}

func TestConcurrentCredits(t *testing.T) {
	l := New(0)
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Credit(currency.USDC, 0.01)
			l.AppendEvent("credit", EventSuccess)
		}()
	}
	wg.Wait()
	assert.Equal(t, "1.00", l.Balances().USDC.StringFixed(2))
	assert.Equal(t, 100, l.Len())
}

func TestRecentEvents(t *testing.T) {
	l := New(5)
	assert.Empty(t, l.RecentEvents())

	for i := range 8 {
		l.AppendEvent(fmt.Sprintf("event %d", i), EventInfo)
	}
	recent := l.RecentEvents()
	require.Len(t, recent, 5)
	assert.Equal(t, "event 3", recent[0].Message)
	assert.Equal(t, "event 7", recent[4].Message)
	assert.Len(t, l.Events(), 8)
	assert.Len(t, l.LastEvents(2), 2)
	assert.Empty(t, l.LastEvents(0))
}

func TestAppendEvent(t *testing.T) {
	l := New(0)
	e := l.AppendEvent("Starting auto-conversion", EventInfo)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())

	events := l.Events()
	events[0].Message = "mutated"
	assert.Equal(t, "Starting auto-conversion", l.Events()[0].Message)
}
