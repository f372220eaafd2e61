package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/custodygw/internal/domain"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "data", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournal_RecordAndList(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, j.RecordLeg(ctx, domain.TradeLegRecord{
		RequestID: "req-1",
		Operation: "sell",
		Role:      domain.LegRoleSpend,
		Leg:       domain.TradeTypeSell,
		TickerID:  "eth",
		Amount:    "100",
		Sender:    "d1/user",
		Recipient: "d1/nostro",
		Accepted:  true,
		Estimate:  &domain.Price{Value: decimal.RequireFromString("3.5"), Change: decimal.Zero, Currency: "eur"},
		CreatedAt: t0,
	}))
	require.NoError(t, j.RecordLeg(ctx, domain.TradeLegRecord{
		Operation: "sell",
		Role:      domain.LegRoleReceive,
		Leg:       domain.TradeTypeBuy,
		TickerID:  "missing",
		Amount:    "1",
		Sender:    "d1/nostro",
		Recipient: "d1/user",
		Error:     "ticker_not_found",
		CreatedAt: t0.Add(time.Second),
	}))

	got, err := j.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, domain.LegRoleReceive, got[0].Role)
	assert.False(t, got[0].Accepted)
	assert.Equal(t, "ticker_not_found", got[0].Error)
	assert.Empty(t, got[0].RequestID)
	assert.Nil(t, got[0].Estimate)

	assert.Equal(t, "req-1", got[1].RequestID)
	assert.True(t, got[1].Accepted)
	require.NotNil(t, got[1].Estimate)
	assert.True(t, got[1].Estimate.Value.Equal(decimal.RequireFromString("3.5")))
	assert.Equal(t, t0, got[1].CreatedAt)
}

func TestJournal_ListLimit(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, j.RecordLeg(ctx, domain.TradeLegRecord{Operation: "send", Role: domain.LegRoleSend, Leg: domain.TradeTypeTransfer, TickerID: "eth", Amount: "1"}))
	}
	got, err := j.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestJournal_ReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.RecordLeg(context.Background(), domain.TradeLegRecord{Operation: "send", Role: domain.LegRoleSend, Leg: domain.TradeTypeTransfer, TickerID: "eth", Amount: "1"}))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()
	got, err := j.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
