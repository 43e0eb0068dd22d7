package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gxcoin/internal/schema"
)

func TestRegistrationLifecycle(t *testing.T) {
	l := New()

	assert.ErrorIs(t, l.Register(schema.AccountNil), ErrNilAccount)

	require.NoError(t, l.Register("alice"))
	assert.True(t, l.Contains("alice"))
	assert.Equal(t, 1, l.Len())

	require.NoError(t, l.Unregister("alice"))
	assert.False(t, l.Contains("alice"))
	assert.Equal(t, 0, l.Len())

	// Balances survive registration churn.
	require.NoError(t, l.CreditCoins("alice", 5))
	require.NoError(t, l.Unregister("alice"))
	require.NoError(t, l.Register("alice"))
	assert.Equal(t, schema.Quantity(5), l.CoinBalance("alice"))
	assert.Equal(t, 1, l.Len())
}

func TestDebitsFloorAtZero(t *testing.T) {
	l := New()
	require.NoError(t, l.CreditCoins("alice", 10))
	require.NoError(t, l.CreditDollars("alice", 100))

	assert.ErrorIs(t, l.DebitCoins("alice", 11), ErrInsufficientCoins)
	assert.ErrorIs(t, l.DebitDollars("alice", 101), ErrInsufficientDollars)
	assert.Equal(t, schema.Quantity(10), l.CoinBalance("alice"))
	assert.Equal(t, schema.Notional(100), l.DollarBalance("alice"))

	require.NoError(t, l.DebitCoins("alice", 10))
	require.NoError(t, l.DebitDollars("alice", 100))
	assert.Equal(t, schema.Quantity(0), l.CoinBalance("alice"))
	assert.Equal(t, schema.Notional(0), l.DollarBalance("alice"))

	assert.ErrorIs(t, l.DebitCoins("unknown", 1), ErrInsufficientCoins)
}

func TestSignedAdjustments(t *testing.T) {
	l := New()
	require.NoError(t, l.AdjustDollars("alice", 500))
	require.NoError(t, l.AdjustDollars("alice", -200))
	assert.Equal(t, schema.Notional(300), l.DollarBalance("alice"))
	assert.ErrorIs(t, l.AdjustDollars("alice", -301), ErrInsufficientDollars)

	require.NoError(t, l.AdjustCoins("alice", 7))
	require.NoError(t, l.AdjustCoins("alice", -7))
	assert.ErrorIs(t, l.AdjustCoins("alice", -1), ErrInsufficientCoins)

	assert.ErrorIs(t, l.AdjustCoins(schema.AccountNil, 1), ErrNilAccount)
}

func TestTransferMovesEverything(t *testing.T) {
	l := New()
	require.NoError(t, l.Register("old"))
	require.NoError(t, l.CreditCoins("old", 40))
	require.NoError(t, l.CreditDollars("old", 900))

	coins, dollars, err := l.Transfer("old", "new")
	require.NoError(t, err)
	assert.Equal(t, schema.Quantity(40), coins)
	assert.Equal(t, schema.Notional(900), dollars)

	assert.False(t, l.Contains("old"))
	assert.True(t, l.Contains("new"))
	assert.Equal(t, schema.Quantity(0), l.CoinBalance("old"))
	assert.Equal(t, schema.Quantity(40), l.CoinBalance("new"))
	assert.Equal(t, schema.Notional(900), l.DollarBalance("new"))

	_, _, err = l.Transfer("ghost", "new")
	assert.ErrorIs(t, err, ErrNotRegistered)
	_, _, err = l.Transfer(schema.AccountNil, "new")
	assert.ErrorIs(t, err, ErrNilAccount)
}

func TestForEachVisitsInFirstSeenOrder(t *testing.T) {
	l := New()
	require.NoError(t, l.CreditCoins("c", 1))
	require.NoError(t, l.CreditCoins("a", 1))
	require.NoError(t, l.CreditCoins("b", 1))

	var seen []schema.Account
	l.ForEach(func(tr Trader) bool {
		seen = append(seen, tr.Account)
		return true
	})
	assert.Equal(t, []schema.Account{"c", "a", "b"}, seen)
}

func TestRestoreLoadsRecordVerbatim(t *testing.T) {
	l := New()
	require.NoError(t, l.Restore(Trader{Account: "alice", Registered: true, Coins: 3, Dollars: 70}))

	assert.True(t, l.Contains("alice"))
	assert.Equal(t, schema.Quantity(3), l.CoinBalance("alice"))
	assert.Equal(t, schema.Notional(70), l.DollarBalance("alice"))

	assert.ErrorIs(t, l.Restore(Trader{}), ErrNilAccount)
}
