package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gxcoin/internal/access"
	"gxcoin/internal/book"
	"gxcoin/internal/ledger"
	"gxcoin/internal/schema"
)

const engineSelf = schema.Account("engine")

type recordedSink struct {
	events []schema.Event
}

func (s *recordedSink) Publish(ev schema.Event) {
	s.events = append(s.events, ev)
}

func (s *recordedSink) trades() []schema.TradeExecuted {
	var out []schema.TradeExecuted
	for _, ev := range s.events {
		if ev.Header.Type == schema.EventTradeExecuted {
			out = append(out, *ev.Trade)
		}
	}
	return out
}

func newTestEngine(t *testing.T) (*Engine, *ledger.Ledger, *book.List, *book.List, *recordedSink) {
	t.Helper()

	root := schema.Account("root")
	deployment := access.NewDeploymentAdmins(root)
	admins := access.NewAdmins(deployment)
	require.NoError(t, admins.Add(root, "admin"))

	buyOwners := access.NewOwners(deployment)
	sellOwners := access.NewOwners(deployment)
	require.NoError(t, buyOwners.AddOwner(root, engineSelf))
	require.NoError(t, sellOwners.AddOwner(root, engineSelf))

	buys := book.NewList(buyOwners)
	sells := book.NewList(sellOwners)

	led := ledger.New()
	for _, account := range []schema.Account{"alice", "bob", "carol"} {
		require.NoError(t, led.Register(account))
		require.NoError(t, led.CreditDollars(account, 10_000))
		require.NoError(t, led.CreditCoins(account, 1_000))
	}

	sink := &recordedSink{}
	eng := New(engineSelf, buys, sells, led, admins, sink, Config{})
	return eng, led, buys, sells, sink
}

func bookIDs(l *book.List) []uint64 {
	var ids []uint64
	l.ForEach(func(o book.Order) bool {
		ids = append(ids, o.OrderID)
		return true
	})
	return ids
}

func TestCreateOrderRestsWithReservation(t *testing.T) {
	eng, led, buys, _, _ := newTestEngine(t)

	res, err := eng.CreateOrder("alice", schema.SideBuy, 5, 20, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.OrderID)
	assert.Equal(t, schema.Quantity(0), res.Filled)
	assert.Equal(t, schema.Quantity(5), res.Resting)

	assert.Equal(t, schema.Notional(10_000-100), led.DollarBalance("alice"))
	assert.Equal(t, 1, buys.Size())

	o := buys.Get(res.OrderID)
	assert.Equal(t, schema.Account("alice"), o.Account)
	assert.Equal(t, schema.Quantity(5), o.OriginalQuantity)
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	eng, led, buys, _, _ := newTestEngine(t)

	_, err := eng.CreateOrder("alice", schema.SideBuy, 0, 20, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = eng.CreateOrder("alice", schema.SideSell, 5, 0, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = eng.CreateOrder("stranger", schema.SideBuy, 5, 20, 0, 0)
	assert.ErrorIs(t, err, ErrNotRegistered)

	_, err = eng.CreateOrder("alice", schema.SideUnknown, 5, 20, 0, 0)
	assert.ErrorIs(t, err, ErrUnknownSide)

	// Rejections consume no order id and move no money.
	assert.Equal(t, uint64(1), buys.NextOrderID())
	assert.Equal(t, schema.Notional(10_000), led.DollarBalance("alice"))
}

func TestCreateOrderRejectsUnfundedReservation(t *testing.T) {
	eng, led, buys, sells, _ := newTestEngine(t)

	_, err := eng.CreateOrder("alice", schema.SideBuy, 5, 10_000, 0, 0)
	assert.ErrorIs(t, err, ledger.ErrInsufficientDollars)

	_, err = eng.CreateOrder("alice", schema.SideSell, 5_000, 10, 0, 0)
	assert.ErrorIs(t, err, ledger.ErrInsufficientCoins)

	assert.Equal(t, uint64(1), buys.NextOrderID())
	assert.Equal(t, uint64(1), sells.NextOrderID())
	assert.Equal(t, schema.Notional(10_000), led.DollarBalance("alice"))
	assert.Equal(t, schema.Quantity(1_000), led.CoinBalance("alice"))
}

func TestCreateOrderRequiresBookOwnership(t *testing.T) {
	eng, led, buys, _, _ := newTestEngine(t)
	require.NoError(t, buys.Owners().RemoveOwner("root", engineSelf))

	_, err := eng.CreateOrder("alice", schema.SideBuy, 5, 20, 0, 0)
	assert.ErrorIs(t, err, book.ErrNotOwner)
	assert.Equal(t, uint64(1), buys.NextOrderID())
	assert.Equal(t, schema.Notional(10_000), led.DollarBalance("alice"))
}

func TestBuyBookKeepsPricePriority(t *testing.T) {
	eng, _, buys, _, _ := newTestEngine(t)

	for _, price := range []schema.Price{100, 101, 102, 99} {
		_, err := eng.CreateOrder("alice", schema.SideBuy, 1, price, 0, 0)
		require.NoError(t, err)
	}

	// Best bid first, ties by arrival.
	assert.Equal(t, []uint64{3, 2, 1, 4}, bookIDs(buys))
}

func TestSellBookKeepsPricePriority(t *testing.T) {
	eng, _, _, sells, _ := newTestEngine(t)

	for _, price := range []schema.Price{100, 101, 102, 99, 100} {
		_, err := eng.CreateOrder("alice", schema.SideSell, 1, price, 0, 0)
		require.NoError(t, err)
	}

	// Best ask first, the second 100 behind the first.
	assert.Equal(t, []uint64{4, 1, 5, 2, 3}, bookIDs(sells))
}

func TestIncomingBuyExecutesAtAskPrice(t *testing.T) {
	eng, led, _, sells, sink := newTestEngine(t)

	_, err := eng.CreateOrder("bob", schema.SideSell, 5, 20, 0, 0)
	require.NoError(t, err)

	res, err := eng.CreateOrder("alice", schema.SideBuy, 5, 24, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, schema.Quantity(5), res.Filled)
	assert.Equal(t, schema.Quantity(0), res.Resting)
	assert.Equal(t, 0, sells.Size())

	// Alice reserved 5*24 but traded at the ask; the surplus comes back.
	assert.Equal(t, schema.Notional(10_000-100), led.DollarBalance("alice"))
	assert.Equal(t, schema.Quantity(1_005), led.CoinBalance("alice"))
	assert.Equal(t, schema.Notional(10_000+100), led.DollarBalance("bob"))
	assert.Equal(t, schema.Quantity(995), led.CoinBalance("bob"))

	trades := sink.trades()
	require.Len(t, trades, 1)
	assert.Equal(t, schema.Price(20), trades[0].PricePerCoin)
	assert.Equal(t, schema.Notional(20), trades[0].BuyerRefund)
}

func TestIncomingSellExecutesAtItsOwnPrice(t *testing.T) {
	eng, led, buys, _, sink := newTestEngine(t)

	_, err := eng.CreateOrder("alice", schema.SideBuy, 5, 25, 0, 0)
	require.NoError(t, err)

	res, err := eng.CreateOrder("bob", schema.SideSell, 5, 20, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, schema.Quantity(5), res.Filled)
	assert.Equal(t, 0, buys.Size())

	// The resting buyer reserved at 25, traded at 20, and is refunded the
	// difference for the matched quantity.
	assert.Equal(t, schema.Notional(10_000-100), led.DollarBalance("alice"))
	assert.Equal(t, schema.Quantity(1_005), led.CoinBalance("alice"))
	assert.Equal(t, schema.Notional(10_000+100), led.DollarBalance("bob"))

	trades := sink.trades()
	require.Len(t, trades, 1)
	assert.Equal(t, schema.Price(20), trades[0].PricePerCoin)
	assert.Equal(t, schema.Notional(25), trades[0].BuyerRefund)
	assert.Equal(t, schema.Account("alice"), trades[0].Buyer)
	assert.Equal(t, schema.Account("bob"), trades[0].Seller)
}

func TestPartialFillUpdatesRestingOrder(t *testing.T) {
	eng, led, _, sells, _ := newTestEngine(t)

	sellRes, err := eng.CreateOrder("bob", schema.SideSell, 10, 20, 0, 0)
	require.NoError(t, err)

	res, err := eng.CreateOrder("alice", schema.SideBuy, 4, 20, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, schema.Quantity(4), res.Filled)

	rest := sells.Get(sellRes.OrderID)
	assert.Equal(t, schema.Quantity(6), rest.Quantity)
	assert.Equal(t, schema.Quantity(10), rest.OriginalQuantity)
	assert.Equal(t, schema.Quantity(1_004), led.CoinBalance("alice"))
	assert.Equal(t, schema.Notional(10_000+80), led.DollarBalance("bob"))
}

func TestIncomingOrderSweepsMultipleLevels(t *testing.T) {
	eng, led, _, sells, sink := newTestEngine(t)

	_, err := eng.CreateOrder("bob", schema.SideSell, 2, 20, 0, 0)
	require.NoError(t, err)
	_, err = eng.CreateOrder("carol", schema.SideSell, 3, 22, 0, 0)
	require.NoError(t, err)

	res, err := eng.CreateOrder("alice", schema.SideBuy, 4, 25, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, schema.Quantity(4), res.Filled)

	// 2@20 from bob, then 2@22 from carol; carol keeps 1 resting.
	require.Len(t, sink.trades(), 2)
	assert.Equal(t, schema.Quantity(1), sells.Get(2).Quantity)
	assert.Equal(t, schema.Notional(10_000-2*20-2*22), led.DollarBalance("alice"))
	assert.Equal(t, schema.Quantity(1_004), led.CoinBalance("alice"))
}

func TestBudgetExhaustionCancelsRemainder(t *testing.T) {
	eng, led, buys, sells, sink := newTestEngine(t)

	_, err := eng.CreateOrder("bob", schema.SideSell, 1, 10, 0, 0)
	require.NoError(t, err)
	_, err = eng.CreateOrder("carol", schema.SideSell, 1, 10, 0, 0)
	require.NoError(t, err)

	res, err := eng.CreateOrder("alice", schema.SideBuy, 3, 10, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, schema.Quantity(1), res.Filled)
	assert.True(t, res.RemainderCancelled)
	assert.Equal(t, schema.Quantity(0), res.Resting)

	// The second ask still crossed, so the unfilled part is refunded
	// instead of resting ahead of it.
	assert.Equal(t, 0, buys.Size())
	assert.Equal(t, 1, sells.Size())
	assert.Equal(t, schema.Notional(10_000-10), led.DollarBalance("alice"))
	assert.Equal(t, schema.Quantity(1_001), led.CoinBalance("alice"))

	// The order id is consumed even though nothing rested under it.
	assert.Equal(t, uint64(2), buys.NextOrderID())

	var cancelled bool
	for _, ev := range sink.events {
		if ev.Header.Type == schema.EventRemainderCancelled {
			cancelled = true
			assert.Equal(t, schema.Quantity(2), ev.Order.Quantity)
		}
	}
	assert.True(t, cancelled)
}

func TestBudgetUnusedWhenBookStopsCrossing(t *testing.T) {
	eng, led, buys, sells, _ := newTestEngine(t)

	_, err := eng.CreateOrder("bob", schema.SideSell, 1, 30, 0, 0)
	require.NoError(t, err)

	res, err := eng.CreateOrder("alice", schema.SideBuy, 2, 10, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, schema.Quantity(0), res.Filled)
	assert.False(t, res.RemainderCancelled)
	assert.Equal(t, schema.Quantity(2), res.Resting)

	assert.Equal(t, 1, buys.Size())
	assert.Equal(t, 1, sells.Size())
	assert.Equal(t, schema.Notional(10_000-20), led.DollarBalance("alice"))
}

func TestExpiredIncomingOrderRejected(t *testing.T) {
	eng, led, buys, _, _ := newTestEngine(t)
	eng.cfg.ExpiryPolicy = ExpiryEnforced
	eng.cfg.Now = func() int64 { return 1_000 }

	_, err := eng.CreateOrder("alice", schema.SideBuy, 5, 20, 900, 0)
	assert.ErrorIs(t, err, ErrOrderExpired)
	assert.Equal(t, uint64(1), buys.NextOrderID())
	assert.Equal(t, schema.Notional(10_000), led.DollarBalance("alice"))
}

func TestExpiredRestingOrderCancelledDuringMatch(t *testing.T) {
	eng, led, _, sells, sink := newTestEngine(t)
	eng.cfg.ExpiryPolicy = ExpiryEnforced
	eng.cfg.Now = func() int64 { return 1_000 }

	_, err := eng.CreateOrder("bob", schema.SideSell, 5, 20, 1_500, 0)
	require.NoError(t, err)
	eng.cfg.Now = func() int64 { return 2_000 }

	res, err := eng.CreateOrder("alice", schema.SideBuy, 5, 25, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, schema.Quantity(0), res.Filled)
	assert.Equal(t, schema.Quantity(5), res.Resting)

	// The stale ask is swept out with a refund instead of trading.
	assert.Equal(t, 0, sells.Size())
	assert.Equal(t, schema.Quantity(1_000), led.CoinBalance("bob"))

	var expiredCancel bool
	for _, ev := range sink.events {
		if ev.Header.Type == schema.EventOrderCancelled {
			expiredCancel = true
			assert.Equal(t, schema.Account("bob"), ev.Order.Account)
		}
	}
	assert.True(t, expiredCancel)
}

func TestCancelOrderRefundsOwner(t *testing.T) {
	eng, led, buys, sells, _ := newTestEngine(t)

	buyRes, err := eng.CreateOrder("alice", schema.SideBuy, 5, 20, 0, 0)
	require.NoError(t, err)
	sellRes, err := eng.CreateOrder("bob", schema.SideSell, 7, 30, 0, 0)
	require.NoError(t, err)

	require.NoError(t, eng.CancelOrder("alice", schema.SideBuy, buyRes.OrderID))
	assert.Equal(t, 0, buys.Size())
	assert.Equal(t, schema.Notional(10_000), led.DollarBalance("alice"))

	require.NoError(t, eng.CancelOrder("bob", schema.SideSell, sellRes.OrderID))
	assert.Equal(t, 0, sells.Size())
	assert.Equal(t, schema.Quantity(1_000), led.CoinBalance("bob"))
}

func TestCancelOrderIgnoresForeignAndMissingOrders(t *testing.T) {
	eng, led, buys, _, _ := newTestEngine(t)

	res, err := eng.CreateOrder("alice", schema.SideBuy, 5, 20, 0, 0)
	require.NoError(t, err)

	require.NoError(t, eng.CancelOrder("bob", schema.SideBuy, res.OrderID))
	require.NoError(t, eng.CancelOrder("alice", schema.SideBuy, 999))

	assert.Equal(t, 1, buys.Size())
	assert.Equal(t, schema.Notional(10_000-100), led.DollarBalance("alice"))
}

func TestCancelOrderByAdmin(t *testing.T) {
	eng, led, buys, _, _ := newTestEngine(t)

	res, err := eng.CreateOrder("alice", schema.SideBuy, 5, 20, 0, 0)
	require.NoError(t, err)

	err = eng.CancelOrderByAdmin("bob", schema.SideBuy, res.OrderID)
	assert.ErrorIs(t, err, access.ErrNotAuthorized)
	assert.Equal(t, 1, buys.Size())

	require.NoError(t, eng.CancelOrderByAdmin("admin", schema.SideBuy, res.OrderID))
	assert.Equal(t, 0, buys.Size())
	assert.Equal(t, schema.Notional(10_000), led.DollarBalance("alice"))

	// Cancelling an already removed order is a quiet no-op.
	require.NoError(t, eng.CancelOrderByAdmin("admin", schema.SideBuy, res.OrderID))
}
