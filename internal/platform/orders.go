package platform

import (
	"time"

	"gxcoin/internal/book"
	"gxcoin/internal/engine"
	"gxcoin/internal/schema"
)

// CreateOrder places an order on the given side and matches it. Trading
// must be open.
func (p *Platform) CreateOrder(
	caller schema.Account,
	side schema.Side,
	quantity schema.Quantity,
	price schema.Price,
	expirationTime int64,
	budget int,
) (engine.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.tradingOpen {
		p.metrics.IncOrderRejected()
		return engine.Result{}, ErrTradingClosed
	}
	start := time.Now()
	res, err := p.engine.CreateOrder(caller, side, quantity, price, expirationTime, budget)
	p.metrics.ObserveMatch(time.Since(start))
	if err != nil {
		p.metrics.IncOrderRejected()
		return res, err
	}
	p.metrics.IncOrderAccepted()
	return res, nil
}

// CreateBuyOrder places a bid with the default match budget.
func (p *Platform) CreateBuyOrder(
	caller schema.Account,
	quantity schema.Quantity,
	price schema.Price,
	expirationTime int64,
) (engine.Result, error) {
	return p.CreateOrder(caller, schema.SideBuy, quantity, price, expirationTime, 0)
}

// CreateSellOrder places an ask with the default match budget.
func (p *Platform) CreateSellOrder(
	caller schema.Account,
	quantity schema.Quantity,
	price schema.Price,
	expirationTime int64,
) (engine.Result, error) {
	return p.CreateOrder(caller, schema.SideSell, quantity, price, expirationTime, 0)
}

// CancelOrder cancels the caller's own resting order. Allowed even when
// trading is closed, so positions can be unwound.
func (p *Platform) CancelOrder(caller schema.Account, side schema.Side, orderID uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.CancelOrder(caller, side, orderID)
}

// CancelOrderByAdmin cancels any resting order; the refund goes to its
// owner.
func (p *Platform) CancelOrderByAdmin(caller schema.Account, side schema.Side, orderID uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.CancelOrderByAdmin(caller, side, orderID)
}

// Order returns a copy of a resting order, or the zero sentinel.
func (p *Platform) Order(side schema.Side, orderID uint64) book.Order {
	p.mu.Lock()
	defer p.mu.Unlock()
	if list := p.list(side); list != nil {
		return list.Get(orderID)
	}
	return book.Order{}
}

// BookDepth returns the number of resting orders on a side.
func (p *Platform) BookDepth(side schema.Side) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if list := p.list(side); list != nil {
		return list.Size()
	}
	return 0
}

// Orders returns the side's resting orders head to tail.
func (p *Platform) Orders(side schema.Side) []book.Order {
	p.mu.Lock()
	defer p.mu.Unlock()
	list := p.list(side)
	if list == nil {
		return nil
	}
	out := make([]book.Order, 0, list.Size())
	list.ForEach(func(o book.Order) bool {
		out = append(out, o)
		return true
	})
	return out
}

func (p *Platform) list(side schema.Side) *book.List {
	switch side {
	case schema.SideBuy:
		return p.buys
	case schema.SideSell:
		return p.sells
	default:
		return nil
	}
}
