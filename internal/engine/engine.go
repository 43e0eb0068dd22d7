// Package engine matches incoming orders against the opposite book side and
// settles fills against the ledger. Each call runs to completion under a
// caller-supplied work budget; when the budget runs out mid-match the
// unfilled remainder is cancelled and refunded, never left half-processed.
package engine

import (
	"errors"
	"time"

	"gxcoin/internal/access"
	"gxcoin/internal/book"
	"gxcoin/internal/ledger"
	"gxcoin/internal/schema"
)

var (
	ErrInvalidOrder  = errors.New("quantity and price must be positive")
	ErrUnknownSide   = errors.New("unknown order side")
	ErrOrderExpired  = errors.New("order is already expired")
	ErrNotRegistered = errors.New("caller is not a registered trader")
)

// DefaultMatchBudget bounds the resting orders consumed per call when the
// caller does not supply a budget.
const DefaultMatchBudget = 64

// ExpiryPolicy selects how expirationTime is honored.
type ExpiryPolicy uint16

const (
	// ExpiryAdvisory stores expiration times without acting on them.
	ExpiryAdvisory ExpiryPolicy = iota
	// ExpiryEnforced rejects expired incoming orders and cancels expired
	// resting orders (with refund) as the match walk reaches them.
	ExpiryEnforced
)

// Sink receives the events the engine emits. The header sequence and
// timestamp are stamped by the sink.
type Sink interface {
	Publish(schema.Event)
}

// Config tunes matching behavior.
type Config struct {
	MatchBudget  int
	ExpiryPolicy ExpiryPolicy
	Now          func() int64
}

func (c Config) withDefaults() Config {
	if c.MatchBudget <= 0 {
		c.MatchBudget = DefaultMatchBudget
	}
	if c.Now == nil {
		c.Now = func() int64 { return time.Now().Unix() }
	}
	return c
}

// Engine mutates the two book sides and the ledger. It acts on the books
// under its own identity, which must be on both owner allow-lists.
type Engine struct {
	self   schema.Account
	buys   *book.List
	sells  *book.List
	ledger *ledger.Ledger
	admins *access.Admins
	sink   Sink
	cfg    Config
}

// New wires the engine to its collaborators. self is the identity checked
// against the book owner lists.
func New(
	self schema.Account,
	buys, sells *book.List,
	led *ledger.Ledger,
	admins *access.Admins,
	sink Sink,
	cfg Config,
) *Engine {
	return &Engine{
		self:   self,
		buys:   buys,
		sells:  sells,
		ledger: led,
		admins: admins,
		sink:   sink,
		cfg:    cfg.withDefaults(),
	}
}

// Result reports the outcome of a create call.
type Result struct {
	OrderID            uint64
	Filled             schema.Quantity
	Resting            schema.Quantity
	RemainderCancelled bool
}

func (e *Engine) lists(side schema.Side) (own, opposite *book.List, err error) {
	switch side {
	case schema.SideBuy:
		return e.buys, e.sells, nil
	case schema.SideSell:
		return e.sells, e.buys, nil
	default:
		return nil, nil, ErrUnknownSide
	}
}

// crosses reports whether an incoming order at price can trade against a
// resting order at restingPrice.
func crosses(side schema.Side, price, restingPrice schema.Price) bool {
	if side == schema.SideBuy {
		return price >= restingPrice
	}
	return price <= restingPrice
}

func expired(o book.Order, now int64) bool {
	return o.ExpirationTime > 0 && o.ExpirationTime <= now
}

// CreateOrder reserves the caller's funds, matches against the opposite
// book, and rests any remainder in the caller's book at its price-priority
// position. budget caps the resting orders consumed; values <= 0 use the
// configured default. All preconditions are checked before any mutation, so
// a rejected order consumes no order id and moves no balance.
func (e *Engine) CreateOrder(
	caller schema.Account,
	side schema.Side,
	quantity schema.Quantity,
	price schema.Price,
	expirationTime int64,
	budget int,
) (Result, error) {
	own, opposite, err := e.lists(side)
	if err != nil {
		return Result{}, err
	}
	if quantity <= 0 || price <= 0 {
		return Result{}, ErrInvalidOrder
	}
	if !e.ledger.Contains(caller) {
		return Result{}, ErrNotRegistered
	}
	if !own.Owners().IsOwner(e.self) || !opposite.Owners().IsOwner(e.self) {
		return Result{}, book.ErrNotOwner
	}
	now := e.cfg.Now()
	if e.cfg.ExpiryPolicy == ExpiryEnforced && expirationTime > 0 && expirationTime <= now {
		return Result{}, ErrOrderExpired
	}
	if budget <= 0 {
		budget = e.cfg.MatchBudget
	}

	// Reserve the full cost up front. Released by fills, refunds, or
	// cancellation; never silently dropped.
	if side == schema.SideBuy {
		if err := e.ledger.DebitDollars(caller, schema.Cost(quantity, price)); err != nil {
			return Result{}, err
		}
	} else {
		if err := e.ledger.DebitCoins(caller, quantity); err != nil {
			return Result{}, err
		}
	}

	orderID, err := own.ReserveOrderID(e.self)
	if err != nil {
		return Result{}, err
	}

	res := Result{OrderID: orderID}
	remaining := quantity

	for remaining > 0 {
		headID := opposite.First()
		if headID == 0 {
			break
		}
		head := opposite.Get(headID)

		if e.cfg.ExpiryPolicy == ExpiryEnforced && expired(head, now) {
			if budget == 0 {
				e.cancelRemainder(caller, side, orderID, remaining, price)
				res.RemainderCancelled = true
				return res, nil
			}
			e.expireResting(side.Opposite(), head)
			budget--
			continue
		}

		if !crosses(side, price, head.PricePerCoin) {
			break
		}
		if budget == 0 {
			e.cancelRemainder(caller, side, orderID, remaining, price)
			res.RemainderCancelled = true
			return res, nil
		}

		tradeQty := remaining
		if head.Quantity < tradeQty {
			tradeQty = head.Quantity
		}
		e.settle(caller, side, orderID, price, head, tradeQty)

		if head.Quantity == tradeQty {
			_ = opposite.Remove(e.self, head.OrderID)
		} else {
			head.Quantity -= tradeQty
			_ = opposite.Update(e.self, head)
		}

		remaining -= tradeQty
		res.Filled += tradeQty
		budget--
	}

	if remaining > 0 {
		rest := book.Order{
			OrderID:          orderID,
			Account:          caller,
			Quantity:         remaining,
			OriginalQuantity: quantity,
			PricePerCoin:     price,
			ExpirationTime:   expirationTime,
		}
		if err := own.Add(e.self, e.insertAfter(own, side, price), rest); err != nil {
			// The position was computed against the same list, so this is
			// unreachable; refund rather than strand the reservation.
			e.cancelRemainder(caller, side, orderID, remaining, price)
			res.RemainderCancelled = true
			return res, nil
		}
		res.Resting = remaining
		e.publish(schema.Event{
			Header: schema.EventHeader{Type: schema.EventOrderCreated},
			Order: &schema.OrderEvent{
				OrderID:          orderID,
				Side:             side,
				Account:          caller,
				Quantity:         remaining,
				OriginalQuantity: quantity,
				PricePerCoin:     price,
				ExpirationTime:   expirationTime,
			},
		})
	}

	return res, nil
}

// insertAfter returns the order id the incoming order should be linked
// behind to keep the book in price priority: buys descending, sells
// ascending, ties resolved by arrival.
func (e *Engine) insertAfter(list *book.List, side schema.Side, price schema.Price) uint64 {
	var after uint64
	list.ForEach(func(o book.Order) bool {
		if side == schema.SideBuy && o.PricePerCoin < price {
			return false
		}
		if side == schema.SideSell && o.PricePerCoin > price {
			return false
		}
		after = o.OrderID
		return true
	})
	return after
}

// settle moves money for one fill. The execution price is always the sell
// side's price, so only the buyer can hold a reservation surplus, which is
// released here for the matched quantity.
func (e *Engine) settle(
	caller schema.Account,
	side schema.Side,
	orderID uint64,
	price schema.Price,
	head book.Order,
	tradeQty schema.Quantity,
) {
	var (
		execPrice   schema.Price
		buyer       schema.Account
		seller      schema.Account
		buyPrice    schema.Price
		buyOrderID  uint64
		sellOrderID uint64
	)
	if side == schema.SideBuy {
		execPrice = head.PricePerCoin
		buyer, seller = caller, head.Account
		buyPrice = price
		buyOrderID, sellOrderID = orderID, head.OrderID
	} else {
		execPrice = price
		buyer, seller = head.Account, caller
		buyPrice = head.PricePerCoin
		buyOrderID, sellOrderID = head.OrderID, orderID
	}

	_ = e.ledger.CreditDollars(seller, schema.Cost(tradeQty, execPrice))
	_ = e.ledger.CreditCoins(buyer, tradeQty)

	var refund schema.Notional
	if buyPrice > execPrice {
		refund = schema.Cost(tradeQty, buyPrice-execPrice)
		_ = e.ledger.CreditDollars(buyer, refund)
	}

	e.publish(schema.Event{
		Header: schema.EventHeader{Type: schema.EventTradeExecuted},
		Trade: &schema.TradeExecuted{
			BuyOrderID:   buyOrderID,
			SellOrderID:  sellOrderID,
			Buyer:        buyer,
			Seller:       seller,
			Quantity:     tradeQty,
			PricePerCoin: execPrice,
			BuyerRefund:  refund,
		},
	})
}

// cancelRemainder refunds the reservation behind the unfilled part of an
// incoming order that cannot be matched within budget.
func (e *Engine) cancelRemainder(
	caller schema.Account,
	side schema.Side,
	orderID uint64,
	remaining schema.Quantity,
	price schema.Price,
) {
	e.refund(caller, side, remaining, price)
	e.publish(schema.Event{
		Header: schema.EventHeader{Type: schema.EventRemainderCancelled},
		Order: &schema.OrderEvent{
			OrderID:      orderID,
			Side:         side,
			Account:      caller,
			Quantity:     remaining,
			PricePerCoin: price,
		},
	})
}

// expireResting removes an expired resting order and refunds its owner.
func (e *Engine) expireResting(side schema.Side, o book.Order) {
	list := e.buys
	if side == schema.SideSell {
		list = e.sells
	}
	_ = list.Remove(e.self, o.OrderID)
	e.refund(o.Account, side, o.Quantity, o.PricePerCoin)
	e.publish(schema.Event{
		Header: schema.EventHeader{Type: schema.EventOrderCancelled},
		Order: &schema.OrderEvent{
			OrderID:          o.OrderID,
			Side:             side,
			Account:          o.Account,
			Quantity:         o.Quantity,
			OriginalQuantity: o.OriginalQuantity,
			PricePerCoin:     o.PricePerCoin,
			ExpirationTime:   o.ExpirationTime,
		},
	})
}

func (e *Engine) refund(account schema.Account, side schema.Side, qty schema.Quantity, price schema.Price) {
	if side == schema.SideBuy {
		_ = e.ledger.CreditDollars(account, schema.Cost(qty, price))
	} else {
		_ = e.ledger.CreditCoins(account, qty)
	}
}

func (e *Engine) publish(ev schema.Event) {
	if e.sink != nil {
		e.sink.Publish(ev)
	}
}
