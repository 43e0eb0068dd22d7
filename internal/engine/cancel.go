package engine

import (
	"gxcoin/internal/access"
	"gxcoin/internal/book"
	"gxcoin/internal/schema"
)

// CancelOrder removes the caller's own resting order and refunds the
// reservation behind its remaining quantity. A missing order id, or one
// owned by another account, is a no-op so callers cannot probe the book.
func (e *Engine) CancelOrder(caller schema.Account, side schema.Side, orderID uint64) error {
	list, _, err := e.lists(side)
	if err != nil {
		return err
	}
	o := list.Get(orderID)
	if o.IsZero() || o.Account != caller {
		return nil
	}
	return e.cancelResting(list, side, o)
}

// CancelOrderByAdmin removes any resting order on behalf of its owner. The
// caller must be an admin; the refund still goes to the order's account.
func (e *Engine) CancelOrderByAdmin(caller schema.Account, side schema.Side, orderID uint64) error {
	if !e.admins.Contains(caller) {
		return access.ErrNotAuthorized
	}
	list, _, err := e.lists(side)
	if err != nil {
		return err
	}
	o := list.Get(orderID)
	if o.IsZero() {
		return nil
	}
	return e.cancelResting(list, side, o)
}

func (e *Engine) cancelResting(list *book.List, side schema.Side, o book.Order) error {
	if err := list.Remove(e.self, o.OrderID); err != nil {
		return err
	}
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
	return nil
}
