// Package book implements the resting-order container for one side of the
// market: a doubly-linked list keyed by monotonically assigned order ids,
// held in an arena map so link mutation is O(1) without pointer aliasing.
package book

import (
	"errors"

	"gxcoin/internal/access"
	"gxcoin/internal/schema"
)

var (
	ErrNotOwner        = errors.New("caller is not a list owner")
	ErrZeroOrderID     = errors.New("order id must be positive")
	ErrDuplicateOrder  = errors.New("order id already present")
	ErrUnknownOrder    = errors.New("order not found")
	ErrUnknownPrevious = errors.New("previous order not found")
)

// Order is one resting order. The zero value is the null sentinel returned
// for absent ids.
type Order struct {
	OrderID          uint64
	Next             uint64
	Previous         uint64
	Account          schema.Account
	Quantity         schema.Quantity
	OriginalQuantity schema.Quantity
	PricePerCoin     schema.Price
	ExpirationTime   int64
}

// IsZero reports whether o is the null sentinel.
func (o Order) IsZero() bool {
	return o == Order{}
}

// List is one side of the order book. Mutations are restricted to accounts
// on the owner allow-list; every mutator validates its caller before
// touching any state, so a failed call leaves the list unchanged.
type List struct {
	owners *access.Owners

	orders      map[uint64]*Order
	first       uint64
	last        uint64
	size        int
	nextOrderID uint64
}

// NewList creates an empty list gated by owners. Order ids start at 1 and
// are never reused, even after removal.
func NewList(owners *access.Owners) *List {
	return &List{
		owners:      owners,
		orders:      make(map[uint64]*Order),
		nextOrderID: 1,
	}
}

// Owners returns the allow-list gating mutations.
func (l *List) Owners() *access.Owners {
	return l.owners
}

// Size returns the number of live orders.
func (l *List) Size() int {
	return l.size
}

// First returns the head order id, 0 if the list is empty.
func (l *List) First() uint64 {
	return l.first
}

// Last returns the tail order id, 0 if the list is empty.
func (l *List) Last() uint64 {
	return l.last
}

// NextOrderID returns the id the next created order will receive.
func (l *List) NextOrderID() uint64 {
	return l.nextOrderID
}

// ReserveOrderID hands out the next order id and advances the counter.
// The id is consumed whether or not an order ends up resting under it.
func (l *List) ReserveOrderID(caller schema.Account) (uint64, error) {
	if !l.owners.IsOwner(caller) {
		return 0, ErrNotOwner
	}
	id := l.nextOrderID
	l.nextOrderID++
	return id, nil
}

// RaiseNextOrderID moves the id counter forward to at least next. It never
// lowers the counter, so ids stay monotonic after an import.
func (l *List) RaiseNextOrderID(caller schema.Account, next uint64) error {
	if !l.owners.IsOwner(caller) {
		return ErrNotOwner
	}
	if next > l.nextOrderID {
		l.nextOrderID = next
	}
	return nil
}

// Get returns a copy of the order record, or the null sentinel when id is
// 0, unknown, or already removed.
func (l *List) Get(orderID uint64) Order {
	o, ok := l.orders[orderID]
	if !ok {
		return Order{}
	}
	return *o
}

// Add inserts order immediately after previousOrderID; 0 inserts at the
// head. An unknown previous id fails the whole operation. The id counter
// advances past the inserted id so ids stay monotonic across imports.
func (l *List) Add(caller schema.Account, previousOrderID uint64, order Order) error {
	if !l.owners.IsOwner(caller) {
		return ErrNotOwner
	}
	if order.OrderID == 0 {
		return ErrZeroOrderID
	}
	if _, ok := l.orders[order.OrderID]; ok {
		return ErrDuplicateOrder
	}
	if previousOrderID != 0 {
		if _, ok := l.orders[previousOrderID]; !ok {
			return ErrUnknownPrevious
		}
	}

	o := order
	l.link(&o, previousOrderID)
	l.orders[o.OrderID] = &o
	l.size++
	if o.OrderID >= l.nextOrderID {
		l.nextOrderID = o.OrderID + 1
	}
	return nil
}

// Update replaces the mutable fields of an existing order in place. Links
// and position are untouched.
func (l *List) Update(caller schema.Account, order Order) error {
	if !l.owners.IsOwner(caller) {
		return ErrNotOwner
	}
	o, ok := l.orders[order.OrderID]
	if !ok {
		return ErrUnknownOrder
	}
	o.Account = order.Account
	o.Quantity = order.Quantity
	o.OriginalQuantity = order.OriginalQuantity
	o.PricePerCoin = order.PricePerCoin
	o.ExpirationTime = order.ExpirationTime
	return nil
}

// Remove unlinks the order and deletes its record, so a later Get returns
// the null sentinel.
func (l *List) Remove(caller schema.Account, orderID uint64) error {
	if !l.owners.IsOwner(caller) {
		return ErrNotOwner
	}
	o, ok := l.orders[orderID]
	if !ok {
		return ErrUnknownOrder
	}
	l.unlink(o)
	delete(l.orders, orderID)
	l.size--
	return nil
}

// Move relocates an existing order to sit immediately after afterOrderID,
// or at the head when afterOrderID is 0. The order keeps its id and fields.
func (l *List) Move(caller schema.Account, orderID, afterOrderID uint64) error {
	if !l.owners.IsOwner(caller) {
		return ErrNotOwner
	}
	o, ok := l.orders[orderID]
	if !ok {
		return ErrUnknownOrder
	}
	if afterOrderID == orderID {
		return nil
	}
	if afterOrderID != 0 {
		if _, ok := l.orders[afterOrderID]; !ok {
			return ErrUnknownPrevious
		}
	}
	l.unlink(o)
	l.link(o, afterOrderID)
	return nil
}

// ForEach walks the list head to tail, stopping early when visit returns
// false.
func (l *List) ForEach(visit func(Order) bool) {
	for id := l.first; id != 0; {
		o := l.orders[id]
		if o == nil {
			return
		}
		next := o.Next
		if !visit(*o) {
			return
		}
		id = next
	}
}

func (l *List) link(o *Order, previousOrderID uint64) {
	if previousOrderID == 0 {
		o.Previous = 0
		o.Next = l.first
		if l.first != 0 {
			l.orders[l.first].Previous = o.OrderID
		}
		l.first = o.OrderID
		if l.last == 0 {
			l.last = o.OrderID
		}
		return
	}

	prev := l.orders[previousOrderID]
	o.Previous = prev.OrderID
	o.Next = prev.Next
	if prev.Next != 0 {
		l.orders[prev.Next].Previous = o.OrderID
	} else {
		l.last = o.OrderID
	}
	prev.Next = o.OrderID
}

func (l *List) unlink(o *Order) {
	if o.Previous != 0 {
		l.orders[o.Previous].Next = o.Next
	} else {
		l.first = o.Next
	}
	if o.Next != 0 {
		l.orders[o.Next].Previous = o.Previous
	} else {
		l.last = o.Previous
	}
	o.Next = 0
	o.Previous = 0
}
