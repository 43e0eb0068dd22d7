package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gxcoin/internal/access"
	"gxcoin/internal/schema"
)

const owner = schema.Account("owner")

func newTestList(t *testing.T) *List {
	t.Helper()
	deployment := access.NewDeploymentAdmins("root")
	owners := access.NewOwners(deployment)
	require.NoError(t, owners.AddOwner("root", owner))
	return NewList(owners)
}

func addOrder(t *testing.T, l *List, previous uint64, price schema.Price) uint64 {
	t.Helper()
	id, err := l.ReserveOrderID(owner)
	require.NoError(t, err)
	require.NoError(t, l.Add(owner, previous, Order{
		OrderID:          id,
		Account:          "alice",
		Quantity:         1,
		OriginalQuantity: 1,
		PricePerCoin:     price,
	}))
	return id
}

func ids(l *List) []uint64 {
	var out []uint64
	l.ForEach(func(o Order) bool {
		out = append(out, o.OrderID)
		return true
	})
	return out
}

// checkLinks walks both directions and cross-checks size, first and last.
func checkLinks(t *testing.T, l *List) {
	t.Helper()
	forward := ids(l)
	require.Len(t, forward, l.Size())

	if l.Size() == 0 {
		assert.Zero(t, l.First())
		assert.Zero(t, l.Last())
		return
	}
	assert.Equal(t, forward[0], l.First())
	assert.Equal(t, forward[len(forward)-1], l.Last())

	var prev uint64
	for _, id := range forward {
		o := l.Get(id)
		assert.Equal(t, prev, o.Previous)
		prev = id
	}
	assert.Zero(t, l.Get(l.Last()).Next)
}

func TestAddIntoEmptyList(t *testing.T) {
	l := newTestList(t)
	id := addOrder(t, l, 0, 10)

	assert.Equal(t, 1, l.Size())
	assert.Equal(t, id, l.First())
	assert.Equal(t, id, l.Last())
	checkLinks(t, l)
}

func TestAddAtFrontEndAndMiddle(t *testing.T) {
	l := newTestList(t)
	first := addOrder(t, l, 0, 10)
	back := addOrder(t, l, first, 20)
	front := addOrder(t, l, 0, 5)
	middle := addOrder(t, l, first, 15)

	assert.Equal(t, []uint64{front, first, middle, back}, ids(l))
	checkLinks(t, l)
}

func TestAddRejectsUnknownPrevious(t *testing.T) {
	l := newTestList(t)
	id, err := l.ReserveOrderID(owner)
	require.NoError(t, err)

	err = l.Add(owner, 999, Order{OrderID: id, Account: "alice", Quantity: 1, PricePerCoin: 10})
	assert.ErrorIs(t, err, ErrUnknownPrevious)
	assert.Equal(t, 0, l.Size())
}

func TestAddRejectsDuplicateAndZeroID(t *testing.T) {
	l := newTestList(t)
	id := addOrder(t, l, 0, 10)

	err := l.Add(owner, 0, Order{OrderID: id, Account: "bob", Quantity: 1, PricePerCoin: 10})
	assert.ErrorIs(t, err, ErrDuplicateOrder)

	err = l.Add(owner, 0, Order{Account: "bob", Quantity: 1, PricePerCoin: 10})
	assert.ErrorIs(t, err, ErrZeroOrderID)
}

func TestUnauthorizedMutationsLeaveStateUntouched(t *testing.T) {
	l := newTestList(t)
	id := addOrder(t, l, 0, 10)
	nextID := l.NextOrderID()

	_, err := l.ReserveOrderID("intruder")
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, nextID, l.NextOrderID())

	err = l.Add("intruder", 0, Order{OrderID: nextID, Account: "bob", Quantity: 1, PricePerCoin: 9})
	assert.ErrorIs(t, err, ErrNotOwner)

	err = l.Remove("intruder", id)
	assert.ErrorIs(t, err, ErrNotOwner)

	err = l.Move("intruder", id, 0)
	assert.ErrorIs(t, err, ErrNotOwner)

	assert.Equal(t, 1, l.Size())
	assert.Equal(t, id, l.First())
}

func TestGetReturnsZeroSentinel(t *testing.T) {
	l := newTestList(t)
	assert.True(t, l.Get(0).IsZero())
	assert.True(t, l.Get(42).IsZero())

	id := addOrder(t, l, 0, 10)
	assert.False(t, l.Get(id).IsZero())

	require.NoError(t, l.Remove(owner, id))
	assert.True(t, l.Get(id).IsZero())
}

func TestRemoveRelinksNeighbours(t *testing.T) {
	l := newTestList(t)
	a := addOrder(t, l, 0, 10)
	b := addOrder(t, l, a, 20)
	c := addOrder(t, l, b, 30)

	require.NoError(t, l.Remove(owner, b))
	assert.Equal(t, []uint64{a, c}, ids(l))
	checkLinks(t, l)

	require.NoError(t, l.Remove(owner, a))
	assert.Equal(t, []uint64{c}, ids(l))
	checkLinks(t, l)

	require.NoError(t, l.Remove(owner, c))
	assert.Equal(t, 0, l.Size())
	checkLinks(t, l)

	assert.ErrorIs(t, l.Remove(owner, c), ErrUnknownOrder)
}

func TestMoveRepositionsWithoutChangingFields(t *testing.T) {
	l := newTestList(t)
	a := addOrder(t, l, 0, 10)
	b := addOrder(t, l, a, 20)
	c := addOrder(t, l, b, 30)

	require.NoError(t, l.Move(owner, c, 0))
	assert.Equal(t, []uint64{c, a, b}, ids(l))
	checkLinks(t, l)

	require.NoError(t, l.Move(owner, c, b))
	assert.Equal(t, []uint64{a, b, c}, ids(l))
	checkLinks(t, l)

	moved := l.Get(c)
	assert.Equal(t, schema.Price(30), moved.PricePerCoin)
	assert.Equal(t, schema.Account("alice"), moved.Account)

	assert.ErrorIs(t, l.Move(owner, 999, 0), ErrUnknownOrder)
	assert.ErrorIs(t, l.Move(owner, a, 999), ErrUnknownPrevious)
}

func TestOrderIDsAreNeverReused(t *testing.T) {
	l := newTestList(t)
	a := addOrder(t, l, 0, 10)
	require.NoError(t, l.Remove(owner, a))

	b := addOrder(t, l, 0, 10)
	assert.Greater(t, b, a)

	// Importing a record with a high id pushes the counter past it.
	require.NoError(t, l.Add(owner, 0, Order{OrderID: 50, Account: "bob", Quantity: 1, PricePerCoin: 8}))
	assert.Equal(t, uint64(51), l.NextOrderID())

	require.NoError(t, l.RaiseNextOrderID(owner, 40))
	assert.Equal(t, uint64(51), l.NextOrderID())
	require.NoError(t, l.RaiseNextOrderID(owner, 60))
	assert.Equal(t, uint64(60), l.NextOrderID())
}

func TestUpdateKeepsPosition(t *testing.T) {
	l := newTestList(t)
	a := addOrder(t, l, 0, 10)
	b := addOrder(t, l, a, 20)

	updated := l.Get(a)
	updated.Quantity = 7
	require.NoError(t, l.Update(owner, updated))

	assert.Equal(t, []uint64{a, b}, ids(l))
	assert.Equal(t, schema.Quantity(7), l.Get(a).Quantity)

	assert.ErrorIs(t, l.Update(owner, Order{OrderID: 999}), ErrUnknownOrder)
}
