package schema

// SchemaVersion is the current event schema version.
const SchemaVersion uint16 = 1

// Account is an address-equivalent trader identity. The empty string is the
// null account.
type Account string

// AccountNil is the null account sentinel.
const AccountNil Account = ""

// Price is an integer price per coin, in cents.
type Price int64

// Quantity is an integer number of coins.
type Quantity int64

// Notional is an integer dollar amount, in cents.
type Notional int64

// Cost returns the dollar cost of qty coins at price p.
func Cost(qty Quantity, p Price) Notional {
	return Notional(int64(qty) * int64(p))
}

// Side describes which book an order rests in.
//
//go:generate enumstr
type Side uint16

const (
	SideUnknown Side = iota
	SideBuy
	SideSell
)

// Opposite returns the matching side of the book.
func (s Side) Opposite() Side {
	switch s {
	case SideBuy:
		return SideSell
	case SideSell:
		return SideBuy
	default:
		return SideUnknown
	}
}

// EventType defines the category of an event published by the platform.
//
//go:generate enumstr
type EventType uint16

const (
	EventUnknown EventType = iota
	EventOrderCreated
	EventOrderMatched
	EventOrderCancelled
	EventRemainderCancelled
	EventTradeExecuted
	EventCoinsSeeded
	EventCoinsAdjusted
	EventDollarsFunded
	EventCashAdjusted
	EventDollarsWithdrawn
	EventDollarsWithdrawalCancelled
	EventTraderRegistered
	EventTraderUnregistered
	EventTraderBalanceTransferred
	EventTradingStatusChanged
	EventCoinLimitChanged
)

// EventHeader is the common metadata attached to every event.
type EventHeader struct {
	Type    EventType
	Version uint16
	Seq     uint64
	TsNano  int64
}

// NewHeader builds a header with the current schema version.
func NewHeader(eventType EventType, seq uint64, tsNano int64) EventHeader {
	return EventHeader{
		Type:    eventType,
		Version: SchemaVersion,
		Seq:     seq,
		TsNano:  tsNano,
	}
}
