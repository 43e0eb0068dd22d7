package schema

// BalanceReason explains why a trader balance moved.
//
//go:generate enumstr
type BalanceReason uint16

const (
	BalanceReasonUnknown BalanceReason = iota
	BalanceReasonSeed
	BalanceReasonFund
	BalanceReasonAdjustCash
	BalanceReasonAdjustCoins
	BalanceReasonWithdraw
	BalanceReasonWithdrawalCancelled
	BalanceReasonReserve
	BalanceReasonRefund
	BalanceReasonTrade
	BalanceReasonTransfer
)

// OrderEvent is the payload for order lifecycle events.
type OrderEvent struct {
	OrderID          uint64
	Side             Side
	Account          Account
	Quantity         Quantity
	OriginalQuantity Quantity
	PricePerCoin     Price
	ExpirationTime   int64
}

// TradeExecuted is the payload for EventTradeExecuted. Quantity coins moved
// from seller to buyer at PricePerCoin; BuyerRefund is the buyer's reservation
// surplus released by the fill.
type TradeExecuted struct {
	BuyOrderID   uint64
	SellOrderID  uint64
	Buyer        Account
	Seller       Account
	Quantity     Quantity
	PricePerCoin Price
	BuyerRefund  Notional
}

// BalanceChange is the payload for ledger adjustment events.
type BalanceChange struct {
	Account       Account
	Reason        BalanceReason
	CoinDelta     Quantity
	DollarDelta   Notional
	CoinBalance   Quantity
	DollarBalance Notional
	Notes         string
}

// TraderChange is the payload for registration events.
type TraderChange struct {
	Account    Account
	Registered bool
}

// TraderTransfer is the payload for EventTraderBalanceTransferred.
type TraderTransfer struct {
	From    Account
	To      Account
	Coins   Quantity
	Dollars Notional
}

// ControlChange is the payload for platform state events.
type ControlChange struct {
	TradingOpen bool
	CoinLimit   Quantity
	TotalCoins  Quantity
}

// Event carries one platform event with exactly one payload field set,
// selected by Header.Type.
type Event struct {
	Header   EventHeader
	Order    *OrderEvent
	Trade    *TradeExecuted
	Balance  *BalanceChange
	Trader   *TraderChange
	Transfer *TraderTransfer
	Control  *ControlChange
}
