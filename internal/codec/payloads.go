package codec

import "gxcoin/internal/schema"

func encodeOrderEvent(dst []byte, o *schema.OrderEvent) ([]byte, error) {
	dst = appendUint64(dst, o.OrderID)
	dst = appendUint16(dst, uint16(o.Side))
	dst, err := appendString(dst, string(o.Account))
	if err != nil {
		return nil, err
	}
	dst = appendInt64(dst, int64(o.Quantity))
	dst = appendInt64(dst, int64(o.OriginalQuantity))
	dst = appendInt64(dst, int64(o.PricePerCoin))
	dst = appendInt64(dst, o.ExpirationTime)
	return dst, nil
}

func decodeOrderEvent(src []byte) (schema.OrderEvent, bool) {
	var o schema.OrderEvent
	var (
		side    uint16
		account string
		v       int64
		ok      bool
	)
	if o.OrderID, src, ok = readUint64(src); !ok {
		return schema.OrderEvent{}, false
	}
	if side, src, ok = readUint16(src); !ok {
		return schema.OrderEvent{}, false
	}
	o.Side = schema.Side(side)
	if account, src, ok = readString(src); !ok {
		return schema.OrderEvent{}, false
	}
	o.Account = schema.Account(account)
	if v, src, ok = readInt64(src); !ok {
		return schema.OrderEvent{}, false
	}
	o.Quantity = schema.Quantity(v)
	if v, src, ok = readInt64(src); !ok {
		return schema.OrderEvent{}, false
	}
	o.OriginalQuantity = schema.Quantity(v)
	if v, src, ok = readInt64(src); !ok {
		return schema.OrderEvent{}, false
	}
	o.PricePerCoin = schema.Price(v)
	if o.ExpirationTime, _, ok = readInt64(src); !ok {
		return schema.OrderEvent{}, false
	}
	return o, true
}

func encodeTrade(dst []byte, t *schema.TradeExecuted) ([]byte, error) {
	dst = appendUint64(dst, t.BuyOrderID)
	dst = appendUint64(dst, t.SellOrderID)
	dst, err := appendString(dst, string(t.Buyer))
	if err != nil {
		return nil, err
	}
	dst, err = appendString(dst, string(t.Seller))
	if err != nil {
		return nil, err
	}
	dst = appendInt64(dst, int64(t.Quantity))
	dst = appendInt64(dst, int64(t.PricePerCoin))
	dst = appendInt64(dst, int64(t.BuyerRefund))
	return dst, nil
}

func decodeTrade(src []byte) (schema.TradeExecuted, bool) {
	var t schema.TradeExecuted
	var (
		s  string
		v  int64
		ok bool
	)
	if t.BuyOrderID, src, ok = readUint64(src); !ok {
		return schema.TradeExecuted{}, false
	}
	if t.SellOrderID, src, ok = readUint64(src); !ok {
		return schema.TradeExecuted{}, false
	}
	if s, src, ok = readString(src); !ok {
		return schema.TradeExecuted{}, false
	}
	t.Buyer = schema.Account(s)
	if s, src, ok = readString(src); !ok {
		return schema.TradeExecuted{}, false
	}
	t.Seller = schema.Account(s)
	if v, src, ok = readInt64(src); !ok {
		return schema.TradeExecuted{}, false
	}
	t.Quantity = schema.Quantity(v)
	if v, src, ok = readInt64(src); !ok {
		return schema.TradeExecuted{}, false
	}
	t.PricePerCoin = schema.Price(v)
	if v, _, ok = readInt64(src); !ok {
		return schema.TradeExecuted{}, false
	}
	t.BuyerRefund = schema.Notional(v)
	return t, true
}

func encodeBalance(dst []byte, b *schema.BalanceChange) ([]byte, error) {
	dst, err := appendString(dst, string(b.Account))
	if err != nil {
		return nil, err
	}
	dst = appendUint16(dst, uint16(b.Reason))
	dst = appendInt64(dst, int64(b.CoinDelta))
	dst = appendInt64(dst, int64(b.DollarDelta))
	dst = appendInt64(dst, int64(b.CoinBalance))
	dst = appendInt64(dst, int64(b.DollarBalance))
	return appendString(dst, b.Notes)
}

func decodeBalance(src []byte) (schema.BalanceChange, bool) {
	var b schema.BalanceChange
	var (
		s      string
		reason uint16
		v      int64
		ok     bool
	)
	if s, src, ok = readString(src); !ok {
		return schema.BalanceChange{}, false
	}
	b.Account = schema.Account(s)
	if reason, src, ok = readUint16(src); !ok {
		return schema.BalanceChange{}, false
	}
	b.Reason = schema.BalanceReason(reason)
	if v, src, ok = readInt64(src); !ok {
		return schema.BalanceChange{}, false
	}
	b.CoinDelta = schema.Quantity(v)
	if v, src, ok = readInt64(src); !ok {
		return schema.BalanceChange{}, false
	}
	b.DollarDelta = schema.Notional(v)
	if v, src, ok = readInt64(src); !ok {
		return schema.BalanceChange{}, false
	}
	b.CoinBalance = schema.Quantity(v)
	if v, src, ok = readInt64(src); !ok {
		return schema.BalanceChange{}, false
	}
	b.DollarBalance = schema.Notional(v)
	if b.Notes, _, ok = readString(src); !ok {
		return schema.BalanceChange{}, false
	}
	return b, true
}

func encodeTrader(dst []byte, t *schema.TraderChange) ([]byte, error) {
	dst, err := appendString(dst, string(t.Account))
	if err != nil {
		return nil, err
	}
	return appendBool(dst, t.Registered), nil
}

func decodeTrader(src []byte) (schema.TraderChange, bool) {
	var t schema.TraderChange
	var (
		s  string
		ok bool
	)
	if s, src, ok = readString(src); !ok {
		return schema.TraderChange{}, false
	}
	t.Account = schema.Account(s)
	if t.Registered, _, ok = readBool(src); !ok {
		return schema.TraderChange{}, false
	}
	return t, true
}

func encodeTransfer(dst []byte, t *schema.TraderTransfer) ([]byte, error) {
	dst, err := appendString(dst, string(t.From))
	if err != nil {
		return nil, err
	}
	dst, err = appendString(dst, string(t.To))
	if err != nil {
		return nil, err
	}
	dst = appendInt64(dst, int64(t.Coins))
	dst = appendInt64(dst, int64(t.Dollars))
	return dst, nil
}

func decodeTransfer(src []byte) (schema.TraderTransfer, bool) {
	var t schema.TraderTransfer
	var (
		s  string
		v  int64
		ok bool
	)
	if s, src, ok = readString(src); !ok {
		return schema.TraderTransfer{}, false
	}
	t.From = schema.Account(s)
	if s, src, ok = readString(src); !ok {
		return schema.TraderTransfer{}, false
	}
	t.To = schema.Account(s)
	if v, src, ok = readInt64(src); !ok {
		return schema.TraderTransfer{}, false
	}
	t.Coins = schema.Quantity(v)
	if v, _, ok = readInt64(src); !ok {
		return schema.TraderTransfer{}, false
	}
	t.Dollars = schema.Notional(v)
	return t, true
}

func encodeControl(dst []byte, c *schema.ControlChange) ([]byte, error) {
	dst = appendBool(dst, c.TradingOpen)
	dst = appendInt64(dst, int64(c.CoinLimit))
	dst = appendInt64(dst, int64(c.TotalCoins))
	return dst, nil
}

func decodeControl(src []byte) (schema.ControlChange, bool) {
	var c schema.ControlChange
	var (
		v  int64
		ok bool
	)
	if c.TradingOpen, src, ok = readBool(src); !ok {
		return schema.ControlChange{}, false
	}
	if v, src, ok = readInt64(src); !ok {
		return schema.ControlChange{}, false
	}
	c.CoinLimit = schema.Quantity(v)
	if v, _, ok = readInt64(src); !ok {
		return schema.ControlChange{}, false
	}
	c.TotalCoins = schema.Quantity(v)
	return c, true
}
