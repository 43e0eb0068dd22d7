package platform

import (
	"gxcoin/internal/access"
	"gxcoin/internal/book"
	"gxcoin/internal/ledger"
	"gxcoin/internal/schema"
)

// TraderRecord is one trader in an export document.
type TraderRecord struct {
	Account    schema.Account  `json:"account"`
	Registered bool            `json:"registered"`
	Coins      schema.Quantity `json:"coins"`
	Dollars    schema.Notional `json:"dollars"`
}

// OrderRecord is one resting order in an export document. List links are
// rebuilt on import from the slice order, head first.
type OrderRecord struct {
	OrderID          uint64          `json:"orderId"`
	Account          schema.Account  `json:"account"`
	Quantity         schema.Quantity `json:"quantity"`
	OriginalQuantity schema.Quantity `json:"originalQuantity"`
	PricePerCoin     schema.Price    `json:"pricePerCoin"`
	ExpirationTime   int64           `json:"expirationTime,omitempty"`
}

// BookExport is one book side in an export document.
type BookExport struct {
	NextOrderID uint64        `json:"nextOrderId"`
	Orders      []OrderRecord `json:"orders"`
}

// Export is a complete, consistent copy of the platform state, taken under
// the operation mutex. It backs snapshots and migration files.
type Export struct {
	TradingOpen bool            `json:"tradingOpen"`
	CoinLimit   schema.Quantity `json:"coinLimit"`
	TotalCoins  schema.Quantity `json:"totalCoins"`
	Seq         uint64          `json:"seq"`
	Traders     []TraderRecord  `json:"traders"`
	Buys        BookExport      `json:"buys"`
	Sells       BookExport      `json:"sells"`
}

// Export captures the full platform state in one locked pass.
func (p *Platform) Export() Export {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := Export{
		TradingOpen: p.tradingOpen,
		CoinLimit:   p.coinLimit,
		TotalCoins:  p.totalCoins,
		Seq:         p.seq,
		Buys:        exportBook(p.buys),
		Sells:       exportBook(p.sells),
	}
	p.ledger.ForEach(func(t ledger.Trader) bool {
		out.Traders = append(out.Traders, TraderRecord{
			Account:    t.Account,
			Registered: t.Registered,
			Coins:      t.Coins,
			Dollars:    t.Dollars,
		})
		return true
	})
	return out
}

func exportBook(list *book.List) BookExport {
	out := BookExport{
		NextOrderID: list.NextOrderID(),
		Orders:      make([]OrderRecord, 0, list.Size()),
	}
	list.ForEach(func(o book.Order) bool {
		out.Orders = append(out.Orders, OrderRecord{
			OrderID:          o.OrderID,
			Account:          o.Account,
			Quantity:         o.Quantity,
			OriginalQuantity: o.OriginalQuantity,
			PricePerCoin:     o.PricePerCoin,
			ExpirationTime:   o.ExpirationTime,
		})
		return true
	})
	return out
}

// Restore loads an export into an empty platform. Only a deployment admin
// may call it; it is meant for boot recovery and migration imports, not for
// live state surgery.
func (p *Platform) Restore(caller schema.Account, in Export) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.deployment.Contains(caller) {
		return access.ErrNotAuthorized
	}
	if in.CoinLimit <= 0 || in.CoinLimit > MaxCoinLimit {
		return ErrCoinLimitTooHigh
	}
	if in.TotalCoins < 0 || in.TotalCoins > in.CoinLimit {
		return ErrCoinLimitExceeded
	}

	for _, t := range in.Traders {
		if err := p.ledger.Restore(ledger.Trader{
			Account:    t.Account,
			Registered: t.Registered,
			Coins:      t.Coins,
			Dollars:    t.Dollars,
		}); err != nil {
			return err
		}
	}
	if err := restoreBook(p.buys, in.Buys); err != nil {
		return err
	}
	if err := restoreBook(p.sells, in.Sells); err != nil {
		return err
	}

	p.tradingOpen = in.TradingOpen
	p.coinLimit = in.CoinLimit
	p.totalCoins = in.TotalCoins
	if in.Seq > p.seq {
		p.seq = in.Seq
	}
	return nil
}

func restoreBook(list *book.List, in BookExport) error {
	var previous uint64
	for _, rec := range in.Orders {
		err := list.Add(engineIdentity, previous, book.Order{
			OrderID:          rec.OrderID,
			Account:          rec.Account,
			Quantity:         rec.Quantity,
			OriginalQuantity: rec.OriginalQuantity,
			PricePerCoin:     rec.PricePerCoin,
			ExpirationTime:   rec.ExpirationTime,
		})
		if err != nil {
			return err
		}
		previous = rec.OrderID
	}
	return list.RaiseNextOrderID(engineIdentity, in.NextOrderID)
}
