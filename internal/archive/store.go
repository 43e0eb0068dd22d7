// Package archive persists executed trades and balance movements to
// PostgreSQL for off-platform reporting. It consumes the event bus and must
// never push back on the matching path, so failures are logged and counted
// rather than propagated.
package archive

import (
	"github.com/yanun0323/logs"
	"gorm.io/gorm"

	"gxcoin/internal/schema"
	"gxcoin/pkg/conn"
)

// Trade is one executed fill.
type Trade struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Seq          uint64 `gorm:"uniqueIndex"`
	TsNano       int64
	BuyOrderID   uint64
	SellOrderID  uint64
	Buyer        string `gorm:"index"`
	Seller       string `gorm:"index"`
	Quantity     int64
	PricePerCoin int64
	BuyerRefund  int64
}

// TableName sets the trades table.
func (Trade) TableName() string { return "gx_trades" }

// BalanceMovement is one administrative or trading balance change.
type BalanceMovement struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	Seq           uint64 `gorm:"uniqueIndex"`
	TsNano        int64
	Account       string `gorm:"index"`
	Reason        uint16
	CoinDelta     int64
	DollarDelta   int64
	CoinBalance   int64
	DollarBalance int64
	Notes         string
}

// TableName sets the balance movements table.
func (BalanceMovement) TableName() string { return "gx_balance_movements" }

// Store writes archive rows through a shared connection pool.
type Store struct {
	db *gorm.DB
}

// NewStore migrates the archive tables and returns a store.
func NewStore(client *conn.Client) (*Store, error) {
	db := client.DB()
	if err := db.AutoMigrate(&Trade{}, &BalanceMovement{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Archive stores one event. Events without an archive representation are
// skipped.
func (s *Store) Archive(ev schema.Event) error {
	switch {
	case ev.Trade != nil:
		return s.db.Create(&Trade{
			Seq:          ev.Header.Seq,
			TsNano:       ev.Header.TsNano,
			BuyOrderID:   ev.Trade.BuyOrderID,
			SellOrderID:  ev.Trade.SellOrderID,
			Buyer:        string(ev.Trade.Buyer),
			Seller:       string(ev.Trade.Seller),
			Quantity:     int64(ev.Trade.Quantity),
			PricePerCoin: int64(ev.Trade.PricePerCoin),
			BuyerRefund:  int64(ev.Trade.BuyerRefund),
		}).Error
	case ev.Balance != nil:
		return s.db.Create(&BalanceMovement{
			Seq:           ev.Header.Seq,
			TsNano:        ev.Header.TsNano,
			Account:       string(ev.Balance.Account),
			Reason:        uint16(ev.Balance.Reason),
			CoinDelta:     int64(ev.Balance.CoinDelta),
			DollarDelta:   int64(ev.Balance.DollarDelta),
			CoinBalance:   int64(ev.Balance.CoinBalance),
			DollarBalance: int64(ev.Balance.DollarBalance),
			Notes:         ev.Balance.Notes,
		}).Error
	default:
		return nil
	}
}

// Consume is the bus handler: archive failures are logged, never returned.
func (s *Store) Consume(ev schema.Event) {
	if err := s.Archive(ev); err != nil {
		logs.Errorf("archive event seq=%d type=%s: %+v", ev.Header.Seq, ev.Header.Type, err)
	}
}

// TradesForAccount returns the account's most recent fills, newest first.
func (s *Store) TradesForAccount(account schema.Account, limit int) ([]Trade, error) {
	if limit <= 0 {
		limit = 100
	}
	var trades []Trade
	err := s.db.
		Where("buyer = ? OR seller = ?", string(account), string(account)).
		Order("seq DESC").
		Limit(limit).
		Find(&trades).Error
	return trades, err
}
