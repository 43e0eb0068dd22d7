// Package migrate moves platform state between deployments through JSON
// files: export from a running platform, import into a fresh one, verify
// the two match. The document carries a human-readable summary so operators
// can sanity-check a file before importing it.
package migrate

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"gxcoin/internal/platform"
	"gxcoin/internal/schema"
)

// FormatVersion identifies the document layout.
const FormatVersion = 1

// Document is the migration file layout.
type Document struct {
	FormatVersion int             `json:"formatVersion"`
	ExportedAt    string          `json:"exportedAt"`
	Summary       Summary         `json:"summary"`
	State         platform.Export `json:"state"`
}

// Summary is the operator-facing digest of the exported state. Dollar
// amounts are rendered as decimal strings; internally everything is cents.
type Summary struct {
	Traders           int    `json:"traders"`
	RegisteredTraders int    `json:"registeredTraders"`
	BuyOrders         int    `json:"buyOrders"`
	SellOrders        int    `json:"sellOrders"`
	TotalCoins        int64  `json:"totalCoins"`
	TotalDollars      string `json:"totalDollars"`
	RestingBuyValue   string `json:"restingBuyValue"`
	RestingSellCoins  int64  `json:"restingSellCoins"`
}

func dollars(cents schema.Notional) string {
	return decimal.New(int64(cents), -2).StringFixed(2)
}

// BuildDocument digests a platform export into a migration document.
func BuildDocument(export platform.Export) Document {
	return Document{
		FormatVersion: FormatVersion,
		ExportedAt:    time.Now().UTC().Format(time.RFC3339),
		Summary:       summarize(export),
		State:         export,
	}
}

func summarize(export platform.Export) Summary {
	s := Summary{
		Traders:    len(export.Traders),
		BuyOrders:  len(export.Buys.Orders),
		SellOrders: len(export.Sells.Orders),
		TotalCoins: int64(export.TotalCoins),
	}
	var totalDollars schema.Notional
	for _, t := range export.Traders {
		if t.Registered {
			s.RegisteredTraders++
		}
		totalDollars += t.Dollars
	}
	s.TotalDollars = dollars(totalDollars)

	var restingBuyValue schema.Notional
	for _, o := range export.Buys.Orders {
		restingBuyValue += schema.Cost(o.Quantity, o.PricePerCoin)
	}
	s.RestingBuyValue = dollars(restingBuyValue)

	for _, o := range export.Sells.Orders {
		s.RestingSellCoins += int64(o.Quantity)
	}
	return s
}

// Export writes the platform state to path.
func Export(p *platform.Platform, path string) error {
	doc := BuildDocument(p.Export())
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal migration document")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "write migration document")
}

// Load reads and validates a migration document.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, errors.Wrap(err, "read migration document")
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, errors.Wrap(err, "parse migration document")
	}
	if doc.FormatVersion != FormatVersion {
		return Document{}, fmt.Errorf("unsupported migration format version %d", doc.FormatVersion)
	}
	if got, want := doc.Summary, summarize(doc.State); got != want {
		return Document{}, fmt.Errorf("migration summary does not match state: summary=%+v state=%+v", got, want)
	}
	return doc, nil
}

// Import loads a document into the target platform. caller must be a
// deployment admin of the target.
func Import(caller schema.Account, p *platform.Platform, path string) error {
	doc, err := Load(path)
	if err != nil {
		return err
	}
	return errors.Wrap(p.Restore(caller, doc.State), "restore migrated state")
}

// Verify compares the platform's live state with a migration document and
// reports the first difference.
func Verify(p *platform.Platform, path string) error {
	doc, err := Load(path)
	if err != nil {
		return err
	}
	return diff(doc.State, p.Export())
}

func diff(want, got platform.Export) error {
	if want.TradingOpen != got.TradingOpen {
		return fmt.Errorf("tradingOpen mismatch: file=%v live=%v", want.TradingOpen, got.TradingOpen)
	}
	if want.CoinLimit != got.CoinLimit {
		return fmt.Errorf("coinLimit mismatch: file=%d live=%d", want.CoinLimit, got.CoinLimit)
	}
	if want.TotalCoins != got.TotalCoins {
		return fmt.Errorf("totalCoins mismatch: file=%d live=%d", want.TotalCoins, got.TotalCoins)
	}
	if err := diffTraders(want.Traders, got.Traders); err != nil {
		return err
	}
	if err := diffBook("buy", want.Buys, got.Buys); err != nil {
		return err
	}
	return diffBook("sell", want.Sells, got.Sells)
}

func diffTraders(want, got []platform.TraderRecord) error {
	if len(want) != len(got) {
		return fmt.Errorf("trader count mismatch: file=%d live=%d", len(want), len(got))
	}
	live := make(map[schema.Account]platform.TraderRecord, len(got))
	for _, t := range got {
		live[t.Account] = t
	}
	for _, t := range want {
		lt, ok := live[t.Account]
		if !ok {
			return fmt.Errorf("trader %q missing from live state", t.Account)
		}
		if lt != t {
			return fmt.Errorf("trader %q mismatch: file=%+v live=%+v", t.Account, t, lt)
		}
	}
	return nil
}

func diffBook(side string, want, got platform.BookExport) error {
	if want.NextOrderID != got.NextOrderID {
		return fmt.Errorf("%s book nextOrderId mismatch: file=%d live=%d", side, want.NextOrderID, got.NextOrderID)
	}
	if len(want.Orders) != len(got.Orders) {
		return fmt.Errorf("%s book size mismatch: file=%d live=%d", side, len(want.Orders), len(got.Orders))
	}
	for i := range want.Orders {
		if want.Orders[i] != got.Orders[i] {
			return fmt.Errorf("%s book order %d mismatch: file=%+v live=%+v", side, i, want.Orders[i], got.Orders[i])
		}
	}
	return nil
}
