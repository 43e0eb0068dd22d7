// Journal dump tool. Replays a journal directory oldest-first and prints one
// line per event, optionally with the decoded payload.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"gxcoin/internal/recorder"
	"gxcoin/internal/schema"
)

func main() {
	dir := flag.String("dir", "testdata/journal", "Journal directory")
	noChecksum := flag.Bool("no-checksum", false, "Disable checksum validation")
	maxPayload := flag.Int("max-payload", 0, "Max payload size in bytes (0=default)")
	decode := flag.Bool("decode", false, "Print decoded payloads")
	afterSeq := flag.Uint64("after-seq", 0, "Skip events at or below this sequence")
	flag.Parse()

	opts := recorder.ReaderOptions{
		DisableChecksum: *noChecksum,
		MaxPayloadSize:  *maxPayload,
	}

	var index int
	err := recorder.Replay(*dir, opts, func(ev schema.Event) error {
		if ev.Header.Seq <= *afterSeq {
			return nil
		}
		index++
		ts := time.Unix(0, ev.Header.TsNano).UTC().Format(time.RFC3339Nano)
		fmt.Printf("%06d seq=%d type=%s ts=%s\n", index, ev.Header.Seq, ev.Header.Type, ts)
		if *decode {
			printPayload(ev)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("replay failed: %v", err)
	}
	fmt.Printf("%d events\n", index)
}

func printPayload(ev schema.Event) {
	switch {
	case ev.Order != nil:
		o := ev.Order
		fmt.Printf("  order id=%d side=%s account=%s qty=%d price=%d\n",
			o.OrderID, o.Side, o.Account, o.Quantity, o.PricePerCoin)
	case ev.Trade != nil:
		t := ev.Trade
		fmt.Printf("  trade buy=%d sell=%d buyer=%s seller=%s qty=%d price=%d refund=%d\n",
			t.BuyOrderID, t.SellOrderID, t.Buyer, t.Seller, t.Quantity, t.PricePerCoin, t.BuyerRefund)
	case ev.Balance != nil:
		b := ev.Balance
		fmt.Printf("  balance account=%s reason=%s coins=%+d dollars=%+d\n",
			b.Account, b.Reason, b.CoinDelta, b.DollarDelta)
	case ev.Trader != nil:
		fmt.Printf("  trader account=%s registered=%t\n", ev.Trader.Account, ev.Trader.Registered)
	case ev.Transfer != nil:
		tr := ev.Transfer
		fmt.Printf("  transfer from=%s to=%s coins=%d dollars=%d\n",
			tr.From, tr.To, tr.Coins, tr.Dollars)
	case ev.Control != nil:
		c := ev.Control
		fmt.Printf("  control tradingOpen=%t coinLimit=%d totalCoins=%d\n",
			c.TradingOpen, c.CoinLimit, c.TotalCoins)
	}
}
