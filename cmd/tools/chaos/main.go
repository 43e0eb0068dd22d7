// Chaos tool. Runs randomized order flow against a throwaway platform and
// fails loudly if value conservation breaks. Rerun with -seed to reproduce.
package main

import (
	"flag"
	"fmt"
	"log"

	"gxcoin/internal/chaos"
	"gxcoin/internal/schema"
)

func main() {
	seed := flag.Int64("seed", 0, "RNG seed (0=time-based)")
	steps := flag.Int("steps", 10_000, "Operations to run")
	traders := flag.Int("traders", 8, "Trader accounts")
	maxQty := flag.Int64("max-qty", 50, "Max order quantity")
	maxPrice := flag.Int64("max-price", 200, "Max order price in cents")
	cancelRate := flag.Float64("cancel-rate", 0.1, "Fraction of steps that cancel")
	budget := flag.Int("budget", 0, "Match budget (0=default)")
	flag.Parse()

	e, err := chaos.NewEngine(chaos.Config{
		Seed:        *seed,
		Traders:     *traders,
		MaxQuantity: *maxQty,
		MaxPrice:    *maxPrice,
		CancelRate:  *cancelRate,
		Budget:      *budget,
	})
	if err != nil {
		log.Fatalf("chaos init failed: %v", err)
	}

	if err := e.Run(*steps); err != nil {
		log.Fatalf("conservation broken: %v", err)
	}

	total, rejected := e.Steps()
	fmt.Printf("seed=%d steps=%d rejected=%d buys=%d sells=%d\n",
		e.Seed(), total, rejected,
		e.Platform().BookDepth(schema.SideBuy), e.Platform().BookDepth(schema.SideSell))
}
