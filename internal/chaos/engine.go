// Package chaos drives randomized order flow against a platform and checks
// that value is conserved: coins never appear or vanish, and every dollar is
// either in a balance or reserved behind a resting bid.
package chaos

import (
	"fmt"
	"math/rand"
	"time"

	"gxcoin/internal/platform"
	"gxcoin/internal/schema"
)

// Config controls the generated flow.
type Config struct {
	Seed        int64
	Traders     int
	MaxQuantity int64
	MaxPrice    int64
	CancelRate  float64
	Budget      int
}

// Engine owns a seeded platform and mutates it with random operations.
type Engine struct {
	cfg      Config
	rng      *rand.Rand
	platform *platform.Platform
	admin    schema.Account
	accounts []schema.Account

	seededCoins   schema.Quantity
	fundedDollars schema.Notional
	steps         int
	rejected      int
}

// Validate ensures the config is within supported ranges.
func (c Config) Validate() error {
	if c.Traders < 2 {
		return fmt.Errorf("traders must be >= 2")
	}
	if c.MaxQuantity <= 0 {
		return fmt.Errorf("maxQuantity must be >= 1")
	}
	if c.MaxPrice <= 0 {
		return fmt.Errorf("maxPrice must be >= 1")
	}
	if c.CancelRate < 0 || c.CancelRate > 1 {
		return fmt.Errorf("cancelRate must be between 0 and 1")
	}
	if c.Budget < 0 {
		return fmt.Errorf("budget must be >= 0")
	}
	return nil
}

// NewEngine builds a fresh platform and registers and funds cfg.Traders
// random accounts.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UTC().UnixNano()
	}

	const admin schema.Account = "chaos-admin"
	e := &Engine{
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		platform: platform.New(platform.Config{Creator: admin, TradingOpen: true}),
		admin:    admin,
	}

	coinsEach := schema.Quantity(cfg.MaxQuantity * 10)
	dollarsEach := schema.Notional(cfg.MaxQuantity * cfg.MaxPrice * 10)
	for i := 0; i < cfg.Traders; i++ {
		account := schema.Account(fmt.Sprintf("trader-%03d", i))
		if err := e.platform.RegisterTraderAccount(admin, account); err != nil {
			return nil, err
		}
		if err := e.platform.SeedCoins(admin, account, coinsEach); err != nil {
			return nil, err
		}
		if err := e.platform.Fund(admin, account, dollarsEach); err != nil {
			return nil, err
		}
		e.accounts = append(e.accounts, account)
		e.seededCoins += coinsEach
		e.fundedDollars += dollarsEach
	}
	return e, nil
}

// Seed returns the seed in use, for reproducing a failing run.
func (e *Engine) Seed() int64 { return e.cfg.Seed }

// Platform exposes the platform under test.
func (e *Engine) Platform() *platform.Platform { return e.platform }

// Steps returns how many operations ran, and how many were rejected.
func (e *Engine) Steps() (total, rejected int) { return e.steps, e.rejected }

// Step runs one random operation. Rejections are counted, not fatal; the
// flow deliberately includes orders the trader cannot afford.
func (e *Engine) Step() {
	e.steps++
	account := e.accounts[e.rng.Intn(len(e.accounts))]

	if e.rng.Float64() < e.cfg.CancelRate {
		e.cancelRandom(account)
		return
	}

	qty := schema.Quantity(1 + e.rng.Int63n(e.cfg.MaxQuantity))
	price := schema.Price(1 + e.rng.Int63n(e.cfg.MaxPrice))
	side := schema.SideBuy
	if e.rng.Intn(2) == 0 {
		side = schema.SideSell
	}
	if _, err := e.platform.CreateOrder(account, side, qty, price, 0, e.cfg.Budget); err != nil {
		e.rejected++
	}
}

// Run executes n steps and checks conservation after every step.
func (e *Engine) Run(n int) error {
	for i := 0; i < n; i++ {
		e.Step()
		if err := e.Check(); err != nil {
			return fmt.Errorf("step %d (seed %d): %w", e.steps, e.cfg.Seed, err)
		}
	}
	return nil
}

// cancelRandom picks an id at or below the current counter so that both
// live, filled and foreign ids are attempted.
func (e *Engine) cancelRandom(account schema.Account) {
	side := schema.SideBuy
	if e.rng.Intn(2) == 0 {
		side = schema.SideSell
	}
	var id uint64
	if orders := e.platform.Orders(side); len(orders) > 0 {
		id = orders[e.rng.Intn(len(orders))].OrderID + uint64(e.rng.Intn(3))
	}
	if err := e.platform.CancelOrder(account, side, id); err != nil {
		e.rejected++
	}
}

// Check verifies that coins and dollars are conserved across balances and
// book reservations.
func (e *Engine) Check() error {
	export := e.platform.Export()

	var coins schema.Quantity
	var dollars schema.Notional
	for _, t := range export.Traders {
		if t.Coins < 0 || t.Dollars < 0 {
			return fmt.Errorf("trader %s has negative balance: %d coins, %d dollars", t.Account, t.Coins, t.Dollars)
		}
		coins += t.Coins
		dollars += t.Dollars
	}
	for _, o := range export.Sells.Orders {
		coins += o.Quantity
	}
	for _, o := range export.Buys.Orders {
		dollars += schema.Cost(o.Quantity, o.PricePerCoin)
	}

	if coins != e.seededCoins {
		return fmt.Errorf("coins not conserved: have %d, seeded %d", coins, e.seededCoins)
	}
	if coins != export.TotalCoins {
		return fmt.Errorf("total coins drifted: tracked %d, counted %d", export.TotalCoins, coins)
	}
	if dollars != e.fundedDollars {
		return fmt.Errorf("dollars not conserved: have %d, funded %d", dollars, e.fundedDollars)
	}
	return nil
}
