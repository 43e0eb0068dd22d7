// Package platform is the coordination facade over the books, ledger,
// matching engine and access lists. One mutex serializes every public
// operation, so each call observes and produces a consistent state, the way
// a single transaction would.
package platform

import (
	"errors"
	"sync"
	"time"

	"gxcoin/internal/access"
	"gxcoin/internal/book"
	"gxcoin/internal/engine"
	"gxcoin/internal/ledger"
	"gxcoin/internal/obs"
	"gxcoin/internal/schema"
)

var (
	ErrTradingClosed     = errors.New("trading is closed")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrCoinLimitTooHigh  = errors.New("coin limit above the hard maximum")
	ErrCoinLimitExceeded = errors.New("total coins would exceed the coin limit")
)

// MaxCoinLimit is the hard ceiling on issuable coins. The configured limit
// starts here and can only be lowered.
const MaxCoinLimit schema.Quantity = 75_000_000

// engineIdentity is the account the platform acts under on the book owner
// allow-lists.
const engineIdentity schema.Account = "platform/engine"

// Sink consumes stamped platform events.
type Sink interface {
	Publish(schema.Event)
}

// Config carries construction parameters.
type Config struct {
	Creator      schema.Account
	TradingOpen  bool
	CoinLimit    schema.Quantity
	MatchBudget  int
	ExpiryPolicy engine.ExpiryPolicy
	Sink         Sink
	Metrics      *obs.Metrics
	Now          func() int64
}

// Platform owns all mutable state of the exchange core.
type Platform struct {
	mu sync.Mutex

	deployment *access.DeploymentAdmins
	admins     *access.Admins
	buys       *book.List
	sells      *book.List
	ledger     *ledger.Ledger
	engine     *engine.Engine
	sink       Sink
	metrics    *obs.Metrics
	now        func() int64

	seq         uint64
	tradingOpen bool
	coinLimit   schema.Quantity
	totalCoins  schema.Quantity
}

// New builds a platform with the creator as the first deployment admin and
// the engine identity authorized on both books.
func New(cfg Config) *Platform {
	if cfg.CoinLimit <= 0 || cfg.CoinLimit > MaxCoinLimit {
		cfg.CoinLimit = MaxCoinLimit
	}
	if cfg.Now == nil {
		cfg.Now = func() int64 { return time.Now().UnixNano() }
	}

	deployment := access.NewDeploymentAdmins(cfg.Creator)
	buyOwners := access.NewOwners(deployment)
	sellOwners := access.NewOwners(deployment)
	// Construction runs as the creator, so these cannot fail.
	_ = buyOwners.AddOwner(cfg.Creator, engineIdentity)
	_ = sellOwners.AddOwner(cfg.Creator, engineIdentity)

	p := &Platform{
		deployment:  deployment,
		admins:      access.NewAdmins(deployment),
		buys:        book.NewList(buyOwners),
		sells:       book.NewList(sellOwners),
		ledger:      ledger.New(),
		sink:        cfg.Sink,
		metrics:     cfg.Metrics,
		now:         cfg.Now,
		tradingOpen: cfg.TradingOpen,
		coinLimit:   cfg.CoinLimit,
	}
	p.engine = engine.New(
		engineIdentity,
		p.buys,
		p.sells,
		p.ledger,
		p.admins,
		sinkFunc(p.emit),
		engine.Config{
			MatchBudget:  cfg.MatchBudget,
			ExpiryPolicy: cfg.ExpiryPolicy,
			Now: func() int64 {
				return cfg.Now() / int64(time.Second)
			},
		},
	)
	return p
}

type sinkFunc func(schema.Event)

func (f sinkFunc) Publish(ev schema.Event) { f(ev) }

// emit stamps the header and forwards to the sink. Callers hold p.mu, so
// sequence numbers are gapless and ordered.
func (p *Platform) emit(ev schema.Event) {
	p.seq++
	ev.Header = schema.NewHeader(ev.Header.Type, p.seq, p.now())
	if p.sink != nil {
		p.sink.Publish(ev)
	}
}

// DeploymentAdmins returns the root allow-list.
func (p *Platform) DeploymentAdmins() *access.DeploymentAdmins {
	return p.deployment
}

// Admins returns the operational admin allow-list.
func (p *Platform) Admins() *access.Admins {
	return p.admins
}

// BuyOwners returns the buy book's owner allow-list.
func (p *Platform) BuyOwners() *access.Owners {
	return p.buys.Owners()
}

// SellOwners returns the sell book's owner allow-list.
func (p *Platform) SellOwners() *access.Owners {
	return p.sells.Owners()
}

func (p *Platform) requireAdmin(caller schema.Account) error {
	if !p.admins.Contains(caller) && !p.deployment.Contains(caller) {
		return access.ErrNotAuthorized
	}
	return nil
}

// SetTradingOpen opens or closes the trading gate.
func (p *Platform) SetTradingOpen(caller schema.Account, open bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireAdmin(caller); err != nil {
		return err
	}
	if p.tradingOpen == open {
		return nil
	}
	p.tradingOpen = open
	p.emit(schema.Event{
		Header:  schema.EventHeader{Type: schema.EventTradingStatusChanged},
		Control: &schema.ControlChange{TradingOpen: open, CoinLimit: p.coinLimit, TotalCoins: p.totalCoins},
	})
	return nil
}

// IsTradingOpen reports the trading gate.
func (p *Platform) IsTradingOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tradingOpen
}

// SetCoinLimit lowers (or restores) the issuance limit. The hard maximum
// can never be exceeded.
func (p *Platform) SetCoinLimit(caller schema.Account, limit schema.Quantity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireAdmin(caller); err != nil {
		return err
	}
	if limit <= 0 {
		return ErrInvalidAmount
	}
	if limit > MaxCoinLimit {
		return ErrCoinLimitTooHigh
	}
	p.coinLimit = limit
	p.emit(schema.Event{
		Header:  schema.EventHeader{Type: schema.EventCoinLimitChanged},
		Control: &schema.ControlChange{TradingOpen: p.tradingOpen, CoinLimit: limit, TotalCoins: p.totalCoins},
	})
	return nil
}

// CoinLimit returns the current issuance limit.
func (p *Platform) CoinLimit() schema.Quantity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.coinLimit
}

// SetTotalCoins overwrites the issued-coin counter. Used by migration
// imports; the limit still applies.
func (p *Platform) SetTotalCoins(caller schema.Account, total schema.Quantity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireAdmin(caller); err != nil {
		return err
	}
	if total < 0 {
		return ErrInvalidAmount
	}
	if total > p.coinLimit {
		return ErrCoinLimitExceeded
	}
	p.totalCoins = total
	return nil
}

// TotalCoins returns the issued-coin counter.
func (p *Platform) TotalCoins() schema.Quantity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalCoins
}
