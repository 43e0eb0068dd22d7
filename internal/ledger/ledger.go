// Package ledger tracks trader registration and the coin/dollar balances
// backing the order books. Balances are plain integers and can never go
// negative: every debit validates before it mutates.
package ledger

import (
	"errors"

	"gxcoin/internal/schema"
)

var (
	ErrNilAccount          = errors.New("null account")
	ErrNotRegistered       = errors.New("account is not a registered trader")
	ErrInsufficientCoins   = errors.New("insufficient coin balance")
	ErrInsufficientDollars = errors.New("insufficient dollar balance")
)

// Trader is one account's registration state and balances.
type Trader struct {
	Account    schema.Account
	Registered bool
	Coins      schema.Quantity
	Dollars    schema.Notional
}

// Ledger is the balance store shared by the matching engine and the
// platform admin operations.
type Ledger struct {
	traders  map[schema.Account]*Trader
	accounts []schema.Account
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{traders: make(map[schema.Account]*Trader)}
}

func (l *Ledger) trader(account schema.Account) *Trader {
	t, ok := l.traders[account]
	if !ok {
		t = &Trader{Account: account}
		l.traders[account] = t
		l.accounts = append(l.accounts, account)
	}
	return t
}

// Register marks the account as a trader. Balances survive registration
// churn; re-registering an account restores access to whatever it held.
func (l *Ledger) Register(account schema.Account) error {
	if account == schema.AccountNil {
		return ErrNilAccount
	}
	l.trader(account).Registered = true
	return nil
}

// Unregister clears the registration flag. Balances are kept.
func (l *Ledger) Unregister(account schema.Account) error {
	if account == schema.AccountNil {
		return ErrNilAccount
	}
	if t, ok := l.traders[account]; ok {
		t.Registered = false
	}
	return nil
}

// Contains reports whether account is currently a registered trader.
func (l *Ledger) Contains(account schema.Account) bool {
	t, ok := l.traders[account]
	return ok && t.Registered
}

// Len returns the number of registered traders.
func (l *Ledger) Len() int {
	n := 0
	for _, t := range l.traders {
		if t.Registered {
			n++
		}
	}
	return n
}

// CoinBalance returns the coin balance; unknown accounts hold zero.
func (l *Ledger) CoinBalance(account schema.Account) schema.Quantity {
	if t, ok := l.traders[account]; ok {
		return t.Coins
	}
	return 0
}

// DollarBalance returns the dollar balance; unknown accounts hold zero.
func (l *Ledger) DollarBalance(account schema.Account) schema.Notional {
	if t, ok := l.traders[account]; ok {
		return t.Dollars
	}
	return 0
}

// CreditCoins adds qty coins to the account.
func (l *Ledger) CreditCoins(account schema.Account, qty schema.Quantity) error {
	if account == schema.AccountNil {
		return ErrNilAccount
	}
	l.trader(account).Coins += qty
	return nil
}

// DebitCoins removes qty coins, rejecting the whole operation when the
// balance would go negative.
func (l *Ledger) DebitCoins(account schema.Account, qty schema.Quantity) error {
	t, ok := l.traders[account]
	if !ok || t.Coins < qty {
		return ErrInsufficientCoins
	}
	t.Coins -= qty
	return nil
}

// CreditDollars adds amount to the account's dollar balance.
func (l *Ledger) CreditDollars(account schema.Account, amount schema.Notional) error {
	if account == schema.AccountNil {
		return ErrNilAccount
	}
	l.trader(account).Dollars += amount
	return nil
}

// DebitDollars removes amount, rejecting the whole operation when the
// balance would go negative.
func (l *Ledger) DebitDollars(account schema.Account, amount schema.Notional) error {
	t, ok := l.traders[account]
	if !ok || t.Dollars < amount {
		return ErrInsufficientDollars
	}
	t.Dollars -= amount
	return nil
}

// AdjustCoins applies a signed delta with the same floor check as a debit.
func (l *Ledger) AdjustCoins(account schema.Account, delta schema.Quantity) error {
	if account == schema.AccountNil {
		return ErrNilAccount
	}
	if delta < 0 {
		return l.DebitCoins(account, -delta)
	}
	return l.CreditCoins(account, delta)
}

// AdjustDollars applies a signed delta with the same floor check as a debit.
func (l *Ledger) AdjustDollars(account schema.Account, delta schema.Notional) error {
	if account == schema.AccountNil {
		return ErrNilAccount
	}
	if delta < 0 {
		return l.DebitDollars(account, -delta)
	}
	return l.CreditDollars(account, delta)
}

// Transfer atomically moves both balances and the registration flag from
// one account to another. It returns the amounts moved. The source is left
// empty and unregistered.
func (l *Ledger) Transfer(from, to schema.Account) (schema.Quantity, schema.Notional, error) {
	if from == schema.AccountNil || to == schema.AccountNil {
		return 0, 0, ErrNilAccount
	}
	src, ok := l.traders[from]
	if !ok {
		return 0, 0, ErrNotRegistered
	}
	dst := l.trader(to)

	coins, dollars := src.Coins, src.Dollars
	dst.Coins += coins
	dst.Dollars += dollars
	dst.Registered = dst.Registered || src.Registered

	src.Coins = 0
	src.Dollars = 0
	src.Registered = false
	return coins, dollars, nil
}

// ForEach visits every account the ledger has ever touched, in first-seen
// order, stopping early when visit returns false.
func (l *Ledger) ForEach(visit func(Trader) bool) {
	for _, account := range l.accounts {
		if !visit(*l.traders[account]) {
			return
		}
	}
}

// Restore loads a trader record verbatim, for snapshot recovery and
// migration imports.
func (l *Ledger) Restore(t Trader) error {
	if t.Account == schema.AccountNil {
		return ErrNilAccount
	}
	rec := l.trader(t.Account)
	rec.Registered = t.Registered
	rec.Coins = t.Coins
	rec.Dollars = t.Dollars
	return nil
}
