package platform

import (
	"gxcoin/internal/ledger"
	"gxcoin/internal/schema"
)

// SeedCoins mints coins into a registered trader account, bounded by the
// coin limit.
func (p *Platform) SeedCoins(caller, account schema.Account, amount schema.Quantity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireAdmin(caller); err != nil {
		return err
	}
	if account == schema.AccountNil {
		return ledger.ErrNilAccount
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if !p.ledger.Contains(account) {
		return ledger.ErrNotRegistered
	}
	if p.totalCoins+amount > p.coinLimit {
		return ErrCoinLimitExceeded
	}
	if err := p.ledger.CreditCoins(account, amount); err != nil {
		return err
	}
	p.totalCoins += amount
	p.emitBalance(account, schema.BalanceReasonSeed, amount, 0, "")
	return nil
}

// Fund applies a signed dollar adjustment to a trader account.
func (p *Platform) Fund(caller, account schema.Account, amount schema.Notional) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireAdmin(caller); err != nil {
		return err
	}
	if err := p.ledger.AdjustDollars(account, amount); err != nil {
		return err
	}
	p.emitBalance(account, schema.BalanceReasonFund, 0, amount, "")
	return nil
}

// AdjustCash applies a signed dollar correction with an audit note.
func (p *Platform) AdjustCash(caller, account schema.Account, delta schema.Notional, notes string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireAdmin(caller); err != nil {
		return err
	}
	if err := p.ledger.AdjustDollars(account, delta); err != nil {
		return err
	}
	p.emitBalance(account, schema.BalanceReasonAdjustCash, 0, delta, notes)
	return nil
}

// AdjustCoins applies a signed coin correction with an audit note. The
// issued-coin counter is untouched; corrections are not issuance.
func (p *Platform) AdjustCoins(caller, account schema.Account, delta schema.Quantity, notes string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireAdmin(caller); err != nil {
		return err
	}
	if err := p.ledger.AdjustCoins(account, delta); err != nil {
		return err
	}
	p.emitBalance(account, schema.BalanceReasonAdjustCoins, delta, 0, notes)
	return nil
}

// Withdraw moves dollars out of the caller's own balance.
func (p *Platform) Withdraw(caller schema.Account, amount schema.Notional) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ledger.Contains(caller) {
		return ledger.ErrNotRegistered
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if err := p.ledger.DebitDollars(caller, amount); err != nil {
		return err
	}
	p.emitBalance(caller, schema.BalanceReasonWithdraw, 0, -amount, "")
	return nil
}

// AdminCancelWithdrawal credits a previously withdrawn amount back to the
// account, for withdrawals that never settled off-platform.
func (p *Platform) AdminCancelWithdrawal(caller, account schema.Account, amount schema.Notional) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireAdmin(caller); err != nil {
		return err
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if err := p.ledger.CreditDollars(account, amount); err != nil {
		return err
	}
	p.emitBalance(account, schema.BalanceReasonWithdrawalCancelled, 0, amount, "")
	return nil
}

// RegisterTraderAccount marks an account as a trader.
func (p *Platform) RegisterTraderAccount(caller, account schema.Account) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireAdmin(caller); err != nil {
		return err
	}
	if err := p.ledger.Register(account); err != nil {
		return err
	}
	p.emit(schema.Event{
		Header: schema.EventHeader{Type: schema.EventTraderRegistered},
		Trader: &schema.TraderChange{Account: account, Registered: true},
	})
	return nil
}

// UnregisterTraderAccount revokes trading access. Balances are kept.
func (p *Platform) UnregisterTraderAccount(caller, account schema.Account) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireAdmin(caller); err != nil {
		return err
	}
	if err := p.ledger.Unregister(account); err != nil {
		return err
	}
	p.emit(schema.Event{
		Header: schema.EventHeader{Type: schema.EventTraderUnregistered},
		Trader: &schema.TraderChange{Account: account, Registered: false},
	})
	return nil
}

// TransferTraderBalance moves both balances and the registration flag from
// one account to another. The issued-coin counter and the trading gate are
// untouched.
func (p *Platform) TransferTraderBalance(caller, from, to schema.Account) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireAdmin(caller); err != nil {
		return err
	}
	coins, dollars, err := p.ledger.Transfer(from, to)
	if err != nil {
		return err
	}
	p.emit(schema.Event{
		Header:   schema.EventHeader{Type: schema.EventTraderBalanceTransferred},
		Transfer: &schema.TraderTransfer{From: from, To: to, Coins: coins, Dollars: dollars},
	})
	return nil
}

// IsRegisteredTrader reports registration.
func (p *Platform) IsRegisteredTrader(account schema.Account) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledger.Contains(account)
}

// CoinBalance returns the account's coin balance.
func (p *Platform) CoinBalance(account schema.Account) schema.Quantity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledger.CoinBalance(account)
}

// DollarBalance returns the account's dollar balance.
func (p *Platform) DollarBalance(account schema.Account) schema.Notional {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledger.DollarBalance(account)
}

func (p *Platform) emitBalance(
	account schema.Account,
	reason schema.BalanceReason,
	coinDelta schema.Quantity,
	dollarDelta schema.Notional,
	notes string,
) {
	p.emit(schema.Event{
		Header: schema.EventHeader{Type: balanceEventType(reason)},
		Balance: &schema.BalanceChange{
			Account:       account,
			Reason:        reason,
			CoinDelta:     coinDelta,
			DollarDelta:   dollarDelta,
			CoinBalance:   p.ledger.CoinBalance(account),
			DollarBalance: p.ledger.DollarBalance(account),
			Notes:         notes,
		},
	})
}

func balanceEventType(reason schema.BalanceReason) schema.EventType {
	switch reason {
	case schema.BalanceReasonSeed:
		return schema.EventCoinsSeeded
	case schema.BalanceReasonFund:
		return schema.EventDollarsFunded
	case schema.BalanceReasonAdjustCash:
		return schema.EventCashAdjusted
	case schema.BalanceReasonAdjustCoins:
		return schema.EventCoinsAdjusted
	case schema.BalanceReasonWithdraw:
		return schema.EventDollarsWithdrawn
	case schema.BalanceReasonWithdrawalCancelled:
		return schema.EventDollarsWithdrawalCancelled
	default:
		return schema.EventUnknown
	}
}
