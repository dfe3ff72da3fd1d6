// Package bank is the in-process balance book for the base asset. Every
// fund movement between holders, the orchestrator, strategy controllers,
// yield sources, and the withdrawal queue goes through one Token, so total
// supply is conserved and checkable end to end.
package bank

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"yieldpilot/internal/domain"
)

type Token struct {
	ID     uuid.UUID
	Symbol string

	mu          sync.Mutex
	balances    map[uuid.UUID]decimal.Decimal
	totalSupply decimal.Decimal
}

func NewToken(symbol string) *Token {
	return &Token{
		ID:       uuid.New(),
		Symbol:   symbol,
		balances: map[uuid.UUID]decimal.Decimal{},
	}
}

// Mint credits newly created units to an account. Yield accrual in the
// simulated sources and test faucets are the only callers.
func (t *Token) Mint(account uuid.UUID, amount decimal.Decimal) error {
	if !domain.IsPositiveAmount(amount) {
		return fmt.Errorf("failed to mint %s: %w", t.Symbol, domain.ErrInvalidAmount)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balances[account] = t.balances[account].Add(amount)
	t.totalSupply = t.totalSupply.Add(amount)
	return nil
}

// Burn destroys units held by an account.
func (t *Token) Burn(account uuid.UUID, amount decimal.Decimal) error {
	if !domain.IsPositiveAmount(amount) {
		return fmt.Errorf("failed to burn %s: %w", t.Symbol, domain.ErrInvalidAmount)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.balances[account].LessThan(amount) {
		return fmt.Errorf("failed to burn %s from %s: %w", t.Symbol, account, domain.ErrInsufficientBalance)
	}
	t.balances[account] = t.balances[account].Sub(amount)
	t.totalSupply = t.totalSupply.Sub(amount)
	return nil
}

func (t *Token) Transfer(from, to uuid.UUID, amount decimal.Decimal) error {
	if !domain.IsPositiveAmount(amount) {
		return fmt.Errorf("failed to transfer %s: %w", t.Symbol, domain.ErrInvalidAmount)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.balances[from].LessThan(amount) {
		return fmt.Errorf("failed to transfer %s %s from %s: %w", amount, t.Symbol, from, domain.ErrInsufficientBalance)
	}
	t.balances[from] = t.balances[from].Sub(amount)
	t.balances[to] = t.balances[to].Add(amount)
	return nil
}

func (t *Token) BalanceOf(account uuid.UUID) decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances[account]
}

func (t *Token) TotalSupply() decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalSupply
}
