package yieldsource

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"yieldpilot/internal/bank"
	"yieldpilot/internal/domain"
)

// MarginSource models a venue with signed profit-and-loss on top of posted
// principal: shares convert at par, and the withdrawable balance is
// principal plus a PnL figure that may be negative. Reported balance floors
// at zero; the signed figure stays visible through Pnl for auditing.
type MarginSource struct {
	id    uuid.UUID
	name  string
	token *bank.Token
	owner uuid.UUID
	pool  uuid.UUID

	mu        sync.Mutex
	principal decimal.Decimal
	pnl       decimal.Decimal
	pending   decimal.Decimal
	active    bool
}

var _ Adapter = (*MarginSource)(nil)
var _ Pausable = (*MarginSource)(nil)

func NewMarginSource(name string, token *bank.Token, owner uuid.UUID) *MarginSource {
	return &MarginSource{
		id:     uuid.New(),
		name:   name,
		token:  token,
		owner:  owner,
		pool:   uuid.New(),
		active: true,
	}
}

func (s *MarginSource) ID() uuid.UUID { return s.id }
func (s *MarginSource) Name() string  { return s.name }

func (s *MarginSource) Deposit(amount decimal.Decimal) (decimal.Decimal, error) {
	if !domain.IsPositiveAmount(amount) {
		return decimal.Zero, fmt.Errorf("failed to deposit into %s: %w", s.name, domain.ErrInvalidAmount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return decimal.Zero, fmt.Errorf("failed to deposit into %s: %w", s.name, domain.ErrInactiveSource)
	}
	if err := s.token.Transfer(s.owner, s.pool, amount); err != nil {
		return decimal.Zero, err
	}
	s.principal = s.principal.Add(amount)
	return amount, nil
}

func (s *MarginSource) Withdraw(shares decimal.Decimal) (decimal.Decimal, error) {
	return s.WithdrawTo(s.owner, shares)
}

func (s *MarginSource) WithdrawTo(receiver uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if !domain.IsPositiveAmount(amount) {
		return decimal.Zero, fmt.Errorf("failed to withdraw from %s: %w", s.name, domain.ErrInvalidAmount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.balanceLocked().LessThan(amount) {
		return decimal.Zero, fmt.Errorf("failed to withdraw %s from %s: %w", amount, s.name, domain.ErrInsufficientBalance)
	}
	if err := s.token.Transfer(s.pool, receiver, amount); err != nil {
		return decimal.Zero, err
	}
	// Withdrawals consume realized PnL before touching principal.
	fromPnl := decimal.Min(amount, decimal.Max(s.pnl, decimal.Zero))
	s.pnl = s.pnl.Sub(fromPnl)
	s.principal = s.principal.Sub(amount.Sub(fromPnl))
	return amount, nil
}

func (s *MarginSource) GetBalance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balanceLocked()
}

func (s *MarginSource) balanceLocked() decimal.Decimal {
	balance := s.principal.Add(s.pnl)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// Pnl is the signed profit-and-loss figure, exposed for auditing.
func (s *MarginSource) Pnl() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pnl
}

func (s *MarginSource) GetTotalAssets() decimal.Decimal {
	return s.token.BalanceOf(s.pool)
}

func (s *MarginSource) ConvertToShares(assets decimal.Decimal) decimal.Decimal { return assets }
func (s *MarginSource) ConvertToAssets(shares decimal.Decimal) decimal.Decimal { return shares }

func (s *MarginSource) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *MarginSource) GetPendingRewards() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *MarginSource) Harvest() (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	harvested := s.pending
	s.pnl = s.pnl.Add(harvested)
	s.pending = decimal.Zero
	return harvested, nil
}

func (s *MarginSource) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

func (s *MarginSource) Unpause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
}

// ApplyPnL books a signed trading result. Gains mint backing into the pool;
// losses burn it.
func (s *MarginSource) ApplyPnL(delta decimal.Decimal) error {
	if delta.IsZero() || !delta.Equal(delta.Truncate(0)) {
		return fmt.Errorf("failed to apply pnl on %s: %w", s.name, domain.ErrInvalidAmount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if delta.IsPositive() {
		if err := s.token.Mint(s.pool, delta); err != nil {
			return err
		}
	} else {
		if err := s.token.Burn(s.pool, delta.Neg()); err != nil {
			return err
		}
	}
	s.pnl = s.pnl.Add(delta)
	return nil
}
