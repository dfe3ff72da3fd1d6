package yieldsource

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"yieldpilot/internal/bank"
	"yieldpilot/internal/domain"
)

// FixedSource is the simplest accounting model: shares and assets are the
// same unit, and accrued yield credits the balance directly. The analog is
// an interest-bearing balance that grows in place.
type FixedSource struct {
	id    uuid.UUID
	name  string
	token *bank.Token
	// owner is the controller account funds come from and return to.
	owner uuid.UUID
	// pool is the source's own account holding backing assets.
	pool uuid.UUID

	mu      sync.Mutex
	balance decimal.Decimal
	pending decimal.Decimal
	active  bool
}

var _ Adapter = (*FixedSource)(nil)
var _ Pausable = (*FixedSource)(nil)

func NewFixedSource(name string, token *bank.Token, owner uuid.UUID) *FixedSource {
	return &FixedSource{
		id:     uuid.New(),
		name:   name,
		token:  token,
		owner:  owner,
		pool:   uuid.New(),
		active: true,
	}
}

func (s *FixedSource) ID() uuid.UUID { return s.id }
func (s *FixedSource) Name() string  { return s.name }

func (s *FixedSource) Deposit(amount decimal.Decimal) (decimal.Decimal, error) {
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
	s.balance = s.balance.Add(amount)
	return amount, nil
}

func (s *FixedSource) Withdraw(shares decimal.Decimal) (decimal.Decimal, error) {
	return s.WithdrawTo(s.owner, shares)
}

func (s *FixedSource) WithdrawTo(receiver uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if !domain.IsPositiveAmount(amount) {
		return decimal.Zero, fmt.Errorf("failed to withdraw from %s: %w", s.name, domain.ErrInvalidAmount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.balance.LessThan(amount) {
		return decimal.Zero, fmt.Errorf("failed to withdraw %s from %s: %w", amount, s.name, domain.ErrInsufficientBalance)
	}
	if err := s.token.Transfer(s.pool, receiver, amount); err != nil {
		return decimal.Zero, err
	}
	s.balance = s.balance.Sub(amount)
	return amount, nil
}

func (s *FixedSource) GetBalance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

func (s *FixedSource) GetTotalAssets() decimal.Decimal {
	return s.token.BalanceOf(s.pool)
}

func (s *FixedSource) ConvertToShares(assets decimal.Decimal) decimal.Decimal { return assets }
func (s *FixedSource) ConvertToAssets(shares decimal.Decimal) decimal.Decimal { return shares }

func (s *FixedSource) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *FixedSource) GetPendingRewards() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Harvest folds pending rewards into the withdrawable balance.
func (s *FixedSource) Harvest() (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	harvested := s.pending
	s.balance = s.balance.Add(harvested)
	s.pending = decimal.Zero
	return harvested, nil
}

func (s *FixedSource) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

func (s *FixedSource) Unpause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
}

// AccrueYield simulates the source generating interest: new units appear in
// the backing pool and the balance grows in place.
func (s *FixedSource) AccrueYield(amount decimal.Decimal) error {
	if !domain.IsPositiveAmount(amount) {
		return fmt.Errorf("failed to accrue yield on %s: %w", s.name, domain.ErrInvalidAmount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.token.Mint(s.pool, amount); err != nil {
		return err
	}
	s.balance = s.balance.Add(amount)
	return nil
}

// AccrueReward simulates an external reward stream that only materializes on
// harvest.
func (s *FixedSource) AccrueReward(amount decimal.Decimal) error {
	if !domain.IsPositiveAmount(amount) {
		return fmt.Errorf("failed to accrue reward on %s: %w", s.name, domain.ErrInvalidAmount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.token.Mint(s.pool, amount); err != nil {
		return err
	}
	s.pending = s.pending.Add(amount)
	return nil
}
