package yieldsource

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"yieldpilot/internal/bank"
	"yieldpilot/internal/domain"
)

// PooledSource models an exchange-rate share pool: depositors receive pool
// shares priced against the pool's asset balance, and yield accrues by the
// pool balance growing while shares stay fixed. The share price never moves
// on deposit or withdrawal, only on accrual.
type PooledSource struct {
	id    uuid.UUID
	name  string
	token *bank.Token
	owner uuid.UUID
	pool  uuid.UUID

	mu sync.Mutex
	// ownerShares is the slice of poolShares held for the owning
	// controller; the remainder belongs to other simulated depositors.
	ownerShares decimal.Decimal
	poolShares  decimal.Decimal
	pending     decimal.Decimal
	active      bool
}

var _ Adapter = (*PooledSource)(nil)
var _ Pausable = (*PooledSource)(nil)

func NewPooledSource(name string, token *bank.Token, owner uuid.UUID) *PooledSource {
	return &PooledSource{
		id:     uuid.New(),
		name:   name,
		token:  token,
		owner:  owner,
		pool:   uuid.New(),
		active: true,
	}
}

func (s *PooledSource) ID() uuid.UUID { return s.id }
func (s *PooledSource) Name() string  { return s.name }

func (s *PooledSource) Deposit(amount decimal.Decimal) (decimal.Decimal, error) {
	if !domain.IsPositiveAmount(amount) {
		return decimal.Zero, fmt.Errorf("failed to deposit into %s: %w", s.name, domain.ErrInvalidAmount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return decimal.Zero, fmt.Errorf("failed to deposit into %s: %w", s.name, domain.ErrInactiveSource)
	}

	// Price shares against the pool before the transfer lands.
	shares := s.convertToSharesLocked(amount)
	if shares.IsZero() {
		return decimal.Zero, fmt.Errorf("failed to deposit %s into %s: below one share: %w", amount, s.name, domain.ErrInvalidAmount)
	}
	if err := s.token.Transfer(s.owner, s.pool, amount); err != nil {
		return decimal.Zero, err
	}
	s.ownerShares = s.ownerShares.Add(shares)
	s.poolShares = s.poolShares.Add(shares)
	return shares, nil
}

func (s *PooledSource) Withdraw(shares decimal.Decimal) (decimal.Decimal, error) {
	if !domain.IsPositiveAmount(shares) {
		return decimal.Zero, fmt.Errorf("failed to withdraw from %s: %w", s.name, domain.ErrInvalidAmount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ownerShares.LessThan(shares) {
		return decimal.Zero, fmt.Errorf("failed to withdraw %s shares from %s: %w", shares, s.name, domain.ErrInsufficientBalance)
	}
	amount := s.convertToAssetsLocked(shares)
	if err := s.token.Transfer(s.pool, s.owner, amount); err != nil {
		return decimal.Zero, err
	}
	s.ownerShares = s.ownerShares.Sub(shares)
	s.poolShares = s.poolShares.Sub(shares)
	return amount, nil
}

// WithdrawTo redeems whatever share count covers amount, rounding shares up
// so the receiver is paid in full, and sends the assets straight to the
// receiver.
func (s *PooledSource) WithdrawTo(receiver uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if !domain.IsPositiveAmount(amount) {
		return decimal.Zero, fmt.Errorf("failed to withdraw from %s: %w", s.name, domain.ErrInvalidAmount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.convertToAssetsLocked(s.ownerShares).LessThan(amount) {
		return decimal.Zero, fmt.Errorf("failed to withdraw %s from %s: %w", amount, s.name, domain.ErrInsufficientBalance)
	}
	shares := domain.MulDivCeil(amount, s.poolShares, s.token.BalanceOf(s.pool))
	if shares.GreaterThan(s.ownerShares) {
		shares = s.ownerShares
	}
	if err := s.token.Transfer(s.pool, receiver, amount); err != nil {
		return decimal.Zero, err
	}
	s.ownerShares = s.ownerShares.Sub(shares)
	s.poolShares = s.poolShares.Sub(shares)
	return amount, nil
}

func (s *PooledSource) GetBalance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.convertToAssetsLocked(s.ownerShares)
}

func (s *PooledSource) GetTotalAssets() decimal.Decimal {
	return s.token.BalanceOf(s.pool)
}

func (s *PooledSource) ConvertToShares(assets decimal.Decimal) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.convertToSharesLocked(assets)
}

func (s *PooledSource) ConvertToAssets(shares decimal.Decimal) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.convertToAssetsLocked(shares)
}

func (s *PooledSource) convertToSharesLocked(assets decimal.Decimal) decimal.Decimal {
	poolAssets := s.token.BalanceOf(s.pool)
	if s.poolShares.IsZero() || poolAssets.IsZero() {
		return assets
	}
	return domain.MulDivFloor(assets, s.poolShares, poolAssets)
}

func (s *PooledSource) convertToAssetsLocked(shares decimal.Decimal) decimal.Decimal {
	if s.poolShares.IsZero() {
		return shares
	}
	return domain.MulDivFloor(shares, s.token.BalanceOf(s.pool), s.poolShares)
}

func (s *PooledSource) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *PooledSource) GetPendingRewards() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *PooledSource) Harvest() (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	harvested := s.pending
	s.pending = decimal.Zero
	return harvested, nil
}

func (s *PooledSource) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

func (s *PooledSource) Unpause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
}

// AccrueYield grows the pool balance without minting shares, which raises
// the exchange rate for every share holder.
func (s *PooledSource) AccrueYield(amount decimal.Decimal) error {
	if !domain.IsPositiveAmount(amount) {
		return fmt.Errorf("failed to accrue yield on %s: %w", s.name, domain.ErrInvalidAmount)
	}
	return s.token.Mint(s.pool, amount)
}
