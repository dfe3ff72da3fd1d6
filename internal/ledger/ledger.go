// Package ledger implements the rebasing claim balance. Holders own shares;
// a single process-wide scaling factor converts shares to display units.
// Yield accrual never touches per-holder state: a rebase moves the factor
// once and every balance scales with it.
package ledger

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"yieldpilot/internal/domain"
)

type Ledger struct {
	mu            sync.Mutex
	shares        map[uuid.UUID]decimal.Decimal
	totalShares   decimal.Decimal
	scalingFactor decimal.Decimal
	log           *zap.SugaredLogger
}

func NewLedger(log *zap.SugaredLogger) *Ledger {
	return &Ledger{
		shares:        map[uuid.UUID]decimal.Decimal{},
		scalingFactor: domain.Scale,
		log:           log,
	}
}

// Mint credits shares worth exactly assetAmount display units at the current
// scaling factor. Share count floors, so the credited display balance is
// assetAmount less at most one unit of integer-division dust.
func (l *Ledger) Mint(to uuid.UUID, assetAmount decimal.Decimal) (decimal.Decimal, error) {
	if !domain.IsPositiveAmount(assetAmount) {
		return decimal.Zero, fmt.Errorf("failed to mint: %w", domain.ErrInvalidAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	shares := domain.MulDivFloor(assetAmount, domain.Scale, l.scalingFactor)
	l.shares[to] = l.shares[to].Add(shares)
	l.totalShares = l.totalShares.Add(shares)
	return shares, nil
}

// Burn debits shares worth assetAmount display units. Shares round up, so a
// burn never leaves the holder with dust value the pool has already paid
// out; the ceiling can exceed the floored display balance by at most one
// share, which the balance check below already covers.
func (l *Ledger) Burn(from uuid.UUID, assetAmount decimal.Decimal) (decimal.Decimal, error) {
	if !domain.IsPositiveAmount(assetAmount) {
		return decimal.Zero, fmt.Errorf("failed to burn: %w", domain.ErrInvalidAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balanceOfLocked(from).LessThan(assetAmount) {
		return decimal.Zero, fmt.Errorf("failed to burn %s from %s: %w", assetAmount, from, domain.ErrInsufficientBalance)
	}
	shares := domain.MulDivCeil(assetAmount, domain.Scale, l.scalingFactor)
	if l.shares[from].LessThan(shares) {
		return decimal.Zero, fmt.Errorf("failed to burn %s shares from %s: %w", shares, from, domain.ErrInsufficientShares)
	}
	l.shares[from] = l.shares[from].Sub(shares)
	l.totalShares = l.totalShares.Sub(shares)
	return shares, nil
}

// Rebase repoints the scaling factor so that outstanding shares are worth
// newTotalAssets in aggregate. No-op while no shares exist. A factor
// decrease is a loss event; it is representable and logged, not rejected.
func (l *Ledger) Rebase(newTotalAssets decimal.Decimal) error {
	if newTotalAssets.IsNegative() {
		return fmt.Errorf("failed to rebase: %w", domain.ErrInvalidAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.totalShares.IsZero() {
		return nil
	}
	newFactor := domain.MulDivFloor(newTotalAssets, domain.Scale, l.totalShares)
	if newFactor.LessThan(l.scalingFactor) && l.log != nil {
		l.log.Warnw("rebase decreased scaling factor",
			"oldFactor", l.scalingFactor.String(),
			"newFactor", newFactor.String(),
			"newTotalAssets", newTotalAssets.String(),
		)
	}
	l.scalingFactor = newFactor
	return nil
}

// TransferShares moves raw shares between accounts without touching the
// scaling factor.
func (l *Ledger) TransferShares(from, to uuid.UUID, shares decimal.Decimal) error {
	if !domain.IsPositiveAmount(shares) {
		return fmt.Errorf("failed to transfer shares: %w", domain.ErrInvalidAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.shares[from].LessThan(shares) {
		return fmt.Errorf("failed to transfer %s shares from %s: %w", shares, from, domain.ErrInsufficientShares)
	}
	l.shares[from] = l.shares[from].Sub(shares)
	l.shares[to] = l.shares[to].Add(shares)
	return nil
}

// TransferBalance moves assetAmount display units between accounts. The
// share count floors; at most one unit of dust value stays with the sender.
func (l *Ledger) TransferBalance(from, to uuid.UUID, assetAmount decimal.Decimal) (decimal.Decimal, error) {
	if !domain.IsPositiveAmount(assetAmount) {
		return decimal.Zero, fmt.Errorf("failed to transfer balance: %w", domain.ErrInvalidAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balanceOfLocked(from).LessThan(assetAmount) {
		return decimal.Zero, fmt.Errorf("failed to transfer %s from %s: %w", assetAmount, from, domain.ErrInsufficientBalance)
	}
	shares := domain.MulDivFloor(assetAmount, domain.Scale, l.scalingFactor)
	l.shares[from] = l.shares[from].Sub(shares)
	l.shares[to] = l.shares[to].Add(shares)
	return shares, nil
}

func (l *Ledger) BalanceOf(holder uuid.UUID) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balanceOfLocked(holder)
}

func (l *Ledger) balanceOfLocked(holder uuid.UUID) decimal.Decimal {
	return domain.MulDivFloor(l.shares[holder], l.scalingFactor, domain.Scale)
}

func (l *Ledger) SharesOf(holder uuid.UUID) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.shares[holder]
}

func (l *Ledger) TotalShares() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalShares
}

// TotalAssets is the aggregate display value of all outstanding shares.
func (l *Ledger) TotalAssets() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return domain.MulDivFloor(l.totalShares, l.scalingFactor, domain.Scale)
}

func (l *Ledger) ScalingFactor() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.scalingFactor
}
