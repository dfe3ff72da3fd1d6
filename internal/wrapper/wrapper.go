// Package wrapper exposes a fixed-balance representation of a rebasing
// position. Wrapped units never move with a rebase; the underlying share
// claim behind each unit grows instead. External systems that cannot handle
// balances changing underneath them hold wrapped units.
package wrapper

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"yieldpilot/internal/domain"
	"yieldpilot/internal/ledger"
)

type Wrapper struct {
	mu sync.Mutex

	ledger *ledger.Ledger
	// account is the wrapper's own escrow account on the rebasing ledger.
	// All wrapped value sits here and accrues rebases collectively.
	account uuid.UUID

	units      map[uuid.UUID]decimal.Decimal
	totalUnits decimal.Decimal
}

func NewWrapper(l *ledger.Ledger) *Wrapper {
	return &Wrapper{
		ledger:  l,
		account: uuid.New(),
		units:   map[uuid.UUID]decimal.Decimal{},
	}
}

// Wrap escrows amount of the holder's rebasing balance and mints wrapped
// units. The first wrap is 1:1; later wraps price units at the current
// exchange rate so earlier wrappers keep the yield already accrued to the
// escrow account.
func (w *Wrapper) Wrap(holder uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if !domain.IsPositiveAmount(amount) {
		return decimal.Zero, fmt.Errorf("failed to wrap: %w", domain.ErrInvalidAmount)
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	escrowed := w.ledger.BalanceOf(w.account)
	units := amount
	if !w.totalUnits.IsZero() {
		// A loss rebase can floor the escrow to zero while units remain
		// outstanding; new wraps cannot be priced until the escrow recovers.
		if escrowed.IsZero() {
			return decimal.Zero, fmt.Errorf("failed to wrap %s: escrow is empty with %s units outstanding: %w", amount, w.totalUnits, domain.ErrInsufficientLiquidity)
		}
		units = domain.MulDivFloor(amount, w.totalUnits, escrowed)
	}
	if units.IsZero() {
		return decimal.Zero, fmt.Errorf("failed to wrap %s: amount below one unit at current rate: %w", amount, domain.ErrInvalidAmount)
	}

	if _, err := w.ledger.TransferBalance(holder, w.account, amount); err != nil {
		return decimal.Zero, fmt.Errorf("failed to escrow %s for %s: %w", amount, holder, err)
	}
	w.units[holder] = w.units[holder].Add(units)
	w.totalUnits = w.totalUnits.Add(units)
	return units, nil
}

// Unwrap burns wrapped units and returns the holder's proportional slice of
// the escrowed rebasing balance.
func (w *Wrapper) Unwrap(holder uuid.UUID, units decimal.Decimal) (decimal.Decimal, error) {
	if !domain.IsPositiveAmount(units) {
		return decimal.Zero, fmt.Errorf("failed to unwrap: %w", domain.ErrInvalidAmount)
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.units[holder].LessThan(units) {
		return decimal.Zero, fmt.Errorf("failed to unwrap %s units for %s: %w", units, holder, domain.ErrInsufficientBalance)
	}
	escrowed := w.ledger.BalanceOf(w.account)
	owed := domain.MulDivFloor(escrowed, units, w.totalUnits)
	if owed.IsZero() {
		return decimal.Zero, fmt.Errorf("failed to unwrap %s units: nothing owed: %w", units, domain.ErrInvalidAmount)
	}

	if _, err := w.ledger.TransferBalance(w.account, holder, owed); err != nil {
		return decimal.Zero, fmt.Errorf("failed to release %s to %s: %w", owed, holder, err)
	}
	w.units[holder] = w.units[holder].Sub(units)
	w.totalUnits = w.totalUnits.Sub(units)
	return owed, nil
}

// ExchangeRate is the escrowed balance behind one wrapped unit, scaled by
// domain.Scale. It starts at Scale and moves with rebases; it only falls if
// a loss rebase shrinks the escrow.
func (w *Wrapper) ExchangeRate() decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.totalUnits.IsZero() {
		return domain.Scale
	}
	return domain.MulDivFloor(w.ledger.BalanceOf(w.account), domain.Scale, w.totalUnits)
}

// UnderlyingOf is the rebasing balance the holder would receive by
// unwrapping everything now.
func (w *Wrapper) UnderlyingOf(holder uuid.UUID) decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.totalUnits.IsZero() {
		return decimal.Zero
	}
	return domain.MulDivFloor(w.ledger.BalanceOf(w.account), w.units[holder], w.totalUnits)
}

func (w *Wrapper) UnitsOf(holder uuid.UUID) decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.units[holder]
}

func (w *Wrapper) TotalUnits() decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.totalUnits
}
