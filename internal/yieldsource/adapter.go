// Package yieldsource defines the capability every yield-source integration
// satisfies, plus the three simulated source models the system ships: pure
// 1:1, pooled exchange-rate shares, and signed-margin par accounting. The
// strategy controller only ever sees the Adapter interface and never
// branches on which model is behind it.
package yieldsource

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=adapter.go -destination=mocks/adapter_mock.go

// Adapter routes funds to and from one external yield source. Deposit and
// Withdraw move value between the source and the owning controller's
// account; WithdrawTo pays an arbitrary receiver directly.
//
// Amount semantics: zero or non-integral quantities fail with
// domain.ErrInvalidAmount; withdrawing more than held fails with
// domain.ErrInsufficientBalance.
type Adapter interface {
	ID() uuid.UUID
	Name() string

	Deposit(amount decimal.Decimal) (decimal.Decimal, error)
	Withdraw(shares decimal.Decimal) (decimal.Decimal, error)
	WithdrawTo(receiver uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)

	GetBalance() decimal.Decimal
	GetTotalAssets() decimal.Decimal
	ConvertToShares(assets decimal.Decimal) decimal.Decimal
	ConvertToAssets(shares decimal.Decimal) decimal.Decimal

	IsActive() bool
	GetPendingRewards() decimal.Decimal
	Harvest() (decimal.Decimal, error)
}

// Pausable is the administrative half of a source: taking it out of
// rotation without unwinding it.
type Pausable interface {
	Pause()
	Unpause()
}
