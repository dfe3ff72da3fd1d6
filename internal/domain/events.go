package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LedgerEventType string

const (
	EventDeposit           LedgerEventType = "deposit"
	EventWithdrawRequested LedgerEventType = "withdraw_requested"
	EventRequestFunded     LedgerEventType = "request_funded"
	EventRequestClaimed    LedgerEventType = "request_claimed"
	EventRebase            LedgerEventType = "rebase"
	EventHarvest           LedgerEventType = "harvest"
	EventEmergencyWithdraw LedgerEventType = "emergency_withdraw"
	EventStrategyUpdated   LedgerEventType = "strategy_updated"
)

// LedgerEvent is the audit record emitted by every state-mutating operation.
type LedgerEvent struct {
	Type          LedgerEventType
	Actor         uuid.UUID
	Controller    *uuid.UUID
	Amount        decimal.Decimal
	ScalingFactor decimal.Decimal
	TotalShares   decimal.Decimal
	Note          *string
	At            time.Time
}
