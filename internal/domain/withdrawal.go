package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WithdrawalRequest is one entry in the append-only redemption ledger.
// Requests only move forward: requested -> funded -> claimed. There is no
// cancel state; the owner's shares are already burned by the time the
// request exists, so it must eventually be funded and claimed.
type WithdrawalRequest struct {
	ID          uint64          `json:"id" csv:"id"`
	Owner       uuid.UUID       `json:"owner" csv:"owner"`
	Amount      decimal.Decimal `json:"amount" csv:"amount"`
	RequestedAt time.Time       `json:"requestedAt" csv:"requested_at"`
	FundedAt    *time.Time      `json:"fundedAt,omitempty" csv:"funded_at"`
	Claimed     bool            `json:"claimed" csv:"claimed"`
}

func (r WithdrawalRequest) Funded() bool {
	return r.FundedAt != nil
}

func (r WithdrawalRequest) DeepCopy() *WithdrawalRequest {
	out := r
	if r.FundedAt != nil {
		t := *r.FundedAt
		out.FundedAt = &t
	}
	return &out
}
