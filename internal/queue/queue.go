// Package queue implements the two-phase withdrawal queue. A request is
// recorded when shares are burned, becomes claimable once explicitly funded
// against the queue's asset balance, and pays out exactly once. The request
// ledger is append-only; claimed requests stay as history.
package queue

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"yieldpilot/internal/bank"
	"yieldpilot/internal/domain"
)

type Queue struct {
	token   *bank.Token
	account uuid.UUID

	mu           sync.Mutex
	orchestrator uuid.UUID
	nextID       uint64
	requests     map[uint64]*domain.WithdrawalRequest
	order        []uint64
	byOwner      map[uuid.UUID][]uint64
	// reserved is the total already promised to funded-but-unclaimed
	// requests. Funding decisions run against balance minus reserved, so
	// one asset unit can never back two requests.
	reserved decimal.Decimal

	log *zap.SugaredLogger
}

func NewQueue(token *bank.Token, log *zap.SugaredLogger) *Queue {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Queue{
		token:    token,
		account:  uuid.New(),
		nextID:   1,
		requests: map[uint64]*domain.WithdrawalRequest{},
		byOwner:  map[uuid.UUID][]uint64{},
		log:      log,
	}
}

func (q *Queue) Account() uuid.UUID { return q.account }
func (q *Queue) Token() *bank.Token { return q.token }

// BindOrchestrator sets the only account allowed to record requests.
func (q *Queue) BindOrchestrator(account uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.orchestrator = account
}

// RequestWithdraw records a redemption intent for owner. Ids are sequential
// and never reused.
func (q *Queue) RequestWithdraw(caller, owner uuid.UUID, amount decimal.Decimal) (uint64, error) {
	if !domain.IsPositiveAmount(amount) {
		return 0, fmt.Errorf("failed to request withdrawal: %w", domain.ErrInvalidAmount)
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if caller != q.orchestrator {
		return 0, fmt.Errorf("failed to request withdrawal: caller %s is not the orchestrator: %w", caller, domain.ErrUnauthorized)
	}

	id := q.nextID
	q.nextID++
	q.requests[id] = &domain.WithdrawalRequest{
		ID:          id,
		Owner:       owner,
		Amount:      amount,
		RequestedAt: time.Now().UTC(),
	}
	q.order = append(q.order, id)
	q.byOwner[owner] = append(q.byOwner[owner], id)
	return id, nil
}

// Fund marks a request claimable once the queue's unreserved balance covers
// it. Requests may be funded in any order; funding an already-funded
// request is a no-op. FIFO is available to operators via NextUnfunded but
// is not enforced here.
func (q *Queue) Fund(id uint64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.fundLocked(id)
}

func (q *Queue) fundLocked(id uint64) error {
	req, ok := q.requests[id]
	if !ok {
		return fmt.Errorf("failed to fund request %d: %w", id, domain.ErrRequestNotFound)
	}
	if req.Funded() {
		return nil
	}
	available := q.token.BalanceOf(q.account).Sub(q.reserved)
	if available.LessThan(req.Amount) {
		return fmt.Errorf("failed to fund request %d for %s, %s available: %w", id, req.Amount, available, domain.ErrInsufficientLiquidity)
	}
	now := time.Now().UTC()
	req.FundedAt = &now
	q.reserved = q.reserved.Add(req.Amount)
	q.log.Infow("withdrawal request funded", "id", id, "owner", req.Owner.String(), "amount", req.Amount.String())
	return nil
}

// FundAvailable funds unfunded requests in id order until the unreserved
// balance runs out, and returns the funded ids.
func (q *Queue) FundAvailable() []uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	funded := []uint64{}
	for _, id := range q.order {
		req := q.requests[id]
		if req.Funded() {
			continue
		}
		if err := q.fundLocked(id); err != nil {
			break
		}
		funded = append(funded, id)
	}
	return funded
}

// NextUnfunded returns the lowest unfunded request id, if any.
func (q *Queue) NextUnfunded() (uint64, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, id := range q.order {
		if !q.requests[id].Funded() {
			return id, true
		}
	}
	return 0, false
}

// Claim pays out a funded request to its owner, exactly once.
func (q *Queue) Claim(caller uuid.UUID, id uint64) (decimal.Decimal, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	req, ok := q.requests[id]
	if !ok {
		return decimal.Zero, fmt.Errorf("failed to claim request %d: %w", id, domain.ErrRequestNotFound)
	}
	if caller != req.Owner {
		return decimal.Zero, fmt.Errorf("failed to claim request %d: caller %s is not the owner: %w", id, caller, domain.ErrUnauthorized)
	}
	if !req.Funded() {
		return decimal.Zero, fmt.Errorf("failed to claim request %d: %w", id, domain.ErrNotFunded)
	}
	if req.Claimed {
		return decimal.Zero, fmt.Errorf("failed to claim request %d: %w", id, domain.ErrAlreadyClaimed)
	}
	if err := q.token.Transfer(q.account, req.Owner, req.Amount); err != nil {
		return decimal.Zero, fmt.Errorf("failed to pay out request %d: %w", id, err)
	}
	req.Claimed = true
	q.reserved = q.reserved.Sub(req.Amount)
	q.log.Infow("withdrawal request claimed", "id", id, "owner", req.Owner.String(), "amount", req.Amount.String())
	return req.Amount, nil
}

// GetRequest returns a copy of one request.
func (q *Queue) GetRequest(id uint64) (*domain.WithdrawalRequest, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	req, ok := q.requests[id]
	if !ok {
		return nil, fmt.Errorf("failed to get request %d: %w", id, domain.ErrRequestNotFound)
	}
	return req.DeepCopy(), nil
}

// RequestsOf returns the owner's full request history in creation order,
// claimed requests included.
func (q *Queue) RequestsOf(owner uuid.UUID) []*domain.WithdrawalRequest {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*domain.WithdrawalRequest, 0, len(q.byOwner[owner]))
	for _, id := range q.byOwner[owner] {
		out = append(out, q.requests[id].DeepCopy())
	}
	return out
}

// PendingAmount is the total requested but not yet funded.
func (q *Queue) PendingAmount() decimal.Decimal {
	q.mu.Lock()
	defer q.mu.Unlock()
	total := decimal.Zero
	for _, id := range q.order {
		if req := q.requests[id]; !req.Funded() {
			total = total.Add(req.Amount)
		}
	}
	return total
}

// Reserved is the total promised to funded-but-unclaimed requests.
func (q *Queue) Reserved() decimal.Decimal {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.reserved
}
