package repository

import (
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"yieldpilot/internal/domain"
)

// WithdrawalRequestRepository mirrors the in-memory request ledger for
// durable history. The queue stays the source of truth; writes here are
// best-effort write-through on every state transition.
type WithdrawalRequestRepository interface {
	Upsert(req domain.WithdrawalRequest) error
	ListByOwner(owner uuid.UUID) ([]domain.WithdrawalRequest, error)
}

type withdrawalRequestRepositoryHandler struct {
	Db *sql.DB
}

func NewWithdrawalRequestRepository(db *sql.DB) (WithdrawalRequestRepository, error) {
	h := withdrawalRequestRepositoryHandler{Db: db}
	if err := h.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate withdrawal_requests: %w", err)
	}
	return h, nil
}

func (h withdrawalRequestRepositoryHandler) migrate() error {
	_, err := h.Db.Exec(`CREATE TABLE IF NOT EXISTS withdrawal_requests (
		id           BIGINT PRIMARY KEY,
		owner        UUID NOT NULL,
		amount       NUMERIC NOT NULL,
		requested_at TIMESTAMPTZ NOT NULL,
		funded_at    TIMESTAMPTZ,
		claimed      BOOLEAN NOT NULL DEFAULT FALSE
	)`)
	if err != nil {
		return err
	}
	_, err = h.Db.Exec(`CREATE INDEX IF NOT EXISTS idx_withdrawal_requests_owner ON withdrawal_requests(owner)`)
	return err
}

func (h withdrawalRequestRepositoryHandler) Upsert(req domain.WithdrawalRequest) error {
	_, err := h.Db.Exec(`INSERT INTO withdrawal_requests
		(id, owner, amount, requested_at, funded_at, claimed)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET funded_at = $5, claimed = $6`,
		int64(req.ID), req.Owner, req.Amount, req.RequestedAt, req.FundedAt, req.Claimed,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert withdrawal request %d: %w", req.ID, err)
	}
	return nil
}

func (h withdrawalRequestRepositoryHandler) ListByOwner(owner uuid.UUID) ([]domain.WithdrawalRequest, error) {
	rows, err := h.Db.Query(`SELECT id, owner, amount, requested_at, funded_at, claimed
		FROM withdrawal_requests WHERE owner = $1 ORDER BY id ASC`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawal requests: %w", err)
	}
	defer rows.Close()

	out := []domain.WithdrawalRequest{}
	for rows.Next() {
		var (
			req     domain.WithdrawalRequest
			id      int64
			ownerID string
		)
		if err := rows.Scan(&id, &ownerID, &req.Amount, &req.RequestedAt, &req.FundedAt, &req.Claimed); err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal request: %w", err)
		}
		req.ID = uint64(id)
		req.Owner, err = uuid.Parse(ownerID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse request owner: %w", err)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

type inMemoryWithdrawalRequestRepository struct {
	mu       sync.Mutex
	requests map[uint64]domain.WithdrawalRequest
}

func NewInMemoryWithdrawalRequestRepository() WithdrawalRequestRepository {
	return &inMemoryWithdrawalRequestRepository{
		requests: map[uint64]domain.WithdrawalRequest{},
	}
}

func (h *inMemoryWithdrawalRequestRepository) Upsert(req domain.WithdrawalRequest) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests[req.ID] = req
	return nil
}

func (h *inMemoryWithdrawalRequestRepository) ListByOwner(owner uuid.UUID) ([]domain.WithdrawalRequest, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := []domain.WithdrawalRequest{}
	for _, req := range h.requests {
		if req.Owner == owner {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
