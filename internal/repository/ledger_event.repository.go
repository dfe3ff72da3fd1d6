package repository

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"yieldpilot/internal/domain"
)

type LedgerEventRepository interface {
	Add(event domain.LedgerEvent) error
	List(filter LedgerEventListFilter) ([]domain.LedgerEvent, error)
}

type LedgerEventListFilter struct {
	EventTypes []domain.LedgerEventType
	Actor      *uuid.UUID
}

type ledgerEventRepositoryHandler struct {
	Db *sql.DB
}

func NewLedgerEventRepository(db *sql.DB) (LedgerEventRepository, error) {
	h := ledgerEventRepositoryHandler{Db: db}
	if err := h.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate ledger_events: %w", err)
	}
	return h, nil
}

func (h ledgerEventRepositoryHandler) migrate() error {
	_, err := h.Db.Exec(`CREATE TABLE IF NOT EXISTS ledger_events (
		id             BIGSERIAL PRIMARY KEY,
		event_type     TEXT NOT NULL,
		actor          UUID NOT NULL,
		controller     UUID,
		amount         NUMERIC NOT NULL,
		scaling_factor NUMERIC NOT NULL,
		total_shares   NUMERIC NOT NULL,
		note           TEXT,
		created_at     TIMESTAMPTZ NOT NULL
	)`)
	if err != nil {
		return err
	}
	_, err = h.Db.Exec(`CREATE INDEX IF NOT EXISTS idx_ledger_events_actor ON ledger_events(actor)`)
	return err
}

func (h ledgerEventRepositoryHandler) Add(event domain.LedgerEvent) error {
	_, err := h.Db.Exec(`INSERT INTO ledger_events
		(event_type, actor, controller, amount, scaling_factor, total_shares, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(event.Type), event.Actor, uuidPtrToString(event.Controller),
		event.Amount, event.ScalingFactor, event.TotalShares,
		event.Note, event.At,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger event: %w", err)
	}
	return nil
}

func (h ledgerEventRepositoryHandler) List(filter LedgerEventListFilter) ([]domain.LedgerEvent, error) {
	query := `SELECT event_type, actor, controller, amount, scaling_factor, total_shares, note, created_at
		FROM ledger_events WHERE 1=1`
	args := []any{}
	if filter.Actor != nil {
		args = append(args, *filter.Actor)
		query += fmt.Sprintf(" AND actor = $%d", len(args))
	}
	if len(filter.EventTypes) > 0 {
		placeholders := ""
		for i, et := range filter.EventTypes {
			args = append(args, string(et))
			if i > 0 {
				placeholders += ", "
			}
			placeholders += fmt.Sprintf("$%d", len(args))
		}
		query += fmt.Sprintf(" AND event_type IN (%s)", placeholders)
	}
	query += " ORDER BY id ASC"

	rows, err := h.Db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger events: %w", err)
	}
	defer rows.Close()

	out := []domain.LedgerEvent{}
	for rows.Next() {
		var (
			event      domain.LedgerEvent
			eventType  string
			actor      string
			controller *string
		)
		err := rows.Scan(&eventType, &actor, &controller,
			&event.Amount, &event.ScalingFactor, &event.TotalShares,
			&event.Note, &event.At)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger event: %w", err)
		}
		event.Type = domain.LedgerEventType(eventType)
		event.Actor, err = uuid.Parse(actor)
		if err != nil {
			return nil, fmt.Errorf("failed to parse event actor: %w", err)
		}
		if controller != nil {
			id, err := uuid.Parse(*controller)
			if err != nil {
				return nil, fmt.Errorf("failed to parse event controller: %w", err)
			}
			event.Controller = &id
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

func uuidPtrToString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// inMemoryLedgerEventRepository backs DB-less runs and tests.
type inMemoryLedgerEventRepository struct {
	mu     sync.Mutex
	events []domain.LedgerEvent
}

func NewInMemoryLedgerEventRepository() LedgerEventRepository {
	return &inMemoryLedgerEventRepository{}
}

func (h *inMemoryLedgerEventRepository) Add(event domain.LedgerEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *inMemoryLedgerEventRepository) List(filter LedgerEventListFilter) ([]domain.LedgerEvent, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := []domain.LedgerEvent{}
	for _, e := range h.events {
		if filter.Actor != nil && e.Actor != *filter.Actor {
			continue
		}
		if len(filter.EventTypes) > 0 {
			match := false
			for _, et := range filter.EventTypes {
				if e.Type == et {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, e)
	}
	return out, nil
}
