package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/medportal/medportal/internal/model"
)

// ErrDuplicateEvent is returned when an event ID is already stored.
var ErrDuplicateEvent = errors.New("auth event already recorded")

const uniqueViolation = "23505"

// RecordAuthEvent inserts one audit row.
func (r *Repository) RecordAuthEvent(ctx context.Context, event *model.AuthEvent) error {
	query := `
		INSERT INTO auth_events (id, kind, email, outcome, status_code, client_ip, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		string(event.Kind),
		event.Email,
		string(event.Outcome),
		event.StatusCode,
		event.ClientIP,
		event.RequestID,
		event.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEvent
		}
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}

// ListAuthEvents returns up to limit events, newest first. An empty kinds
// slice matches every kind.
func (r *Repository) ListAuthEvents(ctx context.Context, kinds []string, limit int) ([]*model.AuthEvent, error) {
	query := `
		SELECT id, kind, email, outcome, status_code, client_ip, request_id, created_at
		FROM auth_events
		WHERE cardinality($1::text[]) = 0 OR kind = ANY($1::text[])
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	if kinds == nil {
		kinds = []string{}
	}

	rows, err := r.pool.Query(ctx, query, pq.Array(kinds), limit)
	if err != nil {
		return nil, fmt.Errorf("query auth events: %w", err)
	}
	defer rows.Close()

	events := make([]*model.AuthEvent, 0, limit)
	for rows.Next() {
		event, err := scanAuthEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate auth events: %w", err)
	}
	return events, nil
}

func scanAuthEvent(row pgx.Row) (*model.AuthEvent, error) {
	var (
		e       model.AuthEvent
		kind    string
		outcome string
	)
	if err := row.Scan(
		&e.ID,
		&kind,
		&e.Email,
		&outcome,
		&e.StatusCode,
		&e.ClientIP,
		&e.RequestID,
		&e.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan auth event: %w", err)
	}
	e.Kind = model.AuthEventKind(kind)
	e.Outcome = model.AuthOutcome(outcome)
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}
