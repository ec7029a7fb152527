package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists domain events in Postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

// Insert writes the event and returns it with its generated id and timestamp.
func (s *PGStore) Insert(ctx context.Context, topic, aggregateID string, payload []byte) (Event, error) {
	if s == nil || s.Pool == nil {
		return Event{}, errors.New("events: pool not configured")
	}
	var ev Event
	err := s.Pool.QueryRow(ctx,
		`INSERT INTO domain_events (topic, aggregate_id, payload)
		 VALUES ($1, $2, $3)
		 RETURNING id, topic, aggregate_id, payload, occurred_at`,
		topic, aggregateID, payload,
	).Scan(&ev.ID, &ev.Topic, &ev.AggregateID, &ev.Payload, &ev.OccurredAt)
	if err != nil {
		return Event{}, fmt.Errorf("insert domain event: %w", err)
	}
	return ev, nil
}
