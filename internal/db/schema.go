package db

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS activities (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		activity_type TEXT NOT NULL DEFAULT '',
		distance_km DOUBLE PRECISION NOT NULL,
		duration_sec BIGINT NOT NULL,
		average_pace_sec_per_km DOUBLE PRECISION NOT NULL DEFAULT 0,
		calories DOUBLE PRECISION NOT NULL DEFAULT 0,
		elevation_gain_m DOUBLE PRECISION NOT NULL DEFAULT 0,
		start_time TIMESTAMPTZ NOT NULL,
		route JSONB NOT NULL DEFAULT '[]',
		splits JSONB NOT NULL DEFAULT '[]',
		source TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_user_start ON activities (user_id, start_time DESC)`,
}

// EnsureSchema applies the idempotent DDL the activity store relies on.
func EnsureSchema(ctx context.Context, q Querier) error {
	for i, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
