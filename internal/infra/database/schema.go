package database

import (
	"context"
	"database/sql"
	"fmt"
)

// seq breaks ties between rows sharing a created_at value so listings keep
// insertion order.
const schema = `
CREATE TABLE IF NOT EXISTS leads (
	id                   UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	seq                  BIGSERIAL,
	external_id          TEXT UNIQUE,
	source               TEXT NOT NULL,
	name                 TEXT,
	email                TEXT,
	phone                TEXT,
	departure_city       TEXT,
	destination_city     TEXT,
	travel_dates         TEXT,
	passengers           INTEGER,
	airline_preference   TEXT,
	special_requirements TEXT,
	summary              TEXT NOT NULL,
	transcript           TEXT NOT NULL,
	language             TEXT CHECK (language IN ('en', 'fr')),
	ai_summary           TEXT,
	lead_score           DOUBLE PRECISION,
	score_reasoning      TEXT,
	enriched_at          TIMESTAMPTZ,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);

CREATE INDEX IF NOT EXISTS leads_created_at_idx ON leads (created_at DESC, seq DESC);
`

// EnsureSchema creates the leads table when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
