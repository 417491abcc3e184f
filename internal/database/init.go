// Package database manages the optional PostgreSQL bet history store.
package database

import (
	"context"
	"fmt"

	"github.com/yourusername/trader-arena/internal/config"
)

// Schema creates the bet history table. Amounts are lamports.
const Schema = `
CREATE TABLE IF NOT EXISTS bet_history (
	id                    TEXT PRIMARY KEY,
	pool_id               TEXT NOT NULL,
	wallet_address        TEXT NOT NULL,
	trader_choice         SMALLINT NOT NULL,
	amount                BIGINT NOT NULL,
	odds                  DOUBLE PRECISION NOT NULL DEFAULT 0,
	potential_payout      BIGINT NOT NULL DEFAULT 0,
	status                TEXT NOT NULL,
	transaction_signature TEXT NOT NULL DEFAULT '',
	settled_amount        BIGINT,
	created_at            TIMESTAMPTZ NOT NULL,
	settled_at            TIMESTAMPTZ,
	recorded_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS bet_history_wallet_idx ON bet_history (wallet_address, created_at DESC);
CREATE INDEX IF NOT EXISTS bet_history_pool_idx ON bet_history (pool_id);
`

// Initialize connects to the configured database and ensures the schema.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply bet history schema: %w", err)
	}

	return db, nil
}
