package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/trader-arena/internal/database"
	"github.com/yourusername/trader-arena/internal/models"
)

const betColumns = `id, pool_id, wallet_address, trader_choice, amount, odds, potential_payout,
		       status, transaction_signature, settled_amount, created_at, settled_at`

var _ BetHistoryRepository = (*PostgresBetHistoryRepository)(nil)

// PostgresBetHistoryRepository implements BetHistoryRepository for PostgreSQL
type PostgresBetHistoryRepository struct {
	db database.DBTX
}

// NewPostgresBetHistoryRepository creates a new bet history repository
func NewPostgresBetHistoryRepository(db database.DBTX) *PostgresBetHistoryRepository {
	return &PostgresBetHistoryRepository{db: db}
}

// Record inserts a bet, or refreshes its status and settlement if it was
// recorded before.
func (r *PostgresBetHistoryRepository) Record(ctx context.Context, bet *models.Bet) error {
	if bet == nil || bet.ID == "" {
		return fmt.Errorf("%w: bet id is required", models.ErrInvalidInput)
	}

	query := `
		INSERT INTO bet_history (id, pool_id, wallet_address, trader_choice, amount, odds, potential_payout,
		                         status, transaction_signature, settled_amount, created_at, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			transaction_signature = EXCLUDED.transaction_signature,
			settled_amount = EXCLUDED.settled_amount,
			settled_at = EXCLUDED.settled_at,
			recorded_at = NOW()
	`

	createdAt := bet.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var settled *int64
	if bet.SettledAmount != nil {
		v := int64(*bet.SettledAmount)
		settled = &v
	}

	_, err := r.db.Exec(ctx, query,
		bet.ID, bet.PoolID, bet.WalletAddress, int16(bet.TraderChoice), int64(bet.Amount), bet.Odds,
		int64(bet.PotentialPayout), string(bet.Status), bet.TransactionSignature, settled, createdAt, bet.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record bet: %w", err)
	}
	return nil
}

// GetByID retrieves a bet by ID
func (r *PostgresBetHistoryRepository) GetByID(ctx context.Context, id string) (*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bet_history WHERE id = $1`

	bet, err := scanBet(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	return bet, nil
}

// ListByWallet returns a wallet's most recent bets, newest first
func (r *PostgresBetHistoryRepository) ListByWallet(ctx context.Context, wallet string, limit int) ([]*models.Bet, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT ` + betColumns + `
		FROM bet_history
		WHERE wallet_address = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.list(ctx, "wallet", query, wallet, limit)
}

// ListByPool returns every recorded bet on a pool
func (r *PostgresBetHistoryRepository) ListByPool(ctx context.Context, poolID string) ([]*models.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bet_history
		WHERE pool_id = $1
		ORDER BY created_at ASC
	`
	return r.list(ctx, "pool", query, poolID)
}

// Delete removes a bet from the mirror
func (r *PostgresBetHistoryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bet_history WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *PostgresBetHistoryRepository) list(ctx context.Context, by, query string, args ...interface{}) ([]*models.Bet, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets by %s: %w", by, err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}
	return bets, rows.Err()
}

func scanBet(row pgx.Row) (*models.Bet, error) {
	var (
		bet       models.Bet
		choice    int16
		amount    int64
		payout    int64
		status    string
		settled   *int64
		settledAt *time.Time
	)
	err := row.Scan(
		&bet.ID, &bet.PoolID, &bet.WalletAddress, &choice, &amount, &bet.Odds, &payout,
		&status, &bet.TransactionSignature, &settled, &bet.CreatedAt, &settledAt,
	)
	if err != nil {
		return nil, err
	}

	bet.TraderChoice = models.TraderChoice(choice)
	bet.Amount = models.Lamports(amount)
	bet.PotentialPayout = models.Lamports(payout)
	bet.Status = models.BetStatus(status)
	if settled != nil {
		v := models.Lamports(*settled)
		bet.SettledAmount = &v
	}
	bet.SettledAt = settledAt
	return &bet, nil
}
