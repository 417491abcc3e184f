package repository

import (
	"context"

	"github.com/yourusername/trader-arena/internal/models"
)

// BetHistoryRepository defines the interface for the local bet history mirror
type BetHistoryRepository interface {
	Record(ctx context.Context, bet *models.Bet) error
	GetByID(ctx context.Context, id string) (*models.Bet, error)
	ListByWallet(ctx context.Context, wallet string, limit int) ([]*models.Bet, error)
	ListByPool(ctx context.Context, poolID string) ([]*models.Bet, error)
	Delete(ctx context.Context, id string) error
}
