package repository

import (
	"fmt"

	"github.com/yourusername/trader-arena/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	BetHistory BetHistoryRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		BetHistory: NewPostgresBetHistoryRepository(db),
	}, nil
}
