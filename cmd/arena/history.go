package main

import (
	"context"
	"fmt"

	"github.com/yourusername/trader-arena/internal/database"
	"github.com/yourusername/trader-arena/internal/repository"
)

// openHistory connects the bet history mirror. It returns nil repositories
// when the database is disabled.
func openHistory(ctx context.Context) (*repository.Repositories, *database.DB, error) {
	if !cfg.Database.Enabled {
		return nil, nil, nil
	}

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return repos, db, nil
}
