package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// CatalogStats summarizes the catalog for diagnostics.
type CatalogStats struct {
	Datasets     int64
	Columns      int64
	TotalEntries int64
}

// StatsRepository reports catalog statistics.
type StatsRepository interface {
	// GetStats returns aggregate counts over the whole catalog.
	GetStats(ctx context.Context) (*CatalogStats, error)
}

// SQLStatsRepository implements StatsRepository with plain SQL; the
// aggregates are cheap enough to run on every CLI invocation.
type SQLStatsRepository struct {
	db *sql.DB
}

// NewSQLStatsRepository creates a new SQLStatsRepository.
func NewSQLStatsRepository(db *sql.DB) *SQLStatsRepository {
	return &SQLStatsRepository{db: db}
}

// GetStats returns aggregate counts over the whole catalog.
func (r *SQLStatsRepository) GetStats(ctx context.Context) (*CatalogStats, error) {
	stats := &CatalogStats{}

	query := `SELECT COUNT(*), COALESCE(SUM(num_entries), 0) FROM datasets`
	if err := r.db.QueryRowContext(ctx, query).Scan(&stats.Datasets, &stats.TotalEntries); err != nil {
		return nil, fmt.Errorf("failed to count datasets: %w", err)
	}

	query = `SELECT COUNT(*) FROM dataset_columns`
	if err := r.db.QueryRowContext(ctx, query).Scan(&stats.Columns); err != nil {
		return nil, fmt.Errorf("failed to count columns: %w", err)
	}

	return stats, nil
}
