package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diana-hep/femtocode/pkg/config"
)

func TestSQLStatsRepository_GetStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSQLStatsRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(num_entries\), 0\) FROM datasets`).
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(int64(3), int64(4500)))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM dataset_columns`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(12)))

	stats, err := repo.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Datasets)
	assert.Equal(t, int64(4500), stats.TotalEntries)
	assert.Equal(t, int64(12), stats.Columns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStatsRepository_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSQLStatsRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(num_entries\), 0\) FROM datasets`).
		WillReturnError(context.DeadlineExceeded)

	_, err = repo.GetStats(context.Background())
	assert.Error(t, err)
}

func TestNewGormDB_UnsupportedType(t *testing.T) {
	_, err := NewGormDB(&config.DatabaseConfig{Type: "oracle"})
	assert.Error(t, err)
}
