package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PathIndex lists the file paths recorded for plan versions. The orphan
// audit reads it through the pgx pool.
type PathIndex struct {
	db *pgxpool.Pool
}

func NewPathIndex(db *pgxpool.Pool) *PathIndex {
	return &PathIndex{db: db}
}

func (i *PathIndex) FilePaths(ctx context.Context) ([]string, error) {
	rows, err := i.db.Query(ctx, `SELECT file_path FROM plan_versions ORDER BY file_path;`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
