package affiliations

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	sherrors "github.com/seihyo/seihyo-cli/pkg/errors"
)

// PostgresRepository implements the Repository interface using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL affiliation repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListActive returns open affiliations for the (politician, group) pair,
// ordered by start date.
func (r *PostgresRepository) ListActive(ctx context.Context, politicianID, groupID int64) ([]Affiliation, error) {
	query := `
		SELECT id, politician_id, group_id, start_date, end_date, role
		FROM affiliations
		WHERE politician_id = $1 AND group_id = $2 AND end_date IS NULL
		ORDER BY start_date
	`

	rows, err := r.db.Query(ctx, query, politicianID, groupID)
	if err != nil {
		return nil, fmt.Errorf("listing active affiliations: %w", sherrors.ErrPersistenceFailure)
	}
	defer rows.Close()

	var result []Affiliation
	for rows.Next() {
		var a Affiliation
		if err := rows.Scan(&a.ID, &a.PoliticianID, &a.GroupID, &a.StartDate, &a.EndDate, &a.Role); err != nil {
			return nil, fmt.Errorf("scanning affiliation: %w", err)
		}
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating affiliations: %w", sherrors.ErrPersistenceFailure)
	}

	return result, nil
}

// Close end-dates an affiliation. The end_date IS NULL guard makes
// re-closing an already-closed row a no-op.
func (r *PostgresRepository) Close(ctx context.Context, id int64, endDate time.Time) error {
	query := `
		UPDATE affiliations
		SET end_date = $2
		WHERE id = $1 AND end_date IS NULL
	`

	if _, err := r.db.Exec(ctx, query, id, DateOnly(endDate)); err != nil {
		return fmt.Errorf("closing affiliation %d: %w", id, sherrors.ErrPersistenceFailure)
	}

	return nil
}

// Upsert inserts or updates the row keyed by (politician_id, group_id,
// start_date). The unique key dedupes inserts, so re-running with the same
// input changes nothing.
func (r *PostgresRepository) Upsert(ctx context.Context, in UpsertInput) (bool, error) {
	query := `
		INSERT INTO affiliations (politician_id, group_id, start_date, end_date, role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (politician_id, group_id, start_date)
		DO UPDATE SET end_date = EXCLUDED.end_date, role = EXCLUDED.role
		RETURNING (xmax = 0)
	`

	var created bool
	err := r.db.QueryRow(ctx, query,
		in.PoliticianID,
		in.GroupID,
		DateOnly(in.StartDate),
		in.EndDate,
		in.Role,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("upserting affiliation (%d, %d, %s): %w",
			in.PoliticianID, in.GroupID, DateOnly(in.StartDate).Format("2006-01-02"), sherrors.ErrPersistenceFailure)
	}

	return created, nil
}
