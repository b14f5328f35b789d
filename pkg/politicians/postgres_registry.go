package politicians

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	sherrors "github.com/seihyo/seihyo-cli/pkg/errors"
)

// PostgresRegistry implements the Registry interface using PostgreSQL.
type PostgresRegistry struct {
	db *pgxpool.Pool
}

// NewPostgresRegistry creates a new PostgreSQL registry.
func NewPostgresRegistry(db *pgxpool.Pool) *PostgresRegistry {
	return &PostgresRegistry{db: db}
}

// SearchByName finds politicians by exact name match, ordered by id so that
// repeated calls return candidates in the same order.
func (r *PostgresRegistry) SearchByName(ctx context.Context, name string) ([]Politician, error) {
	query := `
		SELECT id, name, party_name, position, prefecture
		FROM politicians
		WHERE name = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("searching politicians by name: %w", sherrors.ErrRegistryUnavailable)
	}
	defer rows.Close()

	return scanPoliticians(rows)
}

// SearchByPartialName finds politicians whose name contains the given string,
// capped at limit results and ordered by id for stability.
func (r *PostgresRegistry) SearchByPartialName(ctx context.Context, name string, limit int) ([]Politician, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT id, name, party_name, position, prefecture
		FROM politicians
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY id
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, name, limit)
	if err != nil {
		return nil, fmt.Errorf("searching politicians by partial name: %w", sherrors.ErrRegistryUnavailable)
	}
	defer rows.Close()

	return scanPoliticians(rows)
}

func scanPoliticians(rows pgx.Rows) ([]Politician, error) {
	var result []Politician
	for rows.Next() {
		var p Politician
		if err := rows.Scan(&p.ID, &p.Name, &p.PartyName, &p.Position, &p.Prefecture); err != nil {
			return nil, fmt.Errorf("scanning politician: %w", err)
		}
		result = append(result, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating politicians: %w", sherrors.ErrRegistryUnavailable)
	}

	return result, nil
}
