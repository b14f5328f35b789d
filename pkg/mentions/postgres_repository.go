package mentions

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	sherrors "github.com/seihyo/seihyo-cli/pkg/errors"
)

// PostgresRepository implements the Repository interface using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL mention repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const mentionColumns = `
	id, group_context_id, extracted_name, extracted_party_name,
	extracted_role, source_url, extracted_at, matched_politician_id,
	matching_confidence, matching_status, matched_at
`

// ListPending returns pending mentions ordered by id.
func (r *PostgresRepository) ListPending(ctx context.Context, groupID *int64) ([]ExtractedMention, error) {
	return r.listByStatus(ctx, StatusPending, groupID)
}

// ListMatched returns matched mentions ordered by id.
func (r *PostgresRepository) ListMatched(ctx context.Context, groupID *int64) ([]ExtractedMention, error) {
	return r.listByStatus(ctx, StatusMatched, groupID)
}

func (r *PostgresRepository) listByStatus(ctx context.Context, status MatchingStatus, groupID *int64) ([]ExtractedMention, error) {
	query := `
		SELECT ` + mentionColumns + `
		FROM extracted_mentions
		WHERE matching_status = $1
	`
	args := []interface{}{string(status)}

	if groupID != nil {
		query += " AND group_context_id = $2"
		args = append(args, *groupID)
	}

	query += " ORDER BY id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s mentions: %w", status, err)
	}
	defer rows.Close()

	var result []ExtractedMention
	for rows.Next() {
		m, err := scanMention(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mentions: %w", err)
	}

	return result, nil
}

// UpdateClassification persists a classification outcome for one mention.
func (r *PostgresRepository) UpdateClassification(ctx context.Context, id int64, in ClassificationInput) error {
	if err := in.Validate(); err != nil {
		return fmt.Errorf("%w: %v", sherrors.ErrValidation, err)
	}

	query := `
		UPDATE extracted_mentions
		SET matched_politician_id = $2,
			matching_confidence = $3,
			matching_status = $4,
			matched_at = $5
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		id,
		in.PoliticianID,
		in.Confidence,
		string(in.Status),
		in.MatchedAt,
	)
	if err != nil {
		return fmt.Errorf("updating mention %d classification: %w", id, sherrors.ErrPersistenceFailure)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mention %d: %w", id, sherrors.ErrNotFound)
	}

	return nil
}

// StatusCounts returns mention counts by status for the optional group filter.
func (r *PostgresRepository) StatusCounts(ctx context.Context, groupID *int64) (SummaryCounts, error) {
	query := `
		SELECT matching_status, COUNT(*)
		FROM extracted_mentions
	`
	var args []interface{}
	if groupID != nil {
		query += " WHERE group_context_id = $1"
		args = append(args, *groupID)
	}
	query += " GROUP BY matching_status"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return SummaryCounts{}, fmt.Errorf("counting mentions by status: %w", err)
	}
	defer rows.Close()

	var counts SummaryCounts
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return SummaryCounts{}, fmt.Errorf("scanning status count: %w", err)
		}
		switch MatchingStatus(status) {
		case StatusPending:
			counts.Pending = n
		case StatusMatched:
			counts.Matched = n
		case StatusNeedsReview:
			counts.NeedsReview = n
		case StatusNoMatch:
			counts.NoMatch = n
		}
		counts.Total += n
	}

	if err := rows.Err(); err != nil {
		return SummaryCounts{}, fmt.Errorf("iterating status counts: %w", err)
	}

	return counts, nil
}

func scanMention(row pgx.Row) (*ExtractedMention, error) {
	var m ExtractedMention
	var status string

	err := row.Scan(
		&m.ID,
		&m.GroupContextID,
		&m.ExtractedName,
		&m.ExtractedPartyName,
		&m.ExtractedRole,
		&m.SourceURL,
		&m.ExtractedAt,
		&m.MatchedPoliticianID,
		&m.MatchingConfidence,
		&status,
		&m.MatchedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning mention: %w", err)
	}

	m.MatchingStatus = MatchingStatus(status)
	return &m, nil
}
