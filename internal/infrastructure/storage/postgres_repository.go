package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"mediacontacts/internal/domain"
	"mediacontacts/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository persists imported contacts into Postgres.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.ContactRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// AlreadyImported returns a map with IDs that already exist in storage.
func (r *PostgresRepository) AlreadyImported(ctx context.Context, ids []string) (map[string]bool, error) {
	if r.db == nil || len(ids) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := psql.
		Select("external_id").
		From("imported_contacts").
		Where(sq.Expr("external_id = ANY(?)", pq.StringArray(ids))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build imported query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query imported: %w", err)
	}
	defer rows.Close()

	result := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		result[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// SaveContact upserts the imported contact with its analysis snapshot.
func (r *PostgresRepository) SaveContact(ctx context.Context, record domain.ImportedContact) error {
	if r.db == nil {
		return nil
	}

	var isFreelancer bool
	if record.Analysis.Freelancer != nil {
		isFreelancer = record.Analysis.Freelancer.IsFreelancer
	}

	query, args, err := psql.
		Insert("imported_contacts").
		Columns(
			"external_id", "name", "email", "email_type",
			"primary_beat", "is_freelancer", "overall_score",
			"status", "batch_id", "imported_at",
		).
		Values(
			record.Contact.ID,
			record.Contact.Name,
			record.Contact.Email,
			string(record.Analysis.Email.EmailType),
			record.Analysis.Beat.PrimaryBeat,
			isFreelancer,
			record.Analysis.OverallScore,
			string(record.Status),
			record.BatchID,
			record.ImportedAt,
		).
		Suffix(`ON CONFLICT (external_id) DO UPDATE
            SET email = EXCLUDED.email,
                email_type = EXCLUDED.email_type,
                primary_beat = EXCLUDED.primary_beat,
                is_freelancer = EXCLUDED.is_freelancer,
                overall_score = EXCLUDED.overall_score,
                status = EXCLUDED.status,
                batch_id = EXCLUDED.batch_id,
                updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert contact %s: %w", record.Contact.ID, err)
	}

	return nil
}
