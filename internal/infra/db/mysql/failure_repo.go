package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/maumlog/emotion-engine/internal/domain/analysis"
)

type FailureRepository struct {
	db *sql.DB
}

func NewFailureRepository(db *sql.DB) *FailureRepository {
	return &FailureRepository{db: db}
}

// Save inserts a degraded-phase record
func (r *FailureRepository) Save(ctx context.Context, f *domain.Failure) error {
	const q = `
INSERT INTO analysis_failures (subject_id, interaction_id, phase, message, created_at)
VALUES (?,?,?,?,?);
`
	created := f.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		stringOrDash(f.SubjectID), f.InteractionID, f.Phase, f.Message, created)
	return err
}

// ListBySubject returns recent failures, newest first
func (r *FailureRepository) ListBySubject(ctx context.Context, subject string, limit int) ([]*domain.Failure, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, subject_id, interaction_id, phase, message, created_at
FROM analysis_failures
WHERE subject_id=?
ORDER BY created_at DESC, id DESC
LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, subject, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Failure
	for rows.Next() {
		var f domain.Failure
		if err := rows.Scan(&f.ID, &f.SubjectID, &f.InteractionID, &f.Phase, &f.Message, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
