package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/maumlog/emotion-engine/internal/domain/analysis"
)

// CacheRepository persists classification outputs keyed by
// (content_hash, analysis_type).
type CacheRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewCacheRepository(db *sql.DB) *CacheRepository {
	return &CacheRepository{db: db, now: time.Now}
}

// Get returns the live entry or nil on miss. Expiry is lazy: the query
// filters on expires_at, no active eviction.
func (r *CacheRepository) Get(ctx context.Context, fingerprint string, typ domain.AnalysisType) (*domain.CacheEntry, error) {
	const q = `
SELECT content_hash, analysis_type, input_data, output_data, model_used, confidence_score, created_at, expires_at
FROM analysis_cache
WHERE content_hash=? AND analysis_type=? AND expires_at > ?
LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, fingerprint, typ, r.now())

	var e domain.CacheEntry
	if err := row.Scan(&e.Fingerprint, &e.AnalysisType, &e.InputData, &e.OutputData,
		&e.ModelVersion, &e.Confidence, &e.CreatedAt, &e.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, &domain.CacheError{Op: "get", Err: err}
	}
	return &e, nil
}

// Put upserts on the (content_hash, analysis_type) primary key. Two
// concurrent identical requests must not create two live rows; an existing,
// possibly-expired, entry is overwritten instead (last writer wins).
func (r *CacheRepository) Put(ctx context.Context, e *domain.CacheEntry) error {
	const q = `
INSERT INTO analysis_cache
  (content_hash, analysis_type, input_data, output_data, model_used, confidence_score, created_at, expires_at)
VALUES (?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  input_data=VALUES(input_data), output_data=VALUES(output_data),
  model_used=VALUES(model_used), confidence_score=VALUES(confidence_score),
  created_at=VALUES(created_at), expires_at=VALUES(expires_at);
`
	created := e.CreatedAt
	if created.IsZero() {
		created = r.now()
	}
	_, err := r.db.ExecContext(ctx, q,
		e.Fingerprint, e.AnalysisType, e.InputData, e.OutputData,
		e.ModelVersion, e.Confidence, created, e.ExpiresAt,
	)
	if err != nil {
		return &domain.CacheError{Op: "put", Err: err}
	}
	return nil
}
