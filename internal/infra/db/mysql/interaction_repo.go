package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/maumlog/emotion-engine/internal/domain/analysis"
)

type InteractionRepository struct {
	db *sql.DB
}

func NewInteractionRepository(db *sql.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// Save insert/update interaction record
func (r *InteractionRepository) Save(ctx context.Context, it *domain.Interaction) error {
	const q = `
INSERT INTO interactions
  (id, subject_id, analysis_type, primary_emotion, mood_score,
   cached, degraded, safety_tripped, matched_category, media_url,
   processing_ms, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  primary_emotion=VALUES(primary_emotion), mood_score=VALUES(mood_score),
  cached=VALUES(cached), degraded=VALUES(degraded),
  media_url=VALUES(media_url), processing_ms=VALUES(processing_ms);
`
	subject := stringOrDash(it.SubjectID)
	created := it.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		it.ID, subject, it.AnalysisType, it.PrimaryEmotion, it.MoodScore,
		it.Cached, it.Degraded, it.SafetyTripped, it.MatchedCategory, it.MediaURL,
		it.ProcessingMS, created,
	)
	return err
}

// Paginate returns a page of interactions ordered by created_at desc
func (r *InteractionRepository) Paginate(ctx context.Context, subject string, page, pageSize int) ([]*domain.Interaction, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, subject_id, analysis_type, primary_emotion, mood_score,
       cached, degraded, safety_tripped, matched_category, media_url,
       processing_ms, created_at
FROM interactions
WHERE subject_id=?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, subject, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Interaction
	for rows.Next() {
		var it domain.Interaction
		if err := rows.Scan(
			&it.ID, &it.SubjectID, &it.AnalysisType, &it.PrimaryEmotion, &it.MoodScore,
			&it.Cached, &it.Degraded, &it.SafetyTripped, &it.MatchedCategory, &it.MediaURL,
			&it.ProcessingMS, &it.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}

// Summary counts interactions per coarse label over the last N days.
// Safety-tripped rows are excluded; they carry no emotion.
func (r *InteractionRepository) Summary(ctx context.Context, subject string, sinceDays int) (map[string]int, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	const q = `
SELECT primary_emotion, COUNT(*)
FROM interactions
WHERE subject_id=? AND safety_tripped=0 AND primary_emotion <> ''
  AND created_at >= DATE_SUB(NOW(), INTERVAL ? DAY)
GROUP BY primary_emotion;
`
	rows, err := r.db.QueryContext(ctx, q, subject, sinceDays)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, err
		}
		out[label] = count
	}
	return out, rows.Err()
}
