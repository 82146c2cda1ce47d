package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IntegritySummary aggregates flagged signals per student for one exam.
type IntegritySummary struct {
	StudentName string `json:"student_name"`
	EventCount  int64  `json:"event_count"`
}

// IntegrityRepository handles the integrity-event audit trail.
type IntegrityRepository struct {
	pool *pgxpool.Pool
}

// NewIntegrityRepository creates a new IntegrityRepository.
func NewIntegrityRepository(pool *pgxpool.Pool) *IntegrityRepository {
	return &IntegrityRepository{pool: pool}
}

// CountByStudent returns flagged-event counts per student for an exam.
func (r *IntegrityRepository) CountByStudent(ctx context.Context, examID uuid.UUID) ([]IntegritySummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT student_name, COUNT(*)
		 FROM integrity_events
		 WHERE exam_id = $1
		 GROUP BY student_name
		 ORDER BY COUNT(*) DESC, student_name ASC`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []IntegritySummary
	for rows.Next() {
		var s IntegritySummary
		if err := rows.Scan(&s.StudentName, &s.EventCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
