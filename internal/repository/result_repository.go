package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/examlink/examlink-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResultRepository handles persisted attempt results.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Insert writes one finished attempt.
func (r *ResultRepository) Insert(ctx context.Context, rec *model.ResultRecord) error {
	answers, err := json.Marshal(rec.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO results
		   (exam_id, teacher_id, student_name, score, total_questions,
		    percent, rating, answers, cheating_attempts, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10, $11)
		 RETURNING id`,
		rec.ExamID, rec.TeacherID, rec.StudentName, rec.Score, rec.TotalQuestions,
		rec.Percent, rec.Rating, answers, rec.CheatingAttempts, rec.StartedAt, rec.FinishedAt,
	).Scan(&rec.ID)
}

// ListByExam retrieves all results for one exam, newest first.
func (r *ResultRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.ResultRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, teacher_id, student_name, score, total_questions,
		        percent, rating, answers, cheating_attempts, started_at, finished_at
		 FROM results
		 WHERE exam_id = $1
		 ORDER BY finished_at DESC NULLS LAST`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.ResultRecord
	for rows.Next() {
		var rec model.ResultRecord
		var answers []byte
		if err := rows.Scan(
			&rec.ID, &rec.ExamID, &rec.TeacherID, &rec.StudentName, &rec.Score,
			&rec.TotalQuestions, &rec.Percent, &rec.Rating, &answers,
			&rec.CheatingAttempts, &rec.StartedAt, &rec.FinishedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(answers, &rec.Answers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}
