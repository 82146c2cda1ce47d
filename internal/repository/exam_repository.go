package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/examlink/examlink-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	var questions []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, teacher_id, title, duration_minutes, questions, created_at
		 FROM exams
		 WHERE id = $1`, id,
	).Scan(&e.ID, &e.TeacherID, &e.Title, &e.DurationMinutes, &questions, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questions, &e.Questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return e, nil
}

// Create inserts a new exam and fills in the generated id and timestamp.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	questions, err := json.Marshal(e.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (teacher_id, title, duration_minutes, questions)
		 VALUES ($1, $2, $3, $4::jsonb)
		 RETURNING id, created_at`,
		e.TeacherID, e.Title, e.DurationMinutes, questions,
	).Scan(&e.ID, &e.CreatedAt)
}

// ListByTeacher retrieves a teacher's exams, newest first.
func (r *ExamRepository) ListByTeacher(ctx context.Context, teacherID uuid.UUID, limit int) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, teacher_id, title, duration_minutes, questions, created_at
		 FROM exams
		 WHERE teacher_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, teacherID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		var questions []byte
		if err := rows.Scan(&e.ID, &e.TeacherID, &e.Title, &e.DurationMinutes, &questions, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(questions, &e.Questions); err != nil {
			return nil, fmt.Errorf("decode questions: %w", err)
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// ListAll retrieves every exam, used to prewarm the payload cache at boot.
func (r *ExamRepository) ListAll(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, teacher_id, title, duration_minutes, questions, created_at
		 FROM exams
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		var questions []byte
		if err := rows.Scan(&e.ID, &e.TeacherID, &e.Title, &e.DurationMinutes, &questions, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(questions, &e.Questions); err != nil {
			return nil, fmt.Errorf("decode questions: %w", err)
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// Delete removes one exam owned by the teacher. Result and integrity rows
// cascade at the schema level. Returns the number of rows removed.
func (r *ExamRepository) Delete(ctx context.Context, id, teacherID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM exams WHERE id = $1 AND teacher_id = $2`, id, teacherID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteAllByTeacher removes every exam the teacher owns.
func (r *ExamRepository) DeleteAllByTeacher(ctx context.Context, teacherID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM exams WHERE teacher_id = $1`, teacherID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
