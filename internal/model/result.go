package model

import (
	"time"

	"github.com/google/uuid"
)

// ResultRecord is one finished attempt, persisted best-effort when a session
// reaches its terminal state. A write failure never blocks the student from
// seeing their score.
type ResultRecord struct {
	ID               uuid.UUID  `json:"id"`
	ExamID           uuid.UUID  `json:"exam_id"`
	TeacherID        uuid.UUID  `json:"teacher_id"`
	StudentName      string     `json:"student_name"`
	Score            int        `json:"score"`
	TotalQuestions   int        `json:"total_questions"`
	Percent          int        `json:"percent"`
	Rating           string     `json:"rating"`
	Answers          []string   `json:"answers"`
	CheatingAttempts int        `json:"cheating_attempts"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
}
