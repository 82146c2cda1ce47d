package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam is a persisted exam a teacher authored and can share by link.
type Exam struct {
	ID              uuid.UUID  `json:"id"`
	TeacherID       uuid.UUID  `json:"teacher_id"`
	Title           string     `json:"title"`
	DurationMinutes int        `json:"duration_minutes"`
	Questions       []Question `json:"questions"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ExamPayload is the normalized, source-agnostic question set a session runs
// against. It is built once per attempt, from a stored exam or from a decoded
// preview link, and never mutated afterward.
type ExamPayload struct {
	Title           string     `json:"title"`
	DurationMinutes int        `json:"duration"`
	Questions       []Question `json:"questions"`
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Title           string          `json:"title" binding:"omitempty,max=255"`
	DurationMinutes int             `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	Questions       []QuestionInput `json:"questions" binding:"required,min=1,dive"`
}

// DefaultDurationMinutes applies when an authored or decoded payload carries
// no usable duration.
const DefaultDurationMinutes = 30
