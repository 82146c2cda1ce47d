package model

import (
	"time"

	"github.com/google/uuid"
)

// IntegrityEvent is one flagged signal from an attempt's integrity monitor,
// persisted asynchronously for the teacher-facing audit trail.
type IntegrityEvent struct {
	ID          int64     `json:"id"`
	ExamID      uuid.UUID `json:"exam_id"`
	StudentName string    `json:"student_name"`
	Reason      string    `json:"reason"`
	AttemptNo   int       `json:"attempt_no"`
	RecordedAt  time.Time `json:"recorded_at"`
}
