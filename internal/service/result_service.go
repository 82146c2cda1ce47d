package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/examlink/examlink-backend/internal/config"
	"github.com/examlink/examlink-backend/internal/model"
	"github.com/examlink/examlink-backend/internal/repository"
	"github.com/examlink/examlink-backend/internal/session"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ResultService persists finished attempts and integrity events. Writes from
// the student path are fire-and-forget through Redis queues; the background
// workers flush them to PostgreSQL, so a slow or down database never blocks
// a student from seeing their score.
type ResultService struct {
	resultRepo    *repository.ResultRepository
	integrityRepo *repository.IntegrityRepository
	rdb           *redis.Client
	log           zerolog.Logger
}

// NewResultService creates a new ResultService.
func NewResultService(
	resultRepo *repository.ResultRepository,
	integrityRepo *repository.IntegrityRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *ResultService {
	return &ResultService{
		resultRepo:    resultRepo,
		integrityRepo: integrityRepo,
		rdb:           rdb,
		log:           log.With().Str("component", "result_service").Logger(),
	}
}

// QueueResult enqueues one finished attempt for persistence. Preview
// attempts (no exam id) are skipped, there is no exam row to attach them
// to. Failures are logged and swallowed.
func (s *ResultService) QueueResult(ctx context.Context, rec *model.ResultRecord) {
	if rec.ExamID == uuid.Nil {
		return
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		s.log.Error().Err(err).Msg("Result marshal failed, dropping")
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw).Err(); err != nil {
		s.log.Warn().Err(err).Str("exam_id", rec.ExamID.String()).Msg("Result enqueue failed, dropping")
	}
}

// QueueIntegrityEvent enqueues one flagged monitor signal for the audit
// trail. Same best-effort contract as QueueResult.
func (s *ResultService) QueueIntegrityEvent(ctx context.Context, examID uuid.UUID, studentName string, reason session.Reason, attemptNo int) {
	if examID == uuid.Nil {
		return
	}

	raw, err := json.Marshal(model.IntegrityEvent{
		ExamID:      examID,
		StudentName: studentName,
		Reason:      string(reason),
		AttemptNo:   attemptNo,
		RecordedAt:  time.Now(),
	})
	if err != nil {
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistIntegrityEventsQueue, raw).Err(); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Integrity event enqueue failed, dropping")
	}
}

// ListByExam retrieves persisted results for a teacher's exam.
func (s *ResultService) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.ResultRecord, error) {
	results, err := s.resultRepo.ListByExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []model.ResultRecord{}
	}
	return results, nil
}

// IntegritySummary retrieves flagged-event counts per student for an exam.
func (s *ResultService) IntegritySummary(ctx context.Context, examID uuid.UUID) ([]repository.IntegritySummary, error) {
	summaries, err := s.integrityRepo.CountByStudent(ctx, examID)
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []repository.IntegritySummary{}
	}
	return summaries, nil
}
