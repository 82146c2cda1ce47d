package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/examlink/examlink-backend/internal/config"
	"github.com/examlink/examlink-backend/internal/loader"
	"github.com/examlink/examlink-backend/internal/model"
	"github.com/examlink/examlink-backend/internal/repository"
	"github.com/examlink/examlink-backend/internal/shortener"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Domain errors.
var (
	ErrAnswerNotInOptions = errors.New("answer does not match any option")
	ErrTooFewOptions      = errors.New("needs at least 2 options")
	ErrNotExamOwner       = errors.New("not the owner of this exam")
)

// ExamService handles exam authoring, payload caching, and share links.
type ExamService struct {
	examRepo  *repository.ExamRepository
	rdb       *redis.Client
	shortener *shortener.Client
	baseURL   string
	log       zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(
	examRepo *repository.ExamRepository,
	rdb *redis.Client,
	short *shortener.Client,
	baseURL string,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		examRepo:  examRepo,
		rdb:       rdb,
		shortener: short,
		baseURL:   strings.TrimRight(baseURL, "/"),
		log:       log.With().Str("component", "exam_service").Logger(),
	}
}

// Create validates and inserts a new exam, then warms its payload cache.
// Authoring defaults mirror the exam builder: empty title becomes
// "Untitled Exam", non-positive duration becomes 30, an empty explanation
// becomes "No explanation.".
func (s *ExamService) Create(ctx context.Context, teacherID uuid.UUID, req *model.CreateExamRequest) (*model.Exam, error) {
	questions := make([]model.Question, len(req.Questions))
	for i, in := range req.Questions {
		options := make([]string, 0, len(in.Options))
		for _, opt := range in.Options {
			if trimmed := strings.TrimSpace(opt); trimmed != "" {
				options = append(options, trimmed)
			}
		}
		if len(options) < 2 {
			return nil, fmt.Errorf("question %d: %w", i+1, ErrTooFewOptions)
		}

		answer := strings.TrimSpace(in.Answer)
		// The scorer compares by exact string equality, so the key must be
		// byte-identical to one option here or the question is unwinnable.
		found := false
		for _, opt := range options {
			if opt == answer {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("question %d: %w", i+1, ErrAnswerNotInOptions)
		}

		explanation := strings.TrimSpace(in.Explanation)
		if explanation == "" {
			explanation = "No explanation."
		}

		questions[i] = model.Question{
			Text:             strings.TrimSpace(in.Text),
			Options:          options,
			Answer:           answer,
			Explanation:      explanation,
			QuestionImage:    in.QuestionImage,
			ExplanationImage: in.ExplanationImage,
		}
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Untitled Exam"
	}
	duration := req.DurationMinutes
	if duration <= 0 {
		duration = model.DefaultDurationMinutes
	}

	exam := &model.Exam{
		TeacherID:       teacherID,
		Title:           title,
		DurationMinutes: duration,
		Questions:       questions,
	}

	if err := s.examRepo.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}

	if err := s.WarmExamCache(ctx, exam); err != nil {
		// The DB row is the source of truth; a cold cache only costs a
		// fallback read on the first student load.
		s.log.Warn().Err(err).Str("exam_id", exam.ID.String()).Msg("Cache warm failed")
	}

	s.log.Info().Str("exam_id", exam.ID.String()).Int("questions", len(questions)).Msg("Exam created")
	return exam, nil
}

// GetByID retrieves an exam, trying the Redis payload cache first and
// falling back to PostgreSQL with a self-heal write-back.
func (s *ExamService) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.ExamPayloadKey(id.String())).Result()
	if err == nil {
		var exam model.Exam
		if jsonErr := json.Unmarshal([]byte(raw), &exam); jsonErr == nil {
			return &exam, nil
		}
		// Corrupt cache entry: fall through to the DB and rewarm.
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("Payload cache read failed, falling back to DB")
	}

	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.WarmExamCache(ctx, exam); err != nil {
		s.log.Debug().Err(err).Str("exam_id", id.String()).Msg("Cache self-heal failed")
	}
	return exam, nil
}

// WarmExamCache writes an exam's full record into Redis.
func (s *ExamService) WarmExamCache(ctx context.Context, exam *model.Exam) error {
	raw, err := json.Marshal(exam)
	if err != nil {
		return fmt.Errorf("marshal exam: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.ExamPayloadKey(exam.ID.String()), raw, 0)
	pipe.Set(ctx, config.CacheKey.ExamTeacherKey(exam.ID.String()), exam.TeacherID.String(), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache to redis: %w", err)
	}
	return nil
}

// PrewarmAllCaches loads every exam into Redis on application startup, so
// exam links never lazy-load under a thundering herd of students.
func (s *ExamService) PrewarmAllCaches(ctx context.Context) error {
	exams, err := s.examRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list exams: %w", err)
	}

	warmed := 0
	for i := range exams {
		if err := s.WarmExamCache(ctx, &exams[i]); err != nil {
			s.log.Warn().Err(err).Str("exam_id", exams[i].ID.String()).Msg("Failed to warm exam, skipping")
			continue
		}
		warmed++
	}

	s.log.Info().Int("warmed", warmed).Int("total", len(exams)).Msg("Prewarming complete")
	return nil
}

// ListByTeacher retrieves a teacher's exams, newest first, capped at 50
// like the dashboard list.
func (s *ExamService) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.Exam, error) {
	exams, err := s.examRepo.ListByTeacher(ctx, teacherID, 50)
	if err != nil {
		return nil, err
	}
	if exams == nil {
		exams = []model.Exam{}
	}
	return exams, nil
}

// Delete removes one exam after an ownership check, and drops its cache.
func (s *ExamService) Delete(ctx context.Context, examID, teacherID uuid.UUID) error {
	affected, err := s.examRepo.Delete(ctx, examID, teacherID)
	if err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}
	if affected == 0 {
		return ErrNotExamOwner
	}
	s.dropCache(ctx, examID)
	return nil
}

// DeleteAllByTeacher removes every exam the teacher owns.
func (s *ExamService) DeleteAllByTeacher(ctx context.Context, teacherID uuid.UUID) (int64, error) {
	exams, err := s.examRepo.ListByTeacher(ctx, teacherID, 1000)
	if err != nil {
		return 0, fmt.Errorf("list exams: %w", err)
	}

	deleted, err := s.examRepo.DeleteAllByTeacher(ctx, teacherID)
	if err != nil {
		return 0, fmt.Errorf("delete exams: %w", err)
	}

	for i := range exams {
		s.dropCache(ctx, exams[i].ID)
	}
	return deleted, nil
}

func (s *ExamService) dropCache(ctx context.Context, examID uuid.UUID) {
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, config.CacheKey.ExamPayloadKey(examID.String()))
	pipe.Del(ctx, config.CacheKey.ExamTeacherKey(examID.String()))
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Cache drop failed")
	}
}

// ShareLink builds the student-facing link for a stored exam and shortens
// it best-effort: on shortener failure the long URL comes back unchanged.
func (s *ExamService) ShareLink(ctx context.Context, examID uuid.UUID) (shortURL, longURL string) {
	longURL = fmt.Sprintf("%s/exam.html?id=%s", s.baseURL, examID)
	return s.shortener.Shorten(ctx, longURL), longURL
}

// PreviewLink encodes a payload into a self-contained `exam?data=` link that
// opens without any stored exam.
func (s *ExamService) PreviewLink(payload *model.ExamPayload) (string, error) {
	encoded, err := loader.EncodePreview(payload)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/exam.html?data=%s", s.baseURL, encoded), nil
}
