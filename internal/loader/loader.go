package loader

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/examlink/examlink-backend/internal/model"
	"github.com/google/uuid"
)

// Load failure taxonomy. All three are terminal for the affected load: the
// exam surface shows a static message and no quiz controls.
var (
	// ErrUnconfigured means no record store is available for live lookups.
	ErrUnconfigured = errors.New("record store not configured")
	// ErrNotFound means the identifier resolved to no exam.
	ErrNotFound = errors.New("exam not found")
	// ErrMalformed means the preview data could not be decoded.
	ErrMalformed = errors.New("preview data is malformed")
)

// ExamStore is the narrow read interface the loader needs from the record
// store. The pgx repository satisfies it.
type ExamStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
}

// Source selects one of the two payload origins of an exam link:
// `exam?data=<encoded>` (preview) or `exam?id=<uuid>` (live). PreviewData
// wins when both are set, like the original link handling.
type Source struct {
	PreviewData string
	ExamID      string
}

// Loaded is the normalized result: downstream components are source-agnostic
// and only ever see the payload. TeacherID is set for live loads only and is
// carried into persisted result rows.
type Loaded struct {
	Payload   model.ExamPayload
	ExamID    uuid.UUID // zero for previews
	TeacherID uuid.UUID // zero for previews
	Preview   bool
}

// Loader resolves exam links into immutable payloads.
type Loader struct {
	store ExamStore
}

// New creates a Loader. A nil store is allowed; live loads then fail with
// ErrUnconfigured while previews keep working.
func New(store ExamStore) *Loader {
	return &Loader{store: store}
}

// Load resolves a source into a payload or one of the taxonomy errors.
func (l *Loader) Load(ctx context.Context, src Source) (*Loaded, error) {
	if src.PreviewData != "" {
		payload, err := DecodePreview(src.PreviewData)
		if err != nil {
			return nil, err
		}
		return &Loaded{Payload: *payload, Preview: true}, nil
	}

	if src.ExamID == "" {
		return nil, ErrNotFound
	}
	if l.store == nil {
		return nil, ErrUnconfigured
	}

	id, err := uuid.Parse(src.ExamID)
	if err != nil {
		return nil, ErrNotFound
	}

	exam, err := l.store.GetByID(ctx, id)
	if err != nil || exam == nil {
		// Zero rows and transport errors collapse to the same terminal
		// screen; the distinction is logged by the repository.
		return nil, ErrNotFound
	}

	return &Loaded{
		Payload:   normalize(exam.Title, exam.DurationMinutes, exam.Questions),
		ExamID:    exam.ID,
		TeacherID: exam.TeacherID,
	}, nil
}

// DecodePreview reverses the preview-link encoding: percent-decoding, then
// base64, then JSON. Any failing step yields ErrMalformed.
func DecodePreview(encoded string) (*model.ExamPayload, error) {
	unescaped, err := url.QueryUnescape(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	raw, err := base64.StdEncoding.DecodeString(unescaped)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var payload model.ExamPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	normalized := normalize(payload.Title, payload.DurationMinutes, payload.Questions)
	return &normalized, nil
}

// EncodePreview is the forward direction, used to build `exam?data=` links:
// JSON, then base64, then percent-encoding. DecodePreview(EncodePreview(p))
// reproduces p exactly.
func EncodePreview(payload *model.ExamPayload) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return url.QueryEscape(base64.StdEncoding.EncodeToString(raw)), nil
}

// normalize gives both sources the same shape and applies the duration
// default for absent or non-positive values.
func normalize(title string, duration int, questions []model.Question) model.ExamPayload {
	if title == "" {
		title = "Exam"
	}
	if duration <= 0 {
		duration = model.DefaultDurationMinutes
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return model.ExamPayload{
		Title:           title,
		DurationMinutes: duration,
		Questions:       questions,
	}
}
