package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examlink/examlink-backend/internal/loader"
	"github.com/examlink/examlink-backend/internal/middleware"
	"github.com/examlink/examlink-backend/internal/model"
	"github.com/examlink/examlink-backend/internal/response"
)

// PortalHandler serves the public exam surface: resolving an exam link into
// a student-visible payload before the WebSocket session starts.
type PortalHandler struct {
	loader *loader.Loader
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(l *loader.Loader) *PortalHandler {
	return &PortalHandler{loader: l}
}

// studentQuestion is a question with the answer key and explanations
// stripped. Grading happens server-side, so the key never reaches the
// client until the attempt is finished.
type studentQuestion struct {
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	QuestionImage string   `json:"question_image,omitempty"`
}

// Load godoc
// GET /api/v1/exam?id=<uuid> or ?data=<encoded>
// Resolves an exam link into its student-visible payload.
func (h *PortalHandler) Load(c *gin.Context) {
	src := loader.Source{
		PreviewData: c.Query("data"),
		ExamID:      c.Query("id"),
	}
	if src.PreviewData == "" && src.ExamID == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrMissingExamLink)
		return
	}

	loaded, err := h.loader.Load(c.Request.Context(), src)
	if err != nil {
		switch {
		case errors.Is(err, loader.ErrMalformed):
			response.Fail(c, http.StatusBadRequest, response.ErrMalformedPreview)
		case errors.Is(err, loader.ErrNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrExamNotFound)
		case errors.Is(err, loader.ErrUnconfigured):
			response.Fail(c, http.StatusServiceUnavailable, response.ErrStoreUnavailable)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	// The dashboard is the home surface for a logged-in teacher; the
	// client uses this flag to offer the way back.
	teacherAuthenticated := middleware.GetClaims(c) != nil

	response.Success(c, http.StatusOK, gin.H{
		"title":                 loaded.Payload.Title,
		"duration":              loaded.Payload.DurationMinutes,
		"questions":             sanitizeQuestions(loaded.Payload.Questions),
		"preview":               loaded.Preview,
		"teacher_authenticated": teacherAuthenticated,
	})
}

func sanitizeQuestions(questions []model.Question) []studentQuestion {
	out := make([]studentQuestion, len(questions))
	for i, q := range questions {
		out[i] = studentQuestion{
			Text:          q.Text,
			Options:       q.Options,
			QuestionImage: q.QuestionImage,
		}
	}
	return out
}
