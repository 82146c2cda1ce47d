package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/examlink/examlink-backend/internal/exporter"
	"github.com/examlink/examlink-backend/internal/middleware"
	"github.com/examlink/examlink-backend/internal/model"
	"github.com/examlink/examlink-backend/internal/response"
	"github.com/examlink/examlink-backend/internal/service"
	"github.com/examlink/examlink-backend/internal/validator"
)

// ExamHandler handles the teacher dashboard: authoring, share links, results.
type ExamHandler struct {
	examService   *service.ExamService
	resultService *service.ResultService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService, resultService *service.ResultService) *ExamHandler {
	return &ExamHandler{
		examService:   examService,
		resultService: resultService,
	}
}

// Create godoc
// POST /api/v1/teacher/exams
// Validates and stores a new exam, returning it with share links.
func (h *ExamHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), claims.TeacherID, &req)
	if err != nil {
		if errors.Is(err, service.ErrAnswerNotInOptions) || errors.Is(err, service.ErrTooFewOptions) {
			response.Fail(c, http.StatusBadRequest, response.ErrAnswerKeyInvalid)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	shortURL, longURL := h.examService.ShareLink(c.Request.Context(), exam.ID)

	response.Success(c, http.StatusCreated, gin.H{
		"exam":      exam,
		"share_url": shortURL,
		"long_url":  longURL,
	})
}

// List godoc
// GET /api/v1/teacher/exams
// Lists the authenticated teacher's exams, newest first.
func (h *ExamHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)

	exams, err := h.examService.ListByTeacher(c.Request.Context(), claims.TeacherID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// Delete godoc
// DELETE /api/v1/teacher/exams/:exam_id
// Deletes one exam the teacher owns; results cascade away with it.
func (h *ExamHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.examService.Delete(c.Request.Context(), examID, claims.TeacherID); err != nil {
		if errors.Is(err, service.ErrNotExamOwner) {
			response.Fail(c, http.StatusNotFound, response.ErrExamNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// DeleteAll godoc
// DELETE /api/v1/teacher/exams
// Deletes every exam the teacher owns.
func (h *ExamHandler) DeleteAll(c *gin.Context) {
	claims := middleware.GetClaims(c)

	deleted, err := h.examService.DeleteAllByTeacher(c.Request.Context(), claims.TeacherID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": deleted})
}

// ShareLink godoc
// GET /api/v1/teacher/exams/:exam_id/share
// Returns the (best-effort shortened) student link for a stored exam.
func (h *ExamHandler) ShareLink(c *gin.Context) {
	exam, ok := h.ownedExam(c)
	if !ok {
		return
	}

	shortURL, longURL := h.examService.ShareLink(c.Request.Context(), exam.ID)

	response.Success(c, http.StatusOK, gin.H{
		"share_url": shortURL,
		"long_url":  longURL,
	})
}

// PreviewLink godoc
// POST /api/v1/teacher/exams/preview
// Encodes an unsaved draft into a self-contained exam link. Nothing is
// stored; the link carries the whole payload.
func (h *ExamHandler) PreviewLink(c *gin.Context) {
	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	payload := draftPayload(&req)
	link, err := h.examService.PreviewLink(payload)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"preview_url": link})
}

// Results godoc
// GET /api/v1/teacher/exams/:exam_id/results
// Lists persisted attempt results for one exam.
func (h *ExamHandler) Results(c *gin.Context) {
	exam, ok := h.ownedExam(c)
	if !ok {
		return
	}

	results, err := h.resultService.ListByExam(c.Request.Context(), exam.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"exam_title": exam.Title,
		"results":    results,
	})
}

// ExportResults godoc
// GET /api/v1/teacher/exams/:exam_id/results/export
// Streams the results as an XLSX workbook download.
func (h *ExamHandler) ExportResults(c *gin.Context) {
	exam, ok := h.ownedExam(c)
	if !ok {
		return
	}

	results, err := h.resultService.ListByExam(c.Request.Context(), exam.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	workbook, err := exporter.ResultsWorkbook(exam.Title, results)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	filename := strings.ReplaceAll(exam.Title, " ", "_") + "_results.xlsx"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		workbook)
}

// Integrity godoc
// GET /api/v1/teacher/exams/:exam_id/integrity
// Returns flagged-event counts per student for one exam.
func (h *ExamHandler) Integrity(c *gin.Context) {
	exam, ok := h.ownedExam(c)
	if !ok {
		return
	}

	summaries, err := h.resultService.IntegritySummary(c.Request.Context(), exam.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"students": summaries})
}

// ownedExam parses :exam_id, loads the exam, and enforces ownership. On any
// failure it writes the error response and returns ok=false.
func (h *ExamHandler) ownedExam(c *gin.Context) (*model.Exam, bool) {
	claims := middleware.GetClaims(c)

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, false
	}

	exam, err := h.examService.GetByID(c.Request.Context(), examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrExamNotFound)
			return nil, false
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return nil, false
	}

	if exam.TeacherID != claims.TeacherID {
		response.Fail(c, http.StatusForbidden, response.ErrNotExamOwner)
		return nil, false
	}

	return exam, true
}

// draftPayload converts an authoring request into a runnable payload with
// the same defaults the create path applies.
func draftPayload(req *model.CreateExamRequest) *model.ExamPayload {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Untitled Exam"
	}
	duration := req.DurationMinutes
	if duration <= 0 {
		duration = model.DefaultDurationMinutes
	}

	questions := make([]model.Question, len(req.Questions))
	for i, in := range req.Questions {
		explanation := strings.TrimSpace(in.Explanation)
		if explanation == "" {
			explanation = "No explanation."
		}
		questions[i] = model.Question{
			Text:             in.Text,
			Options:          in.Options,
			Answer:           in.Answer,
			Explanation:      explanation,
			QuestionImage:    in.QuestionImage,
			ExplanationImage: in.ExplanationImage,
		}
	}

	return &model.ExamPayload{
		Title:           title,
		DurationMinutes: duration,
		Questions:       questions,
	}
}
