package exporter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examlink/examlink-backend/internal/model"
	"github.com/examlink/examlink-backend/internal/scoring"
)

func sampleDocument() ResultDocument {
	payload := &model.ExamPayload{
		Title:           "Midterm Quiz",
		DurationMinutes: 30,
		Questions: []model.Question{
			{Text: "2+2?", Options: []string{"3", "4"}, Answer: "4", Explanation: "Addition."},
		},
	}
	result := scoring.Score(payload, []string{"4"}, 1)
	review := scoring.Review(payload, []string{"4"})
	return BuildResultDocument(payload, "Jane Doe", result, review)
}

func TestDocumentFilename(t *testing.T) {
	doc := sampleDocument()
	assert.Equal(t, "Midterm_Quiz_Result_Jane_Doe.html", doc.Filename())

	doc.ExamTitle = "  Multi   Space  Title "
	doc.StudentName = "A\tB"
	assert.Equal(t, "Multi_Space_Title_Result_A_B.html", doc.Filename())
}

func TestDocumentRender(t *testing.T) {
	doc := sampleDocument()
	raw, err := doc.Render()
	require.NoError(t, err)

	html := string(raw)
	assert.Contains(t, html, "Midterm Quiz")
	assert.Contains(t, html, "Jane Doe")
	assert.Contains(t, html, "Score: 1/1 (100%)")
	assert.Contains(t, html, "Perfect! You&#39;re a genius!")
	assert.Contains(t, html, "Q1: 2+2?")
	assert.Contains(t, html, "Cheating attempts: 1")
}

func TestDocumentRenderUnanswered(t *testing.T) {
	payload := &model.ExamPayload{
		Title:     "Quiz",
		Questions: []model.Question{{Text: "q", Options: []string{"a", "b"}, Answer: "a"}},
	}
	doc := BuildResultDocument(payload, "Sam",
		scoring.Score(payload, nil, 0), scoring.Review(payload, nil))

	raw, err := doc.Render()
	require.NoError(t, err)

	html := string(raw)
	assert.Contains(t, html, "Not answered")
	assert.Contains(t, html, "No explanation provided.")
	assert.False(t, strings.Contains(html, "Cheating attempts"))
}

func TestDocumentEscapesStudentInput(t *testing.T) {
	doc := sampleDocument()
	doc.StudentName = `<script>alert("x")</script>`

	raw, err := doc.Render()
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "<script>alert")
}
