package exporter

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/examlink/examlink-backend/internal/model"
	"github.com/examlink/examlink-backend/internal/scoring"
)

// ResultDocument renders a finished attempt into a standalone styled HTML
// document for download. It is a pure transformation of the payload, the
// attempt outcome, and the graded review. No extra state, computable any
// number of times with the same output.
type ResultDocument struct {
	ExamTitle   string
	StudentName string
	Result      scoring.Result
	Review      []scoring.QuestionReview
}

// Filename derives the download name the way the exam surface does:
// "<Title>_Result_<Student>.html" with whitespace collapsed to underscores.
func (d ResultDocument) Filename() string {
	collapse := func(s string) string {
		return strings.Join(strings.Fields(s), "_")
	}
	return fmt.Sprintf("%s_Result_%s.html", collapse(d.ExamTitle), collapse(d.StudentName))
}

// Render writes the document as UTF-8 HTML.
func (d ResultDocument) Render() ([]byte, error) {
	var buf bytes.Buffer
	if err := documentTmpl.Execute(&buf, d); err != nil {
		return nil, fmt.Errorf("render result document: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildResultDocument assembles a document from a session outcome.
func BuildResultDocument(payload *model.ExamPayload, studentName string, result scoring.Result, review []scoring.QuestionReview) ResultDocument {
	return ResultDocument{
		ExamTitle:   payload.Title,
		StudentName: studentName,
		Result:      result,
		Review:      review,
	}
}

var documentTmpl = template.Must(template.New("result").Funcs(template.FuncMap{
	"answerOrBlank": func(s string) string {
		if s == "" {
			return "Not answered"
		}
		return s
	},
	"inc": func(i int) int { return i + 1 },
	"markGlyph": func(correct bool) string {
		if correct {
			return "✅"
		}
		return "❌"
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.ExamTitle}} — Exam Result</title>
</head>
<body style="padding:20px; font-family:Inter, Arial, sans-serif; max-width:800px; margin:0 auto;">
  <div style="text-align:center; margin-bottom:30px; border-bottom:2px solid #8e44ad; padding-bottom:20px;">
    <h1 style="color:#8e44ad; margin:0;">{{.ExamTitle}}</h1>
    <h2 style="color:#6c3483; margin:10px 0;">Exam Result</h2>
    <p style="font-size:18px; margin:10px 0;">Student: <strong>{{.StudentName}}</strong></p>
    <p style="font-size:20px; color:#2ecc71;">Score: {{.Result.Correct}}/{{.Result.Total}} ({{.Result.Percent}}%)</p>
    <p>{{.Result.Rating}}</p>
    {{- if gt .Result.CheatingAttempts 0}}
    <p style="color:#e74c3c; font-weight:bold;">Cheating attempts: {{.Result.CheatingAttempts}}</p>
    {{- end}}
  </div>
  {{- range .Review}}
  <div style="margin-bottom:25px; padding-bottom:15px; border-bottom:1px solid #eee;">
    <p style="font-weight:bold; margin:0 0 10px 0;">Q{{inc .Index}}: {{.Text}}</p>
    <p style="margin:8px 0; color:{{if .IsCorrect}}#27ae60{{else}}#e74c3c{{end}};">
      <strong>Your Answer:</strong> {{answerOrBlank .Selected}} {{markGlyph .IsCorrect}}
    </p>
    <p style="margin:8px 0;"><strong>Correct Answer:</strong> {{.Answer}}</p>
    <p style="margin:8px 0; color:#555;"><strong>Explanation:</strong> {{.Explanation}}</p>
    {{- if .ExplanationImage}}
    <img src="{{.ExplanationImage}}" style="max-width:100%; margin-top:8px; border-radius:4px;">
    {{- end}}
  </div>
  {{- end}}
</body>
</html>
`))
