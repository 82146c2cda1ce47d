package scoring

import (
	"math"

	"github.com/examlink/examlink-backend/internal/model"
)

// Result is the immutable outcome of grading one attempt. It is computed
// exactly once when a session finishes and is read for both the inline
// result view and the export document.
type Result struct {
	Correct          int    `json:"correct"`
	Total            int    `json:"total"`
	Percent          int    `json:"percent"`
	Rating           string `json:"rating"`
	CheatingAttempts int    `json:"cheating_attempts"`
}

// OptionMark classifies an option for the per-question review.
type OptionMark string

const (
	MarkCorrect OptionMark = "correct" // this option is the answer key
	MarkWrong   OptionMark = "wrong"   // selected by the student, not the key
	MarkNeutral OptionMark = "neutral"
)

// QuestionReview is the graded view of one question.
type QuestionReview struct {
	Index            int          `json:"index"`
	Text             string       `json:"question"`
	Options          []string     `json:"options"`
	Marks            []OptionMark `json:"marks"`
	Selected         string       `json:"selected,omitempty"`
	Answer           string       `json:"answer"`
	IsCorrect        bool         `json:"is_correct"`
	Explanation      string       `json:"explanation"`
	ExplanationImage string       `json:"explanation_image,omitempty"`
}

// Score grades answers against the payload's answer key. A question is
// correct iff the recorded answer equals the key by exact string equality;
// an unset answer ("") never matches. Missing trailing answers are treated
// as unset, never as an error.
//
// An empty payload (zero questions) grades to 0/0 at 0%; the loader keeps
// such exams out of live sessions, but the scorer stays total.
func Score(payload *model.ExamPayload, answers []string, cheatingAttempts int) Result {
	correct := 0
	for i, q := range payload.Questions {
		if i < len(answers) && answers[i] != "" && answers[i] == q.Answer {
			correct++
		}
	}

	total := len(payload.Questions)
	percent := 0
	if total > 0 {
		percent = int(math.Round(float64(correct) / float64(total) * 100))
	}

	return Result{
		Correct:          correct,
		Total:            total,
		Percent:          percent,
		Rating:           Rating(percent),
		CheatingAttempts: cheatingAttempts,
	}
}

// Review builds the per-question grading view: the answer-key option is
// marked correct, a wrong selection is marked wrong, everything else is
// neutral. Explanations default to a fixed placeholder like the authoring
// side does.
func Review(payload *model.ExamPayload, answers []string) []QuestionReview {
	reviews := make([]QuestionReview, len(payload.Questions))
	for i, q := range payload.Questions {
		selected := ""
		if i < len(answers) {
			selected = answers[i]
		}

		marks := make([]OptionMark, len(q.Options))
		for j, opt := range q.Options {
			switch {
			case opt == q.Answer:
				marks[j] = MarkCorrect
			case selected != "" && opt == selected:
				marks[j] = MarkWrong
			default:
				marks[j] = MarkNeutral
			}
		}

		explanation := q.Explanation
		if explanation == "" {
			explanation = "No explanation provided."
		}

		reviews[i] = QuestionReview{
			Index:            i,
			Text:             q.Text,
			Options:          q.Options,
			Marks:            marks,
			Selected:         selected,
			Answer:           q.Answer,
			IsCorrect:        selected == q.Answer && selected != "",
			Explanation:      explanation,
			ExplanationImage: q.ExplanationImage,
		}
	}
	return reviews
}
