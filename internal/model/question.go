package model

// Question is a single multiple-choice question. Answer must be byte-identical
// to one of Options: grading compares by exact string equality with no
// normalization, so the authoring side keeps options and key in sync.
type Question struct {
	Text             string   `json:"question"`
	Options          []string `json:"options"`
	Answer           string   `json:"answer"`
	Explanation      string   `json:"explanation,omitempty"`
	QuestionImage    string   `json:"question_image,omitempty"`
	ExplanationImage string   `json:"explanation_image,omitempty"`
}

// QuestionInput is the authoring payload for a single question.
type QuestionInput struct {
	Text             string   `json:"question" binding:"required,min=1,max=2000"`
	Options          []string `json:"options" binding:"required,min=2,dive,required"`
	Answer           string   `json:"answer" binding:"required"`
	Explanation      string   `json:"explanation" binding:"omitempty,max=2000"`
	QuestionImage    string   `json:"question_image" binding:"omitempty,uri"`
	ExplanationImage string   `json:"explanation_image" binding:"omitempty,uri"`
}
