package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examlink/examlink-backend/internal/model"
)

func twoQuestionPayload() *model.ExamPayload {
	return &model.ExamPayload{
		Title:           "Sample",
		DurationMinutes: 10,
		Questions: []model.Question{
			{Text: "2+2?", Options: []string{"3", "4"}, Answer: "4", Explanation: "Basic addition."},
			{Text: "Capital of France?", Options: []string{"Paris", "Lyon"}, Answer: "Paris"},
		},
	}
}

func TestScore(t *testing.T) {
	payload := twoQuestionPayload()

	t.Run("half correct", func(t *testing.T) {
		res := Score(payload, []string{"4", "Lyon"}, 0)
		assert.Equal(t, 1, res.Correct)
		assert.Equal(t, 2, res.Total)
		assert.Equal(t, 50, res.Percent)
		assert.Equal(t, "Just made it!", res.Rating)
	})

	t.Run("all correct", func(t *testing.T) {
		res := Score(payload, []string{"4", "Paris"}, 2)
		assert.Equal(t, 2, res.Correct)
		assert.Equal(t, 100, res.Percent)
		assert.Equal(t, "Perfect! You're a genius!", res.Rating)
		assert.Equal(t, 2, res.CheatingAttempts)
	})

	t.Run("exact string equality only", func(t *testing.T) {
		res := Score(payload, []string{" 4", "paris"}, 0)
		assert.Equal(t, 0, res.Correct)
	})

	t.Run("unset answers never match", func(t *testing.T) {
		res := Score(payload, []string{"", ""}, 0)
		assert.Equal(t, 0, res.Correct)
		assert.Equal(t, 0, res.Percent)
	})

	t.Run("short answer slice treated as unset", func(t *testing.T) {
		res := Score(payload, []string{"4"}, 0)
		assert.Equal(t, 1, res.Correct)
		assert.Equal(t, 2, res.Total)
	})

	t.Run("empty payload grades to zero", func(t *testing.T) {
		res := Score(&model.ExamPayload{}, nil, 0)
		assert.Equal(t, 0, res.Total)
		assert.Equal(t, 0, res.Percent)
	})
}

func TestScorePercentRounding(t *testing.T) {
	payload := &model.ExamPayload{
		Questions: []model.Question{
			{Options: []string{"a", "b"}, Answer: "a"},
			{Options: []string{"a", "b"}, Answer: "a"},
			{Options: []string{"a", "b"}, Answer: "a"},
		},
	}

	// 2/3 rounds to 67, not truncates to 66.
	res := Score(payload, []string{"a", "a", "b"}, 0)
	assert.Equal(t, 67, res.Percent)
}

func TestRatingBands(t *testing.T) {
	cases := []struct {
		percent int
		want    string
	}{
		{100, "Perfect! You're a genius!"},
		{96, "Outstanding!"},
		{95, "Outstanding!"},
		{94, "Excellent work!"},
		{90, "Excellent work!"},
		{85, "Very impressive!"},
		{80, "Great job!"},
		{75, "Well done!"},
		{70, "Good effort!"},
		{65, "You're getting there!"},
		{60, "Fair try!"},
		{55, "Needs improvement!"},
		{50, "Just made it!"},
		{49, "Keep practicing!"},
		{0, "Keep practicing!"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Rating(tc.percent), "percent %d", tc.percent)
	}
}

func TestReview(t *testing.T) {
	payload := twoQuestionPayload()
	review := Review(payload, []string{"3", ""})

	require.Len(t, review, 2)

	first := review[0]
	assert.Equal(t, 0, first.Index)
	assert.False(t, first.IsCorrect)
	assert.Equal(t, "3", first.Selected)
	assert.Equal(t, "4", first.Answer)
	assert.Equal(t, "Basic addition.", first.Explanation)
	require.Len(t, first.Marks, 2)
	assert.Equal(t, MarkWrong, first.Marks[0])
	assert.Equal(t, MarkCorrect, first.Marks[1])

	second := review[1]
	assert.Empty(t, second.Selected)
	assert.False(t, second.IsCorrect)
	assert.Equal(t, "No explanation provided.", second.Explanation)
	assert.Equal(t, MarkNeutral, second.Marks[1])
	assert.Equal(t, MarkCorrect, second.Marks[0])
}
