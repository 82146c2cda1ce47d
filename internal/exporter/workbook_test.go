package exporter

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/examlink/examlink-backend/internal/model"
)

func TestResultsWorkbook(t *testing.T) {
	started := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	finished := started.Add(25 * time.Minute)

	raw, err := ResultsWorkbook("Midterm Quiz", []model.ResultRecord{
		{
			StudentName:      "Jane Doe",
			Score:            8,
			TotalQuestions:   10,
			Percent:          80,
			Rating:           "Great job!",
			CheatingAttempts: 1,
			StartedAt:        &started,
			FinishedAt:       &finished,
		},
		{StudentName: "Sam", Score: 10, TotalQuestions: 10, Percent: 100, Rating: "Perfect! You're a genius!"},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Student", rows[0][0])
	assert.Equal(t, "Jane Doe", rows[1][0])
	assert.Equal(t, "80", rows[1][3])
	assert.Equal(t, "2025-06-01 09:00:00", rows[1][6])
	assert.Equal(t, "Perfect! You're a genius!", rows[2][4])
}

func TestResultsWorkbookEmpty(t *testing.T) {
	raw, err := ResultsWorkbook("Empty", nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 1) // header only
}
