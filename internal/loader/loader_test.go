package loader

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examlink/examlink-backend/internal/model"
)

type fakeStore struct {
	exams map[uuid.UUID]*model.Exam
	err   error
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	if f.err != nil {
		return nil, f.err
	}
	exam, ok := f.exams[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	return exam, nil
}

func samplePayload() *model.ExamPayload {
	return &model.ExamPayload{
		Title:           "History Final",
		DurationMinutes: 45,
		Questions: []model.Question{
			{Text: "Year of the moon landing?", Options: []string{"1969", "1971"}, Answer: "1969"},
		},
	}
}

func TestPreviewRoundTrip(t *testing.T) {
	payload := samplePayload()

	encoded, err := EncodePreview(payload)
	require.NoError(t, err)

	decoded, err := DecodePreview(encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestDecodePreviewMalformed(t *testing.T) {
	cases := map[string]string{
		"bad percent encoding": "%zz",
		"bad base64":           "!!!not-base64!!!",
		"bad json":             base64.StdEncoding.EncodeToString([]byte("{nope")),
	}

	for name, encoded := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodePreview(encoded)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDecodePreviewAppliesDefaults(t *testing.T) {
	encoded, err := EncodePreview(&model.ExamPayload{})
	require.NoError(t, err)

	decoded, err := DecodePreview(encoded)
	require.NoError(t, err)
	assert.Equal(t, "Exam", decoded.Title)
	assert.Equal(t, model.DefaultDurationMinutes, decoded.DurationMinutes)
	assert.NotNil(t, decoded.Questions)
}

func TestLoadPreviewWinsOverID(t *testing.T) {
	encoded, err := EncodePreview(samplePayload())
	require.NoError(t, err)

	l := New(&fakeStore{err: errors.New("store must not be called")})
	loaded, err := l.Load(context.Background(), Source{
		PreviewData: encoded,
		ExamID:      uuid.NewString(),
	})

	require.NoError(t, err)
	assert.True(t, loaded.Preview)
	assert.Equal(t, uuid.Nil, loaded.ExamID)
	assert.Equal(t, "History Final", loaded.Payload.Title)
}

func TestLoadLive(t *testing.T) {
	examID := uuid.New()
	teacherID := uuid.New()
	store := &fakeStore{exams: map[uuid.UUID]*model.Exam{
		examID: {
			ID:        examID,
			TeacherID: teacherID,
			Title:     "Stored Exam",
			Questions: samplePayload().Questions,
		},
	}}

	l := New(store)
	loaded, err := l.Load(context.Background(), Source{ExamID: examID.String()})

	require.NoError(t, err)
	assert.False(t, loaded.Preview)
	assert.Equal(t, examID, loaded.ExamID)
	assert.Equal(t, teacherID, loaded.TeacherID)
	// Zero stored duration normalizes to the default.
	assert.Equal(t, model.DefaultDurationMinutes, loaded.Payload.DurationMinutes)
}

func TestLoadErrors(t *testing.T) {
	t.Run("unknown id", func(t *testing.T) {
		l := New(&fakeStore{exams: map[uuid.UUID]*model.Exam{}})
		_, err := l.Load(context.Background(), Source{ExamID: uuid.NewString()})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unparseable id", func(t *testing.T) {
		l := New(&fakeStore{})
		_, err := l.Load(context.Background(), Source{ExamID: "not-a-uuid"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("nil store", func(t *testing.T) {
		l := New(nil)
		_, err := l.Load(context.Background(), Source{ExamID: uuid.NewString()})
		assert.ErrorIs(t, err, ErrUnconfigured)
	})

	t.Run("empty source", func(t *testing.T) {
		l := New(&fakeStore{})
		_, err := l.Load(context.Background(), Source{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
