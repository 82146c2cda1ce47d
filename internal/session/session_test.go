package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examlink/examlink-backend/internal/model"
	"github.com/examlink/examlink-backend/internal/scoring"
)

// recordingSink captures every session event for assertions.
type recordingSink struct {
	states    []State
	toasts    []string
	overlays  []string
	persists  []bool
	clocks    []string
	selected  [][2]interface{}
	confirms  int
	flags     []Reason
	finishes  int
	trigger   FinishTrigger
	result    scoring.Result
	review    []scoring.QuestionReview
}

func (r *recordingSink) StateChanged(s State) { r.states = append(r.states, s) }
func (r *recordingSink) Toast(msg string, _ ToastKind) { r.toasts = append(r.toasts, msg) }
func (r *recordingSink) Overlay(msg string, persistent bool) {
	r.overlays = append(r.overlays, msg)
	r.persists = append(r.persists, persistent)
}
func (r *recordingSink) Clock(display string, _ int) { r.clocks = append(r.clocks, display) }
func (r *recordingSink) SelectionChanged(idx int, opt string) {
	r.selected = append(r.selected, [2]interface{}{idx, opt})
}
func (r *recordingSink) ConfirmRequested() { r.confirms++ }
func (r *recordingSink) Flagged(reason Reason, _ int) { r.flags = append(r.flags, reason) }
func (r *recordingSink) Finished(trigger FinishTrigger, result scoring.Result, review []scoring.QuestionReview) {
	r.finishes++
	r.trigger = trigger
	r.result = result
	r.review = review
}

func testPayload() *model.ExamPayload {
	return &model.ExamPayload{
		Title:           "Quiz",
		DurationMinutes: 1,
		Questions: []model.Question{
			{Text: "q1", Options: []string{"a", "b"}, Answer: "a"},
			{Text: "q2", Options: []string{"c", "d"}, Answer: "d"},
		},
	}
}

// activeSession returns a session driven through Begin and the arming delay.
func activeSession(t *testing.T, sink *recordingSink) *Session {
	t.Helper()
	s := New(testPayload(), sink, WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, s.Begin("Alice"))
	for i := 0; i < ArmingDelaySeconds; i++ {
		s.Tick()
	}
	require.Equal(t, StateActive, s.State())
	return s
}

func TestBeginRequiresName(t *testing.T) {
	sink := &recordingSink{}
	s := New(testPayload(), sink)

	assert.ErrorIs(t, s.Begin("   "), ErrNameRequired)
	assert.Equal(t, StateEntry, s.State())

	require.NoError(t, s.Begin("  Alice  "))
	assert.Equal(t, StateArmingDelay, s.State())
	assert.Equal(t, "Alice", s.Attempt().StudentName)
}

func TestBeginTwiceIsNoop(t *testing.T) {
	sink := &recordingSink{}
	s := New(testPayload(), sink)

	require.NoError(t, s.Begin("Alice"))
	require.NoError(t, s.Begin("Bob"))

	assert.Equal(t, "Alice", s.Attempt().StudentName)
	assert.Equal(t, []State{StateArmingDelay}, sink.states)
}

func TestArmingDelayBlocksAnswersAndSignals(t *testing.T) {
	sink := &recordingSink{}
	s := New(testPayload(), sink)
	require.NoError(t, s.Begin("Alice"))

	// Neither selections nor signals count before activation.
	s.Select(0, "a")
	s.Flag(ReasonVisibilityLost)
	s.FlagKey(65)

	assert.Empty(t, sink.selected)
	assert.Empty(t, sink.flags)
	assert.Equal(t, 0, s.Attempt().CheatingAttempts)

	for i := 0; i < ArmingDelaySeconds; i++ {
		assert.Equal(t, StateArmingDelay, s.State())
		s.Tick()
	}
	assert.Equal(t, StateActive, s.State())
	assert.NotNil(t, s.Attempt().StartedAt)
}

func TestSelectLastClickWins(t *testing.T) {
	sink := &recordingSink{}
	s := activeSession(t, sink)

	s.Select(0, "a")
	s.Select(0, "b")
	s.Select(1, "d")

	attempt := s.Attempt()
	assert.Equal(t, []string{"b", "d"}, attempt.Answers)
	assert.Len(t, sink.selected, 3)
}

func TestSelectIgnoresOutOfRangeIndex(t *testing.T) {
	sink := &recordingSink{}
	s := activeSession(t, sink)

	s.Select(-1, "a")
	s.Select(2, "a")

	assert.Empty(t, sink.selected)
}

func TestManualSubmitConfirmFlow(t *testing.T) {
	sink := &recordingSink{}
	s := activeSession(t, sink)
	s.Select(0, "a")

	s.RequestSubmit()
	assert.Equal(t, 1, sink.confirms)

	// Declining returns to the attempt untouched.
	s.ConfirmSubmit(false)
	assert.Equal(t, StateActive, s.State())
	assert.Equal(t, 0, sink.finishes)

	// Confirm without a pending request is ignored.
	s.ConfirmSubmit(true)
	assert.Equal(t, StateActive, s.State())

	s.RequestSubmit()
	s.ConfirmSubmit(true)
	assert.Equal(t, StateFinished, s.State())
	assert.Equal(t, 1, sink.finishes)
	assert.Equal(t, TriggerManual, sink.trigger)
	assert.Equal(t, 1, sink.result.Correct)
	assert.Equal(t, 50, sink.result.Percent)
	require.Len(t, sink.review, 2)
	assert.NotNil(t, s.Attempt().FinishedAt)
}

func TestTimerExpiryFinishes(t *testing.T) {
	sink := &recordingSink{}
	s := activeSession(t, sink)
	s.Select(1, "d")

	// One minute of display ticks, the 00:00 render, then expiry.
	for i := 0; i < 62 && s.State() == StateActive; i++ {
		s.Tick()
	}

	assert.Equal(t, StateFinished, s.State())
	assert.Equal(t, TriggerTimer, sink.trigger)
	assert.Equal(t, 1, sink.finishes)
	assert.Equal(t, "01:00", sink.clocks[0])
	assert.Equal(t, "00:01", sink.clocks[len(sink.clocks)-1])
}

func TestEscalationForcesFinishExactlyOnce(t *testing.T) {
	sink := &recordingSink{}
	s := activeSession(t, sink)

	s.Flag(ReasonVisibilityLost)
	s.Flag(ReasonFocusLost)
	assert.Equal(t, StateActive, s.State())
	assert.Equal(t, []bool{false, false}, sink.persists)

	s.Flag(ReasonContextMenu)
	assert.Equal(t, StateFinished, s.State())
	assert.Equal(t, TriggerMonitor, sink.trigger)
	assert.Equal(t, 1, sink.finishes)
	assert.Equal(t, 3, sink.result.CheatingAttempts)

	// Third overlay is the persistent one.
	require.Len(t, sink.persists, 3)
	assert.True(t, sink.persists[2])

	// Post-finish signals are ignored entirely.
	s.Flag(ReasonCopyAttempt)
	assert.Equal(t, 1, sink.finishes)
	assert.Len(t, sink.flags, 3)
}

func TestKeystrokeAllowList(t *testing.T) {
	sink := &recordingSink{}
	s := activeSession(t, sink)

	for _, code := range []int{8, 9, 13, 32, 37, 38, 39, 40, 46} {
		s.FlagKey(code)
	}
	assert.Empty(t, sink.flags)

	s.FlagKey(65) // 'A'
	assert.Equal(t, []Reason{ReasonKeyPressed}, sink.flags)
	assert.Equal(t, 1, s.Attempt().CheatingAttempts)
}

func TestFinishStopsTheClock(t *testing.T) {
	sink := &recordingSink{}
	s := activeSession(t, sink)

	s.RequestSubmit()
	s.ConfirmSubmit(true)

	rendered := len(sink.clocks)
	for i := 0; i < 10; i++ {
		s.Tick()
	}
	assert.Len(t, sink.clocks, rendered)

	// Selections after finish never reach the attempt.
	s.Select(0, "b")
	assert.Equal(t, []string{"", ""}, s.Attempt().Answers)
}

func TestTimerAndManualRace(t *testing.T) {
	// A confirm landing after expiry in the same loop turn must lose.
	sink := &recordingSink{}
	s := activeSession(t, sink)

	s.RequestSubmit()
	for s.State() == StateActive {
		s.Tick()
	}
	require.Equal(t, TriggerTimer, sink.trigger)

	s.ConfirmSubmit(true)
	assert.Equal(t, 1, sink.finishes)
	assert.Equal(t, TriggerTimer, sink.trigger)
}
