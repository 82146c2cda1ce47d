package session

import (
	"errors"
	"strings"
	"time"

	"github.com/examlink/examlink-backend/internal/model"
	"github.com/examlink/examlink-backend/internal/scoring"
)

// ArmingDelaySeconds is the grace period between name entry and the
// monitored attempt. The quiz is visible but answers are not recordable and
// the monitor is disarmed, so legitimate page-load focus events are never
// mistaken for cheating.
const ArmingDelaySeconds = 5

// FinishTrigger identifies which of the three terminal triggers won.
type FinishTrigger string

const (
	TriggerManual  FinishTrigger = "manual"
	TriggerTimer   FinishTrigger = "timer"
	TriggerMonitor FinishTrigger = "monitor"
)

// ErrNameRequired is returned by Begin when the trimmed student name is empty.
var ErrNameRequired = errors.New("student name is required")

// Attempt is the mutable per-attempt record. It is owned exclusively by the
// Session; answers may only be written while MonitoringActive is true.
type Attempt struct {
	StudentName      string
	Answers          []string // "" = unset, indexed 1:1 with questions
	CheatingAttempts int
	MonitoringActive bool
	StartedAt        *time.Time
	FinishedAt       *time.Time
}

// Session is the exam attempt state machine:
//
//	ENTRY → ARMING_DELAY → ACTIVE → FINISHED
//
// (the Loading stage lives in the loader; a session is only constructed
// from a successfully loaded payload). It is not safe for concurrent use:
// Loop serializes all events onto one goroutine, which is what makes the
// "first finish trigger wins" idempotence enforceable without locks.
type Session struct {
	payload *model.ExamPayload

	state      State
	attempt    Attempt
	countdown  Countdown
	monitor    Monitor
	armingLeft int
	confirming bool

	result *scoring.Result
	review []scoring.QuestionReview

	sink Sink
	now  func() time.Time
}

// Option tweaks session construction.
type Option func(*Session)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New builds a session in ENTRY state around an immutable payload.
func New(payload *model.ExamPayload, sink Sink, opts ...Option) *Session {
	s := &Session{
		payload: payload,
		state:   StateEntry,
		sink:    sink,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.monitor.hooks = monitorHooks{
		toast:   sink.Toast,
		overlay: sink.Overlay,
		flagged: func(reason Reason, n int) {
			s.attempt.CheatingAttempts = n
			sink.Flagged(reason, n)
		},
		forceFinish: func() { s.finish(TriggerMonitor) },
	}

	return s
}

// State returns the current machine state.
func (s *Session) State() State { return s.state }

// Attempt returns a snapshot of the attempt record.
func (s *Session) Attempt() Attempt {
	snap := s.attempt
	snap.Answers = append([]string(nil), s.attempt.Answers...)
	return snap
}

// Payload returns the immutable question set this session runs against.
func (s *Session) Payload() *model.ExamPayload { return s.payload }

// Result returns the score, or nil before the session finishes.
func (s *Session) Result() *scoring.Result { return s.result }

// Review returns the graded per-question review, or nil before finish.
func (s *Session) Review() []scoring.QuestionReview { return s.review }

// Begin moves ENTRY → ARMING_DELAY on a non-empty student name. The name is
// the only entry gate.
func (s *Session) Begin(studentName string) error {
	if s.state != StateEntry {
		return nil
	}
	name := strings.TrimSpace(studentName)
	if name == "" {
		return ErrNameRequired
	}

	s.attempt.StudentName = name
	s.attempt.Answers = make([]string, len(s.payload.Questions))
	s.armingLeft = ArmingDelaySeconds
	s.state = StateArmingDelay

	s.sink.Toast("Exam starts in 5 seconds", ToastInfo)
	s.sink.StateChanged(StateArmingDelay)
	return nil
}

// Tick advances the session clock by one second. During the arming delay it
// burns down the grace period; while active it drives the countdown.
func (s *Session) Tick() {
	switch s.state {
	case StateArmingDelay:
		s.armingLeft--
		if s.armingLeft <= 0 {
			s.activate()
		}
	case StateActive:
		s.countdown.Tick()
	}
}

// activate performs ARMING_DELAY → ACTIVE: record the start timestamp, arm
// the monitor, arm the countdown.
func (s *Session) activate() {
	started := s.now()
	s.attempt.StartedAt = &started
	s.attempt.MonitoringActive = true
	s.monitor.Arm()

	duration := s.payload.DurationMinutes
	if duration <= 0 {
		duration = model.DefaultDurationMinutes
	}
	s.countdown.Arm(duration*60,
		func(remaining int) { s.sink.Clock(FormatClock(remaining), remaining) },
		func() { s.finish(TriggerTimer) },
	)

	s.state = StateActive
	s.sink.Toast("Exam started — Good luck!", ToastSuccess)
	s.sink.StateChanged(StateActive)
}

// Select records an answer. Accepted only while ACTIVE; it overwrites any
// prior selection for the question (single-select, last-click-wins). Clicks
// in any other state are no-ops.
func (s *Session) Select(questionIdx int, option string) {
	if s.state != StateActive {
		return
	}
	if questionIdx < 0 || questionIdx >= len(s.attempt.Answers) {
		return
	}
	s.attempt.Answers[questionIdx] = option
	s.sink.SelectionChanged(questionIdx, option)
}

// RequestSubmit opens the manual-submission confirmation gate.
func (s *Session) RequestSubmit() {
	if s.state != StateActive {
		return
	}
	s.confirming = true
	s.sink.ConfirmRequested()
}

// ConfirmSubmit resolves the confirmation gate. A "no" returns to ACTIVE
// with no side effect; a "yes" finishes the attempt.
func (s *Session) ConfirmSubmit(accept bool) {
	if s.state != StateActive || !s.confirming {
		return
	}
	s.confirming = false
	if accept {
		s.finish(TriggerManual)
	}
}

// Flag forwards a classified suspicious signal to the monitor.
func (s *Session) Flag(reason Reason) {
	s.monitor.Observe(reason)
}

// FlagKey forwards a keystroke to the monitor's allow-list check.
func (s *Session) FlagKey(code int) {
	s.monitor.ObserveKey(code)
}

// finish performs ACTIVE → FINISHED. Idempotent: the first trigger wins;
// a near-simultaneous timer expiry or monitor signal landing in the same
// loop turn is a no-op.
func (s *Session) finish(trigger FinishTrigger) {
	if s.state != StateActive {
		return
	}
	s.state = StateFinished
	s.confirming = false

	s.attempt.MonitoringActive = false
	s.monitor.Disarm()
	s.countdown.Cancel()

	finished := s.now()
	s.attempt.FinishedAt = &finished

	result := scoring.Score(s.payload, s.attempt.Answers, s.attempt.CheatingAttempts)
	s.result = &result
	s.review = scoring.Review(s.payload, s.attempt.Answers)

	s.sink.StateChanged(StateFinished)
	s.sink.Finished(trigger, result, s.review)
}
