package session

import "github.com/examlink/examlink-backend/internal/scoring"

// State enumerates the session states of one exam attempt.
type State string

const (
	StateEntry       State = "ENTRY"        // waiting for the student name
	StateArmingDelay State = "ARMING_DELAY" // grace period, answers not recordable
	StateActive      State = "ACTIVE"       // monitored, timed attempt
	StateFinished    State = "FINISHED"     // terminal
)

// ToastKind mirrors the advisory notification styles of the exam surface.
type ToastKind string

const (
	ToastInfo    ToastKind = "info"
	ToastWarn    ToastKind = "warn"
	ToastSuccess ToastKind = "success"
)

// Sink receives everything a session emits. The WebSocket handler implements
// it to push events to the student client; tests implement it to observe the
// machine directly. All calls happen on the owning loop, never concurrently.
type Sink interface {
	// StateChanged fires on every transition, including into FINISHED.
	StateChanged(s State)
	// Toast is the transient advisory channel.
	Toast(msg string, kind ToastKind)
	// Overlay is the prominent warning channel; persistent overlays are
	// non-dismissable and survive until page teardown.
	Overlay(msg string, persistent bool)
	// Clock reports the countdown display once per second while active.
	Clock(display string, remainingSeconds int)
	// SelectionChanged confirms an accepted answer selection.
	SelectionChanged(questionIdx int, option string)
	// ConfirmRequested asks the student to confirm a manual submission.
	ConfirmRequested()
	// Flagged reports every counted integrity signal (audit channel).
	Flagged(reason Reason, attemptNo int)
	// Finished delivers the score exactly once, with the graded review.
	Finished(trigger FinishTrigger, result scoring.Result, review []scoring.QuestionReview)
}

// NopSink discards every event. Embed it in tests that only care about a
// subset of the Sink surface.
type NopSink struct{}

func (NopSink) StateChanged(State) {}
func (NopSink) Toast(string, ToastKind) {}
func (NopSink) Overlay(string, bool) {}
func (NopSink) Clock(string, int) {}
func (NopSink) SelectionChanged(int, string) {}
func (NopSink) ConfirmRequested() {}
func (NopSink) Flagged(Reason, int) {}
func (NopSink) Finished(FinishTrigger, scoring.Result, []scoring.QuestionReview) {}
