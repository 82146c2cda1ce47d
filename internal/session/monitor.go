package session

import "fmt"

// Reason tags the kind of suspicious client behavior a signal reports.
type Reason string

const (
	ReasonVisibilityLost  Reason = "visibility_lost"  // tab switched or minimized
	ReasonFocusLost       Reason = "focus_lost"       // window lost focus
	ReasonKeyPressed      Reason = "key_pressed"      // keystroke outside the allow-list
	ReasonContextMenu     Reason = "context_menu"     // right-click request
	ReasonCopyAttempt     Reason = "copy_attempt"     //
	ReasonPasteAttempt    Reason = "paste_attempt"    //
	ReasonContainerHidden Reason = "container_hidden" // exam container left the viewport
)

// describe maps reason tags to the student-facing warning text.
func describe(r Reason) string {
	switch r {
	case ReasonVisibilityLost:
		return "Tab switched or minimized"
	case ReasonFocusLost:
		return "Window lost focus"
	case ReasonKeyPressed:
		return "Key pressed"
	case ReasonContextMenu:
		return "Right-click"
	case ReasonCopyAttempt:
		return "Copy attempt"
	case ReasonPasteAttempt:
		return "Paste attempt"
	case ReasonContainerHidden:
		return "Exam container hidden"
	default:
		return string(r)
	}
}

// EscalationThreshold is the flag count at which the monitor raises a
// persistent overlay and signals forced termination.
const EscalationThreshold = 3

// allowedKeyCodes are the navigation/selection/deletion keys a student may
// press during an attempt: Tab, Enter, Space, the arrow keys, Backspace and
// Delete. Every other keystroke is flagged and suppressed client-side.
var allowedKeyCodes = map[int]struct{}{
	8: {}, 9: {}, 13: {}, 32: {}, 37: {}, 38: {}, 39: {}, 40: {}, 46: {},
}

// KeyAllowed reports whether a key code is on the attempt allow-list.
func KeyAllowed(code int) bool {
	_, ok := allowedKeyCodes[code]
	return ok
}

// monitorHooks are the monitor's two output channels plus the typed
// force-terminate signal. The monitor never finishes, scores or persists
// anything itself; the owning state machine consumes forceFinish and alone
// performs the terminal transition.
type monitorHooks struct {
	toast       func(msg string, kind ToastKind)
	overlay     func(msg string, persistent bool)
	flagged     func(reason Reason, attemptNo int)
	forceFinish func()
}

// Monitor counts suspicious signals for one attempt and escalates at the
// threshold. Signals observed while disarmed are ignored, which covers the
// pre-start grace window and the post-finish state.
type Monitor struct {
	armed    bool
	attempts int
	hooks    monitorHooks
}

// Arm begins observing signals.
func (m *Monitor) Arm() {
	m.armed = true
}

// Disarm stops observing permanently for this attempt. Idempotent and safe
// to call before Arm.
func (m *Monitor) Disarm() {
	m.armed = false
}

// Attempts returns the number of signals flagged so far.
func (m *Monitor) Attempts() int {
	return m.attempts
}

// Observe classifies one suspicious signal. Below the threshold it reports
// a transient warning on both channels; at the threshold (and on every
// signal past it, should one land before the machine disarms us) it raises
// the persistent overlay and emits force-terminate.
func (m *Monitor) Observe(reason Reason) {
	if !m.armed {
		return
	}
	m.attempts++

	if m.hooks.flagged != nil {
		m.hooks.flagged(reason, m.attempts)
	}

	if m.attempts < EscalationThreshold {
		m.hooks.toast(
			fmt.Sprintf("Cheating detected: %s. Warning %d/%d", describe(reason), m.attempts, EscalationThreshold),
			ToastWarn,
		)
		m.hooks.overlay(fmt.Sprintf("Cheating detected (%d/%d)", m.attempts, EscalationThreshold), false)
		return
	}

	m.hooks.overlay(fmt.Sprintf("Cheating detected! Attempt #%d. Exam submitted.", m.attempts), true)
	m.hooks.forceFinish()
}

// ObserveKey classifies a keystroke: allow-listed keys pass silently,
// anything else is flagged as a key_pressed signal.
func (m *Monitor) ObserveKey(code int) {
	if !m.armed || KeyAllowed(code) {
		return
	}
	m.Observe(ReasonKeyPressed)
}
