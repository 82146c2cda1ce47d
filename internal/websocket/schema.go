package websocket

import "github.com/examlink/examlink-backend/internal/scoring"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	// ActionJoin loads the exam payload; carries exam_id or preview data.
	ActionJoin Action = "join"
	// ActionBegin submits the student name and starts the arming delay.
	ActionBegin Action = "begin"
	// ActionSelect records an answer for a question.
	ActionSelect Action = "select"
	// ActionSignal reports a classified suspicious event by reason tag.
	ActionSignal Action = "signal"
	// ActionKey reports a raw keystroke for the allow-list check.
	ActionKey Action = "key"
	// ActionSubmit requests manual submission (opens the confirm gate).
	ActionSubmit Action = "submit"
	// ActionConfirm resolves the confirm gate with accept true/false.
	ActionConfirm Action = "confirm"
	// ActionDownload requests the result export document.
	ActionDownload Action = "download"
	ActionPing     Action = "ping"
)

// Request is the single client → server message shape; unused fields are
// omitted per action.
type Request struct {
	Action  Action `json:"action"`
	ExamID  string `json:"exam_id,omitempty"`
	Data    string `json:"data,omitempty"` // encoded preview payload
	Name    string `json:"name,omitempty"`
	Index   int    `json:"index,omitempty"`
	Option  string `json:"option,omitempty"`
	Reason  string `json:"reason,omitempty"`
	KeyCode int    `json:"key_code,omitempty"`
	Accept  bool   `json:"accept,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventExam      Event = "exam"      // payload metadata after join
	EventState     Event = "state"     // state machine transitions
	EventToast     Event = "toast"     // transient advisory
	EventOverlay   Event = "overlay"   // warning overlay, maybe persistent
	EventClock     Event = "clock"     // MM:SS countdown display
	EventSelected  Event = "selected"  // accepted answer selection
	EventConfirm   Event = "confirm"   // yes/no submission gate
	EventResult    Event = "result"    // score + graded review, exactly once
	EventDocument  Event = "document"  // rendered export document
	EventPong      Event = "pong"
)

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

// ─── Event payloads (Server → Client) ───────────────────────────────

// ExamResponse acknowledges a join with the student-visible exam metadata.
type ExamResponse struct {
	Event     Event  `json:"event"`
	Title     string `json:"title"`
	Duration  int    `json:"duration"`
	Questions int    `json:"questions"`
	Preview   bool   `json:"preview"`
}

type StateResponse struct {
	Event Event  `json:"event"`
	State string `json:"state"`
}

type ToastResponse struct {
	Event   Event  `json:"event"`
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

type OverlayResponse struct {
	Event      Event  `json:"event"`
	Message    string `json:"message"`
	Persistent bool   `json:"persistent"`
}

type ClockResponse struct {
	Event     Event  `json:"event"`
	Display   string `json:"display"`
	Remaining int    `json:"remaining"`
}

type SelectedResponse struct {
	Event  Event  `json:"event"`
	Index  int    `json:"index"`
	Option string `json:"option"`
}

type ConfirmResponse struct {
	Event   Event  `json:"event"`
	Message string `json:"message"`
}

// ResultResponse delivers the graded outcome, sent exactly once per attempt.
type ResultResponse struct {
	Event   Event                    `json:"event"`
	Trigger string                   `json:"trigger"`
	Result  scoring.Result           `json:"result"`
	Review  []scoring.QuestionReview `json:"review"`
}

// DocumentResponse carries the rendered result document for download.
type DocumentResponse struct {
	Event    Event  `json:"event"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
}
