package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/examlink/examlink-backend/internal/exporter"
	"github.com/examlink/examlink-backend/internal/loader"
	"github.com/examlink/examlink-backend/internal/model"
	"github.com/examlink/examlink-backend/internal/response"
	"github.com/examlink/examlink-backend/internal/scoring"
	"github.com/examlink/examlink-backend/internal/service"
	"github.com/examlink/examlink-backend/internal/session"
	ws "github.com/examlink/examlink-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow-list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// StreamHandler runs exam attempts over WebSocket. Each connection owns one
// session state machine; the handler translates client messages into loop
// commands and session events back into frames.
type StreamHandler struct {
	loader        *loader.Loader
	resultService *service.ResultService
	log           zerolog.Logger
	upgrader      websocket.Upgrader
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(l *loader.Loader, resultService *service.ResultService, log zerolog.Logger, allowedOrigins []string) *StreamHandler {
	return &StreamHandler{
		loader:        l,
		resultService: resultService,
		log:           log.With().Str("component", "stream_handler").Logger(),
		upgrader:      buildUpgrader(allowedOrigins),
	}
}

// ExamStream godoc
// WS /ws/v1/exam
// Upgrades to WebSocket and runs one exam attempt end to end. The first
// message must be a join carrying the exam link parameters.
func (h *StreamHandler) ExamStream(c *gin.Context) {
	rawConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.NewConn(rawConn)
	defer conn.Close()

	loaded, ok := h.join(conn)
	if !ok {
		return
	}

	streamLog := h.log.With().
		Str("exam_id", loaded.ExamID.String()).
		Bool("preview", loaded.Preview).
		Logger()
	streamLog.Info().Msg("Attempt stream opened")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &streamSink{
		conn:          conn,
		loaded:        loaded,
		resultService: h.resultService,
		log:           streamLog,
	}
	sess := session.New(&loaded.Payload, sink)
	sink.sess = sess

	loop := session.NewLoop(sess)
	go loop.Run(ctx)

	conn.WriteEvent(ws.ExamResponse{
		Event:     ws.EventExam,
		Title:     loaded.Payload.Title,
		Duration:  loaded.Payload.DurationMinutes,
		Questions: len(loaded.Payload.Questions),
		Preview:   loaded.Preview,
	})

	for {
		var msg ws.Request
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				streamLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				streamLog.Debug().Msg("Connection closed")
			}
			break
		}

		h.dispatch(conn, loop, &msg, streamLog)
	}

	cancel()
	loop.Wait()
}

// join reads the first frame, which must carry the exam link parameters,
// and resolves it through the loader.
func (h *StreamHandler) join(conn *ws.Conn) (*loader.Loaded, bool) {
	var msg ws.Request
	if err := conn.ReadJSON(&msg); err != nil {
		return nil, false
	}
	if msg.Action != ws.ActionJoin {
		conn.WriteError(string(response.ErrInvalidPayload), "first message must be a join")
		return nil, false
	}

	src := loader.Source{PreviewData: msg.Data, ExamID: msg.ExamID}
	if src.PreviewData == "" && src.ExamID == "" {
		conn.WriteError(string(response.ErrMissingExamLink), response.GetMessage(response.ErrMissingExamLink))
		return nil, false
	}

	loaded, err := h.loader.Load(context.Background(), src)
	if err != nil {
		code := response.ErrInternal
		switch err {
		case loader.ErrMalformed:
			code = response.ErrMalformedPreview
		case loader.ErrNotFound:
			code = response.ErrExamNotFound
		case loader.ErrUnconfigured:
			code = response.ErrStoreUnavailable
		}
		conn.WriteError(string(code), response.GetMessage(code))
		return nil, false
	}
	return loaded, true
}

func (h *StreamHandler) dispatch(conn *ws.Conn, loop *session.Loop, msg *ws.Request, log zerolog.Logger) {
	switch msg.Action {
	case ws.ActionBegin:
		name := msg.Name
		loop.Post(func(s *session.Session) {
			if err := s.Begin(name); err != nil {
				conn.WriteError(string(response.ErrValidation), "please enter your name")
			}
		})

	case ws.ActionSelect:
		index, option := msg.Index, msg.Option
		loop.Post(func(s *session.Session) { s.Select(index, option) })

	case ws.ActionSignal:
		reason := session.Reason(msg.Reason)
		loop.Post(func(s *session.Session) { s.Flag(reason) })

	case ws.ActionKey:
		code := msg.KeyCode
		loop.Post(func(s *session.Session) { s.FlagKey(code) })

	case ws.ActionSubmit:
		loop.Post(func(s *session.Session) { s.RequestSubmit() })

	case ws.ActionConfirm:
		accept := msg.Accept
		loop.Post(func(s *session.Session) { s.ConfirmSubmit(accept) })

	case ws.ActionDownload:
		loop.Post(func(s *session.Session) { sendDocument(conn, s) })

	case ws.ActionPing:
		conn.WriteEvent(ws.PongResponse{Event: ws.EventPong})

	default:
		log.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
		conn.WriteError(string(response.ErrInvalidPayload), "unknown action: "+string(msg.Action))
	}
}

// sendDocument renders the result document. Only meaningful once the
// session has finished; earlier requests get an error frame.
func sendDocument(conn *ws.Conn, s *session.Session) {
	if s.State() != session.StateFinished || s.Result() == nil {
		conn.WriteError(string(response.ErrInvalidPayload), "no result to download yet")
		return
	}

	doc := exporter.BuildResultDocument(s.Payload(), s.Attempt().StudentName, *s.Result(), s.Review())
	content, err := doc.Render()
	if err != nil {
		conn.WriteError(string(response.ErrInternal), response.GetMessage(response.ErrInternal))
		return
	}

	conn.WriteEvent(ws.DocumentResponse{
		Event:    ws.EventDocument,
		Filename: doc.Filename(),
		Content:  string(content),
	})
}

// streamSink adapts session events to WebSocket frames and best-effort
// persistence. All methods run on the session loop goroutine.
type streamSink struct {
	conn          *ws.Conn
	loaded        *loader.Loaded
	sess          *session.Session
	resultService *service.ResultService
	log           zerolog.Logger
}

func (s *streamSink) StateChanged(state session.State) {
	s.conn.WriteEvent(ws.StateResponse{Event: ws.EventState, State: string(state)})
}

func (s *streamSink) Toast(msg string, kind session.ToastKind) {
	s.conn.WriteEvent(ws.ToastResponse{Event: ws.EventToast, Message: msg, Kind: string(kind)})
}

func (s *streamSink) Overlay(msg string, persistent bool) {
	s.conn.WriteEvent(ws.OverlayResponse{Event: ws.EventOverlay, Message: msg, Persistent: persistent})
}

func (s *streamSink) Clock(display string, remaining int) {
	s.conn.WriteEvent(ws.ClockResponse{Event: ws.EventClock, Display: display, Remaining: remaining})
}

func (s *streamSink) SelectionChanged(index int, option string) {
	s.conn.WriteEvent(ws.SelectedResponse{Event: ws.EventSelected, Index: index, Option: option})
}

func (s *streamSink) ConfirmRequested() {
	s.conn.WriteEvent(ws.ConfirmResponse{
		Event:   ws.EventConfirm,
		Message: "Are you sure you want to submit your answers?",
	})
}

func (s *streamSink) Flagged(reason session.Reason, attemptNo int) {
	s.resultService.QueueIntegrityEvent(context.Background(),
		s.loaded.ExamID, s.sess.Attempt().StudentName, reason, attemptNo)
}

func (s *streamSink) Finished(trigger session.FinishTrigger, result scoring.Result, review []scoring.QuestionReview) {
	s.conn.WriteEvent(ws.ResultResponse{
		Event:   ws.EventResult,
		Trigger: string(trigger),
		Result:  result,
		Review:  review,
	})

	attempt := s.sess.Attempt()
	s.resultService.QueueResult(context.Background(), &model.ResultRecord{
		ExamID:           s.loaded.ExamID,
		TeacherID:        s.loaded.TeacherID,
		StudentName:      attempt.StudentName,
		Score:            result.Correct,
		TotalQuestions:   result.Total,
		Percent:          result.Percent,
		Rating:           result.Rating,
		Answers:          attempt.Answers,
		CheatingAttempts: result.CheatingAttempts,
		StartedAt:        attempt.StartedAt,
		FinishedAt:       attempt.FinishedAt,
	})
}
