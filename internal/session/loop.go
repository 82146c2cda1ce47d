package session

import (
	"context"
	"time"
)

// Loop serializes everything that can touch a Session (client events,
// clock ticks, monitor signals) onto a single goroutine. Two near-simultaneous
// finish triggers are therefore processed one after the other, and the
// machine's idempotent finish makes the first one win.
type Loop struct {
	session *Session
	cmds    chan func(*Session)
	done    chan struct{}
}

// NewLoop wraps a session. Call Run to start dispatching.
func NewLoop(s *Session) *Loop {
	return &Loop{
		session: s,
		cmds:    make(chan func(*Session), 32),
		done:    make(chan struct{}),
	}
}

// Run dispatches ticks and posted commands until ctx is cancelled. It owns
// the session exclusively; no other goroutine may call session methods.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.session.Tick()
		case cmd := <-l.cmds:
			cmd(l.session)
		}
	}
}

// Post enqueues a command for the loop goroutine. It never blocks the
// session itself; if the loop has stopped the command is dropped.
func (l *Loop) Post(cmd func(*Session)) {
	select {
	case l.cmds <- cmd:
	case <-l.done:
	}
}

// Wait blocks until the loop goroutine has exited.
func (l *Loop) Wait() {
	<-l.done
}
