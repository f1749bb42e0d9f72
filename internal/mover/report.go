package mover

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Severity selects where a report surfaces.
type Severity int

const (
	// SeverityLog reports go to the log only.
	SeverityLog Severity = iota
	// SeverityNotice reports are logged and also shown to the user.
	SeverityNotice
)

func (s Severity) String() string {
	if s == SeverityNotice {
		return "notice"
	}
	return "log"
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Report is one human-readable status message produced by a move.
type Report struct {
	Severity Severity   `json:"severity"`
	Level    slog.Level `json:"level"`
	Message  string     `json:"message"`
	Path     string     `json:"path,omitempty"`
	Outcome  Outcome    `json:"outcome"`
}

// Reporter receives reports. Implementations must not block the caller for long.
type Reporter interface {
	Report(r Report)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Report)

func (f ReporterFunc) Report(r Report) { f(r) }

// LogReporter writes every report to a slog logger. Notices are tagged.
func LogReporter(logger *slog.Logger) Reporter {
	return ReporterFunc(func(r Report) {
		LogReport(logger, r)
	})
}

// LogReport writes r at its own level.
func LogReport(logger *slog.Logger, r Report) {
	logger.Log(context.Background(), r.Level, r.Message,
		slog.String("severity", r.Severity.String()),
		slog.String("path", r.Path),
		slog.String("outcome", r.Outcome.String()))
}

// Queue decouples report producers from presentation: Report enqueues and
// Run delivers to a sink on its own goroutine. Reports sent after Close
// or while the buffer is full are dropped.
type Queue struct {
	ch      chan Report
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// NewQueue creates a queue with the given buffer size.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 256
	}
	return &Queue{ch: make(chan Report, size)}
}

// Report enqueues r without blocking.
func (q *Queue) Report(r Report) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return
	}
	select {
	case q.ch <- r:
	default:
		q.dropped.Add(1)
	}
}

// Dropped returns how many reports were discarded because the buffer was full.
func (q *Queue) Dropped() int {
	return int(q.dropped.Load())
}

// Close stops accepting reports. Run drains what is buffered and returns.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}

// Run delivers reports to sink until ctx is cancelled or the queue is closed.
// Buffered reports are flushed before returning.
func (q *Queue) Run(ctx context.Context, sink func(Report)) {
	for {
		select {
		case r, ok := <-q.ch:
			if !ok {
				return
			}
			sink(r)
		case <-ctx.Done():
			q.Close()
			for r := range q.ch {
				sink(r)
			}
			return
		}
	}
}
