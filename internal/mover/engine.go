package mover

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/notemover/internal/apperr"
	"github.com/starford/notemover/internal/models"
	"github.com/starford/notemover/internal/parser"
	"github.com/starford/notemover/internal/rules"
	"github.com/starford/notemover/internal/storage"
)

// Recorder persists the result of a move attempt.
type Recorder interface {
	RecordMove(ctx context.Context, trigger Trigger, res Result) error
}

// Engine ties the rule matcher to the executor. Evaluations are serialized:
// at most one note is evaluated and moved at a time.
type Engine struct {
	mu       sync.Mutex
	store    storage.Provider
	matcher  *rules.Matcher
	exec     *Executor
	recorder Recorder
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRecorder stores every non-trivial outcome.
func WithRecorder(r Recorder) EngineOption {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates an engine over store.
func NewEngine(store storage.Provider, matcher *rules.Matcher, exec *Executor, opts ...EngineOption) *Engine {
	e := &Engine{
		store:   store,
		matcher: matcher,
		exec:    exec,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns the configured rules in priority order.
func (e *Engine) Rules() []rules.Rule {
	return e.matcher.Rules()
}

// Options returns the global move switches.
func (e *Engine) Options() Options {
	return e.exec.Options()
}

// Evaluate reads the note's metadata fresh, picks a destination and moves
// it. The returned error is set only when the note cannot be evaluated at
// all (missing, unreadable); move failures are reported through the Result.
func (e *Engine) Evaluate(ctx context.Context, path string, trigger Trigger) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := e.decide(path)
	if err != nil {
		return Result{From: storage.NormalizePath(path)}, err
	}
	if d.skip != OutcomeNone {
		return Result{Outcome: d.skip, From: d.note.Path}, nil
	}

	res := e.exec.Move(ctx, d.match.Folder(), d.note.Name, d.note, d.match.Rule.Template)
	if e.recorder != nil && res.Outcome != SkippedNoOp {
		if err := e.recorder.RecordMove(ctx, trigger, res); err != nil {
			e.logger.Warn("history: record failed",
				slog.String("path", res.From),
				slog.String("error", err.Error()))
		}
	}
	return res, nil
}

// EvaluateAll evaluates every note in the vault, one at a time.
func (e *Engine) EvaluateAll(ctx context.Context, trigger Trigger) ([]Result, error) {
	metas, err := e.store.List("")
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(metas))
	for _, m := range metas {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res, err := e.Evaluate(ctx, m.Path, trigger)
		if err != nil {
			e.logger.Warn("mover: evaluate failed",
				slog.String("path", m.Path),
				slog.String("error", err.Error()))
			continue
		}
		out = append(out, res)
	}
	return out, nil
}

// Preview is what Evaluate would do for a note, without doing it.
type Preview struct {
	Path        string      `json:"path"`
	Skip        Outcome     `json:"skip,omitempty"`
	RuleIndex   int         `json:"rule_index"`
	Rule        *rules.Rule `json:"rule,omitempty"`
	Destination string      `json:"destination,omitempty"`
	NewPath     string      `json:"new_path,omitempty"`
}

// Preview resolves the destination of a note without touching the vault.
func (e *Engine) Preview(_ context.Context, path string) (*Preview, error) {
	d, err := e.decide(path)
	if err != nil {
		return nil, err
	}
	p := &Preview{Path: d.note.Path, Skip: d.skip, RuleIndex: -1}
	if d.skip != OutcomeNone {
		return p, nil
	}
	rule := d.match.Rule
	p.RuleIndex = d.match.Index
	p.Rule = &rule
	p.Destination = d.match.Folder()
	p.NewPath = storage.JoinPath(p.Destination, d.note.Name)
	if p.NewPath == d.note.Path {
		p.Skip = SkippedNoOp
	}
	return p, nil
}

type decision struct {
	note  models.NoteFile
	match rules.Match
	skip  Outcome
}

func (e *Engine) decide(path string) (decision, error) {
	p := storage.NormalizePath(path)
	note := models.NewNoteFile(p)
	if !storage.IsNote(p) {
		return decision{note: note, skip: SkippedNotNote}, nil
	}
	entry, err := e.store.Resolve(p)
	if err != nil {
		return decision{}, err
	}
	if entry.Kind != models.KindFile {
		return decision{}, fmt.Errorf("mover: %s: %w", p, apperr.ErrNotFound)
	}
	if e.matcher.Excluded(note.Parent) {
		return decision{note: note, skip: SkippedExcluded}, nil
	}
	data, err := e.store.Read(p)
	if err != nil {
		return decision{}, err
	}
	parsed, err := parser.Parse(data)
	if err != nil {
		return decision{}, err
	}
	meta := parsed.Metadata()
	if rules.IsDisabled(meta) {
		return decision{note: note, skip: SkippedDisabled}, nil
	}
	m, ok := e.matcher.Match(note, meta)
	if !ok {
		return decision{note: note, skip: SkippedNoDestination}, nil
	}
	return decision{note: note, match: m}, nil
}
