// Package noteservice is the move-facing API shared by the HTTP and MCP surfaces.
package noteservice

import (
	"context"
	"errors"
	"log/slog"

	"github.com/starford/notemover/internal/history"
	"github.com/starford/notemover/internal/mover"
	"github.com/starford/notemover/internal/rules"
)

// Publisher receives every move attempt made through the service.
type Publisher interface {
	PublishResult(trigger mover.Trigger, res mover.Result)
}

// MoveDetail is the outward representation of a mover.Result.
type MoveDetail struct {
	Path             string `json:"path"`
	NewPath          string `json:"new_path,omitempty"`
	Destination      string `json:"destination,omitempty"`
	Outcome          string `json:"outcome"`
	Companion        string `json:"companion,omitempty"`
	SubfolderCreated bool   `json:"subfolder_created"`
	Error            string `json:"error,omitempty"`
	Trigger          string `json:"trigger"`
	Indicator        string `json:"indicator"`
}

// MoveAllSummary aggregates a vault-wide pass.
type MoveAllSummary struct {
	Evaluated int            `json:"evaluated"`
	Moved     int            `json:"moved"`
	Failed    int            `json:"failed"`
	Moves     []MoveDetail   `json:"moves"`
	Outcomes  map[string]int `json:"outcomes"`
}

// RuleItem is one configured rule with its position.
type RuleItem struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	rules.Rule
}

// Status describes the running mover.
type Status struct {
	Trigger   string `json:"trigger"`
	Indicator string `json:"indicator"`
	Rules     int    `json:"rules"`
}

// Service runs manual moves and exposes rules and history.
type Service struct {
	engine    *mover.Engine
	history   *history.DB
	publisher Publisher
	trigger   mover.Trigger
}

// NewService creates a service. history and publisher may be nil.
func NewService(engine *mover.Engine, db *history.DB, publisher Publisher, trigger mover.Trigger) *Service {
	return &Service{engine: engine, history: db, publisher: publisher, trigger: trigger}
}

// MoveNote evaluates one note with the Manual trigger.
func (s *Service) MoveNote(ctx context.Context, path string) (*MoveDetail, error) {
	res, err := s.engine.Evaluate(ctx, path, mover.TriggerManual)
	if err != nil {
		return nil, err
	}
	s.publish(res)
	d := detail(mover.TriggerManual, res)
	return &d, nil
}

// MoveAll evaluates every note in the vault with the Manual trigger.
// No-op evaluations are counted but not listed.
func (s *Service) MoveAll(ctx context.Context) (*MoveAllSummary, error) {
	results, err := s.engine.EvaluateAll(ctx, mover.TriggerManual)
	if err != nil && !errors.Is(err, context.Canceled) {
		return nil, err
	}
	sum := &MoveAllSummary{Moves: []MoveDetail{}, Outcomes: map[string]int{}}
	for _, res := range results {
		s.publish(res)
		sum.Evaluated++
		sum.Outcomes[res.Outcome.String()]++
		switch {
		case res.Outcome == mover.Moved:
			sum.Moved++
		case res.Outcome.IsFailure():
			sum.Failed++
		}
		if res.Outcome == mover.Moved || res.Outcome.IsFailure() {
			sum.Moves = append(sum.Moves, detail(mover.TriggerManual, res))
		}
	}
	if err != nil {
		slog.Warn("move all interrupted", slog.Int("evaluated", sum.Evaluated))
		return sum, err
	}
	return sum, nil
}

// Preview reports where a note would go without moving it.
func (s *Service) Preview(ctx context.Context, path string) (*mover.Preview, error) {
	return s.engine.Preview(ctx, path)
}

// Rules lists the configured rules in evaluation order.
func (s *Service) Rules(_ context.Context) []RuleItem {
	rs := s.engine.Rules()
	out := make([]RuleItem, 0, len(rs))
	for i, r := range rs {
		out = append(out, RuleItem{Index: i, Kind: r.Kind(), Rule: r})
	}
	return out
}

// History returns recorded moves, newest first. An empty path lists all notes.
func (s *Service) History(ctx context.Context, path string, limit int) ([]history.Record, error) {
	if s.history == nil {
		return []history.Record{}, nil
	}
	var (
		recs []history.Record
		err  error
	)
	if path == "" {
		recs, err = s.history.Recent(ctx, limit)
	} else {
		recs, err = s.history.ForPath(ctx, path, limit)
	}
	if err != nil {
		return nil, err
	}
	return nonNilSlice(recs), nil
}

// Status returns the trigger mode and rule count.
func (s *Service) Status(_ context.Context) Status {
	return Status{
		Trigger:   string(s.trigger),
		Indicator: mover.Indicator(s.trigger),
		Rules:     len(s.engine.Rules()),
	}
}

func (s *Service) publish(res mover.Result) {
	if s.publisher != nil {
		s.publisher.PublishResult(mover.TriggerManual, res)
	}
}

func detail(trigger mover.Trigger, res mover.Result) MoveDetail {
	d := MoveDetail{
		Path:             res.From,
		NewPath:          res.To,
		Destination:      res.Destination,
		Outcome:          res.Outcome.String(),
		SubfolderCreated: res.SubfolderCreated,
		Trigger:          string(trigger),
		Indicator:        mover.Indicator(trigger),
	}
	if res.Companion != mover.OutcomeNone {
		d.Companion = res.Companion.String()
	}
	if res.Err != nil {
		d.Error = res.Err.Error()
	}
	return d
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
