package api

import (
	"github.com/starford/notemover/internal/history"
	"github.com/starford/notemover/internal/mover"
	"github.com/starford/notemover/internal/noteservice"
)

// MoveDetail is the result of a single move (aliased from the domain layer).
type MoveDetail = noteservice.MoveDetail

// MoveAllSummary is the result of a vault-wide pass (aliased from the domain layer).
type MoveAllSummary = noteservice.MoveAllSummary

// PreviewResponse is the planned destination of a note.
type PreviewResponse = mover.Preview

// StatusResponse reports the trigger mode.
type StatusResponse = noteservice.Status

// RulesResponse wraps the rule list.
type RulesResponse struct {
	Rules []noteservice.RuleItem `json:"rules" validate:"required"`
}

// HistoryResponse wraps recorded moves.
type HistoryResponse struct {
	Moves []history.Record `json:"moves" validate:"required"`
}
