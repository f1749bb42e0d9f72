package mover

import (
	"errors"
	"fmt"

	"github.com/starford/notemover/internal/apperr"
)

// Outcome is the result of one move attempt.
type Outcome int

const (
	OutcomeNone Outcome = iota // step not attempted
	Moved
	SkippedNoOp
	SkippedDisabled
	SkippedNoDestination
	SkippedExcluded
	SkippedNotNote
	FailedDestinationMissing
	FailedNameCollision
	FailedFolderCollision
	FailedStoreOperation
)

var outcomeNames = map[Outcome]string{
	OutcomeNone:              "none",
	Moved:                    "moved",
	SkippedNoOp:              "skipped_noop",
	SkippedDisabled:          "skipped_disabled",
	SkippedNoDestination:     "skipped_no_destination",
	SkippedExcluded:          "skipped_excluded",
	SkippedNotNote:           "skipped_not_note",
	FailedDestinationMissing: "failed_destination_missing",
	FailedNameCollision:      "failed_name_collision",
	FailedFolderCollision:    "failed_folder_collision",
	FailedStoreOperation:     "failed_store_operation",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return "unknown"
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name written by MarshalText.
func (o *Outcome) UnmarshalText(b []byte) error {
	for k, v := range outcomeNames {
		if v == string(b) {
			*o = k
			return nil
		}
	}
	return fmt.Errorf("mover: unknown outcome %q", b)
}

// IsFailure reports whether the outcome is one of the Failed* values.
func (o Outcome) IsFailure() bool {
	return o >= FailedDestinationMissing
}

// Err maps failure outcomes to their sentinel error.
func (o Outcome) Err() error {
	switch o {
	case FailedDestinationMissing:
		return apperr.ErrDestinationMissing
	case FailedNameCollision:
		return apperr.ErrNameCollision
	case FailedFolderCollision:
		return apperr.ErrFolderCollision
	case FailedStoreOperation:
		return apperr.ErrStoreOperation
	}
	return nil
}

// OutcomeOf recovers the failure outcome for an error produced by Result.Err.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeNone
	case errors.Is(err, apperr.ErrDestinationMissing):
		return FailedDestinationMissing
	case errors.Is(err, apperr.ErrNameCollision):
		return FailedNameCollision
	case errors.Is(err, apperr.ErrFolderCollision):
		return FailedFolderCollision
	default:
		return FailedStoreOperation
	}
}

// Result describes everything one Executor.Move call did.
type Result struct {
	Outcome Outcome `json:"outcome"`
	From    string  `json:"from"`
	To      string  `json:"to,omitempty"`
	// Destination is the matched folder, empty when no rule matched.
	Destination string `json:"destination,omitempty"`
	// Companion is the outcome of the same-named folder step; OutcomeNone
	// when the step did not run or found no folder.
	Companion        Outcome `json:"companion"`
	SubfolderCreated bool    `json:"subfolder_created"`
	// Err joins the causes of every failed step.
	Err error `json:"-"`
}
