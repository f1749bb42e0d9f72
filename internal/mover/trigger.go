package mover

import "fmt"

// Trigger selects whether notes are moved on vault events or only on demand.
type Trigger string

const (
	TriggerAutomatic Trigger = "Automatic"
	TriggerManual    Trigger = "Manual"
)

// Validate rejects unknown trigger names.
func (t Trigger) Validate() error {
	switch t {
	case TriggerAutomatic, TriggerManual:
		return nil
	}
	return fmt.Errorf("trigger must be %q or %q, got %q", TriggerAutomatic, TriggerManual, string(t))
}

// Indicator is the short status tag shown for a trigger mode.
func Indicator(t Trigger) string {
	if t == TriggerAutomatic {
		return "[A]"
	}
	return "[M]"
}
