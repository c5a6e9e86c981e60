package domain

import (
	"fmt"
	"strings"
)

// DecisionAction is the operator's answer to a permission request.
type DecisionAction string

const (
	DecisionAllow     DecisionAction = "allow"
	DecisionAllowOnce DecisionAction = "allowonce"
	DecisionDeny      DecisionAction = "deny"
	// DecisionDismiss hides the overlay locally without telling the backend.
	DecisionDismiss DecisionAction = "dismiss"
)

// IsValid checks if the action is known.
func (a DecisionAction) IsValid() bool {
	switch a {
	case DecisionAllow, DecisionAllowOnce, DecisionDeny, DecisionDismiss:
		return true
	default:
		return false
	}
}

// String returns the string representation of the action.
func (a DecisionAction) String() string {
	return string(a)
}

// Decision is the body of POST /api/security_action.
type Decision struct {
	Action DecisionAction `json:"action"`
	Name   string         `json:"name,omitempty"`
}

// Validate checks that allow decisions carry the visitor's name.
func (d Decision) Validate() error {
	if !d.Action.IsValid() {
		return fmt.Errorf("invalid decision action: %q", d.Action)
	}
	if (d.Action == DecisionAllow || d.Action == DecisionAllowOnce) && strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("decision %q requires a name", d.Action)
	}
	return nil
}

// Remote reports whether the decision must be sent to the backend.
func (d Decision) Remote() bool {
	return d.Action != DecisionDismiss
}
