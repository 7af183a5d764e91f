// Package lifecycle holds the procurement request state machine: the statuses,
// the actions, and the transition table between them. Keeping the table
// explicit means an invalid transition is a lookup miss, not an untested
// branch scattered across handlers.
package lifecycle

import (
	"fmt"

	"procurement-portal/internal/model"
)

// Action is a lifecycle operation applied to a procurement request
type Action string

const (
	ActionSubmit   Action = "submit"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionPurchase Action = "purchase"
	ActionComplete Action = "complete"
)

// transitions maps (current status, action) to the next status.
// DRAFT edit/delete and proof upload are not transitions: they leave the
// status untouched and are guarded separately by the service.
var transitions = map[string]map[Action]string{
	model.StatusDraft: {
		ActionSubmit: model.StatusSubmitted,
	},
	model.StatusSubmitted: {
		ActionApprove: model.StatusApproved,
		ActionReject:  model.StatusRejected,
	},
	model.StatusApproved: {
		ActionPurchase: model.StatusPurchased,
	},
	model.StatusPurchased: {
		ActionComplete: model.StatusCompleted,
	},
	// REJECTED and COMPLETED are terminal
}

// actionOrder fixes a stable ordering for AllowedActions output
var actionOrder = []Action{ActionSubmit, ActionApprove, ActionReject, ActionPurchase, ActionComplete}

// ValidStatus reports whether s is one of the six lifecycle statuses
func ValidStatus(s string) bool {
	switch s {
	case model.StatusDraft, model.StatusSubmitted, model.StatusApproved,
		model.StatusRejected, model.StatusPurchased, model.StatusCompleted:
		return true
	}
	return false
}

// CanTransition reports whether action is allowed from the given status
func CanTransition(status string, action Action) bool {
	next, ok := transitions[status]
	if !ok {
		return false
	}
	_, ok = next[action]
	return ok
}

// Next returns the status reached by applying action to the current status.
// It fails with ErrInvalidTransition when the table has no such edge.
func Next(status string, action Action) (string, error) {
	if !ValidStatus(status) {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}
	next, ok := transitions[status][action]
	if !ok {
		return "", fmt.Errorf("%w: cannot %s a %s request", ErrInvalidTransition, action, status)
	}
	return next, nil
}

// AllowedActions lists the transitions available from a status, in a stable
// order. Callers use it to populate the allowed_actions field of responses.
func AllowedActions(status string) []Action {
	available := transitions[status]
	actions := make([]Action, 0, len(available))
	for _, a := range actionOrder {
		if _, ok := available[a]; ok {
			actions = append(actions, a)
		}
	}
	return actions
}

// Editable reports whether the request body (title, description, items) may
// still be mutated. Only drafts are editable.
func Editable(status string) bool {
	return status == model.StatusDraft
}

// Terminal reports whether no further transition can leave the status
func Terminal(status string) bool {
	return len(transitions[status]) == 0 && ValidStatus(status)
}
