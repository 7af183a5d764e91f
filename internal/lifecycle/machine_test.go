package lifecycle_test

import (
	"testing"

	"procurement-portal/internal/lifecycle"
	"procurement-portal/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextFollowsTable(t *testing.T) {
	cases := []struct {
		from   string
		action lifecycle.Action
		to     string
	}{
		{model.StatusDraft, lifecycle.ActionSubmit, model.StatusSubmitted},
		{model.StatusSubmitted, lifecycle.ActionApprove, model.StatusApproved},
		{model.StatusSubmitted, lifecycle.ActionReject, model.StatusRejected},
		{model.StatusApproved, lifecycle.ActionPurchase, model.StatusPurchased},
		{model.StatusPurchased, lifecycle.ActionComplete, model.StatusCompleted},
	}

	for _, tc := range cases {
		next, err := lifecycle.Next(tc.from, tc.action)
		require.NoError(t, err, "%s from %s", tc.action, tc.from)
		assert.Equal(t, tc.to, next)
	}
}

func TestNextRejectsInvalidEdges(t *testing.T) {
	statuses := []string{
		model.StatusDraft, model.StatusSubmitted, model.StatusApproved,
		model.StatusRejected, model.StatusPurchased, model.StatusCompleted,
	}
	actions := []lifecycle.Action{
		lifecycle.ActionSubmit, lifecycle.ActionApprove, lifecycle.ActionReject,
		lifecycle.ActionPurchase, lifecycle.ActionComplete,
	}

	valid := map[string]map[lifecycle.Action]bool{
		model.StatusDraft:     {lifecycle.ActionSubmit: true},
		model.StatusSubmitted: {lifecycle.ActionApprove: true, lifecycle.ActionReject: true},
		model.StatusApproved:  {lifecycle.ActionPurchase: true},
		model.StatusPurchased: {lifecycle.ActionComplete: true},
	}

	for _, from := range statuses {
		for _, action := range actions {
			_, err := lifecycle.Next(from, action)
			if valid[from][action] {
				assert.NoError(t, err, "%s from %s", action, from)
			} else {
				assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition, "%s from %s", action, from)
			}
		}
	}
}

func TestNextUnknownStatus(t *testing.T) {
	_, err := lifecycle.Next("PENDING", lifecycle.ActionSubmit)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, lifecycle.Terminal(model.StatusCompleted))
	assert.True(t, lifecycle.Terminal(model.StatusRejected))
	assert.False(t, lifecycle.Terminal(model.StatusDraft))
	assert.False(t, lifecycle.Terminal(model.StatusPurchased))
	assert.False(t, lifecycle.Terminal("PENDING"))
}

func TestAllowedActions(t *testing.T) {
	assert.Equal(t, []lifecycle.Action{lifecycle.ActionSubmit}, lifecycle.AllowedActions(model.StatusDraft))
	assert.Equal(t,
		[]lifecycle.Action{lifecycle.ActionApprove, lifecycle.ActionReject},
		lifecycle.AllowedActions(model.StatusSubmitted))
	assert.Empty(t, lifecycle.AllowedActions(model.StatusCompleted))
	assert.Empty(t, lifecycle.AllowedActions(model.StatusRejected))
}

func TestEditable(t *testing.T) {
	assert.True(t, lifecycle.Editable(model.StatusDraft))
	for _, s := range []string{
		model.StatusSubmitted, model.StatusApproved, model.StatusRejected,
		model.StatusPurchased, model.StatusCompleted,
	} {
		assert.False(t, lifecycle.Editable(s), s)
	}
}
