package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitionAllowed(t *testing.T) {
	// The graph is permissive: every pair of distinct known statuses is
	// allowed, including reopening from terminal states.
	for _, from := range KnownStatuses {
		for _, to := range KnownStatuses {
			if from == to {
				assert.False(t, TransitionAllowed(from, to), "%s -> %s", from, to)
			} else {
				assert.True(t, TransitionAllowed(from, to), "%s -> %s", from, to)
			}
		}
	}
}

func TestIsKnownStatus(t *testing.T) {
	assert.True(t, IsKnownStatus(TicketStatusWaitingUser))
	assert.False(t, IsKnownStatus(TicketStatus("ESCALATED")))
	assert.False(t, IsKnownStatus(TicketStatus("new")), "statuses are case sensitive")
}

func TestTerminalPredicates(t *testing.T) {
	assert.True(t, TicketStatusClosed.IsTerminal())
	assert.True(t, TicketStatusRejected.IsTerminal())
	assert.False(t, TicketStatusResolved.IsTerminal(), "resolved tickets may still be reopened or closed")

	assert.True(t, TicketStatusResolved.TerminalForSLA())
	assert.False(t, TicketStatusWaitingUser.TerminalForSLA())
}

func TestVerifyEmployeeCode(t *testing.T) {
	hash := HashEmployeeCode("e1001")

	assert.True(t, VerifyEmployeeCode(hash, "E1001"))
	assert.True(t, VerifyEmployeeCode(hash, "  e1001  "), "verification normalizes like hashing does")
	assert.False(t, VerifyEmployeeCode(hash, "E1002"))
	assert.False(t, VerifyEmployeeCode("", "E1001"))
}

func TestAssignmentRuleMatches(t *testing.T) {
	sys := "sys-1"
	cat := "cat-1"
	other := "sys-2"

	catchAll := AssignmentRule{ID: "r1", TeamID: "t1", Active: true}
	assert.True(t, catchAll.Matches(nil, nil))
	assert.True(t, catchAll.Matches(&sys, &cat))

	bySystem := AssignmentRule{ID: "r2", TeamID: "t1", SystemID: &sys, Active: true}
	assert.True(t, bySystem.Matches(&sys, nil))
	assert.False(t, bySystem.Matches(&other, nil))
	assert.False(t, bySystem.Matches(nil, nil), "a set filter never matches an absent value")

	inactive := AssignmentRule{ID: "r3", TeamID: "t1", Active: false}
	assert.False(t, inactive.Matches(nil, nil))
}
