package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/audit"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func newAssignmentFixture(rules []domain.AssignmentRule) (*AssignmentService, *fakeTicketRepo, *fakeAuditStore) {
	tickets := newFakeTicketRepo()
	auditing := &fakeAuditStore{}
	teams := &fakeTeamRepo{teams: map[string]domain.Team{
		"team-a": {ID: "team-a", Name: "Service Desk", IsActive: true},
		"team-b": {ID: "team-b", Name: "Infrastructure", IsActive: true},
		"team-x": {ID: "team-x", Name: "Disbanded", IsActive: false},
	}}
	staff := &fakeStaffRepo{members: map[string]domain.StaffMember{
		"staff-1": {ID: "staff-1", Name: "Agent One", Email: "one@example.com", Role: domain.StaffRoleAgent, Active: true},
		"staff-2": {ID: "staff-2", Name: "Gone", Email: "gone@example.com", Role: domain.StaffRoleAgent, Active: false},
	}}
	svc := NewAssignmentService(&fakeRuleRepo{rules: rules}, tickets, teams, staff, audit.NewRecorder(auditing, zap.NewNop()), nil, zap.NewNop())
	return svc, tickets, auditing
}

func strptr(s string) *string { return &s }

func TestResolveHighestPriorityWins(t *testing.T) {
	// A generic catch-all with a huge priority beats a more specific rule:
	// only the priority number decides, not specificity.
	svc, _, _ := newAssignmentFixture([]domain.AssignmentRule{
		{ID: "rule-1", TeamID: "team-a", SystemID: strptr("sys-1"), Priority: 5, Active: true},
		{ID: "rule-2", TeamID: "team-b", Priority: 50, Active: true},
	})

	teamID, err := svc.Resolve(context.Background(), strptr("sys-1"), nil)
	require.NoError(t, err)
	require.NotNil(t, teamID)
	assert.Equal(t, "team-b", *teamID)
}

func TestResolveTieBreaksOnFirstListed(t *testing.T) {
	// The repository returns rules ordered by id; equal priorities fall to
	// the earlier rule deterministically.
	svc, _, _ := newAssignmentFixture([]domain.AssignmentRule{
		{ID: "rule-1", TeamID: "team-a", Priority: 10, Active: true},
		{ID: "rule-2", TeamID: "team-b", Priority: 10, Active: true},
	})

	teamID, err := svc.Resolve(context.Background(), nil, nil)
	require.NoError(t, err)
	require.NotNil(t, teamID)
	assert.Equal(t, "team-a", *teamID)
}

func TestResolveFilterMismatch(t *testing.T) {
	svc, _, _ := newAssignmentFixture([]domain.AssignmentRule{
		{ID: "rule-1", TeamID: "team-a", SystemID: strptr("sys-1"), CategoryID: strptr("cat-1"), Priority: 10, Active: true},
	})

	// Rule requires both filters; a nil category does not satisfy it.
	teamID, err := svc.Resolve(context.Background(), strptr("sys-1"), nil)
	require.NoError(t, err)
	assert.Nil(t, teamID)
}

func TestResolveIgnoresInactiveRules(t *testing.T) {
	svc, _, _ := newAssignmentFixture([]domain.AssignmentRule{
		{ID: "rule-1", TeamID: "team-a", Priority: 100, Active: false},
		{ID: "rule-2", TeamID: "team-b", Priority: 1, Active: true},
	})

	teamID, err := svc.Resolve(context.Background(), nil, nil)
	require.NoError(t, err)
	require.NotNil(t, teamID)
	assert.Equal(t, "team-b", *teamID)
}

func TestAssignTeamUpdatesAndAudits(t *testing.T) {
	svc, tickets, auditing := newAssignmentFixture(nil)
	ticket := &domain.Ticket{Status: domain.TicketStatusNew, Subject: "x", Code: "HD-AAAAAA"}
	require.NoError(t, tickets.Create(context.Background(), ticket))

	actor := "staff-1"
	updated, err := svc.AssignTeam(context.Background(), ticket.ID, strptr("team-b"), &actor)
	require.NoError(t, err)
	require.NotNil(t, updated.TeamID)
	assert.Equal(t, "team-b", *updated.TeamID)
	assert.Len(t, auditing.byAction(domain.AuditActionAssignmentChanged), 1)
}

func TestAssignTeamRejectsInactive(t *testing.T) {
	svc, tickets, _ := newAssignmentFixture(nil)
	ticket := &domain.Ticket{Status: domain.TicketStatusNew, Subject: "x", Code: "HD-AAAAAB"}
	require.NoError(t, tickets.Create(context.Background(), ticket))

	_, err := svc.AssignTeam(context.Background(), ticket.ID, strptr("team-x"), nil)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestAssignStaffRejectsInactive(t *testing.T) {
	svc, tickets, _ := newAssignmentFixture(nil)
	ticket := &domain.Ticket{Status: domain.TicketStatusNew, Subject: "x", Code: "HD-AAAAAC"}
	require.NoError(t, tickets.Create(context.Background(), ticket))

	_, err := svc.AssignStaff(context.Background(), ticket.ID, strptr("staff-2"), nil)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestAssignStaffClears(t *testing.T) {
	svc, tickets, _ := newAssignmentFixture(nil)
	assignee := "staff-1"
	ticket := &domain.Ticket{Status: domain.TicketStatusNew, Subject: "x", Code: "HD-AAAAAD", AssigneeID: &assignee}
	require.NoError(t, tickets.Create(context.Background(), ticket))

	updated, err := svc.AssignStaff(context.Background(), ticket.ID, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, updated.AssigneeID)
}
