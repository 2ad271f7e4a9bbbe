package notify

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type fakeTeamDirectory struct{ teams map[string]domain.Team }

func (d *fakeTeamDirectory) GetByID(_ context.Context, id string) (*domain.Team, error) {
	team, ok := d.teams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &team, nil
}

type fakeStaffDirectory struct{ members map[string]domain.StaffMember }

func (d *fakeStaffDirectory) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	member, ok := d.members[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &member, nil
}

func TestListenerResolvesTeamAndAssigneeRecipients(t *testing.T) {
	teams := &fakeTeamDirectory{teams: map[string]domain.Team{
		"team-a": {ID: "team-a", NotifyEmail: "desk@example.com", WebhookURL: "https://hooks.example.com/team-a", IsActive: true},
	}}
	staff := &fakeStaffDirectory{members: map[string]domain.StaffMember{
		"staff-1": {ID: "staff-1", Email: "one@example.com", Active: true},
	}}
	l := NewListener(nil, teams, staff, zap.NewNop())

	teamID := "team-a"
	assignee := "staff-1"
	event := testEvent()
	event.Ticket.TeamID = &teamID
	event.Ticket.AssigneeID = &assignee

	rcpts := l.recipients(context.Background(), event)
	assert.ElementsMatch(t, []string{"desk@example.com", "one@example.com"}, rcpts.Emails)
	assert.Equal(t, []string{"https://hooks.example.com/team-a"}, rcpts.WebhookURLs)
}

func TestListenerToleratesLookupFailures(t *testing.T) {
	l := NewListener(nil, &fakeTeamDirectory{}, &fakeStaffDirectory{}, zap.NewNop())

	teamID := "team-gone"
	event := testEvent()
	event.Ticket.TeamID = &teamID

	rcpts := l.recipients(context.Background(), event)
	assert.Empty(t, rcpts.Emails)
	assert.Empty(t, rcpts.WebhookURLs)
}
