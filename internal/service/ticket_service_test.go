package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/audit"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/intake"
	"github.com/spec-kit/helpdesk-service/internal/ticketcode"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

type ticketServiceFixture struct {
	service       *TicketService
	tickets       *fakeTicketRepo
	statusLog     *fakeStatusLogRepo
	rules         *fakeRuleRepo
	auditing      *fakeAuditStore
	notifications *fakeNotificationRepo
}

func newTicketServiceFixture(t *testing.T, rules []domain.AssignmentRule) *ticketServiceFixture {
	t.Helper()

	tickets := newFakeTicketRepo()
	statusLog := &fakeStatusLogRepo{}
	ruleRepo := &fakeRuleRepo{rules: rules}
	auditing := &fakeAuditStore{}
	teamRepo := &fakeTeamRepo{teams: map[string]domain.Team{
		"team-a": {ID: "team-a", Name: "Service Desk", IsActive: true},
		"team-b": {ID: "team-b", Name: "Infrastructure", IsActive: true},
	}}
	staffRepo := &fakeStaffRepo{members: map[string]domain.StaffMember{
		"staff-1": {ID: "staff-1", Name: "Agent One", Email: "one@example.com", Role: domain.StaffRoleAgent, Active: true},
	}}
	lookups := &fakeLookupRepo{
		categories: map[string]domain.Category{"cat-1": {ID: "cat-1", Name: "Hardware", IsActive: true}},
		systems:    map[string]domain.SupportSystem{"sys-1": {ID: "sys-1", Name: "ERP", IsActive: true}},
	}
	profiles := &fakeProfileRepo{profiles: map[string]domain.PriorityProfile{
		"prio-1": {ID: "prio-1", Name: "High", ResponseTargetMinutes: 60, ResolveTargetMinutes: 480},
	}}

	auditor := audit.NewRecorder(auditing, zap.NewNop())
	resolver := NewAssignmentService(ruleRepo, tickets, teamRepo, staffRepo, auditor, nil, zap.NewNop())
	notifications := &fakeNotificationRepo{}

	svc := NewTicketService(TicketDependencies{
		TicketRepo:       tickets,
		StatusLogRepo:    statusLog,
		ProfileRepo:      profiles,
		LookupRepo:       lookups,
		StaffRepo:        staffRepo,
		SurveyRepo:       newFakeSurveyRepo(),
		AuditTrailRepo:   auditing,
		NotificationRepo: notifications,
		Guard:            intake.NewGuard(intake.NewMemoryCache(), 3, time.Minute, 5*time.Minute),
		CodeGenerator:    ticketcode.NewGenerator(),
		Resolver:         resolver,
		Auditor:          auditor,
		Logger:           zap.NewNop(),
		CodeMaxAttempts:  10,
	})

	return &ticketServiceFixture{
		service:       svc,
		tickets:       tickets,
		statusLog:     statusLog,
		rules:         ruleRepo,
		auditing:      auditing,
		notifications: notifications,
	}
}

func intakeInput(source, subject string) TicketCreateInput {
	return TicketCreateInput{
		EmployeeCode: "E1001",
		DisplayName:  "Jordan Smith",
		OrgUnitPath:  "HQ/Finance",
		Subject:      subject,
		Description:  "description for " + subject,
		SourceIP:     source,
		UserAgent:    "test-agent",
	}
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %v", err)
	return domainErr.Code
}

func TestCreateTicketHappyPath(t *testing.T) {
	sysID := "sys-1"
	fx := newTicketServiceFixture(t, []domain.AssignmentRule{
		{ID: "rule-1", TeamID: "team-a", SystemID: &sysID, Priority: 10, Active: true},
	})

	input := intakeInput("10.0.0.1", "printer broken")
	input.SystemID = &sysID
	ticket, err := fx.service.CreateTicket(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ticket.Code, ticketcode.Prefix))
	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	require.NotNil(t, ticket.TeamID)
	assert.Equal(t, "team-a", *ticket.TeamID)
	assert.NotEqual(t, "E1001", ticket.Requester.EmployeeCodeHash, "raw employee code must not be stored")

	history, err := fx.statusLog.ListByTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].Prior)
	assert.Equal(t, domain.TicketStatusNew, history[0].New)

	assert.Len(t, fx.auditing.byAction(domain.AuditActionTicketCreated), 1)
}

func TestCreateTicketNoMatchingRuleLeavesUnassigned(t *testing.T) {
	fx := newTicketServiceFixture(t, nil)

	ticket, err := fx.service.CreateTicket(context.Background(), intakeInput("10.0.0.1", "odd request"))
	require.NoError(t, err)
	assert.Nil(t, ticket.TeamID, "no rule match is a valid outcome, not an error")
}

func TestCreateTicketRateLimited(t *testing.T) {
	fx := newTicketServiceFixture(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := fx.service.CreateTicket(ctx, intakeInput("10.0.0.1", fmt.Sprintf("subject %d", i)))
		require.NoError(t, err)
	}

	_, err := fx.service.CreateTicket(ctx, intakeInput("10.0.0.1", "subject 3"))
	require.Error(t, err)
	assert.Equal(t, "RATE_LIMITED", domainCode(t, err))

	assert.Len(t, fx.tickets.tickets, 3, "rejected submission must not create a ticket")
	assert.Len(t, fx.auditing.byAction(domain.AuditActionIntakeRejected), 1)
}

func TestCreateTicketDuplicateAcrossSources(t *testing.T) {
	fx := newTicketServiceFixture(t, nil)
	ctx := context.Background()

	_, err := fx.service.CreateTicket(ctx, intakeInput("10.0.0.1", "same subject"))
	require.NoError(t, err)

	_, err = fx.service.CreateTicket(ctx, intakeInput("10.0.0.2", "same subject"))
	require.Error(t, err)
	assert.Equal(t, "DUPLICATE_SUBMISSION", domainCode(t, err))
	assert.Len(t, fx.tickets.tickets, 1)
}

func TestCreateTicketUnknownCategory(t *testing.T) {
	fx := newTicketServiceFixture(t, nil)

	unknown := "cat-nope"
	input := intakeInput("10.0.0.1", "classified wrong")
	input.CategoryID = &unknown

	_, err := fx.service.CreateTicket(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
	assert.Empty(t, fx.tickets.tickets)
}

func TestCreateTicketRetriesOnCodeCollision(t *testing.T) {
	fx := newTicketServiceFixture(t, nil)
	fx.tickets.forceTakenCalls = 3

	ticket, err := fx.service.CreateTicket(context.Background(), intakeInput("10.0.0.1", "collide"))
	require.NoError(t, err)
	assert.NotEmpty(t, ticket.Code)
	assert.Equal(t, 4, fx.tickets.codeChecks, "three collisions then one success")
}

func TestCreateTicketCodeGenerationExhausted(t *testing.T) {
	fx := newTicketServiceFixture(t, nil)
	fx.tickets.forceTakenCalls = 10

	_, err := fx.service.CreateTicket(context.Background(), intakeInput("10.0.0.1", "never lucky"))
	require.Error(t, err)
	assert.Equal(t, "INTERNAL_ERROR", domainCode(t, err))
	assert.Empty(t, fx.tickets.tickets)
}

func TestTransitionBuildsContiguousChain(t *testing.T) {
	fx := newTicketServiceFixture(t, nil)
	ctx := context.Background()

	ticket, err := fx.service.CreateTicket(ctx, intakeInput("10.0.0.1", "lifecycle"))
	require.NoError(t, err)

	actor := "staff-1"
	for _, next := range []domain.TicketStatus{
		domain.TicketStatusInProgress,
		domain.TicketStatusResolved,
		domain.TicketStatusClosed,
	} {
		ticket, _, err = fx.service.Transition(ctx, ticket.ID, next, "moving on", &actor)
		require.NoError(t, err)
		assert.Equal(t, next, ticket.Status)
	}

	history, err := fx.statusLog.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Nil(t, history[0].Prior)
	for i := 1; i < len(history); i++ {
		require.NotNil(t, history[i].Prior)
		assert.Equal(t, history[i-1].New, *history[i].Prior, "entry %d breaks the chain", i)
	}

	assert.NotNil(t, ticket.ResolvedAt)
	assert.NotNil(t, ticket.ClosedAt)
}

func TestTransitionTimestampsStickOnFirstReach(t *testing.T) {
	fx := newTicketServiceFixture(t, nil)
	ctx := context.Background()

	ticket, err := fx.service.CreateTicket(ctx, intakeInput("10.0.0.1", "reopened"))
	require.NoError(t, err)

	ticket, _, err = fx.service.Transition(ctx, ticket.ID, domain.TicketStatusResolved, "", nil)
	require.NoError(t, err)
	firstResolved := ticket.ResolvedAt
	require.NotNil(t, firstResolved)

	ticket, _, err = fx.service.Transition(ctx, ticket.ID, domain.TicketStatusInProgress, "reopened", nil)
	require.NoError(t, err)
	ticket, _, err = fx.service.Transition(ctx, ticket.ID, domain.TicketStatusResolved, "fixed again", nil)
	require.NoError(t, err)

	require.NotNil(t, ticket.ResolvedAt)
	assert.True(t, ticket.ResolvedAt.Equal(*firstResolved), "resolvedAt records the first reach only")
}

func TestTransitionSameStatusIsNoOp(t *testing.T) {
	fx := newTicketServiceFixture(t, nil)
	ctx := context.Background()

	ticket, err := fx.service.CreateTicket(ctx, intakeInput("10.0.0.1", "idempotent"))
	require.NoError(t, err)

	updated, entry, err := fx.service.Transition(ctx, ticket.ID, domain.TicketStatusNew, "noop", nil)
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.Equal(t, domain.TicketStatusNew, updated.Status)

	history, err := fx.statusLog.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1, "no-op transition must not append to the chain")
	assert.Empty(t, fx.auditing.byAction(domain.AuditActionStatusChanged), "no-op transition must not audit")
}

func TestTransitionUnknownStatusRejected(t *testing.T) {
	fx := newTicketServiceFixture(t, nil)
	ctx := context.Background()

	ticket, err := fx.service.CreateTicket(ctx, intakeInput("10.0.0.1", "bad status"))
	require.NoError(t, err)

	_, _, err = fx.service.Transition(ctx, ticket.ID, domain.TicketStatus("ESCALATED"), "", nil)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestTransitionMissingTicket(t *testing.T) {
	fx := newTicketServiceFixture(t, nil)

	_, _, err := fx.service.Transition(context.Background(), "ticket-404", domain.TicketStatusClosed, "", nil)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestActivityReturnsAuditTrailAndNotifications(t *testing.T) {
	fx := newTicketServiceFixture(t, nil)
	ctx := context.Background()

	ticket, err := fx.service.CreateTicket(ctx, intakeInput("10.0.0.1", "audited"))
	require.NoError(t, err)
	_, _, err = fx.service.Transition(ctx, ticket.ID, domain.TicketStatusInProgress, "picked up", nil)
	require.NoError(t, err)

	require.NoError(t, fx.notifications.Create(ctx, &domain.NotificationRecord{
		TicketID:  ticket.ID,
		EventKind: "ticket_created",
		Channel:   domain.ChannelEmail,
		Recipient: "desk@example.com",
		Status:    domain.DeliverySent,
	}))

	trail, sent, err := fx.service.Activity(ctx, ticket.ID)
	require.NoError(t, err)

	actions := make([]domain.AuditAction, 0, len(trail))
	for _, entry := range trail {
		actions = append(actions, entry.Action)
	}
	assert.Contains(t, actions, domain.AuditActionTicketCreated)
	assert.Contains(t, actions, domain.AuditActionStatusChanged)

	require.Len(t, sent, 1)
	assert.Equal(t, "desk@example.com", sent[0].Recipient)
}

func TestActivityMissingTicket(t *testing.T) {
	fx := newTicketServiceFixture(t, nil)

	_, _, err := fx.service.Activity(context.Background(), "ticket-404")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestTrackRequiresMatchingEmployeeCode(t *testing.T) {
	fx := newTicketServiceFixture(t, nil)
	ctx := context.Background()

	ticket, err := fx.service.CreateTicket(ctx, intakeInput("10.0.0.1", "track me"))
	require.NoError(t, err)

	_, err = fx.service.Track(ctx, ticket.Code, "WRONG")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err), "wrong proof and unknown code look identical")

	view, err := fx.service.Track(ctx, ticket.Code, "E1001")
	require.NoError(t, err)
	assert.Equal(t, ticket.Code, view.Ticket.Code)
	assert.Len(t, view.History, 1)
	assert.False(t, view.SurveyAllowed, "open ticket has no survey")
}

func TestSurveyOncePerTicket(t *testing.T) {
	fx := newTicketServiceFixture(t, nil)
	ctx := context.Background()

	ticket, err := fx.service.CreateTicket(ctx, intakeInput("10.0.0.1", "rate me"))
	require.NoError(t, err)
	_, _, err = fx.service.Transition(ctx, ticket.ID, domain.TicketStatusResolved, "", nil)
	require.NoError(t, err)

	view, err := fx.service.Track(ctx, ticket.Code, "E1001")
	require.NoError(t, err)
	assert.True(t, view.SurveyAllowed)

	survey, err := fx.service.SubmitSurvey(ctx, ticket.Code, "E1001", 4, "all good")
	require.NoError(t, err)
	assert.Equal(t, 4, survey.Rating)

	_, err = fx.service.SubmitSurvey(ctx, ticket.Code, "E1001", 5, "again")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", domainCode(t, err))

	view, err = fx.service.Track(ctx, ticket.Code, "E1001")
	require.NoError(t, err)
	assert.False(t, view.SurveyAllowed)
}

func TestSurveyRejectedWhileOpen(t *testing.T) {
	fx := newTicketServiceFixture(t, nil)
	ctx := context.Background()

	ticket, err := fx.service.CreateTicket(ctx, intakeInput("10.0.0.1", "too early"))
	require.NoError(t, err)

	_, err = fx.service.SubmitSurvey(ctx, ticket.Code, "E1001", 3, "")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", domainCode(t, err))
}
