package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/audit"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AssignmentService resolves routing rules at intake and applies manual
// reassignments by staff.
type AssignmentService struct {
	rules    repository.AssignmentRuleRepository
	tickets  repository.TicketRepository
	teams    repository.TeamRepository
	staff    repository.StaffRepository
	auditor  *audit.Recorder
	dispatch events.Dispatcher
	logger   *zap.Logger
	now      func() time.Time
}

// NewAssignmentService constructs the service.
func NewAssignmentService(
	rules repository.AssignmentRuleRepository,
	tickets repository.TicketRepository,
	teams repository.TeamRepository,
	staff repository.StaffRepository,
	auditor *audit.Recorder,
	dispatch events.Dispatcher,
	logger *zap.Logger,
) *AssignmentService {
	return &AssignmentService{
		rules:    rules,
		tickets:  tickets,
		teams:    teams,
		staff:    staff,
		auditor:  auditor,
		dispatch: dispatch,
		logger:   logger,
		now:      time.Now,
	}
}

// Resolve picks the responsible team for a new ticket. Among active rules
// whose filters match, the highest Priority wins; ties fall to the rule with
// the smallest id, which the repository already orders first. No match means
// the ticket starts unassigned, which is a valid outcome, not an error.
func (s *AssignmentService) Resolve(ctx context.Context, systemID, categoryID *string) (*string, error) {
	rules, err := s.rules.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var best *domain.AssignmentRule
	for i := range rules {
		rule := &rules[i]
		if !rule.Matches(systemID, categoryID) {
			continue
		}
		if best == nil || rule.Priority > best.Priority {
			best = rule
		}
	}
	if best == nil {
		return nil, nil
	}
	teamID := best.TeamID
	return &teamID, nil
}

// AssignTeam routes an existing ticket to a team (or clears the team with a
// nil id). Emits one audit entry and an assigned event.
func (s *AssignmentService) AssignTeam(ctx context.Context, ticketID string, teamID *string, actorID *string) (*domain.Ticket, error) {
	if teamID != nil {
		team, err := s.teams.GetByID(ctx, *teamID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("unknown team", map[string]any{"team_id": *teamID})
			}
			return nil, apperrors.MapError(err)
		}
		if !team.IsActive {
			return nil, apperrors.NewValidationError("team is inactive", map[string]any{"team_id": *teamID})
		}
	}
	return s.applyAssignment(ctx, ticketID, actorID, func(ticket *domain.Ticket) map[string]any {
		before := map[string]any{"team_id": ticket.TeamID}
		ticket.TeamID = teamID
		return before
	})
}

// AssignStaff sets or clears the individual assignee on a ticket.
func (s *AssignmentService) AssignStaff(ctx context.Context, ticketID string, assigneeID *string, actorID *string) (*domain.Ticket, error) {
	if assigneeID != nil {
		member, err := s.staff.GetByID(ctx, *assigneeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("unknown assignee", map[string]any{"assignee_id": *assigneeID})
			}
			return nil, apperrors.MapError(err)
		}
		if !member.Active {
			return nil, apperrors.NewValidationError("assignee is inactive", map[string]any{"assignee_id": *assigneeID})
		}
	}
	return s.applyAssignment(ctx, ticketID, actorID, func(ticket *domain.Ticket) map[string]any {
		before := map[string]any{"assignee_id": ticket.AssigneeID}
		ticket.AssigneeID = assigneeID
		return before
	})
}

func (s *AssignmentService) applyAssignment(ctx context.Context, ticketID string, actorID *string, mutate func(*domain.Ticket) map[string]any) (*domain.Ticket, error) {
	var lastErr error
	for attempt := 0; attempt < versionRetries; attempt++ {
		ticket, err := s.tickets.GetByID(ctx, ticketID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return nil, apperrors.MapError(err)
		}

		before := mutate(ticket)
		if err := s.tickets.Update(ctx, ticket); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				lastErr = err
				continue
			}
			return nil, apperrors.MapError(err)
		}

		s.auditor.Record(ctx, &domain.AuditLogEntry{
			EntityKind: "ticket",
			EntityID:   ticket.ID,
			Action:     domain.AuditActionAssignmentChanged,
			Before:     before,
			After:      map[string]any{"team_id": ticket.TeamID, "assignee_id": ticket.AssigneeID},
			ActorID:    actorID,
		})

		if s.dispatch != nil {
			snap := events.SnapshotOf(ticket)
			if ticket.AssigneeID != nil {
				if member, err := s.staff.GetByID(ctx, *ticket.AssigneeID); err == nil {
					snap.AssigneeName = member.Name
				}
			}
			_ = s.dispatch.Publish(ctx, events.Event{
				ID:        uuid.NewString(),
				Type:      events.EventTicketAssigned,
				Ticket:    snap,
				ActorID:   actorID,
				Timestamp: s.now(),
			})
		}
		return ticket, nil
	}
	return nil, apperrors.NewConflict("concurrent ticket update", map[string]any{"ticket_id": ticketID, "cause": lastErr.Error()})
}
