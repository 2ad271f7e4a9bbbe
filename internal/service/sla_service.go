package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/sla"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// SLAService computes on-demand SLA reports over open tickets. Nothing here
// is persisted; every call re-derives the view from ticket age and targets.
type SLAService struct {
	tickets   repository.TicketRepository
	profiles  repository.PriorityProfileRepository
	evaluator *sla.Evaluator
	logger    *zap.Logger
	now       func() time.Time
}

// NewSLAService constructs the service.
func NewSLAService(
	tickets repository.TicketRepository,
	profiles repository.PriorityProfileRepository,
	evaluator *sla.Evaluator,
	logger *zap.Logger,
) *SLAService {
	return &SLAService{
		tickets:   tickets,
		profiles:  profiles,
		evaluator: evaluator,
		logger:    logger,
		now:       time.Now,
	}
}

// TicketSLA pairs a ticket with its derived SLA view.
type TicketSLA struct {
	Ticket *domain.Ticket
	View   sla.View
}

// Report partitions open tickets into SLA buckets.
type Report struct {
	GeneratedAt time.Time
	Breached    []TicketSLA
	AtRisk      []TicketSLA
	OnTrack     []TicketSLA
}

// ReportFilter narrows an SLA report.
type ReportFilter struct {
	TeamID *string
	Limit  int
	Offset int
}

// Report evaluates all open tickets and buckets them. Terminal tickets are
// out of scope: their SLA state was fixed the moment they resolved.
func (s *SLAService) Report(ctx context.Context, filter ReportFilter) (*Report, error) {
	open := make([]domain.TicketStatus, 0, len(domain.KnownStatuses))
	for _, status := range domain.KnownStatuses {
		if !status.TerminalForSLA() {
			open = append(open, status)
		}
	}

	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		Statuses: open,
		TeamID:   filter.TeamID,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byID := make(map[string]*domain.PriorityProfile, len(profiles))
	for i := range profiles {
		byID[profiles[i].ID] = &profiles[i]
	}

	now := s.now()
	report := &Report{GeneratedAt: now}
	for i := range tickets {
		ticket := &tickets[i]
		var profile *domain.PriorityProfile
		if ticket.PriorityID != nil {
			profile = byID[*ticket.PriorityID]
		}
		entry := TicketSLA{Ticket: ticket, View: s.evaluator.Evaluate(ticket, profile, now)}
		switch entry.View.Bucket {
		case sla.BucketBreached:
			report.Breached = append(report.Breached, entry)
		case sla.BucketAtRisk:
			report.AtRisk = append(report.AtRisk, entry)
		default:
			report.OnTrack = append(report.OnTrack, entry)
		}
	}
	return report, nil
}
