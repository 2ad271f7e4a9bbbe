package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/audit"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/intake"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/ticketcode"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// versionRetries bounds optimistic-lock retries on a single ticket.
const versionRetries = 3

// activityLimit caps how many audit entries the staff activity view returns.
const activityLimit = 200

// TicketService coordinates intake, tracking and the status state machine.
type TicketService struct {
	tickets   repository.TicketRepository
	statusLog repository.StatusLogRepository
	profiles  repository.PriorityProfileRepository
	lookups   repository.LookupRepository
	staff     repository.StaffRepository
	surveys   repository.SurveyRepository
	trail     repository.AuditLogRepository
	sent      repository.NotificationRepository
	guard     *intake.Guard
	codes     *ticketcode.Generator
	resolver  *AssignmentService
	auditor   *audit.Recorder
	dispatch  events.Dispatcher
	logger    *zap.Logger

	codeMaxAttempts int
	now             func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo       repository.TicketRepository
	StatusLogRepo    repository.StatusLogRepository
	ProfileRepo      repository.PriorityProfileRepository
	LookupRepo       repository.LookupRepository
	StaffRepo        repository.StaffRepository
	SurveyRepo       repository.SurveyRepository
	AuditTrailRepo   repository.AuditLogRepository
	NotificationRepo repository.NotificationRepository
	Guard            *intake.Guard
	CodeGenerator    *ticketcode.Generator
	Resolver         *AssignmentService
	Auditor          *audit.Recorder
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
	CodeMaxAttempts  int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	maxAttempts := deps.CodeMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	return &TicketService{
		tickets:         deps.TicketRepo,
		statusLog:       deps.StatusLogRepo,
		profiles:        deps.ProfileRepo,
		lookups:         deps.LookupRepo,
		staff:           deps.StaffRepo,
		surveys:         deps.SurveyRepo,
		trail:           deps.AuditTrailRepo,
		sent:            deps.NotificationRepo,
		guard:           deps.Guard,
		codes:           deps.CodeGenerator,
		resolver:        deps.Resolver,
		auditor:         deps.Auditor,
		dispatch:        deps.Dispatcher,
		logger:          deps.Logger,
		codeMaxAttempts: maxAttempts,
		now:             time.Now,
	}
}

// TicketCreateInput describes an inbound problem report.
type TicketCreateInput struct {
	EmployeeCode   string
	DisplayName    string
	OrgUnitPath    string
	CategoryID     *string
	PriorityID     *string
	SystemID       *string
	Subject        string
	Description    string
	AttachmentKeys []string
	SourceIP       string
	UserAgent      string
}

// CreateTicket runs the full intake pipeline: guard, code generation, rule
// resolution, durable NEW ticket with its synthetic log entry, audit, and a
// fire-and-forget created event.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	fingerprint := intake.Fingerprint(input.EmployeeCode, input.Subject, input.Description)
	decision, err := s.guard.Admit(ctx, input.SourceIP, fingerprint)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	switch decision {
	case intake.DecisionRateLimited:
		s.auditIntakeRejection(ctx, input, "rate_limited")
		return nil, apperrors.NewRateLimited("")
	case intake.DecisionDuplicate:
		s.auditIntakeRejection(ctx, input, "duplicate")
		return nil, apperrors.NewDuplicate("")
	}

	if err := s.validateClassification(ctx, input); err != nil {
		return nil, err
	}

	teamID, err := s.resolver.Resolve(ctx, input.SystemID, input.CategoryID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket := &domain.Ticket{
		Requester: domain.Requester{
			EmployeeCodeHash: domain.HashEmployeeCode(input.EmployeeCode),
			DisplayName:      strings.TrimSpace(input.DisplayName),
			OrgUnitPath:      strings.TrimSpace(input.OrgUnitPath),
		},
		CategoryID:     input.CategoryID,
		PriorityID:     input.PriorityID,
		SystemID:       input.SystemID,
		Subject:        strings.TrimSpace(input.Subject),
		Description:    strings.TrimSpace(input.Description),
		TeamID:         teamID,
		Status:         domain.TicketStatusNew,
		AttachmentKeys: input.AttachmentKeys,
		SourceIP:       input.SourceIP,
		UserAgent:      input.UserAgent,
	}

	if err := s.createWithUniqueCode(ctx, ticket); err != nil {
		return nil, err
	}

	initial := &domain.StatusLogEntry{
		TicketID: ticket.ID,
		Prior:    nil,
		New:      domain.TicketStatusNew,
	}
	if err := s.statusLog.Create(ctx, initial); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.auditor.Record(ctx, &domain.AuditLogEntry{
		EntityKind: "ticket",
		EntityID:   ticket.ID,
		Action:     domain.AuditActionTicketCreated,
		After: map[string]any{
			"code":    ticket.Code,
			"status":  ticket.Status,
			"team_id": ticket.TeamID,
		},
		SourceIP:  input.SourceIP,
		UserAgent: input.UserAgent,
	})

	s.publish(ctx, events.Event{
		Type:   events.EventTicketCreated,
		Ticket: s.snapshotFor(ctx, ticket),
	})
	return ticket, nil
}

// Transition moves a ticket to newStatus. Re-asserting the current status is
// a no-op that returns a nil log entry. Any other transition is accepted,
// appends exactly one status log entry and one audit entry, and stamps
// resolvedAt/closedAt on first reach.
func (s *TicketService) Transition(ctx context.Context, ticketID string, newStatus domain.TicketStatus, note string, actorID *string) (*domain.Ticket, *domain.StatusLogEntry, error) {
	if !domain.IsKnownStatus(newStatus) {
		return nil, nil, apperrors.NewValidationError("unknown status", map[string]any{"status": newStatus})
	}

	var lastErr error
	for attempt := 0; attempt < versionRetries; attempt++ {
		ticket, err := s.tickets.GetByID(ctx, ticketID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return nil, nil, apperrors.MapError(err)
		}

		if !domain.TransitionAllowed(ticket.Status, newStatus) {
			// Same-status transition: nothing to record.
			return ticket, nil, nil
		}

		prior := ticket.Status
		now := s.now()
		ticket.Status = newStatus
		if newStatus == domain.TicketStatusResolved && ticket.ResolvedAt == nil {
			ticket.ResolvedAt = &now
		}
		if newStatus == domain.TicketStatusClosed && ticket.ClosedAt == nil {
			ticket.ClosedAt = &now
		}

		if err := s.tickets.Update(ctx, ticket); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				lastErr = err
				continue
			}
			return nil, nil, apperrors.MapError(err)
		}

		entry := &domain.StatusLogEntry{
			TicketID: ticket.ID,
			Prior:    &prior,
			New:      newStatus,
			Note:     note,
			ActorID:  actorID,
		}
		if err := s.statusLog.Create(ctx, entry); err != nil {
			return nil, nil, apperrors.MapError(err)
		}

		s.auditor.Record(ctx, &domain.AuditLogEntry{
			EntityKind: "ticket",
			EntityID:   ticket.ID,
			Action:     domain.AuditActionStatusChanged,
			Before:     map[string]any{"status": prior},
			After:      map[string]any{"status": newStatus, "note": note},
			ActorID:    actorID,
		})

		event := events.Event{
			Type:    events.EventTicketStatusChanged,
			Ticket:  s.snapshotFor(ctx, ticket),
			ActorID: actorID,
			Comment: note,
		}
		s.publish(ctx, event)
		return ticket, entry, nil
	}
	return nil, nil, apperrors.NewConflict("concurrent ticket update", map[string]any{"ticket_id": ticketID, "cause": lastErr.Error()})
}

// TrackingView is what the public tracking endpoint exposes.
type TrackingView struct {
	Ticket        *domain.Ticket
	History       []domain.StatusLogEntry
	SurveyAllowed bool
}

// Track returns the state of a ticket identified by public code, guarded by
// the submitter's identity proof. Unknown codes and failed proofs are
// indistinguishable to the caller.
func (s *TicketService) Track(ctx context.Context, code, employeeCode string) (*TrackingView, error) {
	ticket, err := s.tickets.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if !domain.VerifyEmployeeCode(ticket.Requester.EmployeeCodeHash, employeeCode) {
		return nil, apperrors.NewNotFound("ticket", nil)
	}

	history, err := s.statusLog.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	surveyAllowed := false
	if ticket.Status == domain.TicketStatusResolved || ticket.Status == domain.TicketStatusClosed {
		exists, err := s.surveys.ExistsForTicket(ctx, ticket.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		surveyAllowed = !exists
	}

	return &TrackingView{Ticket: ticket, History: history, SurveyAllowed: surveyAllowed}, nil
}

// SubmitSurvey records the requester's one-time satisfaction rating.
func (s *TicketService) SubmitSurvey(ctx context.Context, code, employeeCode string, rating int, comment string) (*domain.SatisfactionSurvey, error) {
	view, err := s.Track(ctx, code, employeeCode)
	if err != nil {
		return nil, err
	}
	if !view.SurveyAllowed {
		return nil, apperrors.NewConflict("survey not available for this ticket", nil)
	}

	survey := &domain.SatisfactionSurvey{
		TicketID: view.Ticket.ID,
		Rating:   rating,
		Comment:  strings.TrimSpace(comment),
	}
	if err := s.surveys.Create(ctx, survey); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.auditor.Record(ctx, &domain.AuditLogEntry{
		EntityKind: "ticket",
		EntityID:   view.Ticket.ID,
		Action:     domain.AuditActionSurveySubmitted,
		After:      map[string]any{"rating": rating},
	})
	return survey, nil
}

// GetForStaff loads a ticket with its full status history.
func (s *TicketService) GetForStaff(ctx context.Context, ticketID string) (*domain.Ticket, []domain.StatusLogEntry, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, nil, apperrors.MapError(err)
	}
	history, err := s.statusLog.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, history, nil
}

// Activity returns the audit trail and notification attempts recorded for a
// ticket, for the staff detail view.
func (s *TicketService) Activity(ctx context.Context, ticketID string) ([]domain.AuditLogEntry, []domain.NotificationRecord, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, nil, apperrors.MapError(err)
	}

	trail, err := s.trail.ListByEntity(ctx, "ticket", ticketID, activityLimit)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	sent, err := s.sent.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return trail, sent, nil
}

func (s *TicketService) validateClassification(ctx context.Context, input TicketCreateInput) error {
	if input.CategoryID != nil {
		if _, err := s.lookups.GetCategory(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewValidationError("unknown category", map[string]any{"category_id": *input.CategoryID})
			}
			return apperrors.MapError(err)
		}
	}
	if input.SystemID != nil {
		if _, err := s.lookups.GetSystem(ctx, *input.SystemID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewValidationError("unknown system", map[string]any{"system_id": *input.SystemID})
			}
			return apperrors.MapError(err)
		}
	}
	if input.PriorityID != nil {
		if _, err := s.profiles.GetByID(ctx, *input.PriorityID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewValidationError("unknown priority", map[string]any{"priority_id": *input.PriorityID})
			}
			return apperrors.MapError(err)
		}
	}
	return nil
}

// createWithUniqueCode inserts the ticket, regenerating the public code on
// collision. The store-side unique index is the source of truth; the
// pre-check just keeps retries cheap.
func (s *TicketService) createWithUniqueCode(ctx context.Context, ticket *domain.Ticket) error {
	for attempt := 0; attempt < s.codeMaxAttempts; attempt++ {
		ticket.Code = s.codes.Generate()

		taken, err := s.tickets.CodeExists(ctx, ticket.Code)
		if err != nil {
			return apperrors.MapError(err)
		}
		if taken {
			continue
		}

		err = s.tickets.Create(ctx, ticket)
		if err == nil {
			return nil
		}
		if isUniqueViolation(err) {
			continue
		}
		return apperrors.MapError(err)
	}
	s.logger.Error("ticket code generation exhausted attempts", zap.Int("attempts", s.codeMaxAttempts))
	return apperrors.NewInternalError(errors.New("could not allocate unique ticket code"))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *TicketService) auditIntakeRejection(ctx context.Context, input TicketCreateInput, reason string) {
	s.auditor.Record(ctx, &domain.AuditLogEntry{
		EntityKind: "intake",
		EntityID:   input.SourceIP,
		Action:     domain.AuditActionIntakeRejected,
		After:      map[string]any{"reason": reason, "subject": input.Subject},
		SourceIP:   input.SourceIP,
		UserAgent:  input.UserAgent,
	})
}

// snapshotFor enriches the event snapshot with display names. Lookup failures
// leave the corresponding fields empty; notifications degrade, they do not
// block.
func (s *TicketService) snapshotFor(ctx context.Context, ticket *domain.Ticket) events.TicketSnapshot {
	snap := events.SnapshotOf(ticket)
	if ticket.PriorityID != nil {
		if profile, err := s.profiles.GetByID(ctx, *ticket.PriorityID); err == nil {
			snap.PriorityName = profile.Name
		}
	}
	if ticket.CategoryID != nil {
		if category, err := s.lookups.GetCategory(ctx, *ticket.CategoryID); err == nil {
			snap.CategoryName = category.Name
		}
	}
	if ticket.AssigneeID != nil {
		if assignee, err := s.staff.GetByID(ctx, *ticket.AssigneeID); err == nil {
			snap.AssigneeName = assignee.Name
		}
	}
	return snap
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatch == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatch.Publish(ctx, event)
}
