package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// In-memory repository fakes. They mimic the store-level contracts the
// services rely on: generated ids, version-checked updates, and pgx.ErrNoRows
// for misses.

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
	nextID  int

	// takenCodes makes CodeExists report collisions for scripted codes.
	takenCodes map[string]bool
	// forceTakenCalls makes the first N CodeExists calls report a collision
	// regardless of the code, to exercise the retry loop.
	forceTakenCalls int
	codeChecks      int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets:    make(map[string]*domain.Ticket),
		takenCodes: make(map[string]bool),
	}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	ticket.ID = fmt.Sprintf("ticket-%d", r.nextID)
	ticket.Version = 1
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != ticket.Version {
		return repository.ErrVersionConflict
	}
	ticket.Version++
	ticket.UpdatedAt = time.Now()
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeTicketRepo) GetByCode(_ context.Context, code string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.tickets {
		if stored.Code == code {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) CodeExists(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codeChecks++
	if r.forceTakenCalls > 0 {
		r.forceTakenCalls--
		return true, nil
	}
	if r.takenCodes[code] {
		return true, nil
	}
	for _, stored := range r.tickets {
		if stored.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	allowed := make(map[domain.TicketStatus]struct{}, len(filter.Statuses))
	for _, status := range filter.Statuses {
		allowed[status] = struct{}{}
	}

	var result []domain.Ticket
	for _, stored := range r.tickets {
		if len(allowed) > 0 {
			if _, ok := allowed[stored.Status]; !ok {
				continue
			}
		}
		if filter.TeamID != nil && (stored.TeamID == nil || *stored.TeamID != *filter.TeamID) {
			continue
		}
		result = append(result, *stored)
	}
	return result, nil
}

type fakeStatusLogRepo struct {
	mu      sync.Mutex
	entries []domain.StatusLogEntry
	nextID  int
}

func (r *fakeStatusLogRepo) Create(_ context.Context, entry *domain.StatusLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entry.ID = fmt.Sprintf("log-%d", r.nextID)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeStatusLogRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.StatusLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.StatusLogEntry
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

type fakeProfileRepo struct {
	profiles map[string]domain.PriorityProfile
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id string) (*domain.PriorityProfile, error) {
	profile, ok := r.profiles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &profile, nil
}

func (r *fakeProfileRepo) List(_ context.Context) ([]domain.PriorityProfile, error) {
	var result []domain.PriorityProfile
	for _, profile := range r.profiles {
		result = append(result, profile)
	}
	return result, nil
}

type fakeLookupRepo struct {
	categories map[string]domain.Category
	systems    map[string]domain.SupportSystem
}

func (r *fakeLookupRepo) GetCategory(_ context.Context, id string) (*domain.Category, error) {
	category, ok := r.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &category, nil
}

func (r *fakeLookupRepo) GetSystem(_ context.Context, id string) (*domain.SupportSystem, error) {
	system, ok := r.systems[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &system, nil
}

type fakeStaffRepo struct {
	members map[string]domain.StaffMember
}

func (r *fakeStaffRepo) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	member, ok := r.members[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &member, nil
}

func (r *fakeStaffRepo) GetByEmail(_ context.Context, email string) (*domain.StaffMember, error) {
	for _, member := range r.members {
		if member.Email == email {
			copied := member
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeSurveyRepo struct {
	mu      sync.Mutex
	surveys map[string]domain.SatisfactionSurvey
	nextID  int
}

func newFakeSurveyRepo() *fakeSurveyRepo {
	return &fakeSurveyRepo{surveys: make(map[string]domain.SatisfactionSurvey)}
}

func (r *fakeSurveyRepo) Create(_ context.Context, survey *domain.SatisfactionSurvey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	survey.ID = fmt.Sprintf("survey-%d", r.nextID)
	survey.CreatedAt = time.Now()
	r.surveys[survey.TicketID] = *survey
	return nil
}

func (r *fakeSurveyRepo) ExistsForTicket(_ context.Context, ticketID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.surveys[ticketID]
	return ok, nil
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	records []domain.NotificationRecord
	nextID  int
}

func (r *fakeNotificationRepo) Create(_ context.Context, record *domain.NotificationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	record.ID = fmt.Sprintf("notif-%d", r.nextID)
	record.CreatedAt = time.Now()
	r.records = append(r.records, *record)
	return nil
}

func (r *fakeNotificationRepo) UpdateOutcome(_ context.Context, id string, status domain.DeliveryStatus, errText string, sentAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].ID == id {
			r.records[i].Status = status
			r.records[i].Error = errText
			r.records[i].SentAt = sentAt
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeNotificationRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.NotificationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.NotificationRecord
	for _, record := range r.records {
		if record.TicketID == ticketID {
			result = append(result, record)
		}
	}
	return result, nil
}

type fakeRuleRepo struct {
	rules []domain.AssignmentRule
}

func (r *fakeRuleRepo) ListActive(_ context.Context) ([]domain.AssignmentRule, error) {
	var result []domain.AssignmentRule
	for _, rule := range r.rules {
		if rule.Active {
			result = append(result, rule)
		}
	}
	return result, nil
}

type fakeTeamRepo struct {
	teams map[string]domain.Team
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id string) (*domain.Team, error) {
	team, ok := r.teams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &team, nil
}

func (r *fakeTeamRepo) ListActive(_ context.Context) ([]domain.Team, error) {
	var result []domain.Team
	for _, team := range r.teams {
		if team.IsActive {
			result = append(result, team)
		}
	}
	return result, nil
}

type fakeAuditStore struct {
	mu      sync.Mutex
	entries []domain.AuditLogEntry
}

func (s *fakeAuditStore) Create(_ context.Context, entry *domain.AuditLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *fakeAuditStore) ListByEntity(_ context.Context, entityKind, entityID string, limit int) ([]domain.AuditLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.AuditLogEntry
	for _, entry := range s.entries {
		if entry.EntityKind != entityKind || entry.EntityID != entityID {
			continue
		}
		result = append(result, entry)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func (s *fakeAuditStore) byAction(action domain.AuditAction) []domain.AuditLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.AuditLogEntry
	for _, entry := range s.entries {
		if entry.Action == action {
			result = append(result, entry)
		}
	}
	return result
}
