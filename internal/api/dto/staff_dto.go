package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// StaffLoginRequest payload.
type StaffLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// StaffLoginResponse carries the issued token.
type StaffLoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	StaffID   string           `json:"staff_id"`
	Name      string           `json:"name"`
	Role      domain.StaffRole `json:"role"`
}

// UpdateStatusRequest moves a ticket to a new lifecycle state.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status" validate:"required"`
	Note   string              `json:"note" validate:"max=2000"`
}

// UpdateAssignmentRequest reroutes a ticket. Omitted fields stay untouched;
// explicit nulls clear the corresponding assignment.
type UpdateAssignmentRequest struct {
	TeamID     *string `json:"team_id"`
	AssigneeID *string `json:"assignee_id"`
	ClearTeam  bool    `json:"clear_team"`
	ClearStaff bool    `json:"clear_assignee"`
}

// StaffTicketResponse is the staff-facing ticket view.
type StaffTicketResponse struct {
	ID             string              `json:"id"`
	Code           string              `json:"code"`
	RequesterName  string              `json:"requester_name"`
	OrgUnitPath    string              `json:"org_unit_path,omitempty"`
	CategoryID     *string             `json:"category_id"`
	PriorityID     *string             `json:"priority_id"`
	SystemID       *string             `json:"system_id"`
	Subject        string              `json:"subject"`
	Description    string              `json:"description"`
	TeamID         *string             `json:"team_id"`
	AssigneeID     *string             `json:"assignee_id"`
	Status         domain.TicketStatus `json:"status"`
	AttachmentKeys []string            `json:"attachment_keys,omitempty"`
	Version        int64               `json:"version"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	ResolvedAt     *time.Time          `json:"resolved_at,omitempty"`
	ClosedAt       *time.Time          `json:"closed_at,omitempty"`
}

// StaffTicketDetailResponse adds the status history.
type StaffTicketDetailResponse struct {
	StaffTicketResponse
	History []StaffStatusLogResponse `json:"history"`
}

// StaffStatusLogResponse is a history entry including the acting staff id.
type StaffStatusLogResponse struct {
	ID        string               `json:"id"`
	Prior     *domain.TicketStatus `json:"prior_status"`
	New       domain.TicketStatus  `json:"new_status"`
	Note      string               `json:"note,omitempty"`
	ActorID   *string              `json:"actor_id,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// AuditLogResponse is one entry of a ticket's audit trail.
type AuditLogResponse struct {
	ID        string             `json:"id"`
	Action    domain.AuditAction `json:"action"`
	Before    map[string]any     `json:"before,omitempty"`
	After     map[string]any     `json:"after,omitempty"`
	ActorID   *string            `json:"actor_id,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// NotificationRecordResponse is one delivery attempt for a ticket.
type NotificationRecordResponse struct {
	ID        string                     `json:"id"`
	EventKind string                     `json:"event_kind"`
	Channel   domain.NotificationChannel `json:"channel"`
	Recipient string                     `json:"recipient"`
	Status    domain.DeliveryStatus      `json:"status"`
	Error     string                     `json:"error,omitempty"`
	SentAt    *time.Time                 `json:"sent_at,omitempty"`
	CreatedAt time.Time                  `json:"created_at"`
}

// TicketActivityResponse bundles a ticket's audit trail with its outbound
// notification attempts.
type TicketActivityResponse struct {
	Audit         []AuditLogResponse           `json:"audit"`
	Notifications []NotificationRecordResponse `json:"notifications"`
}
