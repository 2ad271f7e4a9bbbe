package domain

import "time"

// AuditAction enumerates recorded business actions.
type AuditAction string

const (
	AuditActionTicketCreated     AuditAction = "TICKET_CREATED"
	AuditActionStatusChanged     AuditAction = "STATUS_CHANGED"
	AuditActionAssignmentChanged AuditAction = "ASSIGNMENT_CHANGED"
	AuditActionSurveySubmitted   AuditAction = "SURVEY_SUBMITTED"
	AuditActionIntakeRejected    AuditAction = "INTAKE_REJECTED"
)

// AuditLogEntry is an append-only record of a security or business relevant
// action. A nil ActorID means the action was system-initiated.
type AuditLogEntry struct {
	ID         string
	EntityKind string
	EntityID   string
	Action     AuditAction
	Before     map[string]any
	After      map[string]any
	ActorID    *string
	SourceIP   string
	UserAgent  string
	CreatedAt  time.Time
}
