package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest is the public intake payload.
type CreateTicketRequest struct {
	EmployeeCode   string   `json:"employee_code" validate:"required,min=2,max=32"`
	DisplayName    string   `json:"display_name" validate:"required,max=120"`
	OrgUnitPath    string   `json:"org_unit_path" validate:"max=250"`
	CategoryID     *string  `json:"category_id"`
	PriorityID     *string  `json:"priority_id"`
	SystemID       *string  `json:"system_id"`
	Subject        string   `json:"subject" validate:"required,max=200"`
	Description    string   `json:"description" validate:"required,max=8000"`
	AttachmentKeys []string `json:"attachment_keys" validate:"max=10,dive,max=250"`
}

// TicketCreatedResponse returns the public handle for a new ticket.
type TicketCreatedResponse struct {
	Code      string              `json:"code"`
	Status    domain.TicketStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}

// StatusLogResponse is one entry of a ticket's status history.
type StatusLogResponse struct {
	Prior     *domain.TicketStatus `json:"prior_status"`
	New       domain.TicketStatus  `json:"new_status"`
	Note      string               `json:"note,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// TrackTicketResponse is the requester-facing view of a ticket.
type TrackTicketResponse struct {
	Code          string              `json:"code"`
	Subject       string              `json:"subject"`
	Status        domain.TicketStatus `json:"status"`
	CreatedAt     time.Time           `json:"created_at"`
	ResolvedAt    *time.Time          `json:"resolved_at,omitempty"`
	ClosedAt      *time.Time          `json:"closed_at,omitempty"`
	History       []StatusLogResponse `json:"history"`
	SurveyAllowed bool                `json:"survey_allowed"`
}

// SubmitSurveyRequest is the one-time satisfaction survey payload.
type SubmitSurveyRequest struct {
	EmployeeCode string `json:"employee_code" validate:"required,min=2,max=32"`
	Rating       int    `json:"rating" validate:"required,min=1,max=5"`
	Comment      string `json:"comment" validate:"max=2000"`
}
