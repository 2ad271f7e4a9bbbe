package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Ticket    TicketSnapshot `json:"ticket"`
	ActorID   *string        `json:"actor_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Comment   string         `json:"comment,omitempty"`
}

// TicketSnapshot carries the ticket fields notification templates consume.
// Dispatch runs detached from the triggering request, so events copy values
// instead of sharing the live aggregate.
type TicketSnapshot struct {
	TicketID      string              `json:"ticket_id"`
	Code          string              `json:"code"`
	Subject       string              `json:"subject"`
	Description   string              `json:"description"`
	Status        domain.TicketStatus `json:"status"`
	PriorityName  string              `json:"priority_name"`
	CategoryName  string              `json:"category_name"`
	AssigneeName  string              `json:"assignee_name"`
	RequesterName string              `json:"requester_name"`
	TeamID        *string             `json:"team_id,omitempty"`
	AssigneeID    *string             `json:"assignee_id,omitempty"`
}

// SnapshotOf captures the template-visible fields of a ticket.
func SnapshotOf(ticket *domain.Ticket) TicketSnapshot {
	return TicketSnapshot{
		TicketID:      ticket.ID,
		Code:          ticket.Code,
		Subject:       ticket.Subject,
		Description:   ticket.Description,
		Status:        ticket.Status,
		RequesterName: ticket.Requester.DisplayName,
		TeamID:        ticket.TeamID,
		AssigneeID:    ticket.AssigneeID,
	}
}
