package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew         TicketStatus = "NEW"
	TicketStatusInProgress  TicketStatus = "IN_PROGRESS"
	TicketStatusWaitingUser TicketStatus = "WAITING_USER"
	TicketStatusResolved    TicketStatus = "RESOLVED"
	TicketStatusClosed      TicketStatus = "CLOSED"
	TicketStatusRejected    TicketStatus = "REJECTED"
)

// KnownStatuses lists every valid ticket status.
var KnownStatuses = []TicketStatus{
	TicketStatusNew,
	TicketStatusInProgress,
	TicketStatusWaitingUser,
	TicketStatusResolved,
	TicketStatusClosed,
	TicketStatusRejected,
}

// IsKnownStatus reports whether s is a valid status value.
func IsKnownStatus(s TicketStatus) bool {
	for _, candidate := range KnownStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are expected from s.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusClosed || s == TicketStatusRejected
}

// TerminalForSLA reports whether s excludes the ticket from open SLA reporting.
func (s TicketStatus) TerminalForSLA() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed || s == TicketStatusRejected
}

// TransitionAllowed is the transition-accepted predicate. The graph is
// intentionally permissive: staff may re-open, reject late, and so on. Only a
// transition to the current status is refused; callers treat it as a no-op.
func TransitionAllowed(current, next TicketStatus) bool {
	return current != next
}

// Requester identifies the submitter of a ticket. The employee code is stored
// as a hash and doubles as the identity proof for public tracking.
type Requester struct {
	EmployeeCodeHash string
	DisplayName      string
	OrgUnitPath      string
}

// Ticket is the aggregate for submitted problem reports.
type Ticket struct {
	ID             string
	Code           string
	Requester      Requester
	CategoryID     *string
	PriorityID     *string
	SystemID       *string
	Subject        string
	Description    string
	TeamID         *string
	AssigneeID     *string
	Status         TicketStatus
	AttachmentKeys []string
	SourceIP       string
	UserAgent      string
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ResolvedAt     *time.Time
	ClosedAt       *time.Time
}
