package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/sla"
)

// SLATicketResponse pairs an open ticket with its derived SLA numbers.
type SLATicketResponse struct {
	TicketID         string              `json:"ticket_id"`
	Code             string              `json:"code"`
	Subject          string              `json:"subject"`
	Status           domain.TicketStatus `json:"status"`
	TeamID           *string             `json:"team_id"`
	PriorityID       *string             `json:"priority_id"`
	AgeMinutes       int                 `json:"age_minutes"`
	ResponseTarget   int                 `json:"response_target_minutes"`
	ResolveTarget    int                 `json:"resolve_target_minutes"`
	ResponseBreached bool                `json:"response_breached"`
	ResolveBreached  bool                `json:"resolve_breached"`
	ResolvePercent   int                 `json:"resolve_percent"`
	Bucket           sla.Bucket          `json:"bucket"`
}

// SLAReportResponse partitions open tickets by SLA state.
type SLAReportResponse struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Breached    []SLATicketResponse `json:"breached"`
	AtRisk      []SLATicketResponse `json:"at_risk"`
	OnTrack     []SLATicketResponse `json:"on_track"`
	Totals      map[string]int      `json:"totals"`
}
