package domain

import "time"

// PriorityProfile carries SLA targets for a priority level. Tickets reference
// a profile by id and never copy its values.
type PriorityProfile struct {
	ID                     string
	Name                   string
	SeverityRank           int
	ResponseTargetMinutes  int
	ResolveTargetMinutes   int
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
