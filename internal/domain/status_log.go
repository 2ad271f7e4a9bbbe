package domain

import "time"

// StatusLogEntry is one immutable record of a status transition. Entries for a
// ticket form a contiguous chain: each Prior equals the previous entry's New,
// and the synthetic initial entry has a nil Prior.
type StatusLogEntry struct {
	ID        string
	TicketID  string
	Prior     *TicketStatus
	New       TicketStatus
	Note      string
	ActorID   *string
	CreatedAt time.Time
}
