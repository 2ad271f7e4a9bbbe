package domain

import "time"

// SatisfactionSurvey is the requester's one-time rating of a finished ticket.
type SatisfactionSurvey struct {
	ID        string
	TicketID  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}
