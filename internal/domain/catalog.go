package domain

import "time"

// Team is a responsible group tickets are routed to.
type Team struct {
	ID          string
	Name        string
	NotifyEmail string
	WebhookURL  string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category classifies the reported problem.
type Category struct {
	ID       string
	Name     string
	IsActive bool
}

// SupportSystem is the affected system a report is filed against.
type SupportSystem struct {
	ID       string
	Name     string
	IsActive bool
}
