package domain

import "time"

// AssignmentRule routes new tickets to a team. A nil SystemID or CategoryID
// filter matches any value; a rule with both filters nil is a catch-all.
// Higher Priority wins among matching rules.
type AssignmentRule struct {
	ID         string
	TeamID     string
	SystemID   *string
	CategoryID *string
	Priority   int
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Matches reports whether the rule applies to the given classification.
func (r AssignmentRule) Matches(systemID, categoryID *string) bool {
	if !r.Active {
		return false
	}
	if r.SystemID != nil && (systemID == nil || *r.SystemID != *systemID) {
		return false
	}
	if r.CategoryID != nil && (categoryID == nil || *r.CategoryID != *categoryID) {
		return false
	}
	return true
}
