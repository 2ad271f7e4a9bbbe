package sla

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Bucket classifies an open ticket for SLA reporting.
type Bucket string

const (
	BucketBreached Bucket = "BREACHED"
	BucketAtRisk   Bucket = "AT_RISK"
	BucketOnTrack  Bucket = "ON_TRACK"
)

// Defaults supplies targets for tickets without a priority profile.
type Defaults struct {
	ResponseMinutes int
	ResolveMinutes  int
	AtRiskPercent   int
}

// View is the derived SLA state of a ticket at a point in time. It is
// computed on demand and never persisted.
type View struct {
	AgeMinutes             int
	ResponseTargetMinutes  int
	ResolveTargetMinutes   int
	ResponseBreached       bool
	ResolveBreached        bool
	ResponsePercent        int
	ResolvePercent         int
	Bucket                 Bucket
}

// Evaluator derives SLA views from ticket age and priority targets.
type Evaluator struct {
	defaults Defaults
}

// NewEvaluator builds an evaluator with the given fallback targets.
func NewEvaluator(defaults Defaults) *Evaluator {
	if defaults.ResponseMinutes <= 0 {
		defaults.ResponseMinutes = 120
	}
	if defaults.ResolveMinutes <= 0 {
		defaults.ResolveMinutes = 480
	}
	if defaults.AtRiskPercent <= 0 {
		defaults.AtRiskPercent = 75
	}
	return &Evaluator{defaults: defaults}
}

// Evaluate computes the SLA view for a ticket. profile may be nil; the
// configured defaults apply then. Bucketing compares the resolve SLA only;
// the response breach is surfaced but does not move the bucket.
func (e *Evaluator) Evaluate(ticket *domain.Ticket, profile *domain.PriorityProfile, now time.Time) View {
	responseTarget := e.defaults.ResponseMinutes
	resolveTarget := e.defaults.ResolveMinutes
	if profile != nil {
		if profile.ResponseTargetMinutes > 0 {
			responseTarget = profile.ResponseTargetMinutes
		}
		if profile.ResolveTargetMinutes > 0 {
			resolveTarget = profile.ResolveTargetMinutes
		}
	}

	age := int(now.Sub(ticket.CreatedAt).Minutes())
	if age < 0 {
		age = 0
	}

	view := View{
		AgeMinutes:            age,
		ResponseTargetMinutes: responseTarget,
		ResolveTargetMinutes:  resolveTarget,
		ResponseBreached:      age > responseTarget,
		ResolveBreached:       age > resolveTarget,
		ResponsePercent:       percentOf(age, responseTarget),
		ResolvePercent:        percentOf(age, resolveTarget),
	}

	switch {
	case view.ResolveBreached:
		view.Bucket = BucketBreached
	case view.ResolvePercent >= e.defaults.AtRiskPercent:
		view.Bucket = BucketAtRisk
	default:
		view.Bucket = BucketOnTrack
	}
	return view
}

func percentOf(age, target int) int {
	if target <= 0 {
		return 100
	}
	percent := age * 100 / target
	if percent > 100 {
		return 100
	}
	return percent
}
