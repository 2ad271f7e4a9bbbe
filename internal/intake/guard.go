package intake

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Decision is the guard's verdict on a submission.
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionRateLimited
	DecisionDuplicate
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionRateLimited:
		return "rate_limited"
	case DecisionDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Guard applies the pre-admission rejection filters: a per-source rate limit
// and a short-window duplicate check. It never mutates ticket state.
type Guard struct {
	cache        Cache
	limit        int64
	window       time.Duration
	duplicateTTL time.Duration
}

// NewGuard builds a guard over the given cache backend.
func NewGuard(cache Cache, limit int, window, duplicateTTL time.Duration) *Guard {
	if limit <= 0 {
		limit = 3
	}
	if window <= 0 {
		window = time.Minute
	}
	if duplicateTTL <= 0 {
		duplicateTTL = 5 * time.Minute
	}
	return &Guard{
		cache:        cache,
		limit:        int64(limit),
		window:       window,
		duplicateTTL: duplicateTTL,
	}
}

// Admit decides whether a submission from sourceKey with the given content
// fingerprint may proceed. On Allow the admission is recorded for future rate
// and duplicate checks.
func (g *Guard) Admit(ctx context.Context, sourceKey, fingerprint string) (Decision, error) {
	count, err := g.cache.Incr(ctx, "rate:"+sourceKey, g.window)
	if err != nil {
		return DecisionAllow, err
	}
	if count > g.limit {
		return DecisionRateLimited, nil
	}

	// Duplicate suppression is global: the fingerprint blocks re-submission
	// from any source while its TTL runs.
	stored, err := g.cache.PutIfAbsent(ctx, "dup:"+fingerprint, g.duplicateTTL)
	if err != nil {
		return DecisionAllow, err
	}
	if !stored {
		return DecisionDuplicate, nil
	}
	return DecisionAllow, nil
}

// Fingerprint derives the stable content hash used for duplicate detection.
func Fingerprint(employeeCode, subject, description string) string {
	h := sha256.New()
	for _, part := range []string{employeeCode, subject, description} {
		h.Write([]byte(strings.TrimSpace(strings.ToLower(part))))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
