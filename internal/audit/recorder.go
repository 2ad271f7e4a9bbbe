package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Store persists audit entries. Implemented by repository.AuditLogRepository.
type Store interface {
	Create(ctx context.Context, entry *domain.AuditLogEntry) error
}

// Recorder appends audit entries without ever failing the business operation
// it accompanies. Audit durability is best-effort: losing one audit row on a
// store hiccup beats losing a legitimate ticket operation.
type Recorder struct {
	store  Store
	logger *zap.Logger
}

// NewRecorder builds a recorder over the given store.
func NewRecorder(store Store, logger *zap.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// Record appends one entry. Failures are logged and swallowed.
func (r *Recorder) Record(ctx context.Context, entry *domain.AuditLogEntry) {
	if r == nil || r.store == nil {
		return
	}
	if err := r.store.Create(ctx, entry); err != nil {
		r.logger.Error("audit write failed",
			zap.String("entity_kind", entry.EntityKind),
			zap.String("entity_id", entry.EntityID),
			zap.String("action", string(entry.Action)),
			zap.Error(err),
		)
	}
}
