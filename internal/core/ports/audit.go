package ports

import (
	"context"

	"github.com/respira/wellness-api/internal/core/domain"
)

// AuditRecorder accepts auth events for asynchronous persistence. Record
// never blocks the caller.
type AuditRecorder interface {
	Record(event domain.AuthEvent)
}

// AuditRepository stores the audit trail.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuthEvent) error
}
