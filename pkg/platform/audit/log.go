// Package audit records security and safety relevant events as structured
// log lines tagged with log_type=audit.
package audit

import (
	"context"
	"log/slog"

	"abhaya/pkg/requestcontext"
)

// Log writes event to logger with the standard audit attributes. A nil
// logger drops the event.
func Log(ctx context.Context, logger *slog.Logger, event AuditEvent, attrs ...any) {
	if logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}
	args := append(attrs,
		"event", string(event),
		"category", string(event.Category()),
		"log_type", "audit",
	)
	logger.InfoContext(ctx, string(event), args...)
}
