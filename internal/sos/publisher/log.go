package publisher

import (
	"context"
	"log/slog"
)

// LogNotifier writes dispatch events to the log. Used when no broker is
// configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Channel() string { return "log" }

func (n *LogNotifier) Notify(ctx context.Context, ev DispatchEvent) error {
	n.logger.WarnContext(ctx, "sos dispatched",
		"alert_id", ev.AlertID,
		"code", ev.Code,
		"session_id", ev.SessionID,
		"trigger", string(ev.Trigger),
		"latitude", ev.Location.Latitude,
		"longitude", ev.Location.Longitude,
		"location", ev.Location.Name,
		"dispatched_at", ev.DispatchedAt,
	)
	return nil
}
