// Package notify contains the notification sinks grievd can emit to.
package notify

import (
	"context"
	"log/slog"

	"github.com/example/grievd/internal/metrics"
	"github.com/example/grievd/internal/ports/secondary"
)

// LogNotifier writes notifications to a structured log. It is the default
// sink when no broker is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that logs at info level.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

var _ secondary.Notifier = (*LogNotifier)(nil)

// Notify logs n. It never fails.
func (l *LogNotifier) Notify(ctx context.Context, n secondary.Notification) error {
	l.logger.InfoContext(ctx, "notification",
		"notification_id", n.ID,
		"grievance_id", n.GrievanceID,
		"event_type", n.EventType,
		"recipient", n.Recipient,
	)
	metrics.NotificationsTotal.WithLabelValues("log", "sent").Inc()
	return nil
}
