package events

import (
	"context"
	"log/slog"
)

// LogPublisher writes each event as a structured log line. It is used when
// no message broker is configured.
type LogPublisher struct {
	log *slog.Logger
}

// NewLogPublisher returns a LogPublisher writing to log.
func NewLogPublisher(log *slog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, evt Event) error {
	attrs := []any{
		"event_id", evt.ID.String(),
		"booking_id", evt.BookingID.String(),
		"device_id", evt.DeviceID,
		"user_id", evt.UserID,
		"booked_at", evt.BookedAt,
	}
	if evt.ReturnedAt != nil {
		attrs = append(attrs, "returned_at", *evt.ReturnedAt)
	}
	p.log.InfoContext(ctx, evt.Type, attrs...)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
