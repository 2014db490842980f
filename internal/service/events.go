package service

import (
	"context"

	"github.com/iliyamo/conference-booking/internal/queue"
)

// emit hands events to the publisher. Publishing happens after the
// snapshot is saved; a failure is logged and never undoes the operation.
func (s *bookingService) emit(ctx context.Context, events ...queue.Event) {
	if s.pub == nil {
		return
	}
	now := s.now()
	for _, ev := range events {
		if ev.OccurredAt.IsZero() {
			ev.OccurredAt = now
		}
		if err := s.pub.Publish(ctx, ev); err != nil {
			s.log.WithError(err).WithField("event", ev.Type).Warn("publish event failed")
		}
	}
}
