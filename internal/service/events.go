package service

import (
	"context"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/movie-listing/internal/queue"
)

// EventPublisher delivers activity events to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ActivityEvent) error
}

// notifier is embedded by every service. It owns the structured logger
// and the optional event publisher; a nil publisher drops events.
type notifier struct {
	log    *log.Logger
	events EventPublisher
}

func newNotifier(l *log.Logger, events EventPublisher) notifier {
	if l == nil {
		l = log.New("service")
		l.SetLevel(log.OFF)
	}
	return notifier{log: l, events: events}
}

func (n notifier) info(event string, fields log.JSON) {
	fields["event"] = event
	n.log.Infoj(fields)
}

func (n notifier) warn(event string, fields log.JSON) {
	fields["event"] = event
	n.log.Warnj(fields)
}

// emit publishes ev on a best-effort basis. A failed publish is logged and
// never fails the calling use case.
func (n notifier) emit(ctx context.Context, ev queue.ActivityEvent) {
	if n.events == nil {
		return
	}
	if err := n.events.Publish(ctx, ev); err != nil {
		n.warn("activity.publish_failed", log.JSON{"type": ev.Type, "error": err.Error()})
	}
}
