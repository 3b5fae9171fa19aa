package metrics

import (
	"context"

	"github.com/cavusmuhammed68/ICC-IEEE/core/events"
	"github.com/cavusmuhammed68/ICC-IEEE/infra/logger"
	"github.com/cavusmuhammed68/ICC-IEEE/internal/eventbus"
)

// FailureRecorder is implemented by sinks able to count failed runs.
type FailureRecorder interface {
	RecordFailure(variant string) error
}

// StartEventCollector subscribes to the run event bus and counts failed runs
// on sinks that support it. It stops when the context is canceled or the bus
// is closed.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.RunEvent], rec FailureRecorder) {
	if bus == nil || rec == nil {
		return
	}
	log := logger.New("event-collector")
	sub := bus.Subscribe(func(ev events.RunEvent) bool { return ev.Kind == events.RunFailed })
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := rec.RecordFailure(ev.Variant); err != nil {
					log.Warnf("record failure for %s: %v", ev.Variant, err)
				}
			}
		}
	}()
}
