package bus

import (
	"context"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

// ObserverFunc receives CloudEvents describing bus lifecycle transitions:
// agent registration, handler faults, pacer start/stop. Observers run
// synchronously on the dispatch goroutine and must be cheap; anything heavy
// belongs behind a channel on the observer's side.
type ObserverFunc func(ctx context.Context, ce cloudevents.Event)

// NewCloudEvent builds a properly formed CloudEvent for bus notifications.
func NewCloudEvent(eventType, source string, data any) cloudevents.Event {
	ce := cloudevents.NewEvent()
	ce.SetID(uuid.New().String())
	ce.SetSource(source)
	ce.SetType(eventType)
	ce.SetTime(time.Now())
	ce.SetSpecVersion(cloudevents.VersionV1)
	if data != nil {
		_ = ce.SetData(cloudevents.ApplicationJSON, data)
	}
	return ce
}

// emit sends a lifecycle notification to the observer, if one is installed.
func (b *Bus) emit(ctx context.Context, eventType string, data map[string]any) {
	if b.observer == nil {
		return
	}
	b.observer(ctx, NewCloudEvent(eventType, observerSource, data))
}
