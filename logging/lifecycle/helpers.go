package lifecycle

import (
	"context"

	"beta-than-ever/planner/logging"
)

const (
	// EventServiceStarted is emitted once the HTTP listener is bound.
	EventServiceStarted logging.EventType = "lifecycle.service_started"
	// EventServiceStopped is emitted after the server has shut down.
	EventServiceStopped logging.EventType = "lifecycle.service_stopped"
)

// ServiceStartedPayload captures the listener configuration.
type ServiceStartedPayload struct {
	Addr          string `json:"addr"`
	MaxExpansions int    `json:"maxExpansions"`
	Metrics       bool   `json:"metrics"`
	Pprof         bool   `json:"pprof"`
}

// ServiceStoppedPayload captures the reason the service stopped.
type ServiceStoppedPayload struct {
	Reason string `json:"reason"`
}

func serviceRef(name string) logging.EntityRef {
	return logging.EntityRef{ID: name, Kind: logging.EntityKindService}
}

// ServiceStarted publishes a service start event.
func ServiceStarted(ctx context.Context, pub logging.Publisher, name string, payload ServiceStartedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventServiceStarted,
		Actor:    serviceRef(name),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryService,
		Payload:  payload,
	})
}

// ServiceStopped publishes a service stop event.
func ServiceStopped(ctx context.Context, pub logging.Publisher, name string, payload ServiceStoppedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventServiceStopped,
		Actor:    serviceRef(name),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryService,
		Payload:  payload,
	})
}
