package generator

import (
	"fmt"
	"time"

	"github.com/gookit/event"

	"github.com/chiquitav2/wireguard-conf/pkg/logger"
)

// Event names fired while generating configs.
const (
	EventServerWritten = "config.server.written"
	EventClientWritten = "config.client.written"
	EventFailed        = "config.failed"
)

// payloadKey is where every event carries its typed payload.
const payloadKey = "payload"

// ConfigWrittenEvent is fired once a config file is in place.
type ConfigWrittenEvent struct {
	CorrelationID string
	Name          string
	Path          string
	PublicKey     string
	Peers         int
	Timestamp     time.Time
}

// FailedEvent is fired when generation stops.
type FailedEvent struct {
	CorrelationID string
	Name          string
	Stage         string
	Error         string
	// Domain and Code classify the error, "unknown" when it is not a domain error.
	Domain    string
	Code      string
	Timestamp time.Time
}

// EventBus wraps the gookit event manager for config generation events.
type EventBus struct {
	bus    *event.Manager
	logger *logger.Logger
}

// NewEventBus creates an event bus.
func NewEventBus(log *logger.Logger) *EventBus {
	if log == nil {
		log = logger.Nop()
	}
	return &EventBus{
		bus:    event.NewManager("wgconf"),
		logger: log.WithComponent("events"),
	}
}

// PublishServerWritten publishes a server config written event
func (eb *EventBus) PublishServerWritten(payload ConfigWrittenEvent) error {
	return eb.fire(EventServerWritten, payload)
}

// PublishClientWritten publishes a client config written event
func (eb *EventBus) PublishClientWritten(payload ConfigWrittenEvent) error {
	return eb.fire(EventClientWritten, payload)
}

// PublishFailed publishes a generation failed event
func (eb *EventBus) PublishFailed(payload FailedEvent) error {
	return eb.fire(EventFailed, payload)
}

func (eb *EventBus) fire(name string, payload any) error {
	eb.logger.Debug("publishing event", "event", name)

	err, _ := eb.bus.Fire(name, event.M{payloadKey: payload})
	if err != nil {
		eb.logger.Error("failed to publish event", "event", name, "error", err)
		return fmt.Errorf("failed to publish %s event: %w", name, err)
	}
	return nil
}

// Subscribe registers listener for the named event.
func (eb *EventBus) Subscribe(name string, listener event.Listener) {
	eb.bus.On(name, listener, event.Normal)
	eb.logger.Debug("subscribed to event", "event", name)
}

// SubscribeWritten registers fn for both server and client written events.
func (eb *EventBus) SubscribeWritten(fn func(ConfigWrittenEvent)) {
	listener := event.ListenerFunc(func(e event.Event) error {
		if p, ok := e.Get(payloadKey).(ConfigWrittenEvent); ok {
			fn(p)
		}
		return nil
	})
	eb.Subscribe(EventServerWritten, listener)
	eb.Subscribe(EventClientWritten, listener)
}

// SubscribeFailed registers fn for failure events.
func (eb *EventBus) SubscribeFailed(fn func(FailedEvent)) {
	eb.Subscribe(EventFailed, event.ListenerFunc(func(e event.Event) error {
		if p, ok := e.Get(payloadKey).(FailedEvent); ok {
			fn(p)
		}
		return nil
	}))
}

// Close removes all listeners.
func (eb *EventBus) Close() error {
	eb.bus.Clear()
	return nil
}
