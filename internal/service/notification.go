package service

import (
	"context"
	"log"
)

// Channel identifies a notification audience.
type Channel string

const (
	ChannelRider  Channel = "rider"
	ChannelDriver Channel = "driver"
	ChannelRide   Channel = "ride"
)

// Ride lifecycle event names carried on notifications.
const (
	EventRideRequested  = "ride_requested"
	EventRideAccepted   = "ride_accepted"
	EventRideStarted    = "ride_started"
	EventRideCompleted  = "ride_completed"
	EventRideCancelled  = "ride_cancelled"
	EventLocationUpdate = "location_update"
)

// NotificationSink delivers best-effort notifications to a channel.
// Implementations must not block the caller's state transition and must
// swallow delivery errors; the ride state is the source of truth.
type NotificationSink interface {
	Notify(ctx context.Context, channel Channel, id string, event string, payload any)
}

// MultiSink fans a notification out to every configured sink.
type MultiSink []NotificationSink

// Notify delivers to each sink in order.
func (m MultiSink) Notify(ctx context.Context, channel Channel, id string, event string, payload any) {
	for _, sink := range m {
		if sink != nil {
			sink.Notify(ctx, channel, id, event, payload)
		}
	}
}

// LogSink writes notifications to the process log.
type LogSink struct{}

// Notify implements NotificationSink.
func (LogSink) Notify(_ context.Context, channel Channel, id string, event string, _ any) {
	log.Printf("[NOTIFY] channel=%s id=%s event=%s", channel, id, event)
}
