package events

import (
	"context"
	"testing"
	"time"

	"biketaxi/internal/service"
)

func TestNotifyReturnsWithoutWaitingForBroker(t *testing.T) {
	// No broker listens here; delivery can only fail, and only in the
	// background. The caller must get control back immediately either way.
	sink := NewRideEventSink([]string{"127.0.0.1:1"}, "ride-events")
	defer sink.Close()

	start := time.Now()
	sink.Notify(context.Background(), service.ChannelRider, "rider-1", service.EventRideRequested, map[string]string{"ride_id": "ride-1"})
	elapsed := time.Since(start)

	if elapsed > 500*time.Millisecond {
		t.Fatalf("Notify blocked for %v waiting on the broker", elapsed)
	}
}

func TestNotifyDropsUnmarshalablePayload(t *testing.T) {
	sink := NewRideEventSink([]string{"127.0.0.1:1"}, "ride-events")
	defer sink.Close()

	// Channels cannot be marshaled to JSON; the event is silently dropped.
	sink.Notify(context.Background(), service.ChannelRider, "rider-1", service.EventRideRequested, make(chan int))
}
