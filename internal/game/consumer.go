package game

import (
	"coinflip-platform/internal/event"
)

type Broadcaster interface {
	BroadcastJSON(v interface{})
}

// RegisterConsumers pushes settlements out to websocket subscribers.
// Fund movement never happens here; by the time an event is published
// the operation's transaction has already committed.
func RegisterConsumers(bus *event.Bus, ws Broadcaster) {

	bus.Subscribe(event.EventSessionResolved, func(payload interface{}) {
		ws.BroadcastJSON(payload)
	})

	bus.Subscribe(event.EventRewardClaimed, func(payload interface{}) {
		ws.BroadcastJSON(payload)
	})
}
