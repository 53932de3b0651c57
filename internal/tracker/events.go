package tracker

import (
	"sync"
	"time"

	"github.com/lox/handtracker/internal/game"
)

// EventType names a tracker event.
type EventType string

const (
	EventTypeHandStarted    EventType = "hand_started"
	EventTypeActionRecorded EventType = "action_recorded"
	EventTypeActionUndone   EventType = "action_undone"
	EventTypeStreetAdvanced EventType = "street_advanced"
	EventTypeHandUpdated    EventType = "hand_updated"
)

func (et EventType) String() string {
	return string(et)
}

// Event is anything published on the bus. Every event concerns one hand.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
	HandID() int64
}

type eventBase struct {
	Hand int64     `json:"hand_id"`
	At   time.Time `json:"timestamp"`
}

func (e eventBase) HandID() int64        { return e.Hand }
func (e eventBase) Timestamp() time.Time { return e.At }

// HandStartedEvent is published when a new hand is created.
type HandStartedEvent struct {
	eventBase
	Players []game.Player `json:"players"`
	Stakes  game.Stakes   `json:"stakes"`
}

func (e HandStartedEvent) EventType() EventType { return EventTypeHandStarted }

// ActionRecordedEvent is published once per appended action, auto-filled
// ones included, in log order.
type ActionRecordedEvent struct {
	eventBase
	Action   game.Action `json:"action"`
	Player   string      `json:"player"`
	PotAfter int         `json:"pot_after"`
}

func (e ActionRecordedEvent) EventType() EventType { return EventTypeActionRecorded }

// ActionUndoneEvent is published when UndoLast removes actions.
type ActionUndoneEvent struct {
	eventBase
	Removed []game.Action `json:"removed"`
}

func (e ActionUndoneEvent) EventType() EventType { return EventTypeActionUndone }

// StreetAdvancedEvent is published when the hand moves to the next street.
type StreetAdvancedEvent struct {
	eventBase
	Street game.Street `json:"street"`
	Pot    int         `json:"pot"`
	Board  string      `json:"board"`
}

func (e StreetAdvancedEvent) EventType() EventType { return EventTypeStreetAdvanced }

// HandUpdatedEvent is published when cards, board, or notes change.
type HandUpdatedEvent struct {
	eventBase
	Field string `json:"field"`
}

func (e HandUpdatedEvent) EventType() EventType { return EventTypeHandUpdated }

// EventSubscriber receives events.
type EventSubscriber interface {
	OnEvent(event Event)
}

// SubscriberFunc adapts a function to EventSubscriber.
type SubscriberFunc func(event Event)

func (f SubscriberFunc) OnEvent(event Event) { f(event) }

// EventBus fans events out to subscribers.
type EventBus interface {
	// Subscribe registers a subscriber and returns a function that removes it.
	Subscribe(subscriber EventSubscriber) (unsubscribe func())
	Publish(event Event)
}

// SimpleEventBus delivers events synchronously, in subscription order.
type SimpleEventBus struct {
	mu          sync.RWMutex
	nextID      int
	subscribers []subscription
}

type subscription struct {
	id  int
	sub EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{}
}

func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) func() {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	bus.nextID++
	id := bus.nextID
	bus.subscribers = append(bus.subscribers, subscription{id: id, sub: subscriber})

	var once sync.Once
	return func() {
		once.Do(func() {
			bus.mu.Lock()
			defer bus.mu.Unlock()
			for i, s := range bus.subscribers {
				if s.id == id {
					bus.subscribers = append(bus.subscribers[:i:i], bus.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

func (bus *SimpleEventBus) Publish(event Event) {
	bus.mu.RLock()
	subs := make([]EventSubscriber, len(bus.subscribers))
	for i, s := range bus.subscribers {
		subs[i] = s.sub
	}
	bus.mu.RUnlock()

	for _, sub := range subs {
		sub.OnEvent(event)
	}
}
