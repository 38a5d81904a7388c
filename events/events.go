package events

import (
	"context"
	"sync"

	"casino/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange        EventType = "balance_change"
	EventTypeUserCreated          EventType = "user_created"
	EventTypeBlackjackStateChange EventType = "blackjack_state_change"
	EventTypeBlackjackFinished    EventType = "blackjack_finished"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID          int64
	GuildID         int64
	OldBalance      int64
	NewBalance      int64
	TransactionType models.TransactionType
	ChangeAmount    int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserCreatedEvent represents a new user creation
type UserCreatedEvent struct {
	UserID         int64
	DiscordID      int64
	Username       string
	InitialBalance int64
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// BlackjackStateChangeEvent is published when a game moves between lifecycle states
type BlackjackStateChangeEvent struct {
	GameID    int64
	GuildID   int64
	ChannelID int64
	OldState  string
	NewState  string
}

func (e BlackjackStateChangeEvent) Type() EventType {
	return EventTypeBlackjackStateChange
}

// BlackjackPlayerOutcome is one settled seat
type BlackjackPlayerOutcome struct {
	DiscordID int64
	Username  string
	Bet       int64
	Payout    int64
	Result    string
}

// BlackjackFinishedEvent is published once a game has been settled
type BlackjackFinishedEvent struct {
	GameID      int64
	GuildID     int64
	ChannelID   int64
	DealerValue int
	DealerBust  bool
	Players     []BlackjackPlayerOutcome
}

func (e BlackjackFinishedEvent) Type() EventType {
	return EventTypeBlackjackFinished
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers. Handlers run on their
// own goroutines and a panicking handler does not affect the others.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event")

	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised inside a unit of work until the
// transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Pending returns the events waiting for a commit
func (b *TransactionalBus) Pending() []Event {
	return b.pending
}

// Flush emits pending events on the real bus. Called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing transactional events")

	// Handlers outlive the request, so they must not inherit its deadline
	eventCtx := context.WithoutCancel(ctx)

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events. Called after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
