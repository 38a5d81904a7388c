package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"casino/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionalBus_FlushDeliversToSubscribers(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	received := make(chan BalanceChangeEvent, 1)
	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		if balanceEvent, ok := event.(BalanceChangeEvent); ok {
			received <- balanceEvent
		}
	})

	testEvent := BalanceChangeEvent{
		UserID:          123456,
		GuildID:         789,
		OldBalance:      1000,
		NewBalance:      1150,
		TransactionType: models.TransactionTypeBlackjackPayout,
		ChangeAmount:    150,
	}
	transactionalBus.Publish(testEvent)
	require.Len(t, transactionalBus.Pending(), 1)

	require.NoError(t, transactionalBus.Flush(context.Background()))
	assert.Empty(t, transactionalBus.Pending())

	select {
	case got := <-received:
		assert.Equal(t, testEvent, got)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not received within timeout")
	}
}

func TestTransactionalBus_DiscardDropsEvents(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	var mu sync.Mutex
	calls := 0
	mainBus.Subscribe(EventTypeBlackjackFinished, func(ctx context.Context, event Event) {
		mu.Lock()
		defer mu.Unlock()
		calls++
	})

	transactionalBus.Publish(BlackjackFinishedEvent{GameID: 1})
	transactionalBus.Discard()
	require.NoError(t, transactionalBus.Flush(context.Background()))

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, calls)
}

func TestBus_PanickingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(1)
	bus.Subscribe(EventTypeBlackjackStateChange, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeBlackjackStateChange, func(ctx context.Context, event Event) {
		defer wg.Done()
		stateEvent, ok := event.(BlackjackStateChangeEvent)
		assert.True(t, ok)
		assert.Equal(t, "playing", stateEvent.NewState)
	})

	bus.Emit(context.Background(), BlackjackStateChangeEvent{GameID: 7, OldState: "waiting", NewState: "playing"})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second handler was not called")
	}
}
