package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hokensys/shinsa/pkg/channels/gochannel"
	"github.com/hokensys/shinsa/pkg/configstore"
	"github.com/hokensys/shinsa/pkg/eventbus"
	"github.com/hokensys/shinsa/pkg/events"
)

func newTestBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() {
		_ = bus.Close()
	})

	return bus
}

func TestWatermillEventBus_PublishSubscribeRoundTrip(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *events.ConfigurationUpdated, 1)

	err := bus.Handle(events.ConfigurationUpdatedEvent, func(_ context.Context, event interface{}) error {
		updated, ok := event.(*events.ConfigurationUpdated)
		require.True(t, ok)
		received <- updated

		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Subscribe(ctx))

	published := events.ConfigurationUpdated{
		BaseEvent: events.NewBaseEvent(events.ConfigurationUpdatedEvent, ""),
		Kind:      configstore.KindJudgmentRules,
		UpdatedBy: "ops",
	}
	require.NoError(t, bus.Publish(ctx, "config", published))

	select {
	case got := <-received:
		assert.Equal(t, published.ID, got.ID)
		assert.Equal(t, configstore.KindJudgmentRules, got.Kind)
		assert.Equal(t, "ops", got.UpdatedBy)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event delivery")
	}
}

func TestWatermillEventBus_UnhandledEventTypeIsAcked(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan struct{}, 1)

	err := bus.Handle(events.JudgmentSavedEvent, func(_ context.Context, _ interface{}) error {
		received <- struct{}{}

		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Subscribe(ctx))

	// No handler registered for judgment.completed; the bus must drop it and
	// still deliver the saved event published afterwards.
	completed := events.JudgmentCompleted{
		BaseEvent: events.NewBaseEvent(events.JudgmentCompletedEvent, "subj-1"),
	}
	require.NoError(t, bus.Publish(ctx, "subj-1", completed))

	saved := events.JudgmentSaved{
		BaseEvent: events.NewBaseEvent(events.JudgmentSavedEvent, "subj-1"),
	}
	require.NoError(t, bus.Publish(ctx, "subj-1", saved))

	select {
	case <-received:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event delivery")
	}
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus := newTestBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
