package event

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	eventconfig "github.com/weisyn/splitproof/internal/config/event"
	"github.com/weisyn/splitproof/internal/testutil"
	"github.com/weisyn/splitproof/pkg/types"
)

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := New(eventconfig.New(nil), testutil.NewTestLogger())

	var got types.ProofJobEvent
	require.NoError(t, bus.Subscribe(types.EventTypeProofJobCompleted, func(e types.ProofJobEvent) {
		got = e
	}))
	require.True(t, bus.HasCallback(types.EventTypeProofJobCompleted))

	bus.Publish(types.EventTypeProofJobCompleted, types.ProofJobEvent{JobID: "j1", Status: "completed"})
	require.Equal(t, "j1", got.JobID)
	require.EqualValues(t, 1, bus.Stats()["published"])
}

func TestEventBus_Async(t *testing.T) {
	bus := New(eventconfig.New(nil), nil)

	var count atomic.Int32
	handler := func(types.VerificationEvent) { count.Add(1) }
	require.NoError(t, bus.SubscribeAsync(types.EventTypeProofVerified, handler, true))

	for i := 0; i < 5; i++ {
		bus.Publish(types.EventTypeProofVerified, types.VerificationEvent{Accepted: true})
	}
	bus.WaitAsync()
	require.EqualValues(t, 5, count.Load())

	require.NoError(t, bus.Unsubscribe(types.EventTypeProofVerified, handler))
	require.False(t, bus.HasCallback(types.EventTypeProofVerified))
}

func TestEventBus_Disabled(t *testing.T) {
	disabled := false
	bus := New(eventconfig.New(&types.UserEventConfig{Enabled: &disabled}), nil)

	called := false
	require.NoError(t, bus.Subscribe(types.EventTypeBountySplitVerified, func(types.BountyEvent) { called = true }))
	bus.Publish(types.EventTypeBountySplitVerified, types.BountyEvent{BountyID: "b"})

	require.False(t, called)
	require.EqualValues(t, 1, bus.Stats()["dropped"])
}
