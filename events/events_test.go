package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weave-labs/gepa/events"
)

func TestChannelSinkPreservesEmissionOrder(t *testing.T) {
	sink := events.NewChannelSink(4)
	sink.Emit(events.Event{Kind: events.KindStart})
	sink.Emit(events.Event{Kind: events.KindIterationStart, Iteration: 1})
	sink.Close()

	var received []events.Event
	for e := range sink.Events() {
		received = append(received, e)
	}

	require.Len(t, received, 2)
	assert.Equal(t, events.KindStart, received[0].Kind)
	assert.Equal(t, events.KindIterationStart, received[1].Kind)
	assert.Equal(t, 1, received[1].Iteration)
}

func TestSliceSinkAccumulatesInOrder(t *testing.T) {
	sink := &events.SliceSink{}
	sink.Emit(events.Event{Kind: events.KindSeedEvaluated})
	sink.Emit(events.Event{Kind: events.KindComplete, FinalPrompt: "done"})

	require.Len(t, sink.Events, 2)
	assert.Equal(t, events.KindSeedEvaluated, sink.Events[0].Kind)
	assert.Equal(t, "done", sink.Events[1].FinalPrompt)
}
