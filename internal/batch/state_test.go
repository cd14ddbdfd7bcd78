package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	states := []State{StateCollecting, StateSubmitted, StatePolling, StateCompleted, StateFailed, StateTimedOut}
	events := []Event{EventSubmitted, EventPolled, EventDrained, EventDeadline, EventFailed, EventFetchFailed}

	valid := map[State]map[Event]State{
		StateCollecting: {EventSubmitted: StateSubmitted, EventFailed: StateFailed},
		StateSubmitted:  {EventPolled: StatePolling, EventDrained: StateCompleted, EventDeadline: StateTimedOut, EventFailed: StateFailed},
		StatePolling:    {EventPolled: StatePolling, EventDrained: StateCompleted, EventDeadline: StateTimedOut, EventFailed: StateFailed},
		StateCompleted:  {EventFetchFailed: StateFailed},
	}

	for _, s := range states {
		for _, e := range events {
			t.Run(string(s)+"/"+string(e), func(t *testing.T) {
				got, err := Transition(s, e)
				want, ok := valid[s][e]
				if ok {
					require.NoError(t, err)
					assert.Equal(t, want, got)
					return
				}
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, s, got)
			})
		}
	}
}

func TestState_Terminal(t *testing.T) {
	assert.False(t, StateCollecting.Terminal())
	assert.False(t, StatePolling.Terminal())
	assert.True(t, StateCompleted.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.True(t, StateTimedOut.Terminal())
}
