package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babelchat/babel-client/internal/state"
)

func ids(convos []state.Conversation) []int {
	out := make([]int, 0, len(convos))
	for _, c := range convos {
		out = append(out, c.ID)
	}
	return out
}

func TestRegistry_UpsertKeepsPosition(t *testing.T) {
	reg := state.NewRegistry()
	reg.Upsert(state.Conversation{ID: 1, Name: "a"})
	reg.Upsert(state.Conversation{ID: 2, Name: "b"})
	reg.Upsert(state.Conversation{ID: 1, Name: "a renamed"})

	assert.Equal(t, []int{1, 2}, ids(reg.Snapshot()))

	c, ok := reg.Get(1)
	require.True(t, ok)
	assert.Equal(t, "a renamed", c.Name)
}

func TestRegistry_MoveToFront(t *testing.T) {
	reg := state.NewRegistry()
	reg.Upsert(state.Conversation{ID: 1})
	reg.Upsert(state.Conversation{ID: 2})
	reg.Upsert(state.Conversation{ID: 3})

	// A message for conversation 2 pushes it to the most-recent slot.
	reg.MoveToFront(2)
	assert.Equal(t, []int{1, 3, 2}, ids(reg.Snapshot()))

	// Unknown ids are a no-op.
	reg.MoveToFront(42)
	assert.Equal(t, []int{1, 3, 2}, ids(reg.Snapshot()))
}

func TestRegistry_Remove(t *testing.T) {
	reg := state.NewRegistry()
	reg.Upsert(state.Conversation{ID: 1})
	reg.Upsert(state.Conversation{ID: 2})

	reg.Remove(1)
	assert.Equal(t, []int{2}, ids(reg.Snapshot()))
	_, ok := reg.Get(1)
	assert.False(t, ok)

	reg.Remove(1) // already gone
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_SubscribersGetSnapshots(t *testing.T) {
	reg := state.NewRegistry()

	var last []state.Conversation
	id := reg.Subscribe(func(snap []state.Conversation) { last = snap })

	reg.Upsert(state.Conversation{ID: 5, Name: "x"})
	require.Len(t, last, 1)

	// Mutating the snapshot must not leak into the registry.
	last[0].Name = "tampered"
	c, _ := reg.Get(5)
	assert.Equal(t, "x", c.Name)

	reg.Unsubscribe(id)
	assert.Zero(t, reg.SubscriberCount())
}
