package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentroute/agentroute/core"
)

var _ core.SessionStore = (*InMemoryStore)(nil)

func TestInMemoryStore_GetCreatesLazily(t *testing.T) {
	store := NewInMemoryStore()

	sess, err := store.Get("session-1")
	require.NoError(t, err)
	assert.Equal(t, "session-1", sess.ID)
	assert.Empty(t, sess.GetEvents())

	require.NoError(t, store.AppendEvent("session-1", core.NewUserMessageEvent("run-1", "hello")))

	again, err := store.Get("session-1")
	require.NoError(t, err)
	require.Len(t, again.GetEvents(), 1)
}

func TestInMemoryStore_GetReturnsClone(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.ApplyDelta("session-1", map[string]any{"key": "original"}))

	sess, err := store.Get("session-1")
	require.NoError(t, err)

	// Mutating the returned session must not leak into the store.
	sess.SetState("key", "mutated")
	sess.AddEvent(core.NewUserMessageEvent("run-1", "local only"))

	fresh, err := store.Get("session-1")
	require.NoError(t, err)

	v, ok := fresh.GetState("key")
	require.True(t, ok)
	assert.Equal(t, "original", v)
	assert.Empty(t, fresh.GetEvents())
}

func TestInMemoryStore_CreateOverwrites(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.AppendEvent("session-1", core.NewUserMessageEvent("run-1", "old")))

	sess, err := store.Create("session-1")
	require.NoError(t, err)
	assert.Empty(t, sess.GetEvents())

	fresh, err := store.Get("session-1")
	require.NoError(t, err)
	assert.Empty(t, fresh.GetEvents())
}

func TestInMemoryStore_AppendEventPreservesOrder(t *testing.T) {
	store := NewInMemoryStore()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.AppendEvent("session-1", core.NewUserMessageEvent("run-1", fmt.Sprintf("message %d", i))))
	}

	sess, err := store.Get("session-1")
	require.NoError(t, err)

	events := sess.GetEvents()
	require.Len(t, events, 3)
	assert.Equal(t, "message 0", events[0].Text())
	assert.Equal(t, "message 2", events[2].Text())
}

func TestInMemoryStore_ApplyDeltaMerges(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.ApplyDelta("session-1", map[string]any{"a": 1, "b": "keep"}))
	require.NoError(t, store.ApplyDelta("session-1", map[string]any{"a": 2}))

	sess, err := store.Get("session-1")
	require.NoError(t, err)

	a, _ := sess.GetState("a")
	b, _ := sess.GetState("b")
	assert.Equal(t, 2, a)
	assert.Equal(t, "keep", b)
}

func TestInMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewInMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessionID := fmt.Sprintf("session-%d", i%4)
			_ = store.AppendEvent(sessionID, core.NewUserMessageEvent("run-1", "hi"))
			_ = store.ApplyDelta(sessionID, map[string]any{"n": i})
			_, _ = store.Get(sessionID)
		}(i)
	}
	wg.Wait()

	sess, err := store.Get("session-0")
	require.NoError(t, err)
	assert.Len(t, sess.GetEvents(), 4)
}
