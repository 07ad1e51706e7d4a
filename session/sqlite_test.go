package session

import (
	"context"
	"testing"
	"time"

	"github.com/hupe1980/agentfleet/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteAppendAndHistory(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	err := store.Append(ctx, "ns1",
		core.Message{Role: "user", Content: "hi", CreatedAt: now},
		core.Message{Role: "assistant", Content: "hello", Specialist: "Greeter", CreatedAt: now},
	)
	require.NoError(t, err)

	history, err := store.History(ctx, "ns1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "hi", history[0].Content)
	assert.Equal(t, "Greeter", history[1].Specialist)
}

func TestSQLiteHistoryLimitKeepsNewest(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, content := range []string{"a", "b", "c", "d"} {
		err := store.Append(ctx, "ns1", core.Message{Role: "user", Content: content, CreatedAt: time.Now().UTC()})
		require.NoError(t, err)
	}

	history, err := store.History(ctx, "ns1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Trailing window in chronological order.
	assert.Equal(t, "c", history[0].Content)
	assert.Equal(t, "d", history[1].Content)
}

func TestSQLiteNamespaceIsolation(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "ns1", core.Message{Role: "user", Content: "for ns1", CreatedAt: time.Now().UTC()}))
	require.NoError(t, store.Append(ctx, "ns2", core.Message{Role: "user", Content: "for ns2", CreatedAt: time.Now().UTC()}))

	h1, err := store.History(ctx, "ns1", 0)
	require.NoError(t, err)
	require.Len(t, h1, 1)
	assert.Equal(t, "for ns1", h1[0].Content)

	h3, err := store.History(ctx, "ns3", 0)
	require.NoError(t, err)
	assert.Empty(t, h3)
}

func TestSQLiteAppendEmptyIsNoOp(t *testing.T) {
	store := newTestSQLiteStore(t)
	assert.NoError(t, store.Append(context.Background(), "ns1"))
}
