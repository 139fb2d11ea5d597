package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-widget/backend/internal/model"
)

func userTurn(content string) model.ChatMessage {
	return model.ChatMessage{Role: model.RoleUser, Content: content}
}

func assistantTurn(content string) model.ChatMessage {
	return model.ChatMessage{Role: model.RoleAssistant, Content: content}
}

// historyStoreContract runs the behaviour every HistoryStore must share.
func historyStoreContract(t *testing.T, newStore func(t *testing.T) HistoryStore) {
	ctx := context.Background()

	t.Run("Unknown key is empty", func(t *testing.T) {
		store := newStore(t)
		history, err := store.Load(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("Append preserves order", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Append(ctx, "k", 10, userTurn("A"), assistantTurn("reply A")))
		require.NoError(t, store.Append(ctx, "k", 10, userTurn("B"), assistantTurn("reply B")))

		history, err := store.Load(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []model.ChatMessage{
			userTurn("A"), assistantTurn("reply A"),
			userTurn("B"), assistantTurn("reply B"),
		}, history)
	})

	t.Run("Append trims oldest entries first", func(t *testing.T) {
		store := newStore(t)
		for i := 0; i < 4; i++ {
			require.NoError(t, store.Append(ctx, "k", 4,
				userTurn(fmt.Sprintf("q%d", i)), assistantTurn(fmt.Sprintf("a%d", i))))
		}

		history, err := store.Load(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []model.ChatMessage{
			userTurn("q2"), assistantTurn("a2"),
			userTurn("q3"), assistantTurn("a3"),
		}, history)
	})

	t.Run("Keys are independent", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Append(ctx, "one", 10, userTurn("x")))

		history, err := store.Load(ctx, "two")
		require.NoError(t, err)
		assert.Empty(t, history)
	})
}

func TestMemoryRepository(t *testing.T) {
	historyStoreContract(t, func(t *testing.T) HistoryStore { return NewMemoryRepository() })
}

func TestMemoryRepository_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRepository()
	require.NoError(t, store.Append(ctx, "k", 0, userTurn("A")))

	history, err := store.Load(ctx, "k")
	require.NoError(t, err)
	history[0].Content = "mutated"

	again, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "A", again[0].Content)
}

func TestMemoryRepository_ConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Append(ctx, "k", 12, userTurn(fmt.Sprint(i)), assistantTurn(fmt.Sprint(i))))
		}(i)
	}
	wg.Wait()

	history, err := store.Load(ctx, "k")
	require.NoError(t, err)
	require.Len(t, history, 12)
	// Each Append is atomic, so user/assistant pairs are never split.
	for i := 0; i < len(history); i += 2 {
		assert.Equal(t, model.RoleUser, history[i].Role)
		assert.Equal(t, model.RoleAssistant, history[i+1].Role)
		assert.Equal(t, history[i].Content, history[i+1].Content)
	}
}
