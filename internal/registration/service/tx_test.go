package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "touristid/pkg/domain-errors"
)

func TestShardedSessionTx(t *testing.T) {
	t.Run("returns the callback error", func(t *testing.T) {
		tx := &shardedSessionTx{}
		boom := errors.New("boom")
		err := tx.RunInTx(context.Background(), "s1", func(context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("serialises callers on one key", func(t *testing.T) {
		tx := &shardedSessionTx{}
		var (
			wg      sync.WaitGroup
			active  int
			maxSeen int
			mu      sync.Mutex
		)
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = tx.RunInTx(context.Background(), "same-session", func(context.Context) error {
					mu.Lock()
					active++
					maxSeen = max(maxSeen, active)
					mu.Unlock()
					time.Sleep(time.Millisecond)
					mu.Lock()
					active--
					mu.Unlock()
					return nil
				})
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, maxSeen)
	})

	t.Run("cancelled context", func(t *testing.T) {
		tx := &shardedSessionTx{}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		called := false
		err := tx.RunInTx(ctx, "s1", func(context.Context) error {
			called = true
			return nil
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
		assert.False(t, called)
	})

	t.Run("keys map to stable shards", func(t *testing.T) {
		assert.Equal(t, hashSessionKey("abc"), hashSessionKey("abc"))
	})
}

func TestIDNumberHasher(t *testing.T) {
	keyed, err := newIDNumberHasher("secret")
	require.NoError(t, err)
	unkeyed, err := newIDNumberHasher("")
	require.NoError(t, err)

	sum := keyed.Sum("123456789012")
	assert.Len(t, sum, 64)
	assert.Equal(t, sum, keyed.Sum("123456789012"))
	assert.NotEqual(t, sum, keyed.Sum("123456789013"))
	assert.NotEqual(t, sum, unkeyed.Sum("123456789012"), "key changes the fingerprint")
}
