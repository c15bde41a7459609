package service

import (
	"context"
	"sync"
	"time"

	dErrors "touristid/pkg/domain-errors"
)

// shardedSessionTx serialises mutations of one session. Sessions are spread
// over a fixed set of mutexes by FNV-1a hash, so unrelated sessions rarely
// contend and the lock table never grows.
const numSessionShards = 128

const defaultSessionTxTimeout = 5 * time.Second

type shardedSessionTx struct {
	shards  [numSessionShards]sync.Mutex
	timeout time.Duration
}

func (t *shardedSessionTx) RunInTx(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultSessionTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := hashSessionKey(key) % numSessionShards
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx)
}

func hashSessionKey(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
