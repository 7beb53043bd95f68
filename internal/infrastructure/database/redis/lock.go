package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/keyip-molkit/pkg/errors"
)

var (
	ErrLockNotAcquired = errors.New(errors.ErrCodeConflict, "lock not acquired")
	ErrLockNotHeld     = errors.New(errors.ErrCodeConflict, "lock not held")
)

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Mutex is a single-holder lease identified by a random token.
type Mutex struct {
	client *Client
	key    string
	token  string
	ttl    time.Duration
}

// NewMutex returns an unheld lease on name.  The worker uses one per ingest
// job to skip messages another replica is already annotating.
func NewMutex(client *Client, name string, ttl time.Duration) *Mutex {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Mutex{
		client: client,
		key:    DefaultPrefix + "lock:" + name,
		token:  uuid.NewString(),
		ttl:    ttl,
	}
}

func (m *Mutex) Key() string { return m.key }

// TryLock acquires the lease or returns ErrLockNotAcquired.
func (m *Mutex) TryLock(ctx context.Context) error {
	ok, err := m.client.SetNX(ctx, m.key, m.token, m.ttl).Result()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "lock acquire")
	}
	if !ok {
		return ErrLockNotAcquired
	}
	return nil
}

func (m *Mutex) Unlock(ctx context.Context) error {
	if m.client.isClosed() {
		return ErrClientClosed
	}
	n, err := unlockScript.Run(ctx, m.client.rdb, []string{m.key}, m.token).Int64()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "lock release")
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// Extend resets the lease TTL while it is still held.
func (m *Mutex) Extend(ctx context.Context) error {
	if m.client.isClosed() {
		return ErrClientClosed
	}
	n, err := extendScript.Run(ctx, m.client.rdb, []string{m.key}, m.token, m.ttl.Milliseconds()).Int64()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "lock extend")
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}

//Personal.AI order the ending
