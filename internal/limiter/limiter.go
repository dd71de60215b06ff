// Package limiter throttles credential-acquisition attempts per client address.
package limiter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/and161185/bliss-auth/internal/errs"
)

// Limiter controls how often a client may start registrations.
type Limiter interface {
	// Allow records one attempt for ipHash and reports whether it is within
	// the limit, together with the time until the window resets.
	Allow(ctx context.Context, ipHash []byte) (bool, time.Duration, error)
}

// HashIP returns a stable hash for an IP string to avoid storing raw addresses.
func HashIP(ip string) []byte {
	h := sha256.Sum256([]byte(ip))
	return h[:]
}

// incrWindow counts an attempt and starts the window on the first one.
var incrWindow = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {count, redis.call('PTTL', KEYS[1])}
`)

// Redis is a fixed-window limiter shared by all server replicas.
type Redis struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

var _ Limiter = (*Redis)(nil)

// NewRedis constructs a limiter allowing limit attempts per window.
func NewRedis(client *redis.Client, prefix string, limit int, window time.Duration) *Redis {
	if prefix == "" {
		prefix = "bliss:ratelimit:"
	}
	return &Redis{client: client, prefix: prefix, limit: limit, window: window}
}

// Allow implements Limiter.
func (l *Redis) Allow(ctx context.Context, ipHash []byte) (bool, time.Duration, error) {
	key := l.prefix + hex.EncodeToString(ipHash)
	res, err := incrWindow.Run(ctx, l.client, []string{key}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("%w: rate limit: %w", errs.ErrStoreUnavailable, err)
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("%w: rate limit: unexpected reply", errs.ErrStoreUnavailable)
	}
	retry := time.Duration(res[1]) * time.Millisecond
	if retry < 0 {
		retry = 0
	}
	return res[0] <= int64(l.limit), retry, nil
}

// Nop never throttles.
type Nop struct{}

// Allow implements Limiter.
func (Nop) Allow(context.Context, []byte) (bool, time.Duration, error) { return true, 0, nil }
