// Package tokentest provides key material and a controllable clock for tests.
package tokentest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"sync"
	"testing"
	"time"

	"github.com/and161185/bliss-auth/internal/token"
)

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a clock at t.
func NewClock(t time.Time) *Clock { return &Clock{now: t} }

// Now returns the current clock time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Key generates a fresh P-521 key.
func Key(t testing.TB) *ecdsa.PrivateKey {
	t.Helper()
	k, err := ecdsa.GenerateKey(elliptic.P521(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return k
}

// Codec builds a codec over key using clock.
func Codec(t testing.TB, key *ecdsa.PrivateKey, clock *Clock, opts ...token.Option) *token.Codec {
	t.Helper()
	opts = append([]token.Option{token.WithClock(clock.Now)}, opts...)
	c, err := token.NewCodec(key, &key.PublicKey, opts...)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return c
}
