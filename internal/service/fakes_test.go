package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/and161185/bliss-auth/internal/errs"
	"github.com/and161185/bliss-auth/internal/model"
	"github.com/and161185/bliss-auth/internal/repository"
)

type memEntry struct {
	val []byte
	exp time.Time
}

// memEphemeral is a map with per-key expiry driven by an injected clock.
type memEphemeral struct {
	mu  sync.Mutex
	now func() time.Time
	m   map[string]memEntry

	err error
}

var _ repository.EphemeralStore = (*memEphemeral)(nil)

func newMemEphemeral(now func() time.Time) *memEphemeral {
	return &memEphemeral{now: now, m: map[string]memEntry{}}
}

func (f *memEphemeral) live(key string) ([]byte, bool) {
	e, ok := f.m[key]
	if !ok || !f.now().Before(e.exp) {
		return nil, false
	}
	return e.val, true
}

func (f *memEphemeral) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	v, _ := f.live(key)
	return v, nil
}

func (f *memEphemeral) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.m[key] = memEntry{val: value, exp: f.now().Add(ttl)}
	return nil
}

func (f *memEphemeral) CreateIfAbsent(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.live(key); ok {
		return false, nil
	}
	f.m[key] = memEntry{val: value, exp: f.now().Add(ttl)}
	return true, nil
}

func (f *memEphemeral) drop(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.m, key)
}

// memDurable mimics the primary-key behavior of the relational store.
type memDurable struct {
	mu       sync.Mutex
	creds    map[model.AccountID]model.PermanentCredential
	profiles map[model.AccountID]model.Profile
	writes   int

	findErr error
	block   bool // wait for ctx instead of answering
}

var _ repository.DurableStore = (*memDurable)(nil)

func newMemDurable() *memDurable {
	return &memDurable{
		creds:    map[model.AccountID]model.PermanentCredential{},
		profiles: map[model.AccountID]model.Profile{},
	}
}

func (f *memDurable) wait(ctx context.Context) error {
	if !f.block {
		return f.findErr
	}
	<-ctx.Done()
	return fmt.Errorf("%w: %w", errs.ErrStoreUnavailable, ctx.Err())
}

func (f *memDurable) FindCredentialByIdentity(ctx context.Context, id model.AccountID) (*model.PermanentCredential, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.creds[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &c, nil
}

func (f *memDurable) FindProfileByIdentity(ctx context.Context, id model.AccountID) (*model.Profile, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &p, nil
}

func (f *memDurable) CreateCredential(_ context.Context, c *model.PermanentCredential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.creds[c.AccountID]; ok {
		return errs.ErrAlreadyExists
	}
	f.creds[c.AccountID] = *c
	f.writes++
	return nil
}

func (f *memDurable) CreateProfile(_ context.Context, p *model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[p.AccountID]; ok {
		return errs.ErrAlreadyExists
	}
	f.profiles[p.AccountID] = *p
	f.writes++
	return nil
}

func (f *memDurable) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}
