package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/ventures_backend/config"
)

const ventureLockRetryInterval = 100 * time.Millisecond

// LockVenture serializes cascades of one venture. With Redis configured the
// lock holds across instances; otherwise it is an in-process keyed mutex.
// The returned release func is safe to call more than once.
func LockVenture(ctx context.Context, companyId string) (func(), error) {
	if locker := config.GetRedisLock(); locker != nil {
		return obtainRedisLock(ctx, locker, companyId)
	}
	return localVentureLocks.lock(ctx, companyId)
}

func obtainRedisLock(ctx context.Context, locker *redislock.Client, companyId string) (func(), error) {
	ttl := config.VentureLockTTL()
	retries := int(ttl / ventureLockRetryInterval)
	lock, err := locker.Obtain(ctx, "venture-cascade:"+companyId, ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(ventureLockRetryInterval), retries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		config.LogError(config.GetLogger(), "ventureLock.go", "LockVenture", "could not obtain venture lock", companyId, err)
		return nil, fmt.Errorf("venture %s is busy: %w", companyId, err)
	}
	if err != nil {
		config.LogError(config.GetLogger(), "ventureLock.go", "LockVenture", "error obtaining venture lock", companyId, err)
		return nil, err
	}
	var once sync.Once
	return func() {
		once.Do(func() { _ = lock.Release(context.Background()) })
	}, nil
}

type keyedLock struct {
	sem  chan struct{}
	refs int
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

var localVentureLocks = &keyedMutex{locks: make(map[string]*keyedLock)}

func (m *keyedMutex) lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &keyedLock{sem: make(chan struct{}, 1)}
		m.locks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		m.unref(key, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.sem
			m.unref(key, l)
		})
	}, nil
}

func (m *keyedMutex) unref(key string, l *keyedLock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, key)
	}
}
