package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Domenick1991/flightline/internal/domain"
)

// Local provides record locks and sessions inside one process. It stands in
// for Redis when no address is configured.
type Local struct {
	lockWait time.Duration
	now      func() time.Time

	mu       sync.Mutex
	locks    map[string]*localLock
	sessions map[string]localSession
}

// localLock is dropped from Local.locks once no caller holds or waits on it.
type localLock struct {
	sem  chan struct{}
	refs int
}

type localSession struct {
	userID  int64
	expires time.Time
}

func NewLocal(lockWait time.Duration) *Local {
	return &Local{
		lockWait: lockWait,
		now:      time.Now,
		locks:    make(map[string]*localLock),
		sessions: make(map[string]localSession),
	}
}

func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &localLock{sem: make(chan struct{}, 1)}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	wait := ctx
	if l.lockWait > 0 {
		var cancel context.CancelFunc
		wait, cancel = context.WithTimeout(ctx, l.lockWait)
		defer cancel()
	}

	select {
	case entry.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-entry.sem
				l.release(key, entry)
			})
		}, nil
	case <-wait.Done():
		l.release(key, entry)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, domain.ErrRecordBusy.With("%s", key)
	}
}

func (l *Local) release(key string, entry *localLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, key)
	}
}

func (l *Local) SaveSession(_ context.Context, token string, userID int64, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessions[token] = localSession{userID: userID, expires: l.now().Add(ttl)}
	return nil
}

func (l *Local) LookupSession(_ context.Context, token string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.sessions[token]
	if !ok {
		return 0, domain.ErrUnauthenticated.With("session expired")
	}
	if !l.now().Before(s.expires) {
		delete(l.sessions, token)
		return 0, domain.ErrUnauthenticated.With("session expired")
	}
	return s.userID, nil
}

func (l *Local) DeleteSession(_ context.Context, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.sessions, token)
	return nil
}
