package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Fix is one position sample.
type Fix struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	At        time.Time `json:"at"`
}

// Watcher is the handle on a continuous sampling subscription. Closing it
// stops delivery; it must be closed on every path out of Active.
type Watcher interface {
	Close()
}

// Provider supplies position fixes for the vehicle being tracked. Current
// must hand back a fresh fix, never one cached from an earlier request;
// Watch delivers every subsequent fix until the watcher is closed.
type Provider interface {
	Current(ctx context.Context) (Fix, error)
	Watch(onFix func(Fix), onErr func(error)) (Watcher, error)
}

// WakeLock is a held keep-awake resource.
type WakeLock interface {
	Release()
}

// WakeLocker acquires a keep-awake resource for the duration of a session.
// Acquisition failure is non-fatal.
type WakeLocker interface {
	Acquire(ctx context.Context) (WakeLock, error)
}

// LogWakeLocker is the server-side wake lock: the real screen lock lives in
// the driver's browser, so here acquisition only marks the session held.
type LogWakeLocker struct {
	Log *logrus.Logger
}

type logWakeLock struct {
	log   *logrus.Logger
	plate string
}

func (l *LogWakeLocker) Acquire(ctx context.Context) (WakeLock, error) {
	return &logWakeLock{log: l.Log}, nil
}

func (w *logWakeLock) Release() {}

// PushProvider adapts driver HTTP posts to the Provider interface: the start
// request carries the initial fix and later posts feed the watch callback.
type PushProvider struct {
	mu      sync.Mutex
	initial *Fix
	onFix   func(Fix)
	onErr   func(error)
	closed  bool
}

func NewPushProvider(initial Fix) *PushProvider {
	return &PushProvider{initial: &initial}
}

var errNoInitialFix = errors.New("no initial fix supplied")

// Current consumes the fix embedded in the start request. It is handed out
// once; a second call means the caller tried to reuse a stale fix.
func (p *PushProvider) Current(ctx context.Context) (Fix, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initial == nil {
		return Fix{}, errNoInitialFix
	}
	f := *p.initial
	p.initial = nil
	return f, nil
}

func (p *PushProvider) Watch(onFix func(Fix), onErr func(error)) (Watcher, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onFix = onFix
	p.onErr = onErr
	p.closed = false
	return &pushWatcher{p: p}, nil
}

// Push delivers one posted fix to the active watch, if any.
func (p *PushProvider) Push(f Fix) {
	p.mu.Lock()
	cb := p.onFix
	if p.closed {
		cb = nil
	}
	p.mu.Unlock()
	if cb != nil {
		cb(f)
	}
}

// PushError delivers a sampling failure reported by the driver's device to
// the active watch, if any.
func (p *PushProvider) PushError(err error) {
	p.mu.Lock()
	cb := p.onErr
	if p.closed {
		cb = nil
	}
	p.mu.Unlock()
	if cb != nil {
		cb(err)
	}
}

type pushWatcher struct {
	p *PushProvider
}

func (w *pushWatcher) Close() {
	w.p.mu.Lock()
	w.p.closed = true
	w.p.onFix = nil
	w.p.onErr = nil
	w.p.mu.Unlock()
}
