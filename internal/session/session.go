package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// State is the tagged session state. Illegal transitions (stop while idle,
// start while active) are defined as no-ops or errors, never panics.
type State int

const (
	StateIdle State = iota
	StateActive
)

func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "idle"
}

const (
	// DefaultMaxDuration is the auto-terminate budget: 1h 40m. Sessions are
	// not expected to run unattended longer than one trip.
	DefaultMaxDuration = 6000000 * time.Millisecond
	// DefaultCountdownTick is how often remaining time is recomputed.
	DefaultCountdownTick = time.Minute
)

var (
	ErrAlreadyActive = errors.New("session already active")
	ErrNoVehicle     = errors.New("no vehicle selected")
	ErrNoRoute       = errors.New("no route selected")
	ErrVehicleInUse  = errors.New("vehicle already in use")
)

// InitialSampleError reports that the session transitioned to Active but the
// first position upload failed: the operator must be warned their position
// may not be visible to riders.
type InitialSampleError struct {
	Err error
}

func (e *InitialSampleError) Error() string {
	return fmt.Sprintf("initial position sync failed: %v", e.Err)
}

func (e *InitialSampleError) Unwrap() error { return e.Err }

// Store is the slice of the data store a session writes through.
type Store interface {
	Ping(ctx context.Context) error
	AppendPathPoint(ctx context.Context, plate string, lat, lng float64) error
	UpsertLocation(ctx context.Context, plate string, routeID int64, lat, lng float64) error
	Deactivate(ctx context.Context, plate string) error
	PurgePath(ctx context.Context, plate string) error
}

// Config carries the session timings; zero values fall back to the defaults.
type Config struct {
	MaxDuration   time.Duration
	CountdownTick time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxDuration <= 0 {
		c.MaxDuration = DefaultMaxDuration
	}
	if c.CountdownTick <= 0 {
		c.CountdownTick = DefaultCountdownTick
	}
	return c
}

// Session is one driver's tracking session for one vehicle. It owns the
// auto-terminate timer, the countdown ticker, the position watch and the wake
// lock, and releases all four on every path out of Active.
type Session struct {
	Plate   string
	RouteID int64

	store      Store
	provider   Provider
	wakeLocker WakeLocker
	cfg        Config
	log        *logrus.Entry

	// writeMu serializes sample store writes with the stop cleanup, so the
	// epoch check and the write it guards happen as one unit against Stop.
	writeMu sync.Mutex

	mu             sync.Mutex
	state          State
	epoch          uint64
	clock          Clock
	remaining      time.Duration
	watcher        Watcher
	wakeLock       WakeLock
	autoTerm       *time.Timer
	tickDone       chan struct{}
	lastFix        *Fix
	samplesDropped uint64
}

func NewSession(plate string, routeID int64, store Store, provider Provider, wl WakeLocker, cfg Config, log *logrus.Logger) *Session {
	return &Session{
		Plate:      plate,
		RouteID:    routeID,
		store:      store,
		provider:   provider,
		wakeLocker: wl,
		cfg:        cfg.withDefaults(),
		log:        log.WithFields(logrus.Fields{"plate": plate, "route_id": routeID}),
	}
}

// Start transitions Idle -> Active. Precondition failures and an unreachable
// store abort before any state change or store write. After the transition an
// initial-upload failure is reported as *InitialSampleError while the session
// stays Active.
func (s *Session) Start(ctx context.Context) error {
	if s.Plate == "" {
		return ErrNoVehicle
	}
	if s.RouteID == 0 {
		return ErrNoRoute
	}

	s.mu.Lock()
	if s.state == StateActive {
		s.mu.Unlock()
		return ErrAlreadyActive
	}
	s.mu.Unlock()

	// Connectivity probe before any transition.
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}

	s.mu.Lock()
	if s.state == StateActive {
		s.mu.Unlock()
		return ErrAlreadyActive
	}
	s.state = StateActive
	s.epoch++
	epoch := s.epoch
	s.clock = Clock{Start: time.Now(), Max: s.cfg.MaxDuration}
	s.remaining = s.cfg.MaxDuration
	s.samplesDropped = 0
	s.lastFix = nil

	s.autoTerm = time.AfterFunc(s.cfg.MaxDuration, func() {
		s.log.Info("auto-terminating session after max duration")
		s.Stop(context.Background())
	})
	s.tickDone = make(chan struct{})
	go s.runCountdown(s.clock, s.tickDone)
	s.mu.Unlock()

	if wl, err := s.wakeLocker.Acquire(ctx); err != nil {
		s.log.WithError(err).Warn("wake lock acquisition failed")
	} else {
		s.mu.Lock()
		if s.state == StateActive && s.epoch == epoch {
			s.wakeLock = wl
			s.mu.Unlock()
		} else {
			// a stop ran while we were acquiring; nothing may be held on an
			// idle session
			s.mu.Unlock()
			wl.Release()
		}
	}

	s.log.Info("session started")

	watcher, err := s.provider.Watch(
		func(f Fix) { s.handleFix(f) },
		func(err error) { s.log.WithError(err).Warn("geolocation watch error") },
	)
	if err != nil {
		s.log.WithError(err).Warn("failed to start continuous sampling")
	} else {
		s.mu.Lock()
		if s.state == StateActive && s.epoch == epoch {
			s.watcher = watcher
			s.mu.Unlock()
		} else {
			s.mu.Unlock()
			watcher.Close()
		}
	}

	// Immediate sample to activate the bus. Provider errors are surfaced but
	// do not force the session back to Idle.
	fix, err := s.provider.Current(ctx)
	if err != nil {
		return &InitialSampleError{Err: err}
	}
	if err := s.publish(ctx, epoch, fix, true); err != nil {
		return &InitialSampleError{Err: err}
	}
	return nil
}

// runCountdown recomputes remaining time every tick and self-cancels once it
// hits zero. The auto-terminate timer does the actual stopping.
func (s *Session) runCountdown(clock Clock, done chan struct{}) {
	ticker := time.NewTicker(s.cfg.CountdownTick)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			remaining := clock.Remaining(now)
			s.mu.Lock()
			s.remaining = remaining
			s.mu.Unlock()
			s.log.WithField("remaining_ms", remaining.Milliseconds()).Debug("session countdown")
			if remaining == 0 {
				return
			}
		}
	}
}

// handleFix is the continuous-sampling callback.
func (s *Session) handleFix(f Fix) {
	s.mu.Lock()
	if s.state != StateActive {
		s.samplesDropped++
		dropped := s.samplesDropped
		s.mu.Unlock()
		s.log.WithField("samples_dropped", dropped).Debug("dropped sample for idle session")
		return
	}
	epoch := s.epoch
	s.mu.Unlock()

	if err := s.publish(context.Background(), epoch, f, false); err != nil {
		s.log.WithError(err).Warn("movement sync error")
	}
}

// publish uploads one sample: path point first, then the live-location
// upsert. writeMu is held across the whole upload and taken by Stop before
// its cleanup writes, so a sample captured before a stop can never resurrect
// state after it: either the sample drains fully before deactivate/purge run,
// or its epoch check fails.
func (s *Session) publish(ctx context.Context, epoch uint64, f Fix, initial bool) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if !s.epochCurrent(epoch) {
		return nil
	}
	if err := s.store.AppendPathPoint(ctx, s.Plate, f.Latitude, f.Longitude); err != nil {
		// Path trace is best-effort for every sample; the location upsert is
		// what riders see.
		s.log.WithError(err).Warn("path point insert failed")
	}

	if !s.epochCurrent(epoch) {
		return nil
	}
	if err := s.store.UpsertLocation(ctx, s.Plate, s.RouteID, f.Latitude, f.Longitude); err != nil {
		if initial {
			return err
		}
		s.log.WithError(err).Warn("location upsert failed")
		return nil
	}

	s.mu.Lock()
	if s.epoch == epoch {
		fix := f
		s.lastFix = &fix
	}
	s.mu.Unlock()
	return nil
}

func (s *Session) epochCurrent(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive || s.epoch != epoch {
		s.samplesDropped++
		return false
	}
	return true
}

// Stop transitions Active -> Idle: cancels both timers, closes the watch,
// releases the wake lock, marks the location inactive and purges the trip
// trace. Stopping an idle session is a no-op, so manual stop, auto-terminate
// and reconfiguration can all share this path safely.
func (s *Session) Stop(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return
	}
	s.state = StateIdle
	s.epoch++ // invalidates any sample still in flight
	if s.autoTerm != nil {
		s.autoTerm.Stop()
		s.autoTerm = nil
	}
	if s.tickDone != nil {
		close(s.tickDone)
		s.tickDone = nil
	}
	watcher := s.watcher
	s.watcher = nil
	wakeLock := s.wakeLock
	s.wakeLock = nil
	s.remaining = 0
	s.mu.Unlock()

	if watcher != nil {
		watcher.Close()
	}
	if wakeLock != nil {
		wakeLock.Release()
	}

	// Wait out any in-flight sample before the cleanup writes; the epoch bump
	// above stops everything behind it.
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.store.Deactivate(ctx, s.Plate); err != nil {
		s.log.WithError(err).Error("failed to deactivate location, row may stay marked active")
	}
	if err := s.store.PurgePath(ctx, s.Plate); err != nil {
		s.log.WithError(err).Error("failed to purge trip path")
	}

	s.log.Info("session stopped")
}

// Status is the snapshot served to the driver UI.
type Status struct {
	Plate       string     `json:"licensePlate"`
	RouteID     int64      `json:"routeId"`
	State       string     `json:"state"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	RemainingMs int64      `json:"remainingMs"`
	LastFix     *Fix       `json:"lastFix,omitempty"`
}

func (s *Session) Status(now time.Time) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Plate:   s.Plate,
		RouteID: s.RouteID,
		State:   s.state.String(),
	}
	if s.state == StateActive {
		started := s.clock.Start
		st.StartedAt = &started
		st.RemainingMs = s.clock.Remaining(now).Milliseconds()
		st.LastFix = s.lastFix
	}
	return st
}

// State reports the current tagged state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SamplesDropped counts samples suppressed by the epoch guard.
func (s *Session) SamplesDropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.samplesDropped
}
