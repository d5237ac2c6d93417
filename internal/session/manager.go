package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srkulkarni196974-max/SDMCET-bus-tracking/internal/location"
	"github.com/srkulkarni196974-max/SDMCET-bus-tracking/internal/realtime"
)

var ErrSessionNotActive = errors.New("no active session for vehicle")

// StoreBackend is the store surface the manager needs: the session write
// path plus the active-plates projection used to seed the cache.
type StoreBackend interface {
	Store
	ActivePlates(ctx context.Context) ([]string, error)
}

type managed struct {
	session  *Session
	provider *PushProvider
}

// Manager owns one session instance per license plate and the active-plates
// set. The set is populated only by the change-feed subscription loop in Run;
// every other component reads it.
type Manager struct {
	store      StoreBackend
	hub        *realtime.Hub
	wakeLocker WakeLocker
	cfg        Config
	log        *logrus.Logger

	mu       sync.Mutex
	sessions map[string]*managed
	active   map[string]struct{}
}

func NewManager(store StoreBackend, hub *realtime.Hub, wl WakeLocker, cfg Config, log *logrus.Logger) *Manager {
	return &Manager{
		store:      store,
		hub:        hub,
		wakeLocker: wl,
		cfg:        cfg.withDefaults(),
		log:        log,
		sessions:   make(map[string]*managed),
		active:     make(map[string]struct{}),
	}
}

// Run seeds the active-plates cache and then keeps it in sync from the
// bus_locations change feed until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	plates, err := m.store.ActivePlates(ctx)
	if err != nil {
		m.log.WithError(err).Warn("failed to seed active plates")
	}
	m.mu.Lock()
	for _, p := range plates {
		m.active[p] = struct{}{}
	}
	m.mu.Unlock()

	events, cancel := m.hub.Subscribe(location.BusLocation{}.TableName())
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-events:
			if !ok {
				return
			}
			m.applyChange(change)
		}
	}
}

func (m *Manager) applyChange(change realtime.Change) {
	row, ok := change.New.(location.BusLocation)
	if !ok {
		if old, okOld := change.Old.(location.BusLocation); okOld {
			row = old
			row.IsActive = false
		} else {
			return
		}
	}

	m.mu.Lock()
	if row.IsActive && change.Event != realtime.EventDelete {
		m.active[row.LicensePlate] = struct{}{}
	} else {
		delete(m.active, row.LicensePlate)
	}
	m.mu.Unlock()
}

// ActivePlatesSnapshot is a point-in-time read of the cache.
func (m *Manager) ActivePlatesSnapshot() []string {
	m.mu.Lock()
	plates := make([]string, 0, len(m.active))
	for p := range m.active {
		plates = append(plates, p)
	}
	m.mu.Unlock()
	sort.Strings(plates)
	return plates
}

// StartSession starts tracking one vehicle on one route, with the initial
// fix embedded in the start request. A plate in the active set, or one with
// an Active in-process session, cannot be started again. The returned error
// may be *InitialSampleError, in which case the session IS active but the
// operator must be warned.
func (m *Manager) StartSession(ctx context.Context, plate string, routeID int64, initial Fix) (*Session, error) {
	if plate == "" {
		return nil, ErrNoVehicle
	}
	if routeID == 0 {
		return nil, ErrNoRoute
	}

	m.mu.Lock()
	if existing, ok := m.sessions[plate]; ok && existing.session.State() == StateActive {
		m.mu.Unlock()
		return nil, ErrVehicleInUse
	}
	if _, inUse := m.active[plate]; inUse {
		m.mu.Unlock()
		return nil, ErrVehicleInUse
	}

	provider := NewPushProvider(initial)
	sess := NewSession(plate, routeID, m.store, provider, m.wakeLocker, m.cfg, m.log)
	m.sessions[plate] = &managed{session: sess, provider: provider}
	m.mu.Unlock()

	err := sess.Start(ctx)
	if err != nil {
		var initErr *InitialSampleError
		if errors.As(err, &initErr) {
			// Session is Active; surface the warning but keep it registered.
			return sess, err
		}
		m.mu.Lock()
		delete(m.sessions, plate)
		m.mu.Unlock()
		return nil, err
	}
	return sess, nil
}

// PushFix feeds one posted position sample into the plate's session.
func (m *Manager) PushFix(plate string, f Fix) error {
	m.mu.Lock()
	entry, ok := m.sessions[plate]
	m.mu.Unlock()
	if !ok || entry.session.State() != StateActive {
		return ErrSessionNotActive
	}
	entry.provider.Push(f)
	return nil
}

// PushWatchError feeds a geolocation failure reported by the driver's device
// into the plate's session, where it is logged against the session fields.
func (m *Manager) PushWatchError(plate string, err error) error {
	m.mu.Lock()
	entry, ok := m.sessions[plate]
	m.mu.Unlock()
	if !ok || entry.session.State() != StateActive {
		return ErrSessionNotActive
	}
	entry.provider.PushError(err)
	return nil
}

// StopSession stops the plate's session. Stopping an unknown or already-idle
// plate is a no-op.
func (m *Manager) StopSession(ctx context.Context, plate string) {
	m.mu.Lock()
	entry, ok := m.sessions[plate]
	m.mu.Unlock()
	if !ok {
		return
	}
	entry.session.Stop(ctx)
}

// StatusFor reports the session snapshot for one plate.
func (m *Manager) StatusFor(plate string, now time.Time) (Status, bool) {
	m.mu.Lock()
	entry, ok := m.sessions[plate]
	m.mu.Unlock()
	if !ok {
		return Status{Plate: plate, State: StateIdle.String()}, false
	}
	return entry.session.Status(now), true
}
