package live

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/chgenberg/runmate-sub002/internal/stream"
	"github.com/chgenberg/runmate-sub002/internal/tracking"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound    = errors.New("live session not found")
	ErrMissingUser        = errors.New("user_id required")
	ErrNotTracking        = errors.New("session is not accepting samples")
	ErrUnknownSourceError = errors.New("unknown location error code")
	ErrNothingToExport    = errors.New("session has no finalized activity")
)

// PersisterFactory returns the create-activity collaborator for a user.
type PersisterFactory func(userID string) tracking.Persister

type StartRequest struct {
	UserID       string  `json:"user_id"`
	Title        string  `json:"title"`
	ActivityType string  `json:"activity_type"`
	WeightKg     float64 `json:"weight_kg"`
}

// View is a session's metrics as served to clients.
type View struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	tracking.Metrics
}

type entry struct {
	id      string
	userID  string
	session *tracking.Session
	source  *tracking.PushSource
}

// Manager hosts the in-progress sessions of this instance. Each session is fed
// by a PushSource so HTTP and websocket clients can deliver samples.
type Manager struct {
	mu         sync.RWMutex
	sessions   map[string]*entry
	settings   tracking.Settings
	persisters PersisterFactory
	hub        *stream.Hub
	now        func() time.Time
}

func NewManager(settings tracking.Settings, persisters PersisterFactory, hub *stream.Hub) *Manager {
	return &Manager{
		sessions:   map[string]*entry{},
		settings:   settings,
		persisters: persisters,
		hub:        hub,
		now:        time.Now,
	}
}

func (m *Manager) Start(req StartRequest) (View, error) {
	if req.UserID == "" {
		return View{}, ErrMissingUser
	}
	if req.Title == "" {
		req.Title = defaultTitle(req.ActivityType)
	}

	e := &entry{
		id:     uuid.NewString(),
		userID: req.UserID,
		source: tracking.NewPushSource(),
	}
	e.session = tracking.NewSession(e.source, m.persisters(req.UserID), tracking.Options{
		Title:        req.Title,
		ActivityType: req.ActivityType,
		WeightKg:     req.WeightKg,
		Settings:     m.settings,
		Now:          m.now,
		Listener:     m.broadcaster(e.id),
	})

	m.mu.Lock()
	m.sessions[e.id] = e
	m.mu.Unlock()

	if err := e.session.Start(); err != nil {
		m.remove(e.id)
		return View{}, err
	}
	log.Printf("live session %s started for user %s (%s)", e.id, e.userID, req.ActivityType)
	return e.view(), nil
}

func (m *Manager) Get(id string) (View, error) {
	e, err := m.lookup(id)
	if err != nil {
		return View{}, err
	}
	return e.view(), nil
}

func (m *Manager) PushSample(id string, sample tracking.LocationSample) (View, error) {
	e, err := m.lookup(id)
	if err != nil {
		return View{}, err
	}
	if !e.source.Push(sample) {
		return e.view(), ErrNotTracking
	}
	return e.view(), nil
}

// ReportSourceError forwards a device geolocation error to the session.
func (m *Manager) ReportSourceError(id, code string) (View, error) {
	e, err := m.lookup(id)
	if err != nil {
		return View{}, err
	}
	srcErr, ok := tracking.SourceErrorFromCode(code)
	if !ok {
		return View{}, ErrUnknownSourceError
	}
	if !e.source.Fail(srcErr) {
		return e.view(), ErrNotTracking
	}
	return e.view(), nil
}

func (m *Manager) Pause(id string) (View, error) {
	return m.transition(id, (*tracking.Session).Pause)
}

func (m *Manager) Resume(id string) (View, error) {
	return m.transition(id, (*tracking.Session).Resume)
}

func (m *Manager) Cancel(id string) (View, error) {
	v, err := m.transition(id, (*tracking.Session).Cancel)
	if err == nil {
		m.remove(id)
		log.Printf("live session %s cancelled", id)
	}
	return v, err
}

// Stop finalizes the session. Saved sessions are released; a session whose
// save failed stays registered for Retry and Export.
func (m *Manager) Stop(ctx context.Context, id string) (View, tracking.FinalizedActivity, error) {
	e, err := m.lookup(id)
	if err != nil {
		return View{}, tracking.FinalizedActivity{}, err
	}
	activity, err := e.session.Stop(ctx)
	return m.afterSave(e, activity, err)
}

func (m *Manager) Retry(ctx context.Context, id string) (View, tracking.FinalizedActivity, error) {
	e, err := m.lookup(id)
	if err != nil {
		return View{}, tracking.FinalizedActivity{}, err
	}
	activity, err := e.session.Retry(ctx)
	return m.afterSave(e, activity, err)
}

// Export returns the finalized record of a stopped session whose save failed.
// Saved sessions are released by Stop and Retry, which return the record.
func (m *Manager) Export(id string) (tracking.FinalizedActivity, error) {
	e, err := m.lookup(id)
	if err != nil {
		return tracking.FinalizedActivity{}, err
	}
	activity, ok := e.session.Finalized()
	if !ok {
		return tracking.FinalizedActivity{}, ErrNothingToExport
	}
	return activity, nil
}

// Len returns the number of hosted sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) afterSave(e *entry, activity tracking.FinalizedActivity, err error) (View, tracking.FinalizedActivity, error) {
	view := e.view()
	switch {
	case err == nil:
		m.remove(e.id)
		log.Printf("live session %s saved as activity %s (%.2f km)", e.id, view.ActivityID, activity.DistanceKm)
	case errors.Is(err, tracking.ErrPersistence):
		log.Printf("live session %s save failed: %v", e.id, err)
	}
	return view, activity, err
}

func (m *Manager) transition(id string, fn func(*tracking.Session) error) (View, error) {
	e, err := m.lookup(id)
	if err != nil {
		return View{}, err
	}
	if err := fn(e.session); err != nil {
		return e.view(), err
	}
	return e.view(), nil
}

func (m *Manager) lookup(id string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func (m *Manager) broadcaster(id string) tracking.Listener {
	if m.hub == nil {
		return nil
	}
	return func(ev tracking.Event) {
		if err := m.hub.BroadcastJSON(id, ev); err != nil {
			log.Printf("live session %s broadcast error: %v", id, err)
		}
	}
}

func (e *entry) view() View {
	return View{ID: e.id, UserID: e.userID, Metrics: e.session.Metrics()}
}

func defaultTitle(activityType string) string {
	switch activityType {
	case "interval":
		return "Interval session"
	case "tempo":
		return "Tempo run"
	}
	return "Run"
}
