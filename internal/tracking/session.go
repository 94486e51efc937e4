package tracking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/chgenberg/runmate-sub002/internal/shared/geo"
)

// Persister is the create-activity collaborator called once on a successful stop.
type Persister interface {
	CreateActivity(ctx context.Context, activity FinalizedActivity) (string, error)
}

type EventType string

const (
	EventPoint   EventType = "point"
	EventSplit   EventType = "split"
	EventWarning EventType = "warning"
	EventStatus  EventType = "status"
)

// Event describes a change observed by a session listener.
type Event struct {
	Type       EventType   `json:"type"`
	Status     Status      `json:"status"`
	Point      *TrackPoint `json:"point,omitempty"`
	Split      *Split      `json:"split,omitempty"`
	Warning    string      `json:"warning,omitempty"`
	DistanceM  float64     `json:"distance_m"`
	ElapsedSec float64     `json:"elapsed_sec"`
	// Seq increases by one per event in the order the session applied them.
	Seq        uint64      `json:"seq"`
}

// Listener is invoked after the session lock is released, one event at a time
// and in Seq order.
type Listener func(Event)

// Options describe one activity.
type Options struct {
	Title        string
	ActivityType string
	// WeightKg falls back to Settings.DefaultWeightKg when zero.
	WeightKg float64
	Settings Settings
	Now      func() time.Time
	Listener Listener
}

// Session is the tracking state of one activity. The source must not invoke
// its callbacks synchronously from Subscribe.
type Session struct {
	mu        sync.Mutex
	emitMu    sync.Mutex
	seq       uint64
	source    SampleSource
	persister Persister
	settings  Settings
	filter    Filter
	now       func() time.Time
	listener  Listener

	title        string
	activityType string
	weightKg     float64

	status            Status
	startedAt         time.Time
	pausedAt          time.Time
	bankedActive      time.Duration
	accumulatedPaused time.Duration

	distanceM   float64
	route       []TrackPoint
	splits      splitter
	last        *TrackPoint
	currentPace float64
	position    *LocationSample
	searching   bool
	sourceLost  bool
	warnings    []error
	unsubscribe Unsubscribe

	finalized  *FinalizedActivity
	saving     bool
	saved      bool
	activityID string
}

func NewSession(source SampleSource, persister Persister, opts Options) *Session {
	settings := opts.Settings.withDefaults()
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	weight := opts.WeightKg
	if weight <= 0 {
		weight = settings.DefaultWeightKg
	}
	s := &Session{
		source:       source,
		persister:    persister,
		settings:     settings,
		filter:       Filter{MinMovementKm: settings.MinMovementKm, MaxAccuracyM: settings.MaxAccuracyM},
		now:          now,
		listener:     opts.Listener,
		title:        opts.Title,
		activityType: opts.ActivityType,
		weightKg:     weight,
		status:       StatusIdle,
	}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.startedAt = time.Time{}
	s.pausedAt = time.Time{}
	s.bankedActive = 0
	s.accumulatedPaused = 0
	s.distanceM = 0
	s.route = nil
	s.splits = splitter{unitKm: s.settings.SplitUnitKm}
	s.last = nil
	s.currentPace = 0
	s.position = nil
	s.searching = false
	s.sourceLost = false
	s.warnings = nil
	s.finalized = nil
	s.saving = false
	s.saved = false
	s.activityID = ""
}

// Start begins tracking from idle, or from cancelled with all state cleared.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.status != StatusIdle && s.status != StatusCancelled {
		defer s.mu.Unlock()
		return transitionError(s.status, "start")
	}
	s.reset()
	now := s.now()
	s.startedAt = now
	s.status = StatusActive
	s.subscribeLocked()
	events := []Event{s.statusEventLocked(now)}
	s.unlockAndEmit(events)
	return nil
}

func (s *Session) Pause() error {
	s.mu.Lock()
	if s.status != StatusActive {
		defer s.mu.Unlock()
		return transitionError(s.status, "pause")
	}
	now := s.now()
	s.bankedActive += now.Sub(s.startedAt)
	s.pausedAt = now
	s.status = StatusPaused
	s.unsubscribeLocked()
	events := []Event{s.statusEventLocked(now)}
	s.unlockAndEmit(events)
	return nil
}

func (s *Session) Resume() error {
	s.mu.Lock()
	if s.status != StatusPaused {
		defer s.mu.Unlock()
		return transitionError(s.status, "resume")
	}
	now := s.now()
	s.accumulatedPaused += now.Sub(s.pausedAt)
	s.startedAt = now
	s.status = StatusActive
	s.subscribeLocked()
	events := []Event{s.statusEventLocked(now)}
	s.unlockAndEmit(events)
	return nil
}

// Stop freezes the totals and persists the finalized activity. Below the
// minimum distance it returns ErrInsufficientDistance and changes nothing.
// A persistence failure returns a *PersistenceError; the session is stopped
// and the record stays available through Finalized and Retry.
func (s *Session) Stop(ctx context.Context) (FinalizedActivity, error) {
	s.mu.Lock()
	if s.status != StatusActive && s.status != StatusPaused {
		defer s.mu.Unlock()
		return FinalizedActivity{}, transitionError(s.status, "stop")
	}
	if km := s.distanceM / 1000; km < s.settings.MinStopDistanceKm {
		defer s.mu.Unlock()
		return FinalizedActivity{}, fmt.Errorf("%w: %.3f km recorded, %.3f km required", ErrInsufficientDistance, km, s.settings.MinStopDistanceKm)
	}

	now := s.now()
	switch s.status {
	case StatusActive:
		s.bankedActive += now.Sub(s.startedAt)
	case StatusPaused:
		s.accumulatedPaused += now.Sub(s.pausedAt)
	}
	s.unsubscribeLocked()
	s.status = StatusStopped
	activity := s.finalizeLocked(now)
	s.finalized = &activity
	s.saving = true
	events := []Event{s.statusEventLocked(now)}
	s.unlockAndEmit(events)

	return activity, s.save(ctx)
}

// Retry persists a stopped activity whose earlier save failed. It returns
// ErrSaveInProgress while another save of the same record is running.
func (s *Session) Retry(ctx context.Context) (FinalizedActivity, error) {
	s.mu.Lock()
	if s.status != StatusStopped || s.saved || s.finalized == nil {
		s.mu.Unlock()
		return FinalizedActivity{}, ErrNothingToRetry
	}
	if s.saving {
		s.mu.Unlock()
		return FinalizedActivity{}, ErrSaveInProgress
	}
	s.saving = true
	activity := *s.finalized
	s.mu.Unlock()

	return activity, s.save(ctx)
}

// save runs with s.saving set by the caller and clears it when done.
func (s *Session) save(ctx context.Context) error {
	s.mu.Lock()
	activity := *s.finalized
	s.mu.Unlock()

	id, err := s.persister.CreateActivity(ctx, activity)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	if err != nil {
		return &PersistenceError{Err: err}
	}
	s.saved = true
	s.activityID = id
	return nil
}

// Cancel discards the session from any non-terminal state without persisting.
func (s *Session) Cancel() error {
	s.mu.Lock()
	if s.status.Terminal() {
		defer s.mu.Unlock()
		return transitionError(s.status, "cancel")
	}
	s.unsubscribeLocked()
	s.reset()
	s.status = StatusCancelled
	events := []Event{s.statusEventLocked(s.now())}
	s.unlockAndEmit(events)
	return nil
}

func (s *Session) subscribeLocked() {
	if s.unsubscribe != nil || s.source == nil {
		return
	}
	s.sourceLost = false
	s.unsubscribe = s.source.Subscribe(s.settings.SourceOptions, s.handleSample, s.handleError)
}

func (s *Session) unsubscribeLocked() {
	if s.unsubscribe == nil {
		return
	}
	s.unsubscribe()
	s.unsubscribe = nil
}

func (s *Session) handleSample(sample LocationSample) {
	s.mu.Lock()
	if s.status != StatusActive {
		s.mu.Unlock()
		return
	}
	events := s.acceptLocked(sample)
	s.unlockAndEmit(events)
}

func (s *Session) acceptLocked(sample LocationSample) []Event {
	pos := sample
	s.position = &pos
	s.searching = false

	if s.last == nil {
		if !s.filter.Seeds(sample) {
			return nil
		}
		origin := newTrackPoint(sample)
		s.route = append(s.route, origin)
		s.last = &origin
		return []Event{s.pointEventLocked(origin)}
	}

	inc, ok := s.filter.Evaluate(s.last, sample)
	if !ok {
		return nil
	}

	prevKm := s.distanceM / 1000
	s.distanceM += inc * 1000
	if pace, ok := InstantPace(sample.Timestamp.Sub(s.last.Timestamp).Seconds(), inc); ok {
		s.currentPace = pace
	}
	point := newTrackPoint(sample)
	s.route = append(s.route, point)
	s.last = &point

	events := []Event{s.pointEventLocked(point)}
	elapsed := s.elapsedLocked(s.now()).Seconds()
	for _, split := range s.splits.advance(prevKm, s.distanceM/1000, elapsed) {
		split := split
		events = append(events, Event{Type: EventSplit, Status: s.status, Split: &split, DistanceM: s.distanceM, ElapsedSec: elapsed})
	}
	return events
}

func (s *Session) handleError(err error) {
	s.mu.Lock()
	if s.status != StatusActive && s.status != StatusPaused {
		s.mu.Unlock()
		return
	}
	s.warnings = append(s.warnings, err)
	s.searching = true
	if errors.Is(err, ErrPermissionDenied) {
		s.sourceLost = true
		s.unsubscribeLocked()
	}
	events := []Event{{Type: EventWarning, Status: s.status, Warning: err.Error(), DistanceM: s.distanceM, ElapsedSec: s.elapsedLocked(s.now()).Seconds()}}
	s.unlockAndEmit(events)
}

// unlockAndEmit numbers events and releases s.mu. emitMu is taken before the
// state lock is dropped, so listeners see events in the order they were applied.
func (s *Session) unlockAndEmit(events []Event) {
	for i := range events {
		s.seq++
		events[i].Seq = s.seq
	}
	if s.listener == nil || len(events) == 0 {
		s.mu.Unlock()
		return
	}
	s.emitMu.Lock()
	s.mu.Unlock()
	defer s.emitMu.Unlock()
	for _, e := range events {
		s.listener(e)
	}
}

func (s *Session) statusEventLocked(now time.Time) Event {
	return Event{Type: EventStatus, Status: s.status, DistanceM: s.distanceM, ElapsedSec: s.elapsedLocked(now).Seconds()}
}

func (s *Session) pointEventLocked(p TrackPoint) Event {
	return Event{Type: EventPoint, Status: s.status, Point: &p, DistanceM: s.distanceM, ElapsedSec: s.elapsedLocked(s.now()).Seconds()}
}

// elapsedLocked is the active duration; paused time never counts.
func (s *Session) elapsedLocked(now time.Time) time.Duration {
	if s.status == StatusActive {
		return s.bankedActive + now.Sub(s.startedAt)
	}
	return s.bankedActive
}

func (s *Session) finalizeLocked(now time.Time) FinalizedActivity {
	elapsed := s.bankedActive
	distanceKm := s.distanceM / 1000

	elevations := make([]float64, len(s.route))
	for i, p := range s.route {
		elevations[i] = p.Elevation
	}
	route := make([]TrackPoint, len(s.route))
	copy(route, s.route)

	return FinalizedActivity{
		Title:               s.title,
		ActivityType:        s.activityType,
		DistanceKm:          round2(distanceKm),
		DurationSeconds:     int64(elapsed.Seconds()),
		AveragePaceSecPerKm: averagePace(elapsed, distanceKm),
		EstimatedCalories:   math.Round(EstimateCalories(s.activityType, s.weightKg, elapsed)),
		ElevationGainM:      geo.ElevationGainM(elevations),
		StartTime:           now.Add(-(elapsed + s.accumulatedPaused)),
		Route:               route,
		Splits:              s.splits.list(),
		Source:              s.settings.Source,
	}
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Elapsed returns the active duration at this instant.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsedLocked(s.now())
}

func (s *Session) DistanceMeters() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.distanceM
}

func (s *Session) Route() []TrackPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TrackPoint, len(s.route))
	copy(out, s.route)
	return out
}

func (s *Session) Splits() []Split {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.splits.list()
}

func (s *Session) Warnings() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]error, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// Finalized returns the record built at stop, saved or not.
func (s *Session) Finalized() (FinalizedActivity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized == nil {
		return FinalizedActivity{}, false
	}
	return *s.finalized, true
}

func (s *Session) Saved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}

func (s *Session) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := s.elapsedLocked(s.now())
	m := Metrics{
		Status:              s.status,
		DistanceM:           s.distanceM,
		ElapsedSec:          elapsed.Seconds(),
		CurrentPaceSecPerKm: s.currentPace,
		AveragePaceSecPerKm: averagePace(elapsed, s.distanceM/1000),
		EstimatedCalories:   EstimateCalories(s.activityType, s.weightKg, elapsed),
		RoutePoints:         len(s.route),
		Splits:              s.splits.list(),
		Searching:           s.searching,
		SourceLost:          s.sourceLost,
		Saved:               s.saved,
		ActivityID:          s.activityID,
	}
	if s.position != nil {
		pos := *s.position
		m.Position = &pos
	}
	if n := len(s.warnings); n > 0 && s.searching {
		m.Warning = s.warnings[n-1].Error()
	}
	return m
}

func averagePace(elapsed time.Duration, distanceKm float64) float64 {
	if distanceKm <= 0 || elapsed <= 0 {
		return 0
	}
	return elapsed.Seconds() / distanceKm
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
