package tracking

import "time"

type Status string

const (
	StatusIdle      Status = "idle"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusStopped   Status = "stopped"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition (other than a restart) is possible.
func (s Status) Terminal() bool {
	return s == StatusStopped || s == StatusCancelled
}

// LocationSample is one raw reading delivered by a SampleSource.
type LocationSample struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Altitude  *float64  `json:"altitude,omitempty"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// TrackPoint is an accepted sample retained on the route.
type TrackPoint struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Altitude  *float64  `json:"altitude,omitempty"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
	Elevation float64   `json:"elevation"`
}

func newTrackPoint(s LocationSample) TrackPoint {
	p := TrackPoint{
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Altitude:  s.Altitude,
		Accuracy:  s.Accuracy,
		Timestamp: s.Timestamp,
	}
	if s.Altitude != nil {
		p.Elevation = *s.Altitude
	}
	return p
}

// Split is one completed distance unit. Durations are in seconds of active time.
type Split struct {
	Index              int     `json:"index"`
	SegmentDuration    float64 `json:"segment_duration_sec"`
	CumulativeDuration float64 `json:"cumulative_duration_sec"`
}

// FinalizedActivity is the immutable record handed to the Persister on stop.
type FinalizedActivity struct {
	Title               string       `json:"title"`
	ActivityType        string       `json:"activity_type"`
	DistanceKm          float64      `json:"distance_km"`
	DurationSeconds     int64        `json:"duration_sec"`
	AveragePaceSecPerKm float64      `json:"average_pace_sec_per_km"`
	EstimatedCalories   float64      `json:"estimated_calories"`
	ElevationGainM      float64      `json:"elevation_gain_m"`
	StartTime           time.Time    `json:"start_time"`
	Route               []TrackPoint `json:"route"`
	Splits              []Split      `json:"splits"`
	Source              string       `json:"source"`
}

// Metrics is a point-in-time view of a session for display.
type Metrics struct {
	Status              Status          `json:"status"`
	DistanceM           float64         `json:"distance_m"`
	ElapsedSec          float64         `json:"elapsed_sec"`
	CurrentPaceSecPerKm float64         `json:"current_pace_sec_per_km"`
	AveragePaceSecPerKm float64         `json:"average_pace_sec_per_km"`
	EstimatedCalories   float64         `json:"estimated_calories"`
	RoutePoints         int             `json:"route_points"`
	Splits              []Split         `json:"splits"`
	Position            *LocationSample `json:"position,omitempty"`
	Searching           bool            `json:"searching"`
	SourceLost          bool            `json:"source_lost"`
	Warning             string          `json:"warning,omitempty"`
	Saved               bool            `json:"saved"`
	ActivityID          string          `json:"activity_id,omitempty"`
}
