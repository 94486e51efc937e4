package activity

import (
	"time"

	"github.com/chgenberg/runmate-sub002/internal/tracking"
)

type Activity struct {
	ID                  string                `json:"id"`
	UserID              string                `json:"user_id"`
	Title               string                `json:"title"`
	ActivityType        string                `json:"activity_type"`
	DistanceKm          float64               `json:"distance_km"`
	DurationSec         int64                 `json:"duration_sec"`
	AveragePaceSecPerKm float64               `json:"average_pace_sec_per_km"`
	Calories            float64               `json:"calories"`
	ElevationGainM      float64               `json:"elevation_gain_m"`
	StartTime           time.Time             `json:"start_time"`
	Route               []tracking.TrackPoint `json:"route"`
	Splits              []tracking.Split      `json:"splits"`
	Source              string                `json:"source"`
	CreatedAt           time.Time             `json:"created_at"`
}

type CreateRequest struct {
	UserID string `json:"user_id"`
	tracking.FinalizedActivity
}
