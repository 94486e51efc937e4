package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chgenberg/runmate-sub002/internal/db"
	"github.com/chgenberg/runmate-sub002/internal/tracking"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound = errors.New("activity not found")
	ErrNoStore  = errors.New("activity store unavailable")
)

const defaultListLimit = 20

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) CreateActivity(ctx context.Context, userID string, input tracking.FinalizedActivity) (Activity, error) {
	if s.db == nil {
		return Activity{}, ErrNoStore
	}
	route, err := json.Marshal(nonNilRoute(input.Route))
	if err != nil {
		return Activity{}, fmt.Errorf("encode route: %w", err)
	}
	splits, err := json.Marshal(nonNilSplits(input.Splits))
	if err != nil {
		return Activity{}, fmt.Errorf("encode splits: %w", err)
	}

	a := Activity{
		ID:                  uuid.NewString(),
		UserID:              userID,
		Title:               input.Title,
		ActivityType:        input.ActivityType,
		DistanceKm:          input.DistanceKm,
		DurationSec:         input.DurationSeconds,
		AveragePaceSecPerKm: input.AveragePaceSecPerKm,
		Calories:            input.EstimatedCalories,
		ElevationGainM:      input.ElevationGainM,
		StartTime:           input.StartTime,
		Route:               input.Route,
		Splits:              input.Splits,
		Source:              input.Source,
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO activities (id, user_id, title, activity_type, distance_km, duration_sec, average_pace_sec_per_km, calories, elevation_gain_m, start_time, route, splits, source)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at
	`, a.ID, a.UserID, a.Title, a.ActivityType, a.DistanceKm, a.DurationSec, a.AveragePaceSecPerKm, a.Calories, a.ElevationGainM, a.StartTime, route, splits, a.Source)
	if err := row.Scan(&a.CreatedAt); err != nil {
		return Activity{}, err
	}
	return a, nil
}

func (s *Service) GetActivity(ctx context.Context, id string) (Activity, error) {
	if s.db == nil {
		return Activity{}, ErrNoStore
	}
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, title, activity_type, distance_km, duration_sec, average_pace_sec_per_km, calories, elevation_gain_m, start_time, route, splits, source, created_at
		FROM activities WHERE id=$1
	`, id)
	a, err := scanActivity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Activity{}, ErrNotFound
	}
	return a, err
}

func (s *Service) ListActivities(ctx context.Context, userID string, limit int) ([]Activity, error) {
	if s.db == nil {
		return nil, ErrNoStore
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, title, activity_type, distance_km, duration_sec, average_pace_sec_per_km, calories, elevation_gain_m, start_time, route, splits, source, created_at
		FROM activities WHERE user_id=$1
		ORDER BY start_time DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func scanActivity(row pgx.Row) (Activity, error) {
	var a Activity
	var route, splits []byte
	if err := row.Scan(&a.ID, &a.UserID, &a.Title, &a.ActivityType, &a.DistanceKm, &a.DurationSec, &a.AveragePaceSecPerKm, &a.Calories, &a.ElevationGainM, &a.StartTime, &route, &splits, &a.Source, &a.CreatedAt); err != nil {
		return Activity{}, err
	}
	if len(route) > 0 {
		if err := json.Unmarshal(route, &a.Route); err != nil {
			return Activity{}, fmt.Errorf("decode route: %w", err)
		}
	}
	if len(splits) > 0 {
		if err := json.Unmarshal(splits, &a.Splits); err != nil {
			return Activity{}, fmt.Errorf("decode splits: %w", err)
		}
	}
	return a, nil
}

func nonNilRoute(r []tracking.TrackPoint) []tracking.TrackPoint {
	if r == nil {
		return []tracking.TrackPoint{}
	}
	return r
}

func nonNilSplits(s []tracking.Split) []tracking.Split {
	if s == nil {
		return []tracking.Split{}
	}
	return s
}

// Recorder persists finalized activities on behalf of one user.
type Recorder struct {
	svc    *Service
	userID string
}

func NewRecorder(svc *Service, userID string) *Recorder {
	return &Recorder{svc: svc, userID: userID}
}

func (r *Recorder) CreateActivity(ctx context.Context, input tracking.FinalizedActivity) (string, error) {
	a, err := r.svc.CreateActivity(ctx, r.userID, input)
	if err != nil {
		return "", err
	}
	return a.ID, nil
}
