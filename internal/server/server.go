package server

import (
	"github.com/chgenberg/runmate-sub002/internal/activity"
	"github.com/chgenberg/runmate-sub002/internal/config"
	"github.com/chgenberg/runmate-sub002/internal/db"
	"github.com/chgenberg/runmate-sub002/internal/live"
	"github.com/chgenberg/runmate-sub002/internal/onboarding"
	"github.com/chgenberg/runmate-sub002/internal/stream"
	"github.com/chgenberg/runmate-sub002/internal/tracking"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
	Live   *live.Manager
}

func NewServer(cfg config.Config, pg *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     pg,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	activities := activity.NewService(querier(pg))
	s.Live = live.NewManager(TrackingSettings(cfg), func(userID string) tracking.Persister {
		return activity.NewRecorder(activities, userID)
	}, s.Stream)

	registerRoutes(s, activities)
	return s
}

// TrackingSettings maps configuration onto the tracker's tuning.
func TrackingSettings(cfg config.Config) tracking.Settings {
	return tracking.Settings{
		MinMovementKm:     cfg.MinMovementKm,
		MaxAccuracyM:      cfg.MaxAccuracyM,
		MinStopDistanceKm: cfg.MinStopDistanceKm,
		SplitUnitKm:       cfg.SplitUnitKm,
		DefaultWeightKg:   cfg.DefaultWeightKg,
		Source:            cfg.ActivitySource,
		SourceOptions: tracking.SourceOptions{
			HighAccuracy: cfg.GeoHighAccuracy,
			Timeout:      cfg.GeoTimeout,
			MaximumAge:   cfg.GeoMaxAge,
		},
	}
}

func querier(pg *pgxpool.Pool) db.Querier {
	if pg == nil {
		return nil
	}
	return pg
}

func registerRoutes(s *Server, activities *activity.Service) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "live_sessions": s.Live.Len()})
	})

	activity.RegisterRoutes(s.App.Group("/activities"), activities)
	live.RegisterRoutes(s.App.Group("/live"), s.Live)
	onboarding.RegisterRoutes(s.App.Group("/onboarding"), onboarding.NewService(s.Redis))
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
