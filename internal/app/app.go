package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/KRojowsky/beta-schoolweb/internal/config"
	"github.com/KRojowsky/beta-schoolweb/internal/delivery/httpd"
	"github.com/KRojowsky/beta-schoolweb/internal/repository"
	"github.com/KRojowsky/beta-schoolweb/internal/service"
	"github.com/KRojowsky/beta-schoolweb/internal/service/integration"
)

type App struct {
	server    *http.Server
	logger    zerolog.Logger
	config    *config.Config
	db        *sql.DB
	publisher integration.EventPublisher
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	publisher, err := integration.NewRabbitMQPublisher(
		cfg.RabbitMQ.URL,
		cfg.RabbitMQ.Exchange,
		cfg.RabbitMQ.ScheduledRoutingKey,
		cfg.RabbitMQ.FeedbackRoutingKey,
		log,
	)
	if err != nil {
		// Events are fire-and-forget, the service runs without them.
		log.Error().Err(err).Msg("Failed to create RabbitMQ publisher")
		publisher = nil
	}

	userRepo := repository.NewUserRepository(db, log)
	courseRepo := repository.NewCourseRepository(db, log)
	lessonRepo := repository.NewLessonRepository(db, log)
	earningsRepo := repository.NewEarningsRepository(db, log)
	availabilityRepo := repository.NewAvailabilityRepository(db, log)

	userService := service.NewUserService(userRepo, log)
	courseService := service.NewCourseService(courseRepo, userRepo, log)
	ledgerService := service.NewLedgerService(userRepo, log)
	schedulerService := service.NewSchedulerService(
		lessonRepo,
		courseRepo,
		userRepo,
		publisher,
		cfg.Lessons,
		log,
	)
	feedbackService := service.NewFeedbackService(
		lessonRepo,
		courseRepo,
		ledgerService,
		publisher,
		cfg.Lessons,
		log,
	)
	earningsService := service.NewEarningsService(
		earningsRepo,
		lessonRepo,
		userRepo,
		cfg.Lessons,
		log,
	)
	availabilityService := service.NewAvailabilityService(availabilityRepo, userRepo, log)

	handler := httpd.NewHandler(
		userService,
		courseService,
		ledgerService,
		schedulerService,
		feedbackService,
		earningsService,
		availabilityService,
		log,
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server:    server,
		logger:    log,
		config:    cfg,
		db:        db,
		publisher: publisher,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info().Msgf("Starting schoolweb service on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down schoolweb service...")

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	return a.server.Shutdown(ctx)
}
