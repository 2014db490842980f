package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/conference-booking/internal/config"
	"github.com/iliyamo/conference-booking/internal/database"
	"github.com/iliyamo/conference-booking/internal/handler"
	"github.com/iliyamo/conference-booking/internal/logging"
	"github.com/iliyamo/conference-booking/internal/middleware"
	"github.com/iliyamo/conference-booking/internal/pass"
	"github.com/iliyamo/conference-booking/internal/queue"
	"github.com/iliyamo/conference-booking/internal/repository"
	"github.com/iliyamo/conference-booking/internal/router"
	"github.com/iliyamo/conference-booking/internal/service"
	"github.com/iliyamo/conference-booking/internal/session"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	log := logging.New(os.Getenv("APP_ENV"))
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	persister, closeStorage := openPersister(ctx, cfg, log)
	defer closeStorage()

	store := repository.New(persister, log)
	if err := store.LoadAll(ctx); err != nil {
		log.WithError(err).Fatal("load collections")
	}
	if err := service.EnsureAdmin(ctx, store, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword, cfg.BcryptCost); err != nil {
		log.WithError(err).Fatal("seed administrator")
	}

	// Redis is optional: sessions, rate limiting and the catalog cache
	// fall back to in-process implementations without it.
	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		log.WithError(err).Warn("redis unavailable, using in-memory sessions and rate limits")
	}
	var sessStore session.Store = session.NewMemoryStore()
	if rdb != nil {
		sessStore = session.NewRedisStore(rdb)
		defer rdb.Close()
	}
	sessions := session.NewManager(sessStore, time.Duration(cfg.AccessTTLMin)*time.Minute)

	opts := service.Options{BcryptCost: cfg.BcryptCost, Logger: log}
	qcfg := config.LoadQueueConfig()
	if qcfg.Enabled {
		opts.Publisher = queue.NewPublisher(qcfg.URL, qcfg.Name, log)
		consumer := &queue.Consumer{URL: qcfg.URL, Queue: qcfg.Name, LogDir: qcfg.LogDir, Log: log.WithField("component", "events-consumer")}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("events consumer stopped")
			}
		}()
	}
	svc := service.New(store, sessions, opts)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler(log)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(requestLogger(log)))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	auth := middleware.JWTAuth(cfg.JWTSecret, sessions)
	passes := pass.Renderer{Secret: []byte(cfg.JWTSecret)}
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(svc, cfg.JWTSecret), auth)
	router.RegisterPublic(e, &handler.CatalogHandler{Svc: svc}, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterAttendee(e,
		&handler.ProfileHandler{Svc: svc},
		&handler.TicketHandler{Svc: svc, Pass: passes},
		&handler.ReservationHandler{Svc: svc},
		auth,
	)
	router.RegisterAdmin(e, &handler.AdminHandler{Svc: svc, Pass: passes}, auth)

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "storage": cfg.Storage}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown")
	}
	if err := store.SaveAll(shutdownCtx); err != nil {
		log.WithError(err).Error("final save")
	}
}

// openPersister picks the snapshot backend named by STORAGE_DRIVER.
func openPersister(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (repository.Persister, func()) {
	if cfg.Storage == config.StorageMemory {
		log.Warn("memory storage selected, data is lost on restart")
		return repository.NewMemoryPersister(), func() {}
	}
	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	blobs := database.NewBlobStore(db)
	if err := blobs.EnsureSchema(ctx); err != nil {
		log.WithError(err).Fatal("ensure schema")
	}
	return blobs, func() { _ = db.Close() }
}

func requestLogger(log logrus.FieldLogger) echomw.RequestLoggerConfig {
	return echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
				"ip":      v.RemoteIP,
			})
			if s, ok := middleware.CurrentSession(c); ok {
				entry = entry.WithField("attendee_id", s.AttendeeID)
			}
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}
}
