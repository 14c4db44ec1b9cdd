package bootstrap

import (
	"context"
	"log"
	"path/filepath"

	"student-risk-be/internal/config"
	"student-risk-be/internal/controller"
	"student-risk-be/internal/pkg/logger"
	"student-risk-be/internal/pkg/mailer"
	"student-risk-be/internal/pkg/metrics"
	"student-risk-be/internal/pkg/serverutils"
	"student-risk-be/internal/repository/contract"
	"student-risk-be/internal/repository/kv"
	"student-risk-be/internal/repository/memory"
	"student-risk-be/internal/repository/unitofwork"
	"student-risk-be/internal/service"
	"student-risk-be/pkg/events"
	pktNats "student-risk-be/pkg/nats"
	"student-risk-be/pkg/predictor"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Logger    logger.ILogger
	Metrics   *metrics.Metrics
	Sessions  *serverutils.SessionManager
	Predictor *predictor.Predictor

	// Controllers
	AuthController       controller.IAuthController
	PageController       controller.IPageController
	PredictionController controller.IPredictionController
	HealthController     controller.IHealthController

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	c := &Container{}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c.Logger = sysLogger
	c.Metrics = metrics.New()

	p, err := predictor.Load(cfg.Model.ArtifactsDir)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load model artifacts from %s: %v", cfg.Model.ArtifactsDir, err)
	}
	c.Predictor = p
	log.Printf("[INFO] Loaded model %s (%d features)", p.Version(), p.Constraints().Len())

	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.SenderName,
		)
	} else {
		emailService = mailer.NewNoopEmailService()
	}

	// 2. Event pipeline
	auditLogger := logger.NewIsolatedLogger(filepath.Join(filepath.Dir(cfg.App.LogFilePath), "events.log"))
	publisher := c.newEventPipeline(cfg, sysLogger, auditLogger)

	// 3. Sessions
	c.Sessions = serverutils.NewSessionManager(c.newSessionRepository(cfg), cfg.Session.TTL, cfg.Session.CookieSecure, sysLogger)

	// 4. Services
	authService := service.NewAuthService(uowFactory, emailService, publisher, c.Metrics, sysLogger, service.AuthOptions{
		MinPasswordLength: cfg.Auth.MinPasswordLength,
		JWTSecret:         cfg.Auth.JWTSecret,
		JWTTTL:            cfg.Auth.JWTTTL,
	})
	predictionService := service.NewPredictionService(p, uowFactory, publisher, c.Metrics, sysLogger)

	// 5. Controllers
	c.AuthController = controller.NewAuthController(authService, c.Sessions)
	c.PageController = controller.NewPageController(predictionService, p.Constraints(), c.Sessions)
	c.PredictionController = controller.NewPredictionController(predictionService)
	c.HealthController = controller.NewHealthController(predictionService, c.Metrics)

	return c
}

// newEventPipeline publishes to JetStream when NATS_URL is set and falls back to the in-process
// bus otherwise. Either way every event ends up in the audit log.
func (c *Container) newEventPipeline(cfg *config.Config, sysLogger, auditLogger logger.ILogger) events.Publisher {
	ctx, cancel := context.WithCancel(context.Background())
	c.closers = append(c.closers, cancel)

	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v. Using in-process bus", err)
		} else {
			c.closers = append(c.closers, natsPub.Close)

			natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
			if err != nil {
				log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
			} else {
				c.closers = append(c.closers, natsSub.Close)
				if err := natsSub.Subscribe(ctx, pktNats.Subject(">"), "audit-log", events.AuditHandler(auditLogger)); err != nil {
					log.Printf("[WARN] Failed to subscribe audit log: %v", err)
				}
			}
			return natsPub
		}
	}

	bus := events.NewBus()
	c.closers = append(c.closers, func() { bus.Close() })
	if err := events.Consume(ctx, bus, sysLogger, events.AuditHandler(auditLogger)); err != nil {
		log.Printf("[WARN] Failed to start audit log consumer: %v", err)
	}
	return bus
}

func (c *Container) newSessionRepository(cfg *config.Config) contract.SessionRepository {
	if cfg.Session.Store != "redis" {
		return memory.NewSessionRepository(cfg.Session.TTL)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Using in-memory sessions", err)
		rdb.Close()
		return memory.NewSessionRepository(cfg.Session.TTL)
	}
	c.closers = append(c.closers, func() { rdb.Close() })
	return kv.NewSessionRepository(rdb, cfg.Session.TTL)
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.Logger.Sync()
}
