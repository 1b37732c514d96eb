package bootstrap

import (
	"context"
	"time"

	"source-intel-be/internal/config"
	"source-intel-be/internal/controller"
	"source-intel-be/internal/handler"
	"source-intel-be/internal/pkg/logger"
	"source-intel-be/internal/repository/contract"
	"source-intel-be/internal/repository/implementation"
	"source-intel-be/internal/repository/memory"
	"source-intel-be/internal/repository/redisstore"
	"source-intel-be/internal/service"
	"source-intel-be/internal/websocket"
	pktNats "source-intel-be/pkg/nats"
	"source-intel-be/pkg/synthesis"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Logger *logger.ZapLogger
	Engine *synthesis.Engine

	SynthesisController  controller.ISynthesisController
	SessionStreamHandler *handler.SessionStreamHandler

	// Background services, started by Start.
	RelayService    service.IEventRelayService
	FeedbackService *service.FeedbackService
	CatalogWatcher  *synthesis.CatalogWatcher
	WebSocketHub    *websocket.Hub

	pubSub  *gochannel.GoChannel
	natsPub *pktNats.Publisher
	natsSub *pktNats.Subscriber
	rdb     *redis.Client
	db      *gorm.DB
}

// NewContainer wires every layer. db may be nil; NATS and Redis are used only when configured and reachable.
func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	opts := cfg.Synthesis.Options()

	// 1. Source registry
	catalog := synthesis.DefaultCatalog()
	if path := cfg.Synthesis.SourceCatalogPath; path != "" {
		loaded, err := synthesis.LoadCatalog(path)
		if err != nil {
			return nil, err
		}
		catalog = loaded
		sysLogger.Info("CATALOG", "Loaded source catalog", map[string]interface{}{"path": path, "sources": len(loaded)})
	}
	registry, err := synthesis.NewRegistry(catalog...)
	if err != nil {
		return nil, err
	}

	// 2. Infrastructure
	rdb := connectRedis(cfg.App.RedisURL, sysLogger)

	var natsPub *pktNats.Publisher
	var natsSub *pktNats.Subscriber
	if cfg.App.NatsURL != "" {
		if natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL, sysLogger); err != nil {
			sysLogger.Warn("SYNTHESIS", "Failed to connect to NATS publisher", map[string]interface{}{"error": err.Error()})
			natsPub = nil
		}
		if natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger); err != nil {
			sysLogger.Warn("SYNTHESIS", "Failed to connect to NATS subscriber", map[string]interface{}{"error": err.Error()})
			natsSub = nil
		}
	}

	// 3. Session store
	var store synthesis.SessionStore = memory.NewSessionRepository(opts.SessionTTL)
	if cfg.App.SessionStore == config.SessionStoreRedis {
		if rdb != nil {
			store = redisstore.NewSessionRepository(rdb, opts.SessionTTL)
		} else {
			sysLogger.Warn("SYNTHESIS", "SESSION_STORE=redis but Redis is unavailable, using memory", nil)
		}
	}

	engine, err := synthesis.NewEngine(opts, registry, store, sysLogger)
	if err != nil {
		return nil, err
	}

	// 4. Event bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewStdLogger(false, false),
	)
	publisherService := service.NewPublisherService(service.DecisionTopic, pubSub)
	engine.OnDecision(func(ctx context.Context, d synthesis.Decision) {
		if err := publisherService.PublishDecision(context.WithoutCancel(ctx), d); err != nil {
			sysLogger.Warn("SYNTHESIS", "Failed to publish decision", map[string]interface{}{"decision_id": d.ID, "error": err.Error()})
		}
	})

	var bus service.EventPublisher
	if natsPub != nil {
		bus = natsPub
	}
	var repo contract.SynthesisDecisionRepository
	if db != nil {
		repo = implementation.NewSynthesisDecisionRepository(db)
	}

	streamLogger := logger.NewIsolatedLogger(cfg.App.StreamLogFilePath)
	wsHub := websocket.NewHub(rdb, streamLogger)

	relay := service.NewEventRelayService(pubSub, service.DecisionTopic, repo, wsHub, bus, sysLogger)

	var feedback *service.FeedbackService
	if natsSub != nil {
		feedback = service.NewFeedbackService(registry, natsSub, sysLogger)
	}

	var watcher *synthesis.CatalogWatcher
	if path := cfg.Synthesis.SourceCatalogPath; path != "" {
		if watcher, err = synthesis.NewCatalogWatcher(path, registry, sysLogger); err != nil {
			sysLogger.Warn("CATALOG", "Catalog hot reload disabled", map[string]interface{}{"error": err.Error()})
			watcher = nil
		}
	}

	synthesisService := service.NewSynthesisService(engine, repo, bus, sysLogger)

	return &Container{
		Logger:               sysLogger,
		Engine:               engine,
		SynthesisController:  controller.NewSynthesisController(synthesisService),
		SessionStreamHandler: handler.NewSessionStreamHandler(wsHub, streamLogger),
		RelayService:         relay,
		FeedbackService:      feedback,
		CatalogWatcher:       watcher,
		WebSocketHub:         wsHub,
		pubSub:               pubSub,
		natsPub:              natsPub,
		natsSub:              natsSub,
		rdb:                  rdb,
		db:                   db,
	}, nil
}

// Start launches the background services; they stop when ctx is cancelled.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)

	if err := c.RelayService.Consume(ctx); err != nil {
		return err
	}
	if c.FeedbackService != nil {
		c.FeedbackService.Start()
	}
	if c.CatalogWatcher != nil {
		go c.CatalogWatcher.Run(ctx)
	}
	return nil
}

// Health reports which optional dependencies are live.
func (c *Container) Health() map[string]interface{} {
	return map[string]interface{}{
		"registry_version": c.Engine.Registry().Snapshot().Version,
		"sources":          c.Engine.Registry().Snapshot().Len(),
		"stream_sessions":  c.WebSocketHub.SessionCount(),
		"database":         c.db != nil,
		"redis":            c.rdb != nil,
		"nats":             c.natsPub != nil,
	}
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if err := c.pubSub.Close(); err != nil {
		c.Logger.Warn("SYNTHESIS", "Failed to close event bus", map[string]interface{}{"error": err.Error()})
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
	if c.db != nil {
		if sqlDB, err := c.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = c.Logger.Sync()
}

func connectRedis(url string, log logger.ILogger) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("SYNTHESIS", "Failed to parse Redis URL, using it as an address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("SYNTHESIS", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}
