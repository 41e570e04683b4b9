package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "thermowatch/docs"
	"thermowatch/internal/broker"
	"thermowatch/internal/cache"
	"thermowatch/internal/config"
	"thermowatch/internal/handlers"
	"thermowatch/internal/logger"
	"thermowatch/internal/models"
	"thermowatch/internal/repository"
	"thermowatch/internal/repository/db"
	"thermowatch/internal/retry"
	"thermowatch/internal/server"
	"thermowatch/internal/service"
	"thermowatch/internal/simulator"

	"github.com/redis/go-redis/v9"
)

const redisDialTimeout = 5 * time.Second

// @title                       thermowatch API
// @version                     1.0
// @description                 Temperature readings filtered by an operator-set threshold.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load("configs")
	if err != nil {
		logger.Get("info", "console").Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	sqlDB, err := openDB(cfg.DB, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()
	repos := repository.NewRepository(sqlDB)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	latest, rdb := openCache(ctx, cfg.Redis, log)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	opts := service.Options{
		SigningKey:       cfg.Auth.SigningKey,
		TokenTTL:         cfg.Auth.TokenTTL,
		DefaultRole:      cfg.Auth.DefaultRole,
		Operators:        cfg.Auth.Operators,
		DefaultThreshold: cfg.Threshold.Default,
		PageSize:         cfg.Readings.PageSize,
		MaxPageSize:      cfg.Readings.MaxPageSize,
		Log:              log,
	}
	if latest != nil {
		opts.Cache = latest
	}

	var mgr *broker.Manager
	if cfg.MQTT.Enabled {
		mgr = newManager(cfg.MQTT, repos.EventRepo, latest, log)
		opts.Status = mgr
	} else {
		log.Infow("mqtt disabled; live status falls back to the cache")
	}

	services := service.NewService(repos, opts)

	// everything started here must return before the deferred closes run
	var bg background
	if mgr != nil {
		bg.Go(func() {
			if err := mgr.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorw("broker session ended", "err", err)
			}
		})
		bg.Go(func() { services.Ingestion.Run(ctx, mgr.Readings()) })
	}

	if cfg.Simulator.Enabled {
		startSimulator(ctx, &bg, cfg.MQTT, cfg.Simulator, log)
	}

	apiHandler := handlers.NewHandler(services, log)
	srv := server.New(cfg.HTTP)
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	waitForShutdown(cancel, srv, &bg, cfg.HTTP.ShutdownTimeout, log)
}

// openDB initializes the SQLite database using configuration.
func openDB(cfg config.DBConfig, log *logger.Logger) (*sql.DB, error) {
	path := cfg.Path
	if path == "" {
		log.Infow("db.path not set in config; using default file", "default", "thermowatch.db")
		path = "thermowatch.db"
	}
	return db.InitDB(path)
}

// openCache connects to Redis when an address is configured. A failed
// connection is logged and the process runs without the mirror.
func openCache(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*cache.RedisLatest, *redis.Client) {
	if cfg.Addr == "" {
		return nil, nil
	}
	dialCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()

	rdb, err := cache.Connect(dialCtx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		log.Warnw("redis unavailable; latest reading will not be mirrored", "addr", cfg.Addr, "err", err)
		return nil, nil
	}
	log.Infow("redis connected", "addr", cfg.Addr, "key", cfg.Key)
	return cache.NewRedisLatest(rdb, cfg.Key, cfg.TTL), rdb
}

func brokerOptions(cfg config.MQTTConfig) broker.Options {
	return broker.Options{
		Broker:         cfg.Broker,
		ClientID:       cfg.ClientID,
		Username:       cfg.Username,
		Password:       cfg.Password,
		Topic:          cfg.Topic,
		QoS:            cfg.QoS,
		ConnectTimeout: cfg.ConnectTimeout,
		KeepAlive:      cfg.KeepAlive,
		Backoff: retry.ExponentialBackoff{
			MinInterval: cfg.Backoff.MinInterval,
			MaxInterval: cfg.Backoff.MaxInterval,
			NoJitter:    cfg.Backoff.NoJitter,
		},
	}
}

// newManager builds the broker session. Connection changes other than
// "connecting" are written to the audit log.
func newManager(cfg config.MQTTConfig, events repository.EventRepo, latest *cache.RedisLatest, log *logger.Logger) *broker.Manager {
	observer := func(ctx context.Context, st models.ConnectionState) {
		if st.Kind == models.StateConnecting {
			return
		}
		meta := map[string]any{"state": st.Kind, "broker": cfg.Broker}
		if st.Reason != "" {
			meta["reason"] = st.Reason
		}
		ev := models.AuditEvent{
			OccurredAt:  st.Since,
			Type:        models.EventConnection,
			Description: "broker " + string(st.Kind),
			Metadata:    meta,
		}
		if err := events.Append(context.WithoutCancel(ctx), ev); err != nil {
			log.Warnw("audit_write_failed", "type", models.EventConnection, "err", err)
		}
	}

	options := []broker.Option{broker.WithObserver(observer)}
	if latest != nil {
		options = append(options, broker.WithLatestSink(latest))
	}
	return broker.NewManager(brokerOptions(cfg), log, options...)
}

// startSimulator publishes synthetic readings from this process.
func startSimulator(ctx context.Context, bg *background, mqttCfg config.MQTTConfig, cfg config.SimulatorConfig, log *logger.Logger) {
	opts := brokerOptions(mqttCfg)
	opts.ClientID = cfg.ClientID

	client, err := broker.Dial(ctx, opts)
	if err != nil {
		log.Errorw("simulator disabled: broker unreachable", "broker", opts.Broker, "err", err)
		return
	}
	pub := broker.NewPublisher(client, opts.Topic, opts.QoS, opts.ConnectTimeout)
	model := simulator.NewModel(cfg.AmbientC, cfg.PeakC, cfg.NoiseC, cfg.SpikeEach, time.Now().UnixNano())

	bg.Go(func() {
		defer client.Disconnect(250)
		simulator.New(model, pub, log).Run(ctx, cfg.Tick)
	})
	log.Infow("simulator started", "topic", opts.Topic, "tick", cfg.Tick)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		log.Infow("http server listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful
// shutdown. It returns once the background goroutines have stopped, so the
// caller may close the database afterwards.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, bg *background, timeout time.Duration, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop the broker session, the evaluator and the simulator
	cancel()

	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}

	if !bg.Wait(timeout) {
		log.Errorw("background workers did not stop in time", "timeout", timeout)
	}
}
