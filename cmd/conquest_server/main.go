package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/mitchelldurbincs/conquest/internal/config"
	"github.com/mitchelldurbincs/conquest/internal/game/core"
	"github.com/mitchelldurbincs/conquest/internal/game/events"
	"github.com/mitchelldurbincs/conquest/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/conquest/internal/grpc/gameserver"
	"github.com/mitchelldurbincs/conquest/internal/manager"
	"github.com/mitchelldurbincs/conquest/internal/monitoring"
	"github.com/mitchelldurbincs/conquest/internal/render"
	"github.com/mitchelldurbincs/conquest/internal/store"
	"github.com/mitchelldurbincs/conquest/internal/web"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	port := flag.Int("port", -1, "The gRPC port (-1 to use config default)")
	host := flag.String("host", "", "The gRPC host (empty to use config default)")
	httpAddr := flag.String("http-addr", "", "HTTP listen address (empty to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	storageDriver := flag.String("storage", "", "Storage driver: memory, file or postgres (empty to use config default)")
	enableReflection := flag.Bool("enable-reflection", false, "Enable gRPC reflection for debugging")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if err := config.LoadEnvironmentConfig(os.Getenv("APP_ENV")); err != nil {
		log.Fatal().Err(err).Msg("Failed to load environment config")
	}
	if *storageDriver != "" {
		config.Set("storage.driver", *storageDriver)
		if err := config.Validate(config.Get()); err != nil {
			log.Fatal().Err(err).Msg("Invalid storage driver")
		}
	}

	cfg := config.Get()

	if *port == -1 {
		*port = cfg.Server.GRPC.Port
	}
	if *host == "" {
		*host = cfg.Server.GRPC.Host
	}
	if *httpAddr == "" {
		*httpAddr = cfg.Server.HTTP.Addr
	}
	if *logLevel == "" {
		*logLevel = cfg.Server.LogLevel
	}
	if !*enableReflection {
		*enableReflection = cfg.Server.GRPC.EnableReflection
	}

	setupLogging(*logLevel, cfg.Server.LogFormat)

	config.WatchConfig(func(c *config.Config) {
		zerolog.SetGlobalLevel(parseLevel(c.Server.LogLevel))
		log.Info().Str("log_level", c.Server.LogLevel).Str("file", config.ConfigFilePath()).Msg("Config reloaded")
	})

	world, err := core.LoadWorldFile(cfg.Game.MapFile)
	if err != nil {
		log.Fatal().Err(err).Str("map_file", cfg.Game.MapFile).Msg("Failed to load map")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, store.Config{
		Driver:      store.Driver(cfg.Storage.Driver),
		Dir:         cfg.Storage.Dir,
		PostgresURL: cfg.Storage.PostgresURL,
		MaxConns:    cfg.Storage.MaxConns,
	}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to open storage")
	}
	defer st.Close()

	monitor := monitoring.NewRuntimeMonitor(log.Logger, 0, 0)
	go monitor.Run(ctx)

	bus := events.NewEventBus(log.Logger)
	eventLog := subscribers.NewLoggerSubscriber("event-log", log.Logger, parseLevel(cfg.Server.EventLog.Level))
	eventLog.SetEventFilter(cfg.Server.EventLog.Types)
	eventLog.SetDevMode(cfg.Server.EventLog.DevMode)
	bus.Subscribe(eventLog)
	hub := web.NewHub(log.Logger)
	bus.Subscribe(hub)
	go hub.Run(ctx)
	log.Debug().
		Int("subscribers", bus.SubscriberCount()).
		Strs("event_log_types", cfg.Server.EventLog.Types).
		Bool("event_log_dev_mode", cfg.Server.EventLog.DevMode).
		Msg("Event bus ready")

	mgr, err := manager.New(manager.Config{
		World:         world,
		Store:         st,
		Logger:        log.Logger,
		EventBus:      bus,
		Seed:          cfg.Game.DiceSeed,
		FillMinTroops: cfg.Game.FillMinTroops,
		FillMaxTroops: cfg.Game.FillMaxTroops,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create game manager")
	}

	renderer, err := render.New(world, render.Options{
		Width:      cfg.Render.Width,
		Height:     cfg.Render.Height,
		Background: render.RGB(cfg.Render.Background),
		Neutral:    render.RGB(cfg.Render.Neutral),
		Legend:     true,
	}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create map renderer")
	}

	log.Info().
		Int("port", *port).
		Str("host", *host).
		Str("http_addr", *httpAddr).
		Str("storage", cfg.Storage.Driver).
		Int("territories", world.NumTerritories()).
		Msg("Starting conquest server")

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", *host, *port))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to listen")
	}

	grpcServer := grpc.NewServer(gameserver.ServerOptions(log.Logger)...)
	gameserver.RegisterGameServiceServer(grpcServer, gameserver.NewServer(mgr, log.Logger))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(gameserver.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	if *enableReflection {
		reflection.Register(grpcServer)
		log.Info().Msg("gRPC reflection enabled")
	}

	var httpServer *http.Server
	if *httpAddr != "" {
		httpServer = &http.Server{
			Addr:              *httpAddr,
			Handler:           web.NewServer(mgr, renderer, hub, log.Logger).WithMonitor(monitor).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Info().Str("address", *httpAddr).Msg("HTTP server listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("HTTP server failed")
			}
		}()
	}

	done := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		healthServer.SetServingStatus(gameserver.ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

		// Give ongoing requests time to complete
		time.Sleep(time.Duration(cfg.Server.GRPC.GracefulShutdownDelay) * time.Second)

		if httpServer != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("HTTP server shutdown")
			}
			shutdownCancel()
		}

		log.Info().Msg("Gracefully stopping gRPC server")
		grpcServer.GracefulStop()
		cancel()
		close(done)
	}()

	log.Info().Str("address", lis.Addr().String()).Msg("gRPC server listening")
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve")
		}
	}()

	<-done
	stats := mgr.Stats()
	log.Info().
		Int64("saves", stats.Saves).
		Int64("allocations", stats.Allocations).
		Int64("storage_errors", stats.Errors).
		Msg("Server shutdown complete")
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func setupLogging(level, format string) {
	zerolog.SetGlobalLevel(parseLevel(level))

	if os.Getenv("APP_ENV") == "production" || format == "json" {
		// JSON output for production
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
}
