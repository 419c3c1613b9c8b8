package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tmccall/arenad/internal/api"
	"github.com/tmccall/arenad/internal/factory"
	"github.com/tmccall/arenad/internal/model"
	redisstorage "github.com/tmccall/arenad/internal/storage/redis"
)

type serverFlags struct {
	host          string
	port          int
	storageType   string
	redisURL      string
	worldWidth    float64
	worldHeight   float64
	simRate       int
	broadcastRate int
	countdown     time.Duration
	gameTypes     []string
}

func main() {
	// Optional .env; absence is not an error
	_ = godotenv.Load()

	flags := serverFlags{}

	rootCmd := &cobra.Command{
		Use:   "arenad",
		Short: "Real-time multiplayer arena server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags)
		},
	}

	rootCmd.Flags().StringVar(&flags.host, "host", "", "listen host")
	rootCmd.Flags().IntVar(&flags.port, "port", 8080, "listen port")
	rootCmd.Flags().StringVar(&flags.storageType, "storage", envOr("STORAGE_TYPE", factory.StorageTypeMemory), "storage backend (memory or redis)")
	rootCmd.Flags().StringVar(&flags.redisURL, "redis-url", os.Getenv("REDIS_URL"), "redis connection URL")
	rootCmd.Flags().Float64Var(&flags.worldWidth, "world-width", 1080, "world width in units")
	rootCmd.Flags().Float64Var(&flags.worldHeight, "world-height", 1080, "world height in units")
	rootCmd.Flags().IntVar(&flags.simRate, "sim-rate", 30, "simulation ticks per second")
	rootCmd.Flags().IntVar(&flags.broadcastRate, "broadcast-rate", 30, "broadcast ticks per second")
	rootCmd.Flags().DurationVar(&flags.countdown, "countdown", 3*time.Second, "lobby ready-up countdown")
	rootCmd.Flags().StringSliceVar(&flags.gameTypes, "game-types", []string{string(factory.DefaultGameType)}, "game modes to host")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(flags serverFlags) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if flags.simRate <= 0 || flags.broadcastRate <= 0 {
		logger.Error("tick rates must be positive",
			slog.Int("sim_rate", flags.simRate),
			slog.Int("broadcast_rate", flags.broadcastRate),
		)
		os.Exit(1)
	}

	gameCfg := model.DefaultConfig()
	gameCfg.WorldWidth = flags.worldWidth
	gameCfg.WorldHeight = flags.worldHeight
	gameCfg.SimulationInterval = time.Second / time.Duration(flags.simRate)
	gameCfg.BroadcastInterval = time.Second / time.Duration(flags.broadcastRate)
	gameCfg.Countdown = flags.countdown

	cfg := factory.Config{
		Game:        gameCfg,
		Logger:      logger,
		StorageType: flags.storageType,
	}
	for _, gt := range flags.gameTypes {
		cfg.GameTypes = append(cfg.GameTypes, model.GameTypeID(gt))
	}
	if cfg.StorageType == factory.StorageTypeRedis {
		if flags.redisURL == "" {
			logger.Error("redis URL required when storage is redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = flags.redisURL
		cfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Hub:        app.Hub,
		Dispatcher: app.Dispatcher,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = flags.host
	serverConfig.Port = flags.port
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
