package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/tmccall/arenad/internal/broadcast"
	"github.com/tmccall/arenad/internal/dependencies/clock"
	"github.com/tmccall/arenad/internal/dependencies/random"
	"github.com/tmccall/arenad/internal/model"
	"github.com/tmccall/arenad/internal/registry"
	"github.com/tmccall/arenad/internal/services/lobby"
	"github.com/tmccall/arenad/internal/services/session"
	"github.com/tmccall/arenad/internal/storage"
	"github.com/tmccall/arenad/internal/storage/memory"
	redisstorage "github.com/tmccall/arenad/internal/storage/redis"
	"github.com/tmccall/arenad/internal/transport/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// DefaultGameType is bootstrapped when no game types are configured
const DefaultGameType = model.GameTypeID("arena")

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Transport
	Hub        *ws.Hub
	Adapter    *broadcast.Adapter
	Dispatcher *ws.Dispatcher

	// Services
	Registry        *registry.Registry
	SessionManager  *session.Manager
	LobbyController *lobby.Controller
}

// Config holds configuration for the application factory
type Config struct {
	// Game holds the world and simulation parameters
	// If zero value, defaults to model.DefaultConfig()
	Game model.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// GameTypes lists the game modes to bootstrap open rooms for
	// If empty, defaults to DefaultGameType
	GameTypes []model.GameTypeID
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	gameCfg := cfg.Game
	if gameCfg.WorldWidth == 0 {
		gameCfg = model.DefaultConfig()
	}
	if gameCfg.SimulationInterval <= 0 || gameCfg.BroadcastInterval <= 0 {
		return nil, errors.New("tick intervals must be positive")
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()
	rnd := random.New()
	hub := ws.NewHub(logger)

	app := newWithDependencies(store, hub, gameCfg, clk, rnd, logger)
	app.Hub = hub
	hub.SetDisconnectHandler(app.Dispatcher.HandleDisconnect)

	// Every configured game type starts with one open room
	gameTypes := cfg.GameTypes
	if len(gameTypes) == 0 {
		gameTypes = []model.GameTypeID{DefaultGameType}
	}
	for _, gt := range gameTypes {
		app.Registry.Sync(context.Background(), gt)
	}
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for
// testing with mocks and a fake publisher)
func newWithDependencies(
	store storage.Storage,
	pub broadcast.Publisher,
	gameCfg model.Config,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *App {
	adapter := broadcast.NewAdapter(pub)
	reg := registry.New(store, adapter, clk, rnd, logger)
	sessions := session.NewManager(gameCfg, adapter, clk, rnd, logger)
	lobbyController := lobby.NewController(store, reg, sessions, adapter, clk, gameCfg, logger)
	dispatcher := ws.NewDispatcher(lobbyController, sessions, adapter, logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		Adapter:         adapter,
		Dispatcher:      dispatcher,
		Registry:        reg,
		SessionManager:  sessions,
		LobbyController: lobbyController,
	}
}
