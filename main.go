package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wfunc/neonwhisper/config"
	"github.com/wfunc/neonwhisper/game"
	"github.com/wfunc/neonwhisper/logger"
	"github.com/wfunc/neonwhisper/models"
	"github.com/wfunc/neonwhisper/monitor"
	"github.com/wfunc/neonwhisper/persistence"
	"github.com/wfunc/neonwhisper/room"
	"github.com/wfunc/neonwhisper/server"
	"github.com/wfunc/neonwhisper/timer"
	"github.com/wfunc/neonwhisper/words"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	entries, err := loadWords(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("Failed to load words: %v", err)
	}
	corpus := words.NewCorpus(entries, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	logger.Log.Infow("word corpus ready", "source", cfg.Words.Source, "words", len(entries))

	mon := monitor.NewMonitor("neonwhisper")
	rooms := room.NewRoomManager(room.Options{
		CodeLength:    cfg.Game.CodeLength,
		Limits:        game.Limits{MinPlayers: cfg.Game.MinPlayers, MaxPlayers: cfg.Game.MaxPlayers},
		Words:         corpus,
		OnCountChange: mon.SetActiveRooms,
	})
	defer rooms.CloseAll()

	scheduler := timer.NewScheduler()
	defer scheduler.Stop()
	rooms.StartReaper(scheduler, cfg.Game.ReapInterval)

	gameServer := server.NewGameServer(cfg, rooms, mon)

	// Start Server
	if err := gameServer.Run(ctx); err != nil {
		logger.Log.Errorf("Server stopped with error: %v", err)
		return
	}
	logger.Log.Info("Server stopped.")
}

// loadWords reads the corpus from the configured source. Database sources are
// seeded from the built-in list when empty.
func loadWords(ctx context.Context, cfg *config.Config) ([]models.WordEntry, error) {
	builtin, err := words.Builtin()
	if err != nil {
		return nil, err
	}

	var store persistence.WordStore
	switch cfg.Words.Source {
	case "", "builtin":
		return builtin, nil
	case "gorm":
		store, err = persistence.NewGormWordStore(cfg.Database.Postgres.DSN())
	case "postgres":
		store, err = persistence.NewPostgresWordStore(ctx, cfg.Database.Postgres.DSN())
	default:
		return nil, fmt.Errorf("unknown words source %q", cfg.Words.Source)
	}
	if err != nil {
		return nil, err
	}
	defer store.Close()
	logger.Log.Info("Database connection successful.")

	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return persistence.LoadOrSeed(loadCtx, store, builtin)
}
