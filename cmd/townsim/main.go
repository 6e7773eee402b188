package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/towncore/townsim/internal/config"
	"github.com/towncore/townsim/internal/core/event"
	coresys "github.com/towncore/townsim/internal/core/system"
	"github.com/towncore/townsim/internal/data"
	"github.com/towncore/townsim/internal/persist"
	"github.com/towncore/townsim/internal/scripting"
	"github.com/towncore/townsim/internal/system"
	"github.com/towncore/townsim/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

// ── Simulation ────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/townsim.toml"
	if p := os.Getenv("TOWNSIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. World state
	bus := event.NewBus()
	ws := world.NewState(bus, log, world.WithStrictGenders(cfg.Simulation.StrictFamilyGenders))
	subscribeLifecycleLogs(bus, log)

	// 4. Mortality model
	printSection("scripts")
	lua, err := scripting.NewEngine(cfg.Simulation.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer lua.Close()
	printOK("mortality model ready")

	// 5. Seed population
	printSection("population")
	if cfg.Simulation.PopulationFile != "" {
		pop, err := data.LoadPopulation(cfg.Simulation.PopulationFile)
		if err != nil {
			return fmt.Errorf("population: %w", err)
		}
		if _, err := data.Seed(ws, pop, cfg.Simulation.StartTick); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	census := ws.Census()
	printStat("persons", census.Persons)
	printStat("families", census.Families)
	fmt.Println()

	// 6. Systems
	runner := coresys.NewRunner()
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewAgingSystem(ws, lua, log))
	runner.Register(system.NewFamilySystem(ws))
	runner.Register(system.NewCensusSystem(ws, log, cfg.Simulation.CensusInterval))

	var persistence *system.PersistenceSystem
	if cfg.Database.Enabled {
		printSection("database")
		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(dbCtx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		if err := persist.RunMigrations(dbCtx, db.Pool, log); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")

		snapshots := persist.NewSnapshotRepo(db)
		if _, err := snapshots.StartRun(dbCtx, cfg.Simulation.StartTick); err != nil {
			return fmt.Errorf("start run: %w", err)
		}
		printOK("persistence run started")
		fmt.Println()

		persistence = system.NewPersistenceSystem(ws, snapshots, log, cfg.Database.SaveInterval)
		runner.Register(persistence)
	}

	// 7. Tick loop
	clock := coresys.NewClock(runner, cfg.Simulation.StartTick)
	log.Info("simulation started",
		zap.Uint64("start_tick", clock.Tick()),
		zap.Duration("tick_rate", cfg.Simulation.TickRate),
		zap.Uint64("max_ticks", cfg.Simulation.MaxTicks))

	err = clock.Run(ctx, cfg.Simulation.TickRate, cfg.Simulation.MaxTicks)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("simulation: %w", err)
	}

	if persistence != nil {
		persistence.SaveNow(clock.Tick())
	}
	final := ws.Census()
	log.Info("simulation stopped",
		zap.Uint64("tick", clock.Tick()),
		zap.Int("alive", final.Alive),
		zap.Int("dead", final.Dead))
	return nil
}

func subscribeLifecycleLogs(bus *event.Bus, log *zap.Logger) {
	event.Subscribe(bus, func(ev event.PersonDied) {
		log.Info("person died",
			zap.Uint64("person", uint64(ev.PersonID)),
			zap.Uint64("age_years", ev.AgeDays/coresys.DaysPerYear),
			zap.Uint64("tick", ev.Tick))
	})
	event.Subscribe(bus, func(ev event.FamilyFormed) {
		log.Debug("family formed",
			zap.Uint64("family", uint64(ev.FamilyID)),
			zap.Uint64("father", uint64(ev.Father)),
			zap.Uint64("mother", uint64(ev.Mother)),
			zap.Int("children", len(ev.Children)))
	})
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
