// Package main provides the duel binary: it loads a scenario, runs the
// encounter to completion and narrates it on stdout.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/duel/internal/config"
	"github.com/cory-johannsen/duel/internal/game/ai"
	"github.com/cory-johannsen/duel/internal/game/combat"
	"github.com/cory-johannsen/duel/internal/game/scenario"
	"github.com/cory-johannsen/duel/internal/narration"
	"github.com/cory-johannsen/duel/internal/observability"
	"github.com/cory-johannsen/duel/internal/scripting"
)

// Process exit codes.
const (
	exitOK         = 0
	exitPlayerWins = 0
	exitEnemyWins  = 1
	exitError      = 2
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file; empty = built-in defaults")
	scenarioRef := flag.String("scenario", "", "scenario YAML path, built-in name ("+fmt.Sprint(scenario.BuiltinNames())+"), or a directory to list; overrides config")
	scriptRoot := flag.String("scripts", "", "directory of Lua strike hooks; overrides config")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Printf("loading config: %v", err)
			os.Exit(exitError)
		}
		cfg = loaded
	}
	if *scenarioRef != "" {
		cfg.Encounter.Scenario = *scenarioRef
	}
	if *scriptRoot != "" {
		cfg.Scripting.Root = *scriptRoot
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Printf("initializing logger: %v", err)
		os.Exit(exitError)
	}

	code := run(cfg, os.Stdout, logger)
	_ = logger.Sync()
	os.Exit(code)
}

// run executes one encounter described by cfg, narrating to out. When the
// scenario reference is a directory, run lists the scenarios in it instead.
//
// Postcondition: Returns exitPlayerWins, exitEnemyWins, exitOK, or exitError.
func run(cfg config.Config, out io.Writer, logger *zap.Logger) int {
	start := time.Now()

	if info, err := os.Stat(cfg.Encounter.Scenario); err == nil && info.IsDir() {
		return listScenarios(cfg.Encounter.Scenario, out, logger)
	}

	def, err := scenario.Resolve(cfg.Encounter.Scenario)
	if err != nil {
		logger.Error("loading scenario", zap.String("scenario", cfg.Encounter.Scenario), zap.Error(err))
		return exitError
	}

	var hooks combat.DamageHook
	if cfg.Scripting.Root != "" {
		mgr := scripting.NewManager(cfg.Scripting.InstructionLimit, logger)
		defer mgr.Close()
		if err := mgr.Load(cfg.Scripting.Root); err != nil {
			logger.Error("loading strike scripts", zap.Error(err))
			return exitError
		}
		hooks = mgr
	} else if def.UsesScripts() {
		logger.Error("scenario uses scripted strikes but scripting.root is empty",
			zap.String("scenario", def.ID),
		)
		return exitError
	}

	var sink combat.Sink = narration.NewWriterSink(out)
	if cfg.Narration.Color {
		sink = narration.NewColorSink(out, nil)
	}

	enc, err := def.Build(sink, ai.NewChooser(logger), hooks)
	if err != nil {
		logger.Error("building encounter", zap.Error(err))
		return exitError
	}
	encLogger := observability.ForEncounter(logger, enc.ID)
	if mgr, ok := hooks.(*scripting.Manager); ok {
		mgr.SetLogger(encLogger)
	}
	encLogger.Info("scenario loaded",
		zap.String("scenario", def.ID),
		zap.Int("loadout", len(enc.Player.Loadout())),
		zap.Duration("elapsed", time.Since(start)),
	)

	res, err := combat.Run(enc,
		combat.WithLogger(encLogger),
		combat.WithMaxRounds(cfg.Encounter.MaxRounds),
	)
	if err != nil {
		encLogger.Error("encounter aborted", zap.Error(err))
		return exitError
	}

	encLogger.Info("encounter complete",
		zap.String("outcome", res.Outcome.String()),
		zap.Int("rounds", res.Rounds),
		zap.Int("player_vitality", res.PlayerVitality),
		zap.Int("adversary_vitality", res.AdversaryVitality),
		zap.Duration("elapsed", time.Since(start)),
	)
	if res.Outcome == combat.PlayerWins {
		return exitPlayerWins
	}
	return exitEnemyWins
}

// listScenarios writes one "id<TAB>description" line per scenario file in dir.
func listScenarios(dir string, out io.Writer, logger *zap.Logger) int {
	defs, err := scenario.LoadDir(dir)
	if err != nil {
		logger.Error("listing scenarios", zap.String("dir", dir), zap.Error(err))
		return exitError
	}
	for _, d := range defs {
		fmt.Fprintf(out, "%s\t%s\n", d.ID, d.Description)
	}
	logger.Info("scenarios listed", zap.String("dir", dir), zap.Int("count", len(defs)))
	return exitOK
}
