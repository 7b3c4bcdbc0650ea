// Command softkill runs one mission from the command line, prints the
// outcome and optionally exports the full run as JSON.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/talgya/softkill/internal/config"
	"github.com/talgya/softkill/internal/engine"
	"github.com/talgya/softkill/internal/logging"
)

var version = "1.0.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("softkill", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "enable verbose logging")
	logFile := fs.String("log-file", "", "also write JSON logs to this file")
	cfgPath := fs.String("config", "", "path to a YAML configuration file")
	timesteps := fs.Int("timesteps", 60, "number of mission timesteps (ignored with -config)")
	noEthics := fs.Bool("no-ethics", false, "disable ethics-aware reward shaping (ignored with -config)")
	export := fs.String("export", "", "export the mission run to this JSON file")
	seed := fs.Int64("seed", 0, "random seed; 0 picks one")
	showVersion := fs.Bool("version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *showVersion {
		fmt.Fprintf(stdout, "SOFTKILL-9000 v%s\n", version)
		return 0
	}

	closer, err := logging.Setup(logging.Options{Verbose: *verbose, File: *logFile})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closer.Close()
	slog.Info("SOFTKILL-9000 CLI started", "version", version)

	var cfg config.Simulation
	if *cfgPath != "" {
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			slog.Error("failed to load configuration", "path", *cfgPath, "error", err)
			fmt.Fprintf(stderr, "\nError: %v\n", err)
			return 1
		}
		slog.Info("loaded configuration", "path", *cfgPath)
	} else {
		cfg = defaultConfig(*timesteps, !*noEthics)
	}
	if *seed != 0 {
		cfg.Mission.Seed = *seed
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "\nError: %v\n", err)
		return 1
	}

	slog.Info("starting mission simulation")
	start := time.Now()
	result, err := engine.NewSimulation(cfg.Specs(), cfg.Options()).Run()
	if err != nil {
		slog.Error("mission simulation failed", "error", err)
		fmt.Fprintf(stderr, "\nError: %v\n", err)
		return 1
	}
	printSummary(stdout, result, time.Since(start))

	if *export != "" {
		if err := engine.ExportJSON(result, *export); err != nil {
			slog.Error("export failed", "error", err)
			fmt.Fprintf(stderr, "\nError: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "\nResults exported to: %s\n", *export)
	}

	slog.Info("mission simulation completed successfully")
	return 0
}

// defaultConfig is the three-agent squad the CLI runs without -config.
func defaultConfig(timesteps int, ethics bool) config.Simulation {
	mission := config.DefaultMission()
	mission.NumTimesteps = timesteps
	mission.EthicsEnabled = ethics
	return config.Simulation{
		Agents: []config.Agent{
			config.NewAgent("Longsight", "Vyr'khai"),
			config.NewAgent("Lifebinder", "Lumenari"),
			config.NewAgent("Specter", "Zephryl"),
		},
		Mission:   mission,
		QLearning: config.DefaultQLearning(),
	}
}

func printSummary(w io.Writer, run *engine.MissionRun, elapsed time.Duration) {
	rule := strings.Repeat("=", 80)
	sc := run.Scenario

	fmt.Fprintf(w, "\n%s\nMISSION COMPLETE\n%s\n", rule, rule)
	fmt.Fprintf(w, "\nScenario: %s\n", sc.Narrative)
	fmt.Fprintf(w, "Location: %s // %s\n", sc.Galaxy, sc.Planet)
	fmt.Fprintf(w, "Environment: %s // %s\n", sc.Terrain, sc.Weather)

	fmt.Fprintf(w, "\nFinal Rewards:\n")
	for _, a := range run.Agents {
		fmt.Fprintf(w, "  %s: %8.2f\n", runewidth.FillRight(a.Role, 20), a.FinalReward)
	}

	decisions := int64(len(run.Agents) * run.Config.NumTimesteps)
	fmt.Fprintf(w, "\n%s decisions over %d ticks in %s (seed %s)\n",
		humanize.Comma(decisions),
		run.Config.NumTimesteps,
		elapsed.Round(time.Millisecond),
		humanize.Comma(run.Config.Seed),
	)
}
