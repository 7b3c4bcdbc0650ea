// Command missionctl submits a mission to a running softkilld, waits for it
// to finish and prints the final rewards.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/talgya/softkill/internal/client"
	"github.com/talgya/softkill/internal/config"
	"github.com/talgya/softkill/internal/engine"
	"github.com/talgya/softkill/internal/logging"
	"github.com/talgya/softkill/internal/rpc"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("missionctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "enable verbose logging")
	apiURL := fs.String("api", envOrDefault("SOFTKILL_API_URL", "http://localhost:8000"), "softkilld HTTP base URL")
	grpcAddr := fs.String("grpc", "", "use the gRPC service at this address instead of HTTP")
	adminKey := fs.String("key", os.Getenv("SOFTKILL_ADMIN_KEY"), "admin bearer token")
	cfgPath := fs.String("config", "", "YAML configuration; default squad when empty")
	readyWait := fs.Duration("ready-timeout", 2*time.Minute, "how long to wait for the daemon")
	poll := fs.Duration("poll", time.Second, "status poll interval")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	closer, err := logging.Setup(logging.Options{Verbose: *verbose})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closer.Close()

	var cfg *config.Simulation
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		cfg = &loaded
	}

	var result *engine.MissionRun
	var id string
	if *grpcAddr != "" {
		result, id, err = viaGRPC(ctx, *grpcAddr, cfg)
	} else {
		result, id, err = viaHTTP(ctx, client.New(*apiURL, *adminKey), cfg, *readyWait, *poll)
	}
	if err != nil {
		slog.Error("mission failed", "simulation", id, "error", err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	printRewards(stdout, id, result)
	return 0
}

func viaHTTP(ctx context.Context, c *client.Client, cfg *config.Simulation, readyWait, poll time.Duration) (*engine.MissionRun, string, error) {
	readyCtx, cancel := context.WithTimeout(ctx, readyWait)
	defer cancel()
	slog.Info("waiting for softkilld API...", "url", c.BaseURL)
	if err := c.WaitReady(readyCtx); err != nil {
		return nil, "", err
	}

	sub, err := c.Submit(ctx, cfg)
	if err != nil {
		return nil, "", err
	}
	slog.Info("simulation submitted", "simulation", sub.ID)

	sim, err := c.Wait(ctx, sub.ID, poll)
	if err != nil {
		return nil, sub.ID, err
	}
	if sim.Status != "completed" || sim.Result == nil {
		return nil, sub.ID, fmt.Errorf("simulation %s %s: %s", sim.ID, sim.Status, sim.Error)
	}
	if sim.CompletedAt != nil {
		slog.Info("simulation finished",
			"simulation", sim.ID,
			"took", sim.CompletedAt.Sub(sim.CreatedAt).Round(time.Millisecond),
		)
	}
	return sim.Result, sim.ID, nil
}

func viaGRPC(ctx context.Context, addr string, cfg *config.Simulation) (*engine.MissionRun, string, error) {
	c, err := rpc.NewClient(addr)
	if err != nil {
		return nil, "", err
	}
	defer c.Close()

	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	slog.Info("running mission over gRPC", "addr", addr)
	return c.RunMission(ctx, *cfg)
}

func printRewards(w io.Writer, id string, run *engine.MissionRun) {
	fmt.Fprintf(w, "Simulation %s\n", id)
	fmt.Fprintf(w, "%s // %s // %s\n", run.Scenario.Planet, run.Scenario.Terrain, run.Scenario.Weather)
	fmt.Fprintln(w, "Final Rewards:")
	for _, a := range run.Agents {
		fmt.Fprintf(w, "  %s: %8.2f\n", runewidth.FillRight(a.Role, 20), a.FinalReward)
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
