// Command softkilld serves missions over HTTP and gRPC, keeping every job in
// a SQLite store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"

	"github.com/talgya/softkill/internal/api"
	"github.com/talgya/softkill/internal/config"
	"github.com/talgya/softkill/internal/logging"
	"github.com/talgya/softkill/internal/persistence"
	"github.com/talgya/softkill/internal/rpc"
)

var version = "1.0.0"

const drainTimeout = 2 * time.Minute

func main() {
	verbose := flag.Bool("v", false, "enable verbose logging")
	logFile := flag.String("log-file", "", "also write JSON logs to this file")
	envFile := flag.String("env", ".env", "optional dotenv file")
	flag.Parse()

	closer, err := logging.Setup(logging.Options{Verbose: *verbose, File: *logFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	// A missing .env is normal; the environment may already be set.
	if err := godotenv.Load(*envFile); err == nil {
		slog.Info("loaded environment file", "path", *envFile)
	}
	cfg := config.DaemonFromEnv()

	slog.Info("SOFTKILL-9000 daemon starting", "version", version)

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	recoverStore(db, version)

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("SOFTKILL_ADMIN_KEY not set, submissions and deletes are open")
	}
	apiServer := &api.Server{
		DB:          db,
		Port:        cfg.HTTPPort,
		Version:     version,
		AdminKey:    cfg.AdminKey,
		CORSOrigins: cfg.CORSOrigins,
	}
	httpSrv := apiServer.Start()

	// ── gRPC ──────────────────────────────────────────────────────────
	var grpcSrv *grpc.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			slog.Error("failed to listen for gRPC", "addr", cfg.GRPCAddr, "error", err)
			os.Exit(1)
		}
		grpcSrv = grpc.NewServer()
		rpc.RegisterMissionServiceServer(grpcSrv, &rpc.Service{DB: db})
		slog.Info("gRPC service starting", "addr", cfg.GRPCAddr, "service", rpc.ServiceName)
		go func() {
			if err := grpcSrv.Serve(lis); err != nil {
				slog.Error("gRPC server error", "error", err)
			}
		}()
	}

	fmt.Printf("API: http://localhost:%d/api/health\n", cfg.HTTPPort)
	fmt.Println("Serving missions... (Ctrl+C to stop)")

	// ── Shutdown ──────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("HTTP shutdown", "error", err)
	}
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	if err := apiServer.Drain(ctx); err != nil {
		slog.Warn("simulations still running at exit", "error", err)
	}

	fmt.Println("Daemon stopped.")
}

// recoverStore fails jobs a previous process left running and records this
// start. Failures are logged; the daemon serves either way.
func recoverStore(db *persistence.DB, version string) {
	if n, err := db.FailInterrupted(); err != nil {
		slog.Error("failed to recover interrupted simulations", "error", err)
	} else if n == 0 {
		slog.Debug("no interrupted simulations")
	}
	if last, err := db.GetMeta("started_at"); err == nil {
		slog.Info("previous start", "at", last)
	}
	if err := db.SaveMeta("started_at", time.Now().UTC().Format(time.RFC3339)); err != nil {
		slog.Warn("failed to record start time", "error", err)
	}
	if err := db.SaveMeta("version", version); err != nil {
		slog.Warn("failed to record version", "error", err)
	}
}
