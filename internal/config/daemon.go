package config

import (
	"os"
	"strconv"
	"strings"
)

// Daemon holds softkilld settings, read from the environment.
type Daemon struct {
	DBPath      string   // SOFTKILL_DB
	HTTPPort    int      // SOFTKILL_HTTP_PORT
	GRPCAddr    string   // SOFTKILL_GRPC_ADDR; empty disables the gRPC service
	AdminKey    string   // SOFTKILL_ADMIN_KEY; empty leaves submissions open
	CORSOrigins []string // SOFTKILL_CORS_ORIGINS, comma separated
}

// DaemonFromEnv reads daemon settings, falling back to defaults.
func DaemonFromEnv() Daemon {
	d := Daemon{
		DBPath:   envOrDefault("SOFTKILL_DB", "data/softkill.db"),
		HTTPPort: envIntOrDefault("SOFTKILL_HTTP_PORT", 8000),
		GRPCAddr: envOrDefault("SOFTKILL_GRPC_ADDR", ":9000"),
		AdminKey: os.Getenv("SOFTKILL_ADMIN_KEY"),
	}
	for _, o := range strings.Split(os.Getenv("SOFTKILL_CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			d.CORSOrigins = append(d.CORSOrigins, o)
		}
	}
	return d
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}
