// cmd/worker/startup.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"writespace-backend/pkg/container"
	"writespace-backend/pkg/logger"

	"github.com/rs/zerolog/log"
)

// startServices performs health checks and starts the health endpoint
func startServices(c *container.Container) error {
	logger.Info("WriteSpace worker starting", map[string]interface{}{
		"env":         c.Config.App.Environment,
		"redis":       c.Config.RedisAddr(),
		"health_port": c.Config.Worker.HealthPort,
	})

	checks := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"Redis", c.Cache.Ping},
		{"Database", c.DB.HealthCheck},
	}

	for _, check := range checks {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := check.fn(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("%s failed: %w", check.name, err)
		}
		log.Info().Str("check", check.name).Msg("[Startup] OK")
	}

	go startHealthCheckServer(c)
	return nil
}

// startHealthCheckServer serves /health and /ready for container probes
func startHealthCheckServer(c *container.Container) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, `{"status":"UP","service":"writespace-worker"}`)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := c.Cache.Ping(r.Context()); err != nil {
			logger.Warn("[Health] Redis not ready", err)
			writeStatus(w, http.StatusServiceUnavailable, `{"status":"NOT_READY"}`)
			return
		}
		writeStatus(w, http.StatusOK, `{"status":"READY"}`)
	})

	addr := ":" + c.Config.Worker.HealthPort
	log.Info().Str("addr", addr).Msg("[Health] Starting health check server")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("[Health] Failed to start")
	}
}

func writeStatus(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}
