// Package api implements the HTTP surface of the LPG route optimizer.
package api

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"lpgroute/internal/config"
	"lpgroute/internal/store"
)

type Server struct {
	Store  store.Store
	Broker EventBroker
	Cfg    config.Config

	// limiter guards POST /v1/optimize; solves are CPU-bound.
	limiter *rate.Limiter
}

// NewServer wires the server from the environment. If DATABASE_URL is unset,
// uses the in-memory store; if REDIS_URL is unset, the in-memory broker.
func NewServer() (*Server, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("api: %w", err)
	}

	var s store.Store
	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn == "" {
		s = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(dsn)
		if err != nil {
			return nil, err
		}
		// Dev helper; disable against managed schemas
		if os.Getenv("DB_MIGRATE") != "false" {
			if err := sp.Migrate(context.Background()); err != nil {
				return nil, err
			}
		}
		s = sp
	}

	var broker EventBroker
	if os.Getenv("REDIS_URL") != "" {
		if rb, err := NewRedisBroker(); err == nil {
			broker = rb
		} else {
			broker = NewBroker()
		}
	} else {
		broker = NewBroker()
	}

	return &Server{
		Store:   s,
		Broker:  broker,
		Cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(envFloat("RATE_RPS", 2)), envInt("RATE_BURST", 4)),
	}, nil
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
