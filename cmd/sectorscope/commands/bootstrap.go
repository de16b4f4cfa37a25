package commands

import (
	"context"
	"fmt"

	"github.com/wrenlab/sectorscope/internal/quality"
	"github.com/wrenlab/sectorscope/internal/scoring"
	"github.com/wrenlab/sectorscope/internal/sectors"
	"github.com/wrenlab/sectorscope/internal/sources/blsapi"
	"github.com/wrenlab/sectorscope/internal/sources/damodaran"
	"github.com/wrenlab/sectorscope/internal/sources/fredapi"
	"github.com/wrenlab/sectorscope/internal/sources/marketdata"
	"github.com/wrenlab/sectorscope/pkg/cache"
	"github.com/wrenlab/sectorscope/pkg/config"
	"github.com/wrenlab/sectorscope/pkg/logger"
)

// app wires the shared pipeline dependencies used by every command.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	store   cache.Store
	sources scoring.Sources
	engine  *scoring.Engine
	monitor *quality.Monitor

	closers []func() error
}

// bootstrap loads config and builds the full fetch/score pipeline.
func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	a := &app{cfg: cfg, log: log}

	store, err := newStore(cfg, log, a)
	if err != nil {
		return nil, err
	}
	a.store = store

	ttl := cfg.Cache.TTL
	md := marketdata.NewClient(cfg.MarketData, log)

	a.sources = scoring.Sources{
		Prices:     marketdata.NewPrices(md, store, ttl, log),
		Valuations: marketdata.NewValuations(md, store, ttl, log),
		Employment: blsapi.New(cfg.BLS, store, ttl, log),
		Innovation: damodaran.New(cfg.Damodaran, store, ttl, log),
		Rates:      fredapi.New(cfg.FRED, store, ttl, log),
	}

	a.engine = scoring.New(a.sources, sectors.All(), log)
	a.monitor = quality.New(log, a.sources.Probers()...)

	return a, nil
}

// newStore builds the configured cache backend.
func newStore(cfg *config.Config, log *logger.Logger, a *app) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewMemoryStore(), nil
	case "redis":
		store, err := cache.NewRedisStore(context.Background(), cfg.Redis, "sectorscope", log)
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		store, err := cache.NewFileStore(cfg.Cache.Dir, log)
		if err != nil {
			return nil, fmt.Errorf("open file cache: %w", err)
		}
		return store, nil
	}
}

// close releases backend connections in reverse order.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.WithError(err).Warn("Close failed during shutdown")
		}
	}
}
