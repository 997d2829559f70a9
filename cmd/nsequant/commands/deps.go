package commands

import (
	"fmt"
	"os"

	"github.com/harshul/nsequant/internal/store"
	"github.com/harshul/nsequant/internal/strategyconfig"
	"github.com/harshul/nsequant/pkg/config"
	"github.com/harshul/nsequant/pkg/database"
	"github.com/harshul/nsequant/pkg/logger"
	"github.com/harshul/nsequant/pkg/redis"
)

// deps bundles the shared wiring every command needs.
type deps struct {
	cfg        *config.Config
	log        *logger.Logger
	db         *database.DB
	cache      *redis.Client
	marketRepo *store.MarketRepository
	runRepo    *store.RunRepository
	strategy   *strategyconfig.Config
}

// initDeps loads config, connects to the database and cache, and builds
// the repositories.
func initDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	cache, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	strategy, err := loadStrategy(cfg, log)
	if err != nil {
		cache.Close()
		db.Close()
		return nil, err
	}

	return &deps{
		cfg:        cfg,
		log:        log,
		db:         db,
		cache:      cache,
		marketRepo: store.NewMarketRepository(db.Pool, cfg.Database.QueryRate, redis.NewCache(cache, "nsequant")),
		runRepo:    store.NewRunRepository(db.Pool),
		strategy:   strategy,
	}, nil
}

// loadStrategy reads the strategy YAML. The --strategy flag wins over
// STRATEGY_FILE; a missing default file falls back to built-in parameters.
func loadStrategy(cfg *config.Config, log *logger.Logger) (*strategyconfig.Config, error) {
	path := cfg.StrategyFile
	if strategyFile != "" {
		path = strategyFile
	}

	strategy, raw, err := strategyconfig.Load(path)
	if err != nil {
		if strategyFile == "" && os.IsNotExist(err) {
			log.WithField("file", path).Debug("Strategy file not found, using defaults")
			return strategyconfig.Default(), nil
		}
		return nil, fmt.Errorf("load strategy %s: %w", path, err)
	}

	snap, err := strategyconfig.NewStrategySnapshot(strategy, raw)
	if err != nil {
		return nil, fmt.Errorf("snapshot strategy %s: %w", path, err)
	}
	log.WithFields(map[string]interface{}{
		"strategy":    snap.StrategyID,
		"config_hash": snap.ConfigHash,
	}).Info("Strategy loaded")

	for _, w := range strategyconfig.Warn(strategy) {
		log.WithFields(map[string]interface{}{
			"code":    w.Code,
			"message": w.Message,
		}).Warn("Strategy warning")
	}

	return strategy, nil
}

func (d *deps) Close() {
	d.cache.Close()
	d.db.Close()
}
