// Package injector wires the server's object graph.
package injector

import (
	"os"

	"github.com/pkg/errors"

	"github.com/zeusync/shatter/internal/config"
	"github.com/zeusync/shatter/internal/core/catalog"
	"github.com/zeusync/shatter/internal/core/events/bus"
	"github.com/zeusync/shatter/internal/core/observability/log"
	"github.com/zeusync/shatter/internal/server"
)

// ProvideLogger builds the process logger. The cleanup flushes it.
func ProvideLogger(cfg config.Config) (*log.Logger, func(), error) {
	logger, err := log.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideCatalog loads cfg.Levels, or the built-in levels when unset.
func ProvideCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if cfg.Levels == "" {
		return catalog.Builtin(), nil
	}
	f, err := os.Open(cfg.Levels)
	if err != nil {
		return nil, errors.Wrap(err, "open level catalog")
	}
	defer f.Close()
	return catalog.LoadYAML(f)
}

func ProvideBus() bus.EventBus {
	return bus.New()
}

func ProvideServer(cfg config.Config, levels *catalog.Catalog, eventBus bus.EventBus, logger log.Log) (*server.Server, error) {
	return server.NewServer(cfg.Server, cfg.Session, cfg.World, levels, eventBus, logger)
}
