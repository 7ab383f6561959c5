//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/shatter/internal/config"
	"github.com/zeusync/shatter/internal/core/observability/log"
	"github.com/zeusync/shatter/internal/server"
)

func InitializeServer(cfg config.Config) (*server.Server, func(), error) {
	wire.Build(
		ProvideLogger,
		wire.Bind(new(log.Log), new(*log.Logger)),
		ProvideCatalog,
		ProvideBus,
		ProvideServer,
	)
	return nil, nil, nil
}
