// Package providers contains dependency injection providers for the genre graph.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/genregraph/internal/config"
	"github.com/listenupapp/genregraph/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Debug("Logger configured",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"store_backend", cfg.Store.Backend,
		"data_path", cfg.Store.DataPath,
	)

	return log, nil
}
