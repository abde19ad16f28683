// Package di provides dependency injection configuration for the genre graph tools.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/genregraph/internal/config"
	"github.com/listenupapp/genregraph/internal/di/providers"
	"github.com/listenupapp/genregraph/internal/logger"
	"github.com/listenupapp/genregraph/internal/service"
	"github.com/listenupapp/genregraph/internal/store"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideAuthorizer)

	// Business services
	do.Provide(injector, providers.ProvideGenreService)

	return injector
}

// Bootstrap initializes all services.
// This triggers lazy initialization so configuration and store errors surface at startup.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*store.PermissionAuthorizer](injector)
	_ = do.MustInvoke[*service.GenreService](injector)
	return nil
}
