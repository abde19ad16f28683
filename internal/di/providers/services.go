package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/genregraph/internal/logger"
	"github.com/listenupapp/genregraph/internal/service"
	"github.com/listenupapp/genregraph/internal/store"
)

// ProvideGenreService provides the genre service.
func ProvideGenreService(i do.Injector) (*service.GenreService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	authz := do.MustInvoke[*store.PermissionAuthorizer](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewGenreService(storeHandle, authz, log.With("service", "genre")), nil
}
