package providers

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/samber/do/v2"

	"github.com/listenupapp/genregraph/internal/config"
	"github.com/listenupapp/genregraph/internal/logger"
	"github.com/listenupapp/genregraph/internal/store"
	"github.com/listenupapp/genregraph/internal/store/sqlite"
)

// StoreHandle wraps the configured store backend with shutdown capability.
type StoreHandle struct {
	store.Backend
	Path string
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the backend selected by STORE_BACKEND under DATA_PATH.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Store.DataPath, 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	path := cfg.StorePath()
	var (
		backend store.Backend
		err     error
	)
	switch cfg.Store.Backend {
	case config.BackendBadger:
		backend, err = store.New(path, log.Logger)
	default:
		backend, err = sqlite.Open(path, log.Logger)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}

	log.Info("Database initialized", "backend", cfg.Store.Backend, "path", path)

	return &StoreHandle{Backend: backend, Path: path}, nil
}

// ProvideAuthorizer provides the permission checker backed by the store.
func ProvideAuthorizer(i do.Injector) (*store.PermissionAuthorizer, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return store.NewPermissionAuthorizer(storeHandle), nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}
