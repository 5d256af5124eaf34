package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/regionsweeper/internal/config"
	"github.com/vancomm/regionsweeper/internal/database"
	"github.com/vancomm/regionsweeper/internal/kvstore"
	"github.com/vancomm/regionsweeper/internal/middleware"
	"github.com/vancomm/regionsweeper/internal/regions"
	"github.com/vancomm/regionsweeper/internal/repository"
	"github.com/vancomm/regionsweeper/internal/session"
)

type App struct {
	logger     *slog.Logger
	router     *mux.Router
	store      session.Store
	catalog    *regions.Catalog
	tokens     *config.Tokens
	ws         *config.WebSocket
	migrations fs.FS
	closers    []func()
}

func New(logger *slog.Logger, migrations fs.FS) *App {
	return &App{
		logger:     logger,
		router:     mux.NewRouter(),
		migrations: migrations,
	}
}

func loadCatalog() (*regions.Catalog, error) {
	path, ok := config.RegionsPath()
	if !ok {
		return regions.Default(), nil
	}
	return regions.Load(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

func (a *App) openStore(ctx context.Context) (session.Store, error) {
	backend, path := config.Storage()
	a.logger.Info("opening session store", slog.String("backend", string(backend)))

	switch backend {
	case config.SQLite:
		store, err := kvstore.Open(path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { store.Close() })
		return store, nil
	default:
		pool, migrator, err := database.ConnectAndMigrate(ctx, a.migrations)
		if err != nil {
			return nil, err
		}
		if version, dirty, err := migrator.Version(); err == nil {
			a.logger.Info("database migrated", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
		}
		migrator.Close()
		a.closers = append(a.closers, pool.Close)
		return repository.New(pool), nil
	}
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) Start(ctx context.Context) error {
	defer a.Close()

	catalog, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("unable to load regions: %w", err)
	}
	a.catalog = catalog
	a.logger.Info("loaded regions", slog.Int("count", catalog.Len()), slog.String("start", catalog.Start))

	tokens, err := config.NewTokens()
	if err != nil {
		return fmt.Errorf("unable to read session token config: %w", err)
	}
	a.tokens = tokens
	a.ws = config.NewWebSocket()

	store, err := a.openStore(ctx)
	if err != nil {
		return fmt.Errorf("unable to open session store: %w", err)
	}
	a.store = store

	a.loadRoutes()

	addr := config.Port()
	server := &http.Server{
		Addr: addr,
		Handler: middleware.Wrap(
			a.router,
			middleware.BearerToken(),
			middleware.Recover(a.logger),
			middleware.Logging(a.logger),
			middleware.Cors(),
		),
		ReadTimeout: time.Second * 15,
		IdleTimeout: time.Second * 60,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server listening", slog.String("addr", addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("unable to listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), time.Second*30)
		defer cancel()
		return server.Shutdown(sCtx)
	})

	return g.Wait()
}
