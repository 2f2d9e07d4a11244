// Package app assembles a loform.Service and its collaborators from binary
// configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/goliatone/go-loform"
	"github.com/goliatone/go-loform/internal/config"
	"github.com/goliatone/go-loform/internal/metrics"
	"github.com/goliatone/go-loform/internal/schemastore"
	"github.com/goliatone/go-loform/pkg/options"
	"github.com/goliatone/go-loform/pkg/schema"
)

// App bundles the service with the infrastructure that feeds it.
type App struct {
	Service *loform.Service
	Metrics *metrics.Recorder
	Logger  *slog.Logger

	// Codelists is the merged codelist table the service serves.
	Codelists options.Table

	cfg     config.Config
	dir     *schemastore.DirStore
	openapi *schemastore.OpenAPIStore
	cron    *cron.Cron

	stopOnce sync.Once
	cancel   context.CancelFunc
}

// New builds the schema store chain, codelist table and catalog described by
// cfg and wires them into a Service reporting to a fresh metrics recorder.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		Metrics: metrics.New(),
		Logger:  logger,
		cfg:     cfg,
	}

	var (
		chain schema.Chain
		table options.Table
	)

	if cfg.Schemas.Dir != "" {
		a.dir = schemastore.NewDirStore(os.DirFS(cfg.Schemas.Dir),
			schemastore.WithLogger(logger),
			schemastore.WithChangeHook(a.schemaChanged),
		)
		chain = append(chain, a.dir)
	}

	if cfg.Schemas.OpenAPIFile != "" {
		dir, name := filepath.Split(cfg.Schemas.OpenAPIFile)
		if dir == "" {
			dir = "."
		}
		spec, err := schemastore.LoadOpenAPIFile(ctx, os.DirFS(dir), name)
		if err != nil {
			return nil, fmt.Errorf("app: openapi schemas: %w", err)
		}
		a.openapi = spec
		chain = append(chain, spec)
		table = table.Merge(spec.Codelists())
	}

	if cfg.Schemas.BaseURL != "" {
		remote, err := schemastore.NewHTTPStore(cfg.Schemas.BaseURL, schemastore.WithTimeout(cfg.Schemas.Timeout))
		if err != nil {
			return nil, fmt.Errorf("app: schema url: %w", err)
		}
		chain = append(chain, remote)
	}

	if len(chain) == 0 {
		return nil, config.ErrNoSchemaSource
	}

	if cfg.Options.CodelistsDir != "" {
		lists, err := options.LoadTable(os.DirFS(cfg.Options.CodelistsDir))
		if err != nil {
			return nil, fmt.Errorf("app: codelists: %w", err)
		}
		table = table.Merge(lists)
	}

	serviceOpts := []loform.ServiceOption{
		loform.WithSchemaStore(chain),
		loform.WithTable(table),
		loform.WithLogger(logger),
		loform.WithDelay(cfg.Session.Debounce),
		loform.WithHooks(loform.Hooks{
			OnSchemaError:  a.Metrics.ObserveSchemaError,
			OnOptionLoad:   a.Metrics.ObserveOptionLoad,
			OnSnapshot:     a.Metrics.ObserveSnapshot,
			OnSessionOpen:  a.Metrics.SessionOpened,
			OnSessionClose: a.Metrics.SessionClosed,
		}),
	}

	if cfg.Options.CatalogURL != "" {
		catalog, err := options.NewHTTPCatalog(cfg.Options.CatalogURL,
			options.WithRequestTimeout(cfg.Options.CatalogTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("app: catalog: %w", err)
		}
		serviceOpts = append(serviceOpts, loform.WithCatalog(catalog))
	}

	a.Codelists = table
	a.Service = loform.New(serviceOpts...)
	logger.Debug("service assembled",
		slog.Int("schema_sources", len(chain)),
		slog.Int("codelists", table.Len()),
		slog.Bool("catalog", cfg.Options.CatalogURL != ""),
	)
	return a, nil
}

// ObjectTypes lists the object types the local schema sources define. Remote
// schema stores cannot be enumerated and contribute nothing.
func (a *App) ObjectTypes() ([]string, error) {
	var ids []string
	if a.dir != nil {
		dirIDs, err := a.dir.IDs()
		if err != nil {
			return nil, err
		}
		ids = append(ids, dirIDs...)
	}
	if a.openapi != nil {
		ids = append(ids, a.openapi.IDs()...)
	}

	seen := make(map[string]struct{})
	var types []string
	for _, id := range ids {
		category, typeName := schema.SplitKey(id)
		if category != schema.CategoryObject {
			continue
		}
		if _, ok := seen[typeName]; ok {
			continue
		}
		seen[typeName] = struct{}{}
		types = append(types, typeName)
	}
	sort.Strings(types)
	return types, nil
}

// Start launches the schema watcher and the option refresh schedule when
// they are configured. Both stop with ctx or Stop.
func (a *App) Start(ctx context.Context) error {
	ctx, a.cancel = context.WithCancel(ctx)

	if a.cfg.Schemas.Watch && a.dir != nil {
		if err := a.dir.Watch(ctx, a.cfg.Schemas.Dir); err != nil {
			a.cancel()
			return fmt.Errorf("app: watch schemas: %w", err)
		}
		a.Logger.Info("watching schemas", slog.String("dir", a.cfg.Schemas.Dir))
	}

	if spec := a.cfg.Options.RefreshSchedule; spec != "" {
		a.cron = cron.New()
		if _, err := a.cron.AddFunc(spec, a.refreshOptions); err != nil {
			a.cancel()
			return fmt.Errorf("app: refresh schedule %q: %w", spec, err)
		}
		a.cron.Start()
		a.Logger.Info("option refresh scheduled", slog.String("schedule", spec))
	}
	return nil
}

// Stop halts background work started by Start. It is safe to call more than
// once and before Start.
func (a *App) Stop() {
	a.stopOnce.Do(func() {
		if a.cancel != nil {
			a.cancel()
		}
		if a.cron != nil {
			<-a.cron.Stop().Done()
		}
	})
}

func (a *App) refreshOptions() {
	a.Service.Provider().Reset()
	a.Logger.Debug("option cache cleared")
}

func (a *App) schemaChanged(id string) {
	if a.Service == nil {
		return
	}
	category, typeName := schema.SplitKey(id)
	if category == schema.CategoryObject {
		a.Service.Invalidate(typeName)
	} else {
		// embedded schemas can appear in any object tree
		a.Service.Invalidate()
	}
	a.Logger.Info("schema changed", slog.String("schema", id))
}
