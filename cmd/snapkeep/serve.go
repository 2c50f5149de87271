package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/snapkeep/snapkeep/internal/archive"
	"github.com/snapkeep/snapkeep/internal/config"
	"github.com/snapkeep/snapkeep/internal/groupname"
	"github.com/snapkeep/snapkeep/internal/handlers"
	"github.com/snapkeep/snapkeep/internal/line"
	"github.com/snapkeep/snapkeep/internal/logger"
	"github.com/snapkeep/snapkeep/internal/notify"
	"github.com/snapkeep/snapkeep/internal/server"
	"github.com/snapkeep/snapkeep/internal/storage"
	"github.com/snapkeep/snapkeep/internal/storage/providers/gcs"
	"github.com/snapkeep/snapkeep/internal/storage/providers/local"
)

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideLineClient,
			provideGroupNameResolver,
			provideLocalStore,
			provideGCSStore,
			provideNotifier,
			provideArchiveService,
			provideServerHandler(handlers.NewHealthHandler),
			provideServerHandler(provideWebhookHandler),
			provideServerHandler(provideReadAPIHandler),
			fx.Annotate(provideServer, fx.ParamTags(``, ``, `group:"server_handlers"`)),
		),
		fx.Invoke(
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideConfig() (config.Config, error) {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideLineClient(log *slog.Logger, cfg config.Config) (*line.Client, error) {
	return line.NewClient(log, cfg.Line.ChannelToken)
}

func provideGroupNameResolver(log *slog.Logger, client *line.Client) *groupname.Resolver {
	return groupname.New(log, client)
}

func provideLocalStore(log *slog.Logger, cfg config.Config) (*local.Store, error) {
	return local.New(log, cfg.Storage.Root)
}

func provideGCSStore(lc fx.Lifecycle, log *slog.Logger, cfg config.Config) (*gcs.Store, error) {
	if !cfg.Mirrored() {
		return nil, nil
	}
	store, err := gcs.New(context.Background(), log, cfg.GCS.Bucket)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { return store.Close() }})
	return store, nil
}

func provideNotifier(log *slog.Logger, client *line.Client) *notify.Notifier {
	return notify.New(log, client)
}

func provideArchiveService(log *slog.Logger, client *line.Client, resolver *groupname.Resolver, localStore *local.Store, mirror *gcs.Store, notifier *notify.Notifier) *archive.Service {
	var mirrorStore storage.Store
	if mirror != nil {
		mirrorStore = mirror
	}
	return archive.NewService(log, client, resolver, localStore, mirrorStore, notifier)
}

func provideWebhookHandler(log *slog.Logger, cfg config.Config, svc *archive.Service) *handlers.WebhookHandler {
	return handlers.NewWebhookHandler(log, cfg.Line.ChannelSecret, svc)
}

func provideReadAPIHandler(log *slog.Logger, cfg config.Config, mirror *gcs.Store) *handlers.ReadAPIHandler {
	var store storage.Store
	if mirror != nil {
		store = mirror
	}
	return handlers.NewReadAPIHandler(log, cfg.API.Key, store)
}

func provideServer(cfg config.Config, log *slog.Logger, hs []server.Handler) *server.Server {
	return server.NewServer(cfg.Server.Addr, log, hs)
}

func startServer(lc fx.Lifecycle, log *slog.Logger, cfg config.Config, srv *server.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", slog.Any("error", err))
				}
			}()
			log.Info("server listening", slog.String("addr", cfg.Server.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
