package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/auranova/uebridge/internal/config"
	"github.com/auranova/uebridge/internal/handler"
	"github.com/auranova/uebridge/internal/model/agent"
	"github.com/auranova/uebridge/internal/model/envelope"
	"github.com/auranova/uebridge/internal/notifier"
	"github.com/auranova/uebridge/internal/relay"
	"github.com/auranova/uebridge/internal/service/ai"
	"github.com/auranova/uebridge/internal/service/codegen"
	"github.com/auranova/uebridge/internal/service/consciousness"
	"github.com/auranova/uebridge/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the engine relay, admin API and live-reload watcher",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aiSvc := newAIService(ctx, cfg.AI, log)

	var (
		roster     *consciousness.Collective
		collective relay.Collective
	)
	if cfg.Collective.Enabled {
		var mind consciousness.Mind
		if aiSvc != nil {
			mind = aiSvc
		}
		roster = consciousness.NewCollective(
			agent.NewMemoryStore(agent.Seed()),
			mind,
			consciousness.Config{MemoryLimit: cfg.Collective.Memory},
			log.Named("collective"),
		)
		collective = relayCollective(roster)
	} else {
		log.Info("collective disabled, decisions will default to wait")
	}

	registry := relay.NewRegistry(collective, log.Named("relay"))
	push := notifier.New(notifier.Config{Addr: cfg.Engine.Addr(), Timeout: cfg.Engine.DialTimeout}, log.Named("notifier"))

	var generator *codegen.Generator
	if aiSvc != nil {
		generator = codegen.New(aiSvc, codegen.Config{OutputDir: cfg.Codegen.OutputDir}, log.Named("codegen"))
	}

	server := relay.NewServer(registry, relay.Options{
		MaxMessageBytes: cfg.Relay.MaxMessageBytes,
		IdleTimeout:     cfg.Relay.IdleTimeout,
		WriteTimeout:    cfg.Relay.WriteTimeout,
		ShutdownTimeout: cfg.Relay.ShutdownTimeout,
	}, log.Named("relay"))
	if err := server.Start(cfg.Relay.Addr()); err != nil {
		log.Error("relay failed to start", zap.Error(err))
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		if err := server.Stop(); err != nil {
			log.Warn("relay shutdown incomplete", zap.Error(err))
		}
		return nil
	})

	if cfg.Admin.Enabled {
		router := handler.NewRouter(handler.Deps{
			Registry:        registry,
			Collective:      roster,
			Notifier:        push,
			Generator:       generator,
			MaxMessageBytes: cfg.Relay.MaxMessageBytes,
			Logger:          log.Named("http"),
		})
		srv := &http.Server{
			Addr:              cfg.Admin.Addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		}
		g.Go(func() error {
			log.Info("admin API listening", zap.String("addr", cfg.Admin.Addr))
			return runHTTP(gctx, srv, cfg.Relay.ShutdownTimeout)
		})
	}

	if cfg.Watch.Enabled() {
		w := newWatcher(cfg.Watch, log)
		g.Go(func() error {
			w.Run(gctx, liveReload(gctx, push))
			return nil
		})
	}

	log.Info("bridge running", zap.String("relay", server.Addr().String()), zap.String("engine", cfg.Engine.Addr()))
	if err := g.Wait(); err != nil {
		log.Error("bridge stopped with error", zap.Error(err))
		return err
	}
	log.Info("bridge stopped")
	return nil
}

func newAIService(ctx context.Context, cfg config.AIConfig, log *zap.Logger) *ai.Service {
	if !cfg.Enabled {
		log.Info("AI disabled, agents decide by mood and codegen is unavailable")
		return nil
	}
	svc, err := ai.NewService(ctx, cfg, log.Named("ai"))
	if err != nil {
		log.Warn("failed to initialize AI service, continuing without it", zap.Error(err))
		return nil
	}
	log.Info("AI service initialized", zap.String("model", cfg.Model), zap.String("base_url", cfg.BaseURL))
	return svc
}

// relayCollective exposes the collective through the relay's lookup contract.
func relayCollective(c *consciousness.Collective) relay.Collective {
	return relay.CollectiveFunc(func(name string) (relay.Agent, bool) {
		a, ok := c.Agent(name)
		if !ok {
			return nil, false
		}
		return a, true
	})
}

func newWatcher(cfg config.WatchConfig, log *zap.Logger) *watch.Watcher {
	return watch.New(watch.Config{
		Root:         cfg.Dir,
		Extensions:   cfg.Extensions,
		Interval:     cfg.Interval,
		ErrorBackoff: cfg.ErrorBackoff,
	}, log.Named("watch"))
}

// liveReload tells the engine editor to hot-reload a changed source file.
func liveReload(ctx context.Context, push *notifier.Notifier) watch.Callback {
	return func(path string) {
		push.Send(ctx, map[string]any{
			"command":   envelope.CommandLiveReload,
			"file":      path,
			"timestamp": envelope.Now(),
		})
	}
}

func runHTTP(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
