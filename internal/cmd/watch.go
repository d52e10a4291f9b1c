package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/auranova/uebridge/internal/notifier"
)

var watchDir string

var errNoWatchDir = errors.New("no directory to watch: pass --dir or set WATCH_DIR")

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a source tree and push live_reload to the engine on change",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchDir, "dir", "", "Source directory (default: WATCH_DIR)")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if watchDir != "" {
		cfg.Watch.Dir = watchDir
	}
	if !cfg.Watch.Enabled() {
		return errNoWatchDir
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	push := notifier.New(notifier.Config{Addr: cfg.Engine.Addr(), Timeout: cfg.Engine.DialTimeout}, log.Named("notifier"))
	w := newWatcher(cfg.Watch, log)
	log.Info("live reload running", zap.String("engine", cfg.Engine.Addr()))
	w.Run(ctx, liveReload(ctx, push))
	return nil
}
