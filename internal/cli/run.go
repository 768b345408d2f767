package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/stigoleg/stayactive/internal/config"
	"github.com/stigoleg/stayactive/internal/keepalive"
	"github.com/stigoleg/stayactive/internal/logging"
	"github.com/stigoleg/stayactive/internal/motion"
	"github.com/stigoleg/stayactive/internal/platform"
	"github.com/stigoleg/stayactive/internal/topology"
	"github.com/stigoleg/stayactive/internal/ui"
	"github.com/stigoleg/stayactive/internal/xconn"
)

func loadConfig(cmd *cobra.Command, v *viper.Viper) (*config.Config, error) {
	var path string
	if f := cmd.Flag(config.FlagConfig); f != nil {
		path = f.Value.String()
	}
	return config.Load(v, path)
}

func runDaemon(cmd *cobra.Command, v *viper.Viper, deps Deps) error {
	cfg, err := loadConfig(cmd, v)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals()...)
	defer stop()

	dashboard := cfg.TUI && isTerminal(cmd.OutOrStdout())
	var logOut io.Writer = cmd.OutOrStdout()
	if dashboard {
		f, err := openLogFile()
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger := logging.New(logOut, cfg.LogLevel)
	if cfg.TUI && !dashboard {
		logger.Warn("stdout is not a terminal, dashboard disabled")
	}
	if cfg.File != "" {
		logger.Debug("config loaded", "file", cfg.File)
	}

	xconn.SetLogger(logger.WithPrefix("xgb"))
	defer xconn.SetLogger(nil)

	sess := deps.Session()
	logger.Debug("session detected", "type", sess.Type, "desktop", sess.Desktop, "display", sess.Display)

	backend, err := deps.SelectBackend(sess, cfg, logger.WithPrefix("backend"))
	if err != nil {
		return err
	}

	cleanup := keepalive.NewCleanupManager(keepalive.DefaultCleanupTimeout, logger.WithPrefix("cleanup"))
	cleanup.RegisterFunc(backend.Name()+" backend", backend.Close)
	defer cleanup.Execute()

	resolver := deps.NewResolver(sess, cfg, logger.WithPrefix("topology"))
	monitorInfo := ""
	if backend.SupportsAbsolutePositioning() {
		monitorInfo = describeTopology(ctx, resolver, logger)
	}

	moverOpts := []motion.Option{motion.WithLogger(logger.WithPrefix("motion"))}
	if deps.Sleep != nil {
		moverOpts = append(moverOpts, motion.WithSleeper(deps.Sleep))
	}
	mover := motion.NewMover(backend, resolver, moverOpts...)

	kcfg := keepalive.Config{
		Mode:     cfg.Mode(),
		Interval: cfg.Interval,
		Sleep:    deps.Sleep,
		Logger:   logger,
	}

	if !dashboard {
		return keepalive.New(backend, mover, kcfg).Run(ctx)
	}
	return runDashboard(ctx, backend, mover, kcfg, monitorInfo)
}

func runDashboard(ctx context.Context, backend platform.Backend, mover *motion.Mover, kcfg keepalive.Config, monitors string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var keeper *keepalive.Keeper
	model := ui.NewModel(ui.Info{
		Backend:  backend.Name(),
		Mode:     kcfg.Mode,
		Interval: kcfg.Interval,
		Monitors: monitors,
	}, func() keepalive.Stats { return keeper.Stats() }, cancel)

	dash := ui.NewDashboard(ctx, model, nil, nil)
	kcfg.OnAction = dash.Notify
	keeper = keepalive.New(backend, mover, kcfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- keeper.Run(ctx)
		dash.Stopped()
	}()

	uiErr := dash.Run()
	cancel()
	return errors.Join(uiErr, <-errCh)
}

func describeTopology(ctx context.Context, resolver *topology.Resolver, logger *log.Logger) string {
	monitors, source, err := resolver.Resolve(ctx)
	if err != nil {
		logger.Warn("monitor layout unknown, using the whole screen", "err", err)
		return "unknown"
	}
	for i, m := range monitors {
		logger.Debug("monitor", "index", i, "geometry", m, "source", source)
	}
	return fmt.Sprintf("%d via %s", len(monitors), source)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func openLogFile() (*os.File, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	dir = filepath.Join(dir, "stayactive")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return os.OpenFile(filepath.Join(dir, "stayactive.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
