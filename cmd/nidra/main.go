package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/ayusman/nidra/internal/alert"
	"github.com/ayusman/nidra/internal/app"
	"github.com/ayusman/nidra/internal/capture"
	"github.com/ayusman/nidra/internal/config"
	"github.com/ayusman/nidra/internal/logging"
	"github.com/ayusman/nidra/internal/server"
	"github.com/ayusman/nidra/internal/status"
	"github.com/ayusman/nidra/internal/store"
	"github.com/ayusman/nidra/internal/tray"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "nidra: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, Dir: cfg.LogDir, AppEnv: cfg.AppEnv})
	if err != nil {
		fmt.Fprintf(os.Stderr, "nidra: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("nidra stopped")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	log.Info("nidra - drowsiness and yawn detection")

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	cell := status.NewCell()
	publishers := status.Multi{cell}
	if cfg.RedisEnabled() {
		mirror := status.NewRedisMirror(status.RedisOptions{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, log)
		defer mirror.Close()
		publishers = append(publishers, mirror)
	}

	hooks := alert.NewManager(cfg.HookDir, log)
	if err := hooks.Discover(); err != nil {
		log.WithError(err).WithField("dir", cfg.HookDir).Warn("hook discovery failed")
	}
	log.WithField("count", len(hooks.List())).Info("alert hooks loaded")
	dispatcher := alert.NewDispatcher(hooks, alert.NewExecutor(cfg.HookTimeout()), log)
	defer dispatcher.Close()

	a, err := app.New(app.Config{
		Store:   st,
		Cameras: capture.DeviceFactory(cfg.CameraSource, cfg.CameraFPS),
		Mode:    cfg.Detector,
		Status:  publishers,
		Hooks:   dispatcher,
		FPS:     cfg.CameraFPS,
		Logger:  log,
	})
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}
	defer a.Close()
	log.WithField("detector", a.DetectorName()).Info("landmark detector ready")

	if cfg.StaticDir != "" {
		log.WithField("dir", cfg.StaticDir).Info("serving static files")
	}

	srv := server.New(server.Config{
		StaticDir: cfg.StaticDir,
		Store:     st,
		App:       a,
		Status:    cell,
		Logger:    log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx, cfg.HTTPAddr)
	})

	if !cfg.TrayEnabled {
		return wait(g)
	}

	// systray must own the main goroutine
	t := tray.New()
	t.OnOpen(func() {
		if err := openBrowser(dashboardURL(cfg.HTTPAddr)); err != nil {
			log.WithError(err).Warn("open dashboard")
		}
	})
	t.OnQuit(stop)

	updates, unsubscribe, err := cell.Subscribe("tray", 4)
	if err != nil {
		return fmt.Errorf("subscribe tray: %w", err)
	}
	defer unsubscribe()

	go t.Watch(ctx, updates)
	go func() {
		<-ctx.Done()
		t.Quit()
	}()

	t.Run()
	stop()
	return wait(g)
}

func wait(g *errgroup.Group) error {
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func dashboardURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
