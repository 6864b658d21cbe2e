package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/ayusman/bhava/internal/app"
	"github.com/ayusman/bhava/internal/capture"
	"github.com/ayusman/bhava/internal/config"
	"github.com/ayusman/bhava/internal/detector"
	"github.com/ayusman/bhava/internal/logging"
	"github.com/ayusman/bhava/internal/overlay"
	"github.com/ayusman/bhava/internal/server"
	"github.com/ayusman/bhava/internal/store"
	"github.com/ayusman/bhava/internal/tray"
	"github.com/ayusman/bhava/internal/ui"
)

var log = logging.Component("main")

func init() {
	// OpenCV windows and the tray must be driven from the main thread.
	runtime.LockOSThread()
}

func main() {
	args := os.Args[1:]
	command := "run"
	if len(args) > 0 && (args[0] == "run" || args[0] == "replay") {
		command, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet("bhava "+command, flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file (default $"+config.EnvConfigPath+" or ~/.bhava/config.yaml)")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to open fixture store")
	}
	defer st.Close()

	switch command {
	case "replay":
		ok, err := replay(st)
		if err != nil {
			st.Close()
			log.WithError(err).Fatal("Replay failed")
		}
		if !ok {
			st.Close()
			os.Exit(1)
		}
	default:
		if err := run(cfg, st); err != nil {
			st.Close()
			log.WithError(err).Fatal("bhava stopped with an error")
		}
	}
}

func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ExpandPaths()
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	err = logging.Init(logging.Config{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func appConfig(cfg *config.Config, st *store.Store) app.Config {
	return app.Config{
		Camera: capture.Options{
			Source: cfg.Camera.Source,
			Width:  cfg.Camera.Width,
			Height: cfg.Camera.Height,
			FPS:    cfg.Camera.FPS,
		},
		Detector: detector.Config{
			MaxFaces:        cfg.Detector.MaxFaces,
			RefineLandmarks: cfg.Detector.RefineLandmarks,
			MinConfidence:   cfg.Detector.MinConfidence,
			MinTrackingConf: cfg.Detector.MinTrackingConf,
			Python:          cfg.Detector.Python,
			Script:          cfg.Detector.Script,
		},
		Overlay: overlay.Options{
			DrawMesh:         cfg.Display.DrawMesh,
			DrawMeasurements: cfg.Display.DrawMeasurements,
		},
		Store: st,
	}
}

// run starts the capture loop with the configured front end and, when an
// address is set, the HTTP server.
func run(cfg *config.Config, st *store.Store) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(appConfig(cfg, st))

	serverErr := make(chan error, 1)
	if cfg.Server.Addr != "" {
		hub := server.NewHub(cfg.Server.StreamFPS)
		a.OnResult(hub.Observe)

		srv := server.New(server.Config{Store: st, Hub: hub})
		go func() {
			serverErr <- srv.ListenAndServe(ctx, cfg.Server.Addr)
		}()
	} else {
		serverErr <- nil
	}

	var err error
	switch cfg.Display.Mode {
	case "window":
		window := ui.NewWindow(cfg.Display.WindowTitle)
		defer window.Close()
		a.SetDisplay(window)
		err = a.Run(ctx)
	case "tray":
		err = runTray(ctx, a)
	default:
		err = a.Run(ctx)
	}
	stop()

	if srvErr := <-serverErr; srvErr != nil {
		err = errors.Join(err, fmt.Errorf("http server: %w", srvErr))
	}
	return err
}

// runTray runs the loop on a goroutine and the tray on the main thread.
func runTray(ctx context.Context, a *app.App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keys := ui.NewHeadless()
	a.SetDisplay(keys)

	t := tray.New()
	t.OnToggle(a.SetEnabled)
	t.OnRecord(func() { keys.Press(app.KeyRecord) })
	t.OnQuit(cancel)
	a.OnResult(t.Observe)

	done := make(chan error, 1)
	go func() {
		err := a.Run(ctx)
		t.Stop()
		done <- err
	}()

	go func() {
		<-ctx.Done()
		t.Stop()
	}()

	t.Run()
	cancel()
	return <-done
}

// replay re-classifies every stored fixture and prints the outcome. It
// reports whether all fixtures still match their expected label.
func replay(st *store.Store) (bool, error) {
	results, err := app.Replay(st)
	if err != nil {
		return false, err
	}

	failed := 0
	for _, r := range results {
		status := "ok"
		if !r.Passed() {
			status = "FAIL"
			failed++
		}

		got := string(r.Got)
		if r.Err != nil {
			got = "error: " + r.Err.Error()
		}
		fmt.Printf("%-4s  %s  %-30s expected %-9s got %s\n", status, r.Fixture.ID, r.Fixture.Name, r.Fixture.Expected, got)
	}

	fmt.Printf("%d fixtures, %d failed\n", len(results), failed)
	return failed == 0, nil
}
