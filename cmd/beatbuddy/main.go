package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/beat-buddy/audio"
	"github.com/lixenwraith/beat-buddy/bounce"
	"github.com/lixenwraith/beat-buddy/config"
	"github.com/lixenwraith/beat-buddy/core"
	"github.com/lixenwraith/beat-buddy/observe"
	"github.com/lixenwraith/beat-buddy/sequencer"
	"github.com/lixenwraith/beat-buddy/service"
	"github.com/lixenwraith/beat-buddy/tui"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to the YAML configuration file (defaults when empty)")
	logPath := flag.String("log", "", `log file, "-" for stderr (overrides log.file)`)
	mute := flag.Bool("mute", false, "start without opening the audio device")
	bouncePath := flag.String("bounce", "", "render to this WAV file instead of starting the terminal UI")
	loops := flag.Int("loops", 4, "number of pattern loops to render with -bounce")
	preset := flag.String("preset", "Basic Rock", "preset to render with -bounce")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "beatbuddy: %v\n", err)
		return 1
	}
	if *logPath != "" {
		cfg.Log.File = *logPath
	}

	logOut, closeLog, err := openLogOutput(cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "beatbuddy: %v\n", err)
		return 1
	}
	defer closeLog()

	logger := newLogger(cfg.Log.Level, logOut)
	slog.SetDefault(logger)
	logger.Info("beatbuddy starting",
		"version", version,
		"config", *configPath,
		"sample_rate", cfg.Audio.SampleRate,
		"bpm", cfg.Transport.BPM,
	)

	presets, err := cfg.SequencerPresets()
	if err != nil {
		logger.Error("invalid presets", "err", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var provider *observe.Provider
	if cfg.Metrics.Addr != "" {
		provider, err = observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
		if err != nil {
			logger.Error("failed to initialise metrics", "err", err)
			return 1
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics shutdown error", "err", err)
			}
		}()
	}
	metrics := observe.DefaultMetrics()

	if *bouncePath != "" {
		return runBounce(ctx, logger, cfg, presets, metrics, *bouncePath, *loops, *preset)
	}

	// Service wiring
	hub := service.NewHub(logger)
	audioSvc := audio.NewService(cfg.AudioEngineConfig(), audio.WithLogger(logger))
	seqSvc := sequencer.NewService(
		func() sequencer.Player {
			if p := audioSvc.Player(); p != nil {
				return p
			}
			return nil
		},
		sequencer.WithTempo(cfg.Transport.BPM),
		sequencer.WithVolume(cfg.Audio.MasterVolume),
		sequencer.WithPresets(presets...),
		sequencer.WithMachineLogger(logger),
		sequencer.WithMetrics(metrics),
	)
	for _, svc := range []service.Service{audioSvc, seqSvc} {
		if err := hub.Register(svc); err != nil {
			logger.Error("service registration failed", "err", err)
			return 1
		}
	}
	if err := hub.InitAll(*mute); err != nil {
		logger.Error("service init failed", "err", err)
		return 1
	}
	if err := hub.StartAll(); err != nil {
		logger.Error("service start failed", "err", err)
		return 1
	}
	defer hub.StopAll()
	logger.Info("services started", "services", hub.Names())

	machine := service.MustGet[*sequencer.SequencerService](hub, "sequencer").Machine()
	engine := service.MustGet[*audio.AudioService](hub, "audio").Engine()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "beatbuddy: failed to create screen: %v\n", err)
		return 1
	}
	app, err := tui.New(screen, machine,
		tui.WithLogger(logger),
		tui.WithAudioStatus(audioSvc.IsDisabled),
		tui.WithMixer(engine),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "beatbuddy: failed to initialize terminal: %v\n", err)
		return 1
	}

	// Restore the terminal before printing a crash from any goroutine
	crash := func(r any) {
		app.Close()
		fmt.Fprintf(os.Stderr, "\nbeatbuddy crashed: %v\n%s\n", r, debug.Stack())
		os.Exit(1)
	}
	core.SetCrashHandler(crash)
	defer func() {
		if r := recover(); r != nil {
			crash(r)
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		// Quitting the UI ends the program
		defer cancel()
		return app.Run(gctx)
	})

	if provider != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", provider.Handler())
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			logger.Info("metrics listening", "addr", cfg.Metrics.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	app.Close()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("run error", "err", err)
		fmt.Fprintf(os.Stderr, "beatbuddy: %v\n", err)
		return 1
	}
	logger.Info("goodbye")
	return 0
}

func runBounce(ctx context.Context, logger *slog.Logger, cfg *config.Config, presets []sequencer.Preset,
	metrics *observe.Metrics, path string, loops int, preset string) int {
	opts := bounce.Options{
		Loops:   loops,
		Preset:  preset,
		BPM:     cfg.Transport.BPM,
		Audio:   cfg.AudioEngineConfig(),
		Presets: presets,
		Logger:  logger,
		Metrics: metrics,
	}
	if err := bounce.Check(opts); err != nil {
		fmt.Fprintf(os.Stderr, "beatbuddy: %v\n", err)
		return 1
	}

	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "beatbuddy: %v\n", err)
		return 1
	}
	res, err := bounce.Render(ctx, f, opts)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "beatbuddy: bounce failed: %v\n", err)
		_ = os.Remove(path)
		return 1
	}
	fmt.Printf("wrote %s: %d frames at %d Hz, %d steps at %d bpm\n",
		path, res.Frames, res.SampleRate, res.Steps, res.BPM)
	return 0
}

// loadConfig reads path when set, otherwise the defaults, then applies the environment
func loadConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	config.ApplyEnv(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// openLogOutput resolves the log destination; the terminal UI owns stdout
func openLogOutput(path string) (io.Writer, func(), error) {
	switch path {
	case "-":
		return os.Stderr, func() {}, nil
	case "":
		path = config.DefaultLogFile()
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func newLogger(level config.LogLevel, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level.Level()}))
}
