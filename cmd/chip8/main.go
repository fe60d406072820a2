package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"
	"github.com/valerio/go-chip8/chip8"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/backend/sdl2"
	"github.com/valerio/go-chip8/chip8/backend/speaker"
	"github.com/valerio/go-chip8/chip8/backend/terminal"
	"github.com/valerio/go-chip8/chip8/backend/websocket"
	"github.com/valerio/go-chip8/chip8/config"
	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/input"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "chip8"
	app.Description = "A CHIP-8 interpreter"
	app.Usage = "chip8 [options] <ROM file>"
	app.Version = "1.0.0"
	app.ErrWriter = os.Stderr
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "Path to a config file (default: ~/.chip8.yaml when present)",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Display backend: terminal, headless or sdl2",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without a display, shorthand for --backend headless",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of 60Hz frames to run in headless mode (required for headless)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Show the register panel",
		},
		cli.StringFlag{
			Name:  "audio",
			Usage: "Beeper output: bell, speaker or none",
		},
		cli.StringFlag{
			Name:  "serve",
			Usage: "Mirror the display to websocket clients on this address, e.g. :8080",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn or error",
		},
	}
	app.Action = runEmulator
	return app
}

func runEmulator(c *cli.Context) error {
	if c.NArg() == 0 {
		cli.HelpPrinter(c.App.ErrWriter, cli.AppHelpTemplate, c.App)
		return errors.New("no ROM path provided")
	}
	romPath := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	keymap, err := input.ParseKeymap(cfg.Keymap)
	if err != nil {
		return err
	}

	b, err := newBackend(cfg, romPath)
	if err != nil {
		return err
	}

	emu, err := chip8.NewWithFile(romPath, b,
		chip8.WithCPUOptions(cpu.WithCyclePeriod(cfg.CyclePeriod)),
		chip8.WithBackendConfig(backend.BackendConfig{
			Scale:     cfg.Scale,
			ShowDebug: cfg.Debug,
			Keymap:    keymap,
		}),
	)
	if err != nil {
		return err
	}

	return emu.Run()
}

// loadConfig layers explicitly set flags over the config file and environment.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, err
	}

	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if c.Bool("headless") {
		cfg.Backend = config.BackendHeadless
	}
	if c.IsSet("frames") {
		cfg.Frames = c.Int("frames")
	}
	if c.IsSet("snapshot-interval") {
		cfg.SnapshotInterval = c.Int("snapshot-interval")
	}
	if c.IsSet("snapshot-dir") {
		cfg.SnapshotDir = c.String("snapshot-dir")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("audio") {
		cfg.Audio = c.String("audio")
	}
	if c.IsSet("serve") {
		cfg.Serve = c.String("serve")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}

	if cfg.Backend == config.BackendHeadless && cfg.Frames <= 0 {
		return cfg, errors.New("headless mode requires --frames option with a positive value")
	}

	return cfg, cfg.Validate()
}

func setupLogging(cfg config.Config) error {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if cfg.Backend == config.BackendHeadless {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}

func newBackend(cfg config.Config, romPath string) (backend.Backend, error) {
	var b backend.Backend
	switch cfg.Backend {
	case config.BackendHeadless:
		snapshots, err := headless.CreateSnapshotConfig(cfg.SnapshotInterval, cfg.SnapshotDir, romPath)
		if err != nil {
			return nil, err
		}
		b = headless.New(cfg.Frames, snapshots)
	case config.BackendSDL2:
		b = sdl2.New()
	case config.BackendTerminal:
		b = terminal.New()
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	switch cfg.Audio {
	case config.AudioNone:
		b = backend.WithAudio(b, backend.Silent{})
	case config.AudioSpeaker:
		spk, err := speaker.New(backend.DefaultTone)
		if err != nil {
			slog.Warn("Speaker unavailable, keeping the backend's own beeper", "error", err)
		} else {
			b = backend.WithAudio(b, spk)
		}
	}

	if cfg.Serve != "" {
		server, err := websocket.Listen(cfg.Serve)
		if err != nil {
			return nil, fmt.Errorf("starting display mirror: %w", err)
		}
		b = backend.WithDisplay(b, backend.Tee(b, server))
	}

	return b, nil
}
