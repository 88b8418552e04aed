package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli"
	"golang.org/x/term"

	"github.com/valerio/go-chip8/chip8"
	"github.com/valerio/go-chip8/chip8/audio"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/backend/sdl2"
	"github.com/valerio/go-chip8/chip8/backend/terminal"
	"github.com/valerio/go-chip8/chip8/backend/web"
	"github.com/valerio/go-chip8/chip8/display"
	"github.com/valerio/go-chip8/chip8/timing"
)

func main() {
	app := cli.NewApp()
	app.Name = "chip8"
	app.Description = "A CHIP-8 interpreter"
	app.Usage = "chip8 [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the program (raw, .zip, .gz or .7z)",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Display backend: terminal, sdl2, web or headless",
			Value: "terminal",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (0 = until interrupted)",
		},
		cli.IntFlag{
			Name:  "speed",
			Usage: "Instructions executed per frame",
			Value: chip8.DefaultInstructionsPerFrame,
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "Window scale for the sdl2 backend",
			Value: display.DefaultPixelScale,
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Show the debug panel on startup",
		},
		cli.BoolFlag{
			Name:  "test-pattern",
			Usage: "Display a test pattern instead of emulation (for debugging display)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.StringFlag{
			Name:  "web-addr",
			Usage: "Listen address for the web backend",
			Value: web.DefaultAddr,
		},
		cli.StringFlag{
			Name:  "record-audio",
			Usage: "Record the buzzer to a WAV file",
		},
		cli.BoolFlag{
			Name:  "audio",
			Usage: "Play the buzzer on the default audio device",
		},
		cli.BoolFlag{
			Name:  "trace",
			Usage: "Log every executed instruction at debug level",
		},
		cli.Uint64Flag{
			Name:  "seed",
			Usage: "Seed for the RND instruction (0 = random)",
		},
	}
	app.Action = runEmulator

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backendName := c.String("backend")
	if backendName == "terminal" && !term.IsTerminal(int(os.Stdout.Fd())) {
		slog.Warn("stdout is not a terminal, falling back to headless backend")
		backendName = "headless"
	}
	headlessMode := backendName == "headless"

	if headlessMode {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		slog.SetDefault(slog.New(handler))
	}

	romPath := c.String("rom")
	if romPath == "" && c.NArg() > 0 {
		romPath = c.Args().Get(0)
	}

	var (
		emu     chip8.Emulator
		machine *chip8.Machine
		title   = "CHIP-8"
	)

	if c.Bool("test-pattern") {
		slog.Info("Running in test pattern mode")
		emu = chip8.NewTestPatternEmulator()
	} else {
		if romPath == "" {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}

		var err error
		machine, err = chip8.NewWithFile(romPath, chip8.Config{
			InstructionsPerFrame: c.Int("speed"),
			Trace:                c.Bool("trace"),
			Seed:                 c.Uint64("seed"),
			FrameClock:           headlessMode,
		})
		if err != nil {
			return err
		}
		emu = machine
		title = fmt.Sprintf("CHIP-8 - %s", strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath)))

		closeAudio, err := setupAudio(c, machine)
		if err != nil {
			return err
		}
		defer closeAudio()
	}

	b, limiter, err := newBackend(c, backendName, romPath)
	if err != nil {
		return err
	}
	if ticker, ok := limiter.(*timing.TickerLimiter); ok {
		defer ticker.Stop()
	}

	config := backend.BackendConfig{
		Title:         title,
		Scale:         c.Int("scale"),
		ShowDebug:     c.Bool("debug"),
		TestPattern:   c.Bool("test-pattern"),
		DebugProvider: emu,
	}
	if err := b.Init(config); err != nil {
		return err
	}
	defer func() {
		if err := b.Cleanup(); err != nil {
			slog.Warn("Backend cleanup failed", "error", err)
		}
	}()

	return chip8.Run(ctx, emu, b, limiter)
}

// newBackend builds the named backend with the frame pacing it needs.
// Headless runs as fast as possible.
func newBackend(c *cli.Context, name, romPath string) (backend.Backend, timing.Limiter, error) {
	switch name {
	case "headless":
		snapshotConfig, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
		if err != nil {
			return nil, nil, err
		}
		return headless.New(c.Int("frames"), snapshotConfig), timing.NewNoOpLimiter(), nil
	case "terminal":
		return terminal.New(), timing.NewAdaptiveLimiter(), nil
	case "sdl2":
		return sdl2.New(), timing.NewAdaptiveLimiter(), nil
	case "web":
		// Clients render whatever arrives last, so steady ticks are enough.
		return web.New(c.String("web-addr")), timing.NewTickerLimiter(), nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", name)
	}
}

// setupAudio connects the requested outputs to the buzzer. The returned
// function closes them.
func setupAudio(c *cli.Context, machine *chip8.Machine) (func(), error) {
	var (
		sinks   audio.Sinks
		closers []io.Closer
	)

	if path := c.String("record-audio"); path != "" {
		recorder, err := audio.NewWavRecorder(path, audio.DefaultSampleRate)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, recorder)
		closers = append(closers, recorder)
		slog.Info("Recording audio", "path", path)
	}

	if c.Bool("audio") {
		player, err := audio.NewPlayer(audio.DefaultSampleRate)
		if err != nil {
			slog.Warn("Audio playback disabled", "error", err)
		} else {
			sinks = append(sinks, player)
			closers = append(closers, player)
		}
	}

	if len(sinks) > 0 {
		machine.SetSoundSink(sinks)
	}

	return func() {
		for _, closer := range closers {
			if err := closer.Close(); err != nil {
				slog.Warn("Failed to close audio output", "error", err)
			}
		}
	}, nil
}
