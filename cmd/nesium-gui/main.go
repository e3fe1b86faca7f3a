// Command nesium-gui is the windowed frontend: it links ebiten, polls
// keyboard input, and presents the core's rendered frames and audio
// samples. The core itself (internal/nes and below) never imports ebiten;
// only this binary does.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/mikai233/nesium-sub003/internal/bus"
	"github.com/mikai233/nesium-sub003/internal/graphics"
	"github.com/mikai233/nesium-sub003/internal/nes"
	"github.com/mikai233/nesium-sub003/internal/palette"
	"github.com/mikai233/nesium-sub003/internal/version"
)

func main() {
	var (
		romPath  = flag.String("rom", "", "path to a ROM file to load at startup")
		scale    = flag.Int("scale", 2, "window scale factor over the 256x240 native resolution")
		rngSeed  = flag.Int64("rng-seed", 0, "power-on RNG seed, for deterministic replay")
		showHelp = flag.Bool("help", false, "show this help message")
		showVer  = flag.Bool("version", false, "show version information")
	)
	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVer {
		fmt.Println(version.GetDetailedVersion())
		os.Exit(0)
	}

	if err := run(*romPath, *scale, *rngSeed); err != nil {
		log.Fatalf("nesium-gui: %v", err)
	}
}

func run(romPath string, scale int, rngSeed int64) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console := nes.New(bus.NTSC, palette.RGBA8888, nil)
	console.SetRNGSeed(rngSeed)
	if romPath != "" {
		data, err := os.ReadFile(romPath)
		if err != nil {
			return fmt.Errorf("reading rom: %w", err)
		}
		if err := console.LoadCartridge(data); err != nil {
			return fmt.Errorf("loading rom: %w", err)
		}
	}

	backend, err := graphics.CreateBackend(graphics.BackendEbitengine)
	if err != nil {
		return err
	}
	if err := backend.Initialize(graphics.Config{
		WindowTitle:  "nesium",
		WindowWidth:  256 * scale,
		WindowHeight: 240 * scale,
		VSync:        true,
	}); err != nil {
		return err
	}
	defer backend.Cleanup()

	window, err := backend.CreateWindow("nesium", 256*scale, 240*scale)
	if err != nil {
		return err
	}
	defer window.Cleanup()

	ebitenWindow, ok := graphics.AsEbitengineWindow(window)
	if !ok {
		return fmt.Errorf("expected an ebitengine window")
	}

	group, gctx := errgroup.WithContext(ctx)
	audio := newAudioSink()
	group.Go(func() error { return audio.run(gctx) })

	ebitenWindow.SetEmulatorUpdateFunc(func() error {
		for _, ev := range window.PollEvents() {
			if ev.Type == graphics.InputEventTypeQuit {
				stop()
				return nil
			}
			applyButtonEvent(console, ev)
		}
		console.RunFrame(false)
		audio.offer(console.AudioSamplesDrain())
		return window.RenderFrame(console.RenderRGB())
	})

	runErr := ebitenWindow.Run()
	stop()
	if waitErr := group.Wait(); waitErr != nil && runErr == nil {
		runErr = waitErr
	}
	return runErr
}
