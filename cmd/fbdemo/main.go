// Command fbdemo opens a scripted set of windows on an fbcomp display and
// shows them on a terminal or writes the composited screen to an image.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gogpu/fbcomp"
	"github.com/gogpu/fbcomp/glyph"
	"github.com/gogpu/fbcomp/surface"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML scene file")
		width      = flag.Int("width", 0, "screen width (overrides config)")
		height     = flag.Int("height", 0, "screen height (overrides config)")
		sinkName   = flag.String("sink", "", "output sink: term, image or discard (default: best available)")
		output     = flag.String("output", "", "output image for the image sink")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	fbcomp.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = LoadConfig(*configPath); err != nil {
			log.Fatal(err)
		}
	}
	if *width > 0 {
		cfg.Width = *width
	}
	if *height > 0 {
		cfg.Height = *height
	}
	if *sinkName != "" {
		cfg.Sink = *sinkName
	}
	if *output != "" {
		cfg.Output = *output
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *Config) error {
	opts := surface.Options{Path: cfg.Output}
	var sink surface.Sink
	var err error
	if cfg.Sink != "" {
		sink, err = surface.NewSinkByName(cfg.Sink, opts)
	} else {
		sink, err = surface.NewSink(opts)
	}
	if err != nil {
		return fmt.Errorf("sink: %w", err)
	}

	d, err := fbcomp.NewDisplay(cfg.Width, cfg.Height,
		fbcomp.WithFormat(cfg.PixelFormat()),
		fbcomp.WithSink(sink),
		fbcomp.WithInterval(cfg.Interval),
		fbcomp.WithIdleFlush(16*time.Millisecond),
		fbcomp.WithWorkers(cfg.Workers),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	disp := fbcomp.NewDispatcher(d)
	runErr := make(chan error, 1)
	go func() { runErr <- disp.Run(ctx) }()

	sc := newScene(disp, glyph.Default())
	if err := sc.open(ctx, cfg.Windows); err != nil {
		cancel()
		<-runErr
		_ = d.Close()
		return err
	}

	src, interactive := sink.(surface.InputSource)
	if interactive {
		var wg sync.WaitGroup
		for _, w := range sc.windows {
			wg.Add(1)
			go func() {
				defer wg.Done()
				sc.serve(ctx, w, cancel)
			}()
		}
		if err := src.Run(ctx, disp.PostInput); err != nil && !errors.Is(err, context.Canceled) {
			fbcomp.Logger().Warn("fbdemo: input stopped", "err", err)
		}
		cancel()
		wg.Wait()
	} else {
		disp.Close()
	}

	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err := d.Close(); err != nil {
		return fmt.Errorf("close display: %w", err)
	}
	if _, ok := sink.(*surface.ImageSink); ok && cfg.Output != "" {
		fbcomp.Logger().Info("fbdemo: wrote screen", "path", cfg.Output)
	}
	return nil
}
