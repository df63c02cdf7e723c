// Command simulator boots the in-process order book simulator: a pool
// of synthetic feeders, the matching engine, the event bus, and
// (optionally) a live-view listener bundle rendered to stdout on a
// timer.
//
// Grounded on the teacher's cmd/server/main.go for the signal-handling
// and graceful-shutdown idiom (context.WithCancel, signal.Notify on
// SIGINT/SIGTERM, a shutdown goroutine) and cmd/client/main.go for the
// subcommand-CLI shape, ported from flag.FlagSet onto cobra -- the
// networked HTTP surface both files wrap is dropped entirely, since
// spec.md describes a one-process simulator with no external API.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vamartid/lobsim/internal/bus"
	"github.com/vamartid/lobsim/internal/config"
	"github.com/vamartid/lobsim/internal/listeners"
	"github.com/vamartid/lobsim/internal/simulator"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "simulator",
		Short: "Run the in-process limit order book simulator",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	root.AddCommand(newRunCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var durationFlag time.Duration
	var liveViewFlag bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start feeders and the engine; run until interrupted or the duration elapses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("live-view") {
				cfg.LiveView = liveViewFlag
			}
			return runSimulator(cfg, durationFlag)
		},
	}
	cmd.Flags().DurationVar(&durationFlag, "duration", 0, "stop automatically after this long (0 = run until signaled)")
	cmd.Flags().BoolVar(&liveViewFlag, "live-view", true, "register the order-book/stats live-view bundle")
	return cmd
}

func buildLogger(cfg config.LogConfig) (*zap.Logger, error) {
	if cfg.Development {
		return zap.NewDevelopment()
	}
	zc := zap.NewProductionConfig()
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		zc.Level = level
	}
	return zc.Build()
}

func parseBackpressure(s string) bus.Backpressure {
	switch s {
	case "drop":
		return bus.Drop
	case "block":
		return bus.Block
	default:
		return bus.SpinYield
	}
}

// runSimulator wires and runs a Simulator until SIGINT/SIGTERM or the
// optional duration elapses, mirroring the teacher's signal-handling
// goroutine but driving Simulator.Stop instead of an http.Server's
// Shutdown.
func runSimulator(cfg *config.Config, duration time.Duration) error {
	log, err := buildLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	sim := simulator.New(simulator.Config{
		NumFeeders:      cfg.Feeders,
		BusRingCapacity: cfg.BusRingCapacity,
		Backpressure:    parseBackpressure(cfg.Backpressure),
		Log:             log,
	})

	loggerHandle := sim.AddListener(listeners.NewLogger(log).OnEvent, bus.Drop)

	var bundle *simulator.LiveViewBundle
	var renderStop chan struct{}
	if cfg.LiveView {
		bundle = sim.EnableLiveView(true)
		if cfg.RenderIntervalMs > 0 {
			renderStop = startRenderLoop(bundle, time.Duration(cfg.RenderIntervalMs)*time.Millisecond)
		}
	}

	log.Info("simulator starting",
		zap.String("run_id", sim.RunID.String()),
		zap.Int("feeders", cfg.Feeders),
		zap.Bool("live_view", cfg.LiveView))
	sim.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var timeout <-chan time.Time
	if duration > 0 {
		timer := time.NewTimer(duration)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
	case <-timeout:
		log.Info("duration elapsed, shutting down")
	}

	if renderStop != nil {
		close(renderStop)
	}
	sim.Stop()
	_ = sim.RemoveListener(loggerHandle)
	log.Info("simulator stopped")
	return nil
}

// startRenderLoop prints the live-view bundle's book ladder and summary
// stats to stdout every interval, in the style of the original's
// polling dashboard render thread (see internal/simulator's package doc
// for why that loop itself is not baked into Simulator).
func startRenderLoop(bundle *simulator.LiveViewBundle, interval time.Duration) chan struct{} {
	stop := make(chan struct{})
	r := listeners.NewRenderer(bundle.Book, bundle.Stats)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Render(os.Stdout)
			case <-stop:
				return
			}
		}
	}()
	return stop
}
