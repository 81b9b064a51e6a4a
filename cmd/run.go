package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bnema/waycursor/internal/backend/evdev"
	"github.com/bnema/waycursor/internal/config"
	"github.com/bnema/waycursor/internal/cursor"
	"github.com/bnema/waycursor/internal/dispatch"
	"github.com/bnema/waycursor/internal/eventloop"
	"github.com/bnema/waycursor/internal/logger"
	"github.com/bnema/waycursor/internal/scene"
	"github.com/bnema/waycursor/internal/seat"
	"github.com/bnema/waycursor/internal/ui"
)

var (
	runMonitor bool
	runVerbose bool
	runDevices []string
)

// snapshotInterval is how often the monitor refreshes seat state.
const snapshotInterval = 100 * time.Millisecond

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a headless seat on the local input devices",
	Long: `Run a headless seat fed by the evdev devices in /dev/input.

Every normalized event is logged, or shown in a live monitor with --monitor.
Devices are autodetected unless paths are configured with 'waycursor setup'
or given with --device.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVarP(&runMonitor, "monitor", "m", false, "Show a live monitor instead of logging events")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Log motion and frame events at info level")
	runCmd.Flags().StringSliceVarP(&runDevices, "device", "d", nil, "Device node to open (repeatable)")
	runCmd.Flags().Bool("grab", false, "Take exclusive access to the opened devices")
	runCmd.Flags().Bool("hotplug", true, "Watch for devices added while running")

	viper.BindPFlag("devices.grab", runCmd.Flags().Lookup("grab"))
	viper.BindPFlag("devices.hotplug", runCmd.Flags().Lookup("hotplug"))

	rootCmd.AddCommand(runCmd)
}

// idleLog reports activity classes at debug level.
type idleLog struct{}

func (idleLog) NotifyActivity(source cursor.ActivitySource) {
	logger.Debug("activity", "source", source)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	// Flags bound to viper only show up after a fresh unmarshal.
	cfg.Devices.Grab = viper.GetBool("devices.grab")
	cfg.Devices.Hotplug = viper.GetBool("devices.hotplug")

	report, err := evdev.CheckAccess(cfg.Devices.InputDir)
	if err != nil {
		logger.Warnf("Cannot check device access: %v", err)
	} else if !report.OK() {
		logger.Warnf("%d device node(s) are not readable, run 'waycursor setup' for help", len(report.Denied))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	loop := eventloop.New()

	var policy dispatch.Policy = dispatch.NewLogPolicy(runVerbose)
	var fwd *ui.Forwarder
	if runMonitor {
		fwd = ui.NewForwarder(512)
		policy = fwd
	}

	opts := cfg.SeatOptions(seat.Options{
		Layout: cfg.Layout(),
		Scene:  scene.NewGraph(),
		Policy: policy,
		Idle:   idleLog{},
		NewTimer: func(fire func()) cursor.Timer {
			return loop.AddTimer(fire)
		},
	})
	s := seat.New(opts)

	paths := runDevices
	if len(paths) == 0 {
		paths = cfg.Devices.Paths
	}
	backend := evdev.New(loop, s, evdev.Options{
		InputDir: cfg.Devices.InputDir,
		Paths:    paths,
		Hotplug:  cfg.Devices.Hotplug,
		Grab:     cfg.Devices.Grab,
	})

	logger.Infof("Starting seat %s on %d output(s)", s.Name(), len(opts.Layout.Outputs()))

	var wg conc.WaitGroup
	backendErr := make(chan error, 1)
	wg.Go(func() {
		err := backend.Run(ctx)
		backendErr <- err
		if err != nil {
			cancel()
		}
	})
	wg.Go(func() {
		if err := loop.Run(ctx); err != nil {
			logger.Errorf("Event loop stopped: %v", err)
		}
	})

	if runMonitor {
		wg.Go(func() { pollSnapshots(ctx, loop, s, fwd) })

		runner := ui.NewProgramRunner(ui.DefaultProgramConfig())
		if err := runner.Run(ctx, ui.NewMonitorModel(s.Name()), fwd); err != nil {
			logger.Errorf("Monitor error: %v", err)
		}
		cancel()
	} else {
		<-ctx.Done()
	}

	wg.Wait()
	s.Close()

	if err := <-backendErr; err != nil {
		if errors.Is(err, evdev.ErrNoDevices) {
			return fmt.Errorf("%w, run 'waycursor devices' to list what was found", err)
		}
		return err
	}
	return nil
}

// pollSnapshots posts a state read to the loop at a fixed rate. The read
// runs on the loop goroutine, which owns the seat.
func pollSnapshots(ctx context.Context, loop *eventloop.Loop, s *seat.Seat, fwd *ui.Forwarder) {
	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			loop.Post(func() {
				fwd.Push(ui.StateMsg(ui.SnapshotOf(s)))
			})
		}
	}
}
