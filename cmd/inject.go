package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/waycursor/internal/inject"
	"github.com/bnema/waycursor/internal/logger"
	"github.com/bnema/waycursor/internal/replay"
)

var (
	injectDevice string
	injectUinput string
	injectDelay  time.Duration
)

var injectCmd = &cobra.Command{
	Use:   "inject <scenario.toml>",
	Short: "Play the pointer events of a scenario through a virtual mouse",
	Long: `Create a virtual mouse with uinput and play the motion, button and axis
events of one scenario pointer device through it in real time.

Run 'waycursor run' in another terminal to watch the events come back
through the evdev backend. Requires write access to /dev/uinput.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := replay.Load(args[0])
		if err != nil {
			return err
		}
		steps, err := inject.Plan(s, injectDevice)
		if err != nil {
			return err
		}

		mouse, err := inject.CreateMouse(injectUinput, "waycursor virtual mouse")
		if err != nil {
			return err
		}
		defer mouse.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Readers need a moment to open the new node.
		logger.Infof("Virtual mouse created, starting in %s", injectDelay)
		select {
		case <-time.After(injectDelay):
		case <-ctx.Done():
			return nil
		}

		if err := inject.NewPlayer(mouse).Play(ctx, steps); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		logger.Infof("Injected %d step(s)", len(steps))
		return nil
	},
}

func init() {
	injectCmd.Flags().StringVar(&injectDevice, "device", "", "Scenario pointer device to play (default: first pointer)")
	injectCmd.Flags().StringVar(&injectUinput, "uinput", inject.DefaultUinputPath, "uinput device path")
	injectCmd.Flags().DurationVar(&injectDelay, "delay", time.Second, "Wait before the first event")
	rootCmd.AddCommand(injectCmd)
}
