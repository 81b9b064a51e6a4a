package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/waycursor/internal/dispatch"
	"github.com/bnema/waycursor/internal/logger"
	"github.com/bnema/waycursor/internal/replay"
)

var replayKinds []string

var replayCmd = &cobra.Command{
	Use:   "replay <scenario.toml>...",
	Short: "Replay scripted input through a seat and print the event stream",
	Long: `Replay scripted input through a seat without any hardware.

A scenario file describes outputs, surfaces, devices and timed events. The
normalized events the seat produces are printed one per line, followed by
the final cursor state. Time is virtual, so idle timeouts are exact.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		only := make(map[string]bool, len(replayKinds))
		for _, k := range replayKinds {
			only[k] = true
		}

		for _, path := range args {
			s, err := replay.Load(path)
			if err != nil {
				return err
			}
			result, err := replay.Run(s)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if len(only) > 0 {
				result.Events = filterKinds(result.Events, only)
			}
			if err := result.Print(os.Stdout); err != nil {
				return err
			}
			logger.Debugf("Replayed %s: %d event(s)", path, len(result.Events))
		}
		return nil
	},
}

func init() {
	replayCmd.Flags().StringSliceVarP(&replayKinds, "kind", "k", nil, "Only print these event kinds, e.g. motion,button")
	rootCmd.AddCommand(replayCmd)
}

func filterKinds(events []dispatch.Event, only map[string]bool) []dispatch.Event {
	out := events[:0]
	for _, ev := range events {
		if only[ev.Kind.String()] {
			out = append(out, ev)
		}
	}
	return out
}
