package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/waycursor/internal/backend/evdev"
	"github.com/bnema/waycursor/internal/config"
	"github.com/bnema/waycursor/internal/inject"
	"github.com/bnema/waycursor/internal/ui"
)

var setupSkipSelect bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Check device access and choose the devices to drive",
	Long: `Check that the input devices can be read, explain how to fix access
problems, and store the chosen devices in the configuration file.

waycursor reads /dev/input/event* directly. That needs root, membership of
the input group, or CAP_DAC_OVERRIDE on the binary.`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVar(&setupSkipSelect, "check", false, "Only check access, do not select devices")
	rootCmd.AddCommand(setupCmd)
}

// setupStep is one checked item of the setup summary.
type setupStep struct {
	name    string
	ok      bool
	message string
}

// accessSteps turns an access report into summary lines and the actions the
// user still has to take.
func accessSteps(report evdev.AccessReport) (steps []setupStep, actions []string, relogin bool) {
	switch {
	case report.Root:
		steps = append(steps, setupStep{name: "Privileges", ok: true, message: "running as root"})
	case report.DACOverride:
		steps = append(steps, setupStep{name: "Privileges", ok: true, message: "CAP_DAC_OVERRIDE"})
	case report.InInputGroup:
		steps = append(steps, setupStep{name: "Privileges", ok: true, message: "member of the input group"})
	default:
		steps = append(steps, setupStep{name: "Privileges", ok: false, message: "not in the input group"})
		actions = append(actions, "Add yourself to the input group: sudo usermod -aG input $USER")
		relogin = true
	}

	switch {
	case report.OK() && len(report.Denied) == 0:
		steps = append(steps, setupStep{name: "Device access", ok: true, message: fmt.Sprintf("%d node(s) readable", len(report.Readable))})
	case report.OK():
		steps = append(steps, setupStep{name: "Device access", ok: true, message: fmt.Sprintf("%d readable, %d denied", len(report.Readable), len(report.Denied))})
	default:
		steps = append(steps, setupStep{name: "Device access", ok: false, message: "no readable event nodes"})
		if !relogin {
			actions = append(actions, "Check the permissions of the event nodes: ls -l /dev/input/event*")
		}
	}

	if report.UinputWritable {
		steps = append(steps, setupStep{name: "Virtual devices", ok: true, message: inject.DefaultUinputPath + " is writable"})
	} else {
		steps = append(steps, setupStep{name: "Virtual devices", ok: false, message: "needed by 'waycursor inject' only"})
		actions = append(actions, "Load uinput for 'waycursor inject': sudo modprobe uinput")
	}
	return steps, actions, relogin
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	fmt.Println(ui.FormatSetupHeader("waycursor Setup"))

	fmt.Println(ui.FormatSetupPhase("Checking device access"))
	report, err := evdev.CheckAccess(cfg.Devices.InputDir)
	if err != nil {
		return err
	}
	steps, actions, relogin := accessSteps(report)
	allOK := true
	for _, step := range steps {
		fmt.Println(ui.FormatSetupResult(step.ok, step.name, step.message))
		// uinput is optional
		if !step.ok && step.name != "Virtual devices" {
			allOK = false
		}
	}
	fmt.Println()

	if !setupSkipSelect && report.OK() {
		fmt.Println(ui.FormatSetupPhase("Selecting devices"))
		paths, err := ui.NewDeviceSelector(cfg.Devices.InputDir).SelectDevices(cfg.Devices.Paths)
		switch {
		case errors.Is(err, ui.ErrNoCandidates):
			fmt.Println(ui.FormatSetupResult(false, "Devices", err.Error()))
			allOK = false
		case err != nil:
			return err
		default:
			if err := config.SetDevicePaths(paths); err != nil {
				return err
			}
			fmt.Println(ui.FormatSetupResult(true, "Devices", fmt.Sprintf("%d saved to %s", len(paths), config.GetConfigPath())))
		}
		fmt.Println()
	}

	fmt.Println(ui.FormatSummaryStatus(allOK, relogin))
	if len(actions) > 0 {
		fmt.Println()
		fmt.Println(ui.FormatNextStepsHeader())
		for i, action := range actions {
			fmt.Println(ui.FormatActionItem(i+1, action))
		}
	}
	return nil
}
