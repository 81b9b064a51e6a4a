package evdev

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/syndtr/gocapability/capability"
)

// ErrNoAccess is returned when none of the input nodes can be opened.
var ErrNoAccess = errors.New("no access to input devices")

// AccessReport describes what the current process may do with input nodes.
type AccessReport struct {
	Root bool
	// CAP_DAC_OVERRIDE lets an unprivileged binary read any node.
	DACOverride  bool
	InInputGroup bool
	Readable     []string
	Denied       []string
	// UinputWritable is needed by the inject command only.
	UinputWritable bool
}

// OK reports whether at least one input node is readable.
func (r AccessReport) OK() bool {
	return len(r.Readable) > 0
}

func hasDACOverride() bool {
	caps, err := capability.NewPid2(0)
	if err != nil {
		return false
	}
	if err := caps.Load(); err != nil {
		return false
	}
	return caps.Get(capability.EFFECTIVE, capability.CAP_DAC_OVERRIDE)
}

func inInputGroup() bool {
	u, err := user.Current()
	if err != nil {
		return false
	}
	group, err := user.LookupGroup("input")
	if err != nil {
		return false
	}
	gids, err := u.GroupIds()
	if err != nil {
		return false
	}
	for _, gid := range gids {
		if gid == group.Gid {
			return true
		}
	}
	return false
}

// CheckAccess probes every event node under inputDir.
func CheckAccess(inputDir string) (AccessReport, error) {
	report := AccessReport{
		Root:         os.Geteuid() == 0,
		DACOverride:  hasDACOverride(),
		InInputGroup: inInputGroup(),
	}

	nodes, err := filepath.Glob(filepath.Join(inputDir, "event*"))
	if err != nil {
		return report, fmt.Errorf("failed to list %s: %w", inputDir, err)
	}
	for _, node := range nodes {
		f, err := os.Open(node)
		if err != nil {
			report.Denied = append(report.Denied, node)
			continue
		}
		f.Close()
		report.Readable = append(report.Readable, node)
	}

	if f, err := os.OpenFile("/dev/uinput", os.O_WRONLY, 0); err == nil {
		f.Close()
		report.UinputWritable = true
	}

	if !report.OK() {
		return report, fmt.Errorf("%w in %s: add the user to the input group or run 'waycursor setup'", ErrNoAccess, inputDir)
	}
	return report, nil
}
