package evdev

import (
	"fmt"
	"os"
	"path/filepath"

	goevdev "github.com/gvalkov/golang-evdev"

	"github.com/bnema/waycursor/internal/device"
)

// Candidate is an input node the seat could drive.
type Candidate struct {
	Path    string
	Name    string
	Vendor  uint16
	Product uint16
	Class   device.Class
	Symlink string
}

// Identifier returns the "vendor:product:name" string used by input config
// entries.
func (c Candidate) Identifier() string {
	d := device.Device{Name: c.Name, Vendor: c.Vendor, Product: c.Product}
	return d.Identifier()
}

// Describe returns a human readable label for the candidate.
func (c Candidate) Describe() string {
	if c.Symlink != "" {
		return fmt.Sprintf("%s [%s] (%s → %s)", c.Name, c.Class, c.Symlink, c.Path)
	}
	return fmt.Sprintf("%s [%s] (%s)", c.Name, c.Class, c.Path)
}

// ListCandidates returns the pointer, touch and tablet nodes in inputDir.
// Nodes that cannot be opened are skipped.
func ListCandidates(inputDir string) ([]Candidate, error) {
	if inputDir == "" {
		inputDir = DefaultInputDir
	}
	nodes, err := goevdev.ListInputDevices(filepath.Join(inputDir, "event*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list input devices: %w", err)
	}

	var out []Candidate
	for _, node := range nodes {
		class, ok := Classify(node.Name, Capabilities(node.CapabilitiesFlat))
		node.File.Close()
		if !ok || class == device.ClassKeyboard {
			continue
		}
		out = append(out, Candidate{
			Path:    node.Fn,
			Name:    node.Name,
			Vendor:  node.Vendor,
			Product: node.Product,
			Class:   class,
			Symlink: FindSymlink(inputDir, node.Fn),
		})
	}
	return out, nil
}

// FindSymlink returns the stable by-id or by-path name of a device node.
func FindSymlink(inputDir, devicePath string) string {
	for _, sub := range []string{"by-id", "by-path"} {
		if link := findSymlinkInDir(devicePath, filepath.Join(inputDir, sub)); link != "" {
			return link
		}
	}
	return ""
}

func findSymlinkInDir(devicePath, dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	for _, entry := range entries {
		if entry.Type()&os.ModeSymlink == 0 {
			continue
		}
		fullPath := filepath.Join(dir, entry.Name())
		target, err := os.Readlink(fullPath)
		if err != nil {
			continue
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(dir, target)
		}
		if filepath.Clean(target) == devicePath {
			return fullPath
		}
	}
	return ""
}
