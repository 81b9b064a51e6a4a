package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/bnema/waycursor/internal/backend/evdev"
	"github.com/bnema/waycursor/internal/config"
	"github.com/bnema/waycursor/internal/ui"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the input devices a seat can drive",
	Long: `List the pointer, touch and tablet devices found in the input directory,
with the identifier used by [[inputs]] config entries.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()

		candidates, err := evdev.ListCandidates(cfg.Devices.InputDir)
		if err != nil {
			return err
		}

		var output strings.Builder
		output.WriteString(ui.HeaderStyle.Render("INPUT DEVICES"))
		output.WriteString("\n")

		if len(candidates) == 0 {
			output.WriteString(ui.SubtleStyle.Render("No pointer, touch or tablet devices found"))
			output.WriteString("\n")
			fmt.Println(output.String())
			return reportAccess(cfg.Devices.InputDir)
		}

		output.WriteString(devicesTable(candidates, cfg.Devices.Paths).String())
		output.WriteString("\n\n")
		output.WriteString(ui.SubtleStyle.Render(fmt.Sprintf("Total: %d device(s)", len(candidates))))
		fmt.Println(output.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

// devicesTable renders candidates, marking the ones listed in configured.
func devicesTable(candidates []evdev.Candidate, configured []string) *table.Table {
	chosen := make(map[string]bool, len(configured))
	for _, p := range configured {
		chosen[p] = true
	}

	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		marker := ""
		if chosen[c.Path] || (c.Symlink != "" && chosen[c.Symlink]) {
			marker = ui.IconSuccess
		}
		rows = append(rows, []string{c.Path, c.Class.String(), c.Name, c.Identifier(), marker})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ui.ColorSubtle)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return ui.TableHeaderStyle
			case col == 0:
				return ui.TableCellStyle.Foreground(ui.ColorInfo)
			case col == 4:
				return ui.TableCellStyle.Foreground(ui.ColorSuccess).Bold(true)
			default:
				return ui.TableCellStyle
			}
		}).
		Headers("NODE", "CLASS", "NAME", "IDENTIFIER", "CONFIGURED").
		Rows(rows...)
}

// reportAccess explains why nodes may be missing from the list.
func reportAccess(inputDir string) error {
	report, err := evdev.CheckAccess(inputDir)
	if err != nil {
		return err
	}
	if report.OK() {
		return nil
	}
	fmt.Println(ui.WarningStyle.Render(fmt.Sprintf("%s %d node(s) could not be opened:", ui.IconWarning, len(report.Denied))))
	for _, path := range report.Denied {
		fmt.Println("   " + ui.SubtleStyle.Render(path))
	}
	fmt.Println("   Run 'waycursor setup' for help")
	return nil
}
