package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/camviz/edgeview/internal/render"
	"github.com/camviz/edgeview/internal/store"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List render modes and orientations",
	Long: `List the render modes and draw orientations EdgeView supports.

Modes select which frame variant is displayed; orientations select the
draw-time rotation or flip applied on top.`,
	Example: `  # List modes in table format (default)
  edgeview modes

  # List modes in JSON format
  edgeview modes --format json`,
	RunE: runModes,
}

var modesFormat string

func init() {
	rootCmd.AddCommand(modesCmd)

	modesCmd.Flags().StringVarP(&modesFormat, "format", "f", "table", "output format (table or json)")
}

type modeInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func renderModes() []modeInfo {
	return []modeInfo{
		{store.ModeRawCamera.String(), "unprocessed camera frame"},
		{store.ModeGrayscale.String(), "grayscale conversion"},
		{store.ModeEdgeDetection.String(), "Canny edge detection"},
		{store.ModeDefault.String(), "processed variant with default presentation"},
		{store.ModeInset.String(), "processed variant with half-texel coordinate inset"},
		{store.ModeBorderFix.String(), "processed variant with blacked-out texture border"},
	}
}

func orientations() []modeInfo {
	return []modeInfo{
		{render.OrientationNormal.String(), "no correction"},
		{render.OrientationFlippedVertical.String(), "vertical flip"},
		{render.OrientationRotated90.String(), "90 degree rotation"},
		{render.OrientationRotated180.String(), "180 degree rotation"},
		{render.OrientationRotated270.String(), "270 degree rotation"},
	}
}

func runModes(cmd *cobra.Command, args []string) error {
	switch modesFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string][]modeInfo{
			"modes":        renderModes(),
			"orientations": orientations(),
		})
	case "table":
		return printModesTable()
	default:
		return fmt.Errorf("unsupported format: %s (use 'table' or 'json')", modesFormat)
	}
}

func printModesTable() error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "MODE\tDESCRIPTION")
	fmt.Fprintln(w, "----\t-----------")
	for _, m := range renderModes() {
		fmt.Fprintf(w, "%s\t%s\n", m.Name, m.Description)
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "ORIENTATION\tDESCRIPTION")
	fmt.Fprintln(w, "-----------\t-----------")
	for _, o := range orientations() {
		fmt.Fprintf(w, "%s\t%s\n", o.Name, o.Description)
	}

	return nil
}
