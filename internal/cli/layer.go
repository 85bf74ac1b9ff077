package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/csoc-tools/attacksheet/internal/attack"
	"github.com/csoc-tools/attacksheet/internal/sheet"
)

var (
	layerName             string
	layerDescription      string
	layerIncludePlatforms []string
	layerExcludePlatforms []string
)

var layerCmd = &cobra.Command{
	Use:   "layer <infile> <sheet> <outfile>",
	Short: "Build a Navigator layer from a scored worksheet",
	Long: `Read a worksheet of scored techniques and write an ATT&CK Navigator layer
document. The worksheet needs a techniqueID column; color, enabled, score,
and comment columns are carried into the layer when present.

Examples:
  # Layer from the "scores" worksheet
  attacksheet layer attack.xlsx scores layer.json

  # Named layer restricted to the platforms the viewer should show
  attacksheet layer attack.xlsx scores layer.json --name "Coverage" --include-platforms Windows`,
	Args: cobra.ExactArgs(3),
	RunE: runLayer,
}

func init() {
	layerCmd.Flags().StringVar(&layerName, "name", "attacksheet layer",
		"Name of the layer")
	layerCmd.Flags().StringVar(&layerDescription, "description", "",
		"Description of the layer")
	layerCmd.Flags().StringSliceVar(&layerIncludePlatforms, "include-platforms", nil,
		"Platforms the layer should display")
	layerCmd.Flags().StringSliceVar(&layerExcludePlatforms, "exclude-platforms", nil,
		"Platforms the layer should hide")
}

func runLayer(cmd *cobra.Command, args []string) error {
	infile, sheetName, outfile := args[0], args[1], args[2]

	table, err := sheet.Read(infile, sheetName)
	if err != nil {
		return err
	}

	meta := attack.Metadata{Name: layerName, Description: layerDescription}
	if !cmd.Flags().Changed("name") && cfg.LayerName != "" {
		meta.Name = cfg.LayerName
	}
	if !cmd.Flags().Changed("description") && cfg.LayerDescription != "" {
		meta.Description = cfg.LayerDescription
	}

	layer, err := attack.Assemble(table.Columns, table.Rows, meta, domain,
		filterSpec(layerIncludePlatforms, layerExcludePlatforms))
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(layer, "", " ")
	if err != nil {
		return fmt.Errorf("failed to marshal layer: %w", err)
	}
	if err := os.WriteFile(outfile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write layer file: %w", err)
	}

	fmt.Printf("ATT&CK Navigator layer file written to %q with %d techniques.\n",
		outfile, len(layer.Techniques))
	return nil
}
