package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/csoc-tools/attacksheet/internal/attack"
	"github.com/csoc-tools/attacksheet/internal/sheet"
)

var (
	seedIncludeSubtechniques bool
	seedIncludePlatforms     []string
	seedExcludePlatforms     []string
	seedBundlePath           string
	seedCacheDir             string
)

var seedCmd = &cobra.Command{
	Use:   "seed <outfile>",
	Short: "Download ATT&CK and write it as a relational workbook",
	Long: `Download the latest ATT&CK knowledge base for a domain and flatten it into
an Excel workbook with three worksheets in relational form: techniques,
dataSources, and techniquesToDataSources.

Examples:
  # Enterprise matrix, everything
  attacksheet seed attack.xlsx

  # Mobile matrix without sub-techniques
  attacksheet seed mobile.xlsx --domain mobile-attack --include-subtechniques=false

  # Only techniques touching Windows or Linux
  attacksheet seed attack.xlsx --include-platforms Windows --include-platforms Linux

  # Work from a bundle already on disk
  attacksheet seed attack.xlsx --bundle enterprise-attack.json`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedIncludeSubtechniques, "include-subtechniques", true,
		"Keep sub-techniques in the output")
	seedCmd.Flags().StringSliceVar(&seedIncludePlatforms, "include-platforms", nil,
		"Keep only techniques touching one of these platforms")
	seedCmd.Flags().StringSliceVar(&seedExcludePlatforms, "exclude-platforms", nil,
		"Drop techniques touching any of these platforms")
	seedCmd.Flags().StringVar(&seedBundlePath, "bundle", "",
		"Read the STIX bundle from a local file instead of downloading")
	seedCmd.Flags().StringVar(&seedCacheDir, "cache-dir", "",
		"Directory for cached bundle downloads (default ~/.attacksheet/cache)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	outfile := args[0]

	client := attack.NewClient(cacheDir(), logger)

	var (
		objects []any
		err     error
	)
	if seedBundlePath != "" {
		objects, err = client.LoadBundle(seedBundlePath)
	} else {
		objects, err = client.Fetch(domain)
	}
	if err != nil {
		return err
	}

	tables, err := attack.Normalize(objects, domain, seedIncludeSubtechniques,
		filterSpec(seedIncludePlatforms, seedExcludePlatforms))
	if err != nil {
		return err
	}

	if err := sheet.Write(outfile, seedWorksheets(tables)); err != nil {
		return err
	}

	fmt.Printf("Excel workbook created at %q with %d techniques.\n", outfile, len(tables.Techniques))
	return nil
}

// seedWorksheets lays the relational tables out as worksheets.
func seedWorksheets(tables *attack.Tables) []*sheet.Table {
	techniques := &sheet.Table{
		Name:    "techniques",
		Columns: []string{"techniqueID", "name", "description", "isSubtechnique", "tactics", "platforms"},
	}
	for _, t := range tables.Techniques {
		techniques.Rows = append(techniques.Rows, map[string]string{
			"techniqueID":    t.ID,
			"name":           t.Name,
			"description":    t.Description,
			"isSubtechnique": strconv.FormatBool(t.IsSubtechnique),
			"tactics":        strings.Join(t.Tactics, ", "),
			"platforms":      strings.Join(t.Platforms, ", "),
		})
	}

	links := &sheet.Table{
		Name:    "techniquesToDataSources",
		Columns: []string{"techniqueID", "dataSourceName"},
	}
	for _, l := range tables.Links {
		links.Rows = append(links.Rows, map[string]string{
			"techniqueID":    l.TechniqueID,
			"dataSourceName": l.DataSourceName,
		})
	}

	sources := &sheet.Table{
		Name:    "dataSources",
		Columns: []string{"dataSourceName"},
	}
	for _, name := range tables.DataSources {
		sources.Rows = append(sources.Rows, map[string]string{"dataSourceName": name})
	}

	return []*sheet.Table{techniques, links, sources}
}

func cacheDir() string {
	if seedCacheDir != "" {
		return seedCacheDir
	}
	if cfg != nil && cfg.CacheDir != "" {
		return cfg.CacheDir
	}
	return filepath.Join(os.Getenv("HOME"), ".attacksheet", "cache")
}
