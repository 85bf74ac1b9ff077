package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/csoc-tools/attacksheet/internal/attack"
)

var (
	// Global flags
	configPath string
	domain     string
	verbose    bool

	// Shared resources
	cfg    *Config
	logger *zap.SugaredLogger
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "attacksheet",
	Short: "Bridge MITRE ATT&CK, Excel, and the Navigator",
	Long: `attacksheet converts the MITRE ATT&CK knowledge base into a relational
Excel workbook for manual scoring, and scored worksheets back into ATT&CK
Navigator layer documents.

Examples:
  # Download the Enterprise matrix into a workbook
  attacksheet seed attack.xlsx

  # Seed the ICS matrix, techniques only, Windows hosts only
  attacksheet seed ics.xlsx --domain ics-attack --include-subtechniques=false --include-platforms Windows

  # Turn a scored worksheet into a Navigator layer
  attacksheet layer attack.xlsx scores layer.json --name "Control gaps"`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		if err := initLogger(); err != nil {
			return err
		}

		var err error
		cfg, err = LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Flag wins over config, config over the built-in default.
		if !cmd.Flags().Changed("domain") && cfg.Domain != "" {
			domain = cfg.Domain
		}

		return nil
	},
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", findConfigFile(),
		"Path to a YAML defaults file")
	rootCmd.PersistentFlags().StringVarP(&domain, "domain", "d", attack.DomainEnterprise,
		"ATT&CK domain: enterprise-attack, mobile-attack, or ics-attack")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log diagnostics while running")

	// Add subcommands
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(layerCmd)
	rootCmd.AddCommand(versionCmd)
}

func initLogger() error {
	zcfg := zap.NewProductionConfig()
	if verbose {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	l, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	logger = l.Sugar()
	return nil
}

// findConfigFile locates a defaults file, or returns empty for none
func findConfigFile() string {
	candidates := []string{
		"attacksheet.yaml",
		filepath.Join(os.Getenv("HOME"), ".attacksheet", "config.yaml"),
	}

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}

	return ""
}

// filterSpec builds the platform filter from command flags, falling back to
// the config file when neither flag was used.
func filterSpec(include, exclude []string) attack.FilterSpec {
	spec := attack.FilterSpec{Include: include, Exclude: exclude}
	if spec.IsZero() && cfg != nil {
		spec.Include = cfg.IncludePlatforms
		spec.Exclude = cfg.ExcludePlatforms
	}
	return spec
}
