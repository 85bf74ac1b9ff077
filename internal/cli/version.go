package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/csoc-tools/attacksheet/internal/attack"
)

var (
	// Version is set at build time
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("attacksheet version %s\n", Version)
		if verbose {
			fmt.Printf("  Git commit:   %s\n", GitCommit)
			fmt.Printf("  Build date:   %s\n", BuildDate)
			fmt.Printf("  Layer format: %s (navigator %s, attack %s)\n",
				attack.LayerFormatVersion, attack.NavigatorVersion, attack.AttackContentVersion)
		}
	},
}
