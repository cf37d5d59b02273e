package cli

import (
	"cmp"
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build version and date",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("NoteVault\nVersion: %s\nBuild Date: %s\n",
			cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
