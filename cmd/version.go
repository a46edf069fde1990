package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"

	"github.com/abhisek/mathia/internal/knowledge"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		v := version
		if !semver.IsValid(v) {
			v += " (development build)"
		}
		fmt.Println("mathia", v)
		fmt.Printf("knowledge bank %s (reads %s.x)\n", knowledge.Default().Version(), knowledge.SupportedMajor)
	},
}
