// Version command for the steward CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/steward/pkg/steward"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the steward version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("steward", steward.Version)
	},
}
