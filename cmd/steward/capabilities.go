// Capability commands: list, add, remove, enable, disable, verify.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/steward/pkg/types"
)

var (
	capName     string
	capKeywords []string
	capEnabled  bool
)

var capabilitiesCmd = &cobra.Command{
	Use:     "capabilities",
	Aliases: []string{"caps"},
	Short:   "Manage capability bundles",
}

var capabilitiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List capabilities with derived status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		infos, err := capabilityManager().List()
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Println("No capabilities found.")
			return nil
		}
		w := newTable("ID", "KEYWORDS", "ENABLED", "STATUS")
		for _, info := range infos {
			keywords := strings.Join(info.Keywords, ",")
			if keywords == "" {
				keywords = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.ID, keywords, onOff(info.Enabled), info.Status)
		}
		return w.Flush()
	},
}

var capabilitiesAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Register a capability",
	Long: `Add registers a capability bundle. The backing directory under the
host's capabilities dir does not have to exist yet.

Example:
  steward capabilities add pdf-tools --keyword pdf --keyword extract --enabled`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := capabilityManager().Add(args[0], capName, capKeywords, capEnabled)
		return finish(res, err, types.KindCapability, args[0], "add")
	},
}

var capabilitiesRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a capability, archiving its files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := capabilityManager().Remove(args[0])
		return finish(res, err, types.KindCapability, args[0], "remove")
	},
}

var capabilitiesEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Enable a capability",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := capabilityManager().Enable(args[0])
		return finish(res, err, types.KindCapability, args[0], "enable")
	},
}

var capabilitiesDisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Disable a capability",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := capabilityManager().Disable(args[0])
		return finish(res, err, types.KindCapability, args[0], "disable")
	},
}

var capabilitiesVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check capabilities for problems",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		issues, err := capabilityManager().Verify()
		return printIssues(issues, err)
	},
}

func init() {
	capabilitiesAddCmd.Flags().StringVar(&capName, "name", "", "display name (default: the id)")
	capabilitiesAddCmd.Flags().StringArrayVar(&capKeywords, "keyword", nil, "matching keyword (repeatable)")
	capabilitiesAddCmd.Flags().BoolVar(&capEnabled, "enabled", false, "enable immediately")

	capabilitiesCmd.AddCommand(capabilitiesListCmd)
	capabilitiesCmd.AddCommand(capabilitiesAddCmd)
	capabilitiesCmd.AddCommand(capabilitiesRemoveCmd)
	capabilitiesCmd.AddCommand(capabilitiesEnableCmd)
	capabilitiesCmd.AddCommand(capabilitiesDisableCmd)
	capabilitiesCmd.AddCommand(capabilitiesVerifyCmd)
}
