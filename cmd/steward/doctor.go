// Doctor command: verify everything, optionally repair what is safe.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/steward/pkg/types"
)

var (
	doctorFix     bool
	doctorExplain bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Verify all resources and report issues",
	Long: `Doctor verifies every hook, capability, server, and instruction and
reports the issues it finds. With --fix it also repairs the safe subset:
stale registry entries are removed and unregistered items are registered.
Nothing is ever enabled, disabled, or deleted from a live store
automatically.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := newDoctor().Run(cmd.Context(), doctorFix)
		if err != nil {
			return err
		}
		if len(rep.Outcomes) == 0 {
			fmt.Printf("All clear: %d resources checked, no issues.\n", rep.Checked)
			return nil
		}

		for _, o := range rep.Outcomes {
			fmt.Printf("[%s] %s: %s\n", o.Kind, o.Item, o.Problem)
			if doctorExplain {
				fmt.Printf("    why: %s\n", o.Code.Explain())
			}
			switch {
			case o.Fixed:
				fmt.Printf("    fixed: %s\n", o.FixResult)
				record(o.Kind, o.Item, "fix", string(o.Code))
			case doctorFix && o.FixResult != "":
				fmt.Printf("    %s\n", o.FixResult)
			case o.Code.AutoFixable() && !doctorFix:
				fmt.Printf("    fixable: run with --fix, or %s\n", o.Fix)
			default:
				fmt.Printf("    suggestion: %s\n", o.Fix)
			}
		}
		fmt.Printf("\n%d resources checked, %d issues, %d fixed.\n",
			rep.Checked, len(rep.Outcomes), rep.FixedCount())
		return nil
	},
}

var discoverReport bool

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Register resources found in the live stores and on disk",
	Long: `Discover scans the host settings for hooks and the capabilities dir
for bundles that the registries do not know about and registers them.
Hooks are registered as unmanaged; capabilities start disabled. With
--report nothing is changed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		disc, err := newDoctor().Discover(discoverReport)
		if err != nil {
			return err
		}
		if disc.Empty() {
			fmt.Println("Nothing unregistered found.")
			return nil
		}
		verb := "registered"
		if disc.ReportOnly {
			verb = "would register"
		}
		for _, name := range disc.Hooks {
			fmt.Printf("%s hook %q\n", verb, name)
			if !disc.ReportOnly {
				record(types.KindHook, name, "discover", "")
			}
		}
		for _, id := range disc.Capabilities {
			fmt.Printf("%s capability %q\n", verb, id)
			if !disc.ReportOnly {
				record(types.KindCapability, id, "discover", "")
			}
		}
		return nil
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "repair auto-fixable issues")
	doctorCmd.Flags().BoolVar(&doctorExplain, "explain", false, "print the root cause of each issue")
	discoverCmd.Flags().BoolVar(&discoverReport, "report", false, "report findings without registering")
}
