// Hook commands: list, add, remove, enable, disable, verify.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/steward/pkg/types"
)

var (
	hookName        string
	hookEvent       string
	hookMatcher     string
	hookAsync       bool
	hookDescription string
)

var hooksCmd = &cobra.Command{
	Use:   "hooks",
	Short: "Manage hook commands in the host settings",
}

var hooksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List hooks with derived status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		infos, err := hookManager().List()
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Println("No hooks found.")
			return nil
		}
		w := newTable("NAME", "EVENT", "MATCHER", "ASYNC", "STATUS")
		for _, info := range infos {
			matcher := info.Matcher
			if matcher == "" {
				matcher = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				info.Name, info.Event, matcher, onOff(info.Async), info.Status)
		}
		return w.Flush()
	},
}

var hooksAddCmd = &cobra.Command{
	Use:   "add <command>",
	Short: "Register a hook and activate it",
	Long: `Add registers a hook command in the registry and activates it in the
host settings. The name is derived from the script filename unless --name
is given.

Example:
  steward hooks add --event Stop 'node ~/.agent/hooks/notify.js'
  steward hooks add --event PreToolUse --matcher Bash 'node ~/.agent/hooks/guard.js'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		item := hookName
		if item == "" {
			item = args[0]
		}
		res, err := hookManager().Add(hookName, hookEvent, hookMatcher, args[0], hookDescription, hookAsync)
		return finish(res, err, types.KindHook, item, "add")
	},
}

var hooksRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a hook, archiving its script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := hookManager().Remove(args[0])
		return finish(res, err, types.KindHook, args[0], "remove")
	},
}

var hooksEnableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Activate a registered hook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := hookManager().Enable(args[0])
		return finish(res, err, types.KindHook, args[0], "enable")
	},
}

var hooksDisableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Deactivate a hook, keeping its registry entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := hookManager().Disable(args[0])
		return finish(res, err, types.KindHook, args[0], "disable")
	},
}

var hooksVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check hooks for problems",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		issues, err := hookManager().Verify(cmd.Context())
		return printIssues(issues, err)
	},
}

func init() {
	hooksAddCmd.Flags().StringVar(&hookName, "name", "", "hook name (default: derived from the script filename)")
	hooksAddCmd.Flags().StringVar(&hookEvent, "event", "", "host event to fire on (required)")
	hooksAddCmd.Flags().StringVar(&hookMatcher, "matcher", "", "tool matcher for PreToolUse/PostToolUse")
	hooksAddCmd.Flags().BoolVar(&hookAsync, "async", false, "run the hook without blocking the host")
	hooksAddCmd.Flags().StringVar(&hookDescription, "description", "", "free-text description")
	_ = hooksAddCmd.MarkFlagRequired("event")

	hooksCmd.AddCommand(hooksListCmd)
	hooksCmd.AddCommand(hooksAddCmd)
	hooksCmd.AddCommand(hooksRemoveCmd)
	hooksCmd.AddCommand(hooksEnableCmd)
	hooksCmd.AddCommand(hooksDisableCmd)
	hooksCmd.AddCommand(hooksVerifyCmd)
}
