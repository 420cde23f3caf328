// Server commands: configuration editing plus process control.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/steward/pkg/types"
)

var (
	srvDescription string
	srvCommand     string
	srvArgs        []string
	srvTags        []string
	srvURL         string
	srvEnabled     bool
	srvAutoStart   bool
)

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "Manage server entries and their processes",
}

var serversListCmd = &cobra.Command{
	Use:   "list",
	Short: "List servers with status and runtime state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		infos, err := serverManager().List()
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Println("No servers found.")
			return nil
		}
		sup := supervisor()
		w := newTable("NAME", "TARGET", "AUTOSTART", "STATUS", "RUNNING")
		for _, info := range infos {
			target := info.Command
			if target == "" {
				target = info.URL
			}
			running := "-"
			if pid, ok, err := sup.Running(info.Name); err != nil {
				return err
			} else if ok {
				running = fmt.Sprintf("pid %d", pid)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				info.Name, target, onOff(info.AutoStart), info.Status, running)
		}
		return w.Flush()
	},
}

var serversAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a server entry",
	Long: `Add creates a server entry in the server store. An entry needs a
command to run or a url to connect to.

Example:
  steward servers add memory --command mcp-memory --arg --port --arg 9100 --enabled --auto-start
  steward servers add docs --url https://docs.example.com/mcp`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := serverManager().Add(args[0], types.ServerEntry{
			Description: srvDescription,
			Command:     srvCommand,
			Args:        srvArgs,
			Tags:        srvTags,
			Enabled:     srvEnabled,
			AutoStart:   srvAutoStart,
			URL:         srvURL,
		})
		return finish(res, err, types.KindServer, args[0], "add")
	},
}

var serversRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a server entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := serverManager().Remove(args[0])
		return finish(res, err, types.KindServer, args[0], "remove")
	},
}

var serversEnableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Enable a server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := serverManager().Enable(args[0])
		return finish(res, err, types.KindServer, args[0], "enable")
	},
}

var serversDisableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Disable a server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := serverManager().Disable(args[0])
		return finish(res, err, types.KindServer, args[0], "disable")
	},
}

var serversStartCmd = &cobra.Command{
	Use:   "start <name>",
	Short: "Start a server process",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := supervisor().Start(args[0])
		return finish(res, err, types.KindServer, args[0], "start")
	},
}

var serversStopCmd = &cobra.Command{
	Use:   "stop <name>",
	Short: "Stop a server process started by steward",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := supervisor().Stop(args[0])
		return finish(res, err, types.KindServer, args[0], "stop")
	},
}

var serversReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Stop tracked servers and start enabled auto-start entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := supervisor().Reload()
		return finish(res, err, types.KindServer, "all", "reload")
	},
}

var serversVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check server entries for problems",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		issues, err := serverManager().Verify()
		return printIssues(issues, err)
	},
}

func init() {
	serversAddCmd.Flags().StringVar(&srvDescription, "description", "", "free-text description")
	serversAddCmd.Flags().StringVar(&srvCommand, "command", "", "binary to run")
	serversAddCmd.Flags().StringArrayVar(&srvArgs, "arg", nil, "command argument (repeatable)")
	serversAddCmd.Flags().StringArrayVar(&srvTags, "tag", nil, "grouping tag (repeatable)")
	serversAddCmd.Flags().StringVar(&srvURL, "url", "", "remote server url")
	serversAddCmd.Flags().BoolVar(&srvEnabled, "enabled", false, "enable immediately")
	serversAddCmd.Flags().BoolVar(&srvAutoStart, "auto-start", false, "start on reload")

	serversCmd.AddCommand(serversListCmd)
	serversCmd.AddCommand(serversAddCmd)
	serversCmd.AddCommand(serversRemoveCmd)
	serversCmd.AddCommand(serversEnableCmd)
	serversCmd.AddCommand(serversDisableCmd)
	serversCmd.AddCommand(serversStartCmd)
	serversCmd.AddCommand(serversStopCmd)
	serversCmd.AddCommand(serversVerifyCmd)
	serversCmd.AddCommand(serversReloadCmd)
}
