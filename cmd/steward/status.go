// Status command: the cross-kind dashboard.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/steward/pkg/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a dashboard of everything steward manages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		hooks, err := hookManager().List()
		if err != nil {
			return err
		}
		caps, err := capabilityManager().List()
		if err != nil {
			return err
		}
		servers, err := serverManager().List()
		if err != nil {
			return err
		}
		instructions, err := instructionManager().List()
		if err != nil {
			return err
		}

		fmt.Printf("Host dir: %s\n", env.HostDir)
		fmt.Printf("Base dir: %s\n\n", env.BaseDir)

		hookCounts := map[types.Status]int{}
		for _, h := range hooks {
			hookCounts[h.Status]++
		}
		fmt.Printf("Hooks: %d (%d active, %d registered, %d orphaned)\n",
			len(hooks), hookCounts[types.StatusActive], hookCounts[types.StatusRegistered],
			hookCounts[types.StatusOrphanedLive])

		capCounts := map[types.Status]int{}
		for _, c := range caps {
			capCounts[c.Status]++
		}
		fmt.Printf("Capabilities: %d (%d healthy, %d disabled, %d orphaned)\n",
			len(caps), capCounts[types.StatusHealthy], capCounts[types.StatusDisabled],
			capCounts[types.StatusOrphanedRegistry]+capCounts[types.StatusOrphanedDisk])

		sup := supervisor()
		enabled, running := 0, 0
		for _, s := range servers {
			if s.Status == types.StatusManaged {
				enabled++
			}
			if _, ok, err := sup.Running(s.Name); err != nil {
				return err
			} else if ok {
				running++
			}
		}
		fmt.Printf("Servers: %d (%d enabled, %d running)\n", len(servers), enabled, running)

		insCounts := map[types.Status]int{}
		for _, i := range instructions {
			insCounts[i.Status]++
		}
		fmt.Printf("Instructions: %d (%d enabled, %d disabled, %d malformed)\n",
			len(instructions), insCounts[types.StatusManaged], insCounts[types.StatusDisabled],
			insCounts[types.StatusNoFrontmatter])

		if !flagVerbose {
			return nil
		}

		// Verbose: one line per item under each summary.
		if len(hooks) > 0 {
			fmt.Println()
			w := newTable("HOOK", "EVENT", "STATUS")
			for _, h := range hooks {
				fmt.Fprintf(w, "%s\t%s\t%s\n", h.Name, h.Event, h.Status)
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}
		if len(caps) > 0 {
			fmt.Println()
			w := newTable("CAPABILITY", "ENABLED", "STATUS")
			for _, c := range caps {
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, onOff(c.Enabled), c.Status)
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}
		if len(servers) > 0 {
			fmt.Println()
			w := newTable("SERVER", "AUTOSTART", "STATUS")
			for _, s := range servers {
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, onOff(s.AutoStart), s.Status)
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}
		if len(instructions) > 0 {
			fmt.Println()
			w := newTable("INSTRUCTION", "PRIORITY", "STATUS")
			for _, i := range instructions {
				id := i.ID
				if id == "" {
					id = i.File
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", id, i.Priority, i.Status)
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}
		return nil
	},
}
