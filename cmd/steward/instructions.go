// Instruction commands: list, add, remove, enable, disable, verify, show,
// match.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/steward/pkg/types"
)

var (
	insName     string
	insKeywords []string
	insBody     string
	insPriority int
)

var instructionsCmd = &cobra.Command{
	Use:   "instructions",
	Short: "Manage instruction files",
}

var instructionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List instructions with derived status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		infos, err := instructionManager().List()
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Println("No instructions found.")
			return nil
		}
		w := newTable("ID", "PRIORITY", "KEYWORDS", "FILE", "STATUS")
		for _, info := range infos {
			id := info.ID
			if id == "" {
				id = "-"
			}
			keywords := strings.Join(info.Keywords, ",")
			if keywords == "" {
				keywords = "-"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", id, info.Priority, keywords, info.File, info.Status)
		}
		return w.Flush()
	},
}

var instructionsAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Create an instruction file",
	Long: `Add writes a new instruction file <id>.md with a frontmatter header
and the given body.

Example:
  steward instructions add git-commits --keyword commit --keyword git --body 'Use imperative mood.'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := instructionManager().Add(args[0], insName, insKeywords, insBody, insPriority)
		return finish(res, err, types.KindInstruction, args[0], "add")
	},
}

var instructionsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an instruction, archiving its file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := instructionManager().Remove(args[0])
		return finish(res, err, types.KindInstruction, args[0], "remove")
	},
}

var instructionsEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Enable an instruction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := instructionManager().Enable(args[0])
		return finish(res, err, types.KindInstruction, args[0], "enable")
	},
}

var instructionsDisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Disable an instruction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := instructionManager().Disable(args[0])
		return finish(res, err, types.KindInstruction, args[0], "disable")
	},
}

var instructionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print an instruction's body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, body, ok, err := instructionManager().Get(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return failUser("instruction " + args[0] + " not found")
		}
		fmt.Printf("%s (priority %d, %s)\n\n", info.Name, info.Priority, info.Status)
		fmt.Print(body)
		return nil
	},
}

var instructionsMatchCmd = &cobra.Command{
	Use:   "match <prompt>",
	Short: "Show which instructions a prompt would activate",
	Long: `Match runs the keyword matcher the host would run: enabled
instructions whose keywords appear in the prompt, ordered by priority.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		matched, err := instructionManager().Match(args[0])
		if err != nil {
			return err
		}
		if len(matched) == 0 {
			fmt.Println("No instructions match.")
			return nil
		}
		w := newTable("ID", "PRIORITY", "NAME")
		for _, info := range matched {
			fmt.Fprintf(w, "%s\t%d\t%s\n", info.ID, info.Priority, info.Name)
		}
		return w.Flush()
	},
}

var instructionsVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check instruction files for problems",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		issues, err := instructionManager().Verify()
		return printIssues(issues, err)
	},
}

func init() {
	instructionsAddCmd.Flags().StringVar(&insName, "name", "", "display name (default: the id)")
	instructionsAddCmd.Flags().StringArrayVar(&insKeywords, "keyword", nil, "matching keyword (repeatable, at least one)")
	instructionsAddCmd.Flags().StringVar(&insBody, "body", "", "instruction body markdown")
	instructionsAddCmd.Flags().IntVar(&insPriority, "priority", 0, "match priority, lower first (default 10)")

	instructionsCmd.AddCommand(instructionsListCmd)
	instructionsCmd.AddCommand(instructionsAddCmd)
	instructionsCmd.AddCommand(instructionsRemoveCmd)
	instructionsCmd.AddCommand(instructionsEnableCmd)
	instructionsCmd.AddCommand(instructionsDisableCmd)
	instructionsCmd.AddCommand(instructionsShowCmd)
	instructionsCmd.AddCommand(instructionsVerifyCmd)
	instructionsCmd.AddCommand(instructionsMatchCmd)
}
