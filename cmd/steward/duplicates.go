// Duplicates command: advisory duplicate detection for capabilities.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/steward/internal/doctor"
)

var duplicatesCompare []string

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "Find capabilities that look like the same thing",
	Long: `Duplicates flags capability pairs whose names differ only in case or
separators, or whose keyword sets overlap heavily. With --compare it
gathers file statistics for two capability directories and recommends
which to keep. Nothing is ever merged or removed automatically.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := newDoctor()
		if len(duplicatesCompare) == 2 {
			cmp, err := d.CompareDirs(duplicatesCompare[0], duplicatesCompare[1])
			if err != nil {
				return err
			}
			printStats := func(id string, s doctor.DirStats) {
				modified := "never"
				if !s.LastModified.IsZero() {
					modified = s.LastModified.Format("2006-01-02 15:04:05")
				}
				fmt.Printf("%s: %d files, %d bytes, depth %d, readme: %s, tests: %s, modified: %s\n",
					id, s.Files, s.Bytes, s.MaxDepth, onOff(s.HasReadme), onOff(s.HasTests), modified)
			}
			printStats(duplicatesCompare[0], cmp.A)
			printStats(duplicatesCompare[1], cmp.B)
			fmt.Println(cmp.Recommendation)
			return nil
		}

		pairs, err := d.FindDuplicates()
		if err != nil {
			return err
		}
		if len(pairs) == 0 {
			fmt.Println("No likely duplicates found.")
			return nil
		}
		for _, pair := range pairs {
			fmt.Printf("%s / %s: %s\n", pair.A, pair.B, pair.Reason)
		}
		fmt.Printf("\n%d likely duplicate pair(s). Compare with --compare <a> <b>.\n", len(pairs))
		return nil
	},
}

func init() {
	duplicatesCmd.Flags().StringSliceVar(&duplicatesCompare, "compare", nil, "two capability ids to compare")
}
