// Report and journal commands.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a markdown configuration report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := newReporter().Generate()
		if err != nil {
			return err
		}
		fmt.Println("Report written to", path)
		return nil
	},
}

var journalLimit int

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show recent mutations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := jour.Recent(journalLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("Journal is empty.")
			return nil
		}
		w := newTable("WHEN", "KIND", "ITEM", "OP", "DETAIL")
		for _, e := range entries {
			detail := e.Detail
			if detail == "" {
				detail = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				e.At.Format("2006-01-02 15:04:05"), e.Kind, e.Item, e.Op, detail)
		}
		return w.Flush()
	},
}

func init() {
	journalCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "maximum entries to show")
}
