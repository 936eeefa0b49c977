/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/ssargent/sagadb/pkg/table"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <file.tsv>",
	Short: "Validate a record file against the notes schema",
	Long: `Parse a tab-separated record file with the notes schema and report
the number of valid records. The file is not modified and nothing is
written to the data directory.

Examples:
  saga check notes.tsv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		notes := table.New(NoteSchema)
		defer notes.Close()

		if err := notes.LoadFile(args[0]); err != nil {
			return err
		}
		cmd.Printf("%s: %d records OK\n", args[0], notes.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
