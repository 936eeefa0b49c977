/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/ssargent/sagadb/pkg/table"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file.tsv>",
	Short: "Merge a record file into the notes table",
	Long: `Parse a tab-separated record file and merge it into the notes table
in the data directory. Records with identifiers already present
overwrite the stored records. With --replace the table is emptied
first.

Examples:
  saga import new-notes.tsv
  saga import notes.tsv --replace`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		replace, _ := cmd.Flags().GetBool("replace")

		// Validate the incoming file completely before touching the
		// stored table: a parse error mid-file must not leave a
		// half-merged notes file behind.
		incoming := table.New(NoteSchema)
		defer incoming.Close()
		if err := incoming.LoadFile(args[0]); err != nil {
			return err
		}

		notes, err := openNotes(cfg.DataDir)
		if err != nil {
			return err
		}
		defer notes.Close()

		if replace {
			notes.Clear()
		}
		for id, n := range incoming.All() {
			notes.AddWithID(id, *n)
		}

		if err := notes.SaveFile(notesPath(cfg.DataDir)); err != nil {
			return err
		}
		cmd.Printf("Imported %d records, table now holds %d\n", incoming.Len(), notes.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().Bool("replace", false, "Clear the stored table before importing")
}
