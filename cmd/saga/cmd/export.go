/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [file.tsv]",
	Short: "Write the notes table as tab-separated text",
	Long: `Write the notes table from the data directory to the given file, or
to stdout when no file is named.

Examples:
  saga export backup.tsv
  saga export > backup.tsv`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		notes, err := openNotes(cfg.DataDir)
		if err != nil {
			return err
		}
		defer notes.Close()

		if len(args) == 0 {
			return notes.Save(os.Stdout)
		}
		if err := notes.SaveFile(args[0]); err != nil {
			return err
		}
		cmd.Printf("Exported %d records to %s\n", notes.Len(), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
