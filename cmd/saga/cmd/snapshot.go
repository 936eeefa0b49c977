/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"path/filepath"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
	"github.com/ssargent/sagadb/pkg/snapshot"
	"github.com/ssargent/sagadb/pkg/table"
)

// snapshotCmd groups the snapshot subcommands
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save, list, and restore snapshots of the notes table",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the current notes table as a snapshot",
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

		var buf bytes.Buffer
		if err := notes.Save(&buf); err != nil {
			return err
		}

		store, err := snapshot.Open(snapshotDBPath(cfg.DataDir))
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := store.Save("notes", buf.Bytes())
		if err != nil {
			return err
		}
		cmd.Printf("Snapshot %s saved (%d records)\n", id, notes.Len())
		return nil
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved snapshots, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		store, err := snapshot.Open(snapshotDBPath(cfg.DataDir))
		if err != nil {
			return err
		}
		defer store.Close()

		ids, err := store.List("notes")
		if err != nil {
			return err
		}
		for _, id := range ids {
			cmd.Printf("%s  %s\n", id, id.Time().Format("2006-01-02 15:04:05"))
		}
		if len(ids) == 0 {
			cmd.Println("No snapshots saved.")
		}
		return nil
	},
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore [snapshot-id]",
	Short: "Replace the notes table with a snapshot",
	Long: `Replace the notes table in the data directory with a saved snapshot.
Without an argument the most recent snapshot is restored.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		store, err := snapshot.Open(snapshotDBPath(cfg.DataDir))
		if err != nil {
			return err
		}
		defer store.Close()

		var payload []byte
		if len(args) == 1 {
			id, err := ksuid.Parse(args[0])
			if err != nil {
				return err
			}
			payload, err = store.Load("notes", id)
			if err != nil {
				return err
			}
		} else {
			_, payload, err = store.Latest("notes")
			if err != nil {
				return err
			}
		}

		notes := table.New(NoteSchema)
		defer notes.Close()
		if err := notes.Load(bytes.NewReader(payload)); err != nil {
			return err
		}
		if err := notes.SaveFile(notesPath(cfg.DataDir)); err != nil {
			return err
		}
		cmd.Printf("Restored %d records\n", notes.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotRestoreCmd)
}

// snapshotDBPath returns the pebble database directory for snapshots.
func snapshotDBPath(dataDir string) string {
	return filepath.Join(dataDir, "snapshots")
}
