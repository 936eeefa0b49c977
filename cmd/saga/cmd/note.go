/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"path/filepath"

	"github.com/ssargent/sagadb/pkg/codec"
	"github.com/ssargent/sagadb/pkg/table"
)

// Note is the record type the CLI ships with: a writing reference
// note about a character, place, or group.
type Note struct {
	Title    string
	Kind     uint64
	Summary  string
	Pinned   bool
	Revision int64
}

// NoteKinds are the variants of the Kind enum, in ordinal order.
var NoteKinds = []string{"character", "place", "group"}

// NoteSchema describes Note to the codec.
var NoteSchema = codec.MustSchema[Note]("notes",
	codec.StringField("title",
		func(n *Note) string { return n.Title },
		func(n *Note, v string) { n.Title = v }),
	codec.EnumField("kind", NoteKinds,
		func(n *Note) uint64 { return n.Kind },
		func(n *Note, v uint64) { n.Kind = v }),
	codec.StringField("summary",
		func(n *Note) string { return n.Summary },
		func(n *Note, v string) { n.Summary = v }),
	codec.BoolField("pinned",
		func(n *Note) bool { return n.Pinned },
		func(n *Note, v bool) { n.Pinned = v }),
	codec.IntField("revision", 32,
		func(n *Note) int64 { return n.Revision },
		func(n *Note, v int64) { n.Revision = int64(int32(v)) }),
)

// notesPath returns the canonical notes file inside the data directory.
func notesPath(dataDir string) string {
	return filepath.Join(dataDir, "notes.tsv")
}

// openNotes loads the notes table from the data directory. A missing
// file yields an empty table.
func openNotes(dataDir string) (*table.Table[Note], error) {
	notes := table.New(NoteSchema)
	path := notesPath(dataDir)
	if err := notes.LoadFile(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	return notes, nil
}
