/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ssargent/sagadb/pkg/query"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, optionally filtered",
	Long: `List notes from the data directory. Filters combine with AND and
use the schema field names.

Examples:
  saga list
  saga list --where "kind=place"
  saga list --where "revision>=3" --where "pinned=true"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		wheres, _ := cmd.Flags().GetStringArray("where")

		conds := make([]query.Condition, 0, len(wheres))
		for _, w := range wheres {
			c, err := parseCondition(w)
			if err != nil {
				return err
			}
			conds = append(conds, c)
		}

		notes, err := openNotes(cfg.DataDir)
		if err != nil {
			return err
		}
		defer notes.Close()

		results, err := query.Select(notes.All(), NoteSchema, conds...)
		if err != nil {
			return err
		}

		for _, r := range results {
			pin := " "
			if r.Record.Pinned {
				pin = "*"
			}
			cmd.Printf("%s %s  [%s] rev %d  %s\n",
				pin, r.ID, NoteKinds[r.Record.Kind], r.Record.Revision, r.Record.Title)
		}
		cmd.Printf("%d of %d notes\n", len(results), notes.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringArray("where", nil, `Filter like "field=value" or "field>=value" (repeatable)`)
}

// parseCondition splits "field<op>value" into a query condition. The
// value stays a string; the query layer coerces it per field kind.
func parseCondition(s string) (query.Condition, error) {
	for _, op := range []string{">=", "<=", "!=", "=", ">", "<"} {
		if i := strings.Index(s, op); i > 0 {
			return query.Condition{
				Field: strings.TrimSpace(s[:i]),
				Op:    op,
				Value: strings.TrimSpace(s[i+len(op):]),
			}, nil
		}
	}
	return query.Condition{}, fmt.Errorf("cannot parse filter %q", s)
}
