package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/sagadb/pkg/codec"
	"github.com/ssargent/sagadb/pkg/table"
	"github.com/ssargent/sagadb/pkg/uid"
)

type npc struct {
	Name  string
	HP    int64
	Speed float64
	Alive bool
	Class uint64
	Home  uid.ID
}

var classes = []string{"fighter", "mage", "rogue"}

func npcSchema(t *testing.T) *codec.Schema[npc] {
	t.Helper()
	s, err := codec.NewSchema("npc",
		codec.StringField("name",
			func(r *npc) string { return r.Name },
			func(r *npc, v string) { r.Name = v }),
		codec.IntField("hp", 64,
			func(r *npc) int64 { return r.HP },
			func(r *npc, v int64) { r.HP = v }),
		codec.FloatField("speed", 64,
			func(r *npc) float64 { return r.Speed },
			func(r *npc, v float64) { r.Speed = v }),
		codec.BoolField("alive",
			func(r *npc) bool { return r.Alive },
			func(r *npc, v bool) { r.Alive = v }),
		codec.EnumField("class", classes,
			func(r *npc) uint64 { return r.Class },
			func(r *npc, v uint64) { r.Class = v }),
		codec.IDField("home",
			func(r *npc) uid.ID { return r.Home },
			func(r *npc, v uid.ID) { r.Home = v }),
	)
	require.NoError(t, err)
	return s
}

func fixture(t *testing.T) (*table.Table[npc], *codec.Schema[npc]) {
	t.Helper()
	s := npcSchema(t)
	tbl := table.New(s)
	t.Cleanup(tbl.Close)

	home := uid.From64(1000)
	tbl.AddWithID(uid.From64(1), npc{Name: "ulf", HP: 30, Speed: 1.5, Alive: true, Class: 0, Home: home})
	tbl.AddWithID(uid.From64(2), npc{Name: "mira", HP: 12, Speed: 2.0, Alive: true, Class: 1, Home: home})
	tbl.AddWithID(uid.From64(3), npc{Name: "skar", HP: 45, Speed: 0.8, Alive: false, Class: 2, Home: uid.From64(2000)})
	return tbl, s
}

func names(results []Result[npc]) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Record.Name)
	}
	return out
}

func TestSelect_Numeric(t *testing.T) {
	tbl, s := fixture(t)

	results, err := Select(tbl.All(), s, Condition{Field: "hp", Op: ">", Value: 20})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ulf", "skar"}, names(results))

	results, err = Select(tbl.All(), s, Condition{Field: "speed", Op: "<=", Value: 1.5})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ulf", "skar"}, names(results))
}

func TestSelect_MultipleConditions(t *testing.T) {
	tbl, s := fixture(t)

	results, err := Select(tbl.All(), s,
		Condition{Field: "hp", Op: ">", Value: 20},
		Condition{Field: "alive", Op: "=", Value: true},
	)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ulf", results[0].Record.Name)
	assert.Equal(t, uid.From64(1), results[0].ID)
}

func TestSelect_EnumByNameAndOrdinal(t *testing.T) {
	tbl, s := fixture(t)

	results, err := Select(tbl.All(), s, Condition{Field: "class", Op: "=", Value: "mage"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"mira"}, names(results))

	results, err = Select(tbl.All(), s, Condition{Field: "class", Op: "!=", Value: uint64(2)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ulf", "mira"}, names(results))
}

func TestSelect_ByIdentifierField(t *testing.T) {
	tbl, s := fixture(t)

	results, err := Select(tbl.All(), s, Condition{Field: "home", Op: "=", Value: uid.From64(1000)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ulf", "mira"}, names(results))

	// decimal text also names an identifier
	results, err = Select(tbl.All(), s, Condition{Field: "home", Op: "=", Value: "2000"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"skar"}, names(results))
}

func TestSelect_String(t *testing.T) {
	tbl, s := fixture(t)

	results, err := Select(tbl.All(), s, Condition{Field: "name", Op: ">=", Value: "skar"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"skar", "ulf"}, names(results))
}

func TestSelect_TextValues(t *testing.T) {
	tbl, s := fixture(t)

	// conditions parsed from text carry string values for every kind
	results, err := Select(tbl.All(), s,
		Condition{Field: "hp", Op: ">", Value: "20"},
		Condition{Field: "speed", Op: "<=", Value: "1.5"},
		Condition{Field: "alive", Op: "=", Value: "true"},
	)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ulf"}, names(results))
}

func TestSelect_NoConditions(t *testing.T) {
	tbl, s := fixture(t)

	results, err := Select(tbl.All(), s)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSelect_Errors(t *testing.T) {
	tbl, s := fixture(t)

	_, err := Select(tbl.All(), s, Condition{Field: "", Op: "=", Value: 1})
	assert.Error(t, err)

	_, err = Select(tbl.All(), s, Condition{Field: "hp", Op: "~", Value: 1})
	assert.Error(t, err)

	_, err = Select(tbl.All(), s, Condition{Field: "mana", Op: "=", Value: 1})
	assert.Error(t, err)

	// ordering on a bool field is rejected up front
	_, err = Select(tbl.All(), s, Condition{Field: "alive", Op: ">", Value: true})
	assert.Error(t, err)

	// type mismatch surfaces as an error, not a silent miss
	_, err = Select(tbl.All(), s, Condition{Field: "hp", Op: "=", Value: "lots"})
	assert.Error(t, err)
}

func TestCondition_Validate(t *testing.T) {
	valid := Condition{Field: "hp", Op: "=", Value: 1}
	assert.NoError(t, valid.Validate())

	for _, c := range []Condition{
		{Field: "", Op: "="},
		{Field: "hp", Op: ""},
		{Field: "hp", Op: "=="},
	} {
		assert.Error(t, c.Validate())
	}
}
