// Package pattern holds the built-in field schemas trees can adopt.
// Patterns are advisory: nodes may carry any fields, and Validate only
// reports keys the schema does not know about. Nothing here blocks a load.
package pattern

import (
	"sort"
	"strings"

	"treelisty-cli/internal/model"
)

type FieldKind string

const (
	FieldText   FieldKind = "text"
	FieldNumber FieldKind = "number"
	FieldDate   FieldKind = "date"
	FieldBool   FieldKind = "bool"
)

type FieldDef struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Kind  FieldKind `json:"kind"`
}

// Def is one pattern: a display name, the labels for the four tree levels,
// and the extra fields its nodes carry.
type Def struct {
	Key    string     `json:"key"`
	Name   string     `json:"name"`
	Levels [4]string  `json:"levels"` // root, phase, item, subtask labels
	Fields []FieldDef `json:"fields"`
}

var catalog = map[string]Def{
	"generic": {
		Key: "generic", Name: "Generic project",
		Levels: [4]string{"Project", "Phase", "Item", "Subtask"},
	},
	"sales": {
		Key: "sales", Name: "Sales pipeline",
		Levels: [4]string{"Pipeline", "Stage", "Deal", "Activity"},
		Fields: []FieldDef{
			{Key: "stage", Label: "Stage", Kind: FieldText},
			{Key: "dealValue", Label: "Deal value", Kind: FieldNumber},
			{Key: "closeDate", Label: "Close date", Kind: FieldDate},
			{Key: "contact", Label: "Contact", Kind: FieldText},
		},
	},
	"film": {
		Key: "film", Name: "Film production",
		Levels: [4]string{"Production", "Phase", "Scene", "Shot"},
		Fields: []FieldDef{
			{Key: "location", Label: "Location", Kind: FieldText},
			{Key: "cast", Label: "Cast", Kind: FieldText},
			{Key: "shootDate", Label: "Shoot date", Kind: FieldDate},
			{Key: "budget", Label: "Budget", Kind: FieldNumber},
		},
	},
	"philosophy": {
		Key: "philosophy", Name: "Philosophy argument",
		Levels: [4]string{"Thesis", "Argument", "Premise", "Support"},
		Fields: []FieldDef{
			{Key: "position", Label: "Position", Kind: FieldText},
			{Key: "counter", Label: "Counterargument", Kind: FieldText},
			{Key: "sourceWork", Label: "Source work", Kind: FieldText},
		},
	},
	"biography": {
		Key: "biography", Name: "Biography",
		Levels: [4]string{"Life", "Era", "Event", "Detail"},
		Fields: []FieldDef{
			{Key: "dateStart", Label: "Start", Kind: FieldDate},
			{Key: "dateEnd", Label: "End", Kind: FieldDate},
			{Key: "place", Label: "Place", Kind: FieldText},
		},
	},
	"filesystem": {
		Key: "filesystem", Name: "Filesystem",
		Levels: [4]string{"Computer", "Folder", "Entry", "Detail"},
		Fields: []FieldDef{
			{Key: "icon", Label: "Icon", Kind: FieldText},
			{Key: "isFolder", Label: "Folder", Kind: FieldBool},
			{Key: "fileExtension", Label: "Extension", Kind: FieldText},
			{Key: "fileSize", Label: "Size", Kind: FieldNumber},
			{Key: "filePath", Label: "Path", Kind: FieldText},
			{Key: "dateModified", Label: "Modified", Kind: FieldDate},
			{Key: "dateCreated", Label: "Created", Kind: FieldDate},
		},
	},
	"book": {
		Key: "book", Name: "Book outline",
		Levels: [4]string{"Book", "Part", "Chapter", "Section"},
		Fields: []FieldDef{
			{Key: "wordTarget", Label: "Word target", Kind: FieldNumber},
			{Key: "status", Label: "Status", Kind: FieldText},
		},
	},
	"travel": {
		Key: "travel", Name: "Trip plan",
		Levels: [4]string{"Trip", "Leg", "Day", "Activity"},
		Fields: []FieldDef{
			{Key: "place", Label: "Place", Kind: FieldText},
			{Key: "date", Label: "Date", Kind: FieldDate},
			{Key: "cost", Label: "Cost", Kind: FieldNumber},
		},
	},
}

// Get returns the pattern for key. Unknown keys fall back to generic so an
// imported tree with a pattern this build does not ship still works.
func Get(key string) Def {
	if d, ok := catalog[strings.TrimSpace(key)]; ok {
		return d
	}
	return catalog["generic"]
}

func Known(key string) bool {
	_, ok := catalog[strings.TrimSpace(key)]
	return ok
}

// Keys lists the built-in pattern keys, sorted.
func Keys() []string {
	out := make([]string, 0, len(catalog))
	for k := range catalog {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Validate reports node fields the tree's pattern does not define. Keys with
// a leading underscore are tooling metadata (e.g. _rag) and are never
// reported. Report-only: the fields themselves always round-trip.
func Validate(t *model.Tree) []string {
	if t == nil || t.Root == nil {
		return nil
	}
	def := Get(t.Pattern.Key)
	known := map[string]bool{}
	for _, f := range def.Fields {
		known[f.Key] = true
	}

	var out []string
	t.Root.Walk(func(n *model.Node) bool {
		for k := range n.Fields {
			if strings.HasPrefix(k, "_") || known[k] {
				continue
			}
			out = append(out, n.ID+": unknown field "+k)
		}
		return true
	})
	sort.Strings(out)
	return out
}
