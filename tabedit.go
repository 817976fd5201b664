// Package tabedit contains the domain types of a guitar tablature editor: the
// grid of (string, column) notes organized into named blocks, the pure editing
// operations on them, and the note input combination rules. The mutable editor
// state machine lives in the editor package and the plain-text codec in
// tabfmt.
package tabedit

// NumStrings is the number of strings on the instrument. Columns are fixed
// six-cell slices of the grid.
const NumStrings = 6

// MaxFret bounds transposition and multi-digit input combination. It is a
// policy limit, not a type-level one: ParseNote accepts any non-negative
// integer.
const MaxFret = 24

// DefaultColumns is the number of empty columns a fresh block starts with.
const DefaultColumns = 16

// StringNames are the string labels in grid order, highest pitch first. The
// text format emits string rows in exactly this order.
var StringNames = [NumStrings]string{"e", "B", "G", "D", "A", "E"}

// Column is one time slice across all strings. Being an array, assignment
// deep-copies it and == compares it structurally.
type Column [NumStrings]Note

func (c Column) IsEmpty() bool {
	return c == Column{}
}

// BarColumn returns a column with a bar line on every string.
func BarColumn() Column {
	var c Column
	for i := range c {
		c[i] = MakeBar()
	}
	return c
}

// InputKind tells the input resolver where a note entry event came from.
type InputKind int

const (
	// DiscreteInput is a technique button or fretboard click: it always
	// overwrites the cell and always advances the cursor.
	DiscreteInput InputKind = iota
	// IncrementalInput is single-keystroke entry, which may combine with an
	// existing digit into a two-digit fret.
	IncrementalInput
)

// ResolveInput decides, given the current content of a cell and an incoming
// label, the new cell content and whether the cursor should advance.
// Incremental digits combine decimally with an existing fret as long as the
// result stays within MaxFret; this is how frets 10..24 are entered with two
// keystrokes. A combination that would exceed MaxFret starts a new number
// instead, without advancing.
func ResolveInput(existing Note, label string, kind InputKind) (Note, bool) {
	incoming := ParseNote(label)
	if kind == DiscreteInput {
		return incoming, true
	}
	if existing.Kind == FretNote && incoming.Kind == FretNote && incoming.Fret <= 9 && len(label) == 1 {
		if combined := existing.Fret*10 + incoming.Fret; combined <= MaxFret {
			return MakeFret(combined), true
		}
		return incoming, false
	}
	return incoming, false
}
