package tabedit

import (
	"encoding/json"
	"strconv"

	"gopkg.in/yaml.v3"
)

// NoteKind tags what a cell holds. The zero value is an empty cell.
type NoteKind uint8

const (
	EmptyNote NoteKind = iota
	FretNote
	BarNote
	TechniqueNote
)

// Technique is one of the closed set of playing technique symbols.
type Technique byte

const (
	HammerOn Technique = 'h'
	PullOff  Technique = 'p'
	Bend     Technique = 'b'
	Slide    Technique = 's'
	Dash     Technique = '-'
)

var techniques = map[Technique]bool{
	HammerOn: true,
	PullOff:  true,
	Bend:     true,
	Slide:    true,
	Dash:     true,
}

// Note is a single annotation at one (string, column) cell: a fret number, a
// bar line, a technique symbol, or nothing. Fret is meaningful only when Kind
// is FretNote and Tech only when Kind is TechniqueNote. No fret range is
// enforced here; MaxFret is a policy applied by transposition and input
// combination.
type Note struct {
	Kind NoteKind
	Fret int
	Tech Technique
}

func MakeFret(fret int) Note    { return Note{Kind: FretNote, Fret: fret} }
func MakeTech(t Technique) Note { return Note{Kind: TechniqueNote, Tech: t} }
func MakeBar() Note             { return Note{Kind: BarNote} }

func (n Note) IsEmpty() bool { return n.Kind == EmptyNote }

// Label returns the textual form of the note, the inverse of ParseNote. An
// empty cell renders as the empty string.
func (n Note) Label() string {
	switch n.Kind {
	case FretNote:
		return strconv.Itoa(n.Fret)
	case BarNote:
		return "|"
	case TechniqueNote:
		return string(n.Tech)
	}
	return ""
}

// ParseNote converts a textual label to a Note. It is permissive: anything
// that is not a bar line, a known technique symbol or a non-negative integer
// parses as an empty cell.
func ParseNote(label string) Note {
	if label == "" {
		return Note{}
	}
	if label == "|" {
		return MakeBar()
	}
	if len(label) == 1 && techniques[Technique(label[0])] {
		return MakeTech(Technique(label[0]))
	}
	if fret, err := strconv.Atoi(label); err == nil && fret >= 0 {
		return MakeFret(fret)
	}
	return Note{}
}

// Notes marshal as their textual labels so .yml and .json song files stay
// readable and hand-editable.

func (n Note) MarshalYAML() (interface{}, error) {
	return n.Label(), nil
}

func (n *Note) UnmarshalYAML(value *yaml.Node) error {
	var label string
	if err := value.Decode(&label); err != nil {
		return err
	}
	*n = ParseNote(label)
	return nil
}

func (n Note) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Label())
}

func (n *Note) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	*n = ParseNote(label)
	return nil
}
