package editor

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tabedit/tabedit"
)

// The clipboard payload is YAML text, so selections can travel through the
// system clipboard and remain human-readable.
type marshalColumns struct {
	Columns []tabedit.Column `yaml:",flow"`
}

// CopySelection marshals a deep copy of the selected columns. The returned
// data shares nothing with the block, so later edits to either side leave
// the other untouched.
func (m *Model) CopySelection() ([]byte, bool) {
	sel := m.d.Selection
	if sel == nil {
		return nil, false
	}
	block := &m.d.Song.Blocks[m.d.ActiveBlock]
	columns := block.CopyRange(sel.Start, sel.End)
	if columns == nil {
		return nil, false
	}
	data, err := yaml.Marshal(marshalColumns{columns})
	if err != nil {
		return nil, false
	}
	return data, true
}

// CutSelection copies the selected columns and clears them in place; the
// column count of the block does not change.
func (m *Model) CutSelection() ([]byte, bool) {
	data, ok := m.CopySelection()
	if !ok {
		return nil, false
	}
	m.saveUndo("CutSelection", 0)
	sel := m.d.Selection
	block := &m.d.Song.Blocks[m.d.ActiveBlock]
	cleared, _ := block.CutRange(sel.Start, sel.End)
	m.d.Song.Blocks[m.d.ActiveBlock] = cleared
	return data, true
}

// Paste splices previously copied columns into the active block at the
// cursor, advancing the cursor past them.
func (m *Model) Paste(data []byte) bool {
	var table marshalColumns
	if err := yaml.Unmarshal(data, &table); err != nil {
		m.Alert(fmt.Sprintf("Error unmarshaling clipboard data: %v", err), Error)
		return false
	}
	if len(table.Columns) == 0 {
		return false
	}
	m.saveUndo("Paste", 0)
	block := &m.d.Song.Blocks[m.d.ActiveBlock]
	m.d.Song.Blocks[m.d.ActiveBlock] = block.Paste(table.Columns)
	m.clampPositions()
	return true
}
