// Package editor implements the mutable state of the tablature editor: the
// current song, the active block, cursor and selection bookkeeping, the
// bounded undo/redo history, clipboard operations and file import/export.
// All operations run synchronously on the caller's goroutine; the model is
// owned by a single UI thread and is never shared.
package editor

import (
	"github.com/tabedit/tabedit"
)

type (
	// modelData is the part of the model that gets saved to the recovery file
	modelData struct {
		Song                 tabedit.Song
		ActiveBlock          int
		Selection            *Range
		UsedIDs              map[int]bool
		MaxID                int
		FilePath             string
		ChangedSinceSave     bool
		RecoveryFilePath     string
		ChangedSinceRecovery bool

		PrevUndoKind    string
		UndoSkipCounter int
		UndoStack       []tabedit.Song
		RedoStack       []tabedit.Song
	}

	Model struct {
		d       modelData
		alerts  []Alert
		maxUndo int
		columns int
	}

	// Range is an inclusive column range within the active block, used for
	// copy/cut/paste. Start <= End always holds.
	Range struct {
		Start, End int
	}
)

const defaultMaxUndo = 64

func NewModel(prefs Preferences, recoveryFilePath string) *Model {
	ret := new(Model)
	ret.maxUndo = prefs.Editor.UndoDepth
	if ret.maxUndo <= 0 {
		ret.maxUndo = defaultMaxUndo
	}
	ret.columns = prefs.Editor.Columns
	if ret.columns <= 0 {
		ret.columns = tabedit.DefaultColumns
	}
	ret.setSongNoUndo(tabedit.Song{Blocks: []tabedit.Block{tabedit.NewBlock(1, ret.columns)}})
	ret.d.RecoveryFilePath = recoveryFilePath
	if recoveryFilePath != "" {
		ret.loadRecovery()
	}
	return ret
}

func (m *Model) Song() tabedit.Song { return m.d.Song }

func (m *Model) SongTitle() string { return m.d.Song.Title }

func (m *Model) SetSongTitle(title string) {
	if m.d.Song.Title == title {
		return
	}
	m.saveUndo("SetSongTitle", 10)
	m.d.Song.Title = title
}

func (m *Model) Artist() string { return m.d.Song.Artist }

func (m *Model) SetArtist(artist string) {
	if m.d.Song.Artist == artist {
		return
	}
	m.saveUndo("SetArtist", 10)
	m.d.Song.Artist = artist
}

func (m *Model) ActiveBlock() int { return m.d.ActiveBlock }

func (m *Model) SetActiveBlock(index int) {
	m.d.ActiveBlock = index
	m.d.Selection = nil
	m.clampPositions()
}

// Block returns a copy of the active block.
func (m *Model) Block() tabedit.Block {
	return m.d.Song.Blocks[m.d.ActiveBlock].Copy()
}

func (m *Model) Cursor() int { return m.d.Song.Blocks[m.d.ActiveBlock].Cursor }

func (m *Model) SetCursor(value int) {
	m.d.Song.Blocks[m.d.ActiveBlock].Cursor = value
	m.clampPositions()
}

func (m *Model) Selection() *Range { return m.d.Selection }

// SetSelection sets the selected column range of the active block, swapping
// the ends if needed. Passing nil clears the selection.
func (m *Model) SetSelection(sel *Range) {
	if sel != nil && sel.Start > sel.End {
		sel = &Range{sel.End, sel.Start}
	}
	m.d.Selection = sel
	m.clampPositions()
}

func (m *Model) SetBlockTitle(title string) {
	if m.d.Song.Blocks[m.d.ActiveBlock].Title == title {
		return
	}
	m.saveUndo("SetBlockTitle", 10)
	m.d.Song.Blocks[m.d.ActiveBlock].Title = title
}

// SetNote resolves a note entry event against the cell under the cursor and
// writes the result. Two consecutive digit keystrokes combine into one fret
// and one undo step.
func (m *Model) SetNote(str int, label string, kind tabedit.InputKind) {
	if str < 0 || str >= tabedit.NumStrings {
		return
	}
	block := &m.d.Song.Blocks[m.d.ActiveBlock]
	var existing tabedit.Note
	if block.Cursor < len(block.Columns) {
		existing = block.Columns[block.Cursor][str]
	}
	note, advance := tabedit.ResolveInput(existing, label, kind)
	m.saveUndo("SetNote", 10)
	edited := block.SetNote(str, note)
	if advance {
		edited.Cursor++
	}
	m.d.Song.Blocks[m.d.ActiveBlock] = edited
	m.clampPositions()
}

// DeleteNote clears the cell at (cursor, string) without shifting columns.
func (m *Model) DeleteNote(str int) {
	if str < 0 || str >= tabedit.NumStrings {
		return
	}
	block := &m.d.Song.Blocks[m.d.ActiveBlock]
	if block.Cursor >= len(block.Columns) {
		return
	}
	m.saveUndo("DeleteNote", 0)
	m.d.Song.Blocks[m.d.ActiveBlock] = block.ClearNote(str)
}

// InsertBar overwrites the cursor column with a bar line across all strings
// and advances the cursor.
func (m *Model) InsertBar() {
	m.saveUndo("InsertBar", 0)
	block := &m.d.Song.Blocks[m.d.ActiveBlock]
	m.d.Song.Blocks[m.d.ActiveBlock] = block.InsertBar()
	m.clampPositions()
}

// InsertSpace splices one empty column at the selection start when a
// selection exists, otherwise at the cursor. Only the cursor-anchored insert
// advances the cursor; a selection-anchored one keeps it stable relative to
// the content it points at.
func (m *Model) InsertSpace() {
	m.saveUndo("InsertSpace", 0)
	block := &m.d.Song.Blocks[m.d.ActiveBlock]
	if sel := m.d.Selection; sel != nil {
		m.d.Song.Blocks[m.d.ActiveBlock] = block.InsertColumn(sel.Start)
	} else {
		edited := block.InsertColumn(block.Cursor)
		edited.Cursor++
		m.d.Song.Blocks[m.d.ActiveBlock] = edited
	}
	m.clampPositions()
}

// DeleteColumn removes the cursor column from the active block.
func (m *Model) DeleteColumn() {
	block := &m.d.Song.Blocks[m.d.ActiveBlock]
	if block.Cursor >= len(block.Columns) {
		return
	}
	m.saveUndo("DeleteColumn", 0)
	m.d.Song.Blocks[m.d.ActiveBlock] = block.DeleteColumn(block.Cursor)
	m.clampPositions()
}

// Transpose shifts every fret of every block by delta, leaving out-of-range
// cells untouched.
func (m *Model) Transpose(delta int) {
	if delta == 0 {
		return
	}
	m.saveUndo("Transpose", 0)
	m.d.Song.Transpose(delta)
}

// AddBlock creates a new empty block right after the active one and makes it
// active.
func (m *Model) AddBlock() {
	m.saveUndo("AddBlock", 0)
	m.d.MaxID++
	m.d.UsedIDs[m.d.MaxID] = true
	m.insertBlock(m.d.ActiveBlock+1, tabedit.NewBlock(m.d.MaxID, m.columns))
}

// DuplicateBlock deep-copies the block at index, gives the copy a fresh ID,
// inserts it right after the original and makes it active. A non-empty title
// gets a marker suffix; an untitled block stays untitled.
func (m *Model) DuplicateBlock(index int) {
	if index < 0 || index >= len(m.d.Song.Blocks) {
		return
	}
	m.saveUndo("DuplicateBlock", 0)
	dup := m.d.Song.Blocks[index].Copy()
	m.d.MaxID++
	dup.ID = m.d.MaxID
	m.d.UsedIDs[dup.ID] = true
	if dup.Title != "" {
		dup.Title += " (cópia)"
	}
	m.insertBlock(index+1, dup)
}

// MoveBlock swaps the block at index with its neighbor in the given
// direction (negative is up, positive is down). At the sequence boundary it
// is a no-op, not an error. The moved block becomes (stays) the active one.
func (m *Model) MoveBlock(index, direction int) {
	j := index
	if direction < 0 {
		j = index - 1
	} else if direction > 0 {
		j = index + 1
	}
	if index < 0 || index >= len(m.d.Song.Blocks) || j < 0 || j >= len(m.d.Song.Blocks) || j == index {
		return
	}
	m.saveUndo("MoveBlock", 10)
	blocks := m.d.Song.Blocks
	blocks[index], blocks[j] = blocks[j], blocks[index]
	m.d.ActiveBlock = j
	m.d.Selection = nil
	m.clampPositions()
}

// DeleteBlock removes the active block and re-focuses the previous one.
// Removing the last remaining block is silently refused.
func (m *Model) DeleteBlock() {
	if !m.CanDeleteBlock() {
		return
	}
	m.saveUndo("DeleteBlock", 0)
	index := m.d.ActiveBlock
	blocks := make([]tabedit.Block, len(m.d.Song.Blocks)-1)
	copy(blocks, m.d.Song.Blocks[:index])
	copy(blocks[index:], m.d.Song.Blocks[index+1:])
	m.d.Song.Blocks = blocks
	if index > 0 {
		m.d.ActiveBlock = index - 1
	} else {
		m.d.ActiveBlock = 0
	}
	m.d.Selection = nil
	m.clampPositions()
}

func (m *Model) CanDeleteBlock() bool {
	return len(m.d.Song.Blocks) > 1
}

// ClearSong replaces the document with a single fresh empty block and resets
// metadata, cursor and selection.
func (m *Model) ClearSong() {
	m.saveUndo("ClearSong", 0)
	m.setSongNoUndo(tabedit.Song{Blocks: []tabedit.Block{tabedit.NewBlock(0, m.columns)}})
	m.d.FilePath = ""
}

func (m *Model) FilePath() string { return m.d.FilePath }

func (m *Model) SetFilePath(value string) { m.d.FilePath = value }

func (m *Model) ChangedSinceSave() bool { return m.d.ChangedSinceSave }

func (m *Model) Undo() {
	if !m.CanUndo() {
		return
	}
	m.d.RedoStack = append(m.d.RedoStack, m.d.Song.Copy())
	m.d.Song = m.d.UndoStack[len(m.d.UndoStack)-1]
	m.d.UndoStack = m.d.UndoStack[:len(m.d.UndoStack)-1]
	m.d.PrevUndoKind = ""
	m.limitUndoRedoLengths()
	m.clampPositions()
}

func (m *Model) CanUndo() bool { return len(m.d.UndoStack) > 0 }

func (m *Model) Redo() {
	if !m.CanRedo() {
		return
	}
	m.d.UndoStack = append(m.d.UndoStack, m.d.Song.Copy())
	m.d.Song = m.d.RedoStack[len(m.d.RedoStack)-1]
	m.d.RedoStack = m.d.RedoStack[:len(m.d.RedoStack)-1]
	m.d.PrevUndoKind = ""
	m.limitUndoRedoLengths()
	m.clampPositions()
}

func (m *Model) CanRedo() bool { return len(m.d.RedoStack) > 0 }

func (m *Model) ClearUndoHistory() {
	m.d.UndoStack = m.d.UndoStack[:0]
	m.d.RedoStack = m.d.RedoStack[:0]
	m.d.PrevUndoKind = ""
}

// saveUndo pushes the pre-mutation state onto the undo stack and clears the
// redo stack; it must run strictly before the mutation it guards so the
// captured state is exact. Consecutive edits of the same kind coalesce up to
// undoSkipping repeats, so e.g. a fret typed in two keystrokes is undone as
// one step.
func (m *Model) saveUndo(undoKind string, undoSkipping int) {
	m.d.ChangedSinceSave = true
	m.d.ChangedSinceRecovery = true
	if m.d.PrevUndoKind == undoKind && m.d.UndoSkipCounter < undoSkipping {
		m.d.UndoSkipCounter++
		m.d.RedoStack = m.d.RedoStack[:0]
		return
	}
	m.d.PrevUndoKind = undoKind
	m.d.UndoSkipCounter = 0
	m.d.UndoStack = append(m.d.UndoStack, m.d.Song.Copy())
	m.d.RedoStack = m.d.RedoStack[:0]
	m.limitUndoRedoLengths()
}

func (m *Model) limitUndoRedoLengths() {
	if len(m.d.UndoStack) > m.maxUndo {
		m.d.UndoStack = m.d.UndoStack[len(m.d.UndoStack)-m.maxUndo:]
	}
	if len(m.d.RedoStack) > m.maxUndo {
		m.d.RedoStack = m.d.RedoStack[len(m.d.RedoStack)-m.maxUndo:]
	}
}

func (m *Model) insertBlock(index int, block tabedit.Block) {
	blocks := make([]tabedit.Block, len(m.d.Song.Blocks)+1)
	copy(blocks, m.d.Song.Blocks[:index])
	copy(blocks[index+1:], m.d.Song.Blocks[index:])
	blocks[index] = block
	m.d.Song.Blocks = blocks
	m.d.ActiveBlock = index
	m.d.Selection = nil
	m.clampPositions()
}

func (m *Model) setSongNoUndo(song tabedit.Song) {
	m.d.Song = song
	m.d.UsedIDs = make(map[int]bool)
	m.d.MaxID = 0
	for _, b := range m.d.Song.Blocks {
		if m.d.MaxID < b.ID {
			m.d.MaxID = b.ID
		}
	}
	m.assignBlockIDs(m.d.Song.Blocks)
	m.d.ActiveBlock = 0
	m.d.Selection = nil
	m.clampPositions()
}

// assignBlockIDs gives fresh IDs to blocks whose ID is zero or already in
// use, so identifiers stay unique for the lifetime of the model.
func (m *Model) assignBlockIDs(blocks []tabedit.Block) {
	for i := range blocks {
		if id := blocks[i].ID; id == 0 || m.d.UsedIDs[id] {
			m.d.MaxID++
			blocks[i].ID = m.d.MaxID
		}
		m.d.UsedIDs[blocks[i].ID] = true
		if m.d.MaxID < blocks[i].ID {
			m.d.MaxID = blocks[i].ID
		}
	}
}

func (m *Model) clampPositions() {
	m.d.ActiveBlock = clamp(m.d.ActiveBlock, 0, len(m.d.Song.Blocks)-1)
	for i := range m.d.Song.Blocks {
		b := &m.d.Song.Blocks[i]
		// one past the end is a legal cursor position, meaning "append here"
		b.Cursor = clamp(b.Cursor, 0, len(b.Columns))
	}
	if sel := m.d.Selection; sel != nil {
		last := len(m.d.Song.Blocks[m.d.ActiveBlock].Columns) - 1
		if last < 0 {
			m.d.Selection = nil
		} else {
			m.d.Selection = &Range{clamp(sel.Start, 0, last), clamp(sel.End, 0, last)}
		}
	}
}

func clamp(a, min, max int) int {
	if a < min {
		return min
	}
	if a > max {
		return max
	}
	return a
}
