package editor_test

import (
	"fmt"
	"io"
	"math/rand"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/tabedit/tabedit"
	"github.com/tabedit/tabedit/editor"
)

func newTestModel(undoDepth int) *editor.Model {
	prefs := editor.Preferences{Editor: editor.EditorPreferences{Columns: 4, UndoDepth: undoDepth}}
	return editor.NewModel(prefs, "")
}

func snapshot(m *editor.Model) tabedit.Song {
	s := m.Song()
	return s.Copy()
}

func TestUndoRedo(t *testing.T) {
	m := newTestModel(0)
	snapshots := []tabedit.Song{snapshot(m)}
	for i := 0; i < 3; i++ {
		m.InsertBar()
		snapshots = append(snapshots, snapshot(m))
	}
	for i := 2; i >= 0; i-- {
		if !m.CanUndo() {
			t.Fatalf("expected to be able to undo, stopped at snapshot %d", i)
		}
		m.Undo()
		if !reflect.DeepEqual(m.Song(), snapshots[i]) {
			t.Fatalf("undo did not restore snapshot %d", i)
		}
	}
	if m.CanUndo() {
		t.Fatalf("undo stack should be exhausted")
	}
	for i := 1; i <= 3; i++ {
		if !m.CanRedo() {
			t.Fatalf("expected to be able to redo, stopped at snapshot %d", i)
		}
		m.Redo()
		if !reflect.DeepEqual(m.Song(), snapshots[i]) {
			t.Fatalf("redo did not restore snapshot %d", i)
		}
	}
	if m.CanRedo() {
		t.Fatalf("redo stack should be exhausted")
	}
}

func TestEditInvalidatesRedo(t *testing.T) {
	m := newTestModel(0)
	m.InsertBar()
	m.Undo()
	if !m.CanRedo() {
		t.Fatalf("expected a redo entry after undo")
	}
	m.InsertSpace()
	if m.CanRedo() {
		t.Fatalf("a new edit should clear the redo stack")
	}
}

func TestUndoDepthIsBounded(t *testing.T) {
	m := newTestModel(8)
	for i := 0; i < 12; i++ {
		m.InsertBar()
	}
	count := 0
	for m.CanUndo() {
		m.Undo()
		count++
	}
	if count != 8 {
		t.Fatalf("expected exactly 8 undo steps, got %d", count)
	}
}

// Two digits typed in sequence combine into a single two-digit fret and
// coalesce into one undo step.
func TestNoteInputCoalesces(t *testing.T) {
	m := newTestModel(0)
	initial := snapshot(m)
	m.SetNote(0, "2", tabedit.IncrementalInput)
	if m.Cursor() != 0 {
		t.Fatalf("first digit should not advance the cursor, got %d", m.Cursor())
	}
	m.SetNote(0, "4", tabedit.IncrementalInput)
	block := m.Block()
	if block.Columns[0][0] != tabedit.MakeFret(24) {
		t.Fatalf("expected digits to combine into fret 24, got %v", block.Columns[0][0])
	}
	if m.Cursor() != 1 {
		t.Fatalf("a combined fret should advance the cursor, got %d", m.Cursor())
	}
	m.Undo()
	if !reflect.DeepEqual(m.Song(), initial) {
		t.Fatalf("expected one undo step to revert both keystrokes")
	}
	if m.CanUndo() {
		t.Fatalf("the two keystrokes should have coalesced into a single step")
	}
}

func TestInsertSpaceCursor(t *testing.T) {
	m := newTestModel(0)
	m.SetCursor(1)
	m.InsertSpace()
	if m.Cursor() != 2 {
		t.Fatalf("a cursor-anchored insert should advance the cursor, got %d", m.Cursor())
	}
	if got := len(m.Block().Columns); got != 5 {
		t.Fatalf("expected 5 columns after insert, got %d", got)
	}
	m.SetCursor(0)
	m.SetNote(0, "3", tabedit.DiscreteInput)
	m.SetCursor(3)
	m.SetSelection(&editor.Range{Start: 0, End: 1})
	m.InsertSpace()
	if m.Cursor() != 3 {
		t.Fatalf("a selection-anchored insert should leave the cursor in place, got %d", m.Cursor())
	}
	if got := len(m.Block().Columns); got != 6 {
		t.Fatalf("expected 6 columns after insert, got %d", got)
	}
	block := m.Block()
	if !block.Columns[0].IsEmpty() || block.Columns[1][0] != tabedit.MakeFret(3) {
		t.Fatalf("the inserted column should appear at the selection start, shifting content right")
	}
}

func TestDeleteNotePastEndIsNoop(t *testing.T) {
	m := newTestModel(0)
	m.SetCursor(1000)
	m.DeleteNote(0)
	if m.CanUndo() {
		t.Fatalf("deleting past the end should not record an undo step")
	}
}

func TestBlockOperations(t *testing.T) {
	m := newTestModel(0)
	m.AddBlock()
	if got := len(m.Song().Blocks); got != 2 {
		t.Fatalf("expected 2 blocks after AddBlock, got %d", got)
	}
	if m.ActiveBlock() != 1 {
		t.Fatalf("the added block should be active, got %d", m.ActiveBlock())
	}
	m.SetActiveBlock(0)
	m.SetBlockTitle("Intro")
	m.DuplicateBlock(0)
	blocks := m.Song().Blocks
	if len(blocks) != 3 || blocks[1].Title != "Intro (cópia)" {
		t.Fatalf("expected a copy of Intro at index 1, got %v", blocks)
	}
	if m.ActiveBlock() != 1 {
		t.Fatalf("the duplicate should be active, got %d", m.ActiveBlock())
	}
	// the duplicate must not share column storage with the original
	m.SetActiveBlock(0)
	m.SetCursor(0)
	m.SetNote(0, "5", tabedit.DiscreteInput)
	if !m.Song().Blocks[1].Columns[0][0].IsEmpty() {
		t.Fatalf("editing the original leaked into the duplicate")
	}
	m.DuplicateBlock(2)
	if got := m.Song().Blocks[3].Title; got != "" {
		t.Fatalf("an untitled block should stay untitled when duplicated, got %q", got)
	}
	seen := map[int]bool{}
	for _, b := range m.Song().Blocks {
		if b.ID == 0 || seen[b.ID] {
			t.Fatalf("block IDs are not unique: %v", m.Song().Blocks)
		}
		seen[b.ID] = true
	}
}

func TestMoveBlock(t *testing.T) {
	m := newTestModel(0)
	m.AddBlock()
	m.SetActiveBlock(0)
	m.SetBlockTitle("first")
	before := snapshot(m)
	m.MoveBlock(0, -1)
	if !reflect.DeepEqual(m.Song(), before) {
		t.Fatalf("moving past the boundary should be a no-op")
	}
	m.MoveBlock(0, 1)
	if m.Song().Blocks[1].Title != "first" {
		t.Fatalf("expected the block to move down")
	}
	if m.ActiveBlock() != 1 {
		t.Fatalf("the moved block should stay active, got %d", m.ActiveBlock())
	}
}

func TestDeleteBlock(t *testing.T) {
	m := newTestModel(0)
	m.DeleteBlock()
	if len(m.Song().Blocks) != 1 {
		t.Fatalf("the last remaining block must not be deletable")
	}
	if m.CanUndo() {
		t.Fatalf("a refused delete should not record an undo step")
	}
	m.AddBlock()
	m.AddBlock()
	m.SetActiveBlock(1)
	m.DeleteBlock()
	if len(m.Song().Blocks) != 2 {
		t.Fatalf("expected 2 blocks after delete, got %d", len(m.Song().Blocks))
	}
	if m.ActiveBlock() != 0 {
		t.Fatalf("expected the previous block to become active, got %d", m.ActiveBlock())
	}
}

func TestClearSong(t *testing.T) {
	m := newTestModel(0)
	m.SetSongTitle("Minha Canção")
	m.AddBlock()
	m.ClearSong()
	if m.SongTitle() != "" || len(m.Song().Blocks) != 1 {
		t.Fatalf("expected a fresh empty song")
	}
	m.Undo()
	if m.SongTitle() != "Minha Canção" || len(m.Song().Blocks) != 2 {
		t.Fatalf("clearing the song should be undoable")
	}
}

func TestClipboardIndependence(t *testing.T) {
	m := newTestModel(0)
	m.SetNote(0, "3", tabedit.DiscreteInput)
	m.SetNote(1, "5", tabedit.DiscreteInput)
	m.SetSelection(&editor.Range{Start: 0, End: 1})
	data, ok := m.CopySelection()
	if !ok {
		t.Fatalf("cannot copy selection")
	}
	// overwrite the source cell; the copied data must keep the old value
	m.SetCursor(0)
	m.SetNote(0, "7", tabedit.DiscreteInput)
	m.SetCursor(2)
	if !m.Paste(data) {
		t.Fatalf("cannot paste")
	}
	block := m.Block()
	if len(block.Columns) != 6 {
		t.Fatalf("paste should splice columns in, got %d columns", len(block.Columns))
	}
	if block.Columns[2][0] != tabedit.MakeFret(3) || block.Columns[3][1] != tabedit.MakeFret(5) {
		t.Fatalf("pasted content does not match the copied selection")
	}
	if m.Cursor() != 4 {
		t.Fatalf("paste should advance the cursor past the pasted columns, got %d", m.Cursor())
	}
}

func TestCutSelection(t *testing.T) {
	m := newTestModel(0)
	m.SetNote(0, "3", tabedit.DiscreteInput)
	m.SetSelection(&editor.Range{Start: 0, End: 0})
	if _, ok := m.CutSelection(); !ok {
		t.Fatalf("cannot cut selection")
	}
	block := m.Block()
	if len(block.Columns) != 4 {
		t.Fatalf("cut should preserve the column count, got %d", len(block.Columns))
	}
	if !block.Columns[0][0].IsEmpty() {
		t.Fatalf("cut should clear the selected cells")
	}
}

func TestPasteInvalidData(t *testing.T) {
	m := newTestModel(0)
	before := snapshot(m)
	if m.Paste([]byte("\tnot yaml")) {
		t.Fatalf("pasting invalid data should fail")
	}
	if len(m.Alerts()) == 0 {
		t.Fatalf("expected an alert for invalid clipboard data")
	}
	if !reflect.DeepEqual(m.Song(), before) {
		t.Fatalf("a failed paste should leave the song untouched")
	}
}

func TestReadSongTextFormat(t *testing.T) {
	m := newTestModel(0)
	input := "Tablatura\n[Título Música: Canção]\n\nParte 1\ne |3-\nB |--\nG |--\nD |--\nA |--\nE |--\n"
	m.ReadSong(io.NopCloser(strings.NewReader(input)))
	if m.SongTitle() != "Canção" {
		t.Fatalf("expected the text format fallback to load the song, got title %q", m.SongTitle())
	}
	block := m.Block()
	if len(block.Columns) != 1 || block.Columns[0][0] != tabedit.MakeFret(3) {
		t.Fatalf("text format content not loaded: %v", block)
	}
	m.Undo()
	if m.SongTitle() != "" {
		t.Fatalf("loading a song should be undoable")
	}
}

func TestReadSongInvalid(t *testing.T) {
	m := newTestModel(0)
	before := snapshot(m)
	m.ReadSong(io.NopCloser(strings.NewReader("certainly not a song")))
	if len(m.Alerts()) == 0 {
		t.Fatalf("expected an alert for an unreadable file")
	}
	if !reflect.DeepEqual(m.Song(), before) {
		t.Fatalf("a failed load should leave the song untouched")
	}
	if m.CanUndo() {
		t.Fatalf("a failed load should not record an undo step")
	}
}

func TestRecoveryRoundTrip(t *testing.T) {
	m := newTestModel(0)
	m.SetSongTitle("Recovered")
	m.SetNote(2, "12", tabedit.DiscreteInput)
	m.AddBlock()
	data := m.MarshalRecovery()
	if data == nil {
		t.Fatalf("cannot marshal recovery data")
	}
	restored := newTestModel(0)
	restored.UnmarshalRecovery(data)
	if !reflect.DeepEqual(restored.Song(), m.Song()) {
		t.Fatalf("recovery did not restore the song")
	}
	if !restored.CanUndo() {
		t.Fatalf("recovery should restore the undo history")
	}
}

// A randomized walk over the editing operations: undoing everything must
// return to the initial document and redoing everything must return to the
// final one, regardless of the operation sequence.
func TestRandomOperationsUndoRedo(t *testing.T) {
	m := newTestModel(0)
	rnd := rand.New(rand.NewSource(123))
	ops := []func(){
		func() { m.SetNote(rnd.Intn(tabedit.NumStrings), strconv.Itoa(rnd.Intn(10)), tabedit.DiscreteInput) },
		func() { m.SetNote(rnd.Intn(tabedit.NumStrings), strconv.Itoa(rnd.Intn(10)), tabedit.IncrementalInput) },
		func() { m.DeleteNote(rnd.Intn(tabedit.NumStrings)) },
		func() { m.InsertBar() },
		func() { m.InsertSpace() },
		func() { m.DeleteColumn() },
		func() { m.AddBlock() },
		func() { m.DuplicateBlock(rnd.Intn(len(m.Song().Blocks))) },
		func() { m.MoveBlock(rnd.Intn(len(m.Song().Blocks)), rnd.Intn(3)-1) },
		func() { m.DeleteBlock() },
		func() { m.Transpose(rnd.Intn(5) - 2) },
		func() { m.SetSongTitle(fmt.Sprintf("title %d", rnd.Intn(3))) },
		func() {
			a, b := rnd.Intn(8), rnd.Intn(8)
			m.SetSelection(&editor.Range{Start: a, End: b})
			m.CutSelection()
		},
	}
	initial := snapshot(m)
	for i := 0; i < 40; i++ {
		ops[rnd.Intn(len(ops))]()
	}
	final := snapshot(m)
	for m.CanUndo() {
		m.Undo()
	}
	if !reflect.DeepEqual(m.Song(), initial) {
		t.Fatalf("undoing everything did not restore the initial document")
	}
	for m.CanRedo() {
		m.Redo()
	}
	if !reflect.DeepEqual(m.Song(), final) {
		t.Fatalf("redoing everything did not restore the final document")
	}
}
