package tabedit

// Block is one named section of the song: an independent grid of columns with
// its own cursor. The ID is assigned at creation by the editor and never
// reused; Title is free text, empty by default.
//
// The editing methods are pure: they leave the receiver untouched and return
// a new Block whose column storage shares nothing with the old one. The
// caller (the editor model) is responsible for sequencing mutation and undo.
type Block struct {
	ID      int
	Title   string   `yaml:",omitempty"`
	Columns []Column `yaml:",flow"`
	Cursor  int
}

// NewBlock returns an untitled block with the given number of empty columns
// and the cursor at the start.
func NewBlock(id, columns int) Block {
	return Block{ID: id, Columns: make([]Column, columns)}
}

func (b *Block) Copy() Block {
	columns := make([]Column, len(b.Columns))
	copy(columns, b.Columns)
	return Block{ID: b.ID, Title: b.Title, Columns: columns, Cursor: b.Cursor}
}

// grown returns a copy whose column count is at least n. The grid grows
// lazily, one column at a time, so growth beyond the immediate need never
// happens.
func (b *Block) grown(n int) Block {
	ret := b.Copy()
	for len(ret.Columns) < n {
		ret.Columns = append(ret.Columns, Column{})
	}
	return ret
}

// SetNote writes note at (the cursor column, string), appending one empty
// column first if the cursor points one past the end.
func (b *Block) SetNote(str int, note Note) Block {
	ret := b.grown(b.Cursor + 1)
	ret.Columns[ret.Cursor][str] = note
	return ret
}

// ClearNote empties the cell at (the cursor column, string). Columns are
// never shifted.
func (b *Block) ClearNote(str int) Block {
	if b.Cursor >= len(b.Columns) {
		return b.Copy()
	}
	return b.SetNote(str, Note{})
}

// InsertBar overwrites the cursor column with bar lines on all strings and
// advances the cursor past it.
func (b *Block) InsertBar() Block {
	ret := b.grown(b.Cursor + 1)
	ret.Columns[ret.Cursor] = BarColumn()
	ret.Cursor++
	return ret
}

// InsertColumn splices one empty column into the sequence at the given index.
func (b *Block) InsertColumn(at int) Block {
	ret := b.Copy()
	if at < 0 {
		at = 0
	}
	if at > len(ret.Columns) {
		at = len(ret.Columns)
	}
	columns := make([]Column, len(ret.Columns)+1)
	copy(columns, ret.Columns[:at])
	copy(columns[at+1:], ret.Columns[at:])
	ret.Columns = columns
	return ret
}

// DeleteColumn removes the column at the given index. Out-of-range indices
// are a no-op.
func (b *Block) DeleteColumn(at int) Block {
	ret := b.Copy()
	if at < 0 || at >= len(ret.Columns) {
		return ret
	}
	columns := make([]Column, len(ret.Columns)-1)
	copy(columns, ret.Columns[:at])
	copy(columns[at:], ret.Columns[at+1:])
	ret.Columns = columns
	if ret.Cursor > len(ret.Columns) {
		ret.Cursor = len(ret.Columns)
	}
	return ret
}

// CopyRange returns a deep, independent copy of the inclusive column range.
// Later edits to either the block or the returned slice do not affect the
// other. Out-of-range ends are clamped; an empty intersection returns nil.
func (b *Block) CopyRange(start, end int) []Column {
	if start < 0 {
		start = 0
	}
	if end >= len(b.Columns) {
		end = len(b.Columns) - 1
	}
	if start > end {
		return nil
	}
	ret := make([]Column, end-start+1)
	copy(ret, b.Columns[start:end+1])
	return ret
}

// CutRange copies the inclusive column range and overwrites every column in
// it with an empty one. The column count is preserved; cut clears content,
// it never removes columns. Out-of-range ends are clamped like in CopyRange.
func (b *Block) CutRange(start, end int) (Block, []Column) {
	if start < 0 {
		start = 0
	}
	cut := b.CopyRange(start, end)
	ret := b.Copy()
	for i := range cut {
		ret.Columns[start+i] = Column{}
	}
	return ret, cut
}

// Paste splices the given columns into the block at the cursor and advances
// the cursor by the pasted length.
func (b *Block) Paste(columns []Column) Block {
	ret := b.grown(b.Cursor)
	spliced := make([]Column, len(ret.Columns)+len(columns))
	copy(spliced, ret.Columns[:ret.Cursor])
	copy(spliced[ret.Cursor:], columns)
	copy(spliced[ret.Cursor+len(columns):], ret.Columns[ret.Cursor:])
	ret.Columns = spliced
	ret.Cursor += len(columns)
	return ret
}
