package tabedit

import "errors"

// Song is the whole document: global metadata plus an ordered, non-empty
// sequence of blocks. The active block index and the selection are editor
// state, not document state, so undo snapshots cover exactly this struct.
type Song struct {
	Title  string `yaml:",omitempty"`
	Artist string `yaml:",omitempty"`
	Blocks []Block
}

// NewSong returns a document with a single fresh empty block.
func NewSong() Song {
	return Song{Blocks: []Block{NewBlock(1, DefaultColumns)}}
}

func (s *Song) Copy() Song {
	blocks := make([]Block, len(s.Blocks))
	for i, b := range s.Blocks {
		blocks[i] = b.Copy()
	}
	return Song{Title: s.Title, Artist: s.Artist, Blocks: blocks}
}

func (s *Song) Validate() error {
	if len(s.Blocks) == 0 {
		return errors.New("song should have at least one block")
	}
	return nil
}

// Transpose shifts every fret in every block by delta. Cells whose shifted
// value would leave [0, MaxFret] are left unchanged rather than the whole
// transpose being rejected, so an out-of-range note never blocks or destroys
// unrelated edits. Bar lines and technique symbols never change.
func (s *Song) Transpose(delta int) {
	for i := range s.Blocks {
		for j := range s.Blocks[i].Columns {
			for k, note := range s.Blocks[i].Columns[j] {
				if note.Kind != FretNote {
					continue
				}
				if shifted := note.Fret + delta; shifted >= 0 && shifted <= MaxFret {
					s.Blocks[i].Columns[j][k] = MakeFret(shifted)
				}
			}
		}
	}
}
