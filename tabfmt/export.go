// Package tabfmt implements the plain-text tablature format: a deterministic
// export of a song to fixed-width ASCII rows and a permissive line-by-line
// import of the same grammar.
//
// Each cell occupies exactly two characters, the note label padded on the
// right with '-'. Labels longer than two characters are padded but never
// truncated, so a wider label shifts every later cell of that row on import;
// that is a declared limitation of the fixed-width grammar, not something the
// codec reflows. A dash technique note renders identically to an empty cell
// and therefore does not survive a round trip.
package tabfmt

import (
	"embed"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"

	"github.com/tabedit/tabedit"
)

// cellWidth is the fixed width of one column cell in a string row.
const cellWidth = 2

//go:embed templates/song.txt
var templateFS embed.FS

var songTemplate = template.Must(
	template.New("song.txt").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/song.txt"))

type stringRow struct {
	Name  string
	Cells string
}

type blockView struct {
	Title string
	Rows  []stringRow
}

type songView struct {
	Title  string
	Artist string
	Blocks []blockView
}

// Export writes the song in the text tablature format. The output depends
// only on the song contents, so exporting twice yields identical bytes.
func Export(w io.Writer, song *tabedit.Song) error {
	view := songView{Title: song.Title, Artist: song.Artist}
	for _, block := range song.Blocks {
		bv := blockView{Title: block.Title, Rows: make([]stringRow, tabedit.NumStrings)}
		for str := 0; str < tabedit.NumStrings; str++ {
			var cells strings.Builder
			for _, column := range block.Columns {
				cells.WriteString(cell(column[str]))
			}
			bv.Rows[str] = stringRow{Name: tabedit.StringNames[str], Cells: cells.String()}
		}
		view.Blocks = append(view.Blocks, bv)
	}
	return songTemplate.Execute(w, &view)
}

// cell renders one note as a fixed-width chunk, '-'-padded but never
// truncated.
func cell(n tabedit.Note) string {
	label := n.Label()
	for len(label) < cellWidth {
		label += "-"
	}
	return label
}

// ExportFilename derives a file name from the song title by lowercasing it
// and stripping everything but ASCII letters and digits. Accented letters are
// dropped rather than transliterated, so the name is always plain ASCII. An
// empty result falls back to a fixed name.
func ExportFilename(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "tablatura.txt"
	}
	return b.String() + ".txt"
}
