package tabfmt

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/tabedit/tabedit"
)

const (
	songTitleMarker  = "[Título Música:"
	artistMarker     = "[Artista:"
	blockTitleMarker = "[Título:"
	partMarker       = "Parte"
)

// stringRowReg matches one string row, e.g. "e |3---5-". The captured letter
// is cosmetic; rows are assigned to strings in the order they appear, since
// the high and low E strings share a letter.
var stringRowReg = regexp.MustCompile(`^([eBGDAE]) \|(.*)$`)

// Parse reads a text tablature document and rebuilds the song. The parser is
// permissive: lines matching nothing in the grammar are skipped, and cell
// chunks that do not strip to a recognizable label become empty cells. Input
// that is not valid UTF-8 is decoded as ISO 8859-1 first, since older files
// carry the accented markers in Latin-1.
//
// Parse fails only when no complete block could be read, and it never
// mutates anything on failure; callers can keep their current document.
func Parse(r io.Reader) (*tabedit.Song, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(b) {
		if decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(b), charmap.ISO8859_1.NewDecoder())); err == nil {
			b = decoded
		}
	}
	var song tabedit.Song
	var columns []tabedit.Column
	var blockTitle string
	stringCount := 0
	sawPart := false
	scanner := bufio.NewScanner(bytes.NewReader(b))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, partMarker):
			columns = nil
			stringCount = 0
			blockTitle = ""
			sawPart = true
		case strings.HasPrefix(line, blockTitleMarker):
			blockTitle = trimMarker(line, blockTitleMarker)
		case strings.HasPrefix(line, songTitleMarker):
			if !sawPart {
				song.Title = trimMarker(line, songTitleMarker)
			}
		case strings.HasPrefix(line, artistMarker):
			if !sawPart {
				song.Artist = trimMarker(line, artistMarker)
			}
		default:
			m := stringRowReg.FindStringSubmatch(line)
			if m == nil {
				continue // unknown lines are ignored
			}
			content := m[2]
			if stringCount == 0 {
				// the first string row of a block fixes its column count
				columns = make([]tabedit.Column, len(content)/cellWidth)
			}
			if stringCount < tabedit.NumStrings {
				parseStringRow(columns, stringCount, content)
			}
			stringCount++
			if stringCount == tabedit.NumStrings {
				song.Blocks = append(song.Blocks, tabedit.Block{
					ID:      len(song.Blocks) + 1,
					Title:   blockTitle,
					Columns: columns,
				})
				columns = nil
				stringCount = 0
				blockTitle = ""
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(song.Blocks) == 0 {
		return nil, errors.New("no tablature blocks found in file")
	}
	return &song, nil
}

func parseStringRow(columns []tabedit.Column, str int, content string) {
	for col := range columns {
		start := col * cellWidth
		if start >= len(content) {
			return
		}
		end := start + cellWidth
		if end > len(content) {
			end = len(content)
		}
		chunk := strings.TrimRight(content[start:end], "-")
		if chunk != "" {
			columns[col][str] = tabedit.ParseNote(chunk)
		}
	}
}

func trimMarker(line, marker string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(line, marker), "]"))
}
