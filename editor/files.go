package editor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tabedit/tabedit"
	"github.com/tabedit/tabedit/tabfmt"
)

// ReadSong loads a song from the reader, accepting .json, .yml or the text
// tablature format. The whole file is read and parsed before any state
// changes, so a failed load leaves the current document untouched.
func (m *Model) ReadSong(r io.ReadCloser) {
	b, err := io.ReadAll(r)
	if err != nil {
		m.Alert(fmt.Sprintf("Error reading song file: %v", err), Error)
		return
	}
	if err := r.Close(); err != nil {
		m.Alert(fmt.Sprintf("Error closing song file: %v", err), Error)
		return
	}
	song, err := decodeSong(b)
	if err != nil {
		m.Alert(fmt.Sprintf("Error loading song: %v", err), Error)
		return
	}
	m.saveUndo("ReadSong", 0)
	m.setSongNoUndo(song)
	if f, ok := r.(*os.File); ok {
		m.d.FilePath = f.Name()
		// the song just came from disk, so there is nothing unsaved
		m.d.ChangedSinceSave = false
	}
}

func decodeSong(b []byte) (tabedit.Song, error) {
	var song tabedit.Song
	errJSON := json.Unmarshal(b, &song)
	if errJSON == nil && song.Validate() == nil {
		return song, nil
	}
	song = tabedit.Song{}
	errYaml := yaml.Unmarshal(b, &song)
	if errYaml == nil && song.Validate() == nil {
		return song, nil
	}
	parsed, errText := tabfmt.Parse(bytes.NewReader(b))
	if errText == nil {
		return *parsed, nil
	}
	return tabedit.Song{}, fmt.Errorf("not a valid song file: %v / %v / %v", errJSON, errYaml, errText)
}

// WriteSong saves the song as .json when the destination has that extension
// and as YAML otherwise.
func (m *Model) WriteSong(w io.WriteCloser) {
	path := ""
	if f, ok := w.(*os.File); ok {
		path = f.Name()
	}
	var contents []byte
	var err error
	if filepath.Ext(path) == ".json" {
		contents, err = json.Marshal(m.d.Song)
	} else {
		contents, err = yaml.Marshal(m.d.Song)
	}
	if err != nil {
		m.Alert(fmt.Sprintf("Error marshaling a song file: %v", err), Error)
		return
	}
	if _, err := w.Write(contents); err != nil {
		m.Alert(fmt.Sprintf("Error writing to file: %v", err), Error)
		return
	}
	if err := w.Close(); err != nil {
		m.Alert(fmt.Sprintf("Error closing song file: %v", err), Error)
		return
	}
	if path != "" {
		m.d.FilePath = path
		m.d.ChangedSinceSave = false
	}
}

// ExportText writes the song in the text tablature format. The full output
// string is built from the current state before anything is written.
func (m *Model) ExportText(w io.WriteCloser) {
	var buf bytes.Buffer
	if err := tabfmt.Export(&buf, &m.d.Song); err != nil {
		m.Alert(fmt.Sprintf("Error exporting tablature: %v", err), Error)
		return
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		m.Alert(fmt.Sprintf("Error writing to file: %v", err), Error)
		return
	}
	if err := w.Close(); err != nil {
		m.Alert(fmt.Sprintf("Error closing file: %v", err), Error)
	}
}

// ExportFilename is the suggested file name for ExportText output, derived
// from the song title.
func (m *Model) ExportFilename() string {
	return tabfmt.ExportFilename(m.d.Song.Title)
}

// ImportText replaces the song with one parsed from the text tablature
// format. An invalid file is reported through an alert and changes nothing.
func (m *Model) ImportText(r io.ReadCloser) {
	defer r.Close()
	song, err := tabfmt.Parse(r)
	if err != nil {
		m.Alert(fmt.Sprintf("Invalid tablature file: %v", err), Error)
		return
	}
	m.saveUndo("ImportText", 0)
	m.setSongNoUndo(*song)
}

// MarshalRecovery marshals the whole model data, including the undo/redo
// stacks, for crash recovery.
func (m *Model) MarshalRecovery() []byte {
	out, err := json.Marshal(m.d)
	if err != nil {
		return nil
	}
	if m.d.RecoveryFilePath != "" {
		os.Remove(m.d.RecoveryFilePath)
	}
	m.d.ChangedSinceRecovery = false
	return out
}

// SaveRecovery writes the recovery snapshot to the configured path, creating
// the directory when needed.
func (m *Model) SaveRecovery() error {
	if !m.d.ChangedSinceRecovery {
		return nil
	}
	if m.d.RecoveryFilePath == "" {
		return errors.New("no recovery file path")
	}
	out, err := json.Marshal(m.d)
	if err != nil {
		return fmt.Errorf("could not marshal recovery data: %w", err)
	}
	dir := filepath.Dir(m.d.RecoveryFilePath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		os.MkdirAll(dir, os.ModePerm)
	}
	if err := os.WriteFile(m.d.RecoveryFilePath, out, 0644); err != nil {
		return fmt.Errorf("could not write recovery file: %w", err)
	}
	m.d.ChangedSinceRecovery = false
	return nil
}

// UnmarshalRecovery restores model data from a recovery snapshot.
func (m *Model) UnmarshalRecovery(bytes []byte) {
	if err := json.Unmarshal(bytes, &m.d); err != nil {
		return
	}
	if m.d.UsedIDs == nil {
		m.d.UsedIDs = make(map[int]bool)
	}
	if m.d.Song.Validate() != nil {
		m.setSongNoUndo(tabedit.Song{Blocks: []tabedit.Block{tabedit.NewBlock(1, m.columns)}})
	}
	m.d.ChangedSinceRecovery = false
	m.clampPositions()
}

func (m *Model) loadRecovery() {
	b, err := os.ReadFile(m.d.RecoveryFilePath)
	if err != nil {
		return
	}
	path := m.d.RecoveryFilePath
	m.UnmarshalRecovery(b)
	m.d.RecoveryFilePath = path
}
