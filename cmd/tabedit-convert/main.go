package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tabedit/tabedit"
	"github.com/tabedit/tabedit/tabfmt"
	"github.com/tabedit/tabedit/version"
)

func main() {
	safe := flag.Bool("n", false, "Never overwrite files; if a file already exists and would be overwritten, give an error.")
	list := flag.Bool("l", false, "Do not write files; just list the files that would change instead.")
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	help := flag.Bool("h", false, "Show help.")
	jsonOut := flag.Bool("j", false, "Output the song as a .json file.")
	yamlOut := flag.Bool("y", false, "Output the song as a .yml file.")
	textOut := flag.Bool("t", false, "Output the song as a .txt tablature file. This is the default when no output format is given.")
	outPath := flag.String("o", "", "Directory or filename where to write the output. Extension is ignored. The directory and its parents are created if needed. By default, output is placed next to the input file.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	if !*jsonOut && !*yamlOut && !*textOut {
		*textOut = true
	}
	output := func(filename string, extension string, contents []byte) error {
		if *stdout {
			fmt.Print(string(contents))
			return nil
		}
		dir, name := filepath.Split(filename)
		if *outPath != "" {
			// check if it's an already existing directory and the user just forgot a trailing slash
			if info, err := os.Stat(*outPath); err == nil && info.IsDir() {
				dir = *outPath
			} else {
				outdir, outname := filepath.Split(*outPath)
				if outdir != "" {
					dir = outdir
				}
				if outname != "" {
					name = outname
				}
			}
		}
		name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
		f := filepath.Join(dir, name)
		if original, err := os.ReadFile(f); err == nil {
			if bytes.Equal(original, contents) {
				return nil // no need to update
			}
			if !*list && *safe {
				return fmt.Errorf("file %v would be overwritten", f)
			}
		}
		if *list {
			fmt.Println(f)
			return nil
		}
		if dir != "" {
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return fmt.Errorf("could not create output directory %v: %v", dir, err)
			}
		}
		if err := os.WriteFile(f, contents, 0644); err != nil {
			return fmt.Errorf("could not write file %v: %v", f, err)
		}
		return nil
	}
	process := func(filename string) error {
		inputBytes, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %v", filename, err)
		}
		song, err := decode(inputBytes)
		if err != nil {
			return fmt.Errorf("could not load %v: %v", filename, err)
		}
		if *jsonOut {
			jsonSong, err := json.Marshal(song)
			if err != nil {
				return fmt.Errorf("could not marshal the song as a json file: %v", err)
			}
			if err := output(filename, ".json", jsonSong); err != nil {
				return fmt.Errorf("error outputting json file: %v", err)
			}
		}
		if *yamlOut {
			yamlSong, err := yaml.Marshal(song)
			if err != nil {
				return fmt.Errorf("could not marshal the song as a yml file: %v", err)
			}
			if err := output(filename, ".yml", yamlSong); err != nil {
				return fmt.Errorf("error outputting yml file: %v", err)
			}
		}
		if *textOut {
			var buf bytes.Buffer
			if err := tabfmt.Export(&buf, song); err != nil {
				return fmt.Errorf("could not export the song as tablature: %v", err)
			}
			if err := output(filename, ".txt", buf.Bytes()); err != nil {
				return fmt.Errorf("error outputting txt file: %v", err)
			}
		}
		return nil
	}
	retCode := 0
	for _, param := range flag.Args() {
		if err := process(param); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			retCode = 1
		}
	}
	os.Exit(retCode)
}

func decode(b []byte) (*tabedit.Song, error) {
	var song tabedit.Song
	errJSON := json.Unmarshal(b, &song)
	if errJSON == nil && song.Validate() == nil {
		return &song, nil
	}
	song = tabedit.Song{}
	errYaml := yaml.Unmarshal(b, &song)
	if errYaml == nil && song.Validate() == nil {
		return &song, nil
	}
	parsed, errText := tabfmt.Parse(bytes.NewReader(b))
	if errText == nil {
		return parsed, nil
	}
	return nil, fmt.Errorf("the file is not a .json (%v), .yml (%v) or tablature .txt (%v) song", errJSON, errYaml, errText)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] [songfiles...]\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Converts tablature songs between the .yml, .json and plain-text formats.")
	flag.PrintDefaults()
}
