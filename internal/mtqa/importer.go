package mtqa

import (
	"bytes"
	"cmp"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/mtqa/internal/core/annotation"
)

// ErrNoFiles is returned when no import pattern matched a file.
var ErrNoFiles = errors.New("no sentence files matched")

// SentenceFile is the on-disk import format. JSON files parse as well since
// they are valid YAML. CSV files carry the same fields as header columns.
//
//	sentences:
//	  - id: 12
//	    source_text: Der Hund bellt.
//	    machine_translation: The dog barks.
//	    source_language: de
//	    target_language: en
type SentenceFile struct {
	Sentences []SentenceEntry `yaml:"sentences"`
}

// SentenceEntry is one sentence in a SentenceFile.
type SentenceEntry struct {
	ID                   int64  `yaml:"id"`
	SourceText           string `yaml:"source_text"`
	MachineTranslation   string `yaml:"machine_translation"`
	ReferenceTranslation string `yaml:"reference_translation"`
	SourceLanguage       string `yaml:"source_language"`
	TargetLanguage       string `yaml:"target_language"`
	Domain               string `yaml:"domain"`
	Active               *bool  `yaml:"active"`
}

func (e SentenceEntry) sentence() annotation.Sentence {
	active := e.Active == nil || *e.Active
	return annotation.Sentence{
		ID:                   e.ID,
		SourceText:           strings.TrimSpace(e.SourceText),
		MachineTranslation:   e.MachineTranslation,
		ReferenceTranslation: strings.TrimSpace(e.ReferenceTranslation),
		SourceLanguage:       e.SourceLanguage,
		TargetLanguage:       e.TargetLanguage,
		Domain:               e.Domain,
		Active:               active,
	}
}

// ImportResult summarizes an import.
type ImportResult struct {
	Files     []string              `json:"files"`
	Sentences []annotation.Sentence `json:"-"`
	Count     int                   `json:"count"`
}

// ExpandPatterns resolves doublestar patterns into a sorted, de-duplicated
// list of files.
func ExpandPatterns(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		files = append(files, matches...)
	}

	slices.Sort(files)
	files = slices.Compact(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, strings.Join(patterns, " "))
	}
	return files, nil
}

// ReadSentenceFile parses and checks one sentence file. Files with a .csv
// extension are read as CSV, everything else as YAML or JSON.
func ReadSentenceFile(path string) ([]annotation.Sentence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var entries []SentenceEntry
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		entries, err = parseCSV(data)
	} else {
		var f SentenceFile
		err = yaml.Unmarshal(data, &f)
		entries = f.Sentences
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	out := make([]annotation.Sentence, 0, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.SourceText) == "" {
			return nil, fmt.Errorf("%s: sentence %d: source_text is required", path, i+1)
		}
		if strings.TrimSpace(e.MachineTranslation) == "" {
			return nil, fmt.Errorf("%s: sentence %d: machine_translation is required", path, i+1)
		}
		out = append(out, e.sentence())
	}
	return out, nil
}

// CSV imports default to English sources translated into Tagalog.
const (
	csvDefaultSourceLanguage = "en"
	csvDefaultTargetLanguage = "tgl"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// parseCSV reads sentences from CSV with a header row. Columns are matched
// by name; source_text and machine_translation are required and id,
// reference_translation, source_language, target_language and domain are
// optional. Every row must have as many fields as the header.
func parseCSV(data []byte) ([]SentenceEntry, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, err
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"source_text", "machine_translation"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing %s column", required)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var out []SentenceEntry
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		e := SentenceEntry{
			SourceText:           field(rec, "source_text"),
			MachineTranslation:   field(rec, "machine_translation"),
			ReferenceTranslation: field(rec, "reference_translation"),
			SourceLanguage:       cmp.Or(field(rec, "source_language"), csvDefaultSourceLanguage),
			TargetLanguage:       cmp.Or(field(rec, "target_language"), csvDefaultTargetLanguage),
			Domain:               field(rec, "domain"),
		}

		if v := field(rec, "id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				line, _ := r.FieldPos(cols["id"])
				return nil, fmt.Errorf("line %d: invalid id %q", line, v)
			}
			e.ID = id
		}

		out = append(out, e)
	}
	return out, nil
}

// Import loads every file matched by patterns into the sentence store in
// a single transaction.
func (a *App) Import(ctx context.Context, patterns []string) (ImportResult, error) {
	files, err := ExpandPatterns(patterns)
	if err != nil {
		return ImportResult{}, err
	}

	var all []annotation.Sentence
	for _, file := range files {
		sentences, err := ReadSentenceFile(file)
		if err != nil {
			return ImportResult{}, err
		}
		all = append(all, sentences...)
	}

	stored, err := a.Sentences.Import(ctx, all)
	if err != nil {
		return ImportResult{}, fmt.Errorf("import sentences: %w", err)
	}

	a.log.Info().Ctx(ctx).Int("files", len(files)).Int("sentences", len(stored)).Msg("sentences imported")
	return ImportResult{Files: files, Sentences: stored, Count: len(stored)}, nil
}
