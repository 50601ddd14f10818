package catalog

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// fileFormat is the on-disk YAML shape of a catalogue override:
//
//	questions:
//	  - id: Q1
//	    text: 業種（近いもの）
//	    options:
//	      - {key: A, label: 製造}
//	steps:
//	  - title: 基本情報
//	    question_ids: [Q1, Q2, Q3]
type fileFormat struct {
	Questions []Question `yaml:"questions"`
	Steps     []Step     `yaml:"steps"`
}

// Load parses a YAML catalogue and validates it with New.
func Load(r io.Reader) (*Catalog, error) {
	var f fileFormat
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("catalog: decode yaml: %w", err)
	}
	return New(f.Questions, f.Steps)
}

// LoadFile opens path and calls Load. An empty path returns Default().
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
