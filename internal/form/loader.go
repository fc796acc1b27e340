package form

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// File permission for written snapshots.
const filePerm = 0o644

// Format identifies the encoding of a form definition file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatForPath picks a format from the file extension; unknown extensions are JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// document accepts both a full asset and a bare {survey, choices} content object.
type document struct {
	UID     string        `json:"uid" yaml:"uid"`
	Name    string        `json:"name" yaml:"name"`
	Content *Content      `json:"content" yaml:"content"`
	Survey  []Node        `json:"survey" yaml:"survey"`
	Choices []ChoiceEntry `json:"choices" yaml:"choices"`
}

// LoadFile loads and parses a form definition from the given path.
func LoadFile(path string) (*Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read form definition %s: %w", path, err)
	}

	return Parse(data, FormatForPath(path))
}

// Parse parses a form definition in the given format.
func Parse(data []byte, format Format) (*Asset, error) {
	var doc document

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse form YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse form JSON: %w", err)
		}
	}

	asset := &Asset{UID: doc.UID, Name: doc.Name}
	if doc.Content != nil {
		asset.Content = *doc.Content
	} else {
		asset.Content = Content{Survey: doc.Survey, Choices: doc.Choices}
	}

	return asset, nil
}

// WriteSnapshot writes the raw asset JSON to path, indented for reading.
// Unknown keys are kept since the raw bytes are written, not the parsed model.
func WriteSnapshot(path string, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err != nil {
		return fmt.Errorf("failed to indent form snapshot: %w", err)
	}

	buf.WriteByte('\n')

	if err := os.WriteFile(path, buf.Bytes(), filePerm); err != nil {
		return fmt.Errorf("failed to write form snapshot %s: %w", path, err)
	}

	return nil
}
