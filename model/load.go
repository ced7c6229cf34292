package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// limitsFile is the on-disk shape of a limit table:
//
//	models:
//	  gpt-35-turbo: 4000
//	  gpt-4: 8100
type limitsFile struct {
	Models map[string]int `json:"models" yaml:"models" toml:"models"`
}

// Format names accepted by ParseLimits.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
	FormatJSON = "json"
)

// FormatFromPath infers a file format from its extension.
// Returns "" for unrecognized extensions.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	}
	return ""
}

// ParseLimits decodes a limit table in the given format and validates it.
func ParseLimits(data []byte, format string) (LimitTable, error) {
	var f limitsFile
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &f)
	case FormatTOML:
		err = toml.Unmarshal(data, &f)
	case FormatJSON:
		err = json.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("unsupported limits format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s limits: %w", format, err)
	}

	table := LimitTable(f.Models)
	if table == nil {
		table = LimitTable{}
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// LoadLimitsFile reads a limit table from a YAML, TOML or JSON file.
// The format is chosen by extension.
func LoadLimitsFile(path string) (LimitTable, error) {
	format := FormatFromPath(path)
	if format == "" {
		return nil, fmt.Errorf("limits file %s: unrecognized extension", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read limits file: %w", err)
	}
	table, err := ParseLimits(data, format)
	if err != nil {
		return nil, fmt.Errorf("limits file %s: %w", path, err)
	}
	return table, nil
}
