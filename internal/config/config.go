package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"
)

// Format is the encoding of a settings file.
type Format int

const (
	YAML Format = iota
	TOML
)

func (f Format) String() string {
	if f == TOML {
		return "toml"
	}
	return "yaml"
}

// FormatOf picks the format by file extension. Everything except .toml is YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return TOML
	}
	return YAML
}

// Parse decodes settings on top of Default. Unknown keys are rejected.
func Parse(r io.Reader, format Format) (*Settings, error) {
	s := Default()
	switch format {
	case TOML:
		decoder := toml.NewDecoder(r)
		decoder.DisallowUnknownFields()
		err := decoder.Decode(s)
		if err != nil {
			return nil, err
		}
		err = s.validate()
		if err != nil {
			return nil, err
		}
	default:
		decoder := yaml.NewDecoder(r)
		decoder.KnownFields(true)
		err := decoder.Decode(s)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	}
	return s, nil
}

// Load reads the settings file at path.
func Load(path string) (*Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	s, err := Parse(f, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

var defaultNames = []string{"config.yaml", "config.yml", "config.toml"}

// DefaultPath returns the first existing settings file in the user config
// directory, or an empty string if there is none.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	for _, name := range defaultNames {
		path := filepath.Join(dir, appName, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func keyEmptyError(key string) error {
	return fmt.Errorf("key '%s' is missing or value is empty", key)
}
