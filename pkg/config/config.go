// Package config defines the options that control a conversion run.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Level selects how much evidence the type inferencer uses.
type Level int

const (
	// LevelBasic only honours destructuring defaults.
	LevelBasic Level = iota
	// LevelStandard adds usage-based evidence.
	LevelStandard
	// LevelAdvanced adds element types, call signatures and state hook
	// type arguments.
	LevelAdvanced
)

// String returns "basic", "standard" or "advanced".
func (l Level) String() string {
	switch l {
	case LevelBasic:
		return "basic"
	case LevelAdvanced:
		return "advanced"
	default:
		return "standard"
	}
}

// ParseLevel parses a level name. Matching is case-insensitive.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "basic":
		return LevelBasic, nil
	case "standard", "":
		return LevelStandard, nil
	case "advanced":
		return LevelAdvanced, nil
	default:
		return LevelStandard, fmt.Errorf("unknown conversion level %q (want basic, standard or advanced)", s)
	}
}

// MarshalText encodes the level by name.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText decodes a level name.
func (l *Level) UnmarshalText(text []byte) error {
	level, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// DefaultSuffix is appended to component names to form declaration names.
const DefaultSuffix = "Props"

// ConversionConfig holds the options for one conversion call. It is passed
// explicitly; nothing is read from the environment.
type ConversionConfig struct {
	Level                   Level  `yaml:"conversion_level" json:"conversion_level"`
	PreserveFormatting      bool   `yaml:"preserve_formatting" json:"preserve_formatting"`
	IncludeDocComments      bool   `yaml:"include_doc_comments" json:"include_doc_comments"`
	CustomDeclarationNaming bool   `yaml:"custom_declaration_naming" json:"custom_declaration_naming"`
	DeclarationPrefix       string `yaml:"declaration_prefix" json:"declaration_prefix"`
	DeclarationSuffix       string `yaml:"declaration_suffix" json:"declaration_suffix"`
}

// Default returns the default configuration: standard level, canonical
// layout, no doc comment copies and "Props"-suffixed declaration names.
func Default() ConversionConfig {
	return ConversionConfig{
		Level:             LevelStandard,
		DeclarationSuffix: DefaultSuffix,
	}
}

// DeclarationName returns the declaration name for a component.
// Prefix and suffix only apply when CustomDeclarationNaming is set.
func (c ConversionConfig) DeclarationName(component string) string {
	if !c.CustomDeclarationNaming {
		return component + DefaultSuffix
	}
	return c.DeclarationPrefix + component + c.DeclarationSuffix
}

// Validate checks the level and that affixes are identifier characters.
func (c ConversionConfig) Validate() error {
	if c.Level < LevelBasic || c.Level > LevelAdvanced {
		return fmt.Errorf("invalid conversion level %d", c.Level)
	}
	if !c.CustomDeclarationNaming {
		return nil
	}
	if !isIdentifierPart(c.DeclarationPrefix) {
		return fmt.Errorf("declaration prefix %q is not a valid identifier fragment", c.DeclarationPrefix)
	}
	if !isIdentifierPart(c.DeclarationSuffix) {
		return fmt.Errorf("declaration suffix %q is not a valid identifier fragment", c.DeclarationSuffix)
	}
	return nil
}

// Fingerprint returns a stable string that differs whenever two
// configurations could produce different output.
func (c ConversionConfig) Fingerprint() string {
	prefix, suffix := "", DefaultSuffix
	if c.CustomDeclarationNaming {
		prefix, suffix = c.DeclarationPrefix, c.DeclarationSuffix
	}
	return fmt.Sprintf("%s|fmt=%t|doc=%t|name=%s*%s",
		c.Level, c.PreserveFormatting, c.IncludeDocComments, prefix, suffix)
}

func isIdentifierPart(s string) bool {
	for _, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// File is the on-disk project configuration (.tsxify/config.yaml).
type File struct {
	Version    string           `yaml:"version,omitempty"`
	Conversion ConversionConfig `yaml:"conversion"`
	Include    []string         `yaml:"include,omitempty"`
	Exclude    []string         `yaml:"exclude,omitempty"`
	OutDir     string           `yaml:"out_dir,omitempty"`
}

// DefaultPath is where the CLI looks for the project configuration.
const DefaultPath = ".tsxify/config.yaml"

// Load reads a project configuration. Missing keys keep their defaults.
// Returns nil (no error) if the file does not exist.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	file := File{Conversion: Default()}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := file.Conversion.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return &file, nil
}

// Save writes a project configuration as YAML.
func Save(path string, file *File) error {
	data, err := yaml.Marshal(file)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
