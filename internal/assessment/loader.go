package assessment

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// tieredFile is the on-disk form of a tiered assessment.
type tieredFile struct {
	ID              string                    `yaml:"id"`
	Title           string                    `yaml:"title"`
	Questions       []Question                `yaml:"questions"`
	Bands           []Band                    `yaml:"bands"`
	Interpretations map[string]Interpretation `yaml:"interpretations"`
}

// ParseTiered decodes and validates a tiered assessment from YAML.
func ParseTiered(data []byte) (*Tiered, error) {
	var f tieredFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidBank, err)
	}
	for i := range f.Questions {
		if f.Questions[i].Kind == "" {
			f.Questions[i].Kind = KindBinary
		}
	}
	bank, err := NewBank(f.ID, f.Title, f.Questions)
	if err != nil {
		return nil, err
	}
	interp := make(map[Tier]Interpretation, len(f.Interpretations))
	for k, v := range f.Interpretations {
		interp[Tier(k)] = v
	}
	return NewTiered(bank, f.Bands, interp)
}

// LoadTieredFile reads one YAML assessment file.
func LoadTieredFile(path string) (*Tiered, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read assessment file: %w", err)
	}
	t, err := ParseTiered(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// LoadDir loads every *.yaml and *.yml file in dir, sorted by file name.
// The first invalid file aborts the load.
func LoadDir(dir string) ([]*Tiered, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob assessments: %w", err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	out := make([]*Tiered, 0, len(paths))
	for _, p := range paths {
		t, err := LoadTieredFile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
