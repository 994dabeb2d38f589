// Package icontable loads the icon classification table from YAML.
package icontable

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/user/course-harvester/internal/entity"
	"gopkg.in/yaml.v2"
)

//go:embed icons.yaml
var defaultTable []byte

var ErrInvalidTable = errors.New("invalid icon table")

type file struct {
	Icons []icon `yaml:"icons"`
}

type icon struct {
	Signature    string `yaml:"signature"`
	Kind         string `yaml:"kind"`
	Downloadable bool   `yaml:"downloadable"`
}

// Default returns the table compiled into the binary.
func Default() (entity.ClassificationTable, error) {
	return Parse(defaultTable)
}

// Load reads a table from path on fs.
func Load(fs afero.Fs, path string) (entity.ClassificationTable, error) {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return entity.ClassificationTable{}, fmt.Errorf("read icon table: %w", err)
	}
	table, err := Parse(content)
	if err != nil {
		return entity.ClassificationTable{}, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// Parse decodes a YAML table. Empty and duplicate signatures are rejected.
func Parse(content []byte) (entity.ClassificationTable, error) {
	var f file
	if err := yaml.UnmarshalStrict(content, &f); err != nil {
		return entity.ClassificationTable{}, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}

	verdicts := make(map[entity.IconSignature]bool, len(f.Icons))
	for i, ic := range f.Icons {
		if ic.Signature == "" {
			return entity.ClassificationTable{}, fmt.Errorf("%w: entry %d has no signature", ErrInvalidTable, i)
		}
		sig := entity.IconSignature(ic.Signature)
		if _, dup := verdicts[sig]; dup {
			return entity.ClassificationTable{}, fmt.Errorf("%w: duplicate signature %q", ErrInvalidTable, ic.Signature)
		}
		verdicts[sig] = ic.Downloadable
	}
	return entity.NewClassificationTable(verdicts), nil
}
