package bindgen

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// MetadataFilename is the default name of the interface-description metadata
// file emitted by the upstream interface-definition pipeline.
const MetadataFilename = "ktbind.json"

// ConfigFilename is the default name of the per-component config file,
// looked up next to the metadata file.
const ConfigFilename = "uniffi.toml"

// ComponentInterface is the abstract, language-neutral description of one
// native library's exposed API. It is produced by the upstream pipeline and
// read-only here.
type ComponentInterface struct {
	Namespace string     `json:"namespace"`
	CrateName string     `json:"crate_name"`
	Records   []Record   `json:"records,omitempty"`
	Enums     []Enum     `json:"enums,omitempty"`
	Objects   []Object   `json:"objects,omitempty"`
	Functions []Function `json:"functions,omitempty"`
}

type Record struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields,omitempty"`
}

type Enum struct {
	Name     string   `json:"name"`
	Variants []string `json:"variants,omitempty"`
}

type Object struct {
	Name    string     `json:"name"`
	Methods []Function `json:"methods,omitempty"`
}

type Function struct {
	Name   string  `json:"name"`
	Args   []Field `json:"args,omitempty"`
	Return string  `json:"return,omitempty"`
}

// Field is a named, typed slot: a record field or a function argument. Type
// names are either builtin scalars (`string`, `u32`, ...), a local type name,
// or `<crate>.<Type>` for a type owned by another component.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// LoadComponentInterface decodes one metadata file.
func LoadComponentInterface(path string) (*ComponentInterface, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ci := new(ComponentInterface)
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(ci); err != nil {
		return nil, fmt.Errorf("failed to parse interface metadata %s: %w", path, err)
	}
	if ci.Namespace == "" {
		return nil, fmt.Errorf("interface metadata %s has no namespace", path)
	}
	if ci.CrateName == "" {
		return nil, fmt.Errorf("interface metadata %s has no crate_name", path)
	}
	return ci, nil
}

// Component pairs one interface description with its resolved configuration.
type Component struct {
	CI     *ComponentInterface
	Config *Config
	Dir    string // component directory, base for config expressions and patches
}
