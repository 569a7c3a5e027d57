// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package module discovers modules on disk, tracks which of them are
// installed and drives their install/uninstall lifecycle.
package module

import (
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// DefaultPattern matches one descriptor file per immediate subdirectory of a
// search directory.
const DefaultPattern = "*/module.yaml"

// Descriptor is the parsed content of a module descriptor file.
//
// Descriptors are YAML documents; JSON descriptors are accepted as well since
// JSON is valid YAML.
type Descriptor struct {
	// Path is the module root directory. It is derived from the descriptor
	// location and never read from the file.
	Path string `json:"-" yaml:"-"`

	Name        string   `json:"name,omitempty" yaml:"name" jsonschema:"description=Unique module name"`
	Protected   bool     `json:"protected,omitempty" yaml:"protected" jsonschema:"description=Protected modules cannot be uninstalled"`
	Providers   []string `json:"providers,omitempty" yaml:"providers" jsonschema:"description=Provider identifiers registered at boot"`
	Files       []string `json:"files,omitempty" yaml:"files" jsonschema:"description=Files loaded once at boot, relative to the module root"`
	Installer   *string  `json:"installer,omitempty" yaml:"installer" jsonschema:"description=Installer hook identifier"`
	Uninstaller *string  `json:"uninstaller,omitempty" yaml:"uninstaller" jsonschema:"description=Uninstaller hook identifier"`
}

// LoadDescriptor reads and parses the descriptor file at path.
func LoadDescriptor(path string) (*Descriptor, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, descriptorError(path, err, "module descriptor path could not be resolved [%s]", path)
	}

	data, err := os.ReadFile(abs) //nolint:gosec // descriptor paths come from configured search directories
	if err != nil {
		return nil, descriptorError(abs, err, "module descriptor could not be opened [%s]", abs)
	}

	return ParseDescriptor(data, filepath.Dir(abs))
}

// ParseDescriptor parses descriptor data for a module rooted at dir.
// Missing or null fields fall back to their zero values.
func ParseDescriptor(data []byte, dir string) (*Descriptor, error) {
	if len(data) == 0 {
		return nil, descriptorError(dir, nil, "module descriptor is empty [%s]", dir)
	}

	if err := ValidateSchema(data); err != nil {
		return nil, descriptorError(dir, err, "module has corrupted descriptor [%s]: %s", dir, FormatSchemaError(err))
	}

	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, descriptorError(dir, err, "module has corrupted descriptor [%s]", dir)
	}

	d.Path = dir
	if d.Providers == nil {
		d.Providers = []string{}
	}
	if d.Files == nil {
		d.Files = []string{}
	}

	return &d, nil
}

// clone returns a deep copy so modules never share slices with callers.
func (d *Descriptor) clone() Descriptor {
	c := *d
	c.Providers = slices.Clone(d.Providers)
	c.Files = slices.Clone(d.Files)
	if d.Installer != nil {
		s := *d.Installer
		c.Installer = &s
	}
	if d.Uninstaller != nil {
		s := *d.Uninstaller
		c.Uninstaller = &s
	}
	if c.Providers == nil {
		c.Providers = []string{}
	}
	if c.Files == nil {
		c.Files = []string{}
	}
	return c
}
