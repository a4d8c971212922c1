// Package components loads the packaged completion/component database: a
// gzipped JSON asset describing the commands and environments each known
// LaTeX package/class contributes. Building the asset itself is
// out of scope (it ships as a read-only data file); this package owns its
// schema, decompression, and the two lookup indices the completion
// provider (C8) needs — by file name and by metadata name.
package components

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
)

// Parameter is one argument slot of a documented command.
type Parameter struct {
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Command is one documented command contributed by a component.
type Command struct {
	Name       string        `json:"name"`
	Image      string        `json:"image,omitempty"`
	Glyph      string        `json:"glyph,omitempty"`
	Parameters [][]Parameter `json:"parameters,omitempty"`
}

// Component is one package or class entry. FileNames is empty for the
// synthetic "kernel" entry representing built-in LaTeX core commands.
type Component struct {
	FileNames    []string  `json:"fileNames"`
	References   []string  `json:"references"`
	Commands     []Command `json:"commands"`
	Environments []string  `json:"environments"`
}

// Metadata is the human-facing description of a component, keyed
// separately from Component so the two lookup indices can diverge (a
// component may be indexed by several file names but one canonical
// metadata name).
type Metadata struct {
	Name        string `json:"name"`
	Caption     string `json:"caption,omitempty"`
	Description string `json:"description,omitempty"`
}

// asset is the top-level JSON schema.
type asset struct {
	Components []Component `json:"components"`
	Metadata   []Metadata  `json:"metadata"`
}

// Database is the loaded, indexed component set.
type Database struct {
	Components []Component
	Metadata   []Metadata

	byFileName map[string]*Component
	byMetaName map[string]*Metadata
}

// Empty returns a Database with no components, used when no packaged
// asset is embedded in the binary — completion then falls back to
// project-local and kernel-only symbols.
func Empty() *Database {
	return &Database{byFileName: map[string]*Component{}, byMetaName: map[string]*Metadata{}}
}

// Load decompresses and decodes the gzipped JSON asset from r and builds
// both lookup indices.
func Load(r io.Reader) (*Database, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("components: open gzip: %w", err)
	}
	defer gz.Close()

	var a asset
	if err := json.NewDecoder(gz).Decode(&a); err != nil {
		return nil, fmt.Errorf("components: decode json: %w", err)
	}

	db := &Database{
		Components: a.Components,
		Metadata:   a.Metadata,
		byFileName: make(map[string]*Component, len(a.Components)),
		byMetaName: make(map[string]*Metadata, len(a.Metadata)),
	}
	for i := range db.Components {
		c := &db.Components[i]
		for _, fn := range c.FileNames {
			db.byFileName[fn] = c
		}
	}
	for i := range db.Metadata {
		m := &db.Metadata[i]
		db.byMetaName[m.Name] = m
	}
	return db, nil
}

// ByFileName looks up the component that declares fileName among its
// FileNames (e.g. "amsmath.sty").
func (d *Database) ByFileName(fileName string) (*Component, bool) {
	c, ok := d.byFileName[fileName]
	return c, ok
}

// ByMetadataName looks up the human-facing metadata for a component name.
func (d *Database) ByMetadataName(name string) (*Metadata, bool) {
	m, ok := d.byMetaName[name]
	return m, ok
}

// HasFile reports whether fileName is known to any component — used by
// the dependency graph to decide a link is satisfied by an installed
// package rather than missing.
func (d *Database) HasFile(fileName string) bool {
	_, ok := d.byFileName[fileName]
	return ok
}

// Kernel returns the synthetic zero-FileNames component representing
// built-in LaTeX core commands, if loaded.
func (d *Database) Kernel() (*Component, bool) {
	for i := range d.Components {
		if len(d.Components[i].FileNames) == 0 {
			return &d.Components[i], true
		}
	}
	return nil, false
}
