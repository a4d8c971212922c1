// Package project implements root/project discovery (C4): locating a
// document's root-document parents, the connected project a query should
// be evaluated against, and the source/aux/log/pdf directories used to
// resolve relative paths.
package project

import (
	"os"
	"path/filepath"
	"strings"

	"texlab-go/internal/config"
	"texlab-go/internal/workspace"
)

// Directories is the four-URI result of ProjectRoot::walk_and_find.
type Directories struct {
	SrcDir string
	AuxDir string
	LogDir string
	PdfDir string
}

// statDir abstracts directory marker-file checks so tests don't need to
// touch the real filesystem.
type statDir interface {
	HasFile(dir string, names ...string) bool
}

type osStatDir struct{}

func (osStatDir) HasFile(dir string, names ...string) bool {
	for _, n := range names {
		if _, err := os.Stat(filepath.Join(dir, n)); err == nil {
			return true
		}
	}
	return false
}

// WalkAndFind resolves the four project directories starting from
// startDir. workspaceRoot bounds the
// upward walk so it never escapes the editor's opened workspace.
func WalkAndFind(workspaceRoot, startDir string, cfg *config.Config) Directories {
	return walkAndFind(workspaceRoot, startDir, cfg, osStatDir{})
}

func walkAndFind(workspaceRoot, startDir string, cfg *config.Config, fs statDir) Directories {
	srcDir := startDir
	dir := startDir
	for {
		if fs.HasFile(dir, "texlabroot", ".texlabroot", "latexmkrc", ".latexmkrc") {
			srcDir = dir
			break
		}
		if !workspace.IsAncestorDir(workspaceRoot, dir) || dir == workspaceRoot {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	resolve := func(override string) string {
		if override != "" {
			return filepath.Join(srcDir, override)
		}
		if cfg.Build.OutputDirectory != "" {
			return filepath.Join(srcDir, cfg.Build.OutputDirectory)
		}
		return srcDir
	}

	return Directories{
		SrcDir: srcDir,
		AuxDir: resolve(cfg.AuxDirectory),
		LogDir: resolve(cfg.LogDirectory),
		PdfDir: resolve(cfg.PdfDirectory),
	}
}

// CurrentDirectory resolves the directory relative paths in doc are
// evaluated against:
//  1. the configured root_directory joined onto doc's directory, if set;
//  2. otherwise doc's nearest ancestor that is the root of any
//     can_be_root document;
//  3. otherwise doc's own directory.
func CurrentDirectory(snap *workspace.Snapshot, cfg *config.Config, doc *workspace.Document) string {
	if cfg.RootDirectory != "" {
		return filepath.Join(workspace.PathFromURI(doc.Directory), cfg.RootDirectory)
	}
	if dir, ok := nearestRootAncestor(snap, doc); ok {
		return dir
	}
	return workspace.PathFromURI(doc.Directory)
}

func nearestRootAncestor(snap *workspace.Snapshot, doc *workspace.Document) (string, bool) {
	docDir := workspace.PathFromURI(doc.Directory)
	var best string
	bestLen := -1
	for _, other := range snap.Iter() {
		if other.Tex == nil || !other.Tex.Summary.CanBeRoot {
			continue
		}
		rootDir := workspace.PathFromURI(other.Directory)
		if !isAncestorPath(rootDir, docDir) {
			continue
		}
		if len(rootDir) > bestLen {
			best = rootDir
			bestLen = len(rootDir)
		}
	}
	if bestLen < 0 {
		return "", false
	}
	return best, true
}

func isAncestorPath(ancestor, path string) bool {
	ancestor = filepath.Clean(ancestor)
	path = filepath.Clean(path)
	if ancestor == path {
		return true
	}
	rel, err := filepath.Rel(ancestor, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
