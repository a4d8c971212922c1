// Package distro defines the interface to a TeX distribution's file-name
// database (TeX Live / MiKTeX). Building the actual database is explicitly
// out of scope; this
// package gives the dependency graph (C5) and completion provider (C8) a
// stable seam to call through, plus a stub resolver that always misses so
// the engine runs correctly with no distribution installed.
package distro

// Resolver looks up files and known components in an installed TeX
// distribution.
type Resolver interface {
	// Resolve returns the absolute path of fileName within the
	// distribution's database, if indexed.
	Resolve(fileName string) (path string, ok bool)

	// HasComponent reports whether name (a package or class stem, with no
	// extension) is a known component of the distribution — used by the
	// dependency graph to avoid flagging an installed package as a
	// missing link.
	HasComponent(name string) bool
}

// NullResolver is the distribution-absent default: every lookup misses.
// The engine degrades gracefully (candidate links resolve only against
// workspace files; completion falls back to the packaged component
// database and project-local symbols).
type NullResolver struct{}

func (NullResolver) Resolve(string) (string, bool) { return "", false }
func (NullResolver) HasComponent(string) bool      { return false }
