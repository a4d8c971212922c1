package workspace

import (
	"net/url"
	"path/filepath"
	"strings"
)

// PathFromURI recovers a filesystem path from a file:// URI. Non-file
// schemes fall back to the URI's opaque/path portion unmodified, which is
// enough for the in-memory, test-only documents the engine also has to
// accommodate.
func PathFromURI(u string) string {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Scheme == "" {
		return u
	}
	if parsed.Scheme != "file" {
		return strings.TrimPrefix(u, parsed.Scheme+"://")
	}
	p := parsed.Path
	if p == "" {
		p = parsed.Opaque
	}
	return filepath.FromSlash(p)
}

// URIFromPath builds a file:// URI from a filesystem path.
func URIFromPath(path string) string {
	slashed := filepath.ToSlash(path)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	u := url.URL{Scheme: "file", Path: slashed}
	return u.String()
}

// DirOfURI returns the URI of a URI's containing directory.
func DirOfURI(u string) string {
	return URIFromPath(filepath.Dir(PathFromURI(u)))
}

// StemOfURI returns a URI's basename with its extension stripped.
func StemOfURI(u string) string {
	base := filepath.Base(PathFromURI(u))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// JoinURI resolves name against the directory denoted by dirURI.
func JoinURI(dirURI, name string) string {
	return URIFromPath(filepath.Join(PathFromURI(dirURI), name))
}

// IsAncestorDir reports whether dirURI names childURI itself or a
// filesystem ancestor of it.
func IsAncestorDir(dirURI, childURI string) bool {
	dir := filepath.Clean(PathFromURI(dirURI))
	child := filepath.Clean(PathFromURI(childURI))
	if dir == child {
		return true
	}
	rel, err := filepath.Rel(dir, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
