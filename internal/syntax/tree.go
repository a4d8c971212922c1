package syntax

import "strings"

// Range is a half-open byte-offset span [Start, End) into a document's text.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int              { return r.End - r.Start }
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset <= r.End
}
func (r Range) ContainsExclusiveEnd(offset int) bool {
	return offset >= r.Start && offset < r.End
}
func (r Range) IsEmpty() bool { return r.Start == r.End }

// GreenElement is either a *GreenToken (leaf, preserves original bytes) or
// a *GreenNode (interior, ordered children). The green tree is immutable
// and carries no absolute offsets: offsets are computed while walking the
// red tree (SyntaxNode) below.
type GreenElement interface {
	elementKind() Kind
	width() int
}

// GreenToken is a leaf holding exactly the bytes it covers, including
// trivia (whitespace/comments) — required so concatenating every token in
// document order always reproduces the source byte-for-byte.
type GreenToken struct {
	Kind Kind
	Text string
}

func (t *GreenToken) elementKind() Kind { return t.Kind }
func (t *GreenToken) width() int        { return len(t.Text) }

// NewToken constructs a leaf token.
func NewToken(kind Kind, text string) *GreenToken { return &GreenToken{Kind: kind, Text: text} }

// GreenNode is an interior node: a kind tag plus ordered children. Width is
// cached at construction time (sum of children widths) so Range computation
// while walking the red tree is O(depth), not O(size).
type GreenNode struct {
	Kind     Kind
	Children []GreenElement
	w        int
}

func (n *GreenNode) elementKind() Kind { return n.Kind }
func (n *GreenNode) width() int        { return n.w }

// NewNode constructs an interior node and caches its total width.
func NewNode(kind Kind, children ...GreenElement) *GreenNode {
	n := &GreenNode{Kind: kind, Children: children}
	for _, c := range children {
		n.w += c.width()
	}
	return n
}

// Append adds a child in place, recomputing the cached width. Builders use
// this while accumulating children; once handed to a SyntaxNode the tree is
// treated as immutable.
func (n *GreenNode) Append(c GreenElement) {
	n.Children = append(n.Children, c)
	n.w += c.width()
}

// Text reconstructs the exact original bytes covered by a green element by
// concatenating every leaf token in document order. Used to verify the
// lossless invariant and by the formatter.
func Text(e GreenElement) string {
	var sb strings.Builder
	writeText(e, &sb)
	return sb.String()
}

func writeText(e GreenElement, sb *strings.Builder) {
	switch v := e.(type) {
	case *GreenToken:
		sb.WriteString(v.Text)
	case *GreenNode:
		for _, c := range v.Children {
			writeText(c, sb)
		}
	}
}

// SyntaxNode is the "red" tree: a lazily-offset-annotated wrapper over a
// green element giving every node/token a stable absolute Range and parent
// pointer. Each NewRoot call builds a fresh red tree whose children are
// materialized lazily, on the first Children() call of each node.
type SyntaxNode struct {
	green      GreenElement
	rng        Range
	parent     *SyntaxNode
	indexInParent int
	children   []*SyntaxNode // nil until Children() called, or nil forever if token
}

// NewRoot wraps a green tree rooted at offset 0.
func NewRoot(green GreenElement) *SyntaxNode {
	return &SyntaxNode{green: green, rng: Range{0, green.width()}}
}

func (n *SyntaxNode) Kind() Kind   { return n.green.elementKind() }
func (n *SyntaxNode) Range() Range { return n.rng }
func (n *SyntaxNode) Parent() *SyntaxNode { return n.parent }
func (n *SyntaxNode) IndexInParent() int  { return n.indexInParent }

// IsToken reports whether this red node wraps a leaf token.
func (n *SyntaxNode) IsToken() bool {
	_, ok := n.green.(*GreenToken)
	return ok
}

// Token returns the underlying green token and true if this is a leaf.
func (n *SyntaxNode) Token() (*GreenToken, bool) {
	t, ok := n.green.(*GreenToken)
	return t, ok
}

// Green returns the underlying green node, if this wraps one.
func (n *SyntaxNode) Green() (*GreenNode, bool) {
	g, ok := n.green.(*GreenNode)
	return g, ok
}

// Text returns the exact source bytes this subtree covers.
func (n *SyntaxNode) Text() string { return Text(n.green) }

// Children materializes (once, memoized) the direct child red nodes in
// document order, each with its absolute Range computed from the running
// offset.
func (n *SyntaxNode) Children() []*SyntaxNode {
	if n.children != nil {
		return n.children
	}
	g, ok := n.green.(*GreenNode)
	if !ok {
		return nil
	}
	children := make([]*SyntaxNode, 0, len(g.Children))
	offset := n.rng.Start
	for i, c := range g.Children {
		w := c.width()
		child := &SyntaxNode{
			green:         c,
			rng:           Range{offset, offset + w},
			parent:        n,
			indexInParent: i,
		}
		children = append(children, child)
		offset += w
	}
	n.children = children
	return children
}

// WalkEvent distinguishes the two events a Walk callback may receive for a
// single node.
type WalkEvent int

const (
	EventEnter WalkEvent = iota
	EventLeave
)

// ErrSkipSubtree is returned by a Walk callback from an Enter event to skip
// descending into that node's children; it must not be returned from Leave.
var ErrSkipSubtree = &skipSubtreeSentinel{}

type skipSubtreeSentinel struct{}

func (*skipSubtreeSentinel) Error() string { return "syntax: skip subtree" }

// WalkFunc is invoked once per Enter and once per Leave for every node in
// the tree (tokens receive only an Enter event, no Leave, since they have
// no children). Returning ErrSkipSubtree from an Enter callback skips the
// node's children and its matching Leave event.
type WalkFunc func(node *SyntaxNode, event WalkEvent) error

// Walk performs a root-to-leaf preorder traversal, delivering an enter and
// a leave event for every node, with a skip-subtree escape hatch a
// callback can use to prune descent into a node's children.
func Walk(root *SyntaxNode, fn WalkFunc) error {
	if root.IsToken() {
		return fn(root, EventEnter)
	}
	if err := fn(root, EventEnter); err != nil {
		if err == ErrSkipSubtree {
			return nil
		}
		return err
	}
	for _, child := range root.Children() {
		if err := Walk(child, fn); err != nil {
			return err
		}
	}
	return fn(root, EventLeave)
}

// Bias selects which neighbouring token a token-at-offset lookup prefers
// when the offset falls exactly on a token boundary.
type Bias int

const (
	BiasLeft Bias = iota
	BiasRight
	// BiasSingle requires the offset to fall strictly inside exactly one
	// token; boundary offsets return nil.
	BiasSingle
)

// TokenAtOffset returns the token red-node covering (or adjacent to,
// depending on bias) a byte offset. Supports left-biased, right-biased,
// and single (boundary-rejecting) lookups.
func TokenAtOffset(root *SyntaxNode, offset int, bias Bias) *SyntaxNode {
	switch bias {
	case BiasLeft:
		if t := tokenAt(root, offset, true); t != nil {
			return t
		}
		return tokenAt(root, offset, false)
	case BiasRight:
		if t := tokenAt(root, offset, false); t != nil {
			return t
		}
		return tokenAt(root, offset, true)
	default: // BiasSingle
		candidates := tokensBetween(root, offset)
		if len(candidates) == 1 {
			return candidates[0]
		}
		return nil
	}
}

// TokensBetween returns every token whose range contains offset, in
// document order; at a boundary this yields both neighbours.
func TokensBetween(root *SyntaxNode, offset int) []*SyntaxNode {
	return tokensBetween(root, offset)
}

func tokensBetween(root *SyntaxNode, offset int) []*SyntaxNode {
	if !root.Range().Contains(offset) {
		return nil
	}
	if root.IsToken() {
		return []*SyntaxNode{root}
	}
	var out []*SyntaxNode
	for _, c := range root.Children() {
		out = append(out, tokensBetween(c, offset)...)
	}
	return out
}

// tokenAt finds the token at offset: with preferEndingHere it matches a
// token with Start < offset <= End, otherwise one with Start <= offset < End.
func tokenAt(root *SyntaxNode, offset int, preferEndingHere bool) *SyntaxNode {
	if root.IsToken() {
		r := root.Range()
		if preferEndingHere {
			if r.Start < offset && r.End >= offset {
				return root
			}
		} else {
			if r.Start <= offset && r.End > offset {
				return root
			}
		}
		return nil
	}
	if !root.Range().Contains(offset) {
		return nil
	}
	for _, c := range root.Children() {
		if t := tokenAt(c, offset, preferEndingHere); t != nil {
			return t
		}
	}
	return nil
}

// FindAncestor walks up from node (inclusive) to find the nearest ancestor
// whose Kind matches one of the given kinds.
func FindAncestor(node *SyntaxNode, kinds ...Kind) *SyntaxNode {
	for n := node; n != nil; n = n.Parent() {
		for _, k := range kinds {
			if n.Kind() == k {
				return n
			}
		}
	}
	return nil
}

// Descendants returns every node/token in the subtree in preorder,
// including root itself.
func Descendants(root *SyntaxNode) []*SyntaxNode {
	var out []*SyntaxNode
	_ = Walk(root, func(n *SyntaxNode, ev WalkEvent) error {
		if ev == EventEnter {
			out = append(out, n)
		}
		return nil
	})
	return out
}

// ChildrenOfKind returns the direct children matching a kind.
func ChildrenOfKind(n *SyntaxNode, kind Kind) []*SyntaxNode {
	var out []*SyntaxNode
	for _, c := range n.Children() {
		if c.Kind() == kind {
			out = append(out, c)
		}
	}
	return out
}

// FirstChildOfKind returns the first direct child matching a kind, or nil.
func FirstChildOfKind(n *SyntaxNode, kind Kind) *SyntaxNode {
	for _, c := range n.Children() {
		if c.Kind() == kind {
			return c
		}
	}
	return nil
}
