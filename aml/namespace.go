package aml

import "strings"

// Name is a 4-character ACPI NameSeg, e.g. "_SB_". NullName (all zero
// bytes) is reserved for the namespace root.
type Name [4]byte

func (n Name) String() string { return string(n[:]) }

var rootName = Name{}

func isLeadNameChar(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z')
}

func isNameChar(b byte) bool {
	return isLeadNameChar(b) || (b >= '0' && b <= '9')
}

func validNameSeg(seg [4]byte) bool {
	if !isLeadNameChar(seg[0]) {
		return false
	}
	for _, b := range seg[1:] {
		if !isNameChar(b) {
			return false
		}
	}
	return true
}

// Node is a namespace tree node. Every node except the root has a 4-char
// Name; it may optionally bind to one Object.
type Node struct {
	name     Name
	parent   *Node
	children []*Node
	object   *Object

	// installed is false for a node created by CREATE_NAMESTRING but not
	// yet linked into its parent's child list; such nodes never satisfy
	// lookups (spec §3 invariant).
	installed bool

	// temporary nodes are created by a non-serialized method invocation
	// and are uninstalled when the owning frame is popped.
	temporary bool
}

// Name returns the node's 4-character name segment.
func (n *Node) Name() Name { return n.name }

// Parent returns the enclosing namespace node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the installed child nodes.
func (n *Node) Children() []*Node { return n.children }

// Object returns the node's bound Object, or nil if unbound.
func (n *Node) Object() *Object { return n.object }

// Bind attaches obj to the node, retaining it. Any previously bound object
// is released.
func (n *Node) Bind(obj *Object, host Host) {
	if n.object != nil {
		n.object.Release(host)
	}
	n.object = obj.Retain()
}

// Path renders the absolute dotted path from the root, e.g. "\_SB_.PCI0".
func (n *Node) Path() string {
	var segs []string
	for cur := n; cur != nil && cur.parent != nil; cur = cur.parent {
		segs = append([]string{cur.name.String()}, segs...)
	}
	return "\\" + strings.Join(segs, ".")
}

// Namespace is the tree of named nodes rooted at \.
type Namespace struct {
	root *Node
}

// NewNamespace creates an empty namespace containing only the root node.
func NewNamespace() *Namespace {
	return &Namespace{root: &Node{name: rootName, installed: true}}
}

// Root returns the \ node.
func (ns *Namespace) Root() *Node { return ns.root }

func (n *Node) findChild(name Name) *Node {
	for _, c := range n.children {
		if c.installed && c.name == name {
			return c
		}
	}
	return nil
}

// install links child under parent's installed child list. If the running
// evaluation is inside a non-serialized method, the caller is responsible
// for also registering the node as temporary on the owning frame.
func (n *Node) install(child *Node) {
	child.parent = n
	child.installed = true
	n.children = append(n.children, child)
}

func (n *Node) removeChild(child *Node) {
	child.installed = false
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// parsedName is a decoded NameString: a prefix (root-anchored and/or a
// count of '^' parent hops) plus zero or more 4-byte segments.
type parsedName struct {
	root       bool
	parentHops int
	segments   [][4]byte
}

// string renders pn back into dotted NameString text, used to stash an
// unresolved forward reference as a lazy path String (spec §4.4 Package
// lazy name resolution) rather than failing to resolve it immediately.
func (pn parsedName) string() string {
	var b strings.Builder
	if pn.root {
		b.WriteByte('\\')
	}
	for i := 0; i < pn.parentHops; i++ {
		b.WriteByte('^')
	}
	for i, seg := range pn.segments {
		if i > 0 {
			b.WriteByte('.')
		}
		b.Write(seg[:])
	}
	return b.String()
}

// resolveBase walks from the given scope to the starting point implied by
// the prefix (root or N parents up).
func (ns *Namespace) resolveBase(scope *Node, pn parsedName) *Node {
	if pn.root {
		return ns.root
	}
	cur := scope
	for i := 0; i < pn.parentHops && cur.parent != nil; i++ {
		cur = cur.parent
	}
	return cur
}

// Resolve implements the spec §4.1 "Resolve" mode: multi-segment paths walk
// from base without upsearch; a bare single unprefixed segment triggers the
// ACPI upsearch toward the root when not found in scope. Returns nil
// when the name is absent (callers decide whether that is acceptable).
func (ns *Namespace) Resolve(scope *Node, pn parsedName) *Node {
	base := ns.resolveBase(scope, pn)
	if len(pn.segments) == 0 {
		return base
	}

	upsearch := !pn.root && pn.parentHops == 0 && len(pn.segments) == 1
	if !upsearch {
		cur := base
		for _, seg := range pn.segments {
			cur = cur.findChild(seg)
			if cur == nil {
				return nil
			}
		}
		return cur
	}

	seg := pn.segments[0]
	for cur := base; cur != nil; cur = cur.parent {
		if found := cur.findChild(seg); found != nil {
			return found
		}
	}
	return nil
}

// ResolveCreateLast implements the "Create last" mode: all but the final
// segment must already exist, and the final segment must be absent.
// Returns an uninstalled node parented under the resolved container; the
// caller installs it explicitly (INSTALL_NAMESPACE_NODE).
func (ns *Namespace) ResolveCreateLast(scope *Node, pn parsedName) (*Node, error) {
	base := ns.resolveBase(scope, pn)
	if len(pn.segments) == 0 {
		return nil, newErr("resolve-create", StatusBadBytecode, "NullName in create context")
	}

	cur := base
	for _, seg := range pn.segments[:len(pn.segments)-1] {
		next := cur.findChild(seg)
		if next == nil {
			return nil, errNotFound
		}
		cur = next
	}

	last := pn.segments[len(pn.segments)-1]
	if !validNameSeg(last) {
		return nil, errBadNameChar
	}
	if cur.findChild(last) != nil {
		return nil, errAlreadyExists
	}

	return &Node{name: last, parent: cur}, nil
}

// Find looks up path starting at parent, for use by callers wiring up
// predefined namespace nodes. path segments are dot-separated 4-char names,
// e.g. "_SB_.PCI0"; shorter segments are not padded.
func (ns *Namespace) Find(parent *Node, path string) *Node {
	if parent == nil {
		parent = ns.root
	}
	cur := parent
	if path == "" {
		return cur
	}
	for _, seg := range strings.Split(path, ".") {
		var name Name
		copy(name[:], seg)
		cur = cur.findChild(name)
		if cur == nil {
			return nil
		}
	}
	return cur
}
