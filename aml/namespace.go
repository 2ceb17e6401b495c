package aml

import "strings"

// The size of AML name identifiers in bytes.
const amlNameLen = 4

// nodeName is a fixed-width AML name, padded with '_' characters.
type nodeName [amlNameLen]byte

func (n nodeName) String() string { return string(n[:]) }

// NamespaceNode is one entry in the hierarchical AML namespace. A node may
// point to an object; methods and named values hang off nodes via Named
// references.
type NamespaceNode struct {
	name     nodeName
	parent   *NamespaceNode
	children []*NamespaceNode
	obj      *Object
}

// Name returns the node's fixed-width name.
func (n *NamespaceNode) Name() string { return n.name.String() }

// Parent returns the node's parent, or nil for the root.
func (n *NamespaceNode) Parent() *NamespaceNode { return n.parent }

// Children returns the node's direct children in install order.
func (n *NamespaceNode) Children() []*NamespaceNode { return n.children }

// Object returns the object attached to the node, or nil.
func (n *NamespaceNode) Object() *Object { return n.obj }

// Path returns the absolute dotted path of the node.
func (n *NamespaceNode) Path() string {
	if n.parent == nil {
		return `\`
	}
	var segs []string
	for cur := n; cur.parent != nil; cur = cur.parent {
		segs = append(segs, cur.name.String())
	}
	path := `\`
	for i := len(segs) - 1; i >= 0; i-- {
		path += segs[i]
		if i != 0 {
			path += "."
		}
	}
	return path
}

// PredefinedScope identifies the fixed nodes installed under the root when
// a namespace is created.
type PredefinedScope uint8

// The list of predefined scopes.
const (
	PredefinedRoot PredefinedScope = iota
	PredefinedGPE
	PredefinedPR
	PredefinedSB
	PredefinedSI
	PredefinedTZ
	PredefinedGL
	PredefinedOS
	PredefinedOSI
	PredefinedREV
	predefinedMax
)

// Namespace is the tree of named AML objects. It is built during table load
// and consulted on every name resolution.
type Namespace struct {
	root       *NamespaceNode
	predefined [predefinedMax]*NamespaceNode
}

// NewNamespace returns a namespace populated with the scopes mandated by
// the ACPI standard:
//
//	+-[\] (Root scope)
//	   +- [_GPE] (General events in GPE register block)
//	   +- [_PR_] (ACPI 1.0 processor namespace)
//	   +- [_SB_] (System bus with all device objects)
//	   +- [_SI_] (System indicators)
//	   +- [_TZ_] (ACPI 1.0 thermal zone namespace)
//	   +- [_GL_] (Global lock mutex)
//	   +- [_OS_] (Operating system name)
//	   +- [_OSI] (Interface query method placeholder)
//	   +- [_REV] (Revision of the ACPI specification supported)
func NewNamespace() *Namespace {
	ns := &Namespace{root: &NamespaceNode{name: nodeName{'\\'}}}
	ns.predefined[PredefinedRoot] = ns.root

	names := []struct {
		scope PredefinedScope
		name  nodeName
	}{
		{PredefinedGPE, nodeName{'_', 'G', 'P', 'E'}},
		{PredefinedPR, nodeName{'_', 'P', 'R', '_'}},
		{PredefinedSB, nodeName{'_', 'S', 'B', '_'}},
		{PredefinedSI, nodeName{'_', 'S', 'I', '_'}},
		{PredefinedTZ, nodeName{'_', 'T', 'Z', '_'}},
		{PredefinedGL, nodeName{'_', 'G', 'L', '_'}},
		{PredefinedOS, nodeName{'_', 'O', 'S', '_'}},
		{PredefinedOSI, nodeName{'_', 'O', 'S', 'I'}},
		{PredefinedREV, nodeName{'_', 'R', 'E', 'V'}},
	}
	for _, spec := range names {
		node := &NamespaceNode{name: spec.name, parent: ns.root}
		ns.root.children = append(ns.root.children, node)
		ns.predefined[spec.scope] = node
	}

	return ns
}

// Root returns the namespace root node.
func (ns *Namespace) Root() *NamespaceNode { return ns.root }

// Predefined returns one of the fixed nodes installed by NewNamespace.
func (ns *Namespace) Predefined(scope PredefinedScope) *NamespaceNode {
	if scope >= predefinedMax {
		return nil
	}
	return ns.predefined[scope]
}

// find returns the child of parent with the given name, or nil.
func (ns *Namespace) find(parent *NamespaceNode, name nodeName) *NamespaceNode {
	if parent == nil {
		return nil
	}
	for _, child := range parent.children {
		if child.name == name {
			return child
		}
	}
	return nil
}

// alloc returns a detached node with the given name. The caller links the
// parent pointer and later installs or frees the node.
func (ns *Namespace) alloc(name nodeName) *NamespaceNode {
	return &NamespaceNode{name: name}
}

// install links node into parent's child list.
func (ns *Namespace) install(parent, node *NamespaceNode) Status {
	if ns.find(parent, node.name) != nil {
		return StatusAlreadyExists
	}
	node.parent = parent
	parent.children = append(parent.children, node)
	return StatusOK
}

// uninstall unlinks node from its parent and releases its object. Children
// of the node are uninstalled first, in reverse order.
func (ns *Namespace) uninstall(node *NamespaceNode) {
	for i := len(node.children) - 1; i >= 0; i-- {
		ns.uninstall(node.children[i])
	}
	node.children = nil

	if parent := node.parent; parent != nil {
		for i, child := range parent.children {
			if child == node {
				parent.children = append(parent.children[:i], parent.children[i+1:]...)
				break
			}
		}
		node.parent = nil
	}

	ns.free(node)
}

// free releases the object attached to a node that was never installed or
// has just been uninstalled.
func (ns *Namespace) free(node *NamespaceNode) {
	if node.obj != nil {
		node.obj.unref()
		node.obj = nil
	}
}

// FindAbsolute resolves a `\`-rooted dotted path ("\_SB_.PCI0.INIT") and
// returns the matching node or nil. Segments shorter than four characters
// are padded with '_'.
func (ns *Namespace) FindAbsolute(path string) *NamespaceNode {
	if path == "" || path[0] != '\\' {
		return nil
	}
	cur := ns.root
	rest := path[1:]
	for len(rest) > 0 {
		seg := rest
		if dot := strings.IndexByte(rest, '.'); dot >= 0 {
			seg, rest = rest[:dot], rest[dot+1:]
		} else {
			rest = ""
		}
		if len(seg) == 0 || len(seg) > amlNameLen {
			return nil
		}
		name := nodeName{'_', '_', '_', '_'}
		copy(name[:], seg)
		if cur = ns.find(cur, name); cur == nil {
			return nil
		}
	}
	return cur
}

// Walk performs a depth-first traversal of the namespace, invoking fn for
// every node. Returning false from fn prunes the node's children.
func (ns *Namespace) Walk(fn func(depth int, node *NamespaceNode) bool) {
	ns.walk(0, ns.root, fn)
}

func (ns *Namespace) walk(depth int, node *NamespaceNode, fn func(int, *NamespaceNode) bool) {
	if !fn(depth, node) {
		return
	}
	for _, child := range node.children {
		ns.walk(depth+1, child, fn)
	}
}
