// Package usage records, for one parsed occurrence of a structure, which of
// its schema slots were populated.
//
// A Tree is an arena: nodes are stored in a slice owned by the tree, children
// are kept as arena indices and the parent back-reference is an index as
// well, so there are no ownership cycles. Each node links (without owning) to
// the schema.Reference it instantiates. Trees are built by a binder, read by
// the rules engine and reset when the binder advances to the next occurrence.
package usage

import "github.com/findanomaly/staedi/schema"

const noParent = -1

type node struct {
	kind     schema.Kind
	index    int
	used     bool
	parent   int32
	children []int32
	link     *schema.Reference
}

// Tree owns the nodes of one occurrence.
type Tree struct {
	nodes []node
}

// New returns a tree whose root instantiates link.
func New(link *schema.Reference) *Tree {
	t := &Tree{}
	t.Reset(link)
	return t
}

// Reset discards every node and starts a new root, reusing the arena.
func (t *Tree) Reset(link *schema.Reference) {
	for i := range t.nodes {
		t.nodes[i] = node{}
	}
	t.nodes = append(t.nodes[:0], node{kind: kindOf(link), parent: noParent, link: link})
}

// Root returns the root node.
func (t *Tree) Root() Node { return Node{t: t, id: 0} }

// Len is the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

func kindOf(link *schema.Reference) schema.Kind {
	if link == nil || link.Type() == nil {
		return schema.KindElement
	}
	return link.Type().Kind()
}

// Node is a handle to a node of a Tree. The zero Node is invalid; calling
// its methods panics.
type Node struct {
	t  *Tree
	id int32
}

func (n Node) get() *node { return &n.t.nodes[n.id] }

// Valid reports whether n refers to a node.
func (n Node) Valid() bool { return n.t != nil }

// Kind is the structural kind of the node.
func (n Node) Kind() schema.Kind { return n.get().kind }

// IsKind reports whether the node's kind is one of kinds.
func (n Node) IsKind(kinds ...schema.Kind) bool {
	k := n.get().kind
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// Index is the 0-based position among the node's siblings.
func (n Node) Index() int { return n.get().index }

// Position is the 1-based position among the node's siblings.
func (n Node) Position() int { return n.get().index + 1 }

// Used reports whether the slot was populated.
func (n Node) Used() bool { return n.get().used }

// SetUsed marks the slot populated or not.
func (n Node) SetUsed(used bool) { n.get().used = used }

// Link returns the schema reference the node instantiates (may be nil).
func (n Node) Link() *schema.Reference { return n.get().link }

// ComplexType returns the referenced complex type, if any.
func (n Node) ComplexType() (*schema.ComplexType, bool) {
	link := n.get().link
	if link == nil {
		return nil, false
	}
	c, ok := link.Type().(*schema.ComplexType)
	return c, ok
}

// Parent returns the parent node; ok is false for the root.
func (n Node) Parent() (Node, bool) {
	p := n.get().parent
	if p == noParent {
		return Node{}, false
	}
	return Node{t: n.t, id: p}, true
}

// NumChildren is the number of children.
func (n Node) NumChildren() int { return len(n.get().children) }

// Child returns the i-th (0-based) child.
func (n Node) Child(i int) Node { return Node{t: n.t, id: n.get().children[i]} }

// ChildAt returns the child at a 1-based position; ok is false when the
// position is outside the children.
func (n Node) ChildAt(position int) (Node, bool) {
	children := n.get().children
	if position < 1 || position > len(children) {
		return Node{}, false
	}
	return Node{t: n.t, id: children[position-1]}, true
}

// Children returns handles to all children in order.
func (n Node) Children() []Node {
	children := n.get().children
	out := make([]Node, len(children))
	for i, c := range children {
		out[i] = Node{t: n.t, id: c}
	}
	return out
}

// AddChild appends an unused child instantiating link.
func (n Node) AddChild(link *schema.Reference) Node {
	t := n.t
	id := int32(len(t.nodes))
	parent := n.get()
	t.nodes = append(t.nodes, node{
		kind:   kindOf(link),
		index:  len(parent.children),
		parent: n.id,
		link:   link,
	})
	// parent may have moved when nodes grew
	p := &t.nodes[n.id]
	p.children = append(p.children, id)
	return Node{t: t, id: id}
}
