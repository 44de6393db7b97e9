package usage

import "github.com/findanomaly/staedi/schema"

// Skeleton resets t to an all-unused tree shaped after link's type: one child
// per reference of a segment or loop, and one component per reference of each
// composite below a segment. Loop children are not expanded further.
func (t *Tree) Skeleton(link *schema.Reference) Node {
	t.Reset(link)
	root := t.Root()
	c, ok := root.ComplexType()
	if !ok {
		return root
	}
	for _, ref := range c.References() {
		child := root.AddChild(ref)
		if c.Kind() == schema.KindLoop {
			continue
		}
		if cc, ok := child.ComplexType(); ok {
			for _, sub := range cc.References() {
				child.AddChild(sub)
			}
		}
	}
	return root
}
