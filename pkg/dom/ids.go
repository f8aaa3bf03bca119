package dom

import "strconv"

// IDAllocator hands out stable patch-target IDs for element nodes. The
// server owns one allocator per hosted document so IDs stay unique across
// nodes inserted after the initial mount.
type IDAllocator struct {
	next uint64
}

// Assign walks the subtree and assigns an ID to every element node that does
// not have one yet. Text nodes are addressed through their parent.
func (a *IDAllocator) Assign(root *Node) {
	root.Walk(func(n *Node) bool {
		if n.Kind == KindElement && n.ID == "" {
			a.next++
			n.ID = "n" + strconv.FormatUint(a.next, 10)
		}
		return true
	})
}
