package bind

import (
	"strconv"
	"strings"

	"github.com/rebind-dev/rebind/pkg/dom"
)

// listMount is the per-element state of an iterable binding: the template
// node group captured from the element's initial content and one item binder
// per array entry. The rendered child list is always exactly
// len(items) × len(tmpl) nodes, in array order.
type listMount struct {
	elem  *dom.Node
	tmpl  []*dom.Node
	items []*Binder
}

// ListBinder keeps the child-node layout of its mounted elements, its item
// binders, and the underlying array mutually consistent through structural
// verbs. It shares the scalar binder's directive model: each array item gets
// its own Binder over a cloned template instance, scoped under the host so
// item directives can still reach outer paths.
type ListBinder struct {
	host      *Binder
	path      string
	indexMode bool
	mounts    []*listMount
}

// NewList creates an iterable binder over the array at path inside graph.
// Wrapping the path in "{}" enables index mode, in which every item binder
// wraps {index, item} and structural verbs re-stamp shifted indices.
func NewList(graph any, pathExpr string, opts ...Option) *ListBinder {
	o := buildOptions(opts)
	host := newBinder(o.cfg, o.observer, nil, graph)
	host.g = &guard{}
	pathExpr = strings.TrimSpace(pathExpr)
	indexMode := strings.HasPrefix(pathExpr, "{") && strings.HasSuffix(pathExpr, "}")
	if indexMode {
		pathExpr = strings.TrimSpace(pathExpr[1 : len(pathExpr)-1])
	}
	return newListBinder(host, pathExpr, indexMode)
}

func newListBinder(host *Binder, path string, indexMode bool) *ListBinder {
	return &ListBinder{host: host, path: path, indexMode: indexMode}
}

// Len returns the current length of the underlying array.
func (l *ListBinder) Len() int {
	arr, _ := l.arr()
	return len(arr)
}

// Items returns the item binders rendered under a mounted element.
func (l *ListBinder) Items(elem *dom.Node) []*Binder {
	for _, m := range l.mounts {
		if m.elem == elem {
			return m.items
		}
	}
	return nil
}

func (l *ListBinder) arr() ([]any, bool) {
	a, ok := l.host.Get(l.path).([]any)
	return a, ok
}

func (l *ListBinder) setArr(a []any) {
	if owner, member, ok := l.host.resolveOwner(splitPath(l.path, l.host.cfg.PathSep), true); ok {
		assign(owner, member, a)
	}
}

func (l *ListBinder) itemNode(i int, v any) any {
	if l.indexMode {
		return map[string]any{"index": i, "item": v}
	}
	return v
}

// Add mounts elements: each element's initial content is captured once as
// its template and the full current array is rendered into it.
func (l *ListBinder) Add(elements ...*dom.Node) error {
	if err := l.host.enter(); err != nil {
		return err
	}
	defer l.host.leave()
	for _, e := range elements {
		if err := l.addMount(e); err != nil {
			return err
		}
	}
	return nil
}

func (l *ListBinder) addMount(elem *dom.Node) error {
	if elem == nil || elem.Kind != dom.KindElement {
		return nil
	}
	m := &listMount{elem: elem}
	content := elem.RemoveChildrenAt(0, len(elem.Children))
	if len(content) == 1 && content[0].Kind == dom.KindElement && content[0].Tag == "template" {
		// Generic template container: its content is the group.
		tpl := content[0]
		m.tmpl = tpl.RemoveChildrenAt(0, len(tpl.Children))
	} else {
		m.tmpl = content
	}
	l.mounts = append(l.mounts, m)
	arr, _ := l.arr()
	for i, v := range arr {
		if err := l.insertItem(m, i, v); err != nil {
			return err
		}
	}
	return nil
}

// insertItem clones the template group, inserts it at the item's position,
// and mounts a fresh item binder over the clones.
func (l *ListBinder) insertItem(m *listMount, idx int, v any) error {
	k := len(m.tmpl)
	clones := make([]*dom.Node, k)
	for j, t := range m.tmpl {
		clones[j] = t.Clone()
	}
	if k > 0 {
		m.elem.InsertChildrenAt(idx*k, clones...)
		l.host.emit(Patch{Op: PatchInsertNodes, Target: m.elem, Index: idx * k, Nodes: clones})
	}
	ib := newBinder(l.host.cfg, l.host.observer, l.host, l.itemNode(idx, v))
	m.items = append(m.items[:idx], append([]*Binder{ib}, m.items[idx:]...)...)
	return ib.add(clones...)
}

// removeItems removes count rendered item groups starting at start,
// destroying their binders.
func (l *ListBinder) removeItems(m *listMount, start, count int) {
	if start < 0 || start >= len(m.items) || count <= 0 {
		return
	}
	if start+count > len(m.items) {
		count = len(m.items) - start
	}
	k := len(m.tmpl)
	if k > 0 {
		removed := m.elem.RemoveChildrenAt(start*k, count*k)
		if len(removed) > 0 {
			l.host.emit(Patch{Op: PatchRemoveNodes, Target: m.elem, Index: start * k, Count: len(removed)})
		}
	}
	for _, ib := range m.items[start : start+count] {
		ib.deleteAll()
	}
	m.items = append(m.items[:start], m.items[start+count:]...)
}

// Push appends items to the array and renders one template instance per new
// item under every mounted element.
func (l *ListBinder) Push(items ...any) error {
	if err := l.host.enter(); err != nil {
		return err
	}
	defer l.host.leave()
	return l.push(items...)
}

func (l *ListBinder) push(items ...any) error {
	arr, ok := l.arr()
	if !ok {
		return nil
	}
	base := len(arr)
	l.setArr(append(arr, items...))
	for _, m := range l.mounts {
		for j, v := range items {
			if err := l.insertItem(m, base+j, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Pop removes the last item from the array, from every mounted element's
// child list, and from the item-binder lists.
func (l *ListBinder) Pop() error {
	if err := l.host.enter(); err != nil {
		return err
	}
	defer l.host.leave()
	arr, ok := l.arr()
	if !ok || len(arr) == 0 {
		return nil
	}
	n := len(arr)
	l.setArr(arr[:n-1])
	for _, m := range l.mounts {
		l.removeItems(m, n-1, 1)
	}
	return nil
}

// Splice removes del items starting at start and inserts items in their
// place, keeping array, item binders, and rendered nodes consistent. In
// index mode every item at or after the insertion point is re-stamped.
func (l *ListBinder) Splice(start, del int, items ...any) error {
	if err := l.host.enter(); err != nil {
		return err
	}
	defer l.host.leave()
	return l.splice(start, del, items...)
}

func (l *ListBinder) splice(start, del int, items ...any) error {
	arr, ok := l.arr()
	if !ok {
		return nil
	}
	n := len(arr)
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	if del < 0 {
		del = 0
	}
	if start+del > n {
		del = n - start
	}
	next := make([]any, 0, n-del+len(items))
	next = append(next, arr[:start]...)
	next = append(next, items...)
	next = append(next, arr[start+del:]...)
	l.setArr(next)
	for _, m := range l.mounts {
		l.removeItems(m, start, del)
		for j, v := range items {
			if err := l.insertItem(m, start+j, v); err != nil {
				return err
			}
		}
		l.restamp(m, start)
	}
	return nil
}

// Move relocates the item at i1 to position i2 without recreating nodes or
// binders. In swap mode the two positions exchange contents; otherwise the
// items between them shift by one.
func (l *ListBinder) Move(i1, i2 int, swap bool) error {
	if err := l.host.enter(); err != nil {
		return err
	}
	defer l.host.leave()
	arr, ok := l.arr()
	if !ok {
		return nil
	}
	n := len(arr)
	if i1 < 0 || i1 >= n || i2 < 0 || i2 >= n || i1 == i2 {
		return nil
	}
	lo, hi := i1, i2
	if lo > hi {
		lo, hi = hi, lo
	}
	if swap {
		arr[i1], arr[i2] = arr[i2], arr[i1]
		l.setArr(arr)
		for _, m := range l.mounts {
			// A swap is two shift moves: hi into lo's slot, then the
			// displaced lo (now at lo+1) into hi's slot.
			l.moveGroup(m, hi, lo)
			l.moveGroup(m, lo+1, hi)
			l.restamp(m, lo)
		}
		return nil
	}
	v := arr[i1]
	tmp := make([]any, 0, n)
	tmp = append(tmp, arr[:i1]...)
	tmp = append(tmp, arr[i1+1:]...)
	next := make([]any, 0, n)
	next = append(next, tmp[:i2]...)
	next = append(next, v)
	next = append(next, tmp[i2:]...)
	l.setArr(next)
	for _, m := range l.mounts {
		l.moveGroup(m, i1, i2)
		l.restamp(m, lo)
	}
	return nil
}

// moveGroup relocates one template-instance group and its item binder.
// Mirrors apply it as remove-then-insert, with To indexed in the
// post-removal layout.
func (l *ListBinder) moveGroup(m *listMount, from, to int) {
	if from == to || from < 0 || from >= len(m.items) || to < 0 || to >= len(m.items) {
		return
	}
	k := len(m.tmpl)
	if k > 0 {
		nodes := m.elem.RemoveChildrenAt(from*k, k)
		m.elem.InsertChildrenAt(to*k, nodes...)
		l.host.emit(Patch{Op: PatchMoveNodes, Target: m.elem, Index: from * k, Count: k, To: to * k})
	}
	ib := m.items[from]
	m.items = append(m.items[:from], m.items[from+1:]...)
	m.items = append(m.items[:to], append([]*Binder{ib}, m.items[to:]...)...)
}

// restamp refreshes the exposed index of every item at or after from.
func (l *ListBinder) restamp(m *listMount, from int) {
	if !l.indexMode {
		return
	}
	if from < 0 {
		from = 0
	}
	for i := from; i < len(m.items); i++ {
		ib := m.items[i]
		if mp, ok := ib.node.(map[string]any); ok {
			mp["index"] = i
			_ = ib.reactSub([]string{"index"}, map[string]any{"index": i})
		}
	}
}

// Delete with no arguments clears the array and detaches the mounted
// elements. With indices, removal delegates to Splice so it always goes
// through the structural path instead of leaving holes.
func (l *ListBinder) Delete(indices ...int) error {
	if err := l.host.enter(); err != nil {
		return err
	}
	defer l.host.leave()
	if len(indices) == 0 {
		if _, ok := l.arr(); ok {
			l.setArr([]any{})
		}
		l.deleteAll()
		return nil
	}
	for _, i := range indices {
		if err := l.splice(i, 1); err != nil {
			return err
		}
	}
	return nil
}

// React re-evaluates item reactions. When the array length drifted from the
// rendered state (external mutation outside the verbs), the mount is
// re-rendered from scratch to restore the positional invariant.
func (l *ListBinder) React(paths ...string) error {
	if err := l.host.enter(); err != nil {
		return err
	}
	defer l.host.leave()
	return l.react(paths)
}

func (l *ListBinder) react(paths []string) error {
	arr, ok := l.arr()
	if !ok {
		for _, m := range l.mounts {
			l.removeItems(m, 0, len(m.items))
		}
		return nil
	}
	for _, m := range l.mounts {
		if len(m.items) != len(arr) {
			if err := l.rerender(m, arr); err != nil {
				return err
			}
			continue
		}
		for i, v := range arr {
			ib := m.items[i]
			ib.setNode(l.itemNode(i, v))
			var err error
			if len(paths) == 0 {
				err = ib.reactAll()
			} else {
				err = ib.reactSub(paths, nil)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// rerender rebuilds a mount's rendered children from the array.
func (l *ListBinder) rerender(m *listMount, arr []any) error {
	l.removeItems(m, 0, len(m.items))
	for i, v := range arr {
		if err := l.insertItem(m, i, v); err != nil {
			return err
		}
	}
	return nil
}

// scopeChild implementation: the parent drives cascades through these.

func (l *ListBinder) setNode(any) {
	// The array is always read through the host scope, so there is nothing
	// to stash; the following react re-renders from the live graph.
}

func (l *ListBinder) reactAll() error { return l.react(nil) }

// reactSub routes relative paths to the items they address. A relative path
// inside an iterable scope leads with the item index; the remainder is the
// member path within that item's scope (rooted at "item" in index mode).
// Values keyed by the outer path cannot be split per item, so items
// re-derive by lookup. A non-index path re-derives the whole list.
func (l *ListBinder) reactSub(paths []string, _ map[string]any) error {
	arr, ok := l.arr()
	if !ok {
		return l.react(nil)
	}
	sep := l.host.cfg.PathSep
	for _, m := range l.mounts {
		if len(m.items) != len(arr) {
			if err := l.rerender(m, arr); err != nil {
				return err
			}
		}
	}
	for _, p := range paths {
		head, rest, _ := strings.Cut(p, sep)
		idx, err := strconv.Atoi(head)
		if err != nil || idx < 0 {
			return l.react(nil)
		}
		if idx >= len(arr) {
			continue
		}
		if l.indexMode && rest != "" {
			rest = "item" + sep + rest
		}
		for _, m := range l.mounts {
			ib := m.items[idx]
			ib.setNode(l.itemNode(idx, arr[idx]))
			if rest == "" {
				err = ib.reactAll()
			} else {
				err = ib.reactSub([]string{rest}, nil)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *ListBinder) deleteAll() {
	for _, m := range l.mounts {
		l.removeItems(m, 0, len(m.items))
		if m.elem.Parent != nil {
			m.elem.Detach()
			l.host.emit(Patch{Op: PatchDetach, Target: m.elem})
		}
	}
	l.mounts = nil
}
