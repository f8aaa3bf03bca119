package bind

import (
	"fmt"
	"strings"

	"github.com/rebind-dev/rebind/pkg/dom"
)

// tableKind selects which applier a reaction table feeds.
type tableKind uint8

const (
	attrTable tableKind = iota
	propTable
)

// reaction binds one element member to a reference path, either directly or
// through one slot of a multi-value composer.
type reaction struct {
	elem   *dom.Node
	member string
	comp   *Composer
	slot   int
}

// reactionTable maps reference paths to the member bindings registered for
// them, preserving registration order so reactions fire deterministically.
type reactionTable struct {
	kind   tableKind
	order  []string
	byPath map[string][]*reaction
}

func newReactionTable(kind tableKind) *reactionTable {
	return &reactionTable{kind: kind, byPath: map[string][]*reaction{}}
}

func (t *reactionTable) add(path string, r *reaction) {
	if _, ok := t.byPath[path]; !ok {
		t.order = append(t.order, path)
	}
	t.byPath[path] = append(t.byPath[path], r)
}

// removePrefix drops every entry whose key equals path or nests below it.
func (t *reactionTable) removePrefix(path, sep string) {
	keep := t.order[:0]
	for _, key := range t.order {
		if key == path || strings.HasPrefix(key, path+sep) {
			delete(t.byPath, key)
			continue
		}
		keep = append(keep, key)
	}
	t.order = keep
}

// guard detects re-entrant mutation. One guard is shared by a binder and all
// of its descendants, since a reaction anywhere in the tree may touch any
// scope through the parent chain.
type guard struct {
	active bool
}

// scopeChild is a nested wrapper mounted under a path segment: either a
// scalar Binder or an iterable ListBinder. The parent drives it through this
// interface when reactions or deletions cascade.
type scopeChild interface {
	setNode(any)
	reactAll() error
	reactSub(paths []string, values map[string]any) error
	deleteAll()
}

// Binder wraps one reference-graph node and keeps the elements mounted on it
// synchronized with the node's members. Lookups fall back through the parent
// chain, so directives inside a nested scope can still name outer paths.
type Binder struct {
	cfg      *Config
	observer Observer
	parent   *Binder
	g        *guard

	node     any
	elements []*dom.Node

	attrs      *reactionTable
	props      *reactionTable
	childOrder []string
	children   map[string]scopeChild

	// hiddenDisplay caches the original display style of elements hidden
	// while the node is null.
	hiddenDisplay map[*dom.Node]string
}

// New creates a binder over a reference-graph node.
func New(node any, opts ...Option) *Binder {
	o := buildOptions(opts)
	b := newBinder(o.cfg, o.observer, nil, node)
	b.g = &guard{}
	return b
}

func newBinder(cfg *Config, obs Observer, parent *Binder, node any) *Binder {
	b := &Binder{
		cfg:           cfg,
		observer:      obs,
		parent:        parent,
		node:          node,
		attrs:         newReactionTable(attrTable),
		props:         newReactionTable(propTable),
		children:      map[string]scopeChild{},
		hiddenDisplay: map[*dom.Node]string{},
	}
	if parent != nil {
		b.g = parent.g
	}
	return b
}

// Node returns the wrapped reference-graph node.
func (b *Binder) Node() any { return b.node }

// Elements returns the elements mounted directly on this binder.
func (b *Binder) Elements() []*dom.Node { return b.elements }

// List returns the iterable wrapper mounted at path, descending through
// nested scalar scopes when the path crosses them. Returns nil when no list
// is mounted there.
func (b *Binder) List(path string) *ListBinder {
	if c, ok := b.children[path]; ok {
		if lb, isList := c.(*ListBinder); isList {
			return lb
		}
		return nil
	}
	for _, p := range b.childOrder {
		if !strings.HasPrefix(path, p+b.cfg.PathSep) {
			continue
		}
		if cb, isScalar := b.children[p].(*Binder); isScalar {
			if lb := cb.List(path[len(p)+len(b.cfg.PathSep):]); lb != nil {
				return lb
			}
		}
	}
	return nil
}

func (b *Binder) enter() error {
	if b.g.active {
		return ErrReentrantReact
	}
	b.g.active = true
	return nil
}

func (b *Binder) leave() { b.g.active = false }

func (b *Binder) emit(p Patch) {
	if b.observer != nil {
		b.observer(p)
	}
}

// Add scans each element's subtree for directive attributes, registers the
// resulting reactions, and applies the current graph state. The only error
// is an unregistered calc name in a directive; absent paths are simply
// undefined.
func (b *Binder) Add(elements ...*dom.Node) error {
	if err := b.enter(); err != nil {
		return err
	}
	defer b.leave()
	return b.add(elements...)
}

func (b *Binder) add(elements ...*dom.Node) error {
	for _, e := range elements {
		if err := b.mountOne(e); err != nil {
			return err
		}
	}
	return b.reactAll()
}

// mountOne mounts a top-level element: nested-scope directives hand the
// whole element to a child wrapper, everything else is scanned in place.
func (b *Binder) mountOne(elem *dom.Node) error {
	if elem == nil || elem.Kind != dom.KindElement {
		return nil
	}
	if path, ok := elem.Attr(b.cfg.RefAttr); ok {
		return b.mountScalarChild(path, elem)
	}
	if expr, ok := elem.Attr(b.cfg.ListAttr); ok {
		return b.mountListChild(expr, elem)
	}
	b.elements = append(b.elements, elem)
	return b.scan(elem)
}

// scan registers the element's member directives and descends into its
// children unless the element is marked closed. Nested-scope directives on
// descendants mount child wrappers and stop the descent there.
func (b *Binder) scan(elem *dom.Node) error {
	for _, a := range elem.Attrs {
		switch {
		case a.Key == b.cfg.TextAttr:
			if err := b.register(b.props, elem, TextProp, a.Value); err != nil {
				return err
			}
		case a.Key == b.cfg.RefAttr, a.Key == b.cfg.ListAttr, a.Key == b.cfg.ClosedAttr:
			// Scope markers, not member bindings.
		case strings.HasSuffix(a.Key, b.cfg.AttrSuffix) && len(a.Key) > len(b.cfg.AttrSuffix):
			if err := b.register(b.attrs, elem, strings.TrimSuffix(a.Key, b.cfg.AttrSuffix), a.Value); err != nil {
				return err
			}
		case strings.HasSuffix(a.Key, b.cfg.PropSuffix) && len(a.Key) > len(b.cfg.PropSuffix):
			if err := b.register(b.props, elem, strings.TrimSuffix(a.Key, b.cfg.PropSuffix), a.Value); err != nil {
				return err
			}
		}
	}
	if _, closed := elem.Attr(b.cfg.ClosedAttr); closed {
		return nil
	}
	for _, c := range elem.Children {
		if c.Kind != dom.KindElement {
			continue
		}
		if path, ok := c.Attr(b.cfg.RefAttr); ok {
			if err := b.mountScalarChild(path, c); err != nil {
				return err
			}
			continue
		}
		if expr, ok := c.Attr(b.cfg.ListAttr); ok {
			if err := b.mountListChild(expr, c); err != nil {
				return err
			}
			continue
		}
		if err := b.scan(c); err != nil {
			return err
		}
	}
	return nil
}

func (b *Binder) mountScalarChild(path string, elem *dom.Node) error {
	path = strings.TrimSpace(path)
	if c, ok := b.children[path]; ok {
		cb, isScalar := c.(*Binder)
		if !isScalar {
			return nil
		}
		cb.elements = append(cb.elements, elem)
		return cb.scan(elem)
	}
	cb := newBinder(b.cfg, b.observer, b, b.Get(path))
	b.addChild(path, cb)
	cb.elements = append(cb.elements, elem)
	return cb.scan(elem)
}

func (b *Binder) mountListChild(expr string, elem *dom.Node) error {
	expr = strings.TrimSpace(expr)
	indexMode := strings.HasPrefix(expr, "{") && strings.HasSuffix(expr, "}")
	path := expr
	if indexMode {
		path = strings.TrimSpace(expr[1 : len(expr)-1])
	}
	if c, ok := b.children[path]; ok {
		lb, isList := c.(*ListBinder)
		if !isList {
			return nil
		}
		return lb.addMount(elem)
	}
	lb := newListBinder(b, path, indexMode)
	b.addChild(path, lb)
	return lb.addMount(elem)
}

func (b *Binder) addChild(path string, c scopeChild) {
	b.childOrder = append(b.childOrder, path)
	b.children[path] = c
}

// register parses a directive value and records its reactions. A directive
// naming more than one path or carrying a calc marker binds through a
// composer; otherwise the member binds directly to the single path.
func (b *Binder) register(t *reactionTable, elem *dom.Node, member, expr string) error {
	var calc CalcFunc
	if name, rest, found := strings.Cut(expr, b.cfg.CalcMark); found {
		n := strings.TrimSpace(name)
		fn, ok := b.cfg.Calcs[n]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCalc, n)
		}
		calc = fn
		expr = rest
	}
	parts := strings.Split(expr, b.cfg.MultiSep)
	if calc == nil && len(parts) == 1 {
		t.add(strings.TrimSpace(expr), &reaction{elem: elem, member: member})
		return nil
	}
	slots := make([]any, len(parts))
	comp := NewComposer(slots, calc)
	for i, part := range parts {
		if i%2 == 1 {
			// Literal slot, kept verbatim.
			slots[i] = part
			continue
		}
		path := strings.TrimSpace(part)
		if path == "" {
			continue
		}
		t.add(path, &reaction{elem: elem, member: member, comp: comp, slot: i})
	}
	return nil
}

// Get resolves a path against the wrapped node, falling back to the parent
// scope when the first segment is not a member of this node. Absent paths
// resolve to nil.
func (b *Binder) Get(path string) any {
	segs := splitPath(path, b.cfg.PathSep)
	if len(segs) == 0 {
		return b.node
	}
	if _, ok := memberOf(b.node, segs[0]); ok {
		v, _ := lookup(b.node, segs)
		return v
	}
	if b.parent != nil {
		return b.parent.Get(path)
	}
	return nil
}

// Destructure resolves a path to the container holding its final member,
// for mutation. The scope chain is walked the same way as Get.
func (b *Binder) Destructure(path string) (owner any, member string, ok bool) {
	return b.resolveOwner(splitPath(path, b.cfg.PathSep), false)
}

func (b *Binder) resolveOwner(segs []string, create bool) (any, string, bool) {
	if len(segs) == 0 {
		return nil, "", false
	}
	if _, ok := memberOf(b.node, segs[0]); ok {
		return ownerWalk(b.node, segs, create)
	}
	if b.parent != nil {
		if o, m, ok := b.parent.resolveOwner(segs, false); ok {
			return o, m, true
		}
	}
	if create {
		return ownerWalk(b.node, segs, true)
	}
	return nil, "", false
}

// ownerWalk walks node down to the container of the final segment. With
// create set, missing intermediate members are filled with fresh maps.
func ownerWalk(node any, segs []string, create bool) (any, string, bool) {
	cur := node
	for _, s := range segs[:len(segs)-1] {
		v, ok := memberOf(cur, s)
		if !ok {
			if !create {
				return nil, "", false
			}
			m, isMap := cur.(map[string]any)
			if !isMap {
				return nil, "", false
			}
			nv := map[string]any{}
			m[s] = nv
			v = nv
		}
		cur = v
	}
	switch cur.(type) {
	case map[string]any, []any:
		return cur, segs[len(segs)-1], true
	default:
		return nil, "", false
	}
}

// Set writes each value into the graph at its resolved path, then reacts
// with the same map so no value is derived twice.
func (b *Binder) Set(values map[string]any) error {
	if err := b.enter(); err != nil {
		return err
	}
	defer b.leave()
	b.write(values)
	return b.reactSub(keys(values), values)
}

func (b *Binder) write(values map[string]any) {
	for path, v := range values {
		if owner, member, ok := b.resolveOwner(splitPath(path, b.cfg.PathSep), true); ok {
			assign(owner, member, v)
		}
	}
}

// React re-evaluates reactions. With no arguments every registered reaction
// is re-applied; with paths, only reactions at or below one of them.
func (b *Binder) React(paths ...string) error {
	if err := b.enter(); err != nil {
		return err
	}
	defer b.leave()
	if len(paths) == 0 {
		return b.reactAll()
	}
	return b.reactSub(paths, nil)
}

// ReactWith reacts for the map's paths using the provided values instead of
// re-deriving them by lookup.
func (b *Binder) ReactWith(values map[string]any) error {
	if err := b.enter(); err != nil {
		return err
	}
	defer b.leave()
	return b.reactSub(keys(values), values)
}

// Call resolves the function at path, invokes it, and reacts at that path
// with the return value. A non-function resolves to nil, which clears the
// bound members like any other undefined value.
func (b *Binder) Call(path string, args ...any) (any, error) {
	if err := b.enter(); err != nil {
		return nil, err
	}
	defer b.leave()
	var res any
	switch fn := b.Get(path).(type) {
	case func(...any) any:
		res = fn(args...)
	case func() any:
		res = fn()
	}
	return res, b.reactSub([]string{path}, map[string]any{path: res})
}

// Delete with no arguments destroys the wrapper: every descendant wrapper is
// destroyed and all mounted elements are detached. With paths, each path's
// member is deleted from the graph, any child wrapper at or below it is
// destroyed, and every reaction keyed at or below it is dropped after a
// final react with undefined.
func (b *Binder) Delete(paths ...string) error {
	if err := b.enter(); err != nil {
		return err
	}
	defer b.leave()
	if len(paths) == 0 {
		b.deleteAll()
		return nil
	}
	for _, path := range paths {
		if err := b.deletePath(path); err != nil {
			return err
		}
	}
	return nil
}

func (b *Binder) deleteAll() {
	for _, p := range b.childOrder {
		b.children[p].deleteAll()
	}
	b.childOrder = nil
	b.children = map[string]scopeChild{}
	for _, e := range b.elements {
		if e.Parent != nil {
			e.Detach()
			b.emit(Patch{Op: PatchDetach, Target: e})
		}
	}
	b.elements = nil
	b.attrs = newReactionTable(attrTable)
	b.props = newReactionTable(propTable)
	b.hiddenDisplay = map[*dom.Node]string{}
}

func (b *Binder) deletePath(path string) error {
	if owner, member, ok := b.resolveOwner(splitPath(path, b.cfg.PathSep), false); ok {
		unassign(owner, member)
	}
	handled := false
	keep := b.childOrder[:0]
	for _, p := range b.childOrder {
		if p == path || strings.HasPrefix(p, path+b.cfg.PathSep) {
			b.children[p].deleteAll()
			delete(b.children, p)
			if p == path {
				handled = true
			}
			continue
		}
		keep = append(keep, p)
	}
	b.childOrder = keep
	if !handled {
		if err := b.reactSub([]string{path}, map[string]any{path: nil}); err != nil {
			return err
		}
	}
	b.attrs.removePrefix(path, b.cfg.PathSep)
	b.props.removePrefix(path, b.cfg.PathSep)
	return nil
}

// scopeChild implementation.

func (b *Binder) setNode(v any) { b.node = v }

// reactAll re-applies every registered reaction: attributes, then
// properties, then children, each in registration order. A nil node hides
// the mounted elements and suspends member reactions for the whole scope.
func (b *Binder) reactAll() error {
	if b.node == nil {
		b.suspend()
		return nil
	}
	b.showAll()
	for _, path := range b.attrs.order {
		b.fire(b.attrs, path, b.Get(path))
	}
	for _, path := range b.props.order {
		b.fire(b.props, path, b.Get(path))
	}
	for _, p := range b.childOrder {
		c := b.children[p]
		c.setNode(b.Get(p))
		if err := c.reactAll(); err != nil {
			return err
		}
	}
	return nil
}

// reactSub re-applies only reactions at or below one of the given paths.
// values, when non-nil, supplies already-known values keyed by reacted path.
func (b *Binder) reactSub(paths []string, values map[string]any) error {
	if b.node == nil {
		b.suspend()
		return nil
	}
	b.showAll()
	for _, t := range []*reactionTable{b.attrs, b.props} {
		for _, key := range t.order {
			if g, ok := pathMatches(key, paths, b.cfg.PathSep); ok {
				b.fire(t, key, b.valueFor(key, g, values))
			}
		}
	}
	for _, p := range b.childOrder {
		c := b.children[p]
		if g, ok := pathMatches(p, paths, b.cfg.PathSep); ok {
			c.setNode(b.valueFor(p, g, values))
			if err := c.reactAll(); err != nil {
				return err
			}
			continue
		}
		var sub []string
		var subVals map[string]any
		for _, g := range paths {
			if !strings.HasPrefix(g, p+b.cfg.PathSep) {
				continue
			}
			rel := g[len(p)+len(b.cfg.PathSep):]
			sub = append(sub, rel)
			if values != nil {
				if v, ok := values[g]; ok {
					if subVals == nil {
						subVals = map[string]any{}
					}
					subVals[rel] = v
				}
			}
		}
		if len(sub) > 0 {
			if err := c.reactSub(sub, subVals); err != nil {
				return err
			}
		}
	}
	return nil
}

// suspend hides the mounted elements and propagates the null state to every
// child scope.
func (b *Binder) suspend() {
	b.hideAll()
	for _, p := range b.childOrder {
		c := b.children[p]
		c.setNode(nil)
		_ = c.reactAll() // nil node never errors
	}
}

// valueFor resolves the value for a reaction key reached through reacted
// path g, preferring the caller-provided value map over a graph lookup.
func (b *Binder) valueFor(key, g string, values map[string]any) any {
	if values != nil {
		if v, ok := values[g]; ok {
			if key == g {
				return v
			}
			rest := splitPath(key[len(g)+len(b.cfg.PathSep):], b.cfg.PathSep)
			out, _ := lookup(v, rest)
			return out
		}
	}
	return b.Get(key)
}

func (b *Binder) fire(t *reactionTable, path string, v any) {
	for _, r := range t.byPath[path] {
		out := v
		if r.comp != nil {
			r.comp.SetSlot(r.slot, v)
			out = r.comp.Value()
		}
		var p Patch
		var changed bool
		if t.kind == attrTable {
			p, changed = ApplyAttr(r.elem, r.member, out)
		} else {
			p, changed = ApplyProp(r.elem, r.member, out)
		}
		if changed {
			b.emit(p)
		}
	}
}

// hideAll hides every mounted element, caching the original display value so
// showAll can restore it when the node leaves the null state.
func (b *Binder) hideAll() {
	for _, e := range b.elements {
		if _, hidden := b.hiddenDisplay[e]; hidden {
			continue
		}
		orig, _ := e.Style("display")
		b.hiddenDisplay[e] = orig
		e.SetStyle("display", "none")
		b.emit(Patch{Op: PatchHide, Target: e})
	}
}

func (b *Binder) showAll() {
	for _, e := range b.elements {
		orig, hidden := b.hiddenDisplay[e]
		if !hidden {
			continue
		}
		if orig == "" {
			e.RemoveStyle("display")
		} else {
			e.SetStyle("display", orig)
		}
		delete(b.hiddenDisplay, e)
		b.emit(Patch{Op: PatchShow, Target: e})
	}
}

func keys(values map[string]any) []string {
	out := make([]string, 0, len(values))
	for k := range values {
		out = append(out, k)
	}
	return out
}
