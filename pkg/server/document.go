package server

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/rebind-dev/rebind/pkg/bind"
	"github.com/rebind-dev/rebind/pkg/dom"
	"github.com/rebind-dev/rebind/pkg/protocol"
	"github.com/rebind-dev/rebind/pkg/render"
)

// Document is one bound page: a reference graph, the element tree mounted on
// it, and the binder keeping them synchronized. Every mutation verb runs
// under the document lock and returns the wire patches it produced.
type Document struct {
	mu sync.Mutex

	root   *dom.Node
	graph  map[string]any
	binder *bind.Binder
	ids    dom.IDAllocator

	// pending collects binder patches during a verb.
	pending []bind.Patch
}

// NewDocument binds graph to the element tree rooted at root. Element IDs
// are stamped before mounting so every patch target is addressable.
func NewDocument(root *dom.Node, graph map[string]any, opts ...bind.Option) (*Document, error) {
	d := &Document{root: root, graph: graph}
	d.ids.Assign(root)
	opts = append(opts, bind.WithObserver(func(p bind.Patch) {
		d.pending = append(d.pending, p)
	}))
	d.binder = bind.New(graph, opts...)
	if err := d.binder.Add(root); err != nil {
		return nil, err
	}
	d.pending = nil
	return d, nil
}

// Root returns the document's root element.
func (d *Document) Root() *dom.Node { return d.root }

// Graph returns the bound reference graph.
func (d *Document) Graph() map[string]any { return d.graph }

// HTML renders the current document tree.
func (d *Document) HTML() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := render.New(render.Config{StampIDs: true})
	s, _ := r.ToString(d.root)
	return s
}

// Set writes values into the graph and returns the resulting patches.
func (d *Document) Set(values map[string]any) ([]protocol.Patch, error) {
	return d.verb(func() error { return d.binder.Set(values) })
}

// Delete removes paths from the graph and returns the resulting patches.
func (d *Document) Delete(paths ...string) ([]protocol.Patch, error) {
	return d.verb(func() error { return d.binder.Delete(paths...) })
}

// Call invokes the function at path and returns its result with the patches
// produced by reacting with it.
func (d *Document) Call(path string, args ...any) (any, []protocol.Patch, error) {
	var res any
	patches, err := d.verb(func() error {
		var callErr error
		res, callErr = d.binder.Call(path, args...)
		return callErr
	})
	return res, patches, err
}

// React re-derives bindings for the given paths, or all bindings when none
// are given.
func (d *Document) React(paths ...string) ([]protocol.Patch, error) {
	return d.verb(func() error { return d.binder.React(paths...) })
}

// list resolves the iterable wrapper at path.
func (d *Document) list(path string) (*bind.ListBinder, error) {
	lb := d.binder.List(path)
	if lb == nil {
		return nil, fmt.Errorf("%w: %q", ErrListNotMounted, path)
	}
	return lb, nil
}

// ListPush appends items to the array at path.
func (d *Document) ListPush(path string, items ...any) ([]protocol.Patch, error) {
	return d.verb(func() error {
		lb, err := d.list(path)
		if err != nil {
			return err
		}
		return lb.Push(items...)
	})
}

// ListPop removes the last item of the array at path.
func (d *Document) ListPop(path string) ([]protocol.Patch, error) {
	return d.verb(func() error {
		lb, err := d.list(path)
		if err != nil {
			return err
		}
		return lb.Pop()
	})
}

// ListSplice removes del items at start and inserts items in their place.
func (d *Document) ListSplice(path string, start, del int, items ...any) ([]protocol.Patch, error) {
	return d.verb(func() error {
		lb, err := d.list(path)
		if err != nil {
			return err
		}
		return lb.Splice(start, del, items...)
	})
}

// ListMove moves or swaps two items of the array at path.
func (d *Document) ListMove(path string, i1, i2 int, swap bool) ([]protocol.Patch, error) {
	return d.verb(func() error {
		lb, err := d.list(path)
		if err != nil {
			return err
		}
		return lb.Move(i1, i2, swap)
	})
}

// ListDelete removes the given indices, or empties the array when none are
// given.
func (d *Document) ListDelete(path string, indices ...int) ([]protocol.Patch, error) {
	return d.verb(func() error {
		lb, err := d.list(path)
		if err != nil {
			return err
		}
		return lb.Delete(indices...)
	})
}

// verb runs one mutation under the document lock and converts the binder
// patches it produced to wire patches.
func (d *Document) verb(fn func() error) ([]protocol.Patch, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = d.pending[:0]
	if err := fn(); err != nil {
		d.pending = d.pending[:0]
		return nil, err
	}
	out := d.convert(d.pending)
	d.pending = d.pending[:0]
	return out, nil
}

// convert turns binder patches into wire patches. Inserted subtrees are
// stamped with fresh IDs and rendered to HTML; every other patch is
// addressed by the target's existing ID.
func (d *Document) convert(in []bind.Patch) []protocol.Patch {
	out := make([]protocol.Patch, 0, len(in))
	r := render.New(render.Config{StampIDs: true})
	for _, p := range in {
		wp := protocol.Patch{
			Op:     protocol.PatchOp(p.Op),
			Target: d.targetID(p.Target),
			Key:    p.Key,
			Index:  p.Index,
			Count:  p.Count,
			To:     p.To,
		}
		switch p.Op {
		case bind.PatchSetAttr, bind.PatchSetProp, bind.PatchSetText:
			wp.Value = stringify(p.Value)
		case bind.PatchInsertNodes:
			var html string
			for _, n := range p.Nodes {
				d.ids.Assign(n)
				s, _ := r.ToString(n)
				html += s
			}
			wp.HTML = html
		}
		out = append(out, wp)
	}
	return out
}

func (d *Document) targetID(n *dom.Node) string {
	if n == nil {
		return ""
	}
	if n.ID == "" {
		d.ids.Assign(n)
	}
	return n.ID
}

// stringify formats a bound value for the wire the same way it is formatted
// into the tree.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
