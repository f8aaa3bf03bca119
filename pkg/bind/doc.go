// Package bind is a declarative, attribute-driven reactive binding engine.
// It keeps a tree of rendering elements synchronized with an externally
// owned reference graph without a virtual-tree diffing pass: directive
// attributes describe which element member reacts to which graph path, and
// the verbs (Set, Delete, Call, Push, Pop, Splice, Move) propagate exactly
// the affected updates to exactly the bound elements, synchronously.
//
// A Binder wraps one graph node; directives inside its elements resolve
// paths against that node first and fall back through the parent chain.
// A ListBinder wraps an array: each item is rendered from a template
// captured from the mounted element's initial content, and structural verbs
// keep array, item binders, and rendered nodes positionally consistent.
package bind
