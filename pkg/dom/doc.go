// Package dom provides the concrete, mutable element tree the binding
// engine renders into. Nodes carry ordered attributes, runtime properties,
// and inline styles; the engine mutates them in place rather than diffing
// virtual trees.
package dom
