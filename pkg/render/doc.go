// Package render serializes dom.Node trees to HTML: escaped text and
// attributes, ordered attribute output, optional pretty printing, and
// optional data-rid stamping for mirror clients.
package render
