// Package config loads and saves rebind.json, the project configuration
// file: the document to bind, the initial graph, server address, render
// options, directive grammar overrides, and the snapshot store.
package config
