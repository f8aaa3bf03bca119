// Package snapshot persists document state. A snapshot pairs the reference
// graph with the rendered tree so a document can be inspected or restored
// later. Stores are pluggable; in-memory and S3 implementations are
// provided.
package snapshot
