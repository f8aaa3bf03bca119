// Package server hosts one bound document over HTTP. Mutation verbs arrive
// as JSON requests, run against the document's binder, and the patches they
// produce are broadcast to WebSocket mirror clients as binary frames. The
// initial page is served as rendered HTML; a mirror's handshake carries the
// same snapshot so it starts from the current state.
package server
