// Package protocol implements the binary wire format used to mirror
// document patches to connected clients.
//
// Every message is a frame: a 4-byte header (type + payload length)
// followed by a varint-encoded payload. Patch batches carry a sequence
// number so clients can detect gaps and request a fresh handshake.
// The encoding is length-prefixed throughout and the decoder enforces
// allocation limits, so a malformed or hostile payload fails fast
// instead of ballooning memory.
package protocol
