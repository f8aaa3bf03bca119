package bind

import (
	"strconv"
	"strings"
)

// splitPath breaks a directive path into segments.
func splitPath(path, sep string) []string {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	return strings.Split(path, sep)
}

// memberOf resolves one path segment against a reference-graph node.
// Objects are maps; arrays accept numeric segments.
func memberOf(node any, key string) (any, bool) {
	switch v := node.(type) {
	case map[string]any:
		val, ok := v[key]
		return val, ok
	case []any:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(v) {
			return nil, false
		}
		return v[i], true
	default:
		return nil, false
	}
}

// lookup walks a node through the given segments. A missing segment yields
// (nil, false): absent is undefined, never an error.
func lookup(node any, segs []string) (any, bool) {
	cur := node
	for _, s := range segs {
		v, ok := memberOf(cur, s)
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// assign writes a member value into a container node.
func assign(owner any, member string, v any) {
	switch o := owner.(type) {
	case map[string]any:
		o[member] = v
	case []any:
		if i, err := strconv.Atoi(member); err == nil && i >= 0 && i < len(o) {
			o[i] = v
		}
	}
}

// unassign deletes a member from a container node. Array members are left to
// the structural verbs, which keep the child layout consistent; plain
// element deletion would create holes.
func unassign(owner any, member string) {
	if o, ok := owner.(map[string]any); ok {
		delete(o, member)
	}
}

// pathMatches reports whether a reaction-table key falls under one of the
// reacted paths (equal, or nested below it).
func pathMatches(key string, paths []string, sep string) (string, bool) {
	for _, p := range paths {
		if key == p || strings.HasPrefix(key, p+sep) {
			return p, true
		}
	}
	return "", false
}
