package bind

import "github.com/rebind-dev/rebind/pkg/dom"

// TextProp is the property name the text directive binds. ApplyProp routes
// it to the element's text content instead of the property table.
const TextProp = "textContent"

// ApplyAttr applies a computed value to an element attribute. A nil value
// removes the attribute. The returned patch describes what changed; ok is
// false when nothing had to change.
func ApplyAttr(elem *dom.Node, key string, v any) (Patch, bool) {
	if v == nil {
		if !elem.RemoveAttr(key) {
			return Patch{}, false
		}
		return Patch{Op: PatchRemoveAttr, Target: elem, Key: key}, true
	}
	text := formatValue(v)
	if cur, ok := elem.Attr(key); ok && cur == text {
		return Patch{}, false
	}
	elem.SetAttr(key, text)
	return Patch{Op: PatchSetAttr, Target: elem, Key: key, Value: text}, true
}

// ApplyProp applies a computed value to an element property or, for
// TextProp, to its text content. A nil value removes the property (text
// content is cleared).
func ApplyProp(elem *dom.Node, key string, v any) (Patch, bool) {
	if key == TextProp {
		text := ""
		if v != nil {
			text = formatValue(v)
		}
		if elem.TextContent() == text {
			return Patch{}, false
		}
		elem.SetTextContent(text)
		return Patch{Op: PatchSetText, Target: elem, Value: text}, true
	}
	if v == nil {
		if !elem.RemoveProp(key) {
			return Patch{}, false
		}
		return Patch{Op: PatchRemoveProp, Target: elem, Key: key}, true
	}
	if cur, ok := elem.Prop(key); ok && sameValue(cur, v) {
		return Patch{}, false
	}
	elem.SetProp(key, v)
	return Patch{Op: PatchSetProp, Target: elem, Key: key, Value: v}, true
}

// sameValue compares property values without panicking on uncomparable
// types.
func sameValue(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	default:
		return false
	}
}
