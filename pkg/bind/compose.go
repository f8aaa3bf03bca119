package bind

import (
	"fmt"
	"strconv"
	"strings"
)

// Composer holds the ordered slot values of a multi-value directive and
// recomputes the single bound value whenever one slot is updated. Slots
// alternate between derived path values (even positions) and literal text
// (odd positions); the literals are filled once at bind time.
type Composer struct {
	slots []any
	calc  CalcFunc
}

// NewComposer creates a composer over the given initial slots. calc may be
// nil, in which case the slots are concatenated in order.
func NewComposer(slots []any, calc CalcFunc) *Composer {
	return &Composer{slots: slots, calc: calc}
}

// SetSlot updates one slot value. Out-of-range indices are ignored.
func (c *Composer) SetSlot(i int, v any) {
	if i >= 0 && i < len(c.slots) {
		c.slots[i] = v
	}
}

// Value recomputes the composed value. Without a calc function the slots are
// concatenated; nil slots render as empty text so an absent path value
// between two separators does not break adjacency.
func (c *Composer) Value() any {
	if c.calc != nil {
		return c.calc(c.slots...)
	}
	var b strings.Builder
	for _, s := range c.slots {
		if s == nil {
			continue
		}
		b.WriteString(formatValue(s))
	}
	return b.String()
}

// formatValue converts a bound value to its attribute/text representation.
func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
