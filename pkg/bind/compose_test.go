package bind

import "testing"

func TestComposerConcatenation(t *testing.T) {
	c := NewComposer(make([]any, 3), nil)
	c.SetSlot(1, " & ")

	tests := []struct {
		name  string
		set   map[int]any
		want  string
	}{
		{"one slot empty", map[int]any{0: "mercury"}, "mercury & "},
		{"both slots", map[int]any{2: "mars"}, "mercury & mars"},
		{"numeric slots", map[int]any{0: 1, 2: 4}, "1 & 4"},
		{"nil slot skipped", map[int]any{0: nil}, " & 4"},
	}
	for _, tt := range tests {
		for i, v := range tt.set {
			c.SetSlot(i, v)
		}
		if got := c.Value(); got != tt.want {
			t.Errorf("%s: Value() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestComposerCalc(t *testing.T) {
	first := func(slots ...any) any {
		for _, s := range slots {
			if s != nil {
				return s
			}
		}
		return nil
	}
	c := NewComposer(make([]any, 2), first)
	if got := c.Value(); got != nil {
		t.Errorf("empty calc = %v, want nil", got)
	}
	c.SetSlot(1, "fallback")
	if got := c.Value(); got != "fallback" {
		t.Errorf("calc = %v, want %q", got, "fallback")
	}
	c.SetSlot(0, "primary")
	if got := c.Value(); got != "primary" {
		t.Errorf("calc = %v, want %q", got, "primary")
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"s", "s"},
		{true, "true"},
		{false, "false"},
		{7, "7"},
		{int64(-3), "-3"},
		{1.5, "1.5"},
		{2.0, "2"},
	}
	for _, tt := range tests {
		if got := formatValue(tt.in); got != tt.want {
			t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
