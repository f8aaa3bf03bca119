package bind

import (
	"testing"

	"github.com/rebind-dev/rebind/pkg/dom"
)

func rocksGraph(ns ...int) map[string]any {
	arr := make([]any, len(ns))
	for i, n := range ns {
		arr[i] = map[string]any{"n": n}
	}
	return map[string]any{"rocks": arr}
}

func mountList(t *testing.T, graph map[string]any, markup string) (*Binder, *ListBinder, *dom.Node) {
	t.Helper()
	ul := element(t, markup)
	b := New(graph)
	if err := b.Add(ul); err != nil {
		t.Fatalf("Add: %v", err)
	}
	lb := b.List("rocks")
	if lb == nil {
		t.Fatal("list not mounted")
	}
	return b, lb, ul
}

// checkLayout asserts the positional invariant: item binders match the array
// length and the rendered children are length × template size.
func checkLayout(t *testing.T, lb *ListBinder, ul *dom.Node, tmplSize int) {
	t.Helper()
	n := lb.Len()
	if got := len(lb.Items(ul)); got != n {
		t.Fatalf("item binders = %d, array length = %d", got, n)
	}
	if got := len(ul.Children); got != n*tmplSize {
		t.Fatalf("rendered children = %d, want %d", got, n*tmplSize)
	}
}

func childTexts(ul *dom.Node) []string {
	out := make([]string, len(ul.Children))
	for i, c := range ul.Children {
		out[i] = c.TextContent()
	}
	return out
}

func TestListRendersInitialArray(t *testing.T) {
	_, lb, ul := mountList(t, rocksGraph(1, 2, 3), `<ul ite-r="rocks"><li t="n"></li></ul>`)
	checkLayout(t, lb, ul, 1)

	want := []string{"1", "2", "3"}
	for i, w := range want {
		if got := ul.Children[i].TextContent(); got != w {
			t.Errorf("child %d = %q, want %q", i, got, w)
		}
	}
}

func TestListPushPopKeepLayout(t *testing.T) {
	_, lb, ul := mountList(t, rocksGraph(1), `<ul ite-r="rocks"><li t="n"></li></ul>`)

	steps := []struct {
		name string
		op   func() error
		want []string
	}{
		{"push two", func() error { return lb.Push(map[string]any{"n": 2}, map[string]any{"n": 3}) }, []string{"1", "2", "3"}},
		{"pop", func() error { return lb.Pop() }, []string{"1", "2"}},
		{"pop", func() error { return lb.Pop() }, []string{"1"}},
		{"pop", func() error { return lb.Pop() }, nil},
		{"pop empty", func() error { return lb.Pop() }, nil},
		{"push onto empty", func() error { return lb.Push(map[string]any{"n": 7}) }, []string{"7"}},
	}
	for _, step := range steps {
		if err := step.op(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		checkLayout(t, lb, ul, 1)
		if got := childTexts(ul); len(got) != len(step.want) {
			t.Fatalf("%s: children %v, want %v", step.name, got, step.want)
		} else {
			for i := range step.want {
				if got[i] != step.want[i] {
					t.Errorf("%s: child %d = %q, want %q", step.name, i, got[i], step.want[i])
				}
			}
		}
	}
}

func TestListSplicePreservesNeighbors(t *testing.T) {
	_, lb, ul := mountList(t, rocksGraph(1, 2, 3), `<ul ite-r="rocks"><li t="n"></li></ul>`)

	first, last := ul.Children[0], ul.Children[2]
	if err := lb.Splice(1, 1, map[string]any{"n": 9}); err != nil {
		t.Fatalf("Splice: %v", err)
	}
	checkLayout(t, lb, ul, 1)

	if ul.Children[0] != first {
		t.Errorf("node at position 0 was recreated")
	}
	if ul.Children[2] != last {
		t.Errorf("node at position 2 was recreated")
	}
	if got := ul.Children[1].TextContent(); got != "9" {
		t.Errorf("spliced child = %q, want %q", got, "9")
	}
}

func TestListSpliceClamps(t *testing.T) {
	_, lb, ul := mountList(t, rocksGraph(1, 2), `<ul ite-r="rocks"><li t="n"></li></ul>`)

	tests := []struct {
		name       string
		start, del int
		items      []any
		want       []string
	}{
		{"start beyond end appends", 10, 0, []any{map[string]any{"n": 3}}, []string{"1", "2", "3"}},
		{"negative start clamps to front", -5, 0, []any{map[string]any{"n": 0}}, []string{"0", "1", "2", "3"}},
		{"oversized delete clamps", 2, 99, nil, []string{"0", "1"}},
		{"negative delete is zero", 0, -1, nil, []string{"0", "1"}},
	}
	for _, tt := range tests {
		if err := lb.Splice(tt.start, tt.del, tt.items...); err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		checkLayout(t, lb, ul, 1)
		got := childTexts(ul)
		if len(got) != len(tt.want) {
			t.Fatalf("%s: children %v, want %v", tt.name, got, tt.want)
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("%s: child %d = %q, want %q", tt.name, i, got[i], tt.want[i])
			}
		}
	}
}

func TestListMoveShift(t *testing.T) {
	_, lb, ul := mountList(t, rocksGraph(1, 2, 3, 4), `<ul ite-r="rocks"><li t="n"></li></ul>`)
	moved := ul.Children[0]

	if err := lb.Move(0, 2, false); err != nil {
		t.Fatalf("Move: %v", err)
	}
	checkLayout(t, lb, ul, 1)

	want := []string{"2", "3", "1", "4"}
	got := childTexts(ul)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("child %d = %q, want %q", i, got[i], want[i])
		}
	}
	if ul.Children[2] != moved {
		t.Errorf("moved node was recreated")
	}
}

func TestListMoveSwap(t *testing.T) {
	_, lb, ul := mountList(t, rocksGraph(1, 2, 3, 4), `<ul ite-r="rocks"><li t="n"></li></ul>`)
	a, b := ul.Children[1], ul.Children[3]

	if err := lb.Move(3, 1, true); err != nil {
		t.Fatalf("Move: %v", err)
	}
	checkLayout(t, lb, ul, 1)

	want := []string{"1", "4", "3", "2"}
	got := childTexts(ul)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("child %d = %q, want %q", i, got[i], want[i])
		}
	}
	if ul.Children[3] != a || ul.Children[1] != b {
		t.Errorf("swap recreated nodes")
	}
}

func TestListMoveOutOfRangeIsNoop(t *testing.T) {
	_, lb, ul := mountList(t, rocksGraph(1, 2), `<ul ite-r="rocks"><li t="n"></li></ul>`)
	if err := lb.Move(0, 5, false); err != nil {
		t.Fatalf("Move: %v", err)
	}
	want := []string{"1", "2"}
	got := childTexts(ul)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("child %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestListIndexModeRestamps(t *testing.T) {
	graph := rocksGraph(10, 20, 30)
	_, lb, ul := mountList(t, graph, `<ul ite-r="{rocks}"><li idx-a="index" t="item.n"></li></ul>`)

	for i, wantText := range []string{"10", "20", "30"} {
		c := ul.Children[i]
		if got, _ := c.Attr("idx"); got != itoa(i) {
			t.Errorf("child %d idx = %q, want %q", i, got, itoa(i))
		}
		if got := c.TextContent(); got != wantText {
			t.Errorf("child %d text = %q, want %q", i, got, wantText)
		}
	}

	// Removing the head shifts every surviving index down.
	if err := lb.Splice(0, 1); err != nil {
		t.Fatalf("Splice: %v", err)
	}
	for i, wantText := range []string{"20", "30"} {
		c := ul.Children[i]
		if got, _ := c.Attr("idx"); got != itoa(i) {
			t.Errorf("after splice, child %d idx = %q, want %q", i, got, itoa(i))
		}
		if got := c.TextContent(); got != wantText {
			t.Errorf("after splice, child %d text = %q, want %q", i, got, wantText)
		}
	}
}

func itoa(i int) string {
	return string(rune('0' + i))
}

func TestListTemplateElementGroup(t *testing.T) {
	graph := rocksGraph(1, 2)
	_, lb, ul := mountList(t, graph,
		`<ul ite-r="rocks"><template><li t="n"></li><li class="sep"></li></template></ul>`)
	checkLayout(t, lb, ul, 2)

	want := []string{"1", "", "2", ""}
	got := childTexts(ul)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("child %d = %q, want %q", i, got[i], want[i])
		}
	}

	if err := lb.Splice(0, 1); err != nil {
		t.Fatalf("Splice: %v", err)
	}
	checkLayout(t, lb, ul, 2)
	if got := ul.Children[0].TextContent(); got != "2" {
		t.Errorf("child 0 = %q, want %q", got, "2")
	}
}

func TestListDeleteIndexDelegatesToSplice(t *testing.T) {
	_, lb, ul := mountList(t, rocksGraph(1, 2, 3), `<ul ite-r="rocks"><li t="n"></li></ul>`)

	if err := lb.Delete(1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	checkLayout(t, lb, ul, 1)

	want := []string{"1", "3"}
	got := childTexts(ul)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("child %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestListDeleteAllDetaches(t *testing.T) {
	graph := rocksGraph(1, 2)
	root := element(t, `<div><ul ite-r="rocks"><li t="n"></li></ul></div>`)
	ul := root.Children[0]

	b := New(graph)
	if err := b.Add(root); err != nil {
		t.Fatalf("Add: %v", err)
	}
	lb := b.List("rocks")
	if lb == nil {
		t.Fatal("list not mounted")
	}

	if err := lb.Delete(); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ul.Parent != nil {
		t.Errorf("mounted element not detached")
	}
	arr, _ := graph["rocks"].([]any)
	if len(arr) != 0 {
		t.Errorf("array not cleared, len = %d", len(arr))
	}
}

func TestListReactRecoversFromExternalMutation(t *testing.T) {
	graph := rocksGraph(1, 2)
	b, lb, ul := mountList(t, graph, `<ul ite-r="rocks"><li t="n"></li></ul>`)

	// Replacing the whole array through the scalar verb re-renders the
	// mount to match the new length.
	if err := b.Set(map[string]any{"rocks": []any{
		map[string]any{"n": 7},
		map[string]any{"n": 8},
		map[string]any{"n": 9},
	}}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	checkLayout(t, lb, ul, 1)

	want := []string{"7", "8", "9"}
	got := childTexts(ul)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("child %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestListSharedAcrossMounts(t *testing.T) {
	graph := rocksGraph(1, 2)
	root := element(t, `<div><ul ite-r="rocks"><li t="n"></li></ul><ol ite-r="rocks"><li t="n"></li></ol></div>`)
	ul, ol := root.Children[0], root.Children[1]

	b := New(graph)
	if err := b.Add(root); err != nil {
		t.Fatalf("Add: %v", err)
	}
	lb := b.List("rocks")
	if lb == nil {
		t.Fatal("list not mounted")
	}

	if err := lb.Push(map[string]any{"n": 3}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	for _, m := range []*dom.Node{ul, ol} {
		if got := len(m.Children); got != 3 {
			t.Errorf("%s children = %d, want 3", m.Tag, got)
		}
		if got := m.Children[2].TextContent(); got != "3" {
			t.Errorf("%s child 2 = %q, want %q", m.Tag, got, "3")
		}
	}
}

func TestListItemReachesOuterScope(t *testing.T) {
	graph := rocksGraph(1)
	graph["unit"] = "kg"
	_, lb, ul := mountList(t, graph, `<ul ite-r="rocks"><li title-a="unit" t="n"></li></ul>`)
	_ = lb

	if got, _ := ul.Children[0].Attr("title"); got != "kg" {
		t.Errorf("outer scope lookup from item = %q, want %q", got, "kg")
	}
}

func TestListPatchesMirrorStructure(t *testing.T) {
	graph := rocksGraph(1)
	ul := element(t, `<ul ite-r="rocks"><li t="n"></li></ul>`)

	var ops []PatchOp
	b := New(graph, WithObserver(func(p Patch) { ops = append(ops, p.Op) }))
	if err := b.Add(ul); err != nil {
		t.Fatalf("Add: %v", err)
	}
	lb := b.List("rocks")

	ops = ops[:0]
	if err := lb.Push(map[string]any{"n": 2}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if len(ops) == 0 || ops[0] != PatchInsertNodes {
		t.Errorf("push ops = %v, want leading InsertNodes", ops)
	}

	ops = ops[:0]
	if err := lb.Pop(); err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if len(ops) != 1 || ops[0] != PatchRemoveNodes {
		t.Errorf("pop ops = %v, want [RemoveNodes]", ops)
	}

	ops = ops[:0]
	if err := lb.Push(map[string]any{"n": 3}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	ops = ops[:0]
	if err := lb.Move(0, 1, false); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if len(ops) != 1 || ops[0] != PatchMoveNodes {
		t.Errorf("move ops = %v, want [MoveNodes]", ops)
	}
}

func TestSetReachesListItems(t *testing.T) {
	b, _, ul := mountList(t, rocksGraph(1, 2), `<ul ite-r="rocks"><li t="n"></li></ul>`)
	untouched := ul.Children[1]

	if err := b.Set(map[string]any{"rocks.0.n": 9}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := ul.Children[0].TextContent(); got != "9" {
		t.Errorf("rendered item = %q, want %q", got, "9")
	}
	if got := ul.Children[1].TextContent(); got != "2" {
		t.Errorf("sibling item = %q, want %q", got, "2")
	}
	if ul.Children[1] != untouched {
		t.Error("sibling node was recreated")
	}
}

func TestSetReachesListItemsIndexMode(t *testing.T) {
	b, _, ul := mountList(t, rocksGraph(1, 2, 3),
		`<ul ite-r="{rocks}"><li idx-a="index" t="item.n"></li></ul>`)

	if err := b.Set(map[string]any{"rocks.1.n": 7}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	want := []string{"1", "7", "3"}
	for i, w := range want {
		if got := ul.Children[i].TextContent(); got != w {
			t.Errorf("child %d = %q, want %q", i, got, w)
		}
		if got, _ := ul.Children[i].Attr("idx"); got != itoa(i) {
			t.Errorf("child %d idx = %q, want %q", i, got, itoa(i))
		}
	}
}

func TestSetWholeListItem(t *testing.T) {
	b, _, ul := mountList(t, rocksGraph(1, 2), `<ul ite-r="rocks"><li t="n"></li></ul>`)

	if err := b.Set(map[string]any{"rocks.1": map[string]any{"n": 5}}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	want := []string{"1", "5"}
	for i, w := range want {
		if got := ul.Children[i].TextContent(); got != w {
			t.Errorf("child %d = %q, want %q", i, got, w)
		}
	}
}

func TestReactItemPath(t *testing.T) {
	graph := rocksGraph(1, 2)
	b, _, ul := mountList(t, graph, `<ul ite-r="rocks"><li t="n"></li></ul>`)

	graph["rocks"].([]any)[0].(map[string]any)["n"] = 4
	if err := b.React("rocks.0.n"); err != nil {
		t.Fatalf("React: %v", err)
	}
	if got := ul.Children[0].TextContent(); got != "4" {
		t.Errorf("rendered item = %q, want %q", got, "4")
	}
}

func TestReactNonIndexItemPathRerenders(t *testing.T) {
	graph := rocksGraph(1, 2)
	b, lb, ul := mountList(t, graph, `<ul ite-r="rocks"><li t="n"></li></ul>`)

	graph["rocks"].([]any)[1].(map[string]any)["n"] = 8
	if err := b.React("rocks.current"); err != nil {
		t.Fatalf("React: %v", err)
	}
	checkLayout(t, lb, ul, 1)
	if got := ul.Children[1].TextContent(); got != "8" {
		t.Errorf("rendered item = %q, want %q", got, "8")
	}
}

func TestSetItemPathOutOfRange(t *testing.T) {
	b, lb, ul := mountList(t, rocksGraph(1), `<ul ite-r="rocks"><li t="n"></li></ul>`)

	if err := b.Set(map[string]any{"rocks.5.n": 9}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	checkLayout(t, lb, ul, 1)
	if got := ul.Children[0].TextContent(); got != "1" {
		t.Errorf("rendered item = %q, want %q", got, "1")
	}
}
