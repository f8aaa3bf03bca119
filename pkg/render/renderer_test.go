package render

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/rebind-dev/rebind/pkg/dom"
)

func page() *dom.Node {
	h1 := dom.New("h1", dom.NewText("Rocks"))
	ul := dom.New("ul",
		dom.New("li", dom.NewText("basalt")),
		dom.New("li", dom.NewText("granite")),
	)
	p := dom.New("p", dom.NewText("q & a"))
	root := dom.New("div", h1, ul, p)
	root.SetAttr("class", "app")
	return root
}

func golden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRenderCompact(t *testing.T) {
	out, err := New(Config{}).ToString(page())
	if err != nil {
		t.Fatal(err)
	}
	golden(t).Assert(t, "compact", []byte(out))
}

func TestRenderPretty(t *testing.T) {
	out, err := New(Config{Pretty: true}).ToString(page())
	if err != nil {
		t.Fatal(err)
	}
	golden(t).Assert(t, "pretty", []byte(out))
}

func TestRenderStampedIDs(t *testing.T) {
	root := page()
	var a dom.IDAllocator
	a.Assign(root)

	out, err := New(Config{StampIDs: true}).ToString(root)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `data-rid="`+root.ID+`"`) {
		t.Errorf("missing root data-rid in %q", out)
	}
	if strings.Count(out, "data-rid=") != 5 {
		t.Errorf("stamped %d elements, want 5", strings.Count(out, "data-rid="))
	}
}

func TestRenderDoctype(t *testing.T) {
	out, err := New(Config{Doctype: true}).ToString(dom.New("html", dom.New("body")))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "<!DOCTYPE html>\n<html>") {
		t.Errorf("output = %q", out)
	}
}

func TestRenderVoidElements(t *testing.T) {
	img := dom.New("img")
	img.SetAttr("src", "a.png")
	out, err := New(Config{}).ToString(dom.New("p", img, dom.New("br")))
	if err != nil {
		t.Fatal(err)
	}
	if out != `<p><img src="a.png"><br></p>` {
		t.Errorf("output = %q", out)
	}
}

func TestRenderEscaping(t *testing.T) {
	n := dom.New("span", dom.NewText(`<b>&"'`))
	n.SetAttr("title", "a\"b\nc")
	out, err := New(Config{}).ToString(n)
	if err != nil {
		t.Fatal(err)
	}
	want := `<span title="a&quot;b&#10;c">&lt;b&gt;&amp;&quot;&#39;</span>`
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestRenderInlineStyles(t *testing.T) {
	n := dom.New("div")
	n.SetStyle("display", "none")
	n.SetStyle("color", "red")
	out, err := New(Config{}).ToString(n)
	if err != nil {
		t.Fatal(err)
	}
	if out != `<div style="display: none; color: red"></div>` {
		t.Errorf("output = %q", out)
	}
}

func TestNodeToStringStampsIDs(t *testing.T) {
	n := dom.New("li", dom.NewText("x"))
	n.ID = "n9"
	if got := NodeToString(n); got != `<li data-rid="n9">x</li>` {
		t.Errorf("NodeToString = %q", got)
	}
}
