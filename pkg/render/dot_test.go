package render

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/behave/pkg/canvas"
	"github.com/matzehuels/behave/pkg/value"
)

type sample struct {
	cv         *canvas.Canvas
	x, y, prox canvas.NodeID
	link       canvas.LinkID
}

func newSample(t *testing.T) sample {
	t.Helper()
	cv := canvas.New("root", canvas.Env{Converters: value.DefaultConverters(), Logger: log.New(io.Discard)})
	add := func(spec canvas.NodeSpec) canvas.NodeID {
		id, err := cv.AddNode(spec)
		if err != nil {
			t.Fatalf("AddNode(%+v) error = %v", spec, err)
		}
		return id
	}
	s := sample{cv: cv}
	s.x = add(canvas.NodeSpec{Variant: canvas.Generic{Template: "t.x"}, Name: "X", Portals: []canvas.PortalSpec{
		{Name: "Exit", Kind: canvas.Output, DataType: value.Object},
		{Name: "Speed", Kind: canvas.Product, DataType: value.Number},
	}})
	s.y = add(canvas.NodeSpec{Variant: canvas.Generic{Template: "t.y"}, Name: "Y|Z", Portals: []canvas.PortalSpec{
		{Name: "Enter", Kind: canvas.Input, DataType: value.Object},
		{Name: "Rate", Kind: canvas.Parameter, DataType: value.Number},
	}})
	s.prox = add(canvas.NodeSpec{Variant: canvas.PortalProxy{Exposed: canvas.Input, DataType: value.Object}, Name: "Start"})
	add(canvas.NodeSpec{Variant: canvas.Comment{Text: "remember"}})
	add(canvas.NodeSpec{Variant: canvas.Shortcut{Target: s.x}})

	var err error
	if s.link, err = cv.Connect(canvas.PortalRef{Node: s.x, Name: "Exit"}, canvas.PortalRef{Node: s.y, Name: "Enter"}); err != nil {
		t.Fatalf("Connect(Exit, Enter) error = %v", err)
	}
	if _, err := cv.Connect(canvas.PortalRef{Node: s.x, Name: "Speed"}, canvas.PortalRef{Node: s.y, Name: "Rate"}); err != nil {
		t.Fatalf("Connect(Speed, Rate) error = %v", err)
	}
	if _, err := cv.Connect(canvas.PortalRef{Node: s.prox, Name: "Start"}, canvas.PortalRef{Node: s.x, Name: "Exit"}); err == nil {
		t.Fatal("Connect(Start, Exit) succeeded, want incompatible")
	}
	return s
}

func uid(t *testing.T, cv *canvas.Canvas, id canvas.NodeID) string {
	t.Helper()
	n, err := cv.Node(id)
	if err != nil {
		t.Fatalf("Node(%s) error = %v", id, err)
	}
	return n.UID()
}

func TestToDOT_Basic(t *testing.T) {
	s := newSample(t)
	dot := ToDOT(s.cv, Options{})
	x, y := uid(t, s.cv, s.x), uid(t, s.cv, s.y)

	tests := []struct {
		name, want string
	}{
		{"header", "digraph G {"},
		{"record", `label="X|{<p0> Exit|<p1> Speed}"`},
		{"escaped title", `label="{<p0> Enter|<p1> Rate}|Y\|Z"`},
		{"flow link", fmt.Sprintf("%q:p0:e -> %q:p0:w [style=solid]", x, y)},
		{"data link", fmt.Sprintf("%q:p1:e -> %q:p1:w [style=dashed]", x, y)},
		{"proxy", "shape=ellipse"},
		{"comment", `label="remember"`},
		{"shortcut", "constraint=false"},
	}
	for _, tt := range tests {
		if !strings.Contains(dot, tt.want) {
			t.Errorf("ToDOT() %s: missing %q in\n%s", tt.name, tt.want, dot)
		}
	}
}

func TestToDOT_FrameDelayLabel(t *testing.T) {
	s := newSample(t)
	if err := s.cv.SetFrameDelay(s.link, 3); err != nil {
		t.Fatalf("SetFrameDelay() error = %v", err)
	}
	if dot := ToDOT(s.cv, Options{}); !strings.Contains(dot, `label="3"`) {
		t.Errorf("ToDOT() missing frame delay label in\n%s", dot)
	}
}

func TestToDOT_Detailed(t *testing.T) {
	s := newSample(t)
	dot := ToDOT(s.cv, Options{Detailed: true, Pinned: true})
	for _, want := range []string{"Speed : number", "layout=neato", "pos="} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() detailed output missing %q", want)
		}
	}
}

func TestEscapeRecord(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a|b", `a\|b`},
		{"{x}", `\{x\}`},
		{"<p>", `\<p\>`},
		{`say "hi"`, `say \"hi\"`},
	}
	for _, tt := range tests {
		if got := escapeRecord(tt.in); got != tt.want {
			t.Errorf("escapeRecord(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderSVG(t *testing.T) {
	s := newSample(t)
	svg, err := RenderSVG(context.Background(), ToDOT(s.cv, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	if !strings.Contains(string(svg), `viewBox="0 0 `) {
		t.Errorf("RenderSVG() output not normalized:\n%.200s", svg)
	}
}
