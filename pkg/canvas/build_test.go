package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/behave/pkg/asset"
	"github.com/matzehuels/behave/pkg/errors"
	"github.com/matzehuels/behave/pkg/token"
	"github.com/matzehuels/behave/pkg/value"
)

type nodeSig struct {
	Type    string
	Name    string
	Alias   string
	Portals []string
}

type linkSig struct {
	Start string
	End   string
	Delay int
}

// signature describes a canvas independently of session ids and order.
func signature(c *Canvas) ([]nodeSig, []linkSig) {
	var nodes []nodeSig
	for _, n := range c.Nodes() {
		s := nodeSig{Type: n.Variant().Type(), Name: c.DisplayName(n.ID()), Alias: n.Alias()}
		for _, p := range n.Portals() {
			s.Portals = append(s.Portals, fmt.Sprintf("%s:%s:%s:%v", p.Name(), p.Kind(), p.DataType(), p.Value()))
		}
		nodes = append(nodes, s)
	}
	var links []linkSig
	for _, l := range c.Links() {
		links = append(links, linkSig{
			Start: c.DisplayName(l.Start().Node) + "." + l.Start().Name,
			End:   c.DisplayName(l.End().Node) + "." + l.End().Name,
			Delay: l.FrameDelay(),
		})
	}
	slices.SortFunc(nodes, func(a, b nodeSig) int {
		return strings.Compare(a.Type+a.Name, b.Type+b.Name)
	})
	slices.SortFunc(links, func(a, b linkSig) int {
		return strings.Compare(a.Start+a.End, b.Start+b.End)
	})
	return nodes, links
}

// reopen serializes c through JSON and opens it into a fresh canvas.
func reopen(t *testing.T, c *Canvas) (*Canvas, OpenResult) {
	t.Helper()
	tok, diags := c.Build(context.Background())
	if len(diags) != 0 {
		t.Fatalf("Build() diagnostics = %v", diags)
	}
	data, err := json.Marshal(tok)
	if err != nil {
		t.Fatal(err)
	}
	var decoded token.CanvasToken
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v\n%s", err, data)
	}
	fresh := New(c.ContainerID(), c.env)
	res, err := fresh.Open(context.Background(), &decoded, OpenOptions{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return fresh, res
}

func TestRoundTrip_LinkFrameDelay(t *testing.T) {
	c, _, _ := newTestCanvas(t)
	x := mustAdd(t, c, generic("X", out("Exit")))
	y := mustAdd(t, c, generic("Y", in("Enter")))
	id := mustConnect(t, c, PortalRef{x, "Exit"}, PortalRef{y, "Enter"})
	if err := c.SetFrameDelay(id, 2); err != nil {
		t.Fatal(err)
	}

	fresh, res := reopen(t, c)
	if len(res.Diagnostics) != 0 {
		t.Errorf("Open() diagnostics = %v", res.Diagnostics)
	}
	links := fresh.Links()
	if len(links) != 1 {
		t.Fatalf("len(Links()) = %d, want 1", len(links))
	}
	l := links[0]
	if l.FrameDelay() != 2 {
		t.Errorf("FrameDelay() = %d, want 2", l.FrameDelay())
	}
	if l.Start().Name != "Exit" || l.End().Name != "Enter" {
		t.Errorf("link = %s -> %s, want Exit -> Enter", l.Start().Name, l.End().Name)
	}
	if got := fresh.DisplayName(l.Start().Node); got != "X" {
		t.Errorf("start node = %q, want X", got)
	}
}

func TestRoundTrip_AllVariants(t *testing.T) {
	c, lib, _ := newTestCanvas(t)
	lib.PutAsset(asset.Asset{ShallowID: 1, Name: "hero"})

	x := mustAdd(t, c, NodeSpec{
		Variant: Generic{Template: "move"},
		Name:    "Move",
		Alias:   "walk",
		Portals: []PortalSpec{
			out("Exit"),
			in("Enter"),
			{Name: "Speed", Kind: Parameter, DataType: value.Number, Value: 2.5},
			{Name: "Tint", Kind: Parameter, DataType: value.Color, Value: "#FF0000", Custom: true},
			{Name: "Items", Kind: Parameter, DataType: value.AssetList, Value: []int{1}},
		},
	})
	a := mustAdd(t, c, NodeSpec{Variant: AssetRef{AssetID: 1}, Portals: []PortalSpec{product("Self", value.Asset)}})
	s := mustAdd(t, c, NodeSpec{Variant: ScriptRef{ShallowID: 9}, Name: "Logic", Portals: []PortalSpec{in("Run")}})
	p := mustAdd(t, c, NodeSpec{Variant: PortalProxy{Exposed: Input, DataType: value.Object}, Name: "Start"})
	mustAdd(t, c, NodeSpec{Variant: Comment{Text: "entry point"}, Left: 10, Top: 20})
	sc := mustAdd(t, c, NodeSpec{Variant: Shortcut{Target: s}, Left: 400})

	mustConnect(t, c, PortalRef{p, "Start"}, PortalRef{x, "Enter"})
	mustConnect(t, c, PortalRef{x, "Exit"}, PortalRef{sc, "Run"})
	mustConnect(t, c, PortalRef{a, "Self"}, PortalRef{x, "Items"})

	wantNodes, wantLinks := signature(c)
	fresh, res := reopen(t, c)
	if len(res.Diagnostics) != 0 {
		t.Errorf("Open() diagnostics = %v", res.Diagnostics)
	}
	gotNodes, gotLinks := signature(fresh)
	if diff := cmp.Diff(wantNodes, gotNodes); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantLinks, gotLinks); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(c.References(), fresh.References()); diff != "" {
		t.Errorf("References() mismatch (-want +got):\n%s", diff)
	}

	// Session ids are regenerated.
	for _, n := range fresh.Nodes() {
		if _, ok := c.NodeByUID(n.UID()); ok {
			t.Errorf("node uid %s survived the round trip", n.UID())
		}
	}
}

func TestBuild_ShortcutLinksCarryTarget(t *testing.T) {
	c, _, _ := newTestCanvas(t)
	x := mustAdd(t, c, generic("X", out("Exit")))
	y := mustAdd(t, c, generic("Y", in("Enter")))
	sc := mustAdd(t, c, NodeSpec{Variant: Shortcut{Target: y}})
	mustConnect(t, c, PortalRef{x, "Exit"}, PortalRef{sc, "Enter"})

	tok, _ := c.Build(context.Background())
	var link token.Item
	for _, it := range tok.Items {
		if it.IsLink() {
			link = it
		}
	}
	yn, _ := c.Node(y)
	scn, _ := c.Node(sc)
	if link.EndBehaviour != scn.UID() || link.TargetEndBehaviour != yn.UID() {
		t.Errorf("link end = %q / target %q, want %q / %q", link.EndBehaviour, link.TargetEndBehaviour, scn.UID(), yn.UID())
	}
	if link.TargetStartBehaviour != "" {
		t.Errorf("TargetStartBehaviour = %q, want empty", link.TargetStartBehaviour)
	}

	// Without the shortcut item the link falls back to the target.
	tok.Items = slices.DeleteFunc(tok.Items, func(it token.Item) bool { return it.Type == token.TypeShortcut })
	fresh := New("root", Env{Logger: quietLogger()})
	res, err := fresh.Open(context.Background(), tok, OpenOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Links) != 1 || len(res.Diagnostics) != 0 {
		t.Fatalf("Open() = %d links, diagnostics %v; want 1 link", len(res.Links), res.Diagnostics)
	}
	l, _ := fresh.Link(res.Links[0])
	if got := fresh.DisplayName(l.End().Node); got != "Y" {
		t.Errorf("link ends at %q, want Y", got)
	}
}

func TestBuild_ScriptProvisioning(t *testing.T) {
	c, _, scripts := newTestCanvas(t)
	ctx := context.Background()
	s := mustAdd(t, c, NodeSpec{Variant: ScriptRef{}, Name: "Logic", Portals: []PortalSpec{in("Run")}})
	x := mustAdd(t, c, generic("X", out("Exit")))
	mustConnect(t, c, PortalRef{x, "Exit"}, PortalRef{s, "Run"})

	scripts.fail = true
	tok, diags := c.Build(ctx)
	if len(diags) != 1 || diags[0].Code != errors.ErrCodeScriptProvision {
		t.Fatalf("Build() diagnostics = %v, want one SCRIPT_PROVISION", diags)
	}
	if got := len(tok.Items); got != 1 {
		t.Errorf("len(Items) = %d, want 1 (script node and its link skipped)", got)
	}
	if _, err := c.Node(s); err != nil {
		t.Errorf("script node removed from canvas: %v", err)
	}

	scripts.fail = false
	tok, diags = c.Build(ctx)
	if len(diags) != 0 {
		t.Fatalf("Build() diagnostics = %v", diags)
	}
	if got := len(tok.Items); got != 3 {
		t.Errorf("len(Items) = %d, want 3", got)
	}
	n, _ := c.Node(s)
	if got := n.Variant().(ScriptRef).ShallowID; got != 101 {
		t.Errorf("ShallowID = %d, want 101", got)
	}

	// Already provisioned scripts are not provisioned again.
	c.Build(ctx)
	if scripts.next != 101 {
		t.Errorf("provisioned %d times, want once", scripts.next-100)
	}
}

func TestBuild_Subset(t *testing.T) {
	c, _, _ := newTestCanvas(t)
	x := mustAdd(t, c, generic("X", out("Exit")))
	y := mustAdd(t, c, generic("Y", in("Enter"), out("Exit")))
	z := mustAdd(t, c, generic("Z", in("Enter")))
	mustConnect(t, c, PortalRef{x, "Exit"}, PortalRef{y, "Enter"})
	mustConnect(t, c, PortalRef{y, "Exit"}, PortalRef{z, "Enter"})

	tok, _ := c.Build(context.Background(), x, y)
	var nodes, links int
	for _, it := range tok.Items {
		if it.IsLink() {
			links++
		} else {
			nodes++
		}
	}
	if nodes != 2 || links != 1 {
		t.Errorf("Build(subset) = %d nodes, %d links; want 2, 1", nodes, links)
	}
}

func TestOpen_Diagnostics(t *testing.T) {
	delay := 3
	tok := &token.CanvasToken{
		ContainerID: "root",
		Items: []token.Item{
			{ID: "a", Type: token.TypeBehaviour, Name: "A", Portals: []token.Portal{{Name: "Exit", Type: "output", DataType: value.Object}}},
			{ID: "b", Type: token.TypeBehaviour, Name: "B", Portals: []token.Portal{{Name: "Enter", Type: "input", DataType: value.Object}}},
			{ID: "p1", Type: token.TypePortal, Name: "Start", PortalType: "input", DataType: value.Object},
			{ID: "p2", Type: token.TypePortal, Name: "Start", PortalType: "input", DataType: value.Object},
			{ID: "u", Type: "BehaviourWidget"},
			{ID: "s", Type: token.TypeShortcut, BehaviourID: "gone"},
			{ID: "l1", Type: token.TypeLink, StartBehaviour: "a", StartPortal: "Exit", EndBehaviour: "b", EndPortal: "Enter", FrameDelay: &delay},
			{ID: "l2", Type: token.TypeLink, StartBehaviour: "a", StartPortal: "Exit", EndBehaviour: "gone", EndPortal: "Enter"},
			{ID: "l3", Type: token.TypeLink, StartBehaviour: "a", StartPortal: "Renamed", EndBehaviour: "b", EndPortal: "Enter"},
			{ID: "l4", Type: token.TypeLink, StartBehaviour: "a", StartPortal: "Exit"},
		},
	}
	c := New("root", Env{Logger: quietLogger()})
	res, err := c.Open(context.Background(), tok, OpenOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got := len(res.Nodes); got != 3 {
		t.Errorf("len(Nodes) = %d, want 3", got)
	}
	if got := len(res.Links); got != 1 {
		t.Errorf("len(Links) = %d, want 1", got)
	}
	var got []string
	for _, d := range res.Diagnostics {
		got = append(got, d.Item+":"+string(d.Code))
	}
	want := []string{
		"p2:DUPLICATE_PROXY",
		"u:UNSUPPORTED",
		"s:UNRESOLVED_REFERENCE",
		"l2:UNRESOLVED_REFERENCE",
		"l3:UNRESOLVED_REFERENCE",
		"l4:UNRESOLVED_REFERENCE",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
	l, _ := c.Link(res.Links[0])
	if l.FrameDelay() != 3 {
		t.Errorf("FrameDelay() = %d, want 3", l.FrameDelay())
	}
	b, _ := c.Portal(PortalRef{res.Nodes[1], "Enter"})
	if got := len(b.Links()); got != 1 {
		t.Errorf("Enter has %d links, want 1", got)
	}
}

func TestOpen_UnknownDataTypeSkipsItem(t *testing.T) {
	raw := `{"containerId": "root", "items": [
		{"id": "a", "type": "Behaviour", "name": "A", "portals": [{"name": "Exit", "type": "output", "dataType": "object"}]},
		{"id": "b", "type": "Behaviour", "name": "B", "portals": [{"name": "Enter", "type": "input", "dataType": "tensor"}]},
		{"id": "p", "type": "BehaviourPortal", "name": "Start", "portalType": "input", "dataType": "tensor"},
		{"id": "l", "type": "Link", "startBehaviour": "a", "startPortal": "Exit", "endBehaviour": "b", "endPortal": "Enter"}
	]}`
	var tok token.CanvasToken
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		t.Fatalf("decode token: %v", err)
	}

	c := New("root", Env{Logger: quietLogger()})
	res, err := c.Open(context.Background(), &tok, OpenOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got := len(res.Nodes); got != 1 {
		t.Errorf("len(Nodes) = %d, want 1", got)
	}
	var got []string
	for _, d := range res.Diagnostics {
		got = append(got, d.Item+":"+string(d.Code))
	}
	want := []string{"b:INVALID_FORMAT", "p:INVALID_FORMAT", "l:UNRESOLVED_REFERENCE"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func TestOpen_MergeAndClear(t *testing.T) {
	c, _, _ := newTestCanvas(t)
	mustAdd(t, c, generic("X", out("Exit")))
	if err := c.SetPlugin("grid", true); err != nil {
		t.Fatal(err)
	}
	tok, _ := c.Build(context.Background())
	tok.Plugins = map[string]any{"grid": false}

	res, err := c.Open(context.Background(), tok, OpenOptions{Merge: true, OffsetX: 30, OffsetY: 40})
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 2 {
		t.Errorf("Len() after merge = %d, want 2", c.Len())
	}
	if got := c.Plugins()["grid"]; got != true {
		t.Errorf("plugin grid = %v after merge, want true", got)
	}
	n, _ := c.Node(res.Nodes[0])
	if x, y := n.Position(); x != 30 || y != 40 {
		t.Errorf("merged node at (%v, %v), want (30, 40)", x, y)
	}

	if _, err := c.Open(context.Background(), tok, OpenOptions{Clear: true}); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 1 {
		t.Errorf("Len() after clear = %d, want 1", c.Len())
	}
	if got := c.Plugins()["grid"]; got != false {
		t.Errorf("plugin grid = %v after open, want false", got)
	}
}

func TestOpen_ClearKeepsScriptRecords(t *testing.T) {
	c, _, scripts := newTestCanvas(t)
	ctx := context.Background()
	mustAdd(t, c, NodeSpec{Variant: ScriptRef{ShallowID: 5}, Name: "Logic", Portals: []PortalSpec{in("Run")}})
	tok, diags := c.Build(ctx)
	if len(diags) != 0 {
		t.Fatalf("Build() diagnostics = %v", diags)
	}

	res, err := c.Open(ctx, tok, OpenOptions{Clear: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(scripts.deleted) != 0 {
		t.Errorf("deleted script records = %v, want none", scripts.deleted)
	}
	if len(res.Nodes) != 1 {
		t.Fatalf("reopened %d nodes, want 1", len(res.Nodes))
	}
	n, _ := c.Node(res.Nodes[0])
	if got := n.Variant().(ScriptRef).ShallowID; got != 5 {
		t.Errorf("ShallowID = %d, want 5", got)
	}

	if err := c.RemoveNode(ctx, res.Nodes[0]); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{5}, scripts.deleted); diff != "" {
		t.Errorf("deleted script records mismatch (-want +got):\n%s", diff)
	}
}

func TestOpen_InstanceTargets(t *testing.T) {
	res := &fakeContainers{
		names:  map[string]string{"B": "B"},
		ifaces: map[string][]PortalSpec{"B": {{Name: "Speed", Kind: Parameter, DataType: value.Number}}},
		deps:   map[string][]string{"B": {"root"}},
	}
	tok := &token.CanvasToken{Items: []token.Item{
		{ID: "i1", Type: token.TypeInstance, ContainerID: "B"},
		{ID: "i2", Type: token.TypeInstance, ContainerID: "missing"},
	}}
	c := New("root", Env{Containers: res, Logger: quietLogger()})
	out, err := c.Open(context.Background(), tok, OpenOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Nodes) != 0 || len(out.Diagnostics) != 2 {
		t.Fatalf("Open() = %d nodes, %v; want 0 nodes, 2 diagnostics", len(out.Nodes), out.Diagnostics)
	}
	if out.Diagnostics[0].Code != errors.ErrCodeCyclicDependency || out.Diagnostics[1].Code != errors.ErrCodeNotFound {
		t.Errorf("diagnostics = %v, want CYCLIC_DEPENDENCY then NOT_FOUND", out.Diagnostics)
	}
}
