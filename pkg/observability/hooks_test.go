package observability

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/behave/pkg/token"
)

type recordingHooks struct {
	name   string
	events *[]string
	err    error
}

func (r recordingHooks) OnOpened(_ context.Context, id string, _ *token.CanvasToken) {
	*r.events = append(*r.events, r.name+":opened:"+id)
}

func (r recordingHooks) OnSaving(_ context.Context, id string, tok *token.CanvasToken) {
	*r.events = append(*r.events, r.name+":saving:"+id)
	if tok.Plugins == nil {
		tok.Plugins = map[string]any{}
	}
	tok.Plugins[r.name] = true
}

func (r recordingHooks) OnExporting(_ context.Context, exp *token.Export) error {
	*r.events = append(*r.events, r.name+":exporting:"+exp.Name)
	return r.err
}

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	l := NoopLifecycleHooks{}
	l.OnOpened(ctx, "c1", &token.CanvasToken{})
	l.OnSaving(ctx, "c1", &token.CanvasToken{})
	if err := l.OnExporting(ctx, &token.Export{}); err != nil {
		t.Errorf("OnExporting() = %v, want nil", err)
	}

	s := NoopStoreHooks{}
	s.OnLoad(ctx, "file", "containers/c1", true, time.Millisecond, nil)
	s.OnSave(ctx, "redis", "containers/c1", 512, time.Millisecond, nil)
}

func TestMulti(t *testing.T) {
	ctx := context.Background()
	var events []string
	boom := errors.New("boom")
	h := Multi(
		recordingHooks{name: "a", events: &events},
		nil,
		recordingHooks{name: "b", events: &events, err: boom},
		recordingHooks{name: "c", events: &events},
	)

	tok := &token.CanvasToken{}
	h.OnSaving(ctx, "c1", tok)
	if tok.Plugins["a"] != true || tok.Plugins["b"] != true {
		t.Errorf("plugins = %v, want annotations from a and b", tok.Plugins)
	}
	if err := h.OnExporting(ctx, &token.Export{Name: "game"}); !errors.Is(err, boom) {
		t.Errorf("OnExporting() = %v, want %v", err, boom)
	}

	want := []string{"a:saving:c1", "b:saving:c1", "c:saving:c1", "a:exporting:game", "b:exporting:game"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, events[i], want[i])
		}
	}
}

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(NoopLifecycleHooks); !ok {
		t.Error("OrNoop(nil) should return NoopLifecycleHooks")
	}
	h := Multi()
	if OrNoop(h) == nil {
		t.Error("OrNoop(h) returned nil")
	}
}

func TestLogHooks(t *testing.T) {
	ctx := context.Background()
	h := LogHooks(log.New(io.Discard))
	h.OnOpened(ctx, "c1", &token.CanvasToken{})
	h.OnSaving(ctx, "c1", &token.CanvasToken{})
	if err := h.OnExporting(ctx, &token.Export{}); err != nil {
		t.Errorf("OnExporting() = %v, want nil", err)
	}
	h.OnLoad(ctx, "memory", "k", false, 0, nil)
	h.OnSave(ctx, "memory", "k", 1, 0, nil)
}
