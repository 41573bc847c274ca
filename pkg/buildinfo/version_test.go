package buildinfo

import (
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGet(t *testing.T) {
	oldV, oldC, oldD := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })

	Version, Commit, Date = "v1.2.3", "abc123", "2026-01-02"
	want := Info{Version: "v1.2.3", Commit: "abc123", Date: "2026-01-02", GoVersion: runtime.Version()}
	if diff := cmp.Diff(want, Get()); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}
	if got := String(); !strings.HasPrefix(got, "version: v1.2.3\ncommit: abc123\nbuilt: 2026-01-02") {
		t.Errorf("String() = %q", got)
	}
	if got, want := Template(), "{{.Name}} version v1.2.3\ncommit: abc123\nbuilt: 2026-01-02\n"; got != want {
		t.Errorf("Template() = %q, want %q", got, want)
	}
}
