package value

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		typ     DataType
		raw     any
		want    any
		wantErr bool
	}{
		{"asset from float", Asset, 12.0, 12, false},
		{"asset nil", Asset, nil, 0, false},
		{"asset fractional", Asset, 1.5, nil, true},
		{"int from string", Int, "7", 7, false},
		{"asset list", AssetList, []any{1.0, 2.0}, []int{1, 2}, false},
		{"asset list empty", AssetList, []any{}, []int(nil), false},
		{"number from int", Number, 3, 3.0, false},
		{"bool", Bool, true, true, false},
		{"bool from string", Bool, "true", nil, true},
		{"file", File, "img/a.png", "img/a.png", false},
		{"color from map", Color, map[string]any{"color": "#FF0000", "opacity": 0.5}, ColorValue{Hex: "#ff0000", Opacity: 0.5}, false},
		{"color from string", Color, "#00ff00", ColorValue{Hex: "#00ff00", Opacity: 1}, false},
		{"color invalid", Color, "red", nil, true},
		{"object passthrough", Object, map[string]any{"a": 1.0}, map[string]any{"a": 1.0}, false},
		{"unknown type", DataType("matrix"), 1, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.typ, tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWire(t *testing.T) {
	opts := WireOptions{FileBaseURL: "https://cdn.example.com/p1/"}

	tests := []struct {
		name string
		typ  DataType
		v    any
		want any
	}{
		{"asset stays numeric", Asset, 4, 4},
		{"nil asset list", AssetList, []int(nil), []int{}},
		{"relative file", File, "/img/a.png", "https://cdn.example.com/p1/img/a.png"},
		{"absolute file", File, "https://x.org/a.png", "https://x.org/a.png"},
		{"empty file", HiddenFile, "", ""},
		{"color", Color, ColorValue{Hex: "#ff0000", Opacity: 0.25}, WireColor{Color: 0xff0000, Opacity: 0.25}},
		{"string", String, "hi", "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Wire(tt.typ, tt.v, opts)); diff != "" {
				t.Errorf("Wire() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRefs(t *testing.T) {
	if got := AssetRefs(Asset, 0); got != nil {
		t.Errorf("AssetRefs(unset) = %v, want nil", got)
	}
	if diff := cmp.Diff([]int{3, 5}, AssetRefs(AssetList, []int{3, 0, 5})); diff != "" {
		t.Errorf("AssetRefs(list) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{9}, GroupRefs(Group, 9)); diff != "" {
		t.Errorf("GroupRefs() mismatch (-want +got):\n%s", diff)
	}
	if got := GroupRefs(Int, 9); got != nil {
		t.Errorf("GroupRefs(int) = %v, want nil", got)
	}
}

func TestConverters(t *testing.T) {
	c := DefaultConverters()
	if !c.CanConvert(Int, Number) {
		t.Error("CanConvert(int, number) = false, want true")
	}
	if c.CanConvert(String, Int) {
		t.Error("CanConvert(string, int) = true, want false")
	}

	var empty Converters
	empty.Register(Bool, Int)
	if !empty.CanConvert(Bool, Int) {
		t.Error("zero-value registry should accept registrations")
	}

	var nilRegistry *Converters
	if nilRegistry.CanConvert(Int, Number) {
		t.Error("nil registry should convert nothing")
	}
}

func TestPropertyJSON(t *testing.T) {
	data := []byte(`[{"name":"speed","type":"number","value":2},{"name":"sprite","type":"asset","value":14,"category":"look"}]`)

	var ps Properties
	if err := json.Unmarshal(data, &ps); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	want := Properties{
		{Name: "speed", Type: Number, Value: 2.0},
		{Name: "sprite", Type: Asset, Value: 14, Category: "look"},
	}
	if diff := cmp.Diff(want, ps); diff != "" {
		t.Errorf("Properties mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{14}, ps.AssetRefs()); diff != "" {
		t.Errorf("AssetRefs() mismatch (-want +got):\n%s", diff)
	}

	if err := json.Unmarshal([]byte(`[{"name":"x","type":"matrix"}]`), &ps); err == nil {
		t.Error("Unmarshal() with unknown type should fail")
	}
}

func TestPropertiesSetRemove(t *testing.T) {
	var ps Properties
	if err := ps.Set(Property{Name: "hp", Type: Int, Value: 10.0}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := ps.Set(Property{Name: "hp", Type: Int, Value: 20}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if len(ps) != 1 {
		t.Fatalf("len = %d, want 1", len(ps))
	}
	if p, _ := ps.Get("hp"); p.Value != 20 {
		t.Errorf("hp = %v, want 20", p.Value)
	}
	if err := ps.Set(Property{Name: "alive", Type: Bool, Value: "yes"}); err == nil {
		t.Error("Set() with mismatched value should fail")
	}
	if !ps.Remove("hp") || ps.Remove("hp") {
		t.Error("Remove() should report true once")
	}
}

func TestDataTypeJSON(t *testing.T) {
	tests := []struct {
		in        string
		want      DataType
		wantValid bool
	}{
		{`"asset"`, Asset, true},
		{`"matrix"`, DataType("matrix"), false},
	}
	for _, tt := range tests {
		var got DataType
		if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", tt.in, err)
		}
		if got != tt.want || got.Valid() != tt.wantValid {
			t.Errorf("Unmarshal(%s) = %q (valid %v), want %q (valid %v)", tt.in, got, got.Valid(), tt.want, tt.wantValid)
		}
	}
	var dt DataType
	if err := json.Unmarshal([]byte(`3`), &dt); err == nil {
		t.Error("Unmarshal(3) should fail")
	}
}
