package value

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// ColorValue is the canonical value of a Color portal or property.
// Hex is "#rrggbb"; Opacity is in [0, 1].
type ColorValue struct {
	Hex     string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

// Default returns the zero value of type t in its canonical shape.
func Default(t DataType) any {
	switch t {
	case Asset, Group, Int:
		return 0
	case AssetList:
		return []int(nil)
	case Number:
		return 0.0
	case Bool:
		return false
	case File, HiddenFile, String, Enum, Options:
		return ""
	case Color:
		return ColorValue{Hex: "#ffffff", Opacity: 1}
	default:
		return nil
	}
}

// Normalize converts raw into the canonical Go shape for type t.
// A nil raw value yields [Default]. Values that cannot represent t are
// rejected with an error.
func Normalize(t DataType, raw any) (any, error) {
	if raw == nil {
		return Default(t), nil
	}
	switch t {
	case Asset, Group, Int:
		return toInt(raw)
	case AssetList:
		return toIntList(raw)
	case Number:
		return toFloat(raw)
	case Bool:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("want bool, got %T", raw)
		}
		return b, nil
	case File, HiddenFile, String, Enum, Options:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("want string, got %T", raw)
		}
		return s, nil
	case Color:
		return toColor(raw)
	case Object, Hidden:
		return raw, nil
	default:
		return nil, fmt.Errorf("unknown data type %q", t)
	}
}

// Clone returns a copy of a canonical value that shares no mutable state.
func Clone(v any) any {
	switch x := v.(type) {
	case []int:
		return slices.Clone(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Clone(e)
		}
		return out
	case map[string]any:
		out := maps.Clone(x)
		for k, e := range out {
			out[k] = Clone(e)
		}
		return out
	default:
		return v
	}
}

func toInt(raw any) (int, error) {
	switch x := raw.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case int32:
		return int(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("want integer, got %v", x)
		}
		return int(x), nil
	case json.Number:
		n, err := x.Int64()
		return int(n), err
	case string:
		if x == "" {
			return 0, nil
		}
		return strconv.Atoi(x)
	default:
		return 0, fmt.Errorf("want integer, got %T", raw)
	}
}

func toIntList(raw any) ([]int, error) {
	switch x := raw.(type) {
	case []int:
		if len(x) == 0 {
			return nil, nil
		}
		return slices.Clone(x), nil
	case []any:
		if len(x) == 0 {
			return nil, nil
		}
		out := make([]int, 0, len(x))
		for _, e := range x {
			n, err := toInt(e)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("want integer list, got %T", raw)
	}
}

func toFloat(raw any) (float64, error) {
	switch x := raw.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	default:
		return 0, fmt.Errorf("want number, got %T", raw)
	}
}

func toColor(raw any) (ColorValue, error) {
	switch x := raw.(type) {
	case ColorValue:
		return x, validHex(x.Hex)
	case string:
		return ColorValue{Hex: strings.ToLower(x), Opacity: 1}, validHex(x)
	case map[string]any:
		c := ColorValue{Opacity: 1}
		if s, ok := x["color"].(string); ok {
			c.Hex = strings.ToLower(s)
		}
		if o, ok := x["opacity"]; ok {
			f, err := toFloat(o)
			if err != nil {
				return ColorValue{}, fmt.Errorf("opacity: %w", err)
			}
			c.Opacity = f
		}
		return c, validHex(c.Hex)
	default:
		return ColorValue{}, fmt.Errorf("want color, got %T", raw)
	}
}

func validHex(s string) error {
	if len(s) != 7 || s[0] != '#' {
		return fmt.Errorf("invalid color %q", s)
	}
	if _, err := strconv.ParseUint(s[1:], 16, 32); err != nil {
		return fmt.Errorf("invalid color %q", s)
	}
	return nil
}
