package value

import (
	"slices"
	"strconv"
	"strings"
)

// WireOptions controls the projection of values into the export format.
type WireOptions struct {
	// FileBaseURL is prepended to relative File and HiddenFile paths.
	FileBaseURL string
}

// WireColor is the exported form of a color: a packed 0xRRGGBB integer plus
// opacity.
type WireColor struct {
	Color   int     `json:"color"`
	Opacity float64 `json:"opacity"`
}

// Wire projects a canonical value of type t into the shape the runtime
// consumes. Asset and group references stay numeric ids, files become
// canonical URLs, colors become [WireColor].
func Wire(t DataType, v any, opts WireOptions) any {
	switch t {
	case AssetList:
		ids, _ := v.([]int)
		if ids == nil {
			return []int{}
		}
		return slices.Clone(ids)
	case File, HiddenFile:
		s, _ := v.(string)
		return FileURL(s, opts.FileBaseURL)
	case Color:
		c, _ := v.(ColorValue)
		packed, _ := strconv.ParseInt(strings.TrimPrefix(c.Hex, "#"), 16, 64)
		return WireColor{Color: int(packed), Opacity: c.Opacity}
	case Object, Hidden:
		return Clone(v)
	default:
		return v
	}
}

// FileURL returns the canonical URL of a stored file path.
// Absolute http(s) URLs are returned unchanged; empty paths stay empty.
func FileURL(path, base string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || base == "" {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// AssetRefs returns the asset ids a value of type t references.
// Zero ids mean "unset" and are skipped.
func AssetRefs(t DataType, v any) []int {
	switch t {
	case Asset:
		if id, ok := v.(int); ok && id > 0 {
			return []int{id}
		}
	case AssetList:
		ids, _ := v.([]int)
		var out []int
		for _, id := range ids {
			if id > 0 {
				out = append(out, id)
			}
		}
		return out
	}
	return nil
}

// GroupRefs returns the group ids a value of type t references.
func GroupRefs(t DataType, v any) []int {
	if t != Group {
		return nil
	}
	if id, ok := v.(int); ok && id > 0 {
		return []int{id}
	}
	return nil
}
