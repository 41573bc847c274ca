// Package value defines the typed values carried by portals and properties.
//
// Every portal and every property has a [DataType]. The data type decides
// the canonical Go shape of the value:
//
//	Asset, Group, Int          int
//	AssetList                  []int
//	Number                     float64
//	Bool                       bool
//	File, HiddenFile, String,
//	Enum, Options              string
//	Color                      Color
//	Object, Hidden             any (JSON-shaped)
//
// Values decoded from JSON arrive as float64, []any and map[string]any.
// [Normalize] converts them to the canonical shape so that values compare
// equal across a save/load cycle. [Wire] projects a canonical value to the
// shape the exported runtime consumes, and [AssetRefs] / [GroupRefs] extract
// the asset and group ids a value points at.
//
// # Converters
//
// A Product portal may feed a Parameter portal of a different data type when
// a converter exists for the pair. [Converters] is a small registry answering
// that question. [DefaultConverters] registers the numeric and textual
// conversions the runtime understands.
package value
