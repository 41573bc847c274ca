package value

import (
	"encoding/json"
	"fmt"
)

// DataType tags the shape of a portal or property value.
type DataType string

const (
	Asset      DataType = "asset"
	AssetList  DataType = "asset_list"
	Number     DataType = "number"
	Group      DataType = "group"
	File       DataType = "file"
	String     DataType = "string"
	Object     DataType = "object"
	Bool       DataType = "bool"
	Int        DataType = "int"
	Color      DataType = "color"
	Enum       DataType = "enum"
	Hidden     DataType = "hidden"
	HiddenFile DataType = "hidden_file"
	Options    DataType = "options"
)

var dataTypes = map[DataType]bool{
	Asset: true, AssetList: true, Number: true, Group: true, File: true,
	String: true, Object: true, Bool: true, Int: true, Color: true,
	Enum: true, Hidden: true, HiddenFile: true, Options: true,
}

// AllDataTypes returns every known data type in declaration order.
func AllDataTypes() []DataType {
	return []DataType{
		Asset, AssetList, Number, Group, File, String, Object,
		Bool, Int, Color, Enum, Hidden, HiddenFile, Options,
	}
}

// Valid reports whether t is one of the known data types.
func (t DataType) Valid() bool { return dataTypes[t] }

// IsReference reports whether values of this type point at assets or groups.
func (t DataType) IsReference() bool {
	return t == Asset || t == AssetList || t == Group
}

// ParseDataType returns the DataType named s.
func ParseDataType(s string) (DataType, error) {
	t := DataType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown data type %q", s)
	}
	return t, nil
}

// UnmarshalJSON accepts any name so that one unknown type does not fail a
// whole token; callers check [DataType.Valid] where the type is used.
func (t *DataType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = DataType(s)
	return nil
}
