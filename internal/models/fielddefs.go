package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// FieldDef declares one typed item attribute of a collection. Type is one of
// number, text, date, checkbox, options, name ("string" is accepted as a
// synonym of text).
type FieldDef struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// FieldDefs is the ordered field-definition list of a collection, stored as
// a single jsonb value.
type FieldDefs []FieldDef

func (f FieldDefs) Value() (driver.Value, error) {
	if f == nil {
		return "[]", nil
	}
	b, err := json.Marshal(f)
	return string(b), err
}

func (f *FieldDefs) Scan(value interface{}) error {
	if value == nil {
		*f = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for FieldDefs")
	}
	return json.Unmarshal(data, f)
}

// AttrKey returns the item attribute key for a declared field name.
func AttrKey(name string) string {
	return "__" + name
}

// UniqueNames reports whether all field names are pairwise distinct within
// the collection.
func (f FieldDefs) UniqueNames() bool {
	seen := make(map[string]bool, len(f))
	for _, d := range f {
		if seen[d.Name] {
			return false
		}
		seen[d.Name] = true
	}
	return true
}

// MissingAttrs returns the declared field names that have no corresponding
// "__<name>" key in attrs. An empty-string value counts as present; the
// collection may have been edited after the submission was prepared.
func (f FieldDefs) MissingAttrs(attrs map[string]interface{}) []string {
	var missing []string
	for _, d := range f {
		if _, ok := attrs[AttrKey(d.Name)]; !ok {
			missing = append(missing, d.Name)
		}
	}
	return missing
}

// PickAttrs keeps only the attributes named by the current field definitions,
// dropping keys for fields the collection no longer declares.
func (f FieldDefs) PickAttrs(attrs map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(f))
	for _, d := range f {
		key := AttrKey(d.Name)
		if v, ok := attrs[key]; ok {
			out[key] = v
		}
	}
	return out
}
