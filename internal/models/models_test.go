package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldDefsUniqueNames(t *testing.T) {
	tests := []struct {
		name   string
		fields FieldDefs
		want   bool
	}{
		{"empty", FieldDefs{}, true},
		{"distinct", FieldDefs{{Name: "speed", Type: "number"}, {Name: "year", Type: "date"}}, true},
		{"duplicate", FieldDefs{{Name: "speed", Type: "number"}, {Name: "speed", Type: "text"}}, false},
		{"duplicate across types", FieldDefs{{Name: "a", Type: "text"}, {Name: "b", Type: "text"}, {Name: "a", Type: "checkbox"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fields.UniqueNames())
		})
	}
}

func TestFieldDefsMissingAttrs(t *testing.T) {
	fields := FieldDefs{{Name: "speed", Type: "number"}, {Name: "released", Type: "date"}}

	t.Run("all present", func(t *testing.T) {
		attrs := map[string]interface{}{"__speed": "300", "__released": ""}
		assert.Empty(t, fields.MissingAttrs(attrs))
	})

	t.Run("empty string still counts as present", func(t *testing.T) {
		attrs := map[string]interface{}{"__speed": "", "__released": ""}
		assert.Empty(t, fields.MissingAttrs(attrs))
	})

	t.Run("collection edited after submission", func(t *testing.T) {
		attrs := map[string]interface{}{"__speed": "300"}
		assert.Equal(t, []string{"released"}, fields.MissingAttrs(attrs))
	})
}

func TestFieldDefsPickAttrs(t *testing.T) {
	fields := FieldDefs{{Name: "speed", Type: "number"}}
	attrs := map[string]interface{}{"__speed": "300", "__stale": "x", "name": "y"}
	picked := fields.PickAttrs(attrs)
	require.Len(t, picked, 1)
	assert.Equal(t, "300", picked["__speed"])
}

func TestFieldDefsScanValue(t *testing.T) {
	fields := FieldDefs{{Name: "speed", Type: "number"}, {Name: "note", Type: "text"}}
	v, err := fields.Value()
	require.NoError(t, err)

	var got FieldDefs
	require.NoError(t, got.Scan(v))
	assert.Equal(t, fields, got)

	var fromBytes FieldDefs
	require.NoError(t, fromBytes.Scan([]byte(`[{"name":"a","type":"date"}]`)))
	assert.Equal(t, FieldDefs{{Name: "a", Type: "date"}}, fromBytes)
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("user@example.com"))
	assert.False(t, ValidEmail("user@example"))
	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail("a b@example.com"))
}

func TestSafeDescription(t *testing.T) {
	assert.True(t, SafeDescription("a catalog of vinyl records"))
	assert.False(t, SafeDescription("nice <script>alert(1)</script>"))
	assert.False(t, SafeDescription("<SCRIPT>"))
}

func TestThemeAndLangEnums(t *testing.T) {
	assert.True(t, ValidTheme("dark"))
	assert.True(t, ValidTheme("light"))
	assert.False(t, ValidTheme("solarized"))
	assert.True(t, ValidLang("en"))
	assert.True(t, ValidLang("ru"))
	assert.False(t, ValidLang("de"))
}
