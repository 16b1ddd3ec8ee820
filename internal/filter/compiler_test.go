package filter

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"collecthub-backend/internal/models"
)

func item(name string, attrs map[string]interface{}) models.Item {
	return models.Item{Name: name, Attrs: datatypes.JSONMap(attrs)}
}

func raw(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestNumberFilter(t *testing.T) {
	fields := models.FieldDefs{{Name: "speed", Type: "number"}}
	items := []models.Item{
		item("slow", map[string]interface{}{"__speed": "80"}),
		item("fast", map[string]interface{}{"__speed": "300"}),
		item("numeric", map[string]interface{}{"__speed": float64(150)}),
		item("garbage", map[string]interface{}{"__speed": "abc"}),
		item("empty", map[string]interface{}{"__speed": ""}),
	}

	t.Run("range excludes non-coercible values", func(t *testing.T) {
		p := Compile(fields, []Request{{Name: "speed", Type: "number", Filt: raw(t, map[string]string{"min": "100"})}})
		got := Matching(items, p)
		require.Len(t, got, 2)
		assert.Equal(t, "fast", got[0].Name)
		assert.Equal(t, "numeric", got[1].Name)
	})

	t.Run("min and max inclusive", func(t *testing.T) {
		p := Compile(fields, []Request{{Name: "speed", Type: "number", Filt: raw(t, map[string]string{"min": "80", "max": "150"})}})
		got := Matching(items, p)
		require.Len(t, got, 2)
		assert.Equal(t, "slow", got[0].Name)
		assert.Equal(t, "numeric", got[1].Name)
	})

	t.Run("no bounds is a no-op", func(t *testing.T) {
		p := Compile(fields, []Request{{Name: "speed", Type: "number", Filt: raw(t, map[string]string{})}})
		assert.Len(t, Matching(items, p), len(items))
	})

	t.Run("absent filt is a no-op", func(t *testing.T) {
		p := Compile(fields, []Request{{Name: "speed", Type: "number"}})
		assert.Len(t, Matching(items, p), len(items))
	})
}

func TestDateFilter(t *testing.T) {
	fields := models.FieldDefs{{Name: "released", Type: "date"}}
	items := []models.Item{
		item("before", map[string]interface{}{"__released": "2019-06-01"}),
		item("start", map[string]interface{}{"__released": "2020-01-01"}),
		item("mid", map[string]interface{}{"__released": "2020-07-15"}),
		item("end", map[string]interface{}{"__released": "2020-12-31"}),
		item("after", map[string]interface{}{"__released": "2021-01-02"}),
		item("bad", map[string]interface{}{"__released": "not a date"}),
	}

	p := Compile(fields, []Request{{
		Name: "released", Type: "date",
		Filt: raw(t, map[string]string{"from": "2020-01-01", "to": "2020-12-31"}),
	}})
	got := Matching(items, p)
	require.Len(t, got, 3)
	assert.Equal(t, "start", got[0].Name)
	assert.Equal(t, "mid", got[1].Name)
	assert.Equal(t, "end", got[2].Name)
}

func TestCheckboxFilter(t *testing.T) {
	fields := models.FieldDefs{{Name: "flag", Type: "checkbox"}}
	items := []models.Item{
		item("on", map[string]interface{}{"__flag": true}),
		item("off", map[string]interface{}{"__flag": false}),
		item("missing", map[string]interface{}{}),
	}

	t.Run("absent key passes everything", func(t *testing.T) {
		p := Compile(fields, []Request{{Name: "flag", Type: "checkbox"}})
		assert.Len(t, Matching(items, p), 3)
	})

	t.Run("explicit empty string is a no-op", func(t *testing.T) {
		p := Compile(fields, []Request{{Name: "flag", Type: "checkbox", Filt: raw(t, "")}})
		assert.Len(t, Matching(items, p), 3)
	})

	t.Run("true matches only set flags", func(t *testing.T) {
		p := Compile(fields, []Request{{Name: "flag", Type: "checkbox", Filt: raw(t, "true")}})
		got := Matching(items, p)
		require.Len(t, got, 1)
		assert.Equal(t, "on", got[0].Name)
	})

	t.Run("false matches explicit false", func(t *testing.T) {
		p := Compile(fields, []Request{{Name: "flag", Type: "checkbox", Filt: raw(t, "false")}})
		got := Matching(items, p)
		require.Len(t, got, 1)
		assert.Equal(t, "off", got[0].Name)
	})
}

func TestTextAndNameFilters(t *testing.T) {
	fields := models.FieldDefs{{Name: "note", Type: "text"}}
	items := []models.Item{
		item("Red Vinyl", map[string]interface{}{"__note": "First Pressing"}),
		item("blue vinyl", map[string]interface{}{"__note": "reissue"}),
	}

	t.Run("text substring is case-insensitive", func(t *testing.T) {
		p := Compile(fields, []Request{{Name: "note", Type: "text", Filt: raw(t, "pressing")}})
		got := Matching(items, p)
		require.Len(t, got, 1)
		assert.Equal(t, "Red Vinyl", got[0].Name)
	})

	t.Run("name matches the built-in item name", func(t *testing.T) {
		p := Compile(fields, []Request{{Name: "name", Type: "name", Filt: raw(t, "VINYL")}})
		assert.Len(t, Matching(items, p), 2)
	})

	t.Run("empty filt is a no-op", func(t *testing.T) {
		p := Compile(fields, []Request{{Name: "note", Type: "text", Filt: raw(t, "")}})
		assert.Len(t, Matching(items, p), 2)
	})
}

func TestOptionsFilter(t *testing.T) {
	fields := models.FieldDefs{{Name: "format", Type: "options"}}
	items := []models.Item{
		item("a", map[string]interface{}{"__format": "LP"}),
		item("b", map[string]interface{}{"__format": "EP"}),
	}
	p := Compile(fields, []Request{{Name: "format", Type: "options", Filt: raw(t, "LP")}})
	got := Matching(items, p)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Name)
}

func TestUnknownFieldKindIsIgnored(t *testing.T) {
	fields := models.FieldDefs{{Name: "weird", Type: "hologram"}}
	items := []models.Item{item("a", map[string]interface{}{"__weird": "x"})}
	p := Compile(fields, []Request{{Name: "weird", Type: "hologram", Filt: raw(t, "y")}})
	assert.Len(t, Matching(items, p), 1)
}

func TestDeclaredTypeWinsOverSubmitted(t *testing.T) {
	// The collection says "speed" is a number; a submitted "text" type must
	// not turn the range filter into a substring match.
	fields := models.FieldDefs{{Name: "speed", Type: "number"}}
	items := []models.Item{
		item("ok", map[string]interface{}{"__speed": "200"}),
		item("bad", map[string]interface{}{"__speed": "abc"}),
	}
	p := Compile(fields, []Request{{Name: "speed", Type: "text", Filt: raw(t, map[string]string{"min": "100"})}})
	got := Matching(items, p)
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].Name)
}

func TestConjunction(t *testing.T) {
	fields := models.FieldDefs{
		{Name: "speed", Type: "number"},
		{Name: "format", Type: "options"},
	}
	items := []models.Item{
		item("match", map[string]interface{}{"__speed": "200", "__format": "LP"}),
		item("wrong format", map[string]interface{}{"__speed": "200", "__format": "EP"}),
		item("too slow", map[string]interface{}{"__speed": "10", "__format": "LP"}),
	}
	p := Compile(fields, []Request{
		{Name: "speed", Type: "number", Filt: raw(t, map[string]string{"min": "100"})},
		{Name: "format", Type: "options", Filt: raw(t, "LP")},
	})
	got := Matching(items, p)
	require.Len(t, got, 1)
	assert.Equal(t, "match", got[0].Name)
}

func TestPagination(t *testing.T) {
	var items []models.Item
	for i := 0; i < 45; i++ {
		items = append(items, item(fmt.Sprintf("i%02d", i), nil))
	}

	assert.Equal(t, 3, Pages(45))
	assert.Equal(t, 1, Pages(0))
	assert.Equal(t, 1, Pages(20))
	assert.Equal(t, 2, Pages(21))

	assert.Len(t, Paginate(items, 1), 20)
	assert.Len(t, Paginate(items, 2), 20)
	assert.Len(t, Paginate(items, 3), 5)
	assert.Empty(t, Paginate(items, 4))
	assert.Empty(t, Paginate(nil, 1))
	assert.Equal(t, "i20", Paginate(items, 2)[0].Name)
}
