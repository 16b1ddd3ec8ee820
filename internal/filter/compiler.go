// Package filter compiles the typed per-field filters of a collection into a
// predicate over its items. The compiler is a pure function over the declared
// field definitions and the submitted filter values; it knows nothing about
// the database.
package filter

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"collecthub-backend/internal/models"
)

// Request is one submitted filter, positionally matching a declared field.
// Filt stays raw because its shape depends on the field type: {min,max} for
// numbers, {from,to} for dates, a plain value otherwise. A missing key is a
// nil RawMessage, which is how the checkbox presence rule is told apart from
// an explicit empty value.
type Request struct {
	Name string          `json:"name"`
	Type string          `json:"type"`
	Filt json.RawMessage `json:"filt,omitempty"`
}

// Predicate reports whether an item passes the compiled filters.
type Predicate func(models.Item) bool

// Compile builds the conjunction of all per-field predicates. The collection's
// declared type wins over the submitted one when the names match; unknown
// field kinds contribute nothing.
func Compile(fields models.FieldDefs, reqs []Request) Predicate {
	declared := make(map[string]string, len(fields))
	for _, d := range fields {
		declared[d.Name] = d.Type
	}

	var preds []Predicate
	for _, r := range reqs {
		kind := r.Type
		if t, ok := declared[r.Name]; ok && t != "" {
			kind = t
		}
		var p Predicate
		switch kind {
		case "number":
			p = numberPredicate(r)
		case "text", "string":
			p = textPredicate(r)
		case "date":
			p = datePredicate(r)
		case "checkbox":
			p = checkboxPredicate(r)
		case "options":
			p = optionsPredicate(r)
		case "name":
			p = namePredicate(r)
		default:
			// unknown kinds are silently ignored
		}
		if p != nil {
			preds = append(preds, p)
		}
	}

	return func(it models.Item) bool {
		for _, p := range preds {
			if !p(it) {
				return false
			}
		}
		return true
	}
}

// Matching applies the predicate eagerly and returns the surviving items.
func Matching(items []models.Item, p Predicate) []models.Item {
	out := make([]models.Item, 0, len(items))
	for _, it := range items {
		if p(it) {
			out = append(out, it)
		}
	}
	return out
}

const PageSize = 20

// Pages is ceil(n/PageSize) with a minimum of one page.
func Pages(n int) int {
	pages := (n + PageSize - 1) / PageSize
	if pages == 0 {
		return 1
	}
	return pages
}

// Paginate returns the 1-based page slice; out-of-range pages are empty.
func Paginate(items []models.Item, page int) []models.Item {
	if page < 1 {
		page = 1
	}
	from := (page - 1) * PageSize
	if from >= len(items) {
		return []models.Item{}
	}
	to := from + PageSize
	if to > len(items) {
		to = len(items)
	}
	return items[from:to]
}

func numberPredicate(r Request) Predicate {
	min, hasMin := rangeBound(r.Filt, "min")
	max, hasMax := rangeBound(r.Filt, "max")
	if !hasMin && !hasMax {
		return nil
	}
	minV, minOK := toFloat(min)
	maxV, maxOK := toFloat(max)
	key := models.AttrKey(r.Name)
	return func(it models.Item) bool {
		v, ok := toFloat(it.Attrs[key])
		if !ok {
			// coercion failure excludes the row
			return false
		}
		if hasMin && minOK && v < minV {
			return false
		}
		if hasMax && maxOK && v > maxV {
			return false
		}
		return true
	}
}

func datePredicate(r Request) Predicate {
	from, hasFrom := rangeBound(r.Filt, "from")
	to, hasTo := rangeBound(r.Filt, "to")
	if !hasFrom && !hasTo {
		return nil
	}
	fromT, fromOK := toDate(from)
	toT, toOK := toDate(to)
	key := models.AttrKey(r.Name)
	return func(it models.Item) bool {
		v, ok := toDate(it.Attrs[key])
		if !ok {
			return false
		}
		if hasFrom && fromOK && v.Before(fromT) {
			return false
		}
		if hasTo && toOK && v.After(toT) {
			return false
		}
		return true
	}
}

func textPredicate(r Request) Predicate {
	filt := scalar(r.Filt)
	if filt == "" {
		return nil
	}
	match := caseInsensitive(filt)
	key := models.AttrKey(r.Name)
	return func(it models.Item) bool {
		return match(stringify(it.Attrs[key]))
	}
}

func namePredicate(r Request) Predicate {
	filt := scalar(r.Filt)
	if filt == "" {
		return nil
	}
	match := caseInsensitive(filt)
	return func(it models.Item) bool {
		return match(it.Name)
	}
}

func checkboxPredicate(r Request) Predicate {
	// the filter applies only when the key is explicitly present and non-empty
	if r.Filt == nil {
		return nil
	}
	want := scalar(r.Filt)
	if want == "" {
		return nil
	}
	key := models.AttrKey(r.Name)
	return func(it models.Item) bool {
		return stringify(it.Attrs[key]) == want
	}
}

func optionsPredicate(r Request) Predicate {
	want := scalar(r.Filt)
	if want == "" {
		return nil
	}
	key := models.AttrKey(r.Name)
	return func(it models.Item) bool {
		return stringify(it.Attrs[key]) == want
	}
}

// caseInsensitive treats the filter as a regex when it compiles, otherwise as
// a plain substring.
func caseInsensitive(filt string) func(string) bool {
	if re, err := regexp.Compile("(?i)" + filt); err == nil {
		return re.MatchString
	}
	lower := strings.ToLower(filt)
	return func(s string) bool {
		return strings.Contains(strings.ToLower(s), lower)
	}
}

// rangeBound pulls one key of an object-shaped filt ({min,max} or {from,to}).
func rangeBound(raw json.RawMessage, key string) (interface{}, bool) {
	if raw == nil {
		return nil, false
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	v, ok := obj[key]
	if !ok || stringify(v) == "" {
		return nil, false
	}
	return v, true
}

// scalar decodes a plain-valued filt into its string form.
func scalar(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return stringify(v)
}

func stringify(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02",
	"2006-01-02 15:04:05",
}

func toDate(v interface{}) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		if t, isTime := v.(time.Time); isTime {
			return t, true
		}
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
