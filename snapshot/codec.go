package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-logtrail/registry"
	"github.com/shopspring/decimal"
)

// Snapshot maps field storage names to JSON-safe values.
type Snapshot map[string]any

// Object exposes field values by storage name.
type Object interface {
	FieldValue(name string) (any, error)
}

// Identifiable is implemented by entities referenced through relations.
type Identifiable interface {
	LogID() int64
}

// Trackable is implemented by entities that can be attached to a log call.
type Trackable interface {
	Object
	Identifiable
	LogName() string
}

// IDLister exposes the identifiers of a multi-valued relation.
type IDLister interface {
	LogIDs() []int64
}

// File is implemented by file references stored on an entity.
type File interface {
	Path() string
}

const (
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04:05"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// Encode reads every declared field of obj and normalizes it. Fields that
// cannot be read are skipped.
func Encode(obj Object, desc *registry.Descriptor) Snapshot {
	if obj == nil || desc == nil {
		return nil
	}
	out := make(Snapshot, len(desc.Fields))
	for _, field := range desc.Fields {
		value, err := obj.FieldValue(field.Name)
		if err != nil {
			continue
		}
		normalized, ok := normalize(field, value)
		if !ok {
			continue
		}
		out[field.Name] = normalized
	}
	return out
}

// Decode allocates an unsaved instance of desc and assigns the snapshot to
// it. The identifier is assigned first; keys unknown to desc are ignored.
// An empty snapshot or a nil descriptor yields nil.
func Decode(snap Snapshot, desc *registry.Descriptor) *Instance {
	if len(snap) == 0 || desc == nil {
		return nil
	}
	inst := NewInstance(desc)

	hasID := desc.HasIDField()
	if hasID {
		if value, ok := snap[desc.IDField]; ok {
			inst.Set(desc.IDField, value)
		}
	}

	keys := make([]string, 0, len(snap))
	for key := range snap {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if hasID && key == desc.IDField {
			continue
		}
		field, ok := desc.Field(key)
		if !ok || field.Kind == registry.KindManyToMany {
			continue
		}
		inst.Set(field.Column(), snap[key])
	}
	return inst
}

// Parse decodes stored JSON text. Empty text yields a nil snapshot. Numbers
// are kept as json.Number so identifiers survive untouched.
func Parse(text string) (Snapshot, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var snap Snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, err
	}
	if len(snap) == 0 {
		return nil, nil
	}
	return snap, nil
}

// Marshal encodes the snapshot as stored JSON text.
func Marshal(snap Snapshot) (string, error) {
	if len(snap) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func normalize(field registry.Field, value any) (any, bool) {
	switch field.Kind {
	case registry.KindForeignKey:
		return identifierOf(value), true
	case registry.KindManyToMany:
		return identifiers(value), true
	}

	switch v := value.(type) {
	case nil:
		return nil, true
	case time.Time:
		return formatTime(field.Kind, v), true
	case *time.Time:
		if v == nil {
			return nil, true
		}
		return formatTime(field.Kind, *v), true
	case []byte:
		if !utf8.Valid(v) {
			return nil, false
		}
		return string(v), true
	case decimal.Decimal:
		return formatDecimal(v, field.Places), true
	case *decimal.Decimal:
		if v == nil {
			return nil, true
		}
		return formatDecimal(*v, field.Places), true
	case File:
		return v.Path(), true
	}

	if field.Kind == registry.KindDecimal {
		if d, ok := toDecimal(value); ok {
			return formatDecimal(d, field.Places), true
		}
	}
	return value, true
}

func formatTime(kind registry.Kind, t time.Time) string {
	switch kind {
	case registry.KindDate:
		return t.Format(dateLayout)
	case registry.KindTime:
		return t.Format(timeLayout) + micros(t)
	}
	out := t.Format(dateTimeLayout) + micros(t)
	if t.Location() != time.UTC {
		out += t.Format("-07:00")
	}
	return out
}

func micros(t time.Time) string {
	if us := t.Nanosecond() / 1000; us != 0 {
		return fmt.Sprintf(".%06d", us)
	}
	return ""
}

func formatDecimal(d decimal.Decimal, places int32) string {
	if places > 0 {
		return d.StringFixed(places)
	}
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

func toDecimal(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case float32:
		return decimal.NewFromFloat32(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int32:
		return decimal.NewFromInt32(v), true
	case int64:
		return decimal.NewFromInt(v), true
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		return d, err == nil
	}
	return decimal.Decimal{}, false
}

func identifierOf(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case Identifiable:
		return v.LogID()
	}
	return value
}

func identifiers(value any) any {
	switch v := value.(type) {
	case nil:
		return []any{}
	case IDLister:
		ids := v.LogIDs()
		out := make([]any, 0, len(ids))
		for _, id := range ids {
			out = append(out, id)
		}
		return out
	case []int64:
		out := make([]any, 0, len(v))
		for _, id := range v {
			out = append(out, id)
		}
		return out
	case []int:
		out := make([]any, 0, len(v))
		for _, id := range v {
			out = append(out, int64(id))
		}
		return out
	case []string:
		out := make([]any, 0, len(v))
		for _, id := range v {
			out = append(out, id)
		}
		return out
	case []Identifiable:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, identifierOf(item))
		}
		return out
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, identifierOf(item))
		}
		return out
	}
	return value
}
