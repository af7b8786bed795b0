package registry

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind selects how a field value is normalized and displayed.
type Kind int

const (
	KindScalar Kind = iota
	KindDate
	KindDateTime
	KindTime
	KindBinary
	KindDecimal
	KindFile
	KindForeignKey
	KindManyToMany
)

var kindNames = map[Kind]string{
	KindScalar:     "scalar",
	KindDate:       "date",
	KindDateTime:   "datetime",
	KindTime:       "time",
	KindBinary:     "binary",
	KindDecimal:    "decimal",
	KindFile:       "file",
	KindForeignKey: "foreign_key",
	KindManyToMany: "many_to_many",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsRelation reports whether the field points at another entity type.
func (k Kind) IsRelation() bool {
	return k == KindForeignKey || k == KindManyToMany
}

// DefaultTargetKey is the related column used when Field.TargetKey is empty.
const DefaultTargetKey = "id"

// Field declares one attribute of a tracked type.
type Field struct {
	// Name is the storage name used as the snapshot key.
	Name string
	// Label is the human readable name used by display mappings.
	Label string
	Kind  Kind
	// Target names the related Descriptor for relation kinds.
	Target string
	// TargetKey is the related column matched against stored identifiers.
	TargetKey string
	// Places fixes the number of fractional digits for decimal fields. Zero
	// keeps the value's own precision.
	Places int32
}

// Column returns the attribute assigned on decode. Foreign keys are assigned
// through their underlying identifier attribute.
func (f Field) Column() string {
	if f.Kind == KindForeignKey {
		return f.Name + "_id"
	}
	return f.Name
}

// DisplayLabel returns Label or a humanized Name.
func (f Field) DisplayLabel() string {
	if strings.TrimSpace(f.Label) != "" {
		return f.Label
	}
	return Humanize(f.Name)
}

// RelationKey returns TargetKey or DefaultTargetKey.
func (f Field) RelationKey() string {
	if strings.TrimSpace(f.TargetKey) != "" {
		return f.TargetKey
	}
	return DefaultTargetKey
}

// Descriptor is the static metadata of an entity type.
type Descriptor struct {
	// Name identifies the type inside the registry and as a relation target.
	Name string
	// LogName marks the type as tracked; it is the object name stored in
	// log records.
	LogName string
	// Label is the human readable type name.
	Label string
	// Table is the backing table used to resolve relations that target this
	// type.
	Table string
	// IDField names the identifier field; empty means the type has none.
	IDField string
	// DisplayColumn is read from a resolved row when Display is nil.
	DisplayColumn string
	// Display renders a resolved row as the entity display string.
	Display func(row map[string]any) string
	Fields  []Field
}

// Tracked reports whether instances of the type are logged.
func (d *Descriptor) Tracked() bool {
	return d != nil && strings.TrimSpace(d.LogName) != ""
}

// DisplayLabel returns Label or a humanized Name.
func (d *Descriptor) DisplayLabel() string {
	if d == nil {
		return ""
	}
	if strings.TrimSpace(d.Label) != "" {
		return d.Label
	}
	return Humanize(d.Name)
}

// Field returns the declared field with the given storage name.
func (d *Descriptor) Field(name string) (Field, bool) {
	if d == nil {
		return Field{}, false
	}
	for _, field := range d.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// HasIDField reports whether the type declares an identifier field.
func (d *Descriptor) HasIDField() bool {
	if d == nil || d.IDField == "" {
		return false
	}
	_, ok := d.Field(d.IDField)
	return ok
}

// ConcreteFields returns the declared fields in order, many-to-many excluded.
func (d *Descriptor) ConcreteFields() []Field {
	if d == nil {
		return nil
	}
	out := make([]Field, 0, len(d.Fields))
	for _, field := range d.Fields {
		if field.Kind != KindManyToMany {
			out = append(out, field)
		}
	}
	return out
}

// ManyToManyFields returns the multi-valued relation fields in order.
func (d *Descriptor) ManyToManyFields() []Field {
	if d == nil {
		return nil
	}
	var out []Field
	for _, field := range d.Fields {
		if field.Kind == KindManyToMany {
			out = append(out, field)
		}
	}
	return out
}

// DisplayString renders a resolved row of this type.
func (d *Descriptor) DisplayString(row map[string]any) string {
	if d.Display != nil {
		return d.Display(row)
	}
	if d.DisplayColumn != "" {
		if value, ok := row[d.DisplayColumn]; ok && value != nil {
			return fmt.Sprint(stringish(value))
		}
	}
	key := d.IDField
	if key == "" {
		key = DefaultTargetKey
	}
	return fmt.Sprintf("%s object (%v)", d.DisplayLabel(), stringish(row[key]))
}

// sqlite returns TEXT columns as []byte when scanned into maps.
func stringish(value any) any {
	if raw, ok := value.([]byte); ok {
		return string(raw)
	}
	return value
}

// Humanize turns a storage name into a label: "created_at" becomes
// "Created at".
func Humanize(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
	if name == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}
