package snapshot

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"

	"github.com/goliatone/go-logtrail/registry"
)

var (
	// ErrUnknownField is returned by Instance.FieldValue for undeclared fields.
	ErrUnknownField = errors.New("go-logtrail: unknown field")
	// ErrUnsetField is returned by Instance.FieldValue for fields never assigned.
	ErrUnsetField = errors.New("go-logtrail: field not set")
)

// Instance is an unsaved, in-memory skeleton of a tracked type rebuilt from a
// snapshot. Values are kept exactly as assigned; nothing is re-parsed.
type Instance struct {
	Type   *registry.Descriptor
	values map[string]any
	order  []string
}

// NewInstance allocates an empty instance of desc.
func NewInstance(desc *registry.Descriptor) *Instance {
	return &Instance{
		Type:   desc,
		values: make(map[string]any),
	}
}

// Set assigns an attribute. Foreign keys are addressed by their column
// ("customer_id").
func (i *Instance) Set(attr string, value any) {
	if _, exists := i.values[attr]; !exists {
		i.order = append(i.order, attr)
	}
	i.values[attr] = value
}

// Get returns the value assigned to attr.
func (i *Instance) Get(attr string) (any, bool) {
	value, ok := i.values[attr]
	return value, ok
}

// Attrs lists the assigned attributes in assignment order.
func (i *Instance) Attrs() []string {
	out := make([]string, len(i.order))
	copy(out, i.order)
	return out
}

// ID returns the identifier value when the type declares one and it was set.
func (i *Instance) ID() (any, bool) {
	if i == nil || i.Type == nil || i.Type.IDField == "" {
		return nil, false
	}
	return i.Get(i.Type.IDField)
}

// Saved is always false; instances never reach the store.
func (i *Instance) Saved() bool { return false }

// LogName returns the log-name of the instance type.
func (i *Instance) LogName() string {
	if i == nil || i.Type == nil {
		return ""
	}
	return i.Type.LogName
}

// FieldValue implements Object so skeletons can be encoded again.
func (i *Instance) FieldValue(name string) (any, error) {
	field, ok := i.Type.Field(name)
	if !ok {
		return nil, ErrUnknownField
	}
	value, ok := i.values[field.Column()]
	if !ok {
		return nil, ErrUnsetField
	}
	return value, nil
}

// Int64 converts identifier values as found in snapshots.
func Int64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}
