package display

import (
	"bytes"
	"encoding/json"
)

// Entry is one label/value pair of a Mapping.
type Entry struct {
	Label string
	Value string
}

// Mapping is an ordered, human readable rendering of a snapshot. A nil
// Mapping means no data was available; an empty one means nothing to show.
type Mapping []Entry

// Get returns the value stored under label.
func (m Mapping) Get(label string) (string, bool) {
	for _, entry := range m {
		if entry.Label == label {
			return entry.Value, true
		}
	}
	return "", false
}

// Labels returns the labels in order.
func (m Mapping) Labels() []string {
	out := make([]string, 0, len(m))
	for _, entry := range m {
		out = append(out, entry.Label)
	}
	return out
}

// Len returns the number of entries.
func (m Mapping) Len() int { return len(m) }

// Equal compares entries in order.
func (m Mapping) Equal(other Mapping) bool {
	if len(m) != len(other) {
		return false
	}
	for i := range m {
		if m[i] != other[i] {
			return false
		}
	}
	return true
}

// MarshalJSON renders the mapping as a JSON object keeping entry order.
func (m Mapping) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Label)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(entry.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
