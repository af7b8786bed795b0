package changes

import "github.com/goliatone/go-logtrail/display"

// Diff returns the entries of current whose value differs from previous,
// keeping the order of current. Labels absent from previous count as changed.
// A nil side yields nil; identical mappings yield an empty, non-nil mapping.
func Diff(previous, current display.Mapping) display.Mapping {
	if previous == nil || current == nil {
		return nil
	}
	out := display.Mapping{}
	for _, entry := range current {
		before, ok := previous.Get(entry.Label)
		if ok && before == entry.Value {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// ForRecord applies the first-seen policy: a record with no earlier record
// for the same object reports its whole mapping as changed.
func ForRecord(previous, current display.Mapping, hasPrevious bool) display.Mapping {
	if !hasPrevious {
		return current
	}
	return Diff(previous, current)
}
