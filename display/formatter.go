package display

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-logtrail/registry"
	"github.com/goliatone/go-logtrail/snapshot"
)

const listSeparator = ", "

// Resolver looks up related entities so relations can be shown by their
// display string instead of their identifier.
type Resolver interface {
	// Resolve returns the display string of the target entity whose key
	// column equals id; found is false when no entity matches.
	Resolve(ctx context.Context, target *registry.Descriptor, key string, id any) (display string, found bool, err error)
	// ResolveMany returns the display strings of every matching entity.
	ResolveMany(ctx context.Context, target *registry.Descriptor, key string, ids []any) ([]string, error)
}

// Formatter converts snapshots into display mappings.
type Formatter struct {
	registry *registry.Registry
	resolver Resolver
}

// NewFormatter wires the registry used to find relation targets and the
// resolver used to load them. A nil resolver keeps raw identifiers.
func NewFormatter(reg *registry.Registry, resolver Resolver) *Formatter {
	return &Formatter{registry: reg, resolver: resolver}
}

// Format renders snap following the declaration order of desc. Concrete
// fields come first, then one entry per many-to-many relation. Keys missing
// from the snapshot are not rendered.
func (f *Formatter) Format(ctx context.Context, snap snapshot.Snapshot, desc *registry.Descriptor) (Mapping, error) {
	if len(snap) == 0 || desc == nil {
		return nil, nil
	}
	out := make(Mapping, 0, len(desc.Fields))

	for _, field := range desc.ConcreteFields() {
		raw, ok := snap[field.Name]
		if !ok {
			continue
		}
		value := Value(raw)
		if field.Kind == registry.KindForeignKey && raw != nil {
			resolved, found, err := f.resolveOne(ctx, field, raw)
			if err != nil {
				return nil, err
			}
			if found {
				value = resolved
			}
		}
		out = append(out, Entry{Label: field.DisplayLabel(), Value: value})
	}

	for _, field := range desc.ManyToManyFields() {
		raw, ok := snap[field.Name]
		if !ok {
			continue
		}
		names, err := f.resolveMany(ctx, field, asList(raw))
		if err != nil {
			return nil, err
		}
		sort.Strings(names)
		out = append(out, Entry{Label: field.DisplayLabel(), Value: strings.Join(names, listSeparator)})
	}
	return out, nil
}

func (f *Formatter) resolveOne(ctx context.Context, field registry.Field, raw any) (string, bool, error) {
	target, ok := f.target(field)
	if !ok {
		return "", false, nil
	}
	return f.resolver.Resolve(ctx, target, field.RelationKey(), keyValue(raw))
}

func (f *Formatter) resolveMany(ctx context.Context, field registry.Field, ids []any) ([]string, error) {
	target, ok := f.target(field)
	if !ok {
		out := make([]string, 0, len(ids))
		for _, id := range ids {
			out = append(out, Value(id))
		}
		return out, nil
	}
	if len(ids) == 0 {
		return []string{}, nil
	}
	keys := make([]any, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, keyValue(id))
	}
	return f.resolver.ResolveMany(ctx, target, field.RelationKey(), keys)
}

func (f *Formatter) target(field registry.Field) (*registry.Descriptor, bool) {
	if f == nil || f.resolver == nil || f.registry == nil {
		return nil, false
	}
	return f.registry.Lookup(field.Target)
}

// Value renders a raw snapshot value as display text. Lists are joined with
// ", " and nil renders as an empty string.
func Value(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, Value(item))
		}
		return strings.Join(parts, listSeparator)
	case []string:
		return strings.Join(v, listSeparator)
	case map[string]any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
	return fmt.Sprint(raw)
}

func asList(raw any) []any {
	switch v := raw.(type) {
	case nil:
		return nil
	case []any:
		return v
	}
	return []any{raw}
}

// keyValue turns decoded JSON numbers into integers so lookups bind typed
// arguments.
func keyValue(raw any) any {
	switch v := raw.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case float64:
		if n, ok := snapshot.Int64(v); ok {
			return n
		}
	}
	return raw
}
