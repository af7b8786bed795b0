package registry

import (
	"sort"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

// Choice pairs a log-name with its type label for object-type filters.
type Choice struct {
	Value string
	Label string
}

// Registry maps type names and log-names to descriptors.
type Registry struct {
	mu        sync.RWMutex
	byName    map[string]*Descriptor
	byLogName map[string]*Descriptor
}

// New constructs a registry pre-populated with the supplied descriptors. It
// fails on the first invalid or duplicated descriptor.
func New(descriptors ...*Descriptor) (*Registry, error) {
	reg := &Registry{
		byName:    make(map[string]*Descriptor),
		byLogName: make(map[string]*Descriptor),
	}
	for _, desc := range descriptors {
		if err := reg.Register(desc); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// MustNew is New for static wiring at process start.
func MustNew(descriptors ...*Descriptor) *Registry {
	reg, err := New(descriptors...)
	if err != nil {
		panic(err)
	}
	return reg
}

// Register adds a descriptor. Names and log-names must be unique.
func (r *Registry) Register(desc *Descriptor) error {
	if desc == nil || strings.TrimSpace(desc.Name) == "" {
		return goerrors.New("go-logtrail: descriptor name required", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}
	seen := make(map[string]struct{}, len(desc.Fields))
	for _, field := range desc.Fields {
		if strings.TrimSpace(field.Name) == "" {
			return goerrors.New("go-logtrail: field name required on "+desc.Name, goerrors.CategoryValidation).
				WithCode(goerrors.CodeBadRequest)
		}
		if _, dup := seen[field.Name]; dup {
			return goerrors.New("go-logtrail: duplicated field "+field.Name+" on "+desc.Name, goerrors.CategoryValidation).
				WithCode(goerrors.CodeBadRequest)
		}
		seen[field.Name] = struct{}{}
		if field.Kind.IsRelation() && strings.TrimSpace(field.Target) == "" {
			return goerrors.New("go-logtrail: relation "+field.Name+" on "+desc.Name+" requires a target", goerrors.CategoryValidation).
				WithCode(goerrors.CodeBadRequest)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byName == nil {
		r.byName = make(map[string]*Descriptor)
		r.byLogName = make(map[string]*Descriptor)
	}
	if _, exists := r.byName[desc.Name]; exists {
		return goerrors.New("go-logtrail: type "+desc.Name+" already registered", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}
	if desc.Tracked() {
		if _, exists := r.byLogName[desc.LogName]; exists {
			return goerrors.New("go-logtrail: log name "+desc.LogName+" already registered", goerrors.CategoryValidation).
				WithCode(goerrors.CodeBadRequest)
		}
		r.byLogName[desc.LogName] = desc
	}
	r.byName[desc.Name] = desc
	return nil
}

// Lookup returns the descriptor registered under the type name.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.byName[name]
	return desc, ok
}

// ByLogName returns the tracked descriptor stored under the log-name. An
// unknown log-name is a regular miss, not an error.
func (r *Registry) ByLogName(logName string) (*Descriptor, bool) {
	if r == nil || strings.TrimSpace(logName) == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.byLogName[logName]
	return desc, ok
}

// Tracked returns the tracked descriptors sorted by log-name.
func (r *Registry) Tracked() []*Descriptor {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	out := make([]*Descriptor, 0, len(r.byLogName))
	for _, desc := range r.byLogName {
		out = append(out, desc)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].LogName < out[j].LogName })
	return out
}

// Choices lists the tracked types as filter options.
func (r *Registry) Choices() []Choice {
	tracked := r.Tracked()
	out := make([]Choice, 0, len(tracked))
	for _, desc := range tracked {
		out = append(out, Choice{Value: desc.LogName, Label: desc.DisplayLabel()})
	}
	return out
}
