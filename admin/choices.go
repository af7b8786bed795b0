package admin

import (
	"github.com/goliatone/go-logtrail/pkg/types"
	"github.com/goliatone/go-logtrail/registry"
)

// FilterChoices lists the options of the multi-select filters.
type FilterChoices struct {
	Actions     []registry.Choice
	Levels      []registry.Choice
	ObjectNames []registry.Choice
}

// Choices builds the filter options. Object names come from the tracked
// types of reg.
func Choices(reg *registry.Registry) FilterChoices {
	out := FilterChoices{}
	for _, action := range types.Actions() {
		out.Actions = append(out.Actions, registry.Choice{Value: string(action), Label: ActionLabel(action)})
	}
	for _, level := range types.Levels() {
		out.Levels = append(out.Levels, registry.Choice{Value: string(level), Label: string(level)})
	}
	if reg != nil {
		out.ObjectNames = reg.Choices()
	}
	return out
}
