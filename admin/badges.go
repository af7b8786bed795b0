package admin

import "github.com/goliatone/go-logtrail/pkg/types"

// Badge is a coloured label shown in a list cell.
type Badge struct {
	Label string
	Color string
}

var actionLabels = map[types.Action]string{
	types.ActionDeleted: "Deleted",
	types.ActionUpdated: "Updated",
	types.ActionCreated: "Created",
	types.ActionOther:   "Other",
}

var actionColors = map[types.Action]string{
	types.ActionDeleted: "#f8d7da",
	types.ActionUpdated: "#fff3cd",
	types.ActionCreated: "#d1ecf1",
}

var levelColors = map[types.Level]string{
	types.LevelCritical: "#dc3545",
	types.LevelError:    "#dc3545",
	types.LevelWarning:  "#ffc107",
	types.LevelInfo:     "#17a2b8",
}

const (
	defaultActionColor = "#e2e3e5"
	defaultLevelColor  = "#6c757d"
)

// ActionLabel returns the display name of an action; empty for no action.
func ActionLabel(action types.Action) string {
	return actionLabels[action]
}

// ActionBadge returns the label and background colour of an action cell.
func ActionBadge(action types.Action) Badge {
	color, ok := actionColors[action]
	if !ok {
		color = defaultActionColor
	}
	return Badge{Label: ActionLabel(action), Color: color}
}

// LevelBadge returns the label and background colour of a level cell.
func LevelBadge(level types.Level) Badge {
	color, ok := levelColors[level]
	if !ok {
		color = defaultLevelColor
	}
	return Badge{Label: string(level), Color: color}
}
