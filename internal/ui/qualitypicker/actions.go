package qualitypicker

import (
	"github.com/ldevreaux/marquee/internal/ui/action"
)

// Close signals the picker should close without changing anything.
type Close struct{}

// ActionType implements action.Action.
func (a Close) ActionType() string { return "qualitypicker.close" }

// Chosen carries the selected preset label.
type Chosen struct {
	Label string
}

// ActionType implements action.Action.
func (a Chosen) ActionType() string { return "qualitypicker.chosen" }

// ActionMsg creates an action.Msg for a qualitypicker action.
func ActionMsg(a action.Action) action.Msg {
	return action.Msg{Source: "qualitypicker", Action: a}
}
