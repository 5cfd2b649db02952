package race

import "fmt"

// ActionType enumerates the operations the outside world may invoke on a
// race. Each maps 1:1 onto a coordinator method.
type ActionType string

// Race actions.
const (
	ActionJoin             ActionType = "join"
	ActionLeave            ActionType = "leave"
	ActionStart            ActionType = "start"
	ActionAdvanceChallenge ActionType = "advanceChallenge"
	ActionFinish           ActionType = "finish"
)

// Action is one decoded request from a client. WPM and Accuracy are
// pointers so a missing field is distinguishable from zero.
type Action struct {
	Type     ActionType `json:"type"`
	RaceID   string     `json:"raceId"`
	UserID   string     `json:"userId"`
	WPM      *int       `json:"wpm,omitempty"`
	Accuracy *int       `json:"accuracy,omitempty"`
}

// Apply validates and dispatches an action.
func (c *Coordinator) Apply(a Action) error {
	switch a.Type {
	case ActionJoin:
		return c.Join(a.RaceID, a.UserID)
	case ActionLeave:
		return c.Leave(a.RaceID, a.UserID)
	case ActionStart:
		return c.Start(a.RaceID)
	case ActionAdvanceChallenge:
		_, err := c.AdvanceChallenge(a.RaceID, a.UserID)
		return err
	case ActionFinish:
		if a.WPM == nil {
			return fmt.Errorf("finish requires wpm: %w", ErrMissingRequiredField)
		}
		if a.Accuracy == nil {
			return fmt.Errorf("finish requires accuracy: %w", ErrMissingRequiredField)
		}
		if *a.Accuracy < 0 || *a.Accuracy > 100 {
			return fmt.Errorf("accuracy %d out of range: %w", *a.Accuracy, ErrMissingRequiredField)
		}
		return c.Finish(a.RaceID, a.UserID, *a.WPM, *a.Accuracy)
	default:
		return fmt.Errorf("unknown action %q", a.Type)
	}
}
