package lifecycle

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid transition")

// TransitionError is returned when an action is requested that the current
// evaluation does not allow. It matches ErrInvalidTransition.
type TransitionError struct {
	Action  Action
	Actions ActionSet
	Phase   Phase
	Reason  string
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("%s not allowed in %s (%s)", e.Action, e.Actions, e.Phase)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
