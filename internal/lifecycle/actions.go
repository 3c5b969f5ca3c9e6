package lifecycle

import (
	"portal-tournaments/internal/domain"
)

type ActionSet string

const (
	ActionsCanRegister              ActionSet = "CAN_REGISTER"
	ActionsRegistrationClosed       ActionSet = "REGISTRATION_CLOSED"
	ActionsFull                     ActionSet = "FULL"
	ActionsMustConfirm              ActionSet = "MUST_CONFIRM"
	ActionsConfirmed                ActionSet = "CONFIRMED"
	ActionsRegisteredAwaitingWindow ActionSet = "REGISTERED_AWAITING_WINDOW"
	ActionsLocked                   ActionSet = "LOCKED"
)

func (a ActionSet) String() string {
	return string(a)
}

// Reason is a short user-facing explanation of what the set allows.
func (a ActionSet) Reason() string {
	switch a {
	case ActionsCanRegister:
		return "registration is open"
	case ActionsRegistrationClosed:
		return "registration closed"
	case ActionsFull:
		return "tournament is full"
	case ActionsMustConfirm:
		return "confirm participation before the tournament starts"
	case ActionsConfirmed:
		return "participation confirmed"
	case ActionsRegisteredAwaitingWindow:
		return "registered, confirmation opens one hour before start"
	case ActionsLocked:
		return "participation was not confirmed before the start"
	default:
		return ""
	}
}

// ResolveActions maps the phase and the caller's registration to what the
// caller may do. isFull only matters for callers who are not registered.
func ResolveActions(phase Phase, participant *domain.Participant, isFull bool) ActionSet {
	if participant == nil {
		switch {
		case phase != PhaseOpen:
			return ActionsRegistrationClosed
		case isFull:
			return ActionsFull
		default:
			return ActionsCanRegister
		}
	}

	switch phase {
	case PhaseOpen:
		return ActionsRegisteredAwaitingWindow
	case PhaseConfirmation:
		if participant.IsConfirmed() {
			return ActionsConfirmed
		}
		return ActionsMustConfirm
	default:
		if participant.IsConfirmed() {
			return ActionsConfirmed
		}
		return ActionsLocked
	}
}

// CanUnregister allows withdrawal until the start, confirmed or not.
func CanUnregister(phase Phase, participant *domain.Participant) bool {
	return participant != nil && phase != PhaseStarted
}

type Action = domain.ActionKind

// Authorize checks a requested action against an evaluation. The backend
// still has the final word; this only avoids requests that cannot succeed.
func Authorize(action Action, ev Evaluation) error {
	var allowed bool
	switch action {
	case domain.ActionRegister:
		allowed = ev.Actions == ActionsCanRegister
	case domain.ActionUnregister:
		allowed = ev.CanUnregister
	case domain.ActionConfirm:
		allowed = ev.Actions == ActionsMustConfirm
	}
	if allowed {
		return nil
	}

	reason := ev.Actions.Reason()
	if action == domain.ActionUnregister {
		if ev.Phase == PhaseStarted {
			reason = "tournament already started"
		} else {
			reason = "not registered"
		}
	}
	return &TransitionError{Action: action, Actions: ev.Actions, Phase: ev.Phase, Reason: reason}
}
