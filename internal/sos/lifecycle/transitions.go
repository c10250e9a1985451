package lifecycle

// Action is an input to the alert state machine.
type Action string

const (
	ActionTick           Action = "tick"
	ActionSilentDispatch Action = "silent_dispatch"
	ActionCancel         Action = "cancel"
)

var transitionMap = map[Action][]State{
	ActionTick:           {StateArmed},
	ActionSilentDispatch: {StateArmed},
	ActionCancel:         {StateArmed},
}

// ValidTransition reports whether action may be applied in state from.
func ValidTransition(action Action, from State) bool {
	allowed, ok := transitionMap[action]
	if !ok {
		return false
	}
	for _, state := range allowed {
		if state == from {
			return true
		}
	}
	return false
}
