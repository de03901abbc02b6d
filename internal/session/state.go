package session

// State is the orchestrator's position in a round.
type State int

// Round states.
const (
	StateIdle State = iota
	StateStimulusReady
	StateAwaitingResponse
	StateEvaluated
	StateAwaitingRetry
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStimulusReady:
		return "stimulus-ready"
	case StateAwaitingResponse:
		return "awaiting-response"
	case StateEvaluated:
		return "evaluated"
	case StateAwaitingRetry:
		return "awaiting-retry"
	}
	return "unknown"
}
