package worker

// State is the worker's connection state relative to the compiler service,
// per spec.md §4.5.
type State int

const (
	// Connected is the healthy state: the daemon is reachable and handling
	// requests normally.
	Connected State = iota
	// ConnectionInterrupted means the daemon connection dropped; the
	// document manager has been reset and no further requests are issued
	// until recovery completes.
	ConnectionInterrupted
	// SemanticFunctionalityDisabled means the daemon restarted and the
	// coordinator has been asked to reopen documents, but semantic
	// functionality has not yet warmed back up.
	SemanticFunctionalityDisabled
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case ConnectionInterrupted:
		return "connection_interrupted"
	case SemanticFunctionalityDisabled:
		return "semantic_functionality_disabled"
	default:
		return "unknown"
	}
}

// StateChangeHandler is notified synchronously, from the lane, whenever the
// worker transitions between states.
type StateChangeHandler func(old, new State)

// stateMachine holds the current state and registered handlers. All methods
// must be called from the worker's lane; it has no locking of its own.
type stateMachine struct {
	current  State
	handlers []StateChangeHandler
}

func newStateMachine() *stateMachine {
	return &stateMachine{current: Connected}
}

func (m *stateMachine) addHandler(h StateChangeHandler) {
	m.handlers = append(m.handlers, h)
}

func (m *stateMachine) transition(to State) {
	old := m.current
	if old == to {
		return
	}
	m.current = to
	for _, h := range m.handlers {
		h(old, to)
	}
}

// onConnectionInterrupted implements the `Connected -> ConnectionInterrupted`
// row of the transition table: a connection_interrupted notification moves
// to ConnectionInterrupted. The next row, any notification received while
// already interrupted advancing to SemanticFunctionalityDisabled, is
// onAnyNotificationWhileInterrupted.
func (m *stateMachine) onConnectionInterrupted() {
	m.transition(ConnectionInterrupted)
}

// onAnyNotificationWhileInterrupted implements the second row of the table.
func (m *stateMachine) onAnyNotificationWhileInterrupted() {
	if m.current == ConnectionInterrupted {
		m.transition(SemanticFunctionalityDisabled)
	}
}

// onSemaEnabled implements the third row: semantic warm-up completing
// returns the worker to Connected.
func (m *stateMachine) onSemaEnabled() {
	if m.current == SemanticFunctionalityDisabled {
		m.transition(Connected)
	}
}
