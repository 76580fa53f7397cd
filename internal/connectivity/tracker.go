// Package connectivity turns a stream of companion reachability reports into
// haptic alert decisions.
package connectivity

// Tracker remembers the last reported link state and decides when the
// wearer must be alerted. Only a falling edge alerts.
type Tracker struct {
	connected bool
	known     bool
}

// Seed records the state observed at startup. It alerts when the link is
// already down and alertIfDown is set, for faces that check at load time.
func (t *Tracker) Seed(connected, alertIfDown bool) bool {
	t.connected, t.known = connected, true
	return !connected && alertIfDown
}

// Observe records a reported state and returns true exactly on a
// connected to disconnected transition. Repeated reports never alert.
func (t *Tracker) Observe(connected bool) bool {
	falling := t.known && t.connected && !connected
	t.connected, t.known = connected, true
	return falling
}

// Connected returns the last recorded state.
func (t *Tracker) Connected() bool {
	return t.connected
}

// IndicatorVisible reports whether the disconnected indicator is shown.
func IndicatorVisible(connected bool) bool {
	return !connected
}
