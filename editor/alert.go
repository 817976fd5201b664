package editor

// Alert is a user-facing message produced by an operation that could not (or
// only partially) complete. Alerts accumulate on the model until the
// presentation layer drains them; the model itself never panics or prints.
type Alert struct {
	Message  string
	Priority AlertPriority
}

type AlertPriority int

const (
	None AlertPriority = iota
	Notify
	Warning
	Error
)

func (m *Model) Alert(message string, priority AlertPriority) {
	m.alerts = append(m.alerts, Alert{Message: message, Priority: priority})
}

// Alerts returns the pending alerts and clears them.
func (m *Model) Alerts() []Alert {
	ret := m.alerts
	m.alerts = nil
	return ret
}
