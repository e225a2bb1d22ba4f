package router

// Tee returns a Telemetry that forwards every Event to each of ts in
// order. Useful when more than one sink (the operational WebSocket feed,
// the REST stats counters) needs to observe the same events.
func Tee(ts ...Telemetry) Telemetry {
	return teeTelemetry(ts)
}

type teeTelemetry []Telemetry

func (t teeTelemetry) Emit(ev Event) {
	for _, sink := range t {
		if sink != nil {
			sink.Emit(ev)
		}
	}
}
