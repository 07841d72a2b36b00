package logger

import (
	"github.com/ThreeDotsLabs/watermill"
)

// WatermillAdapter forwards watermill's internal logging into an ILogger so the
// in-process bus writes to the same files as the rest of the relay.
type WatermillAdapter struct {
	log    ILogger
	fields watermill.LogFields
	debug  bool
	trace  bool
}

var _ watermill.LoggerAdapter = &WatermillAdapter{}

func NewWatermillAdapter(log ILogger, debug, trace bool) *WatermillAdapter {
	return &WatermillAdapter{log: log, debug: debug, trace: trace}
}

func (a *WatermillAdapter) details(fields watermill.LogFields) map[string]interface{} {
	merged := a.fields.Add(fields)
	out := make(map[string]interface{}, len(merged))
	for k, v := range merged {
		out[k] = v
	}
	return out
}

func (a *WatermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	d := a.details(fields)
	d["error"] = err
	a.log.Error("Watermill", msg, d)
}

func (a *WatermillAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info("Watermill", msg, a.details(fields))
}

func (a *WatermillAdapter) Debug(msg string, fields watermill.LogFields) {
	if a.debug {
		a.log.Debug("Watermill", msg, a.details(fields))
	}
}

func (a *WatermillAdapter) Trace(msg string, fields watermill.LogFields) {
	if a.trace {
		a.log.Debug("Watermill", msg, a.details(fields))
	}
}

func (a *WatermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillAdapter{
		log:    a.log,
		fields: a.fields.Add(fields),
		debug:  a.debug,
		trace:  a.trace,
	}
}
