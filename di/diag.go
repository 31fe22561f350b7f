package di

import "go.uber.org/zap"

// Level classifies a diagnostic event.
type Level uint8

const (
	LevelWarning Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "warning"
}

// Event is one diagnostic finding, carrying enough source context for
// the user to locate the offending type.
type Event struct {
	Level   Level
	File    string
	Line    uint32
	Type    string
	Message string
}

// Diagnostics collects sanitizer findings for the caller and mirrors
// them to the package logger. The zero value is ready to use.
type Diagnostics struct {
	events []Event
}

// Warnf records a warning about the named type.
func (d *Diagnostics) Warnf(file string, line uint32, typeName, msg string) {
	d.events = append(d.events, Event{
		Level:   LevelWarning,
		File:    file,
		Line:    line,
		Type:    typeName,
		Message: msg,
	})
	Logger().Warn(msg,
		zap.String("file", file),
		zap.Uint32("line", line),
		zap.String("type", typeName),
	)
}

// Errorf records an error-level finding.
func (d *Diagnostics) Errorf(file string, line uint32, typeName, msg string) {
	d.events = append(d.events, Event{
		Level:   LevelError,
		File:    file,
		Line:    line,
		Type:    typeName,
		Message: msg,
	})
	Logger().Error(msg,
		zap.String("file", file),
		zap.Uint32("line", line),
		zap.String("type", typeName),
	)
}

// Events returns every recorded event in emission order.
func (d *Diagnostics) Events() []Event { return d.events }

// Warnings returns the warning-level events in emission order.
func (d *Diagnostics) Warnings() []Event {
	var out []Event
	for _, e := range d.events {
		if e.Level == LevelWarning {
			out = append(out, e)
		}
	}
	return out
}

// HasErrors reports whether any error-level event was recorded.
func (d *Diagnostics) HasErrors() bool {
	for _, e := range d.events {
		if e.Level == LevelError {
			return true
		}
	}
	return false
}
