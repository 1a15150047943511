// Package telemetry is the engine's observability surface: a leveled,
// category-tagged logger feeding a host-pluggable sink, plus typed telemetry
// records for the events a host dashboard cares about. With no sink
// configured every call is a cheap no-op, which is the normal idle state on
// a device build.
package telemetry

import (
	"fmt"
	"sync"
)

// Level orders log severity. Error is the lowest value so the level filter
// reads "everything at or below".
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

var levelNames = map[Level]string{
	LevelError: "error",
	LevelWarn:  "warn",
	LevelInfo:  "info",
	LevelDebug: "debug",
	LevelTrace: "trace",
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return "invalid"
}

// Log categories used by the engine packages.
const (
	CatParser  = "parser"
	CatSchema  = "schema"
	CatState   = "state"
	CatExpr    = "expr"
	CatEvent   = "event"
	CatAction  = "action"
	CatModal   = "modal"
	CatNav     = "nav"
	CatRuntime = "runtime"
	CatNative  = "native"
)

// Sink receives formatted log lines that pass the level filter.
type Sink func(level Level, category, message string)

// RecordType tags a telemetry Record.
type RecordType int

const (
	RecordScreenLoad RecordType = iota
	RecordWidgetEvent
	RecordAction
	RecordStateChange
	RecordError
	RecordPerf
	RecordModal
)

var recordNames = map[RecordType]string{
	RecordScreenLoad:  "screen_load",
	RecordWidgetEvent: "widget_event",
	RecordAction:      "action",
	RecordStateChange: "state_change",
	RecordError:       "error",
	RecordPerf:        "perf",
	RecordModal:       "modal",
}

func (t RecordType) String() string {
	if s, ok := recordNames[t]; ok {
		return s
	}
	return "invalid"
}

// Record is one typed telemetry event. Subject and Detail carry the
// record's primary and secondary names; Arg0/Arg1 carry operands where the
// record has them; Value carries the numeric payload of perf records.
type Record struct {
	Type    RecordType
	Subject string
	Detail  string
	Arg0    string
	Arg1    string
	Value   float64
}

// RecordFunc receives telemetry records.
type RecordFunc func(Record)

// Logger filters by level and fans out to the configured sink and telemetry
// callback. The zero value discards everything. Safe for concurrent use.
type Logger struct {
	mu        sync.RWMutex
	level     Level
	sink      Sink
	telemetry RecordFunc
}

// New returns a Logger filtering at LevelInfo with no sink attached.
func New() *Logger {
	return &Logger{level: LevelInfo}
}

// SetLevel changes the level filter.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// GetLevel returns the current level filter.
func (l *Logger) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// SetSink installs the log sink. A nil sink silences logging.
func (l *Logger) SetSink(sink Sink) {
	l.mu.Lock()
	l.sink = sink
	l.mu.Unlock()
}

// SetTelemetry installs the telemetry callback. Nil silences records.
func (l *Logger) SetTelemetry(fn RecordFunc) {
	l.mu.Lock()
	l.telemetry = fn
	l.mu.Unlock()
}

// Logf formats and delivers a log line when a sink is set and level passes
// the filter.
func (l *Logger) Logf(level Level, category, format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.RLock()
	sink := l.sink
	max := l.level
	l.mu.RUnlock()
	if sink == nil || level > max {
		return
	}
	sink(level, category, fmt.Sprintf(format, args...))
}

// Errorf logs at LevelError.
func (l *Logger) Errorf(category, format string, args ...any) {
	l.Logf(LevelError, category, format, args...)
}

// Warnf logs at LevelWarn.
func (l *Logger) Warnf(category, format string, args ...any) {
	l.Logf(LevelWarn, category, format, args...)
}

// Infof logs at LevelInfo.
func (l *Logger) Infof(category, format string, args ...any) {
	l.Logf(LevelInfo, category, format, args...)
}

// Debugf logs at LevelDebug.
func (l *Logger) Debugf(category, format string, args ...any) {
	l.Logf(LevelDebug, category, format, args...)
}

// Tracef logs at LevelTrace.
func (l *Logger) Tracef(category, format string, args ...any) {
	l.Logf(LevelTrace, category, format, args...)
}

// Emit delivers a record to the telemetry callback, if any.
func (l *Logger) Emit(rec Record) {
	if l == nil {
		return
	}
	l.mu.RLock()
	fn := l.telemetry
	l.mu.RUnlock()
	if fn != nil {
		fn(rec)
	}
}

// ScreenLoad records that a screen finished loading.
func (l *Logger) ScreenLoad(screen string) {
	l.Emit(Record{Type: RecordScreenLoad, Subject: screen})
}

// WidgetEvent records an event fired on a widget.
func (l *Logger) WidgetEvent(widget, event string) {
	l.Emit(Record{Type: RecordWidgetEvent, Subject: widget, Detail: event})
}

// Action records an executed action with its operands.
func (l *Logger) Action(kind, arg0, arg1 string) {
	l.Emit(Record{Type: RecordAction, Subject: kind, Arg0: arg0, Arg1: arg1})
}

// StateChange records a state key taking a new value.
func (l *Logger) StateChange(key, value string) {
	l.Emit(Record{Type: RecordStateChange, Subject: key, Detail: value})
}

// Error records a recovered runtime error and logs it.
func (l *Logger) Error(category, message string) {
	l.Errorf(category, "%s", message)
	l.Emit(Record{Type: RecordError, Subject: category, Detail: message})
}

// Perf records a numeric performance sample.
func (l *Logger) Perf(metric, subject string, value float64) {
	l.Emit(Record{Type: RecordPerf, Subject: metric, Detail: subject, Value: value})
}

// Modal records a modal lifecycle event for a component.
func (l *Logger) Modal(event, component string) {
	l.Emit(Record{Type: RecordModal, Subject: event, Detail: component})
}
