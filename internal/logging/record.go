package logging

import (
	"sort"
	"time"

	"go.uber.org/zap/zapcore"
)

// Record is one event handed to a Sink after it survived every filter.
type Record struct {
	Time    time.Time
	Level   zapcore.Level
	Scope   string
	Message string
	Caller  string
	Stack   string
	Fields  map[string]any
}

func recordFromEntry(ent zapcore.Entry, fieldSets ...[]zapcore.Field) Record {
	enc := zapcore.NewMapObjectEncoder()
	for _, fields := range fieldSets {
		for _, f := range fields {
			f.AddTo(enc)
		}
	}

	rec := Record{
		Time:    ent.Time,
		Level:   ent.Level,
		Scope:   ent.LoggerName,
		Message: ent.Message,
		Stack:   ent.Stack,
		Fields:  enc.Fields,
	}
	if ent.Caller.Defined {
		rec.Caller = ent.Caller.TrimmedPath()
	}
	return rec
}

// fieldKeys returns the field names in sorted order so encoded output is stable.
func (r Record) fieldKeys() []string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
