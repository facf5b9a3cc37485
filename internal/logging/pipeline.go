package logging

import (
	"errors"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Stage names reported to a StageObserver.
const (
	StageSeverity = "severity"
	StageScope    = "scope"
)

// StageObserver is notified of every record the pipeline emits or drops.
// Implementations must be safe for concurrent use.
type StageObserver interface {
	Emitted(level zapcore.Level)
	Dropped(stage string, level zapcore.Level)
}

type nopObserver struct{}

func (nopObserver) Emitted(zapcore.Level)         {}
func (nopObserver) Dropped(string, zapcore.Level) {}

// Option configures Build.
type Option func(*buildOptions)

type buildOptions struct {
	observer StageObserver
}

// WithStageObserver reports stage outcomes to o.
func WithStageObserver(o StageObserver) Option {
	return func(opts *buildOptions) {
		if o != nil {
			opts.observer = o
		}
	}
}

// Pipeline is an assembled chain: scope filter, severity filter, sink.
type Pipeline struct {
	core     zapcore.Core
	level    zapcore.Level
	scope    string
	sink     *sinkCore
	observer StageObserver
	logger   *zap.Logger
}

// Build parses levelString and composes sink, severity filter and scope filter.
// Only records at or above the level whose logger name equals scope reach sink.
func Build(levelString, scope string, sink Sink, opts ...Option) (*Pipeline, error) {
	level, err := ParseLevel(levelString)
	if err != nil {
		return nil, &PipelineBuildError{Cause: err}
	}
	if scope == "" {
		return nil, &PipelineBuildError{Cause: errors.New("scope tag must not be empty")}
	}
	if sink == nil {
		return nil, &PipelineBuildError{Cause: errors.New("sink must not be nil")}
	}

	options := buildOptions{observer: nopObserver{}}
	for _, opt := range opts {
		opt(&options)
	}

	terminal := &sinkCore{sink: sink, observer: options.observer}
	severity, err := zapcore.NewIncreaseLevelCore(terminal, level)
	if err != nil {
		return nil, &PipelineBuildError{Cause: err}
	}
	core := &scopeCore{Core: severity, scope: scope, observer: options.observer}

	return &Pipeline{
		core:     core,
		level:    level,
		scope:    scope,
		sink:     terminal,
		observer: options.observer,
		logger:   zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).Named(scope),
	}, nil
}

// Logger returns a logger whose records carry the pipeline's scope.
func (p *Pipeline) Logger() *zap.Logger {
	return p.logger
}

// Core returns the outermost stage.
func (p *Pipeline) Core() zapcore.Core {
	return p.core
}

// Level returns the minimum severity.
func (p *Pipeline) Level() zapcore.Level {
	return p.level
}

// Scope returns the only scope allowed through.
func (p *Pipeline) Scope() string {
	return p.scope
}

// Allows reports whether a record with level and scope would reach the sink.
func (p *Pipeline) Allows(level zapcore.Level, scope string) bool {
	return p.level.Enabled(level) && scope == p.scope
}

// Emit submits rec directly, applying the same filters as the logger path.
func (p *Pipeline) Emit(rec Record) {
	if !p.level.Enabled(rec.Level) {
		p.observer.Dropped(StageSeverity, rec.Level)
		return
	}
	if rec.Scope != p.scope {
		p.observer.Dropped(StageScope, rec.Level)
		return
	}
	p.sink.emit(rec)
}

// Sync flushes the sink if it buffers.
func (p *Pipeline) Sync() error {
	return p.core.Sync()
}

// scopeCore drops entries whose logger name differs from scope.
type scopeCore struct {
	zapcore.Core
	scope    string
	observer StageObserver
}

func (c *scopeCore) With(fields []zapcore.Field) zapcore.Core {
	return &scopeCore{Core: c.Core.With(fields), scope: c.scope, observer: c.observer}
}

func (c *scopeCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if ent.LoggerName != c.scope {
		c.observer.Dropped(StageScope, ent.Level)
		return ce
	}
	return c.Core.Check(ent, ce)
}

func (c *scopeCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	if ent.LoggerName != c.scope {
		return nil
	}
	return c.Core.Write(ent, fields)
}

// sinkCore is the terminal stage; it accepts every level.
type sinkCore struct {
	sink     Sink
	fields   []zapcore.Field
	observer StageObserver
}

func (c *sinkCore) Enabled(zapcore.Level) bool {
	return true
}

func (c *sinkCore) With(fields []zapcore.Field) zapcore.Core {
	combined := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	combined = append(combined, c.fields...)
	combined = append(combined, fields...)
	return &sinkCore{sink: c.sink, fields: combined, observer: c.observer}
}

func (c *sinkCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return ce.AddCore(ent, c)
}

func (c *sinkCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	c.emit(recordFromEntry(ent, c.fields, fields))
	return nil
}

func (c *sinkCore) Sync() error {
	if s, ok := c.sink.(syncer); ok {
		return s.Sync()
	}
	return nil
}

func (c *sinkCore) emit(rec Record) {
	c.observer.Emitted(rec.Level)
	c.sink.Emit(rec)
}
