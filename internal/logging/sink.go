package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// FormatJSON renders records as JSON lines.
	FormatJSON = "json"
	// FormatConsole renders colored, human readable lines.
	FormatConsole = "console"
)

// Sink is the terminal stage of a pipeline. Emit must be safe for concurrent use.
type Sink interface {
	Emit(Record)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Record)

// Emit calls f(rec).
func (f SinkFunc) Emit(rec Record) {
	f(rec)
}

type syncer interface {
	Sync() error
}

// EncoderSink encodes records with a zap encoder and writes them to a WriteSyncer.
type EncoderSink struct {
	enc zapcore.Encoder
	out zapcore.WriteSyncer
}

// NewEncoderSink returns a JSON sink writing to w. Writes are serialized.
func NewEncoderSink(w zapcore.WriteSyncer) *EncoderSink {
	return &EncoderSink{
		enc: zapcore.NewJSONEncoder(encoderConfig()),
		out: zapcore.Lock(w),
	}
}

// Emit encodes and writes rec. Encoding failures are reported on stderr.
func (s *EncoderSink) Emit(rec Record) {
	ent := zapcore.Entry{
		Level:      rec.Level,
		Time:       rec.Time,
		LoggerName: rec.Scope,
		Message:    rec.Message,
		Stack:      rec.Stack,
	}

	fields := make([]zapcore.Field, 0, len(rec.Fields)+1)
	if rec.Caller != "" {
		fields = append(fields, zap.String("caller", rec.Caller))
	}
	for _, k := range rec.fieldKeys() {
		fields = append(fields, zap.Any(k, rec.Fields[k]))
	}

	buf, err := s.enc.EncodeEntry(ent, fields)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v encode log record: %v\n", time.Now().UTC(), err)
		return
	}
	defer buf.Free()

	if _, err := s.out.Write(buf.Bytes()); err != nil {
		fmt.Fprintf(os.Stderr, "%v write log record: %v\n", time.Now().UTC(), err)
	}
}

// Sync flushes the underlying writer.
func (s *EncoderSink) Sync() error {
	return s.out.Sync()
}

// SlogSink forwards records to a slog.Handler.
type SlogSink struct {
	handler slog.Handler
}

// NewSlogSink wraps h.
func NewSlogSink(h slog.Handler) *SlogSink {
	return &SlogSink{handler: h}
}

// NewConsoleSink renders colored lines with tint.
func NewConsoleSink(w io.Writer) *SlogSink {
	return NewSlogSink(tint.NewHandler(w, &tint.Options{
		Level:      slogLevel(TraceLevel),
		TimeFormat: time.Kitchen,
	}))
}

// Emit converts rec into a slog.Record and hands it to the handler.
func (s *SlogSink) Emit(rec Record) {
	ctx := context.Background()
	level := slogLevel(rec.Level)
	if !s.handler.Enabled(ctx, level) {
		return
	}

	r := slog.NewRecord(rec.Time, level, rec.Message, 0)
	if rec.Scope != "" {
		r.AddAttrs(slog.String("scope", rec.Scope))
	}
	if rec.Caller != "" {
		r.AddAttrs(slog.String("caller", rec.Caller))
	}
	for _, k := range rec.fieldKeys() {
		r.AddAttrs(slog.Any(k, rec.Fields[k]))
	}

	if err := s.handler.Handle(ctx, r); err != nil {
		fmt.Fprintf(os.Stderr, "%v handle log record: %v\n", time.Now().UTC(), err)
	}
}

// NewSink opens output (stdout, stderr or a file path) and returns a sink for
// format together with a function releasing the output.
func NewSink(format, output string) (Sink, func(), error) {
	if output == "" {
		output = "stdout"
	}

	switch format {
	case "", FormatJSON, FormatConsole:
	default:
		return nil, nil, fmt.Errorf("unsupported log format %q", format)
	}

	ws, closeOutput, err := zap.Open(output)
	if err != nil {
		return nil, nil, fmt.Errorf("open log output %q: %w", output, err)
	}

	if format == FormatConsole {
		return NewConsoleSink(zapcore.Lock(ws)), closeOutput, nil
	}
	return NewEncoderSink(ws), closeOutput, nil
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.StacktraceKey = "stacktrace"
	cfg.NameKey = "scope"
	cfg.CallerKey = zapcore.OmitKey
	cfg.EncodeLevel = encodeLevel
	return cfg
}
