package logging

import (
	"fmt"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// TraceLevel sits below zap's DebugLevel.
	TraceLevel = zapcore.DebugLevel - 1
	// OffLevel is above every level a logger can emit, so nothing passes it.
	OffLevel = zapcore.FatalLevel + 1
)

// numeric verbosity, 0 silences everything and 5 lets trace through.
var verbosityLevels = []zapcore.Level{
	OffLevel,
	zapcore.ErrorLevel,
	zapcore.WarnLevel,
	zapcore.InfoLevel,
	zapcore.DebugLevel,
	TraceLevel,
}

// ParseLevel converts a case-insensitive level name into a zapcore.Level.
// Besides zap's names it accepts trace, off, warning and the verbosities 0-5.
func ParseLevel(raw string) (zapcore.Level, error) {
	text := strings.ToLower(strings.TrimSpace(raw))
	switch text {
	case "":
		return 0, &LevelParseError{Raw: raw, Cause: fmt.Errorf("%w: empty string", ErrUnknownLevel)}
	case "trace":
		return TraceLevel, nil
	case "off":
		return OffLevel, nil
	case "warning":
		return zapcore.WarnLevel, nil
	}

	if len(text) == 1 && text[0] >= '0' && text[0] <= '5' {
		return verbosityLevels[text[0]-'0'], nil
	}

	level, err := zapcore.ParseLevel(text)
	if err != nil {
		return 0, &LevelParseError{Raw: raw, Cause: fmt.Errorf("%w: %w", ErrUnknownLevel, err)}
	}
	return level, nil
}

// LevelName returns the lowercase name used in emitted records.
func LevelName(level zapcore.Level) string {
	switch level {
	case TraceLevel:
		return "trace"
	case OffLevel:
		return "off"
	default:
		return level.String()
	}
}

// Trace logs msg at TraceLevel.
func Trace(logger *zap.Logger, msg string, fields ...zap.Field) {
	if ce := logger.Check(TraceLevel, msg); ce != nil {
		ce.Write(fields...)
	}
}

func encodeLevel(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(LevelName(level))
}

// slogLevel maps zap severities onto slog's scale.
func slogLevel(level zapcore.Level) slog.Level {
	switch {
	case level <= TraceLevel:
		return slog.LevelDebug - 4
	case level == zapcore.DebugLevel:
		return slog.LevelDebug
	case level == zapcore.InfoLevel:
		return slog.LevelInfo
	case level == zapcore.WarnLevel:
		return slog.LevelWarn
	case level == zapcore.ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelError + 4
	}
}
