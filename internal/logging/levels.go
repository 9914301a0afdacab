// internal/logging/levels.go
package logging

import (
	"go.uber.org/zap/zapcore"
)

// TraceLevel is a custom level below Debug, used for wire-level JSON-RPC
// payload dumps (tool arguments, raw request/response bodies). Value: -2
// (Debug is -1, Info is 0). Almost always filtered in production.
const TraceLevel = zapcore.Level(-2)

// ValidLevelNames lists every log_level value nexus accepts, in
// increasing-severity order. Config validation checks against this list
// before the server ever builds a logger.
var ValidLevelNames = []string{"trace", "debug", "info", "warn", "error", "dpanic", "panic", "fatal"}

// IsValidLevel reports whether level is one LevelFromString can parse.
// Used by config.Validate so a typo in log_level fails at load time
// rather than surfacing as a cryptic zapcore unmarshal error later.
func IsValidLevel(level string) bool {
	for _, name := range ValidLevelNames {
		if level == name {
			return true
		}
	}
	return false
}

// LevelFromString parses a string into a zapcore.Level, supporting "trace".
func LevelFromString(level string) (zapcore.Level, error) {
	if level == "trace" {
		return TraceLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}
