package codec

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	phpserial "github.com/wippyai/php-serial"
	"github.com/wippyai/php-serial/errors"
	"github.com/wippyai/php-serial/value"
)

var (
	defaultCodec *Codec
	defaultOnce  sync.Once
)

// Default returns the process-wide codec used by Serialize and Unserialize.
// It has no class registry, so every class decodes as a plain object.
func Default() *Codec {
	defaultOnce.Do(func() {
		defaultCodec = New()
	})
	return defaultCodec
}

func Serialize(v value.Value) ([]byte, error) {
	return Default().Serialize(v)
}

func Unserialize(data []byte) (value.Value, error) {
	return Default().Unserialize(data)
}

// LogDiagnostics returns a sink that writes each notice to l. Soft
// failures log at warn level, anything else at error level.
func LogDiagnostics(l *zap.Logger) phpserial.Diagnostics {
	if l == nil {
		l = zap.NewNop()
	}
	return phpserial.DiagnosticsFunc(func(e *errors.Error) {
		level := zapcore.WarnLevel
		if !errors.IsSoft(e) {
			level = zapcore.ErrorLevel
		}
		l.Log(level, "unserialize notice",
			zap.String("phase", string(e.Phase)),
			zap.String("kind", string(e.Kind)),
			zap.Int("offset", e.Offset),
			zap.String("context", e.Context),
			zap.String("detail", e.Detail))
	})
}
