// internal/logger/pretty.go
package logger

import (
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap/zapcore"
)

var (
	debugLabel = color.New(color.FgCyan).Sprint("[DEBUG]")
	infoLabel  = color.New(color.FgGreen).Sprint("[INFO]")
	warnLabel  = color.New(color.FgYellow).Sprint("[WARN]")
	errorLabel = color.New(color.FgRed).Sprint("[ERROR]")
	fatalLabel = color.New(color.FgRed, color.Bold).Sprint("[FATAL]")
)

// PrettyEncoder creates a user-friendly console encoder
func PrettyEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		TimeKey:          "time",
		NameKey:          "logger",
		CallerKey:        "",
		StacktraceKey:    "",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      levelEncoder,
		EncodeTime:       timeEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	})
}

// levelEncoder formats log levels with colors
func levelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString(debugLabel)
	case zapcore.InfoLevel:
		enc.AppendString(infoLabel)
	case zapcore.WarnLevel:
		enc.AppendString(warnLabel)
	case zapcore.ErrorLevel:
		enc.AppendString(errorLabel)
	case zapcore.FatalLevel, zapcore.PanicLevel, zapcore.DPanicLevel:
		enc.AppendString(fatalLabel)
	default:
		enc.AppendString("[" + level.CapitalString() + "]")
	}
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05"))
}

// ShortAddress сокращает адрес или подпись для вывода в консоль.
func ShortAddress(addr string) string {
	if len(addr) > 12 {
		return addr[:4] + "..." + addr[len(addr)-4:]
	}
	return addr
}
