package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/crmkit/authcore/internal/infrastructure/crypto"
)

// Config holds logger configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

// New creates a new zerolog logger based on config. Output passes through
// the data masker so emails, card numbers and bearer tokens never reach the
// log sink in clear.
func New(cfg Config) zerolog.Logger {
	var output io.Writer = maskingWriter{out: os.Stdout, masker: crypto.NewMasker()}

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	level := parseLevel(cfg.Level)

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()
}

// maskingWriter redacts sensitive values on their way to the sink.
type maskingWriter struct {
	out    io.Writer
	masker *crypto.Masker
}

func (w maskingWriter) Write(p []byte) (int, error) {
	masked := w.masker.MaskText(string(p))
	if _, err := w.out.Write([]byte(masked)); err != nil {
		return 0, err
	}
	// Report the original length so zerolog does not treat the redaction
	// as a short write.
	return len(p), nil
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
