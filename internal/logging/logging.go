package logging

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger for the given environment. "dev" gives a console
// encoder at debug level; anything else gives JSON at info level. A non-empty
// level overrides the environment default. Logs always go to stderr so the
// result stream on stdout stays clean.
func New(env, level string) (*zap.Logger, error) {
	var config zap.Config

	switch strings.ToLower(env) {
	case "dev":
		config = zap.Config{
			Level:       zap.NewAtomicLevelAt(zapcore.DebugLevel),
			Development: true,
			Encoding:    "console",
			EncoderConfig: zapcore.EncoderConfig{
				CallerKey:      "C",
				EncodeCaller:   zapcore.ShortCallerEncoder,
				EncodeDuration: zapcore.StringDurationEncoder,
				EncodeLevel:    zapcore.CapitalLevelEncoder,
				EncodeTime:     zapcore.ISO8601TimeEncoder,
				LevelKey:       "L",
				LineEnding:     "\n",
				MessageKey:     "M",
				NameKey:        "N",
				TimeKey:        "T",
			},
		}
	default:
		config = zap.Config{
			Level:       zap.NewAtomicLevelAt(zapcore.InfoLevel),
			Development: false,
			Encoding:    "json",
			EncoderConfig: zapcore.EncoderConfig{
				CallerKey:      "caller",
				EncodeCaller:   zapcore.ShortCallerEncoder,
				EncodeDuration: zapcore.SecondsDurationEncoder,
				EncodeLevel:    zapcore.LowercaseLevelEncoder,
				EncodeName:     zapcore.FullNameEncoder,
				EncodeTime:     zapcore.ISO8601TimeEncoder,
				LevelKey:       "level",
				LineEnding:     "\n",
				MessageKey:     "message",
				NameKey:        "logger",
				StacktraceKey:  "stacktrace",
				TimeKey:        "@timestamp",
			},
		}
	}
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid log level %q", level)
		}
		config.Level.SetLevel(lvl)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, errors.Wrap(err, "building logger")
	}
	return logger, nil
}
