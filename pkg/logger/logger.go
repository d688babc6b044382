package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is a no-op until InitLogger runs so packages can log unconditionally.
var Log = zap.NewNop()

// InitLogger builds the global logger. Output goes to stdout unless outputs
// names other sinks ("stderr", file paths).
func InitLogger(mode string, outputs ...string) {
	var config zap.Config

	if mode == "release" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}
	config.OutputPaths = outputs
	var err error
	Log, err = config.Build()
	if err != nil {
		os.Exit(1)
	}
	zap.ReplaceGlobals(Log)
}
