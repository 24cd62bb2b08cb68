package core

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the sugared logger the bluefin tools log through,
// configured from the Logging block of the config file. Vault operations
// log key labels and secret names but never plaintext or password
// material, so the log file may be kept at a lower sensitivity than the
// database.
func NewLogger(cfg *Config) (*zap.SugaredLogger, error) {
	level, err := zapcore.ParseLevel(cfg.Logging.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("unrecognized log level %q: %w", cfg.Logging.LogLevel, err)
	}

	encoder := zap.NewDevelopmentEncoderConfig()
	encoder.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	encoder.EncodeLevel = zapcore.CapitalColorLevelEncoder

	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      true,
		DisableCaller:    !cfg.Logging.IncludeCaller,
		Encoding:         "console",
		EncoderConfig:    encoder,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	// An empty log_file_path leaves logs on stdout, next to the command
	// output the CLI prints.
	if cfg.Logging.LogFilePath != "" {
		zapCfg.OutputPaths = []string{cfg.Logging.LogFilePath}
		zapCfg.ErrorOutputPaths = []string{cfg.Logging.LogFilePath}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger.Sugar(), nil
}
