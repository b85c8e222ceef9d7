package logger

import (
	"io"
	"os"
	"ranked-typing/internal/config"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gopkg.in/natefinch/lumberjack.v2"
)

func New(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	logger := SetLevel(level, writer(cfg))

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", level.String()).
		Str("flagged_match_policy", string(cfg.FlaggedMatchPolicy)).
		Dur("queue_entry_ttl", cfg.QueueEntryTTL).
		Dur("decay_interval", cfg.DecayInterval).
		Msg("configuration loaded")

	return logger
}

func SetLevel(level zerolog.Level, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(w).
		With().
		Timestamp().
		Caller().
		Logger()

	return logger.Level(level)
}

func writer(cfg *config.Config) io.Writer {
	if cfg.LogFile == "" {
		return os.Stdout
	}
	return zerolog.MultiLevelWriter(os.Stdout, &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    100, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	})
}

var Module = fx.Provide(New)
