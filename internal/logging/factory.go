package logging

// LogConfig configures logger creation
type LogConfig struct {
	Level           LogLevel
	EnableConsole   bool
	EnableDebug     bool
	RedactSensitive bool
	EnableTimestamp bool
}

// NewLogger creates a logger from config. With console output disabled
// the result is a no-op logger.
func NewLogger(config LogConfig) Logger {
	if !config.EnableConsole {
		return NewNoOpLogger()
	}

	level := config.Level
	if config.EnableDebug {
		level = DEBUG
	}

	return NewConsoleLogger(ConsoleLoggerConfig{
		Level:            level,
		TimestampEnabled: config.EnableTimestamp,
		RedactSensitive:  config.RedactSensitive,
	})
}
