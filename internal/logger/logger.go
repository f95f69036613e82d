package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// profile describes how logs are encoded for one environment.
type profile struct {
	base       func() zap.Config
	level      zapcore.Level
	tune       func(*zap.Config)
	stacktrace bool
}

var profiles = map[string]profile{
	"prod": {base: zap.NewProductionConfig, level: zapcore.InfoLevel, stacktrace: true, tune: func(c *zap.Config) {
		c.EncoderConfig.TimeKey = "ts"
		c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}},
	"local":  {base: zap.NewDevelopmentConfig, level: zapcore.DebugLevel, stacktrace: true, tune: colored},
	"dev":    {base: zap.NewDevelopmentConfig, level: zapcore.DebugLevel, stacktrace: true, tune: colored},
	"docker": {base: zap.NewDevelopmentConfig, level: zapcore.InfoLevel, stacktrace: true, tune: colored},
	"test":   {base: zap.NewDevelopmentConfig, level: zapcore.WarnLevel},
	// cli keeps stdout free for command output and drops timestamps and callers.
	"cli": {base: zap.NewDevelopmentConfig, level: zapcore.WarnLevel, tune: func(c *zap.Config) {
		colored(c)
		c.EncoderConfig.TimeKey = ""
		c.EncoderConfig.CallerKey = ""
		c.DisableCaller = true
		c.OutputPaths = []string{"stderr"}
	}},
}

func colored(c *zap.Config) {
	c.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
}

// NewLogger builds the logger for env. A non-empty level (debug, info,
// warn, error) replaces the environment's default level.
func NewLogger(env, level string) (*zap.Logger, error) {
	p, ok := profiles[env]
	if !ok {
		return nil, fmt.Errorf("unknown environment %q for logger", env)
	}
	lvl := p.level
	if level != "" {
		parsed, err := ParseLevel(level)
		if err != nil {
			return nil, err
		}
		lvl = parsed
	}

	cfg := p.base()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if p.tune != nil {
		p.tune(&cfg)
	}

	var opts []zap.Option
	if p.stacktrace {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}
	l, err := cfg.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	if env == "cli" {
		return l, nil
	}
	return l.With(zap.String("env", env)), nil
}

// ParseLevel parses a level name such as "warn".
func ParseLevel(s string) (zapcore.Level, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
