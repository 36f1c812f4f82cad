package logging

import (
	"slices"
	"time"
)

const (
	SinkConsole = "console"
	SinkJSON    = "json"
	SinkMemory  = "memory"
)

type Config struct {
	EnabledSinks     []string
	BufferSize       int
	MinimumSeverity  Severity
	Fields           map[string]any
	JSON             JSONConfig
	Console          ConsoleConfig
	DropWarnInterval time.Duration
}

type JSONConfig struct {
	FilePath      string
	FlushInterval time.Duration
}

type ConsoleConfig struct {
	// Development switches the zap console sink to the human readable encoder.
	Development bool
}

func DefaultConfig() Config {
	return Config{
		EnabledSinks:     []string{SinkConsole},
		BufferSize:       512,
		MinimumSeverity:  SeverityInfo,
		DropWarnInterval: 5 * time.Second,
		JSON: JSONConfig{
			FlushInterval: 2 * time.Second,
		},
	}
}

// Normalized fills zero values with defaults.
func (c Config) Normalized() Config {
	defaults := DefaultConfig()
	if c.BufferSize <= 0 {
		c.BufferSize = defaults.BufferSize
	}
	if c.DropWarnInterval <= 0 {
		c.DropWarnInterval = defaults.DropWarnInterval
	}
	if c.MinimumSeverity < SeverityDebug || c.MinimumSeverity > SeverityError {
		c.MinimumSeverity = defaults.MinimumSeverity
	}
	return c
}

func (c Config) HasSink(name string) bool {
	return slices.Contains(c.EnabledSinks, name)
}

func (c Config) CloneFields() map[string]any {
	if len(c.Fields) == 0 {
		return nil
	}
	cloned := make(map[string]any, len(c.Fields))
	for k, v := range c.Fields {
		cloned[k] = v
	}
	return cloned
}
