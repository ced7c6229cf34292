package config

import (
	"context"
	"io"
	"log/slog"

	"github.com/randalmurphal/ragchat/approach"
	"github.com/randalmurphal/ragchat/model"
	"github.com/randalmurphal/ragchat/tokens"
)

// NewLogger builds the process logger described by Log.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// LimitTable returns the default limits with Limits.Models and then
// Limits.File layered on top.
func (c *Config) LimitTable() (model.LimitTable, error) {
	table := c.baseLimits()
	if c.Limits.File == "" {
		return table, nil
	}
	file, err := model.LoadLimitsFile(c.Limits.File)
	if err != nil {
		return nil, err
	}
	return table.Merge(file), nil
}

func (c *Config) baseLimits() model.LimitTable {
	return model.DefaultLimits().Merge(c.Limits.Models)
}

// NewLimits returns the limit source for the approach. With Limits.Watch set
// the file is reloaded on change until ctx is cancelled.
func (c *Config) NewLimits(ctx context.Context, logger *slog.Logger) (model.Limits, error) {
	if !c.Limits.Watch {
		return c.LimitTable()
	}
	return model.WatchLimits(ctx, c.Limits.File, c.baseLimits(), logger)
}

// NewCounter builds the token counter described by Counter.
func (c *Config) NewCounter() tokens.Counter {
	var counter tokens.Counter
	if c.Counter.Kind == CounterEstimate {
		counter = tokens.NewEstimatingCounter()
	} else {
		counter = tokens.NewTiktokenCounter()
	}
	if c.Counter.CacheSize < 0 {
		return counter
	}
	return tokens.NewCachingCounter(counter, c.Counter.CacheSize)
}

// ApproachConfig returns the approach settings with the model resolved.
func (c *Config) ApproachConfig() approach.Config {
	cfg := c.Approach
	cfg.Model = c.ModelName()
	return cfg
}
