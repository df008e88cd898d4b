package tui

import (
	"time"

	"github.com/Veraticus/life-sheet/internal/service"
	"github.com/Veraticus/life-sheet/internal/workflow"
)

// Config holds TUI configuration.
type Config struct {
	Workflow *workflow.Workflow
	Session  service.Session
	// Timeout bounds each load, save and delete.
	Timeout   time.Duration
	Width     int
	Height    int
	SkipLoad  bool
	AltScreen bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Timeout:   30 * time.Second,
		Width:     80,
		Height:    24,
		AltScreen: true,
	}
}

// WithWorkflow sets the workflow the form edits.
func WithWorkflow(w *workflow.Workflow) Option {
	return func(c *Config) {
		c.Workflow = w
	}
}

// WithSession sets the session used for loads and saves.
func WithSession(sess service.Session) Option {
	return func(c *Config) {
		c.Session = sess
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithoutLoad starts from the workflow's current plan instead of loading from the store.
func WithoutLoad() Option {
	return func(c *Config) {
		c.SkipLoad = true
	}
}

// WithInlineRendering draws in the normal screen buffer.
func WithInlineRendering() Option {
	return func(c *Config) {
		c.AltScreen = false
	}
}
