package enhance

// DefaultMaxDepth is the expansion depth limit used when none is set.
const DefaultMaxDepth = 100

// Config configures a Renderer.
type Config struct {
	// MaxDepth bounds how deeply component output may nest further
	// components. Zero or negative means DefaultMaxDepth.
	MaxDepth int

	// PropagateState passes the initial state to every invocation instead
	// of only the components found in the input markup.
	PropagateState bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		MaxDepth: DefaultMaxDepth,
	}
}

// Option configures a Renderer.
type Option func(*Config)

// WithMaxDepth sets the expansion depth limit.
func WithMaxDepth(n int) Option {
	return func(c *Config) {
		c.MaxDepth = n
	}
}

// WithStatePropagation controls whether nested components receive the
// initial state.
func WithStatePropagation(enabled bool) Option {
	return func(c *Config) {
		c.PropagateState = enabled
	}
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}
