package evaluator

import (
	"log/slog"
	"sandpy/internal/object"
	"sandpy/internal/ops"
	"sandpy/internal/scope"
)

const DefaultMaxCallDepth = 200

// Config tunes a Context. Zero values select the defaults.
type Config struct {
	Registry      *ops.Registry
	MaxAllocBytes int64
	MaxCallDepth  int
	Logger        *slog.Logger
}

// Context is the state of one execution: its arena, fuel, scope chain and
// call depth. A Context belongs to a single goroutine and is discarded once
// the execution ends.
type Context struct {
	Arena    *object.Arena
	Chain    *scope.Chain
	Registry *ops.Registry
	Logger   *slog.Logger

	ttl          int64
	fuel         int64
	callDepth    int
	maxCallDepth int
}

// NewContext builds a context with ttl units of fuel. A negative ttl is
// treated as zero.
func NewContext(ttl int64, cfg Config) *Context {
	if ttl < 0 {
		ttl = 0
	}
	if cfg.Registry == nil {
		cfg.Registry = ops.Default()
	}
	if cfg.MaxCallDepth <= 0 {
		cfg.MaxCallDepth = DefaultMaxCallDepth
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Context{
		Arena:        object.NewArena(cfg.MaxAllocBytes),
		Chain:        scope.New(),
		Registry:     cfg.Registry,
		Logger:       cfg.Logger,
		ttl:          ttl,
		fuel:         ttl,
		maxCallDepth: cfg.MaxCallDepth,
	}
}

// Consume takes n units of fuel. When n exceeds what is left the counter is
// not touched and a Timeout error is returned.
func (c *Context) Consume(n int64) error {
	if n < 0 {
		return object.NewError(object.ValueError, "cannot consume a negative amount of fuel (%d)", n)
	}
	if n > c.fuel {
		return object.NewTimeoutError(n, c.fuel)
	}
	c.fuel -= n
	return nil
}

// ConsumeOne is the per-node charge.
func (c *Context) ConsumeOne() error {
	return c.Consume(1)
}

func (c *Context) Remaining() int64 { return c.fuel }
func (c *Context) Used() int64      { return c.ttl - c.fuel }
func (c *Context) CallDepth() int   { return c.callDepth }

func (c *Context) enterCall() error {
	if c.callDepth >= c.maxCallDepth {
		return object.NewError(object.RecursionLimit, "maximum call depth of %d exceeded", c.maxCallDepth)
	}
	c.callDepth++
	return nil
}

func (c *Context) leaveCall() {
	c.callDepth--
}
