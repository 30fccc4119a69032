// Package sandpy runs small Python-like scripts in a sandbox. Every run gets
// a step budget (ttl), its own arena and its own scopes; nothing outlives
// the call except the exported bindings.
//
//	b, err := sandpy.Exec("x = 1 + 2", 100)
//	if err != nil {
//		return err
//	}
//	x, _ := b.Get("x") // int64(3)
package sandpy

import (
	"errors"
	"fmt"
	"log/slog"
	"sandpy/internal/evaluator"
	"sandpy/internal/object"
	"sandpy/internal/ops"
	"sandpy/internal/parser"
	"sort"
)

// Options tunes ExecWith. The zero value matches Exec.
type Options struct {
	// Registry resolves operators. Defaults to the process-wide registry.
	Registry *ops.Registry
	// MaxAllocBytes caps the arena of one run; 0 means unlimited.
	MaxAllocBytes int64
	// MaxCallDepth caps guest call nesting; 0 selects the default.
	MaxCallDepth int
	// Globals are bound in the global scope before the script runs.
	Globals map[string]any
	// Aliases maps extra names onto globals. An alias shares the cell of
	// its target, so writes through either name are seen by both.
	Aliases map[string]string
	Logger  *slog.Logger
}

// Exec parses and runs source with ttl units of fuel.
func Exec(source string, ttl int64) (*Bindings, error) {
	return ExecWith(source, ttl, Options{})
}

// ExecWith is Exec with options. On failure the error is always an
// *ExecError and no bindings are returned.
func ExecWith(source string, ttl int64, opts Options) (*Bindings, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	module, err := parser.Parse(source)
	if err != nil {
		var perr *parser.Error
		if !errors.As(err, &perr) {
			perr = &parser.Error{Messages: []string{err.Error()}}
		}
		logger.Debug("parse failed", slog.Any("messages", perr.Messages), slog.Bool("incomplete", perr.Incomplete))
		return nil, &ExecError{Kind: ParseFailure, Parse: perr}
	}

	ctx := evaluator.NewContext(ttl, evaluator.Config{
		Registry:      opts.Registry,
		MaxAllocBytes: opts.MaxAllocBytes,
		MaxCallDepth:  opts.MaxCallDepth,
		Logger:        logger,
	})
	defer ctx.Arena.Release()

	if err := bindGlobals(ctx, opts.Globals, opts.Aliases); err != nil {
		return nil, executionFailure(source, err)
	}

	logger.Debug("exec begin",
		slog.Int64("ttl", ttl),
		slog.Int("statements", len(module.Statements)))

	if err := evaluator.New(ctx).EvalModule(module); err != nil {
		failure := executionFailure(source, err)
		logger.Debug("exec failed",
			slog.String("kind", failure.Execution.Kind.String()),
			slog.Int64("fuel-used", ctx.Used()),
			slog.String("arena", ctx.Arena.String()))
		return nil, failure
	}

	bindings := exportScope(ctx.Chain.Global())
	logger.Debug("exec done",
		slog.Int64("fuel-used", ctx.Used()),
		slog.Int("bindings", bindings.Len()),
		slog.String("arena", ctx.Arena.String()))
	return bindings, nil
}

func bindGlobals(ctx *evaluator.Context, globals map[string]any, aliases map[string]string) error {
	for _, name := range sortedKeys(globals) {
		v, err := object.Import(ctx.Arena, globals[name])
		if err != nil {
			return fmt.Errorf("global %q: %w", name, err)
		}
		ctx.Chain.Bind(name, v)
	}
	for _, name := range sortedKeys(aliases) {
		if err := ctx.Chain.Alias(name, aliases[name]); err != nil {
			return fmt.Errorf("alias %q: %w", name, err)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func executionFailure(source string, err error) *ExecError {
	var execErr *object.ExecutionError
	if !errors.As(err, &execErr) {
		execErr = object.NewError(object.Internal, "%v", err)
	}
	if execErr.Pos >= 0 && execErr.Line == 0 {
		execErr.Line, execErr.Column = parser.GetLineAndColumn(source, execErr.Pos)
	}
	return &ExecError{Kind: ExecutionFailure, Execution: execErr}
}
