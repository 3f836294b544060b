package lace

import (
	"io"
	"maps"
	"slices"

	"github.com/lacelang/lace/builtins"
	"github.com/lacelang/lace/bytecode"
	"github.com/lacelang/lace/compiler"
	"github.com/lacelang/lace/parser"
	"github.com/lacelang/lace/typecheck"
	"github.com/lacelang/lace/vm"
)

// Option configures compilation or execution. Options that do not apply to
// a step are ignored by it, so one option list can serve Compile and Run.
type Option func(*config)

type config struct {
	filename      string
	globals       map[string]any
	functions     map[string]*bytecode.Code
	primitives    *builtins.Table
	stdout        io.Writer
	typecheck     bool
	observer      vm.Observer
	maxFrameDepth int
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		globals:   map[string]any{},
		functions: map[string]*bytecode.Code{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

func (cfg *config) filenameOr(fallback string) string {
	if cfg.filename == "" {
		return fallback
	}
	return cfg.filename
}

func (cfg *config) parserOpts() []parser.Option {
	if cfg.filename == "" {
		return nil
	}
	return []parser.Option{parser.WithFilename(cfg.filename)}
}

func (cfg *config) typecheckOpts() []typecheck.Option {
	opts := []typecheck.Option{}
	if cfg.primitives != nil {
		opts = append(opts, typecheck.WithPrimitives(cfg.primitives))
	}
	if len(cfg.functions) > 0 {
		arities := make(map[string]int, len(cfg.functions))
		for name, code := range cfg.functions {
			arities[name] = code.ParameterCount()
		}
		opts = append(opts, typecheck.WithFunctions(arities))
	}
	return opts
}

func (cfg *config) compilerOpts(source string) []compiler.Option {
	opts := []compiler.Option{compiler.WithSource(source)}
	if cfg.filename != "" {
		opts = append(opts, compiler.WithFilename(cfg.filename))
	}
	if cfg.primitives != nil {
		opts = append(opts, compiler.WithPrimitives(cfg.primitives))
	}
	if len(cfg.functions) > 0 {
		opts = append(opts, compiler.WithFunctionNames(slices.Sorted(maps.Keys(cfg.functions))...))
	}
	return opts
}

func (cfg *config) vmOpts() []vm.Option {
	var opts []vm.Option
	if len(cfg.globals) > 0 {
		opts = append(opts, vm.WithGlobals(cfg.globals))
	}
	if len(cfg.functions) > 0 {
		opts = append(opts, vm.WithFunctions(cfg.functions))
	}
	if cfg.primitives != nil {
		opts = append(opts, vm.WithPrimitives(cfg.primitives))
	}
	if cfg.stdout != nil {
		opts = append(opts, vm.WithStdout(cfg.stdout))
	}
	if cfg.observer != nil {
		opts = append(opts, vm.WithObserver(cfg.observer))
	}
	if cfg.maxFrameDepth > 0 {
		opts = append(opts, vm.WithMaxFrameDepth(cfg.maxFrameDepth))
	}
	return opts
}

// WithFilename sets the filename reported in errors and recorded on the
// compiled code.
func WithFilename(filename string) Option {
	return func(cfg *config) {
		cfg.filename = filename
	}
}

// WithGlobals provides global variables. This option is additive. If the
// same key is supplied more than once, the last value wins.
func WithGlobals(globals map[string]any) Option {
	return func(cfg *config) {
		maps.Copy(cfg.globals, globals)
	}
}

// WithFunctions provides global functions, for example from
// CompileLibrary. This option is additive.
func WithFunctions(functions map[string]*bytecode.Code) Option {
	return func(cfg *config) {
		maps.Copy(cfg.functions, functions)
	}
}

// WithPrimitives replaces the default primitive table. The same table must
// be given to Compile and Run.
func WithPrimitives(table *builtins.Table) Option {
	return func(cfg *config) {
		cfg.primitives = table
	}
}

// WithStdout redirects the output of writeln and print.
func WithStdout(w io.Writer) Option {
	return func(cfg *config) {
		cfg.stdout = w
	}
}

// WithTypecheck makes typecheck diagnostics fatal at compile time.
func WithTypecheck(enabled bool) Option {
	return func(cfg *config) {
		cfg.typecheck = enabled
	}
}

// WithObserver sets an observer for VM execution events.
func WithObserver(observer vm.Observer) Option {
	return func(cfg *config) {
		cfg.observer = observer
	}
}

// WithMaxFrameDepth limits the call stack depth.
func WithMaxFrameDepth(depth int) Option {
	return func(cfg *config) {
		cfg.maxFrameDepth = depth
	}
}
