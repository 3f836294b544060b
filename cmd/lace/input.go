package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lacelang/lace"
	"github.com/lacelang/lace/bytecode"
	"github.com/lacelang/lace/manifest"
	"github.com/spf13/cobra"
)

// source is a program to compile, with the options that apply to it.
type source struct {
	name string
	text string

	// Set when the input is a compiled object file
	code *bytecode.Code

	manifest *manifest.Manifest
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("code", "c", "", "code to evaluate")
	cmd.Flags().Bool("stdin", false, "read code from stdin")
}

// readSource determines the program to work on. There are four
// possibilities: --code, --stdin, a path as args[0], or the entry of the
// lace.toml manifest found above the working directory.
func (a *app) readSource(cmd *cobra.Command, args []string) (*source, error) {
	codeSet := cmd.Flags().Changed("code")
	stdinSet, _ := cmd.Flags().GetBool("stdin")
	pathSupplied := len(args) > 0

	count := 0
	for _, set := range []bool{codeSet, stdinSet, pathSupplied} {
		if set {
			count++
		}
	}
	if count > 1 {
		return nil, errors.New("multiple input sources specified")
	}

	switch {
	case codeSet:
		code, _ := cmd.Flags().GetString("code")
		return &source{name: "<code>", text: code}, nil
	case stdinSet:
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, err
		}
		return &source{name: "<stdin>", text: string(data)}, nil
	case pathSupplied:
		return readFile(args[0])
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	m, err := manifest.FindAndLoad(wd)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("no input provided and no %s found", manifest.FileName)
	}
	a.logger.Debug().Str("manifest", filepath.Join(m.Dir, manifest.FileName)).Msg("using manifest")
	src, err := readFile(m.EntryPath())
	if err != nil {
		return nil, err
	}
	src.manifest = m
	return src, nil
}

func readFile(path string) (*source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".lo" {
		code, err := bytecode.Unmarshal(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &source{name: path, code: code}, nil
	}
	return &source{name: path, text: string(data)}, nil
}

// options returns the lace options for compiling and running src. Command
// line flags take precedence over the manifest.
func (a *app) options(ctx context.Context, cmd *cobra.Command, src *source) ([]lace.Option, error) {
	opts := []lace.Option{
		lace.WithFilename(src.name),
		lace.WithStdout(cmd.OutOrStdout()),
	}
	strict := a.v.GetBool("strict")
	depth := a.v.GetInt("max-frame-depth")

	if m := src.manifest; m != nil {
		if !a.v.IsSet("strict") {
			strict = m.Run.Strict
		}
		if !a.v.IsSet("max-frame-depth") {
			depth = m.Run.MaxFrameDepth
		}
		for _, path := range m.SourcePaths() {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			lib, err := lace.CompileLibrary(ctx, string(data), lace.WithFilename(path), lace.WithTypecheck(strict))
			if err != nil {
				return nil, err
			}
			opts = append(opts, lace.WithFunctions(lib))
		}
	}
	opts = append(opts, lace.WithTypecheck(strict))
	if depth > 0 {
		opts = append(opts, lace.WithMaxFrameDepth(depth))
	}
	if vars, err := cmd.Flags().GetStringToString("var"); err == nil && len(vars) > 0 {
		opts = append(opts, lace.WithGlobals(parseVars(vars)))
	}
	return opts, nil
}

// compile returns the bytecode for src, compiling it if needed.
func (a *app) compile(ctx context.Context, src *source, opts []lace.Option) (*bytecode.Code, error) {
	if src.code != nil {
		return src.code, nil
	}
	return lace.Compile(ctx, src.text, opts...)
}

// parseVars converts --var values to ints, floats and bools where they
// parse as such, and strings otherwise.
func parseVars(vars map[string]string) map[string]any {
	globals := make(map[string]any, len(vars))
	for name, raw := range vars {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			globals[name] = i
		} else if f, err := strconv.ParseFloat(raw, 64); err == nil {
			globals[name] = f
		} else if b, err := strconv.ParseBool(strings.ToLower(raw)); err == nil {
			globals[name] = b
		} else {
			globals[name] = raw
		}
	}
	return globals
}
