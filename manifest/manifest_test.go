package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "calc"
version = "0.1.0"

[build]
entry = "src/calc.lace"
output = "out/calc.lo"
sources = ["lib/math.lace", "lib/strings.lace"]

[run]
max-frame-depth = 64
strict = true
`)
	m, err := Load(dir)
	require.NoError(t, err)

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	require.Equal(t, abs, m.Dir)
	require.Equal(t, "calc", m.Project.Name)
	require.Equal(t, "0.1.0", m.Project.Version)
	require.Equal(t, filepath.Join(abs, "src", "calc.lace"), m.EntryPath())
	require.Equal(t, filepath.Join(abs, "out", "calc.lo"), m.OutputPath())
	require.Equal(t, []string{
		filepath.Join(abs, "lib", "math.lace"),
		filepath.Join(abs, "lib", "strings.lace"),
	}, m.SourcePaths())
	require.Equal(t, 64, m.Run.MaxFrameDepth)
	require.True(t, m.Run.Strict)
}

func TestDefaults(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		entry  string
		output string
	}{
		{"empty", ``, "main.lace", "main.lo"},
		{"entry only", "[build]\nentry = \"app/hello.lace\"", "app/hello.lace", "hello.lo"},
		{"output only", "[build]\noutput = \"x.lo\"", "main.lace", "x.lo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			require.Equal(t, tt.entry, m.Build.Entry)
			require.Equal(t, tt.output, m.Build.Output)
			require.Equal(t, 0, m.Run.MaxFrameDepth)
			require.False(t, m.Run.Strict)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"syntax", "[project\nname = 1", ""},
		{"unknown key", "[build]\nentrypoint = \"x\"", "unknown keys: build.entrypoint"},
		{"negative depth", "[run]\nmax-frame-depth = -1", "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			if tt.want != "" {
				require.ErrorContains(t, err, tt.want)
			}
		})
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[project]\nname = \"walk\"\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	m, err := FindAndLoad(nested)
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Equal(t, "walk", m.Project.Name)

	abs, err := filepath.Abs(root)
	require.NoError(t, err)
	require.Equal(t, abs, m.Dir)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	require.ErrorContains(t, err, "cannot read")
}
