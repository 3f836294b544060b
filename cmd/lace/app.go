package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/gofrs/uuid"
	"github.com/mattn/go-isatty"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app holds the state shared by all commands of one invocation.
type app struct {
	v      *viper.Viper
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger zerolog.Logger
	runID  string
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		v:      viper.New(),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: zerolog.Nop(),
	}
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lace",
		Short:         "Compile and run Lace programs",
		Version:       fmt.Sprintf("%s (%s, %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.lace.yaml)")
	flags.String("log-level", "warn", "log level (trace, debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringP("output", "o", "text", "output format (text, json)")
	flags.Bool("strict", false, "treat typecheck diagnostics as errors")
	flags.Int("max-frame-depth", 0, "maximum call depth (0 for the default)")
	for _, name := range []string{"log-level", "log-format", "no-color", "output", "strict", "max-frame-depth"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}
	_ = a.v.BindPFlag("config", flags.Lookup("config"))

	cmd.AddCommand(
		a.runCmd(),
		a.buildCmd(),
		a.disCmd(),
		a.checkCmd(),
		a.evalCmd(),
		a.batchCmd(),
		a.versionCmd(),
	)
	return cmd
}

// init loads the config file and environment, then configures color and
// logging.
func (a *app) init() error {
	a.v.SetEnvPrefix("lace")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if cfgFile := a.v.GetString("config"); cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
	} else if home, err := homedir.Dir(); err == nil {
		a.v.SetConfigFile(filepath.Join(home, ".lace.yaml"))
		if err := a.v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	if !a.useColor() {
		color.NoColor = true
	}

	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	a.runID = id.String()
	logger, err := newLogger(a.stderr, a.v.GetString("log-level"), a.v.GetString("log-format"), !a.useColor())
	if err != nil {
		return err
	}
	a.logger = logger.With().Str("run_id", a.runID).Logger()
	return nil
}

// useColor reports whether output may be colored.
func (a *app) useColor() bool {
	if a.v.GetBool("no-color") || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := a.stdout.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newLogger(w io.Writer, level, format string, noColor bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", level)
	}
	switch strings.ToLower(format) {
	case "json":
	case "console", "":
		w = zerolog.ConsoleWriter{Out: w, NoColor: noColor, TimeFormat: "15:04:05"}
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q", format)
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
