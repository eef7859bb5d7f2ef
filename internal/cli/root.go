package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flags holds the command line options that are not configuration keys.
type flags struct {
	cfgFile string
	given   []string
	in      string
	echo    bool
}

// Execute runs the arc command with the process arguments. It is called by
// main.main.
func Execute() error {
	cmd := newRootCmd(viper.New())
	err := cmd.Execute()
	var lines *lineErrors
	if err != nil && !errors.As(err, &lines) {
		// Failed lines have already been reported as they happened.
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

// newRootCmd creates the command tree. Configuration is read into v.
func newRootCmd(v *viper.Viper) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "arc [expr...]",
		Short: "arc - exact rational complex calculator",
		Long: `arc evaluates expressions over complex numbers with exact rational parts.

Each argument is evaluated as one line, in order, with definitions carrying
over from line to line. Use ; to put several lines in one argument. With no
arguments, arc reads lines from standard input, or starts an interactive
session when standard input is a terminal.`,
		Example: `  arc '3/4 + i/2'
  arc 'f x = x^2 + 1' 'f (1 +/- i)'
  arc --given 'n=5' 'n!'
  arc --in lines.txt --output json`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(v, f.cfgFile); err != nil {
				return err
			}
			initLogging(v, cmd.ErrOrStderr())
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, v, &f, args)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.cfgFile, "config", "", "config file (default is $HOME/.arc/config.yaml)")
	pf.String("log-level", "disabled", "log level (debug, info, warn, error)")
	pf.String("output", "text", "output format (text, json, yaml)")
	_ = v.BindPFlag("log-level", pf.Lookup("log-level"))
	_ = v.BindPFlag("output", pf.Lookup("output"))

	fl := cmd.Flags()
	fl.String("kernel", "reference", "arithmetic kernel (reference, textbook)")
	fl.Int("max-depth", 0, "limit on evaluation nesting (default 10000)")
	fl.Bool("no-prelude", false, "start without the default definitions")
	fl.Bool("color", true, "color results and errors on terminals")
	fl.StringArrayVar(&f.given, "given", nil, "name=expr variable definition (any number of times)")
	fl.StringVar(&f.in, "in", "", "input file, one expression per line (- for stdin)")
	fl.BoolVar(&f.echo, "echo", false, "print parse trees")
	for _, k := range []string{"kernel", "max-depth", "no-prelude", "color"} {
		_ = v.BindPFlag(k, fl.Lookup(k))
	}
	v.SetDefault("prompt", "> ")
	v.SetDefault("history", historyPath())

	cmd.AddCommand(newVersionCmd(v))
	return cmd
}

// initConfig reads in the config file and environment variables.
func initConfig(v *viper.Viper, cfgFile string) error {
	_ = godotenv.Load()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".arc"))
		}
		v.AddConfigPath(".arc")
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("ARC")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// initLogging configures the global logger.
func initLogging(v *viper.Viper, w io.Writer) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	switch v.GetString("log-level") {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.Disabled)
	}

	if v.GetString("output") == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".arc_history")
}
