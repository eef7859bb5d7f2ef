package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const replHelp = `Enter an expression to evaluate it. Definitions persist between lines.
Commands:
  :help   show this message
  :vars   list global definitions
  :reset  forget definitions, keeping the prelude
  :quit   exit (or Ctrl+D)
`

// repl runs an interactive session until EOF or :quit.
func repl(cmd *cobra.Command, v *viper.Viper, s *session) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "arc, version %s\n", Version)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if hist := v.GetString("history"); hist != "" {
		if f, err := os.Open(hist); err == nil {
			_, _ = ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			f, err := os.Create(hist)
			if err != nil {
				log.Warn().Err(err).Str("history", hist).Msg("could not save history")
				return
			}
			_, _ = ln.WriteHistory(f)
			f.Close()
		}()
	}

	prompt := v.GetString("prompt")
	for {
		line, err := ln.Prompt(prompt)
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			continue
		case errors.Is(err, io.EOF):
			fmt.Fprintln(out)
			return nil
		case err != nil:
			return fmt.Errorf("reading input: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)
		if strings.HasPrefix(line, ":") {
			if s.command(out, line) {
				return nil
			}
			continue
		}
		s.line(line)
		if err := s.out.flush(); err != nil {
			return err
		}
	}
}

// command runs a REPL command. It returns true if the session should end.
func (s *session) command(w io.Writer, line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case ":quit", ":q", ":exit":
		return true
	case ":help", ":h", ":?":
		fmt.Fprint(w, replHelp)
	case ":vars":
		for _, name := range s.ctx.Names() {
			vals, _ := s.ctx.Lookup(name)
			t := make([]string, len(vals))
			for i, v := range vals {
				t[i] = v.String()
			}
			fmt.Fprintf(w, "%s = %s\n", name, strings.Join(t, ", "))
		}
	case ":reset":
		s.ctx.Reset()
		log.Debug().Msg("reset global scope")
	default:
		fmt.Fprintf(w, "unknown command %s. Type :help for a list.\n", line)
	}
	return false
}
