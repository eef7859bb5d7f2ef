package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zephyrtronium/arc"
)

// lineErrors is the result of a run in which some lines failed. Each failure
// has already been reported.
type lineErrors struct {
	failed, total int
}

func (err *lineErrors) Error() string {
	return fmt.Sprintf("%d of %d lines failed", err.failed, err.total)
}

// session evaluates lines in one context and reports their results.
type session struct {
	ctx    *arc.Context
	out    *printer
	failed int
	total  int
}

func run(cmd *cobra.Command, v *viper.Viper, f *flags, args []string) error {
	ctx, err := newContext(v, f.given)
	if err != nil {
		return err
	}
	p, err := newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), v.GetString("output"), v.GetBool("color"), f.echo)
	if err != nil {
		return err
	}
	s := &session{ctx: ctx, out: p}

	switch {
	case f.in != "":
		in, err := openInput(f.in, cmd.InOrStdin())
		if err != nil {
			return err
		}
		err = s.lines(in)
		if file, ok := in.(*os.File); ok && file != os.Stdin {
			file.Close()
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", f.in, err)
		}
	case len(args) == 0 && interactive(cmd.InOrStdin()):
		return repl(cmd, v, s)
	case len(args) == 0:
		if err := s.lines(cmd.InOrStdin()); err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
	}
	for _, arg := range args {
		s.line(arg)
	}

	if err := p.flush(); err != nil {
		return err
	}
	if s.failed > 0 {
		return &lineErrors{failed: s.failed, total: s.total}
	}
	return nil
}

// newContext creates an evaluation context from configuration and applies
// name=expr definitions to it in order.
func newContext(v *viper.Viper, given []string) (*arc.Context, error) {
	k, err := arc.ParseKernel(v.GetString("kernel"))
	if err != nil {
		return nil, err
	}
	opts := []arc.ContextOption{
		arc.WithKernel(k),
		arc.MaxDepth(v.GetInt("max-depth")),
		arc.WithLogger(log.Logger),
	}
	if v.GetBool("no-prelude") {
		opts = append(opts, arc.NoPrelude())
	}
	ctx := arc.NewContext(opts...)
	for _, g := range given {
		name, src, ok := strings.Cut(g, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf(`variable definitions must be "name=expr", not %q`, g)
		}
		vals, err := ctx.EvalString(src)
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", name, err)
		}
		ctx.Set(name, vals...)
		log.Debug().Str("name", name).Int("values", len(vals)).Msg("given")
	}
	return ctx, nil
}

func openInput(name string, stdin io.Reader) (io.Reader, error) {
	if name == "-" {
		return stdin, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	return f, nil
}

// interactive reports whether r is a terminal.
func interactive(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// lines evaluates each line of r.
func (s *session) lines(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s.line(strings.TrimSuffix(sc.Text(), "\r"))
	}
	return sc.Err()
}

// line evaluates the ;-separated statements of src in order. Blank
// statements are skipped.
func (s *session) line(src string) {
	rd := strings.NewReader(src)
	for rd.Len() > 0 {
		start := len(src) - rd.Len()
		e, err := arc.Parse(rd, arc.StopOn(';'))
		text := strings.TrimSpace(strings.TrimSuffix(src[start:len(src)-rd.Len()], ";"))
		if text == "" {
			continue
		}
		s.total++
		var vals []arc.Value
		if err == nil {
			vals, err = s.ctx.Eval(e)
		}
		if err != nil {
			s.failed++
		}
		s.out.result(text, e, vals, err)
	}
}
