package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/arc"
)

// record is the result of one line in json and yaml output.
type record struct {
	Input  string        `json:"input" yaml:"input"`
	Values []valueRecord `json:"values" yaml:"values"`
	Error  string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// valueRecord describes one value. Re and Im are the reduced parts of a
// defined complex number.
type valueRecord struct {
	Kind string `json:"kind" yaml:"kind"`
	Text string `json:"text" yaml:"text"`
	Re   string `json:"re,omitempty" yaml:"re,omitempty"`
	Im   string `json:"im,omitempty" yaml:"im,omitempty"`
}

func newValueRecord(v arc.Value) valueRecord {
	r := valueRecord{Kind: arc.KindOf(v), Text: v.String()}
	if x, ok := v.(arc.Complex); ok && x.Defined() {
		r.Re = x.Real().RatString()
		r.Im = x.Imag().RatString()
	}
	return r
}

// printer writes line results in the configured format. Text results are
// written immediately; json and yaml records are collected until flush.
type printer struct {
	w, errw io.Writer
	format  string
	echo    bool
	value   *color.Color
	fail    *color.Color
	records []record
}

func newPrinter(w, errw io.Writer, format string, colored, echo bool) (*printer, error) {
	switch format {
	case "text", "json", "yaml":
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	p := printer{
		w:      w,
		errw:   errw,
		format: format,
		echo:   echo,
		value:  color.New(color.FgGreen),
		fail:   color.New(color.FgRed),
	}
	if !colored || !terminal(w) {
		p.value.DisableColor()
	}
	if !colored || !terminal(errw) {
		p.fail.DisableColor()
	}
	return &p, nil
}

func terminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// result reports the outcome of one line. e is nil if the line did not
// parse.
func (p *printer) result(input string, e *arc.Expr, vals []arc.Value, err error) {
	if p.format != "text" {
		r := record{Input: input, Values: make([]valueRecord, 0, len(vals))}
		for _, v := range vals {
			r.Values = append(r.Values, newValueRecord(v))
		}
		if err != nil {
			r.Error = err.Error()
		}
		p.records = append(p.records, r)
		return
	}
	if p.echo && e != nil {
		fmt.Fprintf(p.w, "%v : ", e)
	}
	if err != nil {
		if p.echo && e != nil {
			fmt.Fprintln(p.w)
		}
		p.fail.Fprintln(p.errw, err)
		return
	}
	s := make([]string, len(vals))
	for i, v := range vals {
		s[i] = v.String()
	}
	p.value.Fprintln(p.w, strings.Join(s, ", "))
}

// flush writes collected records.
func (p *printer) flush() error {
	if len(p.records) == 0 {
		return nil
	}
	var err error
	switch p.format {
	case "json":
		err = printJSON(p.w, p.records)
	case "yaml":
		err = printYAML(p.w, p.records)
	}
	p.records = p.records[:0]
	return err
}

// printJSON outputs data as formatted JSON.
func printJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// printYAML outputs data as YAML.
func printYAML(w io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return encoder.Close()
}
