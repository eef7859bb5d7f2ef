package arc

import (
	"strconv"
	"unicode"
)

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

type eofopt struct {
	stop string
}

// parsectx holds general data for parsing.
type parsectx struct {
	// stop is a string containing the runes that end the input.
	stop string
}

// StopOn tells the parser to treat any of a list of characters as the end of
// the input. The stopping rune is consumed from the source, so that the next
// call to Parse with the same source begins after it. Each rune must be a
// whitespace codepoint or a semicolon.
//
// StopOn overrides the effect of any previous StopOn in the parsing options.
// With no arguments, StopOn produces the default termination behavior, which
// is to parse to EOF.
func StopOn(chars ...rune) ParseOption {
	v := make([]rune, 0, len(chars))
	have := func(r rune) bool {
		for _, c := range v {
			if r == c {
				return true
			}
		}
		return false
	}
	for _, r := range chars {
		if r != ';' && !unicode.IsSpace(r) {
			panic("arc: cannot stop on " + strconv.QuoteRune(r))
		}
		if have(r) {
			continue
		}
		v = append(v, r)
	}
	return &eofopt{stop: string(v)}
}

func (o *eofopt) parseOption(p parsectx) parsectx {
	p.stop = o.stop
	return p
}
