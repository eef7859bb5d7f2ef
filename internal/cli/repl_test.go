package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/arc"
)

func newTestSession(t *testing.T) (*session, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	p, err := newPrinter(&out, &out, "text", false, false)
	require.NoError(t, err)
	return &session{ctx: arc.NewContext(), out: p}, &out
}

func TestSessionCommands(t *testing.T) {
	s, out := newTestSession(t)

	assert.False(t, s.command(out, ":help"))
	assert.Contains(t, out.String(), ":vars")
	out.Reset()

	s.line("a = 1; b = +/-2")
	assert.Equal(t, "1\n2, -2\n", out.String())
	out.Reset()

	assert.False(t, s.command(out, ":vars"))
	assert.Contains(t, out.String(), "a = 1\n")
	assert.Contains(t, out.String(), "b = 2, -2\n")
	assert.Contains(t, out.String(), "sq = (x) => ([x] ^ [2])\n")
	out.Reset()

	assert.False(t, s.command(out, ":reset"))
	assert.Empty(t, out.String())
	assert.False(t, s.command(out, ":vars"))
	assert.NotContains(t, out.String(), "a = ")
	assert.Contains(t, out.String(), "half = ")
	out.Reset()

	assert.False(t, s.command(out, ":bogus"))
	assert.Equal(t, "unknown command :bogus. Type :help for a list.\n", out.String())

	for _, q := range []string{":quit", ":q", ":exit", " :QUIT "} {
		assert.True(t, s.command(out, q), q)
	}
	assert.Equal(t, 2, s.total)
	assert.Zero(t, s.failed)
}

func TestSessionLineCounts(t *testing.T) {
	s, out := newTestSession(t)
	s.line("1; 1/0; (")
	s.line("")
	assert.Equal(t, 3, s.total)
	assert.Equal(t, 2, s.failed)
	assert.Contains(t, out.String(), "1\n")
}
