package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunArgs(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"single", []string{"3/4 + i/2"}, "3/4 + i/2\n"},
		{"definitions", []string{"f x = x^2 + 1", "f (1 +/- i)"}, "(x) => ([(x) ^ (2)] + [1])\n1 + 2i, 1 - 2i\n"},
		{"statements", []string{"x = 2; x^2; ; x!"}, "2\n4\n2\n"},
		{"trailing", []string{"1;"}, "1\n"},
		{"nothing", []string{"y"}, "\n"},
		{"given", []string{"--given", "n=5", "n!"}, "120\n"},
		{"givens", []string{"--given", "a=1", "--given", "b = a + 1", "a + b"}, "3\n"},
		{"multigiven", []string{"--given=s=+/-1", "s"}, "1, -1\n"},
		{"textbook", []string{"--kernel=textbook", "1/2 + 1/3"}, "5/6\n"},
		{"reference", []string{"1/2 + 1/3"}, "undefined\n"},
		{"noprelude", []string{"--no-prelude", "sq 3"}, "\n"},
		{"echo", []string{"--echo", "1+2"}, "([1] + [2]) : 3\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, errout, err := executeCommand(t, "", c.args...)
			require.NoError(t, err)
			assert.Equal(t, c.want, out)
			assert.Empty(t, errout)
		})
	}
}

func TestRunFailedLines(t *testing.T) {
	out, errout, err := executeCommand(t, "", "1/0", "2", "1 +")
	var le *lineErrors
	require.True(t, errors.As(err, &le), "wrong error %v", err)
	assert.Equal(t, 2, le.failed)
	assert.Equal(t, 3, le.total)
	assert.EqualError(t, err, "2 of 3 lines failed")
	assert.Equal(t, "2\n", out)
	assert.Contains(t, errout, "3: division by zero in /")
	assert.Contains(t, errout, "number expected at end")
}

func TestRunMaxDepth(t *testing.T) {
	_, errout, err := executeCommand(t, "", "--max-depth=30", "f x = f x; f 1")
	assert.Error(t, err)
	assert.Contains(t, errout, "deeper than 30 levels")
}

func TestRunBadSettings(t *testing.T) {
	cases := []struct {
		name string
		args []string
		msg  string
	}{
		{"kernel", []string{"--kernel=fast", "1"}, "unknown kernel"},
		{"output", []string{"--output=xml", "1"}, "unknown output format"},
		{"given", []string{"--given", "n", "1"}, "name=expr"},
		{"givenname", []string{"--given", "=1", "1"}, "name=expr"},
		{"givenerror", []string{"--given", "n=1/0", "1"}, "setting n"},
		{"input", []string{"--in", filepath.Join("testdata", "missing.txt")}, "opening input"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, _, err := executeCommand(t, "", c.args...)
			assert.ErrorContains(t, err, c.msg)
			assert.Empty(t, out)
		})
	}
}

func TestRunStdin(t *testing.T) {
	out, _, err := executeCommand(t, "1 + 1\r\n\nx = 2 * 3\nx/4\n")
	require.NoError(t, err)
	assert.Equal(t, "2\n6\n3/2\n", out)
}

func TestRunInputFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "lines.txt")
	require.NoError(t, os.WriteFile(name, []byte("sq 4\ndouble i\n"), 0o644))
	out, _, err := executeCommand(t, "", "--in", name)
	require.NoError(t, err)
	assert.Equal(t, "16\n2i\n", out)

	// Arguments run after the file, in the same context.
	require.NoError(t, os.WriteFile(name, []byte("k = 3\n"), 0o644))
	out, _, err = executeCommand(t, "", "--in", name, "k!")
	require.NoError(t, err)
	assert.Equal(t, "3\n6\n", out)

	out, _, err = executeCommand(t, "half 5\n", "--in", "-")
	require.NoError(t, err)
	assert.Equal(t, "5/2\n", out)
}

func TestNewContext(t *testing.T) {
	v := viper.New()
	v.Set("kernel", "textbook")
	v.Set("max-depth", 0)
	ctx, err := newContext(v, []string{"a=1", "b=a+1"})
	require.NoError(t, err)
	b, ok := ctx.Lookup("b")
	require.True(t, ok)
	require.Len(t, b, 1)
	assert.Equal(t, "2", b[0].String())
	assert.Contains(t, ctx.Names(), "sq")

	v.Set("no-prelude", true)
	ctx, err = newContext(v, nil)
	require.NoError(t, err)
	assert.Empty(t, ctx.Names())
}

func TestInteractive(t *testing.T) {
	f, err := os.Open(t.TempDir())
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, interactive(f))
	assert.False(t, interactive(nil))
}
