package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/funcli/internal/clierr"
	"github.com/vk/funcli/internal/registry"
)

type mainArgs struct {
	Verbose bool `funcli:"verbose" default:"false"`
}

type addArgs struct {
	A int `funcli:"a"`
	B int `funcli:"b"`
}

type countArgs struct {
	N int `funcli:"n"`
}

// fixture builds a main command with a verbose option plus add and count
// subcommands. invoked records which handlers actually ran.
func fixture(t *testing.T) (*registry.Registry, map[string]int) {
	t.Helper()
	invoked := make(map[string]int)

	reg := registry.New()
	require.NoError(t, reg.RegisterMain(func(ctx context.Context, in *mainArgs) (string, error) {
		invoked["main"]++
		return fmt.Sprintf("verbose is %t", in.Verbose), nil
	}))
	require.NoError(t, reg.RegisterSubcommand("add", func(ctx context.Context, in *addArgs) (int, error) {
		invoked["add"]++
		return in.A + in.B, nil
	}))
	require.NoError(t, reg.RegisterSubcommand("count", func(ctx context.Context, in *countArgs) iter.Seq2[any, error] {
		invoked["count"]++
		return func(yield func(any, error) bool) {
			for i := 1; i <= in.N; i++ {
				if !yield(i, nil) {
					return
				}
			}
		}
	}))
	reg.Seal()
	return reg, invoked
}

func run(t *testing.T, reg *registry.Registry, tokens []string) (*Dispatcher, string, error) {
	t.Helper()
	var buf bytes.Buffer
	d := New(reg, "prog", &buf)
	err := d.Run(context.Background(), tokens)
	return d, buf.String(), err
}

func TestMainOutputPrecedesSubcommand(t *testing.T) {
	reg, invoked := fixture(t)
	d, out, err := run(t, reg, []string{"add", "3", "2"})
	require.NoError(t, err)

	assert.Equal(t, "verbose is false\n5\n", out)
	assert.Equal(t, Complete, d.State())
	assert.Equal(t, 1, invoked["main"])
	assert.Equal(t, 1, invoked["add"])
}

func TestSubcommandStageSkipped(t *testing.T) {
	reg, invoked := fixture(t)
	d, out, err := run(t, reg, []string{"--verbose", "true"})
	require.NoError(t, err)

	assert.Equal(t, "verbose is true\n", out)
	assert.Equal(t, Complete, d.State())
	assert.Zero(t, invoked["add"])
	assert.Zero(t, invoked["count"])
}

func TestStreamingSubcommand(t *testing.T) {
	reg, _ := fixture(t)
	_, out, err := run(t, reg, []string{"count", "3"})
	require.NoError(t, err)
	assert.Equal(t, "verbose is false\n1\n2\n3\n", out)
}

func TestUnknownSubcommand(t *testing.T) {
	reg, invoked := fixture(t)
	d, out, err := run(t, reg, []string{"frobnicate"})
	require.Error(t, err)

	var unknown *clierr.UnknownSubcommand
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "frobnicate", unknown.Name)
	assert.Equal(t, Failed, d.State())
	assert.Empty(t, out, "no handler output before the failure")
	assert.Zero(t, invoked["main"], "no handler is invoked on a failed lookup")
}

func TestUnknownSubcommandSuggestion(t *testing.T) {
	reg, _ := fixture(t)
	_, _, err := run(t, reg, []string{"ad"})

	var unknown *clierr.UnknownSubcommand
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "add", unknown.Suggestion)
	assert.Contains(t, unknown.Error(), "did you mean")
}

func TestBinderFailureStopsDispatch(t *testing.T) {
	reg, invoked := fixture(t)
	d, out, err := run(t, reg, []string{"add", "3"})

	var missing *clierr.MissingArgument
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "b", missing.Name)
	assert.Equal(t, Failed, d.State())
	assert.Empty(t, out)
	assert.Zero(t, invoked["main"], "main must not run when the invocation is doomed")
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	reg, _ := fixture(t)
	d, _, err := run(t, reg, []string{"--bogus", "x"})

	var exit *clierr.Exit
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 2, exit.Code)
	assert.Equal(t, Failed, d.State())
}

func TestHelp(t *testing.T) {
	t.Run("program help", func(t *testing.T) {
		reg, invoked := fixture(t)
		d, out, err := run(t, reg, []string{"help"})
		require.NoError(t, err)
		assert.Equal(t, Complete, d.State())
		assert.Contains(t, out, "Commands:")
		assert.Contains(t, out, "add")
		assert.Zero(t, invoked["main"])
	})

	t.Run("command help", func(t *testing.T) {
		reg, _ := fixture(t)
		_, out, err := run(t, reg, []string{"help", "add"})
		require.NoError(t, err)
		assert.Contains(t, out, "add <a> <b>")
	})

	t.Run("help for an unknown command", func(t *testing.T) {
		reg, _ := fixture(t)
		_, _, err := run(t, reg, []string{"help", "bogus"})
		var unknown *clierr.UnknownSubcommand
		require.ErrorAs(t, err, &unknown)
	})

	t.Run("help flag", func(t *testing.T) {
		reg, invoked := fixture(t)
		d, out, err := run(t, reg, []string{"--help"})
		require.NoError(t, err)
		assert.Equal(t, Complete, d.State())
		assert.True(t, strings.HasPrefix(out, "Usage:"))
		assert.Zero(t, invoked["main"])
	})
}

func TestSubcommandsWithoutMain(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.RegisterSubcommand("add", func(ctx context.Context, in *addArgs) (int, error) {
		return in.A + in.B, nil
	}))
	reg.Seal()

	_, out, err := run(t, reg, []string{"add", "3", "2"})
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)
}

func TestEmptyRegistry(t *testing.T) {
	reg := registry.New()
	reg.Seal()
	d, _, err := run(t, reg, nil)
	assert.ErrorIs(t, err, clierr.ErrEmptyRegistry)
	assert.Equal(t, Failed, d.State())
}

func TestHandlerErrorPropagates(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.RegisterMain(func(ctx context.Context) error {
		return fmt.Errorf("disk on fire")
	}))
	reg.Seal()

	d, _, err := run(t, reg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
	assert.Equal(t, Failed, d.State())
	assert.Equal(t, 1, clierr.ExitCode(err))
}
