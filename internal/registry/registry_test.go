package registry

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/funcli/internal/clierr"
)

func noop(ctx context.Context) error { return nil }

func TestRegisterMain(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterMain(noop))
	require.NotNil(t, r.Main())

	err := r.RegisterMain(noop)
	assert.True(t, errors.Is(err, clierr.ErrDuplicateMain))
}

func TestRegisterSubcommand(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterSubcommand("add", noop))

	cmd, ok := r.Subcommand("add")
	require.True(t, ok)
	assert.Equal(t, "add", cmd.Name)

	t.Run("duplicate name", func(t *testing.T) {
		err := r.RegisterSubcommand("add", noop)
		assert.True(t, errors.Is(err, clierr.ErrDuplicateSubcommand))
	})

	t.Run("invalid names", func(t *testing.T) {
		for _, name := range []string{"", "-flagish", "--also-flagish", "help"} {
			err := r.RegisterSubcommand(name, noop)
			assert.True(t, errors.Is(err, clierr.ErrInvalidName), "name %q", name)
		}
	})

	t.Run("bad handler is a setup error", func(t *testing.T) {
		err := r.RegisterSubcommand("broken", "not a function")
		assert.True(t, errors.Is(err, clierr.ErrBadHandler))
	})
}

func TestRegistrationOrderPreserved(t *testing.T) {
	r := New()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, r.RegisterSubcommand(name, noop))
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, r.SubcommandNames())
}

func TestSeal(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterMain(noop))
	r.Seal()
	assert.True(t, r.Sealed())

	assert.True(t, errors.Is(r.RegisterMain(noop), clierr.ErrRegistryClosed))
	assert.True(t, errors.Is(r.RegisterSubcommand("late", noop), clierr.ErrRegistryClosed))

	r.Seal() // sealing twice is a no-op
	assert.True(t, r.Sealed())
}

func TestEmpty(t *testing.T) {
	r := New()
	assert.True(t, r.Empty())
	require.NoError(t, r.RegisterSubcommand("only", noop))
	assert.False(t, r.Empty())
}
