package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type impl string

func TestResolve_ExactBinding(t *testing.T) {
	r := New[impl](nil)
	require.NoError(t, r.Register("extinction", "klett", impl("KlettImpl")))

	got, ok := r.Resolve("extinction", "klett")
	require.True(t, ok)
	assert.Equal(t, impl("KlettImpl"), got)

	_, ok = r.Resolve("extinction", "unknown")
	assert.False(t, ok, "an unregistered variant must resolve to the not-found sentinel")

	_, ok = r.Resolve("backscatter", "klett")
	assert.False(t, ok)
}

func TestRegister_SecondOverrideConflicts(t *testing.T) {
	r := New[impl](nil)
	require.NoError(t, r.Register("extinction", "forced", impl("Forced"), AsOverride()))

	err := r.Register("extinction", "other", impl("Other"), AsOverride())
	require.Error(t, err)
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.True(t, conflict.Override)
	assert.Equal(t, "extinction", conflict.Family)

	// An override on another family is independent.
	require.NoError(t, r.Register("backscatter", "forced", impl("Forced"), AsOverride()))
}

func TestResolve_OverrideWinsForEveryVariant(t *testing.T) {
	r := New[impl](nil)
	require.NoError(t, r.Register("extinction", "klett", impl("KlettImpl")))
	require.NoError(t, r.Register("extinction", "forced", impl("Forced"), AsOverride()))
	// Bindings registered after the override are still shadowed.
	require.NoError(t, r.Register("extinction", "raman", impl("RamanImpl")))

	for _, variant := range []string{"klett", "raman", "forced", "never-registered", ""} {
		got, ok := r.Resolve("extinction", variant)
		require.True(t, ok, "variant %q", variant)
		assert.Equal(t, impl("Forced"), got, "variant %q", variant)
	}

	name, ok := r.Override("extinction")
	require.True(t, ok)
	assert.Equal(t, "forced", name)
}

func TestRegister_DuplicateVariantConflicts(t *testing.T) {
	r := New[impl](nil)
	require.NoError(t, r.Register("smoothing", "sliding_average", impl("a")))
	err := r.Register("smoothing", "sliding_average", impl("b"))
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.False(t, conflict.Override)

	got, _ := r.Resolve("smoothing", "sliding_average")
	assert.Equal(t, impl("a"), got, "a rejected registration must not replace the existing binding")
}

func TestMustRegister_Panics(t *testing.T) {
	r := New[impl](nil)
	r.MustRegister("smoothing", "passthrough", impl("p"))
	assert.Panics(t, func() { r.MustRegister("smoothing", "passthrough", impl("p")) })
}

func TestListings(t *testing.T) {
	r := New[impl](nil)
	r.MustRegister("smoothing", "passthrough", impl("p"))
	r.MustRegister("smoothing", "sliding_average", impl("s"))
	r.MustRegister("extinction", "forced", impl("f"), AsOverride())

	assert.Equal(t, []string{"extinction", "smoothing"}, r.Families())
	assert.Equal(t, []string{"passthrough", "sliding_average"}, r.Variants("smoothing"))
	assert.Empty(t, r.Variants("extinction"))
}
