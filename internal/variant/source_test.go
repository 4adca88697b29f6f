package variant

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	ctx := context.Background()
	s := Static{"smoothing": "sliding_average", "extinction": "klett"}

	name, err := s.Variant(ctx, "smoothing")
	require.NoError(t, err)
	assert.Equal(t, "sliding_average", name)

	_, err = s.Variant(ctx, "backscatter")
	var nc *NotConfiguredError
	require.True(t, errors.As(err, &nc))
	assert.Equal(t, "backscatter", nc.Family)

	assert.Equal(t, []string{"extinction", "smoothing"}, s.Families())
}

type failingSource struct{ err error }

func (f failingSource) Variant(context.Context, string) (string, error) { return "", f.err }

func TestChain(t *testing.T) {
	ctx := context.Background()
	c := Chain{Static{"smoothing": "passthrough"}, Static{"smoothing": "sliding_average", "extinction": "klett"}}

	name, err := c.Variant(ctx, "smoothing")
	require.NoError(t, err)
	assert.Equal(t, "passthrough", name, "the first configured source wins")

	name, err = c.Variant(ctx, "extinction")
	require.NoError(t, err)
	assert.Equal(t, "klett", name)

	_, err = c.Variant(ctx, "missing")
	var nc *NotConfiguredError
	assert.True(t, errors.As(err, &nc))

	boom := errors.New("db down")
	_, err = Chain{failingSource{boom}, Static{"smoothing": "x"}}.Variant(ctx, "smoothing")
	assert.ErrorIs(t, err, boom)
}

func TestSQLSource(t *testing.T) {
	ctx := context.Background()
	src, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "db", "variants.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })

	_, err = src.Variant(ctx, "smoothing")
	var nc *NotConfiguredError
	require.True(t, errors.As(err, &nc))

	require.NoError(t, src.Put(ctx, "smoothing", "passthrough"))
	require.NoError(t, src.Put(ctx, "smoothing", "sliding_average"))

	name, err := src.Variant(ctx, "smoothing")
	require.NoError(t, err)
	assert.Equal(t, "sliding_average", name)
}

func TestSQLSource_InMemory(t *testing.T) {
	ctx := context.Background()
	src, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })

	require.NoError(t, src.Put(ctx, "extinction", "klett"))
	name, err := src.Variant(ctx, "extinction")
	require.NoError(t, err)
	assert.Equal(t, "klett", name)
}
