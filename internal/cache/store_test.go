package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var got []string
	assert.ErrorIs(t, s.Get(ctx, "tests", &got), ErrMiss)

	require.NoError(t, s.Set(ctx, "tests", []string{"wbs", "bai"}))
	require.NoError(t, s.Get(ctx, "tests", &got))
	assert.Equal(t, []string{"wbs", "bai"}, got)

	require.NoError(t, s.Delete(ctx, "tests"))
	assert.ErrorIs(t, s.Get(ctx, "tests", &got), ErrMiss)

	assert.NoError(t, s.Ping(ctx))
	assert.NoError(t, s.Close())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	in := map[string]int{"a": 1}
	require.NoError(t, s.Set(ctx, "k", in))
	in["a"] = 2

	var out map[string]int
	require.NoError(t, s.Get(ctx, "k", &out))
	assert.Equal(t, 1, out["a"])
}
