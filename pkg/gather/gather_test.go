package gather

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllCollectsValuesAndErrors(t *testing.T) {
	var a []int
	var b string
	var c int

	errBoom := errors.New("boom")

	errs := All(context.Background(),
		Fetch("a", &a, nil, func(ctx context.Context) ([]int, error) {
			return []int{1, 2, 3}, nil
		}),
		Fetch("b", &b, "fallback", func(ctx context.Context) (string, error) {
			return "", errBoom
		}),
		Fetch("c", &c, 0, func(ctx context.Context) (int, error) {
			return 42, nil
		}),
	)

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs["b"], errBoom)

	// 失败分支拿到默认值，成功分支不受影响
	assert.Equal(t, []int{1, 2, 3}, a)
	assert.Equal(t, "fallback", b)
	assert.Equal(t, 42, c)
}

func TestAllNoBranches(t *testing.T) {
	errs := All(context.Background())
	assert.Empty(t, errs)
}

func TestAllPropagatesContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var v int
	errs := All(ctx,
		Fetch("v", &v, -1, func(ctx context.Context) (int, error) {
			return 0, ctx.Err()
		}),
	)

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs["v"], context.Canceled)
	assert.Equal(t, -1, v)
}
