package repository_test

import (
	"context"
	"testing"
	"time"

	"spark_chat_server/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockRelationIsDirectional(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewRepos(t)

	created, err := repos.Block.Create(ctx, "A", "B", time.Now())
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repos.Block.Create(ctx, "A", "B", time.Now())
	require.NoError(t, err)
	assert.False(t, created)

	ok, err := repos.Block.Exists(ctx, "A", "B")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repos.Block.Exists(ctx, "B", "A")
	require.NoError(t, err)
	assert.False(t, ok)

	list, err := repos.Block.FindByBlockerId(ctx, "A")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "B", list[0].BlockedId)

	removed, err := repos.Block.Delete(ctx, "A", "B")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repos.Block.Delete(ctx, "A", "B")
	require.NoError(t, err)
	assert.False(t, removed)

	ok, err = repos.Block.Exists(ctx, "A", "B")
	require.NoError(t, err)
	assert.False(t, ok)
}
