package repository_test

import (
	"context"
	"testing"

	"spark_chat_server/internal/dao/mysql/repository"
	"spark_chat_server/internal/model"
	"spark_chat_server/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoinDebitAndCredit(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repos := repository.NewRepositories(db)

	ok, err := repos.Coin.Debit(ctx, "U1", 5, "match")
	require.NoError(t, err)
	assert.False(t, ok, "no account means no balance")

	require.NoError(t, repos.Coin.Credit(ctx, "U1", 10, "recharge"))
	require.NoError(t, repos.Coin.Credit(ctx, "U1", 3, "gift"))

	balance, err := repos.Coin.Balance(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, int64(13), balance)

	ok, err = repos.Coin.Debit(ctx, "U1", 13, "match")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repos.Coin.Debit(ctx, "U1", 1, "match")
	require.NoError(t, err)
	assert.False(t, ok)

	balance, err = repos.Coin.Balance(ctx, "U1")
	require.NoError(t, err)
	assert.Zero(t, balance)

	var flows []model.CoinFlow
	require.NoError(t, db.Where("user_id = ?", "U1").Order("id").Find(&flows).Error)
	require.Len(t, flows, 3)
	assert.Equal(t, int64(-13), flows[2].Amount)
	assert.Equal(t, "match", flows[2].Reason)
}
