package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"spark_chat_server/internal/dao/mysql/repository"
	"spark_chat_server/internal/model"
	"spark_chat_server/internal/testutil"
	"spark_chat_server/pkg/errorx"
	"spark_chat_server/pkg/util/convkey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConversation(a, b string, at time.Time) *model.Conversation {
	one, two := convkey.Order(a, b)
	return &model.Conversation{
		Uuid:      convkey.Resolve(a, b),
		UserOneId: one,
		UserTwoId: two,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestConversationCreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewRepos(t)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	created, err := repos.Conversation.CreateIfAbsent(ctx, newConversation("U2", "U1", now))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repos.Conversation.CreateIfAbsent(ctx, newConversation("U1", "U2", now.Add(time.Hour)))
	require.NoError(t, err)
	assert.False(t, created)

	conv, err := repos.Conversation.FindByUuid(ctx, "U1_U2")
	require.NoError(t, err)
	assert.Equal(t, "U1", conv.UserOneId)
	assert.Equal(t, "U2", conv.UserTwoId)
	assert.True(t, conv.CreatedAt.Equal(now), "second insert must not overwrite the first record")
}

func TestConversationCreateIfAbsentConcurrent(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewRepos(t)
	now := time.Now()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := "alice", "bob"
			if i%2 == 1 {
				a, b = b, a
			}
			ok, err := repos.Conversation.CreateIfAbsent(ctx, newConversation(a, b, now))
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	list, err := repos.Conversation.FindByUserId(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestConversationFindByUuidNotFound(t *testing.T) {
	repos := testutil.NewRepos(t)
	_, err := repos.Conversation.FindByUuid(context.Background(), "nobody_none")
	require.Error(t, err)
	assert.True(t, errorx.IsNotFound(err))
}

func TestConversationListOrderedByUpdatedAt(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewRepos(t)
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	for i, peer := range []string{"U2", "U3", "U4"} {
		_, err := repos.Conversation.CreateIfAbsent(ctx, newConversation("U1", peer, base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}
	// U2 的会话收到新消息后排到最前
	require.NoError(t, repos.Conversation.UpdateSummary(ctx, "U1_U2", "hi", "U2", base.Add(time.Hour)))

	list, err := repos.Conversation.FindByUserId(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "U1_U2", list[0].Uuid)
	assert.Equal(t, "U1_U4", list[1].Uuid)
	assert.Equal(t, "U1_U3", list[2].Uuid)

	assert.Equal(t, "hi", list[0].LastMessage)
	assert.Equal(t, "U2", list[0].LastSenderId)
	require.NotNil(t, list[0].LastMessageAt)
	assert.True(t, list[0].LastMessageAt.Equal(base.Add(time.Hour)))

	other, err := repos.Conversation.FindByUserId(ctx, "U3")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestConversationTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewRepos(t)

	err := repos.Transaction(func(tx *repository.Repositories) error {
		if _, err := tx.Conversation.CreateIfAbsent(ctx, newConversation("A", "B", time.Now())); err != nil {
			return err
		}
		if _, err := tx.Conversation.FindByUuidForUpdate(ctx, "A_B"); err != nil {
			return err
		}
		return errorx.ErrSenderBlocked
	})
	require.ErrorIs(t, err, errorx.ErrSenderBlocked)

	_, err = repos.Conversation.FindByUuid(ctx, "A_B")
	assert.True(t, errorx.IsNotFound(err))
}
