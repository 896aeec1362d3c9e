package typing

import (
	"context"
	"sync"
	"testing"
	"time"

	"spark_chat_server/internal/dao/mysql/repository"
	myredis "spark_chat_server/internal/dao/redis"
	"spark_chat_server/internal/dto/respond"
	"spark_chat_server/internal/model"
	"spark_chat_server/internal/testutil"
	"spark_chat_server/pkg/errorx"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*typingService, *miniredis.Miniredis, *repository.Repositories) {
	t.Helper()
	mr, client := testutil.NewRedis(t)
	repos := testutil.NewRepos(t)
	hub, broker := testutil.NewBus(t)
	addConversation(t, repos, "alice_bob", "alice", "bob")
	return NewTypingService(repos, myredis.NewTypingStore(client), hub, broker, 6*time.Second), mr, repos
}

func addConversation(t *testing.T, repos *repository.Repositories, id, one, two string) {
	t.Helper()
	now := time.Now()
	_, err := repos.Conversation.CreateIfAbsent(context.Background(), &model.Conversation{
		Uuid: id, UserOneId: one, UserTwoId: two, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
}

func TestSetTyping_SetClearAndExpire(t *testing.T) {
	svc, mr, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetTyping(ctx, "alice_bob", "alice", true))
	rsp, err := svc.Typing(ctx, "alice_bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, rsp.UserIds)
	assert.Equal(t, 6, rsp.TTLSeconds)

	require.NoError(t, svc.SetTyping(ctx, "alice_bob", "bob", true))
	require.NoError(t, svc.SetTyping(ctx, "alice_bob", "alice", false))
	rsp, err = svc.Typing(ctx, "alice_bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, rsp.UserIds)

	mr.FastForward(7 * time.Second)
	rsp, err = svc.Typing(ctx, "alice_bob")
	require.NoError(t, err)
	assert.Empty(t, rsp.UserIds)
}

func TestTyping_EntriesExpireIndividually(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	clock := time.Now()
	svc.now = func() time.Time { return clock }

	require.NoError(t, svc.SetTyping(ctx, "alice_bob", "alice", true))
	clock = clock.Add(4 * time.Second)
	require.NoError(t, svc.SetTyping(ctx, "alice_bob", "bob", true))

	clock = clock.Add(3 * time.Second)
	rsp, err := svc.Typing(ctx, "alice_bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, rsp.UserIds)
}

func TestTyping_GlobCharactersStayInTheirConversation(t *testing.T) {
	svc, _, repos := newService(t)
	ctx := context.Background()
	addConversation(t, repos, "a*", "a", "*")
	addConversation(t, repos, "a[b]_c", "a[b]", "c")

	require.NoError(t, svc.SetTyping(ctx, "alice_bob", "alice", true))
	require.NoError(t, svc.SetTyping(ctx, "a[b]_c", "c", true))

	rsp, err := svc.Typing(ctx, "a*")
	require.NoError(t, err)
	assert.Empty(t, rsp.UserIds)

	rsp, err = svc.Typing(ctx, "a[b]_c")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, rsp.UserIds)

	rsp, err = svc.Typing(ctx, "alice_bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, rsp.UserIds)
}

func TestSetTyping_Authorization(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.SetTyping(ctx, "alice_bob", "", true), errorx.ErrUnauthenticated)
	assert.ErrorIs(t, svc.SetTyping(ctx, "alice_bob", "mallory", true), errorx.ErrInvalidConversation)
	assert.ErrorIs(t, svc.SetTyping(ctx, "nobody_here", "alice", true), errorx.ErrConversationNotFound)
}

func TestSubscribe_PushesSnapshots(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	var (
		mu   sync.Mutex
		seen []respond.TypingRespond
	)
	dispose := svc.Subscribe("alice_bob", func(rsp respond.TypingRespond) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, rsp)
	})
	defer dispose()
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, svc.SetTyping(ctx, "alice_bob", "bob", true))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2 && len(seen[1].UserIds) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, seen[0].UserIds)
	assert.Equal(t, "bob", seen[1].UserIds[0])
}
