package gate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"spark_chat_server/internal/dao/mysql/repository"
	"spark_chat_server/internal/infrastructure/mq"
	"spark_chat_server/internal/model"
	"spark_chat_server/internal/testutil"
	"spark_chat_server/pkg/errorx"
	"spark_chat_server/pkg/util/convkey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc   *gateService
	repos *repository.Repositories
	hub   *mq.Hub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := testutil.NewRepos(t)
	hub, broker := testutil.NewBus(t)
	return &fixture{
		svc:   NewGateService(repos, broker, 20),
		repos: repos,
		hub:   hub,
	}
}

func (f *fixture) conversation(t *testing.T, a, b string) string {
	t.Helper()
	one, two := convkey.Order(a, b)
	now := time.Now()
	_, err := f.repos.Conversation.CreateIfAbsent(context.Background(), &model.Conversation{
		Uuid:      convkey.Resolve(a, b),
		UserOneId: one,
		UserTwoId: two,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	return convkey.Resolve(a, b)
}

func (f *fixture) messages(t *testing.T, conversationId string) []model.Message {
	t.Helper()
	list, err := f.repos.Message.FindByConversationId(context.Background(), conversationId)
	require.NoError(t, err)
	return list
}

func TestSend_FirstMessageCreatesOneAndUpdatesSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.conversation(t, "alice", "bob")

	rsp, err := f.svc.Send(ctx, id, "alice", "hi")
	require.NoError(t, err)
	assert.NotEmpty(t, rsp.MessageId)
	assert.True(t, rsp.Delivered)
	assert.False(t, rsp.Read)

	list := f.messages(t, id)
	require.Len(t, list, 1)
	assert.Equal(t, "hi", list[0].Content)
	assert.Equal(t, "alice", list[0].SendId)
	assert.Equal(t, rsp.MessageId, list[0].Uuid)

	conv, err := f.repos.Conversation.FindByUuid(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hi", conv.LastMessage)
	assert.Equal(t, "alice", conv.LastSenderId)
	require.NotNil(t, conv.LastMessageAt)
	assert.Equal(t, rsp.SendAt, conv.LastMessageAt.UnixMilli())
}

func TestSend_ConversationNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Send(context.Background(), "ghost_nobody", "ghost", "hi")
	assert.ErrorIs(t, err, errorx.ErrConversationNotFound)
}

func TestSend_SenderNotParticipant(t *testing.T) {
	f := newFixture(t)
	id := f.conversation(t, "alice", "bob")

	_, err := f.svc.Send(context.Background(), id, "mallory", "hi")
	assert.ErrorIs(t, err, errorx.ErrInvalidConversation)
	assert.Empty(t, f.messages(t, id))
}

func TestSend_SenderBlockedLeavesNoMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.conversation(t, "alice", "bob")
	_, err := f.repos.Block.Create(ctx, "bob", "alice", time.Now())
	require.NoError(t, err)

	_, err = f.svc.Send(ctx, id, "alice", "hi")
	assert.ErrorIs(t, err, errorx.ErrSenderBlocked)
	assert.Empty(t, f.messages(t, id))

	conv, err := f.repos.Conversation.FindByUuid(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, conv.LastMessage)
}

func TestSend_RecipientBlockedBySender(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.conversation(t, "alice", "bob")
	_, err := f.repos.Block.Create(ctx, "alice", "bob", time.Now())
	require.NoError(t, err)

	_, err = f.svc.Send(ctx, id, "alice", "hi")
	assert.ErrorIs(t, err, errorx.ErrRecipientBlockedBySender)
	assert.False(t, errors.Is(err, errorx.ErrSenderBlocked))
	assert.Empty(t, f.messages(t, id))

	// 被拉黑的一方发消息命中的是 SenderBlocked
	_, err = f.svc.Send(ctx, id, "bob", "hello?")
	assert.ErrorIs(t, err, errorx.ErrSenderBlocked)
}

func TestSend_MutualBlockReportsSenderBlockedFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.conversation(t, "alice", "bob")
	_, err := f.repos.Block.Create(ctx, "alice", "bob", time.Now())
	require.NoError(t, err)
	_, err = f.repos.Block.Create(ctx, "bob", "alice", time.Now())
	require.NoError(t, err)

	_, err = f.svc.Send(ctx, id, "alice", "hi")
	assert.ErrorIs(t, err, errorx.ErrSenderBlocked)
}

func TestSend_Validation(t *testing.T) {
	f := newFixture(t)
	id := f.conversation(t, "alice", "bob")

	_, err := f.svc.Send(context.Background(), id, "", "hi")
	assert.ErrorIs(t, err, errorx.ErrUnauthenticated)

	_, err = f.svc.Send(context.Background(), id, "alice", "   ")
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	_, err = f.svc.Send(context.Background(), id, "alice", strings.Repeat("好", 21))
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	_, err = f.svc.Send(context.Background(), id, "alice", strings.Repeat("好", 20))
	assert.NoError(t, err)
}

func TestSend_SameMillisecondKeepsArrivalOrder(t *testing.T) {
	f := newFixture(t)
	fixed := time.Date(2024, 5, 20, 13, 14, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return fixed }
	id := f.conversation(t, "alice", "bob")

	first, err := f.svc.Send(context.Background(), id, "alice", "first")
	require.NoError(t, err)
	second, err := f.svc.Send(context.Background(), id, "bob", "second")
	require.NoError(t, err)
	assert.Equal(t, first.SendAt, second.SendAt)

	list := f.messages(t, id)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Content)
	assert.Equal(t, "second", list[1].Content)
}

func TestSend_ClockSkewIsClamped(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2024, 5, 20, 13, 14, 0, 0, time.UTC)
	id := f.conversation(t, "alice", "bob")

	f.svc.now = func() time.Time { return base }
	first, err := f.svc.Send(context.Background(), id, "alice", "first")
	require.NoError(t, err)

	f.svc.now = func() time.Time { return base.Add(-time.Minute) }
	second, err := f.svc.Send(context.Background(), id, "bob", "second")
	require.NoError(t, err)
	assert.Equal(t, first.SendAt, second.SendAt)

	list := f.messages(t, id)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Content)
}

func TestSend_PublishesToConversationAndInboxes(t *testing.T) {
	f := newFixture(t)
	id := f.conversation(t, "alice", "bob")

	var mu sync.Mutex
	got := map[string][]string{}
	record := func(name string) mq.Handler {
		return func(ev mq.Event) {
			mu.Lock()
			defer mu.Unlock()
			got[name] = append(got[name], ev.Kind)
		}
	}
	defer f.hub.Subscribe(mq.TopicConversation(id), record("conv"))()
	defer f.hub.Subscribe(mq.TopicInbox("alice"), record("alice"))()
	defer f.hub.Subscribe(mq.TopicInbox("bob"), record("bob"))()

	_, err := f.svc.Send(context.Background(), id, "alice", "hi")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got["conv"]) == 2 && len(got["alice"]) == 2 && len(got["bob"]) == 2
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{mq.KindSync, mq.KindMessage}, got["conv"])
	assert.Equal(t, []string{mq.KindSync, mq.KindConversation}, got["bob"])
}

func TestSend_ConcurrentSendsAreAllStoredInOrder(t *testing.T) {
	f := newFixture(t)
	id := f.conversation(t, "alice", "bob")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sender := "alice"
			if i%2 == 1 {
				sender = "bob"
			}
			_, err := f.svc.Send(context.Background(), id, sender, "msg")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	list := f.messages(t, id)
	require.Len(t, list, 10)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].SendAt.Before(list[i-1].SendAt))
		if list[i].SendAt.Equal(list[i-1].SendAt) {
			assert.Greater(t, list[i].ID, list[i-1].ID)
		}
	}
}
