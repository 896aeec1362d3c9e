package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"spark_chat_server/internal/model"
	"spark_chat_server/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageOrderKeepsArrivalForEqualTimestamps(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewRepos(t)
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	// 先写入一条更晚的消息，再写两条同一毫秒的消息
	inputs := []struct {
		uuid string
		at   time.Time
	}{
		{"m-late", at.Add(time.Second)},
		{"m-hello", at},
		{"m-there", at},
	}
	for _, in := range inputs {
		require.NoError(t, repos.Message.Create(ctx, &model.Message{
			Uuid: in.uuid, ConversationId: "A_B", SendId: "A", Content: in.uuid, SendAt: in.at, Delivered: true,
		}))
	}

	for i := 0; i < 3; i++ {
		list, err := repos.Message.FindByConversationId(ctx, "A_B")
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []string{"m-hello", "m-there", "m-late"}, []string{list[0].Uuid, list[1].Uuid, list[2].Uuid})
	}
}

func TestMessageMarkRead(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewRepos(t)
	at := time.Now()

	for i, sender := range []string{"A", "B", "A"} {
		require.NoError(t, repos.Message.Create(ctx, &model.Message{
			Uuid: fmt.Sprintf("m%d", i), ConversationId: "A_B", SendId: sender, Content: "x", SendAt: at, Delivered: true,
		}))
	}

	// B 读 A 的消息，同时带上自己发的 m1
	n, err := repos.Message.MarkRead(ctx, "A_B", []string{"m0", "m1", "m2"}, "B")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repos.Message.MarkRead(ctx, "A_B", []string{"m0", "m1", "m2"}, "B")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	list, err := repos.Message.FindByConversationId(ctx, "A_B")
	require.NoError(t, err)
	read := map[string]bool{}
	for _, m := range list {
		read[m.Uuid] = m.IsRead
	}
	assert.Equal(t, map[string]bool{"m0": true, "m1": false, "m2": true}, read)

	n, err = repos.Message.MarkRead(ctx, "A_B", nil, "B")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMessageCountUnread(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewRepos(t)
	at := time.Now()

	msgs := []model.Message{
		{Uuid: "1", ConversationId: "A_B", SendId: "B"},
		{Uuid: "2", ConversationId: "A_B", SendId: "B"},
		{Uuid: "3", ConversationId: "A_B", SendId: "A"},
		{Uuid: "4", ConversationId: "A_C", SendId: "C", IsRead: true},
		{Uuid: "5", ConversationId: "A_C", SendId: "C"},
	}
	for i := range msgs {
		msgs[i].SendAt = at
		require.NoError(t, repos.Message.Create(ctx, &msgs[i]))
	}

	counts, err := repos.Message.CountUnread(ctx, []string{"A_B", "A_C", "A_D"}, "A")
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["A_B"])
	assert.Equal(t, int64(1), counts["A_C"])
	assert.Zero(t, counts["A_D"])

	empty, err := repos.Message.CountUnread(ctx, nil, "A")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
