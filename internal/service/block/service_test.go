package block

import (
	"context"
	"testing"
	"time"

	"spark_chat_server/internal/dto/request"
	"spark_chat_server/internal/model"
	"spark_chat_server/internal/service/gate"
	"spark_chat_server/internal/testutil"
	"spark_chat_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlock_SetUnsetExists(t *testing.T) {
	repos := testutil.NewRepos(t)
	svc := NewBlockService(repos)
	ctx := context.Background()

	require.NoError(t, svc.Block(ctx, "alice", "bob"))
	require.NoError(t, svc.Block(ctx, "alice", "bob"))

	ok, err := svc.IsBlocked(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, ok)

	// 拉黑是单向的
	ok, err = svc.IsBlocked(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	list, err := svc.ListBlocked(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].UserId)

	require.NoError(t, svc.Unblock(ctx, "alice", "bob"))
	require.NoError(t, svc.Unblock(ctx, "alice", "bob"))
	ok, err = svc.IsBlocked(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBlock_Validation(t *testing.T) {
	svc := NewBlockService(testutil.NewRepos(t))
	ctx := context.Background()

	assert.ErrorIs(t, svc.Block(ctx, "", "bob"), errorx.ErrUnauthenticated)
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(svc.Block(ctx, "alice", "alice")))
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(svc.Unblock(ctx, "alice", "")))
}

func TestBlock_GatesSendAndUnblockRestores(t *testing.T) {
	repos := testutil.NewRepos(t)
	_, broker := testutil.NewBus(t)
	svc := NewBlockService(repos)
	sender := gate.NewGateService(repos, broker, 2000)
	ctx := context.Background()

	now := time.Now()
	_, err := repos.Conversation.CreateIfAbsent(ctx, &model.Conversation{
		Uuid: "alice_bob", UserOneId: "alice", UserTwoId: "bob", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Block(ctx, "bob", "alice"))
	_, err = sender.Send(ctx, "alice_bob", "alice", "hi")
	assert.ErrorIs(t, err, errorx.ErrSenderBlocked)

	require.NoError(t, svc.Unblock(ctx, "bob", "alice"))
	_, err = sender.Send(ctx, "alice_bob", "alice", "hi")
	assert.NoError(t, err)
}

func TestReport_WithBlock(t *testing.T) {
	repos := testutil.NewRepos(t)
	svc := NewBlockService(repos)
	ctx := context.Background()

	err := svc.Report(ctx, "alice", request.ReportRequest{UserId: "bob", Reason: "骚扰", Block: true})
	require.NoError(t, err)

	n, err := repos.Report.CountByReportedId(ctx, "bob")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	ok, err := svc.IsBlocked(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, ok)

	err = svc.Report(ctx, "carol", request.ReportRequest{UserId: "bob", Reason: "广告"})
	require.NoError(t, err)
	ok, err = svc.IsBlocked(ctx, "carol", "bob")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(svc.Report(ctx, "bob", request.ReportRequest{UserId: "bob", Reason: "x"})))
}
