package presence

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"spark_chat_server/internal/dao/mysql/repository"
	myredis "spark_chat_server/internal/dao/redis"
	"spark_chat_server/internal/dto/respond"
	"spark_chat_server/internal/testutil"
	"spark_chat_server/pkg/errorx"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn 可手动关闭的连接
type fakeConn struct {
	id    string
	mu    sync.Mutex
	hooks []func()
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) OnClose(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, fn)
}

func (c *fakeConn) hookCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.hooks)
}

// drop 模拟连接异常断开
func (c *fakeConn) drop() {
	c.mu.Lock()
	hooks := c.hooks
	c.hooks = nil
	c.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

// orderStore 记录写在线时连接上已登记的回调数
type orderStore struct {
	Store
	conn          *fakeConn
	hooksAtOnline int
}

func (s *orderStore) SetOnline(ctx context.Context, userId, connId string, at time.Time) error {
	s.hooksAtOnline = s.conn.hookCount()
	return s.Store.SetOnline(ctx, userId, connId, at)
}

type fixture struct {
	mr      *miniredis.Miniredis
	repos   *repository.Repositories
	tracker *presenceTracker
	clock   time.Time
	mu      sync.Mutex
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr, client, cache := testutil.NewCache(t)
	repos := testutil.NewRepos(t)
	hub, broker := testutil.NewBus(t)
	f := &fixture{
		mr:    mr,
		repos: repos,
		clock: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.tracker = NewPresenceTracker(myredis.NewPresenceStore(client), repos, cache, hub, broker, 90*time.Second)
	f.tracker.now = f.now
	return f
}

func (f *fixture) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clock
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = f.clock.Add(d)
}

func TestGoOnline_RegistersDisconnectBeforeOnlineWrite(t *testing.T) {
	f := newFixture(t)
	conn := &fakeConn{id: "c1"}
	store := &orderStore{Store: f.tracker.store, conn: conn}
	f.tracker.store = store

	require.NoError(t, f.tracker.GoOnline(context.Background(), "alice", conn))
	assert.Equal(t, 1, store.hooksAtOnline)
}

func TestGoOnline_UserNamedOnlineDoesNotBreakOthers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.tracker.GoOnline(ctx, "online", &fakeConn{id: "c1"}))
	require.NoError(t, f.tracker.GoOnline(ctx, "alice", &fakeConn{id: "c2"}))

	users, err := f.tracker.OnlineUsers(ctx)
	require.NoError(t, err)
	sort.Strings(users)
	assert.Equal(t, []string{"alice", "online"}, users)

	n, err := f.tracker.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPresence_AbruptDisconnectGoesOffline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conn := &fakeConn{id: "c1"}

	require.NoError(t, f.tracker.GoOnline(ctx, "alice", conn))
	status, err := f.tracker.Status(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, status.Online)
	assert.Equal(t, f.now().UnixMilli(), status.LastSeen)

	f.advance(5 * time.Minute)
	dropAt := f.now()
	conn.drop()

	f.advance(time.Hour)
	status, err = f.tracker.Status(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, status.Online)
	assert.Equal(t, dropAt.UnixMilli(), status.LastSeen)

	// 最后在线时间已落库
	saved, err := f.repos.Presence.FindByUserId(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, dropAt.UnixMilli(), saved.LastSeenAt.UnixMilli())

	users, err := f.tracker.OnlineUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestPresence_StaleDisconnectDoesNotClobberNewSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	oldConn := &fakeConn{id: "old"}
	newConn := &fakeConn{id: "new"}

	require.NoError(t, f.tracker.GoOnline(ctx, "alice", oldConn))
	require.NoError(t, f.tracker.GoOnline(ctx, "alice", newConn))
	oldConn.drop()

	status, err := f.tracker.Status(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, status.Online)

	newConn.drop()
	status, err = f.tracker.Status(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, status.Online)
}

func TestGoOffline_Explicit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.tracker.GoOnline(ctx, "alice", &fakeConn{id: "c1"}))

	f.advance(time.Minute)
	require.NoError(t, f.tracker.GoOffline(ctx, "alice"))
	status, err := f.tracker.Status(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, status.Online)
	assert.Equal(t, f.now().UnixMilli(), status.LastSeen)

	assert.ErrorIs(t, f.tracker.GoOffline(ctx, ""), errorx.ErrUnauthenticated)
	assert.ErrorIs(t, f.tracker.GoOnline(ctx, "", &fakeConn{id: "c2"}), errorx.ErrUnauthenticated)
}

func TestStatus_NeverSeenAndDurableFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	status, err := f.tracker.Status(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, respond.PresenceRespond{UserId: "ghost"}, status)

	conn := &fakeConn{id: "c1"}
	require.NoError(t, f.tracker.GoOnline(ctx, "alice", conn))
	conn.drop()
	at := f.now()

	// Redis 数据丢失后从数据库兜底
	f.mr.FlushAll()
	status, err = f.tracker.Status(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, status.Online)
	assert.Equal(t, at.UnixMilli(), status.LastSeen)
}

func TestHeartbeat_OnlyCurrentConnection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.tracker.GoOnline(ctx, "alice", &fakeConn{id: "c1"}))

	ok, err := f.tracker.Heartbeat(ctx, "alice", "c1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.tracker.Heartbeat(ctx, "alice", "other")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSweep_ExpiresStaleLeases(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.tracker.GoOnline(ctx, "alice", &fakeConn{id: "a1"}))
	require.NoError(t, f.tracker.GoOnline(ctx, "bob", &fakeConn{id: "b1"}))

	f.advance(60 * time.Second)
	lastBeat := f.now()
	_, err := f.tracker.Heartbeat(ctx, "alice", "a1")
	require.NoError(t, err)

	// bob 的租约已过期，alice 还有 60 秒
	f.advance(31 * time.Second)
	swept, err := f.tracker.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	bob, err := f.tracker.Status(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, bob.Online)
	assert.Equal(t, f.clock.Add(-91*time.Second).UnixMilli(), bob.LastSeen)

	alice, err := f.tracker.Status(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, alice.Online)

	f.advance(2 * time.Minute)
	swept, err = f.tracker.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)
	alice, err = f.tracker.Status(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, lastBeat.UnixMilli(), alice.LastSeen)
}

func TestRandomOnlineUser_ExcludesSelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, ok, err := f.tracker.RandomOnlineUser(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.tracker.GoOnline(ctx, "alice", &fakeConn{id: "a"}))
	_, ok, err = f.tracker.RandomOnlineUser(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok, "只有自己在线")

	require.NoError(t, f.tracker.GoOnline(ctx, "bob", &fakeConn{id: "b"}))
	require.NoError(t, f.tracker.GoOnline(ctx, "carol", &fakeConn{id: "c"}))
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		u, ok, err := f.tracker.RandomOnlineUser(ctx, "alice")
		require.NoError(t, err)
		require.True(t, ok)
		seen[u] = true
	}
	assert.Equal(t, map[string]bool{"bob": true, "carol": true}, seen)
}

// statusLog 收集状态回调
type statusLog struct {
	mu   sync.Mutex
	logs []respond.PresenceRespond
}

func (l *statusLog) on(s respond.PresenceRespond) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logs = append(l.logs, s)
}

func (l *statusLog) last(userId string) (respond.PresenceRespond, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var (
		found respond.PresenceRespond
		n     int
	)
	for _, s := range l.logs {
		if s.UserId == userId {
			found = s
			n++
		}
	}
	return found, n
}

func TestSubscribe_FollowsTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	log := &statusLog{}
	dispose := f.tracker.Subscribe("alice", log.on)
	defer dispose()

	require.Eventually(t, func() bool { _, n := log.last("alice"); return n == 1 }, time.Second, 5*time.Millisecond)
	s, _ := log.last("alice")
	assert.False(t, s.Online)

	conn := &fakeConn{id: "c1"}
	require.NoError(t, f.tracker.GoOnline(ctx, "alice", conn))
	require.Eventually(t, func() bool { s, _ := log.last("alice"); return s.Online }, time.Second, 5*time.Millisecond)

	conn.drop()
	require.Eventually(t, func() bool { s, n := log.last("alice"); return !s.Online && n >= 3 }, time.Second, 5*time.Millisecond)
}

func TestSubscribe_StoreErrorDegradesToOffline(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.tracker.GoOnline(context.Background(), "alice", &fakeConn{id: "c1"}))
	f.mr.SetError("LOADING")
	defer f.mr.SetError("")

	log := &statusLog{}
	dispose := f.tracker.Subscribe("alice", log.on)
	defer dispose()

	require.Eventually(t, func() bool { _, n := log.last("alice"); return n == 1 }, time.Second, 5*time.Millisecond)
	s, _ := log.last("alice")
	assert.False(t, s.Online)
}

func TestSubscribeMany_AddRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	log := &statusLog{}
	group := f.tracker.SubscribeMany([]string{"alice", "bob"}, log.on)
	defer group.Close()

	require.Eventually(t, func() bool {
		_, a := log.last("alice")
		_, b := log.last("bob")
		return a == 1 && b == 1
	}, time.Second, 5*time.Millisecond)

	group.Add("carol")
	group.Add("carol")
	group.Remove("bob")
	users := group.Users()
	sort.Strings(users)
	assert.Equal(t, []string{"alice", "carol"}, users)

	require.NoError(t, f.tracker.GoOnline(ctx, "bob", &fakeConn{id: "b"}))
	require.NoError(t, f.tracker.GoOnline(ctx, "carol", &fakeConn{id: "c"}))

	require.Eventually(t, func() bool { s, _ := log.last("carol"); return s.Online }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	_, n := log.last("bob")
	assert.Equal(t, 1, n, "移除后不再收到 bob 的状态")

	group.Close()
	group.Add("dave")
	assert.Empty(t, group.Users())
}
