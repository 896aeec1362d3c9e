package logger

import (
	"errors"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"spark_chat_server/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitWritesToFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.LogConfig{LogPath: dir, Level: "debug"}
	require.NoError(t, Init(cfg, "release"))

	zap.L().Info("presence online", zap.String("user_id", "U1"))
	_ = zap.L().Sync()

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "presence online")
	assert.Contains(t, string(data), `"user_id":"U1"`)
}

func TestInitRejectsBadLevel(t *testing.T) {
	cfg := &config.LogConfig{LogPath: t.TempDir(), Level: "loud"}
	assert.Error(t, Init(cfg, "release"))
	assert.Error(t, Init(nil, "dev"))
}

func TestIsBrokenPipeError(t *testing.T) {
	opErr := &net.OpError{Op: "write", Err: os.NewSyscallError("write", syscall.EPIPE)}
	assert.True(t, isBrokenPipeError(opErr))
	assert.True(t, isBrokenPipeError(errors.New("read: connection reset by peer")))
	assert.False(t, isBrokenPipeError(errors.New("timeout")))
	assert.False(t, isBrokenPipeError(nil))
}

func TestRedactQueryHidesToken(t *testing.T) {
	values := url.Values{"token": {"eyJhbGciOi"}, "conversation_id": {"a_b"}}
	got := redactQuery(values)
	assert.NotContains(t, got, "eyJhbGciOi")
	assert.Contains(t, got, "token=%2A%2A%2A")
	assert.Contains(t, got, "conversation_id=a_b")
}
