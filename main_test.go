package main

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"NodeBoard/internal/config"
	boardnet "NodeBoard/internal/net"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodeboard.toml")
	require.NoError(t, os.WriteFile(path, []byte("[share]\nport = 9000\n\n[log]\nlevel = \"warn\"\n"), 0o644))

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--share", "--log-level", "debug"}))

	cfg, err := loadConfig(path, cmd.Flags())
	require.NoError(t, err)
	assert.True(t, cfg.Share.Enabled)
	assert.Equal(t, 9000, cfg.Share.Port, "unset flag keeps the file value")
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_InvalidFlag(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--port", "0"}))

	_, err := loadConfig("", cmd.Flags())
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestRootCmd_RejectsForeignLink(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", "", "http://example.com"})
	cmd.SetOut(new(discard))
	cmd.SetErr(new(discard))
	assert.ErrorContains(t, cmd.Execute(), "must start with nodeboard://")
}

type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }

func TestStartSharing_PortInUse(t *testing.T) {
	taken, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer taken.Close()

	cfg := config.Default()
	cfg.Share.Port = taken.Addr().(*net.TCPAddr).Port
	cfg.Share.Advertise = true
	surface, err := newSurface(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	link, stop, err := startSharing(context.Background(), cfg, surface, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Empty(t, link, "no share link for a port we do not own")
	assert.Nil(t, stop)
}

func TestStartSharing_ServesBoard(t *testing.T) {
	cfg := config.Default()
	cfg.Share.Port = 0
	cfg.Share.Advertise = false
	surface, err := newSurface(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	surface.Board().AddShape("square")

	link, stop, err := startSharing(context.Background(), cfg, surface, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer stop()

	port := link[strings.LastIndex(link, ":")+1:]
	client, err := boardnet.Dial(context.Background(), "127.0.0.1:"+port, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got := make(chan boardnet.Message, 1)
	go func() {
		_ = client.Listen(ctx, func(m boardnet.Message) {
			select {
			case got <- m:
			default:
			}
		})
	}()

	select {
	case m := <-got:
		require.Equal(t, boardnet.MsgSnapshot, m.Type)
		assert.Len(t, m.Snapshot.Shapes, 1)
	case <-ctx.Done():
		t.Fatal("no snapshot from " + link)
	}
	_, err = strconv.Atoi(port)
	assert.NoError(t, err)
}
