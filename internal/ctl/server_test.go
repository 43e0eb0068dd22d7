package ctl

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gxcoin/internal/platform"
	"gxcoin/pkg/uds"
)

type testClient struct {
	conn *net.UnixConn
	in   *bufio.Scanner
}

func startServer(t *testing.T) *testClient {
	t.Helper()
	socketPath := filepath.Join(t.TempDir(), "gx.sock")

	p := platform.New(platform.Config{Creator: "root", TradingOpen: true})
	srv, err := NewServer(socketPath, p)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	client, err := uds.NewClient(socketPath)
	require.NoError(t, err)

	var conn *net.UnixConn
	require.Eventually(t, func() bool {
		conn, err = client.Dial()
		return err == nil
	}, time.Second, 5*time.Millisecond)
	t.Cleanup(func() { conn.Close() })

	return &testClient{conn: conn, in: bufio.NewScanner(conn)}
}

func (c *testClient) roundTrip(t *testing.T, req Request) Response {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)
	_, err = c.conn.Write(append(data, '\n'))
	require.NoError(t, err)

	require.True(t, c.in.Scan())
	var resp Response
	require.NoError(t, json.Unmarshal(c.in.Bytes(), &resp))
	return resp
}

func TestControlFlowEndToEnd(t *testing.T) {
	c := startServer(t)

	resp := c.roundTrip(t, Request{Op: "register", Caller: "root", Account: "alice"})
	require.True(t, resp.OK, resp.Error)
	resp = c.roundTrip(t, Request{Op: "register", Caller: "root", Account: "bob"})
	require.True(t, resp.OK, resp.Error)

	resp = c.roundTrip(t, Request{Op: "seed", Caller: "root", Account: "bob", Amount: 50})
	require.True(t, resp.OK, resp.Error)
	resp = c.roundTrip(t, Request{Op: "fund", Caller: "root", Account: "alice", Amount: 1_000})
	require.True(t, resp.OK, resp.Error)

	resp = c.roundTrip(t, Request{Op: "sell", Caller: "bob", Quantity: 5, Price: 20})
	require.True(t, resp.OK, resp.Error)
	assert.Equal(t, uint64(1), resp.OrderID)

	resp = c.roundTrip(t, Request{Op: "buy", Caller: "alice", Quantity: 5, Price: 20})
	require.True(t, resp.OK, resp.Error)

	resp = c.roundTrip(t, Request{Op: "balance", Caller: "root", Account: "alice"})
	require.True(t, resp.OK, resp.Error)
	assert.Equal(t, int64(5), resp.Coins)
	assert.Equal(t, int64(900), resp.Dollars)
	assert.True(t, resp.Registered)

	resp = c.roundTrip(t, Request{Op: "depth", Caller: "root", Side: "sell"})
	require.True(t, resp.OK, resp.Error)
	assert.Zero(t, resp.Depth)

	resp = c.roundTrip(t, Request{Op: "status", Caller: "root"})
	require.True(t, resp.OK, resp.Error)
	assert.True(t, resp.TradingOpen)
	assert.Equal(t, int64(50), resp.TotalCoins)
}

func TestControlRejectsBadRequests(t *testing.T) {
	c := startServer(t)

	resp := c.roundTrip(t, Request{Op: "warp", Caller: "root"})
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "unknown op")

	resp = c.roundTrip(t, Request{Op: "cancel", Caller: "root", Side: "sideways", OrderID: 1})
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "side must be")

	// Authorization failures surface as errors, not dropped connections.
	resp = c.roundTrip(t, Request{Op: "seed", Caller: "mallory", Account: "mallory", Amount: 1})
	assert.False(t, resp.OK)
	assert.NotEmpty(t, resp.Error)

	resp = c.roundTrip(t, Request{Op: "status", Caller: "root"})
	assert.True(t, resp.OK)
}
