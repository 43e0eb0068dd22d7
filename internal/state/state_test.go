package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gxcoin/internal/platform"
	"gxcoin/internal/recorder"
	"gxcoin/internal/schema"
)

func seededPlatform(t *testing.T) *platform.Platform {
	t.Helper()
	p := platform.New(platform.Config{Creator: "root", TradingOpen: true})
	require.NoError(t, p.RegisterTraderAccount("root", "alice"))
	require.NoError(t, p.RegisterTraderAccount("root", "bob"))
	require.NoError(t, p.SeedCoins("root", "bob", 100))
	require.NoError(t, p.Fund("root", "alice", 5_000))
	_, err := p.CreateSellOrder("bob", 10, 20, 0)
	require.NoError(t, err)
	return p
}

func TestSnapshotRoundTrip(t *testing.T) {
	p := seededPlatform(t)
	path := filepath.Join(t.TempDir(), "snap", "state.json")

	require.NoError(t, WriteSnapshot(path, NewSnapshot(p.Export())))

	snap, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, p.Export(), snap.State)
	assert.NotZero(t, snap.Timestamp)
}

func TestRecoverFromSnapshotAndJournalTail(t *testing.T) {
	dir := t.TempDir()
	snapPath := filepath.Join(dir, "state.json")
	journalDir := filepath.Join(dir, "journal")

	p := seededPlatform(t)
	snapSeq := p.Export().Seq
	require.NoError(t, WriteSnapshot(snapPath, NewSnapshot(p.Export())))

	// Two events land in the journal after the snapshot was taken.
	w, err := recorder.NewWriter(recorder.Config{Dir: journalDir})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	for i := uint64(1); i <= 2; i++ {
		require.NoError(t, w.TryAppend(schema.Event{
			Header: schema.NewHeader(schema.EventDollarsFunded, snapSeq+i, int64(i)),
			Balance: &schema.BalanceChange{
				Account:     "alice",
				Reason:      schema.BalanceReasonFund,
				DollarDelta: 10,
			},
		}))
	}
	require.NoError(t, w.Close())

	fresh := platform.New(platform.Config{Creator: "root"})
	res, err := Recover("root", fresh, RecoverConfig{
		SnapshotPath: snapPath,
		JournalDir:   journalDir,
	})
	require.NoError(t, err)

	assert.True(t, res.SnapshotLoaded)
	assert.Equal(t, snapSeq, res.SnapshotSeq)
	assert.Equal(t, uint64(2), res.TailEvents)
	assert.Equal(t, snapSeq+2, res.LastTailSeq)

	assert.Equal(t, schema.Quantity(90), fresh.CoinBalance("bob"))
	assert.Equal(t, schema.Notional(5_000), fresh.DollarBalance("alice"))
	assert.Equal(t, 1, fresh.BookDepth(schema.SideSell))
}

func TestRecoverFirstBoot(t *testing.T) {
	dir := t.TempDir()
	fresh := platform.New(platform.Config{Creator: "root"})

	res, err := Recover("root", fresh, RecoverConfig{
		SnapshotPath: filepath.Join(dir, "missing.json"),
		JournalDir:   filepath.Join(dir, "missing-journal"),
	})
	require.NoError(t, err)
	assert.False(t, res.SnapshotLoaded)
	assert.Zero(t, res.TailEvents)
}
