package state

import (
	"os"

	"github.com/yanun0323/errors"

	"gxcoin/internal/platform"
	"gxcoin/internal/recorder"
	"gxcoin/internal/schema"
)

// RecoverConfig controls snapshot + journal recovery.
type RecoverConfig struct {
	SnapshotPath    string
	JournalDir      string
	DisableChecksum bool
	MaxPayloadSize  int
}

// RecoverResult reports what recovery found.
type RecoverResult struct {
	SnapshotLoaded bool
	SnapshotSeq    uint64
	// TailEvents counts journal events newer than the snapshot. Those
	// mutations happened after the last snapshot was taken and are not
	// reflected in the restored state; a non-zero count means the books
	// should be reconciled before trading reopens.
	TailEvents  uint64
	LastTailSeq uint64
}

// Recover restores the platform from the newest snapshot, then scans the
// journal tail for events the snapshot does not cover. caller must be a
// deployment admin of the target platform.
func Recover(caller schema.Account, p *platform.Platform, cfg RecoverConfig) (RecoverResult, error) {
	var res RecoverResult

	if cfg.SnapshotPath != "" {
		snap, err := ReadSnapshot(cfg.SnapshotPath)
		switch {
		case err == nil:
			if err := p.Restore(caller, snap.State); err != nil {
				return RecoverResult{}, errors.Wrap(err, "restore snapshot")
			}
			res.SnapshotLoaded = true
			res.SnapshotSeq = snap.State.Seq
		case os.IsNotExist(err):
			// First boot; nothing to restore.
		default:
			return RecoverResult{}, errors.Wrap(err, "read snapshot")
		}
	}

	if cfg.JournalDir == "" {
		return res, nil
	}
	if _, err := os.Stat(cfg.JournalDir); os.IsNotExist(err) {
		return res, nil
	}

	opts := recorder.ReaderOptions{
		DisableChecksum: cfg.DisableChecksum,
		MaxPayloadSize:  cfg.MaxPayloadSize,
	}
	err := recorder.Replay(cfg.JournalDir, opts, func(ev schema.Event) error {
		if ev.Header.Seq <= res.SnapshotSeq {
			return nil
		}
		res.TailEvents++
		if ev.Header.Seq > res.LastTailSeq {
			res.LastTailSeq = ev.Header.Seq
		}
		return nil
	})
	if err != nil {
		return RecoverResult{}, errors.Wrap(err, "scan journal tail")
	}
	return res, nil
}
