// Package ops loads the daemon's JSON configuration and resolves it into
// the component configs the wiring code consumes.
package ops

import (
	"encoding/json"
	"os"
	"time"

	"github.com/yanun0323/errors"

	"gxcoin/internal/engine"
	"gxcoin/internal/platform"
	"gxcoin/internal/recorder"
	"gxcoin/internal/schema"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Creator     string          `json:"creator"`
	TradingOpen bool            `json:"tradingOpen"`
	CoinLimit   int64           `json:"coinLimit"`
	Match       MatchConfig     `json:"match"`
	BusCapacity int             `json:"busCapacity"`
	Journal     JournalConfig   `json:"journal"`
	Snapshot    SnapshotConfig  `json:"snapshot"`
	Archive     ArchiveConfig   `json:"archive"`
	Profiling   ProfilingConfig `json:"profiling"`
	Control     ControlConfig   `json:"control"`
}

// ControlConfig describes the local control socket.
type ControlConfig struct {
	SocketPath string `json:"socketPath"`
}

// MatchConfig tunes the engine.
type MatchConfig struct {
	Budget        int  `json:"budget"`
	EnforceExpiry bool `json:"enforceExpiry"`
}

// JournalConfig describes the event journal.
type JournalConfig struct {
	Dir             string `json:"dir"`
	SegmentMaxBytes int64  `json:"segmentMaxBytes"`
	FlushIntervalMs int64  `json:"flushIntervalMs"`
	SyncIntervalMs  int64  `json:"syncIntervalMs"`
}

// SnapshotConfig describes snapshot persistence.
type SnapshotConfig struct {
	Path       string `json:"path"`
	IntervalMs int64  `json:"intervalMs"`
}

// ArchiveConfig describes the optional postgres archive.
type ArchiveConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslMode"`
}

// ProfilingConfig describes the optional continuous profiler.
type ProfilingConfig struct {
	Enabled       bool   `json:"enabled"`
	ServerAddress string `json:"serverAddress"`
	AppName       string `json:"appName"`
}

// Loaded is the resolved configuration ready for wiring.
type Loaded struct {
	Platform         platform.Config
	Journal          recorder.Config
	BusCapacity      int
	SnapshotPath     string
	SnapshotInterval time.Duration
	Archive          ArchiveConfig
	Profiling        ProfilingConfig
	ControlSocket    string
}

// Load reads a JSON config file and resolves it.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, errors.Wrap(err, "read config")
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, errors.Wrap(err, "parse config")
	}
	return resolve(cfg)
}

func resolve(cfg FileConfig) (Loaded, error) {
	if cfg.Creator == "" {
		return Loaded{}, errors.New("config: creator is empty")
	}
	if cfg.CoinLimit < 0 {
		return Loaded{}, errors.New("config: coinLimit must be >= 0")
	}
	if schema.Quantity(cfg.CoinLimit) > platform.MaxCoinLimit {
		return Loaded{}, errors.New("config: coinLimit above the hard maximum")
	}
	if cfg.Match.Budget < 0 {
		return Loaded{}, errors.New("config: match budget must be >= 0")
	}
	if cfg.Journal.Dir == "" {
		return Loaded{}, errors.New("config: journal dir is empty")
	}
	if cfg.Archive.Enabled && cfg.Archive.Database == "" {
		return Loaded{}, errors.New("config: archive enabled without a database")
	}

	expiry := engine.ExpiryAdvisory
	if cfg.Match.EnforceExpiry {
		expiry = engine.ExpiryEnforced
	}

	busCapacity := cfg.BusCapacity
	if busCapacity <= 0 {
		busCapacity = 8192
	}

	journal := recorder.DefaultConfig(cfg.Journal.Dir)
	if cfg.Journal.SegmentMaxBytes > 0 {
		journal.SegmentMaxBytes = cfg.Journal.SegmentMaxBytes
	}
	if cfg.Journal.FlushIntervalMs > 0 {
		journal.FlushInterval = time.Duration(cfg.Journal.FlushIntervalMs) * time.Millisecond
	}
	if cfg.Journal.SyncIntervalMs > 0 {
		journal.SyncInterval = time.Duration(cfg.Journal.SyncIntervalMs) * time.Millisecond
	}

	snapshotInterval := time.Duration(cfg.Snapshot.IntervalMs) * time.Millisecond

	return Loaded{
		Platform: platform.Config{
			Creator:      schema.Account(cfg.Creator),
			TradingOpen:  cfg.TradingOpen,
			CoinLimit:    schema.Quantity(cfg.CoinLimit),
			MatchBudget:  cfg.Match.Budget,
			ExpiryPolicy: expiry,
		},
		Journal:          journal,
		BusCapacity:      busCapacity,
		SnapshotPath:     cfg.Snapshot.Path,
		SnapshotInterval: snapshotInterval,
		Archive:          cfg.Archive,
		Profiling:        cfg.Profiling,
		ControlSocket:    cfg.Control.SocketPath,
	}, nil
}
