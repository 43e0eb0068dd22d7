// Command gxd runs the exchange core daemon: it recovers state from the
// latest snapshot, wires the platform event stream into the journal and the
// optional postgres archive, and snapshots periodically until it is told to
// stop.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"

	"gxcoin/internal/archive"
	"gxcoin/internal/bus"
	"gxcoin/internal/ctl"
	"gxcoin/internal/obs"
	"gxcoin/internal/ops"
	"gxcoin/internal/platform"
	"gxcoin/internal/recorder"
	"gxcoin/internal/schema"
	"gxcoin/internal/state"
	"gxcoin/pkg/conn"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to JSON config")
	recoverState := flag.Bool("recover", true, "Recover state from the latest snapshot at boot")
	smokeOrders := flag.Int("smoke-orders", 0, "Publish N synthetic orders after boot and exit")
	smokeInterval := flag.Duration("smoke-interval", 0, "Delay between synthetic orders")
	flag.Parse()

	loaded, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if loaded.Profiling.Enabled {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: loaded.Profiling.AppName,
			ServerAddress:   loaded.Profiling.ServerAddress,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() { _ = profiler.Stop() }()
	}

	if err := run(ctx, loaded, *recoverState, *smokeOrders, *smokeInterval); err != nil {
		log.Fatalf("gxd failed: %v", err)
	}
}

func run(ctx context.Context, loaded ops.Loaded, recoverState bool, smokeOrders int, smokeInterval time.Duration) error {
	metrics := obs.NewMetrics()
	queue := bus.NewQueue(loaded.BusCapacity)

	cfg := loaded.Platform
	cfg.Sink = &busSink{queue: queue, metrics: metrics}
	cfg.Metrics = metrics
	p := platform.New(cfg)

	if recoverState && loaded.SnapshotPath != "" {
		res, err := state.Recover(loaded.Platform.Creator, p, state.RecoverConfig{
			SnapshotPath: loaded.SnapshotPath,
			JournalDir:   loaded.Journal.Dir,
		})
		if err != nil {
			return err
		}
		if res.SnapshotLoaded {
			logs.Infof("state recovered, snapshot seq: %d, journal tail events: %d", res.SnapshotSeq, res.TailEvents)
			if res.TailEvents > 0 {
				logs.Errorf("snapshot is %d events behind the journal, reconcile before reopening trading", res.TailEvents)
			}
		}
	}

	journal, err := recorder.NewWriter(loaded.Journal)
	if err != nil {
		return err
	}
	if err := journal.Start(ctx); err != nil {
		return err
	}

	var store *archive.Store
	if loaded.Archive.Enabled {
		client, err := conn.Open(conn.Config{
			Host:     loaded.Archive.Host,
			Port:     loaded.Archive.Port,
			User:     loaded.Archive.User,
			Password: loaded.Archive.Password,
			Database: loaded.Archive.Database,
			SSLMode:  loaded.Archive.SSLMode,
		})
		if err != nil {
			return err
		}
		defer client.Close()
		if store, err = archive.NewStore(client); err != nil {
			return err
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The consumer runs until the queue is closed and drained, so no
	// journaled event is lost to shutdown ordering.
	var consumerWg sync.WaitGroup
	consumerWg.Add(1)
	go func() {
		defer consumerWg.Done()
		queue.Run(context.Background(), func(ev schema.Event) {
			if err := journal.TryAppend(ev); err != nil {
				logs.Errorf("journal append seq=%d: %+v", ev.Header.Seq, err)
			}
			if store != nil {
				store.Consume(ev)
			}
		})
	}()

	var wg sync.WaitGroup
	if loaded.ControlSocket != "" {
		control, err := ctl.NewServer(loaded.ControlSocket, p)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := control.Serve(runCtx); err != nil {
				logs.Errorf("control server: %+v", err)
			}
		}()
	}

	if loaded.SnapshotPath != "" && loaded.SnapshotInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snapshotLoop(runCtx, p, loaded.SnapshotPath, loaded.SnapshotInterval)
		}()
	}

	logs.Infof("gxd started, trading open: %t, coin limit: %d, journal dir: %s",
		p.IsTradingOpen(), p.CoinLimit(), loaded.Journal.Dir)

	if smokeOrders > 0 {
		if err := runSmoke(ctx, p, loaded.Platform.Creator, smokeOrders, smokeInterval); err != nil {
			logs.Errorf("smoke run: %+v", err)
		}
	} else {
		<-ctx.Done()
	}

	// Publishers first, then the queue: the control server must be fully
	// stopped before Close, or a handler could send on a closed channel.
	cancel()
	wg.Wait()
	queue.Close()
	consumerWg.Wait()
	if err := journal.Close(); err != nil {
		return err
	}
	if loaded.SnapshotPath != "" {
		if err := state.WriteSnapshot(loaded.SnapshotPath, state.NewSnapshot(p.Export())); err != nil {
			return err
		}
	}

	snap := metrics.Snapshot()
	logs.Infof("gxd stopped, orders accepted: %d, rejected: %d, budget cancels: %d, queue drops: %d",
		snap.OrdersAccepted, snap.OrdersRejected, snap.BudgetCancels, snap.QueueDrops)
	return nil
}

type busSink struct {
	queue   *bus.Queue
	metrics *obs.Metrics
}

func (s *busSink) Publish(ev schema.Event) {
	s.metrics.ObserveEvent(ev)
	if err := s.queue.TryPublish(ev); err != nil {
		if errors.Is(err, bus.ErrQueueFull) {
			s.metrics.IncQueueDrop()
		} else {
			s.metrics.IncQueueClosed()
		}
	}
}

func snapshotLoop(ctx context.Context, p *platform.Platform, path string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := state.WriteSnapshot(path, state.NewSnapshot(p.Export())); err != nil {
				logs.Errorf("write snapshot: %+v", err)
			}
		}
	}
}

// runSmoke pushes a short synthetic order flow through the whole pipeline
// so a deployment can be verified end to end without real traders.
func runSmoke(ctx context.Context, p *platform.Platform, admin schema.Account, count int, interval time.Duration) error {
	const (
		buyer  schema.Account = "smoke-buyer"
		seller schema.Account = "smoke-seller"
	)
	if err := p.SetTradingOpen(admin, true); err != nil {
		return err
	}
	for _, account := range []schema.Account{buyer, seller} {
		if err := p.RegisterTraderAccount(admin, account); err != nil {
			return err
		}
	}
	if err := p.SeedCoins(admin, seller, schema.Quantity(count)); err != nil {
		return err
	}
	if err := p.Fund(admin, buyer, schema.Cost(schema.Quantity(count), 100)); err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := p.CreateSellOrder(seller, 1, 100, 0); err != nil {
			return err
		}
		if _, err := p.CreateBuyOrder(buyer, 1, 100, 0); err != nil {
			return err
		}
		if interval > 0 && i < count-1 {
			time.Sleep(interval)
		}
	}
	logs.Infof("smoke run completed, orders: %d", count*2)
	return nil
}
