// Migration tool. Converts between snapshot files and portable migration
// documents so state can be moved between deployments and audited offline.
package main

import (
	"flag"
	"fmt"
	"log"

	"gxcoin/internal/migrate"
	"gxcoin/internal/platform"
	"gxcoin/internal/schema"
	"gxcoin/internal/state"
)

func main() {
	mode := flag.String("mode", "summary", "export | import | verify | summary")
	snapshotPath := flag.String("snapshot", "testdata/snapshot.json", "Snapshot file")
	docPath := flag.String("doc", "testdata/migration.json", "Migration document")
	creator := flag.String("creator", "migration-admin", "Deployment admin used for restores")
	flag.Parse()

	admin := schema.Account(*creator)

	switch *mode {
	case "export":
		p := loadPlatform(admin, *snapshotPath)
		if err := migrate.Export(p, *docPath); err != nil {
			log.Fatalf("export failed: %v", err)
		}
		doc, err := migrate.Load(*docPath)
		if err != nil {
			log.Fatalf("reload failed: %v", err)
		}
		printSummary(doc)
	case "import":
		doc, err := migrate.Load(*docPath)
		if err != nil {
			log.Fatalf("load failed: %v", err)
		}
		p := platform.New(platform.Config{Creator: admin})
		if err := migrate.Import(admin, p, *docPath); err != nil {
			log.Fatalf("import failed: %v", err)
		}
		if err := state.WriteSnapshot(*snapshotPath, state.NewSnapshot(p.Export())); err != nil {
			log.Fatalf("write snapshot failed: %v", err)
		}
		printSummary(doc)
		fmt.Printf("snapshot written to %s\n", *snapshotPath)
	case "verify":
		p := loadPlatform(admin, *snapshotPath)
		if err := migrate.Verify(p, *docPath); err != nil {
			log.Fatalf("verify failed: %v", err)
		}
		fmt.Println("snapshot matches the migration document")
	case "summary":
		doc, err := migrate.Load(*docPath)
		if err != nil {
			log.Fatalf("load failed: %v", err)
		}
		printSummary(doc)
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

func loadPlatform(admin schema.Account, path string) *platform.Platform {
	snapshot, err := state.ReadSnapshot(path)
	if err != nil {
		log.Fatalf("read snapshot failed: %v", err)
	}
	p := platform.New(platform.Config{Creator: admin})
	if err := p.Restore(admin, snapshot.State); err != nil {
		log.Fatalf("restore failed: %v", err)
	}
	return p
}

func printSummary(doc migrate.Document) {
	s := doc.Summary
	fmt.Printf("exported at    %s\n", doc.ExportedAt)
	fmt.Printf("traders        %d (%d registered)\n", s.Traders, s.RegisteredTraders)
	fmt.Printf("orders         %d buys / %d sells\n", s.BuyOrders, s.SellOrders)
	fmt.Printf("total coins    %d\n", s.TotalCoins)
	fmt.Printf("total dollars  %s\n", s.TotalDollars)
	fmt.Printf("resting buys   $%s reserved\n", s.RestingBuyValue)
	fmt.Printf("resting sells  %d coins reserved\n", s.RestingSellCoins)
}
