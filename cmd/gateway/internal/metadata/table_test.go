package metadata_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/satya1844/cryptrack/cmd/gateway/internal/metadata"
	"github.com/satya1844/cryptrack/cmd/gateway/internal/testutils"
	"github.com/satya1844/cryptrack/pkg/models"
)

func entries(symbols ...string) []models.MetadataEntry {
	out := make([]models.MetadataEntry, 0, len(symbols))
	for i, s := range symbols {
		out = append(out, models.MetadataEntry{
			Symbol: s,
			Meta:   models.AssetMetadata{Symbol: s, Rank: i + 1},
		})
	}
	return out
}

func TestLoader_ReloadSwapsTable(t *testing.T) {
	source := &testutils.MockSource{Entries: entries("BTC", "ETH")}
	loader := metadata.NewLoader(source, zap.NewNop(), time.Minute)

	if len(loader.Current()) != 0 {
		t.Fatal("Loader must start with an empty table")
	}

	if err := loader.Reload(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	table := loader.Current()
	if len(table) != 2 {
		t.Fatalf("Expected 2 assets, got %d", len(table))
	}
	if table["ETH"].Rank != 2 {
		t.Errorf("ETH rank = %d, want 2", table["ETH"].Rank)
	}
}

func TestLoader_FailedReloadKeepsTable(t *testing.T) {
	source := &testutils.MockSource{Entries: entries("BTC")}
	loader := metadata.NewLoader(source, zap.NewNop(), time.Minute)
	loader.Reload(context.Background())

	source.Err = errors.New("store down")
	if err := loader.Reload(context.Background()); err == nil {
		t.Fatal("Expected reload error")
	}

	if _, ok := loader.Current()["BTC"]; !ok {
		t.Error("Failed reload must keep the previous table")
	}
}

func TestLoader_EmptyResultKeepsTable(t *testing.T) {
	source := &testutils.MockSource{Entries: entries("BTC")}
	loader := metadata.NewLoader(source, zap.NewNop(), time.Minute)
	loader.Reload(context.Background())

	source.Entries = nil
	if err := loader.Reload(context.Background()); err != nil {
		t.Fatalf("Empty result should not be an error: %v", err)
	}

	if _, ok := loader.Current()["BTC"]; !ok {
		t.Error("Nothing-persisted-yet must keep the previous table")
	}
}

func TestLoader_ConcurrentReadersDuringSwap(t *testing.T) {
	// Run with `go test -race ./...`
	source := &testutils.MockSource{Entries: entries("BTC", "ETH", "XRP")}
	loader := metadata.NewLoader(source, zap.NewNop(), time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				table := loader.Current()
				// A reader must only ever see a complete table.
				if n := len(table); n != 0 && n != 3 {
					t.Errorf("Observed partial table of size %d", n)
					return
				}
			}
		}()
	}
	for j := 0; j < 100; j++ {
		loader.Reload(context.Background())
	}
	wg.Wait()
}
