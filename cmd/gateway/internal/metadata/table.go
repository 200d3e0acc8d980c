package metadata

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/satya1844/cryptrack/pkg/models"
)

// Table maps base symbol to reference metadata. A table is never mutated
// after construction; the Loader swaps whole tables so concurrent readers
// see either the fully-old or fully-new version.
type Table map[string]models.AssetMetadata

func NewTable(entries []models.MetadataEntry) Table {
	t := make(Table, len(entries))
	for _, e := range entries {
		t[e.Symbol] = e.Meta
	}
	return t
}

// Source yields the persisted metadata entry list (the refresher's output).
type Source interface {
	LoadMetadata(ctx context.Context) ([]models.MetadataEntry, error)
}

// Loader keeps a read-only metadata table current by re-reading the
// persisted copy on an interval. Broadcast cycles read the table through
// Current; the swap is a single atomic pointer store.
type Loader struct {
	source   Source
	logger   *zap.Logger
	interval time.Duration
	table    atomic.Pointer[Table]
}

func NewLoader(source Source, logger *zap.Logger, interval time.Duration) *Loader {
	l := &Loader{
		source:   source,
		logger:   logger,
		interval: interval,
	}
	empty := Table{}
	l.table.Store(&empty)
	return l
}

// Current returns the live table. Safe to call concurrently with Reload.
func (l *Loader) Current() Table {
	return *l.table.Load()
}

// Reload replaces the table from the source. An empty result (nothing
// persisted yet) keeps whatever is currently served.
func (l *Loader) Reload(ctx context.Context) error {
	entries, err := l.source.LoadMetadata(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	t := NewTable(entries)
	l.table.Store(&t)
	l.logger.Info("Metadata table loaded", zap.Int("assets", len(t)))
	return nil
}

// Run reloads once immediately, then on every interval tick until ctx is
// cancelled. Failures keep the previous table.
func (l *Loader) Run(ctx context.Context) {
	if err := l.Reload(ctx); err != nil {
		l.logger.Warn("Initial metadata load failed", zap.Error(err))
	}

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := l.Reload(ctx); err != nil {
				l.logger.Warn("Metadata reload failed, keeping previous table", zap.Error(err))
			}
		}
	}
}
